package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    atomic.Int64 // unix nanos; 0 until MarkStarted
)

// MarkStarted records process start for uptime reporting.
func MarkStarted(t time.Time) {
	startedAt.Store(t.UnixNano())
}

// Uptime returns time since MarkStarted, or 0 if it was never called.
func Uptime() time.Duration {
	ns := startedAt.Load()
	if ns == 0 {
		return 0
	}
	return time.Since(time.Unix(0, ns))
}

// SetShuttingDown sets the draining flag. Health returns 503 shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

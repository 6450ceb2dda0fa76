// Package traffic keeps a sliding window of upstream lookup outcomes for health reporting.
package traffic

import (
	"sync"
	"time"
)

// retention bounds how far back outcomes are kept; windows longer than this are truncated.
const retention = 15 * time.Minute

var defaultTracker Tracker

// RecordSuccess records a lookup that produced a response.
func RecordSuccess() {
	defaultTracker.Record(true)
}

// RecordError records a lookup that failed because of the upstream (HTTP error, timeout, malformed body).
func RecordError() {
	defaultTracker.Record(false)
}

// ErrorRate returns (errorCount, totalCount) within the window.
func ErrorRate(window time.Duration) (errors, total int) {
	return defaultTracker.ErrorRate(window)
}

// Reset clears all recorded outcomes. For tests only.
func Reset() {
	defaultTracker.Reset()
}

type outcome struct {
	at time.Time
	ok bool
}

// Tracker maintains a time-ordered list of outcomes.
type Tracker struct {
	mu       sync.Mutex
	outcomes []outcome
	now      func() time.Time // nil means time.Now
}

// Record appends an outcome at the current time.
func (t *Tracker) Record(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	t.outcomes = append(t.outcomes, outcome{at: now, ok: ok})
	t.pruneLocked(now)
}

// ErrorRate returns (errorCount, totalCount) for outcomes not older than window.
func (t *Tracker) ErrorRate(window time.Duration) (errors, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	t.pruneLocked(now)
	cutoff := now.Add(-window)
	for _, o := range t.outcomes {
		if o.at.Before(cutoff) {
			continue
		}
		total++
		if !o.ok {
			errors++
		}
	}
	return errors, total
}

// Reset clears all recorded outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = nil
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// pruneLocked drops outcomes older than retention. Must be called with mu held.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-retention)
	i := 0
	for ; i < len(t.outcomes) && t.outcomes[i].at.Before(cutoff); i++ {
	}
	if i > 0 {
		t.outcomes = append(t.outcomes[:0], t.outcomes[i:]...)
	}
}

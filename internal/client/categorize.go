package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as the upstreamErrorsTotal category label.
const (
	ErrorCategoryTimeout     ErrorCategory = "timeout"
	ErrorCategoryNetwork     ErrorCategory = "network"
	ErrorCategoryUpstream4xx ErrorCategory = "upstream_4xx"
	ErrorCategoryUpstream5xx ErrorCategory = "upstream_5xx"
	ErrorCategoryMalformed   ErrorCategory = "malformed"
	ErrorCategoryUnknown     ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.StatusCode >= 500 {
			return ErrorCategoryUpstream5xx
		}
		return ErrorCategoryUpstream4xx
	}

	var malformedErr *MalformedResponseError
	if errors.As(err, &malformedErr) {
		return ErrorCategoryMalformed
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") {
		return ErrorCategoryNetwork
	}

	return ErrorCategoryUnknown
}

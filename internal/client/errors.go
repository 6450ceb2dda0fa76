package client

import "fmt"

// UpstreamError is a non-2xx archive response. Callers relay StatusCode and Body as is.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream HTTP %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError is an archive body with an unexpected shape.
// Body holds the raw payload for diagnosis.
type MalformedResponseError struct {
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed upstream response: %v", e.Err)
	}
	return "malformed upstream response"
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

package relay

import (
	"errors"
	"fmt"
)

var (
	// ErrRetriesExhausted is returned by Run when more consecutive subscribe
	// cycles failed than the configured MaxRetries allows.
	ErrRetriesExhausted = errors.New("upstream retries exhausted")

	// ErrStreamEnded indicates the upstream closed the stream cleanly.
	ErrStreamEnded = errors.New("upstream stream ended")
)

// UpstreamStatusError is returned when the upstream answers the subscribe
// request with something other than a 200 event stream.
type UpstreamStatusError struct {
	StatusCode  int
	ContentType string

	// Body holds the start of the response body for diagnostics.
	Body string
}

func (e *UpstreamStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d (%s)", e.StatusCode, e.ContentType)
	}
	return fmt.Sprintf("upstream returned status %d (%s): %s", e.StatusCode, e.ContentType, e.Body)
}

package ratelimit

import (
	"errors"
	"fmt"
)

// ErrBodyNotReplayable is returned when a request must be retried but its body
// cannot be read a second time.
var ErrBodyNotReplayable = errors.New("ratelimit: request body cannot be replayed")

// RetryError is returned once a call has exhausted the retry ceiling.
type RetryError struct {
	Route      string
	Major      string
	Attempts   int
	LastStatus int
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("ratelimit: %s (major %q) gave up after %d attempts, last status %d",
		e.Route, e.Major, e.Attempts, e.LastStatus)
}

// IsRetryExhausted reports whether err carries a RetryError.
func IsRetryExhausted(err error) bool {
	var re *RetryError
	return errors.As(err, &re)
}

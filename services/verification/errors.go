package verification

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID matches nothing, usually
// because the session expired out of Redis.
var ErrSessionNotFound = errors.New("verification session not found or expired")

// ValidationError reports operator input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TransportError reports a network or storage-platform failure. It is
// surfaced to the operator with its description and never retried
// automatically; the operator re-invokes the call explicitly.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

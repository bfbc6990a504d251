package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an operation against a product that no longer
	// exists server-side, so callers can offer "refresh" instead of
	// "retry".
	ErrNotFound = errors.New("product not found")

	// ErrNotAuthorized marks a mutation attempted without an
	// authenticated admin session.
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports a request rejected before any storage call,
// pointing at the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// TransientError wraps a retryable I/O failure such as a network timeout.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

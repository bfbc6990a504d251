package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidCredentials is deliberately generic: it never reveals
	// which part of the credential pair was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired marks a session ended by inactivity or age
	// rather than an explicit logout.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated marks an admin operation attempted without a
	// live session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// LockedError rejects login attempts during a lockout window.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	minutes := int(math.Ceil(e.RetryAfter.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("account locked, retry in %d minutes", minutes)
}

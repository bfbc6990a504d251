package domain

import (
	"context"
	"sync"
	"time"

	"github.com/aurelia-gems/storefront/pkg/logger"
)

// State is the admin session state.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateLocked        State = "locked"
)

// Session is the persisted session record. LockedUntil is the zero time
// unless the machine is in the locked state.
type Session struct {
	State            State     `json:"state"`
	SessionStartedAt time.Time `json:"session_started_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	LoginAttempts    int       `json:"login_attempts"`
	LockedUntil      time.Time `json:"locked_until"`
}

// Limits configures attempt counting and the timeout windows.
type Limits struct {
	MaxAttempts       int
	LockoutDuration   time.Duration
	InactivityTimeout time.Duration
	MaxSessionAge     time.Duration
}

// DefaultLimits returns the storefront defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxAttempts:       5,
		LockoutDuration:   15 * time.Minute,
		InactivityTimeout: 30 * time.Minute,
		MaxSessionAge:     24 * time.Hour,
	}
}

// CredentialVerifier checks a credential pair. The verifier is an
// injected dependency; the machine never sees or defaults the secret.
type CredentialVerifier interface {
	Verify(identifier, secret string) bool
}

// SessionStore persists the session record across restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Load(ctx context.Context) (Session, bool, error)
	Clear(ctx context.Context) error
}

// Machine is the admin session state machine. It owns all transitions
// between anonymous, authenticated and locked, counts failed logins,
// enforces the lockout window and both session timeouts, and mirrors
// every state change to the store. One machine exists per process and it
// is safe for concurrent use.
type Machine struct {
	verifier CredentialVerifier
	store    SessionStore
	limits   Limits
	now      func() time.Time

	mu      sync.Mutex
	session Session
}

// NewMachine builds a machine from its non-optional dependencies and
// restores any persisted session. A restored session already past its
// limits is discarded immediately rather than kept alive retroactively.
func NewMachine(ctx context.Context, verifier CredentialVerifier, store SessionStore, limits Limits) *Machine {
	if limits.MaxAttempts < 1 {
		limits.MaxAttempts = DefaultLimits().MaxAttempts
	}
	m := &Machine{
		verifier: verifier,
		store:    store,
		limits:   limits,
		now:      time.Now,
		session:  Session{State: StateAnonymous},
	}
	m.restore(ctx)
	return m
}

func (m *Machine) restore(ctx context.Context) {
	session, found, err := m.store.Load(ctx)
	if err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to restore admin session")
		return
	}
	if !found {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.applyTimeLocked(ctx)
	if m.session.State == StateAnonymous && session.State == StateAuthenticated {
		logger.Info(ctx).Msg("Restored admin session had already expired, discarded")
	}
}

// applyTimeLocked performs the time-driven transitions: lockout expiry
// and session/inactivity timeout. Callers hold m.mu.
func (m *Machine) applyTimeLocked(ctx context.Context) {
	now := m.now()

	switch m.session.State {
	case StateLocked:
		if !now.Before(m.session.LockedUntil) {
			m.session = Session{State: StateAnonymous}
			m.persistLocked(ctx)
		}
	case StateAuthenticated:
		inactive := now.Sub(m.session.LastActivityAt) > m.limits.InactivityTimeout
		tooOld := now.Sub(m.session.SessionStartedAt) > m.limits.MaxSessionAge
		if inactive || tooOld {
			m.session = Session{State: StateAnonymous}
			m.persistLocked(ctx)
		}
	}
}

func (m *Machine) persistLocked(ctx context.Context) {
	// Persistence is best effort: a store outage must not change the
	// outcome of the transition that triggered it.
	if err := m.store.Save(ctx, m.session); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to persist admin session")
	}
}

// Login attempts to authenticate. During a lockout window the attempt is
// rejected outright, without consulting credentials or incrementing the
// attempt counter.
func (m *Machine) Login(ctx context.Context, identifier, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyTimeLocked(ctx)

	if m.session.State == StateLocked {
		return &LockedError{RetryAfter: m.session.LockedUntil.Sub(m.now())}
	}

	if m.verifier.Verify(identifier, secret) {
		now := m.now()
		m.session = Session{
			State:            StateAuthenticated,
			SessionStartedAt: now,
			LastActivityAt:   now,
		}
		m.persistLocked(ctx)
		logger.Info(ctx).Msg("Admin session started")
		return nil
	}

	m.session.LoginAttempts++
	if m.session.LoginAttempts >= m.limits.MaxAttempts {
		m.session.State = StateLocked
		m.session.LockedUntil = m.now().Add(m.limits.LockoutDuration)
		m.persistLocked(ctx)
		logger.Warn(ctx).
			Int("attempts", m.session.LoginAttempts).
			Time("locked_until", m.session.LockedUntil).
			Msg("Admin login locked out")
		return &LockedError{RetryAfter: m.limits.LockoutDuration}
	}

	m.persistLocked(ctx)
	return ErrInvalidCredentials
}

// Logout clears the session.
func (m *Machine) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = Session{State: StateAnonymous}
	if err := m.store.Clear(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to clear persisted admin session")
	}
}

// Touch records a tracked interaction. It refreshes the inactivity clock
// without restarting the session age and is a no-op outside the
// authenticated state.
func (m *Machine) Touch(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyTimeLocked(ctx)
	if m.session.State != StateAuthenticated {
		return
	}
	m.session.LastActivityAt = m.now()
	m.persistLocked(ctx)
}

// Check validates the session, applying any pending time-driven
// transitions. It returns nil for a live authenticated session,
// ErrSessionExpired when a timeout just ended one, and
// ErrNotAuthenticated otherwise.
func (m *Machine) Check(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasAuthenticated := m.session.State == StateAuthenticated
	m.applyTimeLocked(ctx)

	switch {
	case m.session.State == StateAuthenticated:
		return nil
	case wasAuthenticated:
		return ErrSessionExpired
	default:
		return ErrNotAuthenticated
	}
}

// State returns the effective state at this instant, without persisting
// any lazy transition.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	switch m.session.State {
	case StateLocked:
		if !now.Before(m.session.LockedUntil) {
			return StateAnonymous
		}
	case StateAuthenticated:
		if now.Sub(m.session.LastActivityAt) > m.limits.InactivityTimeout ||
			now.Sub(m.session.SessionStartedAt) > m.limits.MaxSessionAge {
			return StateAnonymous
		}
	}
	return m.session.State
}

// IsAuthenticated reports whether the session is currently live.
func (m *Machine) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Snapshot returns a copy of the current session record.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

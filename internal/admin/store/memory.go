package store

import (
	"context"
	"sync"

	"github.com/aurelia-gems/storefront/internal/admin/domain"
)

// MemorySessionStore keeps the session in process memory. Used in tests
// and in deployments without Redis, where sessions simply do not survive
// a restart.
type MemorySessionStore struct {
	mu      sync.Mutex
	session domain.Session
	set     bool
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.set = true
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.set, nil
}

func (s *MemorySessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	s.set = false
	return nil
}

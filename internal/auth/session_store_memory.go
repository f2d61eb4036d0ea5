package auth

import (
	"context"
	"sync"
	"time"

	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/repositories"
)

// InMemorySessionStore keeps refresh sessions in a process-local map. Entries
// lapse at their ExpiresAt the way Redis keys do, so it can stand in for
// repositories.RedisSessionStore when no Redis address is configured.
type InMemorySessionStore struct {
	mu      sync.Mutex
	byToken map[string]models.Session
	clock   func() time.Time
}

// NewInMemorySessionStore constructs an empty store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		byToken: make(map[string]models.Session),
		clock:   time.Now,
	}
}

// Save stores the session. A session that has already lapsed is not kept.
func (s *InMemorySessionStore) Save(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lapsed(session) {
		delete(s.byToken, session.RefreshToken)
		return nil
	}
	s.byToken[session.RefreshToken] = session
	return nil
}

// Find loads a live session by its refresh token.
func (s *InMemorySessionStore) Find(_ context.Context, refreshToken string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.lookup(refreshToken)
	if !ok {
		return models.Session{}, repositories.ErrNotFound
	}
	return session, nil
}

// Delete removes a session by its refresh token.
func (s *InMemorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(refreshToken); !ok {
		return repositories.ErrNotFound
	}
	delete(s.byToken, refreshToken)
	return nil
}

// Has reports whether a live session exists for refreshToken.
func (s *InMemorySessionStore) Has(refreshToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lookup(refreshToken)
	return ok
}

// lookup evicts the entry if it has lapsed. Callers hold s.mu.
func (s *InMemorySessionStore) lookup(refreshToken string) (models.Session, bool) {
	session, ok := s.byToken[refreshToken]
	if !ok {
		return models.Session{}, false
	}
	if s.lapsed(session) {
		delete(s.byToken, refreshToken)
		return models.Session{}, false
	}
	return session, true
}

func (s *InMemorySessionStore) lapsed(session models.Session) bool {
	return !session.ExpiresAt.IsZero() && !s.clock().Before(session.ExpiresAt)
}

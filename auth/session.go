package auth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lanchat/errors"
)

// Session binds an opaque id to the Identity asserted at login time.
// Sessions live in memory only: a process restart logs everyone out.
type Session struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// NewSessionStore creates a store whose sessions expire after ttl.
// A zero ttl disables expiry. now is injectable for tests and defaults to
// time.Now.
func NewSessionStore(ttl time.Duration, now func() time.Time, log *slog.Logger) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]Session),
		ttl:      ttl,
		now:      now,
		log:      log,
	}
}

// Create binds username to a fresh session id.
func (s *SessionStore) Create(username string) Session {
	sess := Session{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Resolve returns the session for id, expiring it lazily when its TTL has
// passed.
func (s *SessionStore) Resolve(id uuid.UUID) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, errors.ErrUnauthenticated
	}
	if s.expired(sess) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return Session{}, errors.ErrSessionExpired
	}
	return sess, nil
}

// Destroy removes the session and reports the identity it was bound to.
func (s *SessionStore) Destroy(id uuid.UUID) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return sess, ok
}

// Sweep removes every expired session and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (s *SessionStore) expired(sess Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.CreatedAt) > s.ttl
}

// Package session keeps the in-memory per-visitor state: the application
// state, the in-flight customization, and the backend URL override. Sessions
// are held in process; losing them on restart is acceptable because the
// backend owns everything durable.
package session

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/threadline/storefront/internal/customize"
	"github.com/threadline/storefront/internal/domain"
	"github.com/threadline/storefront/internal/selection"
	"github.com/threadline/storefront/internal/state"
)

// DefaultTTL applies when the store is constructed without one.
const DefaultTTL = 12 * time.Hour

// Session is one visitor's state. Mutations go through Do, which serializes
// them: concurrent requests for the same session observe each other's writes
// in full, never interleaved.
type Session struct {
	id        string
	mu        sync.Mutex
	expiresAt time.Time

	State      *state.AppState
	BackendURL string

	// The active customization, at most one of Bundle and Single set.
	// BundleOffer is the fetched backend record the bundle sections pick
	// products from.
	Bundle      *selection.Bundle
	BundleOffer *domain.Bundle
	Single      *selection.Section
	Flow        *customize.Flow
}

// ID returns the session identifier carried by the cookie.
func (s *Session) ID() string {
	return s.id
}

// Do runs fn with the session lock held.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// ClearCustomization drops the in-flight customization state.
func (s *Session) ClearCustomization() {
	s.Bundle = nil
	s.BundleOffer = nil
	s.Single = nil
	s.Flow = nil
}

// Store is the mutex-guarded session map with TTL expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// Option customizes the store.
type Option func(*Store)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs a session store with the given idle TTL.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now().UTC()), s.entropy).String()
}

// Create opens a fresh session.
func (s *Store) Create() *Session {
	sess := &Session{
		id:        s.newID(),
		expiresAt: s.now().Add(s.ttl),
		State:     state.New(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// Get looks a session up and slides its expiry forward. Expired sessions are
// dropped on access.
func (s *Store) Get(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(sess.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess, true
}

// Delete drops a session, used on logout.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep removes every expired session.
func (s *Store) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Sweep evicts expired sessions on the interval until the context is done.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

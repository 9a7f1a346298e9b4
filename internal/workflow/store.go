package workflow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("workflow: session not found")

// Store keeps sessions in memory, keyed by opaque id, evicting those idle
// longer than the TTL. All access goes through the store's lock so handlers
// never race on a session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*SessionState
	ttl      time.Duration
	now      func() time.Time
}

// NewStore builds a session store with the given idle TTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{
		sessions: make(map[string]*SessionState),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a fresh session at the first step and returns its state.
func (s *Store) Create() SessionState {
	now := s.now()
	state := &SessionState{
		ID:          uuid.NewString(),
		CurrentStep: StepOnboarding,
		Completed:   make(map[Step]bool),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	s.sessions[state.ID] = state
	return *state
}

// With runs fn against the named session under the store lock. Mutations fn
// makes are retained; fn must not block on I/O.
func (s *Store) With(id string, fn func(*SessionState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok || s.expired(state) {
		delete(s.sessions, id)
		return ErrSessionNotFound
	}
	state.UpdatedAt = s.now()
	return fn(state)
}

// Snapshot returns a copy of the session for read-only use outside the lock.
// The draft's byte slices are shared; callers must not mutate them.
func (s *Store) Snapshot(id string) (SessionState, error) {
	var snap SessionState
	err := s.With(id, func(state *SessionState) error {
		snap = *state
		return nil
	})
	return snap, err
}

// Delete removes a session outright.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()
	return len(s.sessions)
}

func (s *Store) expired(state *SessionState) bool {
	return s.now().Sub(state.UpdatedAt) > s.ttl
}

func (s *Store) purgeExpiredLocked() {
	for id, state := range s.sessions {
		if s.expired(state) {
			delete(s.sessions, id)
		}
	}
}

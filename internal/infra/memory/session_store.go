package memory

import (
	"context"
	"sync"

	"funquiz/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
// States are copied on the way in and out so callers must Put to make
// mutations durable, matching the Redis store's semantics.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.SessionState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.SessionState),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*domain.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copyState(state), nil
}

func (s *SessionStore) Put(_ context.Context, sessionID string, state *domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = copyState(state)
	return nil
}

func (s *SessionStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func copyState(state *domain.SessionState) *domain.SessionState {
	clone := *state
	clone.AnsweredIDs = append([]string(nil), state.AnsweredIDs...)
	if state.LastResult != nil {
		result := *state.LastResult
		clone.LastResult = &result
	}
	return &clone
}

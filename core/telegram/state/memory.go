package state

import (
	"context"
	"sync"
)

type memoryManager[D any] struct {
	mu       sync.RWMutex
	sessions map[int64]Session[D]
}

// NewMemoryManager constructs an in-memory Manager. Sessions are lost on restart.
func NewMemoryManager[D any]() Manager[D] {
	return &memoryManager[D]{
		sessions: make(map[int64]Session[D]),
	}
}

// Get returns the session for a user if it exists, otherwise an idle session.
func (m *memoryManager[D]) Get(_ context.Context, userID int64) (Session[D], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, ok := m.sessions[userID]; ok {
		return session, nil
	}
	return Session[D]{State: StateIdle}, nil
}

// Set stores the session; an idle session removes the entry.
func (m *memoryManager[D]) Set(_ context.Context, userID int64, session Session[D]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.Idle() {
		delete(m.sessions, userID)
		return nil
	}
	m.sessions[userID] = session
	return nil
}

// Clear removes the entire session for a user.
func (m *memoryManager[D]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

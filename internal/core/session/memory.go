package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It does not survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	sess Session
}

// NewMemoryStore returns a MemoryStore holding s.
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{sess: s}
}

func (m *MemoryStore) Get(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, nil
}

func (m *MemoryStore) Set(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	return nil
}

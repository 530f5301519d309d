package session

import (
	"context"
	"sync"
)

type memStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryStore keeps tokens in process memory only, so nothing survives a
// restart. Useful for tests and throwaway sessions.
func NewMemoryStore() TokenStore {
	return &memStore{tokens: make(map[string]string)}
}

func (m *memStore) Load(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[key], nil
}

func (m *memStore) Save(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}

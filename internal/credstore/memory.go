package credstore

import (
	"context"
	"sync"
)

// MemoryKeyed is an in-process credential store for tests and single-node dev
// runs. Credentials do not survive a process restart.
type MemoryKeyed struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewMemoryKeyed builds an empty in-memory store factory.
func NewMemoryKeyed() *MemoryKeyed {
	return &MemoryKeyed{creds: make(map[string]string)}
}

// For binds a store to the given session ID.
func (k *MemoryKeyed) For(sessionID string) Store {
	return &memoryStore{keyed: k, sessionID: sessionID}
}

type memoryStore struct {
	keyed     *MemoryKeyed
	sessionID string
}

func (s *memoryStore) Load(_ context.Context) (string, error) {
	s.keyed.mu.RLock()
	defer s.keyed.mu.RUnlock()
	return s.keyed.creds[s.sessionID], nil
}

func (s *memoryStore) Save(_ context.Context, credential string) error {
	s.keyed.mu.Lock()
	defer s.keyed.mu.Unlock()
	s.keyed.creds[s.sessionID] = credential
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.keyed.mu.Lock()
	defer s.keyed.mu.Unlock()
	delete(s.keyed.creds, s.sessionID)
	return nil
}

package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/token"
)

// Manager owns the session stores, one per session cookie. It is created at
// bootstrap and injected wherever sessions are needed.
type Manager struct {
	creds     credstore.Keyed
	validator *token.Validator
	events    events.Dispatcher
	logger    *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager builds the manager. It subscribes to credential_expired events
// so a session whose credential expired is cleared here too, whichever layer
// detected the expiry.
func NewManager(creds credstore.Keyed, validator *token.Validator, dispatcher events.Dispatcher, logger *zap.Logger) *Manager {
	m := &Manager{
		creds:     creds,
		validator: validator,
		events:    dispatcher,
		logger:    logger,
		stores:    make(map[string]*Store),
	}
	if dispatcher != nil {
		dispatcher.Subscribe(events.EventCredentialExpired, m.onCredentialExpired)
	}
	return m
}

func (m *Manager) onCredentialExpired(_ context.Context, event events.Event) error {
	m.Drop(event.SessionID)
	return nil
}

// Session returns the store for the given session ID, creating it empty on
// first use. The caller hydrates it when cached identity is wanted.
//
// TODO: evict stores idle past the credential TTL; right now only Drop frees
// them.
func (m *Manager) Session(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.stores[sessionID]
	if !ok {
		store = newStore(sessionID, m.creds.For(sessionID), m.validator, m.events, m.logger)
		m.stores[sessionID] = store
	}
	return store
}

// Drop forgets the cached store for a session, typically after logout. The
// persisted credential is untouched; Logout handles that.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/token"
)

// PublicRoot is the navigation reset target after a session ends.
const PublicRoot = "/"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// ErrPostLoginDecode reports a credential that fails validation immediately
// after a successful login call. This is an integration fault with the
// upstream auth service and is surfaced instead of silently redirecting.
var ErrPostLoginDecode = errors.New("credential rejected immediately after login")

// Store holds the current identity for one session scope, sourced from
// zero-or-one persisted credential. It is explicitly constructed and passed
// to its consumers; there is no package-level session state.
//
// The cached identity is a rendering convenience only. Authorization
// decisions always go through the guard, which revalidates the persisted
// credential.
type Store struct {
	sessionID string
	creds     credstore.Store
	validator *token.Validator
	events    events.Dispatcher
	logger    *zap.Logger

	mu       sync.RWMutex
	identity *domain.Identity
	hydrated bool
}

func newStore(sessionID string, creds credstore.Store, validator *token.Validator, dispatcher events.Dispatcher, logger *zap.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		creds:     creds,
		validator: validator,
		events:    dispatcher,
		logger:    logger,
	}
}

// Hydrate restores the identity from the persisted credential. Invalid or
// expired credentials are purged and the identity stays empty. Hydrate is
// idempotent; repeated calls after the first are no-ops until the next
// login or logout.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	credential, err := s.creds.Load(ctx)
	if err != nil {
		return err
	}

	identity, err := s.validator.Validate(credential)
	switch {
	case err == nil:
		s.identity = identity
	case errors.Is(err, token.ErrCredentialAbsent):
		// nothing persisted, session stays anonymous
	default:
		// malformed or expired: the persisted copy is useless, drop it
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			return clearErr
		}
		if errors.Is(err, token.ErrCredentialExpired) {
			s.logger.Info("purged expired credential", zap.String("session_id", s.sessionID))
			s.publish(ctx, events.New(events.EventCredentialExpired, s.sessionID,
				events.CredentialExpiredPayload{NavigateTo: LoginPath}))
		}
	}

	s.hydrated = true
	return nil
}

// Login persists the credential obtained from the upstream auth service and
// recomputes the identity. The credential has already been issued; no network
// I/O happens here. A credential that fails validation right after issue is
// purged and reported as ErrPostLoginDecode, leaving the session
// unauthenticated rather than looping through redirects on a broken token.
func (s *Store) Login(ctx context.Context, credential string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.creds.Save(ctx, credential); err != nil {
		return nil, err
	}

	identity, err := s.validator.Validate(credential)
	if err != nil {
		s.logger.Error("upstream issued an unusable credential",
			zap.String("session_id", s.sessionID), zap.Error(err))
		_ = s.creds.Clear(ctx)
		s.identity = nil
		s.hydrated = true
		return nil, ErrPostLoginDecode
	}

	s.identity = identity
	s.hydrated = true
	s.publish(ctx, events.New(events.EventSessionStarted, s.sessionID,
		events.SessionStartedPayload{Subject: identity.Subject, Role: identity.Role}))
	return identity, nil
}

// Logout purges the persisted credential, clears the identity, and returns
// the navigation reset target. The reset itself is the transport layer's job;
// it is also broadcast as a SessionEnded event for observers.
func (s *Store) Logout(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.creds.Clear(ctx); err != nil {
		return "", err
	}
	s.identity = nil
	s.hydrated = true

	s.publish(ctx, events.New(events.EventSessionEnded, s.sessionID,
		events.SessionEndedPayload{NavigateTo: PublicRoot}))
	return PublicRoot, nil
}

// Identity returns the cached identity, if any.
func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event)
}

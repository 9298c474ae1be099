package guard

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/events"
	"github.com/spec-kit/skylink-gateway/internal/observability"
	"github.com/spec-kit/skylink-gateway/internal/session"
	"github.com/spec-kit/skylink-gateway/internal/token"
)

// Reason classifies why the guard redirected.
type Reason string

const (
	ReasonAuthorized      Reason = "authorized"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonExpired         Reason = "expired"
	ReasonForbidden       Reason = "forbidden"
	ReasonStorageFailure  Reason = "storage_failure"
)

// Decision is the guard's verdict for one gated view. Exactly one of Allow
// or Redirect applies; the guard itself never renders or navigates.
type Decision struct {
	Allow    bool
	Identity *domain.Identity
	Redirect string
	Reason   Reason
}

// Guard decides whether a requested view renders or redirects. It always
// revalidates the persisted credential; in-memory session state is never
// consulted for authorization.
type Guard struct {
	creds     credstore.Keyed
	validator *token.Validator
	events    events.Dispatcher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// New builds the guard. Detected expiry is broadcast on the dispatcher so the
// session layer can drop its cached state; a nil dispatcher disables that.
func New(creds credstore.Keyed, validator *token.Validator, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Guard {
	return &Guard{creds: creds, validator: validator, events: dispatcher, metrics: metrics, logger: logger}
}

// Check evaluates the persisted credential for the session against the
// required role set. An empty required set means any authenticated identity.
// Expired and malformed persisted credentials are purged as a side effect,
// and an expiry additionally ends the session through a credential_expired
// event; the decision itself is a pure function of (credential, now, required).
//
// An authenticated identity lacking the required role is sent to its own
// role's home view when one exists, and to the login view otherwise.
func (g *Guard) Check(ctx context.Context, sessionID string, required ...domain.Role) Decision {
	store := g.creds.For(sessionID)

	credential, err := store.Load(ctx)
	if err != nil {
		// storage fault: fail closed
		g.logger.Error("credential load failed", zap.String("session_id", sessionID), zap.Error(err))
		return g.redirect(session.LoginPath, ReasonStorageFailure)
	}

	identity, err := g.validator.Validate(credential)
	if err != nil {
		if errors.Is(err, token.ErrCredentialExpired) || errors.Is(err, token.ErrCredentialMalformed) {
			_ = store.Clear(ctx)
		}
		reason := ReasonUnauthenticated
		if errors.Is(err, token.ErrCredentialExpired) {
			reason = ReasonExpired
			g.publishExpired(ctx, sessionID)
		}
		return g.redirect(session.LoginPath, reason)
	}

	if len(required) > 0 && !roleAllowed(identity.Role, required) {
		if home := identity.Role.HomePath(); home != "" {
			return g.redirect(home, ReasonForbidden)
		}
		return g.redirect(session.LoginPath, ReasonForbidden)
	}

	g.metrics.RecordGuardDecision(true, string(ReasonAuthorized))
	return Decision{Allow: true, Identity: identity, Reason: ReasonAuthorized}
}

// publishExpired ends the session everywhere: purging the persisted copy is
// not enough when a hydrated store still caches the identity.
func (g *Guard) publishExpired(ctx context.Context, sessionID string) {
	if g.events == nil {
		return
	}
	_ = g.events.Publish(ctx, events.New(events.EventCredentialExpired, sessionID,
		events.CredentialExpiredPayload{NavigateTo: session.LoginPath}))
}

func (g *Guard) redirect(target string, reason Reason) Decision {
	g.metrics.RecordGuardDecision(false, string(reason))
	return Decision{Redirect: target, Reason: reason}
}

func roleAllowed(role domain.Role, required []domain.Role) bool {
	for _, candidate := range required {
		if role == candidate {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/session"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
	apperrors "github.com/spec-kit/skylink-gateway/pkg/util/errorutil"
)

// AuthService coordinates the upstream auth API with the session layer.
type AuthService struct {
	upstream *upstream.Client
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(client *upstream.Client, sessions *session.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{upstream: client, sessions: sessions, logger: logger}
}

// Login authenticates against the upstream and binds the issued credential to
// the session. The decoded credential is authoritative for the role; a
// disagreeing role hint in the login response is logged as an integration
// warning and otherwise ignored.
func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*domain.Identity, error) {
	result, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	identity, err := s.sessions.Session(sessionID).Login(ctx, result.AccessToken)
	if err != nil {
		return nil, err
	}

	if result.Role != "" && result.Role != string(identity.Role) {
		s.logger.Warn("login role hint disagrees with issued credential",
			zap.String("hint", result.Role),
			zap.String("credential_role", string(identity.Role)))
	}
	return identity, nil
}

// Register forwards a registration to the upstream after applying the same
// preconditions the upstream enforces, so obviously doomed requests fail
// before the network call.
func (s *AuthService) Register(ctx context.Context, req upstream.RegisterRequest) error {
	role := req.Role
	if role == "" {
		role = string(domain.RolePassenger)
	}
	if role == string(domain.RoleAdmin) {
		return apperrors.NewForbidden("admin accounts cannot be created here")
	}
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if parsed == domain.RoleStaff && strings.TrimSpace(req.EmployeeID) == "" {
		return apperrors.NewValidationError("employee id is required for staff accounts", nil)
	}

	req.Role = string(parsed)
	req.EmployeeID = strings.ToUpper(strings.TrimSpace(req.EmployeeID))
	return s.upstream.Register(ctx, req)
}

// Logout ends the session: the credential is purged, the cached store
// dropped, and the navigation reset target returned for the transport layer.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (string, error) {
	target, err := s.sessions.Session(sessionID).Logout(ctx)
	if err != nil {
		return "", err
	}
	s.sessions.Drop(sessionID)
	return target, nil
}

// CurrentIdentity returns the session's cached identity, hydrating on first
// use.
func (s *AuthService) CurrentIdentity(ctx context.Context, sessionID string) (domain.Identity, bool, error) {
	store := s.sessions.Session(sessionID)
	if err := store.Hydrate(ctx); err != nil {
		return domain.Identity{}, false, err
	}
	identity, ok := store.Identity()
	return identity, ok, nil
}

// ForgotPassword passes a reset request through to the upstream.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*upstream.ResetIssued, error) {
	return s.upstream.ForgotPassword(ctx, email)
}

// ResetPassword passes a reset confirmation through to the upstream.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password string) error {
	return s.upstream.ResetPassword(ctx, resetToken, password)
}

package token

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/skylink-gateway/internal/domain"
)

// Sentinel results for credential validation. Credentials come from persisted
// storage or straight off the wire, so every data-shape problem collapses to
// one of these rather than a panic or a parser-specific error.
var (
	// ErrCredentialAbsent means no credential was presented at all.
	ErrCredentialAbsent = errors.New("credential absent")
	// ErrCredentialMalformed means the credential could not be decoded.
	ErrCredentialMalformed = errors.New("credential malformed")
	// ErrCredentialExpired means the credential decoded but its expiry has
	// passed; callers should purge any persisted copy.
	ErrCredentialExpired = errors.New("credential expired")
)

// Claims mirrors the JWT payload the upstream auth service issues.
type Claims struct {
	Role       string `json:"role"`
	FullName   string `json:"full_name"`
	EmployeeID string `json:"employee_id"`
	UserID     int64  `json:"user_id"`
	jwt.RegisteredClaims
}

// Validator performs the pure decode-and-check of a bearer credential.
//
// The credential is opaque to this gateway: it is signed by the upstream auth
// service with a key we never hold, so the decode is structural only. Expiry
// is checked here against an injectable clock; a credential expiring exactly
// now is already invalid.
type Validator struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewValidator builds a validator. A nil clock defaults to time.Now.
func NewValidator(clock func() time.Time) *Validator {
	if clock == nil {
		clock = time.Now
	}
	return &Validator{parser: jwt.NewParser(), now: clock}
}

// Validate decodes the credential and checks its expiry. It has no side
// effects and is deterministic given (credential, clock). Callers decide what
// to do with the returned sentinel, typically purging persisted copies on
// ErrCredentialMalformed and ErrCredentialExpired.
func (v *Validator) Validate(credential string) (*domain.Identity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrCredentialAbsent
	}

	claims := &Claims{}
	if _, _, err := v.parser.ParseUnverified(credential, claims); err != nil {
		return nil, ErrCredentialMalformed
	}
	if claims.ExpiresAt == nil {
		return nil, ErrCredentialMalformed
	}
	if !claims.ExpiresAt.Time.After(v.now()) {
		return nil, ErrCredentialExpired
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, ErrCredentialMalformed
	}

	identity := &domain.Identity{
		Subject:    claims.Subject,
		Role:       role,
		FullName:   claims.FullName,
		EmployeeID: claims.EmployeeID,
		UserID:     claims.UserID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}

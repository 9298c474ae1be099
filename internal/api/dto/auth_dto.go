package dto

import "github.com/spec-kit/skylink-gateway/internal/domain"

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
}

// ForgotPasswordRequest payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// IdentityResponse is the rendered view of an authenticated identity.
type IdentityResponse struct {
	Subject    string `json:"subject"`
	Role       string `json:"role"`
	FullName   string `json:"full_name,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// NewIdentityResponse maps a domain identity onto its response shape.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		Subject:    identity.Subject,
		Role:       string(identity.Role),
		FullName:   identity.FullName,
		EmployeeID: identity.EmployeeID,
	}
}

// LoginResponse carries the identity and where the client should navigate.
type LoginResponse struct {
	Identity IdentityResponse `json:"identity"`
	Redirect string           `json:"redirect"`
}

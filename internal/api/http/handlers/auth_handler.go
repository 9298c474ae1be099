package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/skylink-gateway/internal/api/dto"
	"github.com/spec-kit/skylink-gateway/internal/guard"
	"github.com/spec-kit/skylink-gateway/internal/service"
	"github.com/spec-kit/skylink-gateway/internal/session"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
	apperrors "github.com/spec-kit/skylink-gateway/pkg/util/errorutil"
)

// AuthHandler exposes the login, registration and password reset surface.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	identity, err := h.auth.Login(c.UserContext(), guard.SessionIDFromContext(c), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrPostLoginDecode) {
			return apperrors.NewAuthIntegrationError(err)
		}
		return err
	}

	redirect := identity.Role.HomePath()
	if redirect == "" {
		redirect = session.PublicRoot
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Identity: dto.NewIdentityResponse(*identity),
		Redirect: redirect,
	}})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	err := h.auth.Register(c.UserContext(), upstream.RegisterRequest{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"message": "account created"},
	})
}

// Logout handles POST /auth/logout. The session core hands back the
// navigation reset target; this layer turns it into the actual redirect.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	target, err := h.auth.Logout(c.UserContext(), guard.SessionIDFromContext(c))
	if err != nil {
		return err
	}
	return c.Redirect(target, fiber.StatusFound)
}

// Me handles GET /me for any authenticated identity. The guard has already
// authorized the request; the rendered identity comes from the session store,
// hydrating it on first use.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok, err := h.auth.CurrentIdentity(c.UserContext(), guard.SessionIDFromContext(c))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(identity)})
}

// ForgotPassword handles POST /auth/password/forgot.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	issued, err := h.auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issued})
}

// ResetPassword handles POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" || req.Password == "" {
		return apperrors.NewValidationError("token and password required", nil)
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password reset"}})
}

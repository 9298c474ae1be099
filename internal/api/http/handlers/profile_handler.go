package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/skylink-gateway/internal/api/dto"
	"github.com/spec-kit/skylink-gateway/internal/guard"
	apperrors "github.com/spec-kit/skylink-gateway/pkg/util/errorutil"
)

// ProfileHandler serves the role-gated profile views. The views themselves
// are thin; the interesting part is that the guard in front of them has
// already decided render-or-redirect.
type ProfileHandler struct{}

// NewProfileHandler constructs handler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Passenger handles GET /profile/passenger.
func (h *ProfileHandler) Passenger(c *fiber.Ctx) error {
	identity, ok := guard.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"view":     "passenger_profile",
		"identity": dto.NewIdentityResponse(*identity),
	}})
}

// Staff handles GET /profile/staff.
func (h *ProfileHandler) Staff(c *fiber.Ctx) error {
	identity, ok := guard.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"view":        "staff_profile",
		"identity":    dto.NewIdentityResponse(*identity),
		"employee_id": identity.EmployeeID,
	}})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/skylink-gateway/internal/api/dto"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/guard"
	"github.com/spec-kit/skylink-gateway/internal/service"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
	apperrors "github.com/spec-kit/skylink-gateway/pkg/util/errorutil"
)

// FlightsHandler exposes the flight search and booking surface.
type FlightsHandler struct {
	flights *service.FlightService
}

// NewFlightsHandler constructs handler.
func NewFlightsHandler(flightService *service.FlightService) *FlightsHandler {
	return &FlightsHandler{flights: flightService}
}

// Search handles GET /flights. The listing is public, like the marketing
// pages in front of it.
func (h *FlightsHandler) Search(c *fiber.Ctx) error {
	flights, err := h.flights.Search(c.UserContext(), domain.FlightQuery{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": flights})
}

// Book handles POST /bookings for any authenticated identity.
func (h *FlightsHandler) Book(c *fiber.Ctx) error {
	var req dto.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.FlightID == 0 {
		return apperrors.NewValidationError("flight_id required", nil)
	}
	if req.Passengers <= 0 {
		req.Passengers = 1
	}

	booking, err := h.flights.Book(c.UserContext(), guard.SessionIDFromContext(c), upstream.BookingRequest{
		FlightID:   req.FlightID,
		Passengers: req.Passengers,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": booking})
}

package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/skylink-gateway/internal/api/http/handlers"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/guard"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Flights *handlers.FlightsHandler
	Profile *handlers.ProfileHandler
	Guard   *guard.Guard
	Metrics nethttp.Handler
}

// RegisterRoutes wires HTTP routes. Public views mirror the marketing
// surface; everything under a RequireRoles gate is render-or-redirect.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)

	app.Get("/flights", cfg.Flights.Search)

	app.Get("/me", guard.RequireRoles(cfg.Guard), cfg.Auth.Me)
	app.Post("/bookings", guard.RequireRoles(cfg.Guard), cfg.Flights.Book)
	app.Get("/profile/passenger", guard.RequireRoles(cfg.Guard, domain.RolePassenger), cfg.Profile.Passenger)
	app.Get("/profile/staff", guard.RequireRoles(cfg.Guard, domain.RoleStaff), cfg.Profile.Staff)
}

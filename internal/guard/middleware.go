package guard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/skylink-gateway/internal/domain"
)

const (
	sessionIDKey = "session_id"
	identityKey  = "identity"
)

// SessionCookie assigns every visitor an opaque session ID cookie. The cookie
// carries no identity; it only keys the persisted credential store.
func SessionCookie(cookieName string, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)
		if sessionID == "" {
			sessionID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    sessionID,
				Path:     "/",
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionIDKey, sessionID)
		return c.Next()
	}
}

// SessionIDFromContext returns the session ID set by SessionCookie.
func SessionIDFromContext(c *fiber.Ctx) string {
	sessionID, _ := c.Locals(sessionIDKey).(string)
	return sessionID
}

// RequireRoles gates a route on the guard's decision. The redirect outcome is
// rendered as a 302; the gated handler never runs, not even partially, for a
// disallowed identity.
func RequireRoles(g *Guard, required ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.Check(c.UserContext(), SessionIDFromContext(c), required...)
		if !decision.Allow {
			return c.Redirect(decision.Redirect, fiber.StatusFound)
		}
		c.Locals(identityKey, decision.Identity)
		return c.Next()
	}
}

// IdentityFromContext retrieves the identity loaded by RequireRoles.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

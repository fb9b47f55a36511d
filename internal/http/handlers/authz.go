package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"glowcandles/internal/domain"
	applog "glowcandles/internal/log"
	"glowcandles/internal/services"
)

const principalKey = "principal"

// Authenticate reads an optional bearer token. A valid token puts the
// principal in Locals; a missing or bad one leaves the request anonymous and
// the Require* guards decide.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearer(c)
		if raw == "" {
			return c.Next()
		}
		p, err := auth.Authenticate(raw)
		if err != nil {
			applog.Security(c, "auth.token.invalid", map[string]any{"error": err.Error()})
			return c.Next()
		}
		c.Locals(principalKey, p)
		c.Locals("user_id", p.UserID)
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func principal(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(principalKey).(domain.Principal)
	return p, ok
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := principal(c); !ok {
			applog.Security(c, "access.denied.anonymous", nil)
			return fail(c, fiber.StatusUnauthorized, "Authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin rejects anyone without the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok {
			applog.Security(c, "access.denied.anonymous", nil)
			return fail(c, fiber.StatusUnauthorized, "Authentication required")
		}
		if !p.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"user_id": p.UserID})
			return fail(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}

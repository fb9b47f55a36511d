package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "glowcandles/internal/log"
	"glowcandles/internal/repos"
	"glowcandles/internal/services"
	"glowcandles/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := bind(c, &in); err != nil {
		return respondError(c, "auth.register", err)
	}
	sess, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, "auth.register", err)
	}
	c.Locals("user_id", sess.User.ID)
	applog.Audit(c, "auth.register", map[string]any{"email": sess.User.Email})
	return created(c, "Registration successful", sess)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.login(c, "auth.login", h.Auth.Login)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, "auth.admin_login", h.Auth.AdminLogin)
}

func (h *AuthHandler) login(c *fiber.Ctx, action string, fn func(ctx context.Context, email, password string) (*services.Session, error)) error {
	var in loginRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, action, err)
	}
	email, valid := validate.Email(in.Email)
	if !valid || in.Password == "" {
		applog.Security(c, action+".fail", map[string]any{"reason": "malformed"})
		return fail(c, fiber.StatusUnauthorized, services.ErrBadCredentials.Error())
	}
	sess, err := fn(c.UserContext(), email, in.Password)
	if err != nil {
		applog.Security(c, action+".fail", map[string]any{"email": email})
		return respondError(c, action, err)
	}
	c.Locals("user_id", sess.User.ID)
	applog.Audit(c, action, map[string]any{"role": sess.User.Role})
	return ok(c, sess)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, _ := principal(c)
	u, err := h.Auth.Me(c.UserContext(), p)
	if errors.Is(err, repos.ErrNotFound) {
		return fail(c, fiber.StatusUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return respondError(c, "auth.me", err)
	}
	return ok(c, u)
}

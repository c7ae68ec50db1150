package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "giftfinder/internal/log"
	"giftfinder/internal/services"
)

// RequireAdmin sends browsers without a stored token to the login page
// before any upstream call is made.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_session"})
			return c.Redirect("/admin/login")
		}
		ok, err := auth.HasToken(c.UserContext(), sid)
		if err != nil || !ok {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_token"})
			return c.Redirect("/admin/login")
		}
		c.Locals("admin", true)
		return c.Next()
	}
}

// toLogin is the single failure path of the admin screens: any error,
// including a rejected token, ends on the login page.
func toLogin(c *fiber.Ctx, action string, err error) error {
	if errors.Is(err, services.ErrNotAuthenticated) {
		applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_token"})
	} else {
		applog.Error(c, action, err, map[string]any{"upstream_status": statusOf(err)})
	}
	return c.Redirect("/admin/login")
}

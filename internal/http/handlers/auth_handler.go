package handlers

import (
	"github.com/gofiber/fiber/v2"

	"giftfinder/internal/apiclient"
	applog "giftfinder/internal/log"
	"giftfinder/internal/services"
	"giftfinder/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

// GET /admin/login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "admin_login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, status int, msg string) error {
	if msg == "" {
		msg = localeOf(c).T("admin.login.failed")
	}
	c.Status(status)
	return render(c, "admin_login", fiber.Map{"Err": msg, "Username": c.FormValue("username")})
}

// POST /admin/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	user, ok := validate.Username(c.FormValue("username"))
	pass := c.FormValue("password")
	if !ok || !validate.Password(pass) {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return h.loginFailed(c, fiber.StatusUnauthorized, "")
	}

	if err := h.Auth.Login(c.UserContext(), sid, user, pass); err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"username": user, "upstream_status": statusOf(err)})
		status := fiber.StatusUnauthorized
		if statusOf(err) == 0 {
			status = fiber.StatusBadGateway
		}
		return h.loginFailed(c, status, apiclient.Message(err))
	}

	applog.Audit(c, "auth.login.success", map[string]any{"username": user})
	return c.Redirect("/admin/dashboard")
}

// POST /admin/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			applog.Error(c, "auth.logout.fail", err, nil)
		}
	}
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/admin/login")
}

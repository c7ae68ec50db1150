package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"giftfinder/internal/i18n"
	applog "giftfinder/internal/log"
	"giftfinder/internal/repos"
)

const sidCookie = "sid"

func sessionID(c *fiber.Ctx) string { return c.Cookies(sidCookie) }

// ensureSID returns the browser's session id, issuing one if needed.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(365 * 24 * time.Hour),
		})
	}
	return sid
}

func localeOf(c *fiber.Ctx) i18n.Locale {
	if l, ok := c.Locals("locale").(i18n.Locale); ok {
		return l
	}
	return i18n.Locale{Lang: i18n.Default}
}

func currentLang(c *fiber.Ctx) i18n.Lang { return localeOf(c).Lang }

type LocaleHandler struct {
	Provider *i18n.Provider
	Sessions *repos.SessionRepo
}

// Middleware resolves the request language: the browser's stored choice,
// else the process default.
func (h *LocaleHandler) Middleware(c *fiber.Ctx) error {
	var lang i18n.Lang
	if sid := sessionID(c); sid != "" {
		stored, err := h.Sessions.Lang(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "locale.load.fail", err, nil)
		}
		if l := i18n.Lang(stored); l.Valid() {
			lang = l
		}
	}
	c.Locals("locale", h.Provider.For(lang))
	return c.Next()
}

// POST /lang
func (h *LocaleHandler) Switch(c *fiber.Ctx) error {
	lang := i18n.ParseLang(c.FormValue("lang"))
	sid := ensureSID(c)
	if err := h.Sessions.SetLang(c.UserContext(), sid, string(lang)); err != nil {
		applog.Error(c, "locale.save.fail", err, nil)
	}
	applog.Info(c, "locale.switch", map[string]any{"lang": lang})
	return c.Redirect(backTo(c.FormValue("next")))
}

// backTo only follows local paths.
func backTo(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"giftfinder/internal/i18n"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	lang := currentLang(c)
	data["Lang"] = lang
	data["Dir"] = i18n.Dir(lang)
	data["Path"] = c.Path()
	if v, ok := c.Locals("admin").(bool); ok && v {
		data["Admin"] = true
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Fall back to the cookie when the middleware left Locals empty.
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// renderError shows the localized failure message in place of the page.
func renderError(c *fiber.Ctx, status int, key string) error {
	c.Status(status)
	return render(c, "error", fiber.Map{"Message": localeOf(c).T(key)})
}

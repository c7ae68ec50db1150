package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"giftfinder/internal/i18n"
	applog "giftfinder/internal/log"
)

type AppOptions struct {
	Deps      *Deps
	Dict      *i18n.Dictionary
	Templates string
	StaticDir string
	BodyLimit int
	Reload    bool
	// AccessLog enables fiber's request logger.
	AccessLog bool
	// RateMax is the global per-IP budget per minute; LoginMax is the
	// login budget per ten minutes.
	RateMax  int
	LoginMax int
	Gatherer prometheus.Gatherer
}

// NewApp assembles middleware and routes.
func NewApp(o AppOptions) *fiber.App {
	if o.RateMax == 0 {
		o.RateMax = 120
	}
	if o.LoginMax == 0 {
		o.LoginMax = 5
	}
	if o.BodyLimit == 0 {
		o.BodyLimit = 8 << 20
	}

	app := fiber.New(fiber.Config{
		Views:     NewEngine(o.Templates, o.Dict, o.Reload),
		BodyLimit: o.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code == fiber.StatusNotFound {
				return renderError(c, code, "common.notFound")
			}
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := renderError(c, code, "common.error"); rerr != nil {
				return c.Status(code).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if o.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' https: http: data:; style-src 'self'; form-action 'self'; frame-ancestors 'none'",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        o.RateMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return renderError(c, fiber.StatusTooManyRequests, "common.error")
		},
	}))
	app.Use(o.Deps.LocaleHandler.Middleware)
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		ContextKey:     "csrf",
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/healthz"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return renderError(c, fiber.StatusForbidden, "common.error")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	if o.StaticDir != "" {
		app.Static("/static", o.StaticDir)
	}

	d := o.Deps

	// Public pages
	app.Get("/", d.HomeHandler.Landing)
	app.Get("/finder", d.FinderHandler.Start)
	app.Post("/finder", d.FinderHandler.Step)
	app.Get("/stores", d.CatalogHandler.Stores)
	app.Get("/gifts", d.CatalogHandler.Gifts)
	app.Post("/lang", d.LocaleHandler.Switch)

	// Admin auth (login throttled)
	app.Get("/admin/login", d.AuthHandler.LoginForm)
	app.Post("/admin/login", limiter.New(limiter.Config{
		Max:        o.LoginMax,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "admin_login", fiber.Map{"Err": localeOf(c).T("admin.login.throttled")})
		},
	}), d.AuthHandler.Login)
	app.Post("/admin/logout", d.AuthHandler.Logout)

	// Admin screens
	ah := d.AdminHandler
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/dashboard", ah.Dashboard)
	admin.Get("/stores", ah.Stores)
	admin.Post("/stores", ah.SaveStore)
	admin.Get("/stores/:id/delete", ah.ConfirmDeleteStore)
	admin.Post("/stores/:id/delete", ah.DeleteStore)
	admin.Get("/gifts", ah.Gifts)
	admin.Post("/gifts", ah.SaveGift)
	admin.Get("/gifts/:id/delete", ah.ConfirmDeleteGift)
	admin.Post("/gifts/:id/delete", ah.DeleteGift)
	admin.Get("/", ah.Home)
	admin.Get("/*", ah.Home)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	if o.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))
	}
	app.Use(func(c *fiber.Ctx) error {
		return renderError(c, fiber.StatusNotFound, "common.notFound")
	})

	return app
}

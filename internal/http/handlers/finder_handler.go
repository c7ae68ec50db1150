package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/finder"
	applog "giftfinder/internal/log"
	"giftfinder/internal/services"
)

type FinderHandler struct {
	Finder  *services.FinderService
	Catalog *services.CatalogService
}

// fiberForm adapts a request's form body to finder.Form.
type fiberForm struct{ c *fiber.Ctx }

func (f fiberForm) Value(k string) string { return f.c.FormValue(k) }

func (f fiberForm) Values(k string) []string {
	var out []string
	f.c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if string(key) == k {
			out = append(out, string(value))
		}
	})
	return out
}

func (h *FinderHandler) page(c *fiber.Ctx, w finder.Wizard, extra fiber.Map) error {
	data := fiber.Map{
		"Wizard":        w,
		"Total":         finder.LastStep,
		"Genders":       finder.Genders,
		"Relationships": finder.Relationships,
		"Interests":     h.Catalog.Interests(c.UserContext()),
		"MaxInterests":  finder.MaxInterests,
		"Outcome":       finder.Outcome{Phase: finder.Idle},
	}
	for k, v := range extra {
		data[k] = v
	}
	return render(c, "finder", data)
}

// GET /finder
func (h *FinderHandler) Start(c *fiber.Ctx) error {
	return h.page(c, finder.New(), nil)
}

// POST /finder moves between steps or, with action=submit, asks for
// recommendations.
func (h *FinderHandler) Step(c *fiber.Ctx) error {
	w, gaps := finder.ParseWizard(fiberForm{c})
	switch c.FormValue("action") {
	case "back":
		w.Back()
		return h.page(c, w, nil)
	case "submit":
		if w.Step != finder.LastStep {
			w.Next()
			return h.page(c, w, nil)
		}
	default:
		w.Next()
		return h.page(c, w, nil)
	}

	for _, g := range gaps {
		applog.Info(c, "validation.gap", map[string]any{"field": g.Field, "value": g.Raw})
	}

	lang := currentLang(c)
	out := h.Finder.Submit(c.UserContext(), sessionID(c), string(lang), w)
	if out.Phase == finder.Failed {
		applog.Error(c, "finder.recommend.fail", out.Err, map[string]any{"status": statusOf(out.Err)})
		c.Status(fiber.StatusBadGateway)
		return h.page(c, w, fiber.Map{"Outcome": out, "Error": localeOf(c).T("common.error")})
	}
	applog.Info(c, "finder.recommend", map[string]any{"results": len(out.Results)})
	return h.page(c, w, fiber.Map{"Outcome": out, "Count": len(out.Results)})
}

func statusOf(err error) int {
	var re *apiclient.RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

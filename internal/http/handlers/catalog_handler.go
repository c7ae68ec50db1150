package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"giftfinder/internal/domain"
	applog "giftfinder/internal/log"
	"giftfinder/internal/services"
	"giftfinder/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /stores
func (h *CatalogHandler) Stores(c *fiber.Ctx) error {
	stores, err := h.Catalog.Stores(c.UserContext())
	if err != nil {
		applog.Error(c, "stores.list.fail", err, nil)
		return renderError(c, fiber.StatusBadGateway, "common.error")
	}
	return render(c, "stores", fiber.Map{"Stores": stores})
}

// GET /gifts
func (h *CatalogHandler) Gifts(c *fiber.Ctx) error {
	var f domain.GiftFilters
	if raw := c.Query("name"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			return h.badFilter(c, f, "name")
		}
		f.Name = q
	}
	if raw := c.Query("category"); raw != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			return h.badFilter(c, f, "category")
		}
		f.Category = cat
	}
	if raw := c.Query("store_id"); raw != "" {
		f.StoreID, _ = validate.ID(raw)
	}
	f.MinBudget = validate.Float(c.Query("min_budget"), 0)
	f.MaxBudget = validate.Float(c.Query("max_budget"), 0)

	page, err := h.Catalog.Gifts(c.UserContext(), f)
	if err != nil {
		applog.Error(c, "gifts.list.fail", err, nil)
		return renderError(c, fiber.StatusBadGateway, "common.error")
	}
	return render(c, "gifts", fiber.Map{
		"Filters":    f,
		"Gifts":      page.Gifts,
		"Stores":     page.Stores,
		"Categories": page.Categories,
	})
}

// badFilter re-renders the filter form with an inline message. The gift
// list is not fetched; the rejected value is dropped from the form.
func (h *CatalogHandler) badFilter(c *fiber.Ctx, f domain.GiftFilters, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	page, err := h.Catalog.Choices(c.UserContext())
	if err != nil {
		applog.Error(c, "gifts.list.fail", err, nil)
		return renderError(c, fiber.StatusBadGateway, "common.error")
	}
	c.Status(fiber.StatusBadRequest)
	return render(c, "gifts", fiber.Map{
		"Filters":    f,
		"Stores":     page.Stores,
		"Categories": page.Categories,
		"FilterErr":  localeOf(c).T("gifts.invalidFilter"),
	})
}

package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"giftfinder/internal/domain"
	applog "giftfinder/internal/log"
	"giftfinder/internal/media"
	"giftfinder/internal/services"
	"giftfinder/internal/validate"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /admin, /admin/* fallback
func (h *AdminHandler) Home(c *fiber.Ctx) error {
	return c.Redirect("/admin/dashboard")
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Admin.Stats(c.UserContext(), sessionID(c))
	if err != nil {
		return toLogin(c, "admin.stats.fail", err)
	}
	return render(c, "admin_dashboard", fiber.Map{"Stats": stats})
}

type storeForm struct {
	Mode      string
	Store     domain.Store
	ImageMode string
	Err       string
}

type giftForm struct {
	Mode      string
	Gift      domain.Gift
	Interests string
	ImageMode string
	Err       string
}

func imageMode(url string) string {
	if media.IsDataURI(url) {
		return "upload"
	}
	return "url"
}

var errImage = errors.New("invalid image")

// imageFromForm resolves the image field: a typed link, or an uploaded file
// turned into a data URI. Upload mode without a new file keeps the stored
// image.
func imageFromForm(c *fiber.Ctx) (string, error) {
	if c.FormValue("image_mode") == "upload" {
		fh, err := c.FormFile("image_file")
		if err != nil || fh == nil || fh.Size == 0 {
			cur, ok := validate.ImageURL(c.FormValue("image_current"))
			if !ok {
				return "", errImage
			}
			return cur, nil
		}
		return media.FromFileHeader(fh)
	}
	u, ok := validate.ImageURL(c.FormValue("image_url"))
	if !ok {
		return "", errImage
	}
	return u, nil
}

// formID reads the hidden id: 0 means create.
func formID(c *fiber.Ctx) (int64, bool) {
	raw := strings.TrimSpace(c.FormValue("id"))
	if raw == "" {
		return 0, true
	}
	return validate.ID(raw)
}

// ---------- Stores ----------

// GET /admin/stores
func (h *AdminHandler) Stores(c *fiber.Ctx) error {
	return h.storesPage(c, nil, nil)
}

func (h *AdminHandler) storesPage(c *fiber.Ctx, form *storeForm, confirm *domain.Store) error {
	stores, err := h.Admin.Stores(c.UserContext(), sessionID(c))
	if err != nil {
		return toLogin(c, "admin.stores.list.fail", err)
	}
	if form == nil {
		if c.Query("new") != "" {
			form = &storeForm{Mode: "new", ImageMode: "url"}
		} else if id, ok := validate.ID(c.Query("edit")); ok {
			for _, s := range stores {
				if s.ID == id {
					form = &storeForm{Mode: "edit", Store: s, ImageMode: imageMode(s.ImageURL)}
				}
			}
		}
	}
	if confirm != nil {
		for _, s := range stores {
			if s.ID == confirm.ID {
				*confirm = s
			}
		}
	}
	return render(c, "admin_stores", fiber.Map{"Stores": stores, "Form": form, "Confirm": confirm})
}

func storeFromForm(c *fiber.Ctx) (domain.Store, string) {
	var s domain.Store
	var ok bool
	if s.NameAR, ok = validate.Name(c.FormValue("name_ar")); !ok {
		return s, "name_ar"
	}
	if s.NameEN, ok = validate.Name(c.FormValue("name_en")); !ok {
		return s, "name_en"
	}
	if s.LocationURL, ok = validate.URL(c.FormValue("location_url")); !ok {
		return s, "location_url"
	}
	s.DescriptionAR = validate.Text(c.FormValue("description_ar"), 2000)
	s.DescriptionEN = validate.Text(c.FormValue("description_en"), 2000)
	return s, ""
}

// POST /admin/stores creates when id is empty and updates otherwise.
func (h *AdminHandler) SaveStore(c *fiber.Ctx) error {
	id, ok := formID(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Redirect("/admin/stores")
	}
	mode := "new"
	if id != 0 {
		mode = "edit"
	}
	st, bad := storeFromForm(c)
	img, err := imageFromForm(c)
	if bad == "" && err != nil {
		bad = "image"
	}
	st.ImageURL = img
	if bad != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": bad})
		st.ID = id
		c.Status(fiber.StatusBadRequest)
		return h.storesPage(c, &storeForm{Mode: mode, Store: st, ImageMode: c.FormValue("image_mode"), Err: bad}, nil)
	}

	saved, err := h.Admin.SaveStore(c.UserContext(), sessionID(c), id, st)
	if err != nil {
		return toLogin(c, "admin.stores.save.fail", err)
	}
	applog.Audit(c, "admin.stores.save", map[string]any{"store_id": saved.ID, "mode": mode})
	return c.Redirect("/admin/stores")
}

// GET /admin/stores/:id/delete asks for confirmation.
func (h *AdminHandler) ConfirmDeleteStore(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/admin/stores")
	}
	return h.storesPage(c, nil, &domain.Store{ID: id})
}

// POST /admin/stores/:id/delete
func (h *AdminHandler) DeleteStore(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok || c.FormValue("confirm") != "yes" {
		return c.Redirect("/admin/stores")
	}
	if err := h.Admin.DeleteStore(c.UserContext(), sessionID(c), id); err != nil {
		return toLogin(c, "admin.stores.delete.fail", err)
	}
	applog.Audit(c, "admin.stores.delete", map[string]any{"store_id": id})
	return c.Redirect("/admin/stores")
}

// ---------- Gifts ----------

// GET /admin/gifts
func (h *AdminHandler) Gifts(c *fiber.Ctx) error {
	return h.giftsPage(c, nil, nil)
}

func newGiftForm() *giftForm {
	return &giftForm{Mode: "new", Gift: domain.Gift{MinAge: 0, MaxAge: 99}, ImageMode: "url"}
}

func (h *AdminHandler) giftsPage(c *fiber.Ctx, form *giftForm, confirm *domain.Gift) error {
	screen, err := h.Admin.GiftsScreen(c.UserContext(), sessionID(c))
	if err != nil {
		return toLogin(c, "admin.gifts.list.fail", err)
	}
	if form == nil {
		if c.Query("new") != "" {
			form = newGiftForm()
		} else if id, ok := validate.ID(c.Query("edit")); ok {
			for _, g := range screen.Gifts {
				if g.ID == id {
					form = &giftForm{Mode: "edit", Gift: g, Interests: strings.Join(g.Interests, ", "), ImageMode: imageMode(g.ImageURL)}
				}
			}
		}
	}
	if confirm != nil {
		for _, g := range screen.Gifts {
			if g.ID == confirm.ID {
				*confirm = g
			}
		}
	}
	return render(c, "admin_gifts", fiber.Map{
		"Gifts":      screen.Gifts,
		"Stores":     screen.Stores,
		"Categories": screen.Categories,
		"Form":       form,
		"Confirm":    confirm,
	})
}

func giftFromForm(c *fiber.Ctx) (domain.Gift, string) {
	var g domain.Gift
	var ok bool
	if g.StoreID, ok = validate.ID(c.FormValue("store_id")); !ok {
		return g, "store_id"
	}
	if g.NameAR, ok = validate.Name(c.FormValue("name_ar")); !ok {
		return g, "name_ar"
	}
	if g.NameEN, ok = validate.Name(c.FormValue("name_en")); !ok {
		return g, "name_en"
	}
	if g.Category, ok = validate.Category(c.FormValue("category")); !ok {
		return g, "category"
	}
	g.MinAge = validate.Int(c.FormValue("min_age"), 0)
	g.MaxAge = validate.Int(c.FormValue("max_age"), 99)
	g.MinBudget = validate.Float(c.FormValue("min_budget"), 0)
	g.MaxBudget = validate.Float(c.FormValue("max_budget"), 0)
	g.Gender = validate.Text(c.FormValue("gender"), 20)
	g.Occasion = validate.Text(c.FormValue("occasion"), 50)
	g.PersonalityType = validate.Text(c.FormValue("personality_type"), 50)
	g.Interests = validate.List(c.FormValue("interests"))
	g.DescriptionAR = validate.Text(c.FormValue("description_ar"), 2000)
	g.DescriptionEN = validate.Text(c.FormValue("description_en"), 2000)
	return g, ""
}

// POST /admin/gifts creates when id is empty and updates otherwise.
func (h *AdminHandler) SaveGift(c *fiber.Ctx) error {
	id, ok := formID(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Redirect("/admin/gifts")
	}
	mode := "new"
	if id != 0 {
		mode = "edit"
	}
	g, bad := giftFromForm(c)
	img, err := imageFromForm(c)
	if bad == "" && err != nil {
		bad = "image"
	}
	g.ImageURL = img
	if bad != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": bad})
		g.ID = id
		c.Status(fiber.StatusBadRequest)
		return h.giftsPage(c, &giftForm{Mode: mode, Gift: g, Interests: c.FormValue("interests"), ImageMode: c.FormValue("image_mode"), Err: bad}, nil)
	}

	saved, err := h.Admin.SaveGift(c.UserContext(), sessionID(c), id, g)
	if err != nil {
		return toLogin(c, "admin.gifts.save.fail", err)
	}
	applog.Audit(c, "admin.gifts.save", map[string]any{"gift_id": saved.ID, "mode": mode})
	return c.Redirect("/admin/gifts")
}

// GET /admin/gifts/:id/delete asks for confirmation.
func (h *AdminHandler) ConfirmDeleteGift(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/admin/gifts")
	}
	return h.giftsPage(c, nil, &domain.Gift{ID: id})
}

// POST /admin/gifts/:id/delete
func (h *AdminHandler) DeleteGift(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok || c.FormValue("confirm") != "yes" {
		return c.Redirect("/admin/gifts")
	}
	if err := h.Admin.DeleteGift(c.UserContext(), sessionID(c), id); err != nil {
		return toLogin(c, "admin.gifts.delete.fail", err)
	}
	applog.Audit(c, "admin.gifts.delete", map[string]any{"gift_id": id})
	return c.Redirect("/admin/gifts")
}

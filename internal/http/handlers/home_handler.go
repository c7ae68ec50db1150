package handlers

import "github.com/gofiber/fiber/v2"

type HomeHandler struct{}

// GET /
func (h *HomeHandler) Landing(c *fiber.Ctx) error {
	return render(c, "landing", fiber.Map{})
}

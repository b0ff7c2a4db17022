package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	world *devserver.World
}

func NewHealthHandler(world *devserver.World) *HealthHandler {
	return &HealthHandler{world: world}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready reports ready once the world has been seeded.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.world.PlayerCount() == 0 {
		return fail(c, fiber.StatusServiceUnavailable, model.CodeUnavailable, "world not seeded")
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

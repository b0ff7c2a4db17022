package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PlayerHandler struct {
	world *devserver.World
}

func NewPlayerHandler(world *devserver.World) *PlayerHandler {
	return &PlayerHandler{world: world}
}

func (h *PlayerHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.world.Profile(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, profile)
}

func (h *PlayerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.world.Stats(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, stats)
}

func (h *PlayerHandler) Notifications(c *fiber.Ctx) error {
	return ok(c, list(h.world.Notifications(middleware.PlayerID(c))))
}

func (h *PlayerHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.world.MarkNotificationRead(middleware.PlayerID(c), c.Params("id")); err != nil {
		return worldError(c, err)
	}
	return ok(c, struct{}{})
}

func (h *PlayerHandler) MarkAllRead(c *fiber.Ctx) error {
	h.world.MarkAllNotificationsRead(middleware.PlayerID(c))
	return ok(c, struct{}{})
}

func (h *PlayerHandler) CollectAll(c *fiber.Ctx) error {
	res, err := h.world.CollectAll(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, true, res.Message)
}

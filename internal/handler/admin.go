package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	world  *devserver.World
	broker *devserver.Broker
}

func NewAdminHandler(world *devserver.World, broker *devserver.Broker) *AdminHandler {
	return &AdminHandler{world: world, broker: broker}
}

type AdminStats struct {
	PlayersTotal  int `json:"playersTotal"`
	StreamsOnline int `json:"streamsOnline"`
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	return ok(c, AdminStats{
		PlayersTotal:  h.world.PlayerCount(),
		StreamsOnline: h.broker.Count(),
	})
}

type AnnounceResult struct {
	Notified int `json:"notified"`
}

func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var req model.Announcement
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	n, err := h.world.Announce(req)
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, AnnounceResult{Notified: n})
}

func (h *AdminHandler) RefreshOperations(c *fiber.Ctx) error {
	return ok(c, h.world.RefreshOperations())
}

type IncomeResult struct {
	Players int `json:"players"`
}

// GenerateIncome runs one income cycle without waiting for the scheduler.
func (h *AdminHandler) GenerateIncome(c *fiber.Ctx) error {
	return ok(c, IncomeResult{Players: h.world.GenerateIncome()})
}

package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type TerritoryHandler struct {
	world *devserver.World
}

func NewTerritoryHandler(world *devserver.World) *TerritoryHandler {
	return &TerritoryHandler{world: world}
}

func (h *TerritoryHandler) Regions(c *fiber.Ctx) error {
	return ok(c, list(h.world.Regions()))
}

func (h *TerritoryHandler) Districts(c *fiber.Ctx) error {
	return ok(c, list(h.world.Districts(c.Query("parentId"))))
}

func (h *TerritoryHandler) Cities(c *fiber.Ctx) error {
	return ok(c, list(h.world.Cities(c.Query("parentId"))))
}

func (h *TerritoryHandler) Hotspots(c *fiber.Ctx) error {
	return ok(c, list(h.world.Hotspots(c.Query("parentId"))))
}

func (h *TerritoryHandler) Controlled(c *fiber.Ctx) error {
	return ok(c, list(h.world.ControlledHotspots(middleware.PlayerID(c))))
}

func (h *TerritoryHandler) Hotspot(c *fiber.Ctx) error {
	spot, err := h.world.Hotspot(c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, spot)
}

func (h *TerritoryHandler) Actions(c *fiber.Ctx) error {
	return ok(c, list(h.world.RecentActions(middleware.PlayerID(c))))
}

func (h *TerritoryHandler) Perform(c *fiber.Ctx) error {
	typ := model.ActionType(c.Params("type"))
	switch typ {
	case model.ActionExtortion, model.ActionTakeover, model.ActionCollection, model.ActionDefend:
	default:
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "unknown action type")
	}
	var req model.PerformActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.HotspotID == "" {
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "hotspotId is required")
	}

	res, err := h.world.PerformAction(middleware.PlayerID(c), typ, req)
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, res.Success, res.Message)
}

func (h *TerritoryHandler) Collect(c *fiber.Ctx) error {
	res, err := h.world.CollectHotspot(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, true, res.Message)
}

func (h *TerritoryHandler) CollectAll(c *fiber.Ctx) error {
	res, err := h.world.CollectAll(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, true, res.Message)
}

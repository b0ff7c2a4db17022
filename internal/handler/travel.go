package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 10

type TravelHandler struct {
	world *devserver.World
}

func NewTravelHandler(world *devserver.World) *TravelHandler {
	return &TravelHandler{world: world}
}

func (h *TravelHandler) Available(c *fiber.Ctx) error {
	regions, err := h.world.AvailableRegions(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, list(regions))
}

// Current answers null while the player is at headquarters.
func (h *TravelHandler) Current(c *fiber.Ctx) error {
	region, err := h.world.CurrentRegion(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, region)
}

func (h *TravelHandler) Travel(c *fiber.Ctx) error {
	var req model.TravelRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.RegionID == "" {
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "regionId is required")
	}
	res, err := h.world.Travel(middleware.PlayerID(c), req.RegionID)
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, res.Success, res.Message)
}

func (h *TravelHandler) History(c *fiber.Ctx) error {
	n := c.QueryInt("limit", defaultHistoryLimit)
	if n <= 0 {
		n = defaultHistoryLimit
	}
	return ok(c, list(h.world.TravelHistory(middleware.PlayerID(c), n)))
}

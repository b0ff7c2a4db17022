package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type CampaignHandler struct {
	world *devserver.World
}

func NewCampaignHandler(world *devserver.World) *CampaignHandler {
	return &CampaignHandler{world: world}
}

func (h *CampaignHandler) List(c *fiber.Ctx) error {
	return ok(c, list(h.world.Campaigns()))
}

func (h *CampaignHandler) Get(c *fiber.Ctx) error {
	cmp, err := h.world.Campaign(c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, cmp)
}

func (h *CampaignHandler) Progress(c *fiber.Ctx) error {
	pr, err := h.world.Progress(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, pr)
}

func (h *CampaignHandler) Start(c *fiber.Ctx) error {
	pr, err := h.world.StartCampaign(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, pr)
}

func (h *CampaignHandler) Mission(c *fiber.Ctx) error {
	m, err := h.world.Mission(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, m)
}

func (h *CampaignHandler) SelectChoice(c *fiber.Ctx) error {
	pr, err := h.world.SelectChoice(middleware.PlayerID(c), c.Params("id"), c.Params("choiceId"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, pr)
}

func (h *CampaignHandler) CompleteChoice(c *fiber.Ctx) error {
	res, err := h.world.CompleteChoice(middleware.PlayerID(c), c.Params("id"), c.Params("choiceId"))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, true, "Mission complete.")
}

func (h *CampaignHandler) ChoicePOIs(c *fiber.Ctx) error {
	pois, err := h.world.ChoicePOIs(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, list(pois))
}

func (h *CampaignHandler) ChoiceOperations(c *fiber.Ctx) error {
	ops, err := h.world.ChoiceOperations(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, list(ops))
}

func (h *CampaignHandler) Interact(c *fiber.Ctx) error {
	var req model.InteractRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	switch req.InteractionType {
	case "", model.InteractionNeutral, model.InteractionConvince, model.InteractionIntimidate:
	default:
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "unknown interaction type")
	}
	res, err := h.world.InteractWithPOI(middleware.PlayerID(c), c.Params("id"), req.InteractionType)
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, res.Success, res.Message)
}

func (h *CampaignHandler) CompletePOI(c *fiber.Ctx) error {
	pr, err := h.world.CompletePOI(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, pr)
}

// CompleteOperation accepts an optional attemptId body; the dev backend
// does not check it.
func (h *CampaignHandler) CompleteOperation(c *fiber.Ctx) error {
	pr, err := h.world.CompleteMissionOperation(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, pr)
}

func (h *CampaignHandler) Track(c *fiber.Ctx) error {
	var action model.TrackedAction
	if err := c.BodyParser(&action); err != nil {
		return badBody(c)
	}
	res, err := h.world.TrackAction(middleware.PlayerID(c), action)
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, res)
}

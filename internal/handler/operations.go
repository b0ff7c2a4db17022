package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type OperationsHandler struct {
	world *devserver.World
}

func NewOperationsHandler(world *devserver.World) *OperationsHandler {
	return &OperationsHandler{world: world}
}

func (h *OperationsHandler) Available(c *fiber.Ctx) error {
	ops, err := h.world.AvailableOperations(middleware.PlayerID(c))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, list(ops))
}

func (h *OperationsHandler) Current(c *fiber.Ctx) error {
	return ok(c, list(h.world.CurrentOperations(middleware.PlayerID(c))))
}

func (h *OperationsHandler) Completed(c *fiber.Ctx) error {
	return ok(c, list(h.world.CompletedOperations(middleware.PlayerID(c))))
}

func (h *OperationsHandler) RefreshInfo(c *fiber.Ctx) error {
	return ok(c, h.world.RefreshInfo())
}

func (h *OperationsHandler) Start(c *fiber.Ctx) error {
	var req model.StartOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	attempt, err := h.world.StartOperation(middleware.PlayerID(c), c.Params("id"), req.Resources)
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, attempt, true, "Operation started.")
}

func (h *OperationsHandler) Cancel(c *fiber.Ctx) error {
	attempt, err := h.world.CancelOperation(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, attempt, true, "Operation cancelled. Committed resources are lost.")
}

func (h *OperationsHandler) Collect(c *fiber.Ctx) error {
	res, err := h.world.CollectOperation(middleware.PlayerID(c), c.Params("id"))
	if err != nil {
		return worldError(c, err)
	}
	return okMsg(c, res, res.Success, res.Message)
}

package handler

import (
	"errors"

	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

// body mirrors model.Envelope with an unencoded payload.
type body struct {
	Success     bool               `json:"success"`
	Data        any                `json:"data"`
	GameMessage *model.GameMessage `json:"gameMessage,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(body{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(body{Success: true, Data: data})
}

// okMsg attaches a player-facing message. Failed outcomes of an accepted
// action are still successful responses.
func okMsg(c *fiber.Ctx, data any, success bool, msg string) error {
	gm := &model.GameMessage{Type: model.GameMessageSuccess, Message: msg}
	if !success {
		gm.Type = model.GameMessageFailure
	}
	if msg == "" {
		gm = nil
	}
	return c.JSON(body{Success: true, Data: data, GameMessage: gm})
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(model.Failure(code, msg))
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "invalid request body")
}

// worldError maps devserver errors onto statuses and envelope codes.
func worldError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, devserver.ErrNotFound):
		return fail(c, fiber.StatusNotFound, model.CodeNotFound, err.Error())
	case errors.Is(err, devserver.ErrConflict),
		errors.Is(err, devserver.ErrUserExists):
		return fail(c, fiber.StatusConflict, model.CodeConflict, err.Error())
	case errors.Is(err, devserver.ErrInvalidCredentials),
		errors.Is(err, devserver.ErrInvalidToken):
		return fail(c, fiber.StatusUnauthorized, model.CodeUnauthorized, err.Error())
	case errors.Is(err, devserver.ErrInvalidInput),
		errors.Is(err, devserver.ErrInsufficientFunds),
		errors.Is(err, devserver.ErrInsufficientResources),
		errors.Is(err, devserver.ErrCapacity),
		errors.Is(err, devserver.ErrRequirementsNotMet),
		errors.Is(err, devserver.ErrNoRegion),
		errors.Is(err, devserver.ErrWeakPassword):
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, err.Error())
	default:
		return fail(c, fiber.StatusInternalServerError, model.CodeInternal, "internal error")
	}
}

// list keeps empty collections encoded as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

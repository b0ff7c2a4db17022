package handler

import (
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	world  *devserver.World
	tokens *devserver.Tokens
}

func NewAuthHandler(world *devserver.World, tokens *devserver.Tokens) *AuthHandler {
	return &AuthHandler{world: world, tokens: tokens}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "name, email and password are required")
	}

	player, err := h.world.Register(req)
	if err != nil {
		return worldError(c, err)
	}
	return h.session(c, fiber.StatusCreated, player)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "email and password are required")
	}

	player, err := h.world.Login(req)
	if err != nil {
		return worldError(c, err)
	}
	return h.session(c, fiber.StatusOK, player)
}

func (h *AuthHandler) session(c *fiber.Ctx, status int, player model.PlayerProfile) error {
	token, err := h.tokens.Issue(player.ID, player.Name)
	if err != nil {
		return worldError(c, err)
	}
	return c.Status(status).JSON(body{
		Success: true,
		Data:    model.AuthResponse{Token: token, Player: &player},
		GameMessage: &model.GameMessage{
			Type:    model.GameMessageSuccess,
			Message: "Welcome, " + player.Name,
		},
	})
}

// Validate runs behind the auth middleware, so reaching it means the token
// is good.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	return ok(c, model.ValidateResponse{
		Valid:    true,
		PlayerID: middleware.PlayerID(c),
		Name:     middleware.PlayerName(c),
	})
}

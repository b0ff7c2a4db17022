package handler

import (
	"fmt"

	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"
	"github.com/CRTOsp3ck/mwce/internal/model"

	"github.com/gofiber/fiber/v2"
)

type MarketHandler struct {
	world *devserver.World
}

func NewMarketHandler(world *devserver.World) *MarketHandler {
	return &MarketHandler{world: world}
}

func (h *MarketHandler) Listings(c *fiber.Ctx) error {
	return ok(c, list(h.world.Listings()))
}

func (h *MarketHandler) Listing(c *fiber.Ctx) error {
	l, err := h.world.Listing(model.ResourceType(c.Params("type")))
	if err != nil {
		return worldError(c, err)
	}
	return ok(c, l)
}

func (h *MarketHandler) Transactions(c *fiber.Ctx) error {
	return ok(c, list(h.world.Transactions(middleware.PlayerID(c))))
}

func (h *MarketHandler) History(c *fiber.Ctx) error {
	rt := model.ResourceType(c.Params("type"))
	if rt != "" && !rt.Valid() {
		return fail(c, fiber.StatusBadRequest, model.CodeBadRequest, "unknown resource type")
	}
	return ok(c, list(h.world.PriceHistory(rt)))
}

func (h *MarketHandler) Buy(c *fiber.Ctx) error {
	return h.trade(c, model.TransactionBuy)
}

func (h *MarketHandler) Sell(c *fiber.Ctx) error {
	return h.trade(c, model.TransactionSell)
}

func (h *MarketHandler) trade(c *fiber.Ctx, kind model.TransactionType) error {
	var req model.TradeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	tx, err := h.world.Trade(middleware.PlayerID(c), kind, req)
	if err != nil {
		return worldError(c, err)
	}
	verb := "Bought"
	if kind == model.TransactionSell {
		verb = "Sold"
	}
	msg := fmt.Sprintf("%s %d %s for %s.", verb, tx.Quantity, tx.ResourceType, model.FormatMoney(tx.TotalCost))
	return okMsg(c, tx, true, msg)
}

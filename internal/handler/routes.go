package handler

import (
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type Deps struct {
	World     *devserver.World
	Tokens    *devserver.Tokens
	Broker    *devserver.Broker
	Clock     clock.Clock
	Heartbeat time.Duration
	AdminKey  string
	Log       zerolog.Logger
}

// Register mounts the development API on app.
func Register(app *fiber.App, d Deps) {
	healthH := NewHealthHandler(d.World)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	api := app.Group("/api")

	// Auth (public)
	authH := NewAuthHandler(d.World, d.Tokens)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)

	// Admin, registered before the protected catch-all
	adminH := NewAdminHandler(d.World, d.Broker)
	admin := api.Group("/admin", middleware.AdminKey(d.AdminKey))
	admin.Get("/stats", adminH.Stats)
	admin.Post("/announce", adminH.Announce)
	admin.Post("/operations/refresh", adminH.RefreshOperations)
	admin.Post("/income/generate", adminH.GenerateIncome)

	protected := api.Group("", middleware.Auth(d.Tokens))
	protected.Get("/auth/validate", authH.Validate)

	streamH := NewStreamHandler(d.Broker, d.Clock, d.Heartbeat, d.Log)
	protected.Get("/sse", streamH.Stream)

	playerH := NewPlayerHandler(d.World)
	player := protected.Group("/player")
	player.Get("/profile", playerH.Profile)
	player.Get("/stats", playerH.Stats)
	player.Get("/notifications", playerH.Notifications)
	player.Put("/notifications/read-all", playerH.MarkAllRead)
	player.Put("/notifications/:id/read", playerH.MarkRead)
	player.Post("/collect-all", playerH.CollectAll)

	territoryH := NewTerritoryHandler(d.World)
	territory := protected.Group("/territory")
	territory.Get("/regions", territoryH.Regions)
	territory.Get("/districts", territoryH.Districts)
	territory.Get("/cities", territoryH.Cities)
	territory.Get("/hotspots", territoryH.Hotspots)
	territory.Get("/hotspots/controlled", territoryH.Controlled)
	territory.Post("/hotspots/collect-all", territoryH.CollectAll)
	territory.Get("/hotspots/:id", territoryH.Hotspot)
	territory.Post("/hotspots/:id/collect", territoryH.Collect)
	territory.Get("/actions", territoryH.Actions)
	territory.Post("/actions/:type", territoryH.Perform)

	marketH := NewMarketHandler(d.World)
	market := protected.Group("/market")
	market.Get("/listings", marketH.Listings)
	market.Get("/listings/:type", marketH.Listing)
	market.Get("/transactions", marketH.Transactions)
	market.Get("/history/:type?", marketH.History)
	market.Post("/buy", marketH.Buy)
	market.Post("/sell", marketH.Sell)

	opsH := NewOperationsHandler(d.World)
	ops := protected.Group("/operations")
	ops.Get("/", opsH.Available)
	ops.Get("/current", opsH.Current)
	ops.Get("/completed", opsH.Completed)
	ops.Get("/refresh-info", opsH.RefreshInfo)
	ops.Post("/:id/start", opsH.Start)
	ops.Post("/:id/cancel", opsH.Cancel)
	ops.Post("/:id/collect", opsH.Collect)

	travelH := NewTravelHandler(d.World)
	travel := protected.Group("/travel")
	travel.Post("/", travelH.Travel)
	travel.Get("/available", travelH.Available)
	travel.Get("/current", travelH.Current)
	travel.Get("/history", travelH.History)

	campaignH := NewCampaignHandler(d.World)
	campaigns := protected.Group("/campaigns")
	campaigns.Get("/", campaignH.List)
	campaigns.Get("/missions/:id", campaignH.Mission)
	campaigns.Post("/missions/:id/choices/:choiceId/select", campaignH.SelectChoice)
	campaigns.Post("/missions/:id/choices/:choiceId/complete", campaignH.CompleteChoice)
	campaigns.Get("/choices/:id/pois", campaignH.ChoicePOIs)
	campaigns.Get("/choices/:id/operations", campaignH.ChoiceOperations)
	campaigns.Post("/pois/:id/interact", campaignH.Interact)
	campaigns.Post("/pois/:id/complete", campaignH.CompletePOI)
	campaigns.Post("/operations/:id/complete", campaignH.CompleteOperation)
	campaigns.Post("/actions/track", campaignH.Track)
	campaigns.Get("/:id", campaignH.Get)
	campaigns.Get("/:id/progress", campaignH.Progress)
	campaigns.Post("/:id/start", campaignH.Start)
}

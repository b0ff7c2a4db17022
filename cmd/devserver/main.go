package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/config"
	"github.com/CRTOsp3ck/mwce/internal/devserver"
	"github.com/CRTOsp3ck/mwce/internal/handler"
	"github.com/CRTOsp3ck/mwce/internal/logging"
	"github.com/CRTOsp3ck/mwce/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("info", "console", nil)
		l.Fatal().Err(err).Msg("load config")
	}
	format := cfg.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	root := logging.New(cfg.LogLevel, format, nil)
	log := logging.Component(root, "devserver")

	// World
	broker := devserver.NewBroker(logging.Component(root, "devserver.sse"))
	world := devserver.NewWorld(devserver.Options{
		Clock:          clock.Real,
		Seed:           cfg.Seed,
		IncomeInterval: cfg.IncomeInterval,
		Events:         broker,
		Logger:         log,
	})
	if err := world.Seed(); err != nil {
		log.Fatal().Err(err).Msg("seed world")
	}
	log.Info().Str("email", devserver.DemoEmail).Str("password", devserver.DemoPassword).Msg("demo account ready")

	scheduler := devserver.NewScheduler(world, clock.Real, cfg.IncomeInterval, logging.Component(root, "devserver.scheduler"))
	tokens := devserver.NewTokens(cfg.JWTSecret, clock.Real)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		IdleTimeout:           30 * time.Second,
		BodyLimit:             1 * 1024 * 1024, // 1MB
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.Logger(logging.Component(root, "http"), 500*time.Millisecond))
	app.Use(middleware.CORS("*"))

	handler.Register(app, handler.Deps{
		World:     world,
		Tokens:    tokens,
		Broker:    broker,
		Clock:     clock.Real,
		Heartbeat: cfg.HeartbeatEvery,
		AdminKey:  cfg.AdminKey,
		Log:       logging.Component(root, "devserver.stream"),
	})

	go broker.Run()
	scheduler.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Dur("income_every", cfg.IncomeInterval).Msg("development backend running")

	<-quit
	log.Info().Msg("shutting down")
	scheduler.Stop()
	// Streams close before the app so open SSE responses can end.
	broker.Shutdown()
	_ = app.ShutdownWithTimeout(5 * time.Second)
	log.Info().Msg("server stopped")
}

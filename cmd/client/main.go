package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CRTOsp3ck/mwce/internal/api"
	"github.com/CRTOsp3ck/mwce/internal/clock"
	"github.com/CRTOsp3ck/mwce/internal/config"
	"github.com/CRTOsp3ck/mwce/internal/discord"
	"github.com/CRTOsp3ck/mwce/internal/logging"
	"github.com/CRTOsp3ck/mwce/internal/model"
	"github.com/CRTOsp3ck/mwce/internal/realtime"
	"github.com/CRTOsp3ck/mwce/internal/repository"
	"github.com/CRTOsp3ck/mwce/internal/router"
	"github.com/CRTOsp3ck/mwce/internal/service"
	"github.com/CRTOsp3ck/mwce/internal/store"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
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
	log := logging.Component(root, "client")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persisted session
	tokens, err := repository.Open(ctx, cfg.TokenStore, logging.Component(root, "repository"))
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.TokenStore).Msg("open token store")
	}
	defer tokens.Close()
	session := service.NewSession(tokens, logging.Component(root, "session"))

	// API client and services
	client := api.New(cfg.APIBaseURL, session,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logging.Component(root, "api")),
		api.WithUnauthorized(session.HandleUnauthorized),
	)
	authSvc := service.NewAuthService(client, session)
	if err := signIn(ctx, cfg, session, authSvc, log); err != nil {
		log.Fatal().Err(err).Msg("sign in")
	}

	// Local fan-out
	hub := realtime.NewHub(logging.Component(root, "hub"))
	go hub.Run()
	defer hub.Shutdown()

	caches := newCaches(client, hub, cfg, root)
	defer caches.Territory.Close()
	defer caches.Operations.Close()

	if err := warmUp(ctx, caches); err != nil {
		log.Error().Err(err).Msg("warm-up incomplete")
	}
	caches.Territory.StartTimer()
	caches.Operations.StartTimer()

	// Realtime sync
	dispatcher := realtime.NewDispatcher(logging.Component(root, "realtime.dispatch"))
	realtime.NewSync(realtime.Caches{
		Player:     caches.Player,
		Territory:  caches.Territory,
		Operations: caches.Operations,
		Campaign:   caches.Campaign,
		Travel:     caches.Travel,
	}, clock.Real, logging.Component(root, "realtime.sync")).Register(dispatcher)

	stream := realtime.New(cfg.APIBaseURL, session, dispatcher,
		realtime.WithHub(hub),
		realtime.WithLogger(logging.Component(root, "realtime")),
		realtime.WithPolicy(realtime.NewReconnectPolicy(realtime.PolicyConfig{
			Initial:     cfg.ReconnectInitial,
			Max:         cfg.ReconnectMax,
			Jitter:      cfg.ReconnectJitter,
			MaxAttempts: cfg.ReconnectMaxAttempts,
		})),
	)
	session.OnLogout(func(reason error) {
		log.Warn().Err(reason).Msg("session ended")
		hub.Publish(realtime.Update{Topic: realtime.TopicSessionExpired})
		stream.Disconnect()
	})
	if err := stream.Connect(ctx); err != nil {
		log.Error().Err(err).Msg("connect event stream")
	}

	// Navigation check of every static route
	guard := router.NewGuard(session, caches.Travel, logging.Component(root, "router"))
	for _, r := range router.Routes {
		if strings.Contains(r.Path, ":") {
			continue
		}
		d := guard.Resolve(ctx, r.Path)
		log.Debug().Str("route", r.Name).Str("title", d.Title).Str("redirect", d.Redirect).Msg("route resolved")
	}

	// Discord relay
	if cfg.DiscordWebhookURL != "" {
		hook, err := discord.NewWebhook(cfg.DiscordWebhookURL)
		if err != nil {
			log.Error().Err(err).Msg("discord relay disabled")
		} else if sub := hub.Subscribe("discord", 64); sub != nil {
			relay := discord.NewRelay(hook, clock.Real, logging.Component(root, "discord"))
			go relay.Run(ctx, sub.C())
		}
	}

	if sub := hub.Subscribe("console", 128); sub != nil {
		go report(ctx, sub.C(), caches, logging.Component(root, "console"))
	}

	log.Info().
		Str("player", caches.Player.PlayerID()).
		Str("money", model.FormatMoney(caches.Player.Money())).
		Str("location", caches.Travel.CurrentLocationName()).
		Msg("client running")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	stream.Disconnect()
	stream.Wait()
	log.Info().Msg("client stopped")
}

// signIn reuses a persisted token when the server still accepts it and
// otherwise logs in with the configured credentials.
func signIn(ctx context.Context, cfg *config.Config, session *service.Session, auth *service.AuthService, log zerolog.Logger) error {
	if session.IsAuthenticated(ctx) {
		v, err := auth.Validate(ctx)
		if err == nil && v.Valid {
			log.Info().Str("player", v.Name).Msg("resumed session")
			return nil
		}
		var apiErr *api.Error
		if err != nil && !errors.As(err, &apiErr) {
			return err
		}
	}
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("no saved session; set MWCE_EMAIL and MWCE_PASSWORD")
	}
	resp, err := auth.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return err
	}
	if resp.Player != nil {
		log.Info().Str("player", resp.Player.Name).Msg("signed in")
	}
	return nil
}

type caches struct {
	Player     *store.PlayerStore
	Territory  *store.TerritoryStore
	Market     *store.MarketStore
	Operations *store.OperationsStore
	Campaign   *store.CampaignStore
	Travel     *store.TravelStore
}

func newCaches(client *api.Client, hub *realtime.Hub, cfg *config.Config, root zerolog.Logger) caches {
	opts := func(name string) store.Options {
		return store.Options{
			Clock:        clock.Real,
			Log:          logging.Component(root, "store."+name),
			TickInterval: cfg.TickInterval,
			Observer: func(topic string) {
				if strings.HasSuffix(topic, ".tick") {
					return
				}
				hub.Publish(realtime.Update{Topic: topic})
			},
		}
	}
	player := store.NewPlayerStore(service.NewPlayerService(client), opts("player"))
	return caches{
		Player:     player,
		Territory:  store.NewTerritoryStore(service.NewTerritoryService(client), player, opts("territory")),
		Market:     store.NewMarketStore(service.NewMarketService(client), player, opts("market")),
		Operations: store.NewOperationsStore(service.NewOperationsService(client), player, opts("operations")),
		Campaign:   store.NewCampaignStore(service.NewCampaignService(client), player, opts("campaign")),
		Travel:     store.NewTravelStore(service.NewTravelService(client), player, opts("travel")),
	}
}

// warmUp loads the profile first, since the other caches read the player
// from it, then the rest in parallel.
func warmUp(ctx context.Context, c caches) error {
	if err := c.Player.FetchProfile(ctx); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Player.FetchNotifications(gctx) })
	g.Go(func() error { return c.Travel.FetchCurrentRegion(gctx) })
	g.Go(func() error { return c.Territory.FetchTerritoryData(gctx) })
	g.Go(func() error { return c.Market.FetchMarketData(gctx) })
	g.Go(func() error { return c.Operations.FetchPlayerOperations(gctx) })
	g.Go(func() error { return c.Operations.FetchAvailable(gctx) })
	g.Go(func() error { return c.Operations.FetchRefreshInfo(gctx) })
	g.Go(func() error { return c.Campaign.FetchCampaigns(gctx) })
	return g.Wait()
}

// report logs every hub update with a short summary of the push payload.
func report(ctx context.Context, updates <-chan realtime.Update, c caches, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, open := <-updates:
			if !open {
				return
			}
			ev := log.Info().Str("topic", u.Topic)
			if u.Event != "" {
				ev = ev.Str("event", u.Event)
			}
			if msg := gjson.GetBytes(u.Payload, "notification.message"); msg.Exists() {
				ev = ev.Str("message", msg.String())
			}
			if u.Topic == store.TopicPlayer {
				ev = ev.Str("money", model.FormatMoney(c.Player.Money())).Int("unread", c.Player.UnreadCount())
			}
			ev.Msg("update")
		}
	}
}

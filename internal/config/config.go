package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env       string `env:"MWCE_ENV" envDefault:"development"`
	LogLevel  string `env:"MWCE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MWCE_LOG_FORMAT" envDefault:"console"`

	// Client
	APIBaseURL     string        `env:"MWCE_API_URL" envDefault:"http://localhost:8000/api"`
	RequestTimeout time.Duration `env:"MWCE_REQUEST_TIMEOUT" envDefault:"10s"`
	TickInterval   time.Duration `env:"MWCE_TICK_INTERVAL" envDefault:"1s"`
	TokenStore     string        `env:"MWCE_TOKEN_STORE" envDefault:"sqlite://mwce-client.db"`
	Email          string        `env:"MWCE_EMAIL"`
	Password       string        `env:"MWCE_PASSWORD"`

	ReconnectInitial     time.Duration `env:"MWCE_RECONNECT_INITIAL" envDefault:"5s"`
	ReconnectMax         time.Duration `env:"MWCE_RECONNECT_MAX" envDefault:"2m"`
	ReconnectJitter      float64       `env:"MWCE_RECONNECT_JITTER" envDefault:"0.5"`
	ReconnectMaxAttempts int           `env:"MWCE_RECONNECT_MAX_ATTEMPTS" envDefault:"10"`

	DiscordWebhookURL string `env:"MWCE_DISCORD_WEBHOOK_URL"`

	// Development backend
	Port           string        `env:"PORT" envDefault:"8000"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-jwt-secret-not-for-production-use-64-chars-minimum-padding"`
	AdminKey       string        `env:"ADMIN_KEY" envDefault:"dev-admin-key"`
	IncomeInterval time.Duration `env:"DEV_INCOME_INTERVAL" envDefault:"1m"`
	HeartbeatEvery time.Duration `env:"DEV_HEARTBEAT_INTERVAL" envDefault:"30s"`
	Seed           int64         `env:"DEV_SEED" envDefault:"42"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.ReconnectJitter < 0 || cfg.ReconnectJitter > 1 {
		return nil, fmt.Errorf("MWCE_RECONNECT_JITTER must be within [0,1], got %v", cfg.ReconnectJitter)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

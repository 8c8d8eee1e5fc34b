package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all process-wide settings. It is read once at startup and
// treated as read-only afterwards; components receive it by value so tests
// can construct fakes without touching the environment.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8787"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`

	// ProxyURL routes the upstream call through an outbound proxy. It is
	// only honored in a development context, never in production.
	ProxyURL string `env:"HTTPS_PROXY_URL"`

	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.ProxyURL != "" {
		if _, err := url.Parse(cfg.ProxyURL); err != nil {
			return Config{}, fmt.Errorf("invalid HTTPS_PROXY_URL: %w", err)
		}
	}
	return cfg, nil
}

// IsDevelopment reports whether the process runs in a local development
// context.
func (c Config) IsDevelopment() bool {
	switch c.AppEnv {
	case "development", "dev", "local":
		return true
	}
	return false
}

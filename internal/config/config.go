// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob of the service.
type Config struct {
	Addr         string `env:"TREKS_ADDR" envDefault:":8080"`
	DatabasePath string `env:"TREKS_DB_PATH" envDefault:"treks.db"`

	// CatalogURL, when set, switches the package catalog to an upstream HTTP
	// source; when empty, packages are served from the local database.
	CatalogURL     string        `env:"TREKS_CATALOG_URL"`
	CatalogTimeout time.Duration `env:"TREKS_CATALOG_TIMEOUT" envDefault:"2s"`

	SessionTTL time.Duration `env:"TREKS_SESSION_TTL" envDefault:"30m"`

	// AuthSecret enables token auth on booking routes when non-empty.
	AuthSecret string        `env:"TREKS_AUTH_SECRET"`
	TokenTTL   time.Duration `env:"TREKS_TOKEN_TTL" envDefault:"24h"`

	RateLimit  int           `env:"TREKS_RATE_LIMIT" envDefault:"30"`
	RateWindow time.Duration `env:"TREKS_RATE_WINDOW" envDefault:"1m"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

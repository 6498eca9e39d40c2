// Package config loads process configuration from the environment once at
// startup; services receive values through constructors, never from ambient
// globals.
package config

import (
	"errors"
	"os"
)

const (
	devAccessSecret  = "insecure-dev-secret"
	devRefreshSecret = "insecure-dev-refresh-secret"
)

type Config struct {
	Env           string // "development" or "production"
	Port          string
	DBPath        string
	LogLevel      string
	JWTSecret     string
	RefreshSecret string

	// UsingDevSecrets is set when development fallbacks were substituted
	// for missing secrets, so the caller can log a warning.
	UsingDevSecrets bool
}

// Load reads HEARTH_* environment variables. Missing signing secrets are a
// hard error in production; development falls back to insecure defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:           envOr("HEARTH_ENV", "development"),
		Port:          envOr("HEARTH_PORT", "8080"),
		DBPath:        envOr("HEARTH_DB_PATH", "hearth.db"),
		LogLevel:      envOr("HEARTH_LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("HEARTH_JWT_SECRET"),
		RefreshSecret: os.Getenv("HEARTH_REFRESH_SECRET"),
	}

	if cfg.JWTSecret == "" || cfg.RefreshSecret == "" {
		if cfg.Env == "production" {
			return Config{}, errors.New("HEARTH_JWT_SECRET and HEARTH_REFRESH_SECRET are required in production")
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devAccessSecret
		}
		if cfg.RefreshSecret == "" {
			cfg.RefreshSecret = devRefreshSecret
		}
		cfg.UsingDevSecrets = true
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

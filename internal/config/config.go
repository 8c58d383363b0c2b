// Package config parses service configuration from EMPOWHER_-prefixed
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the check-in service.
// Environment variables are automatically parsed from the EMPOWHER_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage Configuration
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/empowher.db"`

	// Insight provider: "ollama" for generative insights with rules
	// fallback, "rules" for deterministic-only operation.
	InsightProvider string        `envconfig:"INSIGHT_PROVIDER" default:"rules"`
	OllamaModel     string        `envconfig:"OLLAMA_MODEL" default:"llama3.1"`
	OllamaTimeout   time.Duration `envconfig:"OLLAMA_TIMEOUT" default:"20s"`

	// Hex-encoded 32-byte AES key for journal encryption at rest.
	JournalKeyHex string `envconfig:"JOURNAL_KEY" default:""`

	// Health Configuration
	HealthCheckInterval time.Duration `envconfig:"HEALTH_CHECK_INTERVAL" default:"15s"`
	StartupHealthWait   time.Duration `envconfig:"STARTUP_HEALTH_WAIT" default:"30s"`
}

// ResolveDefaults validates driver and provider selections.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("DB_DRIVER=sqlite requires SQLITE_PATH")
	}

	allowedProvider := map[string]bool{"ollama": true, "rules": true}
	if !allowedProvider[c.InsightProvider] {
		return fmt.Errorf("unsupported INSIGHT_PROVIDER: %s", c.InsightProvider)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: EMPOWHER_HTTP_PORT, EMPOWHER_DB_DRIVER, EMPOWHER_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("EMPOWHER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("insight_provider", cfg.InsightProvider).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("journal_key_present", cfg.JournalKeyHex != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a Config suitable for unit tests.
func NewForTesting() *Config {
	return &Config{
		Environment:         EnvTesting,
		HTTPPort:            8080,
		DBDriver:            "sqlite",
		SQLitePath:          ":memory:",
		InsightProvider:     "rules",
		OllamaModel:         "llama3.1",
		OllamaTimeout:       20 * time.Second,
		HealthCheckInterval: 15 * time.Second,
		StartupHealthWait:   30 * time.Second,
	}
}

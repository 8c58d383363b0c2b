// Package factory constructs the configured store and insight provider.
// All selection logic driven by config lives here so run.go stays linear.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/config"
	"github.com/empowher/empowher-server/internal/health"
	"github.com/empowher/empowher-server/internal/insight"
	"github.com/empowher/empowher-server/internal/insight/ollama"
	"github.com/empowher/empowher-server/internal/insight/rules"
	"github.com/empowher/empowher-server/internal/store"
	"github.com/empowher/empowher-server/internal/store/postgres"
	"github.com/empowher/empowher-server/internal/store/sqlite"
)

// NewStore builds the configured storage driver and bootstraps its schema.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("store ready")
		return postgres.NewWithDB(db), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store ready")
		return sqlite.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

// NewInsightProvider builds the configured provider. The ollama provider is
// wrapped so every call degrades to the rule-based provider; the returned
// pinger probes the primary backend for health reporting.
func NewInsightProvider(cfg *config.Config, log zerolog.Logger) (insight.Provider, health.HealthPinger) {
	switch cfg.InsightProvider {
	case "ollama":
		primary := ollama.New(cfg.OllamaModel, cfg.OllamaTimeout)
		log.Info().Str("provider", "ollama").Str("model", cfg.OllamaModel).Msg("insight provider ready")
		return insight.WithFallback(primary, rules.New()), primary
	default:
		log.Info().Str("provider", "rules").Msg("insight provider ready")
		return rules.New(), rules.New()
	}
}

// Package checkinservice boots the check-in HTTP service: configuration,
// storage, insight provider, health checking and graceful shutdown.
package checkinservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/empowher/empowher-server/internal/api"
	"github.com/empowher/empowher-server/internal/config"
	"github.com/empowher/empowher-server/internal/factory"
	"github.com/empowher/empowher-server/internal/health"
	"github.com/empowher/empowher-server/internal/journal"
	"github.com/empowher/empowher-server/internal/logger"
	"github.com/empowher/empowher-server/internal/store"
)

// Run starts the check-in service HTTP server and blocks until shutdown or
// error.
func Run() error {
	log := logger.New("checkin-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("store unavailable")
		return err
	}
	provider, providerPinger := factory.NewInsightProvider(cfg, log)

	// Without a journal key the service runs, but journal text is dropped
	// rather than stored unencrypted.
	var cipher *journal.Cipher
	if cfg.JournalKeyHex != "" {
		cipher, err = journal.NewCipher(cfg.JournalKeyHex)
		if err != nil {
			log.Error().Err(err).Msg("invalid journal key")
			return err
		}
	} else {
		log.Warn().Msg("no journal key configured, journal text will not be persisted")
	}

	svcHealth := startHealthCheckers(ctx, cfg, log, st, providerPinger)
	if err := health.WaitUntilHealthy(ctx, svcHealth, cfg.StartupHealthWait); err != nil {
		log.Error().Err(err).Msg("startup health check failed")
		return err
	}

	router := api.NewRouter(api.RouterDeps{
		Store:     st,
		Provider:  provider,
		Cipher:    cipher,
		IsHealthy: svcHealth.IsHealthy,
		Log:       log,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// startHealthCheckers starts the per-component probes and the service-level
// aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, insightPinger health.HealthPinger) *health.ServiceHealthChecker {
	const probeTimeout = 2 * time.Second

	var checkers []health.HealthChecker
	if p, ok := st.(health.HealthPinger); ok {
		c := health.NewPingChecker("store", p, log, probeTimeout)
		go c.Start(ctx, cfg.HealthCheckInterval)
		checkers = append(checkers, c)
	}
	if insightPinger != nil {
		c := health.NewPingChecker("insight", insightPinger, log, probeTimeout)
		go c.Start(ctx, cfg.HealthCheckInterval)
		checkers = append(checkers, c)
	}

	svc := health.NewServiceHealthChecker(log, checkers...)
	go svc.Start(ctx, cfg.HealthCheckInterval)
	return svc
}

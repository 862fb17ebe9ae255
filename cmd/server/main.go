// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package main is the Familymap API server.
//
// Startup order:
//
//  1. .env file (godotenv, optional)
//  2. Configuration (koanf: defaults, config.yaml, environment)
//  3. Logging (zerolog)
//  4. DuckDB with migrations
//  5. Refresh token blacklist (memory or badger)
//  6. Authentication and the casbin role policy
//  7. Optional enrichment: OpenAI and Mapbox clients, each enabled by its API key
//  8. Enrichment queue and worker
//  9. chi router
//  10. suture tree running the HTTP server, cleanup and the worker
//
// SIGINT and SIGTERM cancel the tree. Services get ShutdownTimeout to stop
// and any that do not are reported.
//
// Example:
//
//	export JWT_SECRET=$(openssl rand -base64 48)
//	export OPENAI_API_KEY=sk-...
//	export MAPBOX_API_KEY=pk....
//	./familymap
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/familymap/internal/api"
	"github.com/tomtom215/familymap/internal/app"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/supervisor"
	"github.com/tomtom215/familymap/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal in containers.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		App:       "familymap-server",
		Version:   version,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("blacklist_store", cfg.JWT.BlacklistStore).
		Msg("Starting Familymap")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Familymap stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	comps, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
	}
	if cfg.IsProduction() && cfg.JWT.BlacklistStore != "badger" {
		logging.Warn().Msg("Refresh token blacklist is in memory; logouts are forgotten on restart")
	}

	handler := api.NewHandler(api.HandlerOptions{
		DB:               comps.DB,
		Auth:             comps.Auth,
		Users:            comps.Users,
		Places:           comps.Places,
		Review:           comps.Review,
		Importer:         comps.Importer,
		Enricher:         comps.EnricherOrNil(),
		Queue:            comps.QueueOrNil(),
		GeocodingEnabled: comps.Geocoder != nil,
		Version:          version,
	})
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		comps.Auth,
		comps.Enforcer,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewCleanupService(comps.Blacklist, comps.Lockout, cfg.JWT.BlacklistCleanup))
	if comps.Worker != nil {
		tree.AddMessagingService(comps.Worker)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// errCh receives exactly one value and is never closed.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	stop()

	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if n := tree.LogUnstopped(); n > 0 {
		logging.Warn().Int("count", n).Msg("Services failed to stop within timeout")
	}
	return nil
}

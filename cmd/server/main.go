// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

// Package main is the entry point for the Vetrina recommendation server.
//
// Vetrina serves context-aware product recommendations for a storefront:
// similar products on product pages, popular products on category pages,
// frequently-bought-together items in cart and checkout, and a blended
// trending/popular/personalized feed on the home page.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Catalog store: Postgres via pgx, or a seeded in-memory store for
//     development (database.seed_memory_store)
//  3. Circuit breaker: optional gobreaker wrapper around the catalog store
//  4. Recommendation engine: strategy dispatch with a bounded LRU result cache
//  5. HTTP API: chi router with rate limiting, CORS, and Prometheus metrics
//  6. Supervisor tree: suture-managed HTTP server and cache sweeper
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables (HTTP_PORT, DATABASE_DSN,
// RECOMMEND_CACHE_TTL, ...), an optional config file (config.yaml, or the
// path in VETRINA_CONFIG_PATH), then built-in defaults. See
// config.yaml.example for the full surface.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops accepting
// new connections, drains in-flight requests within the configured shutdown
// timeout, and closes the database pool.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nmarchetti/vetrina/internal/api"
	"github.com/nmarchetti/vetrina/internal/catalog"
	"github.com/nmarchetti/vetrina/internal/config"
	"github.com/nmarchetti/vetrina/internal/logging"
	"github.com/nmarchetti/vetrina/internal/recommend"
	"github.com/nmarchetti/vetrina/internal/supervisor"
	"github.com/nmarchetti/vetrina/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Config not yet available, use the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Vetrina recommendation server")

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize catalog store")
	}
	defer cleanup()

	if cfg.Recommend.BreakerEnabled {
		store = catalog.NewBreaker(store, catalog.BreakerConfig{
			MaxFailures: cfg.Recommend.BreakerMaxFailures,
			Timeout:     cfg.Recommend.BreakerTimeout,
		})
		logging.Info().
			Uint32("max_failures", cfg.Recommend.BreakerMaxFailures).
			Msg("Catalog circuit breaker enabled")
	}

	engine, err := recommend.NewEngine(&recommend.Config{
		DefaultLimit:    cfg.Recommend.DefaultLimit,
		MaxLimit:        cfg.Recommend.MaxLimit,
		OverfetchFactor: cfg.Recommend.OverfetchFactor,
		CacheTTL:        cfg.Recommend.CacheTTL,
		CacheMaxEntries: cfg.Recommend.CacheMaxEntries,
		CacheType:       cfg.Recommend.CacheType,
	}, store, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	router := api.NewRouter(engine, cfg.API, version)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// The supervisor bridges zerolog to slog for sutureslog.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMaintenanceService(services.NewCacheSweeperService(engine, time.Minute, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added to supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

// buildStore selects the catalog backend: Postgres in production, or the
// seeded in-memory catalog for development and CI.
func buildStore(cfg *config.Config) (catalog.Store, func(), error) {
	if cfg.Database.SeedMemoryStore {
		logging.Info().Msg("Using seeded in-memory catalog (database.seed_memory_store=true)")
		return catalog.NewSeededMemory(), func() {}, nil
	}

	db, err := catalog.OpenDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database pool")
		}
	}

	logging.Info().
		Int("max_open_conns", cfg.Database.MaxOpenConns).
		Msg("Connected to catalog database")
	return catalog.NewPostgres(db, cfg.Database.QueryTimeout), cleanup, nil
}

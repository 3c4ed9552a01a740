// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

// Package main is the entry point for the Coindeck server.
//
// Startup order:
//
//  1. Configuration: layered load via Koanf (defaults, config.yaml, env)
//  2. Logging: zerolog, structured JSON by default
//  3. Cache backend: memory, Redis or Badger, wrapped fail-open
//  4. Stores and domain services
//  5. Background jobs: daily vote reset, price refresher (optional)
//  6. HTTP server under the supervisor tree
//
// Shutdown on SIGINT/SIGTERM drains in-flight requests within the
// configured timeout before the process exits.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/coindeck/coindeck/internal/api"
	"github.com/coindeck/coindeck/internal/auth"
	"github.com/coindeck/coindeck/internal/authz"
	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/catalog"
	"github.com/coindeck/coindeck/internal/config"
	"github.com/coindeck/coindeck/internal/enrich"
	"github.com/coindeck/coindeck/internal/favorites"
	"github.com/coindeck/coindeck/internal/listing"
	"github.com/coindeck/coindeck/internal/logging"
	"github.com/coindeck/coindeck/internal/pricefeed"
	"github.com/coindeck/coindeck/internal/scheduler"
	"github.com/coindeck/coindeck/internal/store"
	"github.com/coindeck/coindeck/internal/supervisor"
	"github.com/coindeck/coindeck/internal/trending"
	"github.com/coindeck/coindeck/internal/voting"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Str("cache_backend", cfg.Cache.Backend).
		Msg("Starting coindeck")

	backend, readyCheck, err := newCacheBackend(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache backend")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logging.Warn().Err(err).Msg("Cache backend close failed")
		}
	}()

	// All services see the fail-open wrapper: a cache outage degrades
	// to collection reads, never to request failures.
	cacheStore := cache.NewFailOpen(backend)
	invalidator := cache.NewInvalidator(cacheStore, cache.DefaultTable())

	coins := store.NewMemCoinStore()
	votes := store.NewMemVoteStore()
	favs := store.NewMemFavoriteStore()
	views := store.NewMemViewStore(cfg.Views.Retention)

	listSvc := listing.NewService(cacheStore, coins, favs).WithTTL(cfg.Cache.QueryTTL)
	ledger := voting.NewLedger(coins, votes, invalidator, voting.Options{
		SerializePerVoter: cfg.Voting.SerializePerVoter,
	})
	enricher := enrich.New(votes, favs)
	trendSvc := trending.New(cacheStore, coins, views).WithTTL(cfg.Cache.TrendingTTL)
	favSvc := favorites.New(coins, favs, invalidator)
	catSvc := catalog.New(coins, votes, favs, views, invalidator)

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	enforcer, err := authz.NewEnforcer(&authz.Config{})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}

	handler := api.NewHandler(listSvc, ledger, enricher, trendSvc, favSvc, catSvc,
		cfg.Server.DefaultPageSize, cfg.Server.MaxPageSize, readyCheck)
	router := api.NewRouter(handler, jwtManager, enforcer, cfg.Server)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddJob(scheduler.NewDailyReset(coins, invalidator))
	logging.Info().Msg("Daily vote reset job added to supervisor tree")

	if cfg.PriceFeed.Enabled {
		provider := pricefeed.NewBreakerProvider("dexscreener",
			pricefeed.NewDexScreener(cfg.PriceFeed.BaseURL, cfg.PriceFeed.Timeout))
		refresher := pricefeed.NewRefresher(provider, coins, invalidator,
			cfg.PriceFeed.RequestsPerSec, cfg.PriceFeed.Workers)
		tree.AddJob(scheduler.NewPriceRefresh(refresher, cfg.PriceFeed.RefreshInterval))
		logging.Info().Dur("interval", cfg.PriceFeed.RefreshInterval).
			Msg("Price refresh job added to supervisor tree")
	} else {
		logging.Info().Msg("Price feed disabled")
	}

	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
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

	logging.Info().Msg("Stopped gracefully")
}

// cacheBackend is a closable cache store. All three backends satisfy
// it; the Store contract itself stays close-free for service code.
type cacheBackend interface {
	cache.Store
	Close() error
}

// newCacheBackend selects the cache store from config. The returned
// readiness check is nil for backends with no external dependency.
func newCacheBackend(cfg *config.CacheConfig) (cacheBackend, func(context.Context) error, error) {
	switch cfg.Backend {
	case "redis":
		r := cache.NewRedis(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return r, r.Ping, nil
	case "badger":
		b, err := cache.NewBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	default:
		return cache.NewMemory(), nil, nil
	}
}

// ABOUTME: Application assembly for the NewHackers API server
// ABOUTME: Builds the store, upstream client, services, workers and router from configuration

package main

import (
	"context"
	"net/http"
	"time"

	"newhackers-api/api"
	"newhackers-api/api/handlers"
	"newhackers-api/api/middleware"
	"newhackers-api/core/auth"
	"newhackers-api/core/fetcher"
	"newhackers-api/core/freshness"
	"newhackers-api/core/interfaces"
	"newhackers-api/core/lock"
	"newhackers-api/core/parser"
	"newhackers-api/core/stories"
	"newhackers-api/core/votes"
	"newhackers-api/core/workers"
	"newhackers-api/infrastructure/cache/memory"
	"newhackers-api/infrastructure/cache/redis"
	"newhackers-api/infrastructure/cache/sqlite"
	collyhttp "newhackers-api/infrastructure/http/colly"
	stdhttp "newhackers-api/infrastructure/http/standard"
	"newhackers-api/pkg/config"
	"newhackers-api/pkg/featureflags"
)

// app holds everything main starts and stops
type app struct {
	router  http.Handler
	worker  *workers.RefreshWorker
	closers []func()
}

// newApp wires the application. The returned app's refresh worker is already
// running when background refresh is enabled.
func newApp(cfg *config.Config, logger interfaces.Logger, flags featureflags.Manager) (*app, error) {
	ctx := context.Background()
	a := &app{}

	store, closeStore := newStore(cfg, logger)
	a.closers = append(a.closers, closeStore)

	deps := interfaces.Dependencies{
		Store:      store,
		HTTPClient: newHTTPClient(cfg, logger),
		Logger:     logger,
	}

	upstream := fetcher.NewFetcher(cfg.Upstream.BaseURL, deps)

	pageParser := parser.NewParser(parser.WithPageSize(cfg.Upstream.StoriesPerPage))
	tracker := freshness.NewTracker(store, cfg.Cache.Interval)
	logger.Info("Story service configured", map[string]interface{}{
		"page_size":        pageParser.PageSize(),
		"refresh_interval": tracker.Interval().String(),
	})

	storyService := stories.NewService(deps, stories.Options{
		Fetcher: upstream,
		Parser:  pageParser,
		Tracker: tracker,
		Locker:  lock.NewLocker(store, cfg.Refresh.LockPollInterval),
		Config: stories.Config{
			LockAcquireTimeout: cfg.Refresh.LockAcquireTimeout,
			LockLease:          cfg.Refresh.LockLease,
		},
	})

	if flags.IsEnabled(ctx, featureflags.BackgroundRefresh) {
		a.worker = workers.NewRefreshWorker(storyService, logger, workers.WorkerConfig{
			MaxWorkers:  cfg.Refresh.Workers,
			QueueSize:   cfg.Refresh.QueueSize,
			TaskTimeout: cfg.Upstream.Timeout + cfg.Refresh.LockAcquireTimeout,
		})
		if err := a.worker.Start(); err != nil {
			a.close()
			return nil, err
		}
		storyService.SetScheduler(a.worker)
	}

	apiConfig := api.APIConfig{Logger: logger}
	if flags.IsEnabled(ctx, featureflags.MetricsEnabled) {
		metrics := middleware.NewMetrics()
		if a.worker != nil {
			worker := a.worker
			if err := metrics.RegisterGauge("refresh_queue_depth", "Refreshes queued or running.", func() float64 {
				return float64(worker.Pending())
			}); err != nil {
				a.stop()
				return nil, err
			}
		}
		apiConfig.Metrics = metrics
	}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, time.Minute)
		a.closers = append(a.closers, limiter.Stop)
		apiConfig.Limiter = limiter
	}

	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	handlers.NewStoriesHandler(storyService).RegisterRoutes(humaAPI)
	if flags.IsEnabled(ctx, featureflags.AccountRoutes) {
		handlers.NewAccountHandler(
			auth.NewService(deps, upstream),
			votes.NewService(deps, upstream),
		).RegisterRoutes(humaAPI)
	}

	a.router = router
	return a, nil
}

// stop halts the refresh workers and releases the store
func (a *app) stop() error {
	var err error
	if a.worker != nil {
		err = a.worker.Stop()
	}
	a.close()
	return err
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// newStore builds the configured store. An unreachable Redis or an
// unusable SQLite file falls back to the in-memory store.
func newStore(cfg *config.Config, logger interfaces.Logger) (interfaces.Store, func()) {
	nop := func() {}

	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache(), nop
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Cache.Redis.Address,
			"db":      cfg.Cache.Redis.DB,
		})
		return redisCache, func() { redisCache.Close() }

	case "sqlite":
		sqliteCache, err := sqlite.NewSQLiteCache(cfg.Cache.SQLite.Path)
		if err != nil {
			logger.Error("Failed to create SQLite cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache(), nop
		}
		stats, err := sqliteCache.Stats()
		if err != nil {
			logger.Warn("Failed to read SQLite cache stats", map[string]interface{}{
				"error": err.Error(),
			})
			stats = map[string]interface{}{"file_path": cfg.Cache.SQLite.Path}
		}
		logger.Info("Using SQLite cache", stats)
		return sqliteCache, func() { sqliteCache.Close() }
	}

	logger.Info("Using memory cache", nil)
	return memory.NewMemoryCache(), nop
}

func newHTTPClient(cfg *config.Config, logger interfaces.Logger) interfaces.HTTPClient {
	transport := &middleware.LoggingRoundTripper{
		Transport: http.DefaultTransport,
		Logger:    logger,
	}

	if cfg.Upstream.Client == "colly" {
		return collyhttp.NewClient(cfg.Upstream.Timeout).WithTransport(transport)
	}
	return stdhttp.NewStandardHTTPClient(cfg.Upstream.Timeout).WithTransport(transport)
}

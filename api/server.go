// ABOUTME: Huma API server configuration and setup
// ABOUTME: Provides OpenAPI documentation and request/response validation

package api

import (
	"time"

	"newhackers-api/api/middleware"
	"newhackers-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	apiTitle   = "NewHackers API"
	apiVersion = "1.0.0"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger     interfaces.Logger
	RateLimit  int           // requests per window
	RateWindow time.Duration // rate limit window

	// Limiter overrides RateLimit and RateWindow so that the caller can stop it
	Limiter *middleware.RateLimiter

	// Metrics, when set, instruments every route and serves /metrics
	Metrics *middleware.Metrics
}

func corsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}
}

func humaConfig() huma.Config {
	config := huma.DefaultConfig(apiTitle, apiVersion)
	config.Info.Description = "JSON API over the Hacker News website: story listings, comments, login tokens and votes"
	return config
}

// NewAPI creates and configures a new Huma API instance
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	// CORS must run first so that preflight requests are never rate limited
	router.Use(cors.Handler(corsOptions()))
	router.Use(chimiddleware.StripSlashes)
	router.Use(chimiddleware.Recoverer)

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}

	limiter := cfg.Limiter
	if limiter == nil && cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	if limiter != nil {
		router.Use(middleware.RateLimitMiddleware(limiter))
	}

	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	// The OpenAPI document is served at /openapi.json and the docs UI at /docs
	api := humachi.New(router, humaConfig())

	return api, router
}

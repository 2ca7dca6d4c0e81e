// Package api assembles the HTTP surface: routing, auth and admission
// middleware, and the deal/health handlers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-deal/dealbot/api/handler"
	"github.com/use-deal/dealbot/api/middleware"
	"github.com/use-deal/dealbot/cache"
	"github.com/use-deal/dealbot/config"
	"github.com/use-deal/dealbot/pipeline"
	"github.com/use-deal/dealbot/ratelimit"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(p *pipeline.Pipeline, productCache *cache.Cache, apiLimiter *ratelimit.Limiter, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(productCache, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(apiLimiter))

	protected.POST("/deal", handler.Deal(p))

	return r
}

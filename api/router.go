// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/deepfetch/api/handler"
	"github.com/use-agent/deepfetch/api/middleware"
	"github.com/use-agent/deepfetch/cache"
	"github.com/use-agent/deepfetch/cleaner"
	"github.com/use-agent/deepfetch/config"
	"github.com/use-agent/deepfetch/scraper"
)

// NewRouter creates a configured Gin engine with all routes and
// middleware.
//
// Middleware chain:
//
//	Global:  Recovery -> Logger
//	API:     Auth (if enabled) -> RateLimit
//
// The health endpoint sits outside auth so monitoring probes always
// work.
func NewRouter(sc *scraper.Scraper, cl *cleaner.Cleaner, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(sc, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/fetch", handler.Fetch(sc, cl, cc))
	protected.POST("/dynamic", handler.Dynamic(sc))
	protected.POST("/structured", handler.Structured(sc))
	protected.GET("/info", handler.Info(sc))

	return r
}

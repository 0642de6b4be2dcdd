// Package api wires the Gin engine, middleware, and handlers together.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/relcis/api/handler"
	"github.com/use-agent/relcis/api/middleware"
	"github.com/use-agent/relcis/artifact"
	"github.com/use-agent/relcis/cache"
	"github.com/use-agent/relcis/config"
	"github.com/use-agent/relcis/orchestrator"
	"github.com/use-agent/relcis/session"
	"github.com/use-agent/relcis/summary"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(orch *orchestrator.Orchestrator, store *artifact.Store, sum *summary.Extractor, sessions *session.Manager, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "relcis web automation engine",
			"version": "0.1.0",
		})
	})

	apiGroup := r.Group("/api")

	// Health — no auth required.
	apiGroup.GET("/health", handler.Health(sessions, startTime))

	// Protected group — auth + rate limit.
	protected := apiGroup.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/search", handler.Search(orch, cc))
	protected.GET("/search/images", handler.Images(orch, store, cfg.Search))
	protected.GET("/screenshot", handler.Screenshot(orch, store, sum))
	protected.GET("/read", handler.Read(orch, store, sum))

	return r
}

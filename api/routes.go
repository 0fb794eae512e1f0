package api

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/vidslice/vidslice-api/api/health"
	"github.com/vidslice/vidslice-api/api/segments"
	"github.com/vidslice/vidslice-api/api/subtitles"
	"github.com/vidslice/vidslice-api/api/transcription"
	"github.com/vidslice/vidslice-api/api/types"
	"github.com/vidslice/vidslice-api/api/version"
	"github.com/vidslice/vidslice-api/api/videos"
	"github.com/vidslice/vidslice-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	if deps == nil {
		deps = &types.Dependencies{}
	}

	// API v1 routes
	v1 := engine.Group("/api/v1")

	rps := config.GetInt("rate_limiting.rps")
	if rps <= 0 {
		rps = 10
	}
	burst := config.GetInt("rate_limiting.burst")
	if burst <= 0 {
		burst = 20
	}

	videoGroup := v1.Group("/videos")
	if config.GetBool("rate_limiting.enabled") {
		videoGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, rps, burst))
	}

	videos.RegisterRoutes(videoGroup, deps)
	transcription.RegisterRoutes(videoGroup, deps)
	segments.RegisterRoutes(videoGroup, deps)
	subtitles.RegisterRoutes(videoGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}

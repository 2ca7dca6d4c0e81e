package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-deal/dealbot/cache"
	"github.com/use-deal/dealbot/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(productCache *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			CacheSize: productCache.Size(),
			Version:   "0.1.0",
		})
	}
}

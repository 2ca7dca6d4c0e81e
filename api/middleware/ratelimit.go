package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-deal/dealbot/models"
	"github.com/use-deal/dealbot/ratelimit"
)

// RateLimit returns per-identity (API key or IP) admission middleware backed
// by the shared sliding-window limiter. Keying by API key when auth ran, else
// by client IP, keeps one caller from starving the others.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := c.Get("api_key")
		if !exists {
			identity = c.ClientIP()
		}

		if !limiter.AllowKey(identity.(string)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.DealResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}

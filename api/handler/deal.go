package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-deal/dealbot/models"
	"github.com/use-deal/dealbot/pipeline"
)

// Deal returns a handler for POST /api/v1/deal.
//
// The request text may carry any number of links; each gets its own entry in
// results, in source order. Whole-message failures (rate limited, too many
// links) come back with an empty results list and a top-level error.
func Deal(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.DealResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		session := pipeline.Session{
			UserID:        req.UserID,
			Advanced:      req.Advanced,
			IncludeImages: req.IncludeImages,
		}
		resp := p.Process(c.Request.Context(), session, req.Text)

		c.JSON(statusFor(resp), resp)
	}
}

// statusFor maps a pipeline response to an HTTP status. Per-link failures
// still return 200; only whole-message errors change the status.
func statusFor(resp *models.DealResponse) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	switch resp.Error.Code {
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeInvalidInput, models.ErrCodeInvalidLink:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

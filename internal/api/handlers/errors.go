package handlers

import (
	"errors"
	"net/http"

	"airdelta/internal/api/models"
	"airdelta/internal/data"
	"airdelta/internal/delta"

	"github.com/gin-gonic/gin"
)

// respondError maps engine errors onto HTTP statuses:
// invalid parameter 400, insufficient data 404, fetch failure 503.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var fetchErr *delta.FetchError
	switch {
	case errors.Is(err, delta.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_PARAMETER",
				Message: err.Error(),
			},
		})
	case errors.Is(err, delta.ErrInsufficientData):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INSUFFICIENT_DATA",
				Message: "No overlapping observations for the requested sensors",
			},
		})
	case errors.As(err, &fetchErr):
		details := map[string]interface{}{
			"side":    fetchErr.Side,
			"channel": fetchErr.Channel,
		}
		var feedErr *data.FeedError
		if errors.As(err, &feedErr) {
			details["upstream_code"] = feedErr.Code
			if feedErr.StatusCode != 0 {
				details["status_code"] = feedErr.StatusCode
			}
			if feedErr.RetryAfter != "" {
				details["retry_after"] = feedErr.RetryAfter
			}
		}
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "FETCH_FAILED",
				Message: err.Error(),
				Details: details,
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}
}

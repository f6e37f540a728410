package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"airdelta/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers panics into a 500 error body
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey),
			"panic", fmt.Sprint(recovered))

		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oselz/ai-gateway/internal/core/domain"
)

// ErrorHandler renders errors attached by handlers as RFC 9457 problem
// documents. Handlers call c.Error and return; nothing else writes error
// bodies.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*domain.Problem); ok {
			if problem.Log != nil {
				logger.Error("request failed", zap.Error(problem.Log))
			}

			// RFC 9457 dictates the json is at the root
			c.Header("Content-Type", "application/problem+json")
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		if appErr, ok := err.(*domain.Error); ok {
			if appErr.Log != nil {
				logger.Error("request failed", zap.Error(appErr.Log))
			}

			c.Header("Content-Type", "application/problem+json")
			c.JSON(appErr.Code, domain.New(appErr.Code, http.StatusText(appErr.Code), appErr.Message))
			c.Abort()
			return
		}

		logger.Error("unhandled error", zap.Error(err))

		c.Header("Content-Type", "application/problem+json")
		c.JSON(http.StatusInternalServerError, domain.New(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}

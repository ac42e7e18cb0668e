package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// ErrorHandler renders errors collected by handlers. Problems serialize as
// RFC 9457 documents at the response root; anything else becomes a 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*api.Problem); ok {
			if problem.Log != nil {
				logger.Error("request failed",
					zap.String("path", c.Request.URL.Path),
					zap.Int("status", problem.Status),
					zap.Error(problem.Log),
				)
			}

			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		// unknown error shape, catch-all 500
		logger.Error("unhandled error", zap.String("path", c.Request.URL.Path), zap.Error(err))

		c.JSON(http.StatusInternalServerError, api.NewProblem(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}

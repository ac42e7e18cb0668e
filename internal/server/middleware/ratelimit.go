package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/caiatech/dashboard-api/pkg/api"
)

// RateLimit implements a simple in-memory token bucket shared by all
// callers. The dashboard has a handful of users; a distributed limiter
// would be overkill here.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.NewProblem(
				http.StatusTooManyRequests,
				"Too Many Requests",
				"Rate limit exceeded",
			))
			return
		}
		c.Next()
	}
}

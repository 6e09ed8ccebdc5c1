package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coopsave/internal/utils"
)

// RateCounter is the slice of the cache the limiter needs.
type RateCounter interface {
	Increment(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

// RateLimitMiddleware caps requests per client IP within a one minute
// window. It guards the public endpoints; an unreachable counter lets
// traffic through rather than taking the API down with it.
func RateLimitMiddleware(counter RateCounter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := utils.CacheRateLimitPrefix + c.ClientIP()
		count, err := counter.Increment(c.Request.Context(), key, time.Minute)
		if err == nil && count > int64(limit) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}

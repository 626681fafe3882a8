package middleware

import (
	"net/http"

	"github.com/fundgate/fundgate/internal/config"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a single instance-wide token bucket. The
// engine runs one transaction at a time anyway; this just sheds load
// before it reaches the store.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	qps := 50.0
	burst := 100
	if cfg != nil && cfg.RateLimit.QPS > 0 {
		qps = cfg.RateLimit.QPS
	}
	if cfg != nil && cfg.RateLimit.Burst > 0 {
		burst = cfg.RateLimit.Burst
	}
	limiter := rate.NewLimiter(rate.Limit(qps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

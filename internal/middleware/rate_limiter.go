package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vivispa/catalog-api/pkg/httputil"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
}

// RateLimiter applies one token bucket to every request it sees.
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(config.Rate, burst),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter.Allow() {
			c.Header("Retry-After", strconv.Itoa(retryAfter(rl.limiter.Limit())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.NewErrorResponse("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// retryAfter is the number of whole seconds until one token is available.
func retryAfter(limit rate.Limit) int {
	if limit <= 0 {
		return 1
	}
	secs := int(1 / float64(limit))
	if secs < 1 {
		secs = 1
	}
	return secs
}

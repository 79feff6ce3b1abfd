package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/itakarlapalli/subcentre/pkg/metrics"
)

// clientKey identifies the caller for rate limiting. There are no user
// accounts, so the client IP is the only key.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware returns a Gin middleware enforcing a token bucket per
// client IP. rps = allowed events per second, burst = maximum tokens in bucket.
// Each middleware instance keeps its own buckets.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var store sync.Map // map[string]*rate.Limiter
	return func(c *gin.Context) {
		key := clientKey(c)
		v, _ := store.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		lim := v.(*rate.Limiter)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

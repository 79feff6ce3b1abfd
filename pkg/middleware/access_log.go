package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itakarlapalli/subcentre/pkg/logger"
	"github.com/itakarlapalli/subcentre/pkg/metrics"
)

const requestIDKey = "requestID"

// RequestID propagates X-Request-Id, generating one when the caller did not.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = newID()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "req-unknown"
	}
	return hex.EncodeToString(b)
}

// AccessLog logs one line per request and records its latency.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status/100)+"xx").Observe(time.Since(start).Seconds())
		logger.Infof("method=%s path=%s status=%d bytes=%d dur_ms=%d request_id=%s",
			c.Request.Method, c.Request.URL.Path, status, c.Writer.Size(), time.Since(start).Milliseconds(), GetRequestID(c))
	}
}

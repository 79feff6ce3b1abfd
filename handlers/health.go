package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Banner is served on GET /.
const Banner = "Itakarlapalli Backend Server is running."

// Dependency is one line of the readiness report. A failing Required
// dependency turns /ready into 503; optional ones are only reported.
type Dependency struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// PingTimeout bounds each readiness check.
var PingTimeout = 2 * time.Second

// RegisterHealth registers GET /, /health, /api/health and /ready.
func RegisterHealth(r gin.IRoutes, started time.Time, deps ...Dependency) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := true
		report := map[string]bool{}
		for _, d := range deps {
			ctx, cancel := context.WithTimeout(c.Request.Context(), PingTimeout)
			ok := d.Check(ctx) == nil
			cancel()
			report[d.Name] = ok
			if !ok && d.Required {
				ready = false
			}
		}
		uptime := time.Since(started).Round(time.Second).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": report, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": report, "uptime": uptime})
	})
}

package middlewares

import (
	"strconv"
	"time"

	"github.com/azorastack/market/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request latency labeled by method, route template and
// status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPLatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

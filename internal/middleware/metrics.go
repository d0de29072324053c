package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ait-ops/cmms-api/internal/service"
)

// Metrics records one prometheus observation per request. The route
// template (c.FullPath) is used as the label so /equipment/:bfmNo stays
// one series instead of one per asset; unmatched routes fall back to the
// raw path.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"time"

	"ama/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records HTTP metrics for each request, labelled by route pattern.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncInFlight()
		defer m.DecInFlight()

		c.Next()

		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

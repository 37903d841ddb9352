package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gw-fund-subscriptions/internal/metrics"
)

// Metrics измеряет длительность запросов по шаблону маршрута
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Package metrics exposes Prometheus collectors for the HTTP surface and
// bill lifecycle.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billgen",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "billgen",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	billOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billgen",
		Name:      "bill_operations_total",
		Help:      "Bill writes by operation.",
	}, []string{"operation"})

	billNumberRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "billgen",
		Name:      "bill_number_retries_total",
		Help:      "Bill inserts retried after a duplicate bill number.",
	})
)

// Middleware records request counts and latency. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// BillOperation counts a successful bill write ("created", "updated", "deleted").
func BillOperation(operation string) {
	billOperations.WithLabelValues(operation).Inc()
}

func BillNumberRetry() {
	billNumberRetries.Inc()
}

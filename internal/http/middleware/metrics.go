package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedPath is the path label for requests no route matched. Raw URLs are
// never used as label values.
const unmatchedPath = "unmatched"

// routeLabels are the labels of the per-route series. path is the Gin route
// template, e.g. /api/reviews/product/:productId.
var routeLabels = []string{"method", "path"}

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Inbound HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Inbound request latency, including the upstream round trip.",
		Buckets: prometheus.DefBuckets,
	}, routeLabels)

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Inbound requests currently being served.",
	})

	// 256B .. 4MiB
	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Response body size in bytes.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, routeLabels)

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})

	authRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_auth_rejected_total",
		Help: "Requests rejected by bearer token checks, by reason.",
	}, []string{"reason"})
)

// Metrics records request count, latency, response size and in-flight
// requests for every request that passes through it. Mount /metrics with
// promhttp.Handler().
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		defer httpInflight.Dec()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedPath
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": route}

		httpLat.With(labels).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.With(labels).Observe(float64(n))
		}
		labels["status"] = strconv.Itoa(c.Writer.Status())
		httpReqs.With(labels).Inc()
	}
}

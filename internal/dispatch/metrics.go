package dispatch

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// upstreamReqs counts dispatch calls by service, method and status.
	// Status is "0" for calls that never got an HTTP response.
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream dispatch calls.",
		},
		[]string{"service", "method", "status"},
	)

	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream dispatch calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat)
}

func statusLabel(status int) string { return strconv.Itoa(status) }

func observe(service, method string, status int, start time.Time) {
	upstreamReqs.WithLabelValues(service, method, statusLabel(status)).Inc()
	upstreamLat.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
}

package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Outbound storefront API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	apiDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Outbound storefront API request latency",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"method", "route"},
	)

	transportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_transport_failures_total",
			Help: "Requests that never produced an HTTP response",
		},
		[]string{"method", "route"},
	)
)

// TrackRequest records one completed round trip. statusCode 0 means the
// request never produced a response.
func TrackRequest(method, route string, statusCode int, duration time.Duration) {
	if statusCode == 0 {
		transportFailures.WithLabelValues(method, route).Inc()
		return
	}
	apiRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	apiDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

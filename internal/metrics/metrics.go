// Package metrics exposes the Prometheus collectors shared by the server, the
// cache and the profile sync.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pat_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	SessionsSegmented = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pat_sessions_per_request",
			Help:    "Number of sessions produced per segmentation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pat_cache_requests_total",
			Help: "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"}, // "hit", "miss", "error"
	)

	SteamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pat_steam_requests_total",
			Help: "Steam Web API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	ProfileSyncBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pat_profile_sync_batches_total",
			Help: "Profile sync batches by outcome",
		},
		[]string{"result"}, // "ok", "failed"
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordCache(namespace, result string) {
	CacheRequestsTotal.WithLabelValues(namespace, result).Inc()
}

func RecordSteamRequest(endpoint string, status int) {
	SteamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

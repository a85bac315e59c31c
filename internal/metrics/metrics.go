// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package metrics defines Prometheus metrics for monitoring ReelRank.
//
// All metrics are registered with the default registry via promauto and
// exposed on /metrics by the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal tracks total API requests by method, endpoint, and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration tracks API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelrank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// APIActiveRequests tracks in-flight API requests.
	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// CatalogMovies reports the number of movies in the loaded catalog.
	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelrank_catalog_movies",
			Help: "Number of movies in the loaded catalog artifact",
		},
	)

	// ArtifactLoadDuration tracks how long artifact loads take.
	ArtifactLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrank_artifact_load_duration_seconds",
			Help:    "Catalog artifact load duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)

	// RecommendDuration tracks recommendation generation latency.
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelrank_recommend_duration_seconds",
			Help:    "Recommendation generation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// ResolveMisses counts title lookups that failed to clear the fuzzy threshold.
	ResolveMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelrank_resolve_misses_total",
			Help: "Total number of title resolutions below the match threshold",
		},
	)
)

// RecordAPIRequest records an API request with its duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(increment bool) {
	if increment {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordArtifactLoad records a successful artifact load.
func RecordArtifactLoad(movies int, duration time.Duration) {
	CatalogMovies.Set(float64(movies))
	ArtifactLoadDuration.Observe(duration.Seconds())
}

// RecordRecommendation records one recommendation generation.
func RecordRecommendation(duration time.Duration) {
	RecommendDuration.Observe(duration.Seconds())
}

// RecordResolveMiss records a failed title resolution.
func RecordResolveMiss() {
	ResolveMisses.Inc()
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package middleware provides HTTP middleware shared across route groups.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
)

// metricsResponseWriter captures the status code for metrics reporting.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// PrometheusMetrics wraps a handler to record request count, duration, and
// in-flight gauge for the endpoint.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		metrics.RecordAPIRequest(
			r.Method,
			r.URL.Path,
			strconv.Itoa(wrapped.statusCode),
			time.Since(start),
		)
	}
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/models"
)

// Per-endpoint-class rate budgets, requests per minute per client IP.
const (
	rateLimitRoot      = 20
	rateLimitRecommend = 10
	rateLimitSearch    = 30
	rateLimitMovie     = 30
	rateLimitHealth    = 1000
)

// corsHandler builds the CORS middleware from the configured origins.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimit returns a per-IP rate limiter for the given budget, or a no-op
// when disabled.
func rateLimit(requestsPerMinute int, disabled bool) func(http.Handler) http.Handler {
	if disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, models.ErrCodeRateLimited,
				"Rate limit exceeded, try again later", nil)
		}),
	)
}

// requestIDMiddleware assigns a request ID, propagates it through the context
// and response header, and logs request completion.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		logger := logging.Ctx(ctx)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

// securityHeaders sets conservative response headers on every request.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

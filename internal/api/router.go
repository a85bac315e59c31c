// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/middleware"
	"github.com/reelrank/reelrank/internal/service"
)

// NewRouter builds the full route tree with middleware and per-endpoint-class
// rate limits.
func NewRouter(svc *service.Service, cfg *config.Config) http.Handler {
	h := NewHandler(svc, cfg)
	disabled := cfg.Security.RateLimitDisabled

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(corsHandler(cfg.Security.CORSOrigins))

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(rateLimitRoot, disabled))
		r.Get("/", middleware.PrometheusMetrics(h.Root))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(rateLimitRecommend, disabled))
			r.Post("/recommend", middleware.PrometheusMetrics(h.Recommend))
		})
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(rateLimitSearch, disabled))
			r.Get("/search", middleware.PrometheusMetrics(h.Search))
		})
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(rateLimitMovie, disabled))
			r.Get("/movie/{title}", middleware.PrometheusMetrics(h.MovieDetails))
		})
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(rateLimitHealth, disabled))
			r.Get("/health", middleware.PrometheusMetrics(h.Health))
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

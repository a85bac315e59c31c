// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/models"
	"github.com/reelrank/reelrank/internal/service"
)

// Version is the service version reported on the root endpoint.
const Version = "1.0.0"

// Handler bundles the request handlers with their dependencies.
type Handler struct {
	svc *service.Service
	cfg *config.Config
}

// NewHandler creates the handler set over the given service.
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

// Root handles GET / with service identification and an endpoint map.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	info := models.ServiceInfo{
		Service: "ReelRank",
		Version: Version,
		Endpoints: map[string]string{
			"recommend": "POST /api/v1/recommend",
			"search":    "GET /api/v1/search?q={query}&limit={n}",
			"movie":     "GET /api/v1/movie/{title}",
			"health":    "GET /api/v1/health",
			"metrics":   "GET /metrics",
		},
	}
	respondJSON(w, r, http.StatusOK, models.NewSuccessResponse(info, time.Since(start)))
}

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	topN := models.DefaultTopN
	if req.TopN != nil {
		topN = *req.TopN
	}
	minVotes := models.DefaultMinVotes
	if req.MinVotes != nil {
		minVotes = *req.MinVotes
	}
	minRating := models.DefaultMinRating
	if req.MinRating != nil {
		minRating = *req.MinRating
	}

	set, err := h.svc.Recommend(req.Title, topN, minVotes, minRating)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewSuccessResponse(set, time.Since(start)))
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < models.MinQueryLength || len(query) > models.MaxQueryLength {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"Query parameter q must be between 2 and 200 characters", nil)
		return
	}

	limit, err := queryIntParam(r, "limit", models.DefaultSearchLimit)
	if err != nil || limit < 1 {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"Parameter limit must be a positive integer", nil)
		return
	}
	if limit > models.MaxSearchLimit {
		limit = models.MaxSearchLimit
	}

	results, err := h.svc.Search(query, limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewSuccessResponse(models.SearchResponse{
		Query:        query,
		TotalResults: len(results),
		Results:      results,
	}, time.Since(start)))
}

// MovieDetails handles GET /api/v1/movies/{title}.
func (h *Handler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	title = strings.TrimSpace(title)
	if title == "" {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"Movie title must not be empty", nil)
		return
	}

	details, err := h.svc.GetDetails(title)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, models.NewSuccessResponse(details, time.Since(start)))
}

// Health handles GET /health. A missing or failed artifact reports 503 so
// orchestrators hold traffic until the catalog is ready.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status()

	payload := models.HealthStatus{
		Status:         "healthy",
		ArtifactLoaded: status.Loaded,
		TotalMovies:    status.TotalMovies,
	}
	code := http.StatusOK
	if !status.Loaded {
		payload.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, r, code, models.NewSuccessResponse(payload, 0))
}

// respondServiceError maps service-layer errors to HTTP responses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		var details interface{}
		if len(notFound.Suggestions) > 0 {
			details = map[string]interface{}{"suggestions": notFound.Suggestions}
		}
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, notFound.Error(), details)
		return
	}

	if errors.Is(err, catalog.ErrArtifactNotFound) || errors.Is(err, catalog.ErrArtifactCorrupt) {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
			"Movie catalog is unavailable", nil)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled service error")
	respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
		"Internal server error", nil)
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/models"
	"github.com/reelrank/reelrank/internal/service"
)

func newTestRouter(t *testing.T, load bool) http.Handler {
	t.Helper()

	movies := []map[string]interface{}{
		{"title": "Iron Man", "rating": 7.6, "vote_count": 20000, "overview": "A billionaire builds a suit.", "genres": "Action"},
		{"title": "Iron Man 2", "rating": 6.9, "vote_count": 15000, "overview": "The suit returns.", "genres": "Action"},
		{"title": "The Notebook", "rating": 7.8, "vote_count": 9000, "overview": "A romance.", "genres": "Romance"},
	}
	embeddings := [][]float64{
		{1.0, 0.1},
		{0.95, 0.2},
		{0.0, 1.0},
	}
	titles := []string{"Iron Man", "Iron Man 2", "The Notebook"}

	data, err := json.Marshal(map[string]interface{}{
		"movies": movies, "embeddings": embeddings, "titles": titles,
	})
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "artifact.json")
	if !load {
		path = filepath.Join(t.TempDir(), "missing.json")
	} else if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Artifact.Path = path
	cfg.Security.RateLimitDisabled = true

	svc := service.New(catalog.NewStore(path), cfg.Recommend.Threshold)
	if load {
		if err := svc.Load(); err != nil {
			t.Fatalf("loading fixture: %v", err)
		}
	}
	return NewRouter(svc, cfg)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := &models.APIResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func TestRootEndpoint(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Fatalf("envelope status = %q, want success", resp.Status)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if rec.Header().Get("ETag") == "" {
		t.Fatal("ETag header missing")
	}
}

func TestRecommendEndpoint(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/recommend",
		`{"title": "iron man", "top_n": 5, "min_votes": 0, "min_rating": 0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	if data["input_movie"] != "Iron Man" {
		t.Fatalf("input_movie = %v, want Iron Man", data["input_movie"])
	}
	recs, ok := data["recommendations"].([]interface{})
	if !ok || len(recs) != 2 {
		t.Fatalf("recommendations = %v, want 2 entries", data["recommendations"])
	}
}

func TestRecommendEndpointNotFound(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/recommend",
		`{"title": "zzzz qqqq"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeNotFound {
		t.Fatalf("error = %+v, want code NOT_FOUND", resp.Error)
	}
	details, ok := resp.Error.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %T, want object with suggestions", resp.Error.Details)
	}
	if _, ok := details["suggestions"]; !ok {
		t.Fatal("suggestions missing from not-found details")
	}
}

func TestRecommendEndpointValidation(t *testing.T) {
	h := newTestRouter(t, true)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{}`},
		{name: "empty title", body: `{"title": ""}`},
		{name: "top_n too high", body: `{"title": "Iron Man", "top_n": 51}`},
		{name: "top_n zero", body: `{"title": "Iron Man", "top_n": 0}`},
		{name: "negative min_votes", body: `{"title": "Iron Man", "min_votes": -1}`},
		{name: "min_rating too high", body: `{"title": "Iron Man", "min_rating": 10.5}`},
		{name: "invalid json", body: `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if resp.Status != "error" {
				t.Fatalf("envelope status = %q, want error", resp.Status)
			}
		})
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/search?q=iron+man&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	data := resp.Data.(map[string]interface{})
	if data["query"] != "iron man" {
		t.Fatalf("query = %v, want iron man", data["query"])
	}
	results := data["results"].([]interface{})
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	top := results[0].(map[string]interface{})
	if top["title"] != "Iron Man" {
		t.Fatalf("top result = %v, want Iron Man", top["title"])
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	h := newTestRouter(t, true)

	tests := []struct {
		name   string
		target string
	}{
		{name: "missing query", target: "/api/v1/search"},
		{name: "query too short", target: "/api/v1/search?q=a"},
		{name: "bad limit", target: "/api/v1/search?q=iron&limit=abc"},
		{name: "zero limit", target: "/api/v1/search?q=iron&limit=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != models.ErrCodeValidation {
				t.Fatalf("error = %+v, want VALIDATION_ERROR", resp.Error)
			}
		})
	}
}

func TestSearchEndpointLimitCap(t *testing.T) {
	h := newTestRouter(t, true)

	// A limit above the cap is clamped, not rejected.
	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/search?q=iron&limit=100", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	results := data["results"].([]interface{})
	if len(results) > models.MaxSearchLimit {
		t.Fatalf("results = %d, want at most %d", len(results), models.MaxSearchLimit)
	}
}

func TestMovieDetailsEndpoint(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/movie/the%20notebook", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["title"] != "The Notebook" {
		t.Fatalf("title = %v, want The Notebook", data["title"])
	}
	if data["overview"] != "A romance." {
		t.Fatalf("overview = %v, want full entry", data["overview"])
	}
}

func TestMovieDetailsEndpointNotFound(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/movie/zzzzqqqq", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeNotFound {
		t.Fatalf("error = %+v, want NOT_FOUND", resp.Error)
	}
	if resp.Error.Details != nil {
		t.Fatalf("details = %v, want no suggestions on details miss", resp.Error.Details)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(t, true)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != "healthy" {
		t.Fatalf("status = %v, want healthy", data["status"])
	}
	if data["artifact_loaded"] != true {
		t.Fatalf("artifact_loaded = %v, want true", data["artifact_loaded"])
	}
	if data["total_movies"] != float64(3) {
		t.Fatalf("total_movies = %v, want 3", data["total_movies"])
	}
}

func TestHealthEndpointUnloaded(t *testing.T) {
	h := newTestRouter(t, false)

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["status"] != "unhealthy" {
		t.Fatalf("status = %v, want unhealthy", data["status"])
	}
}

func TestRecommendEndpointArtifactMissing(t *testing.T) {
	h := newTestRouter(t, false)

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/recommend",
		`{"title": "Iron Man"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeServiceUnavailable {
		t.Fatalf("error = %+v, want SERVICE_UNAVAILABLE", resp.Error)
	}
}

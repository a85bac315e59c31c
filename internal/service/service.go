// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package service composes the catalog store, title resolver, and
// recommendation engine behind the three externally visible operations:
// search, recommend, and get-details.
//
// A Service is constructed explicitly at process start and shared by
// reference across request handlers; there is no package-level state. All
// operations are stateless reads over the immutable catalog. The only write
// in the component's lifetime is the one-time Unloaded -> Loaded transition,
// which the catalog store guards against concurrent first access.
package service

import (
	"fmt"
	"math"
	"time"

	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/resolver"
)

// MaxSuggestions caps the "did you mean" list attached to a failed
// recommend resolution.
const MaxSuggestions = 3

// SearchResult is one fuzzy search candidate enriched with catalog fields.
type SearchResult struct {
	Title      string  `json:"title"`
	MatchScore float64 `json:"match_score"`
	Rating     float64 `json:"rating"`
	VoteCount  int     `json:"votes"`
}

// RecommendationSet is the successful outcome of a recommend operation.
type RecommendationSet struct {
	InputMovie      string                      `json:"input_movie"`
	Count           int                         `json:"total_recommendations"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Details is the full catalog entry returned by GetDetails.
type Details struct {
	Title     string  `json:"title"`
	Rating    float64 `json:"rating"`
	VoteCount int     `json:"votes"`
	Overview  string  `json:"overview"`
	Genres    string  `json:"genres"`
}

// Status summarizes service readiness for health reporting.
type Status struct {
	Loaded      bool
	TotalMovies int
}

// NotFoundError reports that a title failed to resolve above the fuzzy
// threshold. On the recommend path it carries up to MaxSuggestions candidate
// titles so callers can offer "did you mean" guidance instead of a bare
// failure; GetDetails returns it with no suggestions.
type NotFoundError struct {
	Title       string
	Suggestions []SearchResult
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("movie %q not found", e.Title)
}

// Service wraps the single shared catalog instance for the process lifetime.
type Service struct {
	store     *catalog.Store
	resolver  *resolver.Resolver
	engine    *recommend.Engine
	threshold float64
}

// New creates a service over the given catalog store, resolving titles at
// the given fuzzy threshold (0-100). The store may be loaded lazily: every
// operation triggers the idempotent load on first use.
func New(store *catalog.Store, threshold float64) *Service {
	if threshold <= 0 || threshold > 100 {
		threshold = resolver.DefaultThreshold
	}
	return &Service{
		store:     store,
		resolver:  resolver.New(store),
		engine:    recommend.New(store),
		threshold: threshold,
	}
}

// Load eagerly loads the catalog artifact. Calling it is optional (every
// operation loads on first use) but lets the process fail fast at startup.
func (s *Service) Load() error {
	return s.store.Load()
}

// Status reports whether the artifact is loaded and how many movies it holds.
// It never triggers a load.
func (s *Service) Status() Status {
	return Status{
		Loaded:      s.store.Loaded(),
		TotalMovies: s.store.Len(),
	}
}

// Search returns up to limit fuzzy candidates for query, ordered by
// descending match score. An empty or whitespace query yields an empty list,
// never an error; only artifact load failures are returned as errors.
func (s *Service) Search(query string, limit int) ([]SearchResult, error) {
	if err := s.store.Load(); err != nil {
		return nil, err
	}

	matches := s.resolver.ResolveMany(query, limit)
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, s.searchResult(m))
	}
	return results, nil
}

// Recommend resolves title and ranks the catalog against it. On resolution
// failure it returns a *NotFoundError carrying best-effort suggestions; the
// sibling resolver pass makes them cheap to compute, and the UX contract is
// that a recommend miss is always actionable.
func (s *Service) Recommend(title string, topN, minVotes int, minRating float64) (*RecommendationSet, error) {
	if err := s.store.Load(); err != nil {
		return nil, err
	}

	start := time.Now()

	match, ok := s.resolver.ResolveOne(title, s.threshold)
	if !ok {
		metrics.RecordResolveMiss()
		notFound := &NotFoundError{Title: title}
		for _, m := range s.resolver.ResolveMany(title, MaxSuggestions) {
			notFound.Suggestions = append(notFound.Suggestions, s.searchResult(m))
		}
		return nil, notFound
	}

	recs := s.engine.Recommend(match.Index, topN, minVotes, minRating)
	metrics.RecordRecommendation(time.Since(start))

	logging.Info().
		Str("input", match.Title).
		Int("count", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations generated")

	return &RecommendationSet{
		InputMovie:      match.Title,
		Count:           len(recs),
		Recommendations: recs,
	}, nil
}

// GetDetails resolves title and returns the full catalog entry, or a
// *NotFoundError with no suggestions.
func (s *Service) GetDetails(title string) (*Details, error) {
	if err := s.store.Load(); err != nil {
		return nil, err
	}

	match, ok := s.resolver.ResolveOne(title, s.threshold)
	if !ok {
		metrics.RecordResolveMiss()
		return nil, &NotFoundError{Title: title}
	}

	entry := s.store.Entry(match.Index)
	return &Details{
		Title:     entry.Title,
		Rating:    roundTo(entry.Rating, 1),
		VoteCount: entry.VoteCount,
		Overview:  entry.Overview,
		Genres:    entry.Genres,
	}, nil
}

func (s *Service) searchResult(m resolver.Match) SearchResult {
	entry := s.store.Entry(m.Index)
	return SearchResult{
		Title:      entry.Title,
		MatchScore: roundTo(m.Score, 1),
		Rating:     roundTo(entry.Rating, 1),
		VoteCount:  entry.VoteCount,
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/catalog"
)

type fixtureMovie struct {
	Title     string    `json:"title"`
	Rating    float64   `json:"rating"`
	VoteCount int       `json:"vote_count"`
	Embedding []float64 `json:"-"`
}

func newStore(t *testing.T, movies []fixtureMovie) *catalog.Store {
	t.Helper()

	titles := make([]string, len(movies))
	embeddings := make([][]float64, len(movies))
	for i, m := range movies {
		titles[i] = m.Title
		embeddings[i] = m.Embedding
	}

	data, err := json.Marshal(map[string]interface{}{
		"movies": movies, "embeddings": embeddings, "titles": titles,
	})
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "artifact.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	store := catalog.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("loading fixture: %v", err)
	}
	return store
}

func testMovies() []fixtureMovie {
	return []fixtureMovie{
		{Title: "Anchor", Rating: 7.0, VoteCount: 1000, Embedding: []float64{1, 0}},
		{Title: "Close", Rating: 8.0, VoteCount: 5000, Embedding: []float64{1, 0}},
		{Title: "Orthogonal", Rating: 9.0, VoteCount: 10000, Embedding: []float64{0, 1}},
		{Title: "LowVotes", Rating: 8.0, VoteCount: 10, Embedding: []float64{1, 0}},
		{Title: "LowRating", Rating: 3.0, VoteCount: 5000, Embedding: []float64{1, 0}},
	}
}

func TestRecommend(t *testing.T) {
	e := New(newStore(t, testMovies()))

	recs := e.Recommend(0, 10, 50, 6.0)
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2 (filters must drop LowVotes and LowRating)", len(recs))
	}

	// Similarity dominates the blend: the identical-embedding movie outranks
	// the orthogonal one despite a lower rating.
	if recs[0].Title != "Close" {
		t.Fatalf("top recommendation = %q, want %q", recs[0].Title, "Close")
	}
	if recs[1].Title != "Orthogonal" {
		t.Fatalf("second recommendation = %q, want %q", recs[1].Title, "Orthogonal")
	}

	if recs[0].Similarity != 1.0 {
		t.Fatalf("identical embedding similarity = %v, want 1.0", recs[0].Similarity)
	}
	if recs[1].Similarity != 0.0 {
		t.Fatalf("orthogonal embedding similarity = %v, want 0.0", recs[1].Similarity)
	}

	for _, r := range recs {
		if r.Title == "Anchor" {
			t.Fatal("anchor movie present in its own recommendations")
		}
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("score %v outside [0, 1] for %q", r.Score, r.Title)
		}
	}
}

func TestRecommendTopNBound(t *testing.T) {
	e := New(newStore(t, testMovies()))

	if got := e.Recommend(0, 1, 0, 0); len(got) != 1 {
		t.Fatalf("topN 1: len = %d, want 1", len(got))
	}
	if got := e.Recommend(0, 100, 0, 0); len(got) != 4 {
		t.Fatalf("topN above candidate count: len = %d, want 4", len(got))
	}
	if got := e.Recommend(0, 0, 0, 0); got != nil {
		t.Fatalf("topN 0: got %v, want nil", got)
	}
}

func TestRecommendInvalidAnchor(t *testing.T) {
	e := New(newStore(t, testMovies()))

	if got := e.Recommend(-1, 10, 0, 0); got != nil {
		t.Fatalf("negative anchor: got %v, want nil", got)
	}
	if got := e.Recommend(99, 10, 0, 0); got != nil {
		t.Fatalf("out-of-range anchor: got %v, want nil", got)
	}
}

func TestRecommendFiltersExhaustive(t *testing.T) {
	e := New(newStore(t, testMovies()))

	// Filters strict enough to eliminate every candidate yield an empty
	// result, not an error.
	if got := e.Recommend(0, 10, 1000000, 9.9); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestRecommendZeroVoteCatalog(t *testing.T) {
	movies := []fixtureMovie{
		{Title: "A", Rating: 7.0, VoteCount: 0, Embedding: []float64{1, 0}},
		{Title: "B", Rating: 8.0, VoteCount: 0, Embedding: []float64{1, 1}},
	}
	e := New(newStore(t, movies))

	recs := e.Recommend(0, 10, 0, 0)
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	if math.IsNaN(recs[0].Score) || math.IsInf(recs[0].Score, 0) {
		t.Fatalf("score = %v with all-zero vote counts, want finite", recs[0].Score)
	}
}

func TestRecommendDeterministicTies(t *testing.T) {
	// Identical rows score identically; order must be ascending catalog index.
	movies := []fixtureMovie{
		{Title: "Anchor", Rating: 7.0, VoteCount: 100, Embedding: []float64{1, 0}},
		{Title: "Twin A", Rating: 7.0, VoteCount: 100, Embedding: []float64{1, 0}},
		{Title: "Twin B", Rating: 7.0, VoteCount: 100, Embedding: []float64{1, 0}},
	}
	e := New(newStore(t, movies))

	for i := 0; i < 20; i++ {
		recs := e.Recommend(0, 10, 0, 0)
		if len(recs) != 2 || recs[0].Title != "Twin A" || recs[1].Title != "Twin B" {
			t.Fatalf("iteration %d: unexpected order %v", i, recs)
		}
	}
}

func TestRecommendRounding(t *testing.T) {
	movies := []fixtureMovie{
		{Title: "Anchor", Rating: 7.123, VoteCount: 100, Embedding: []float64{1, 0.5}},
		{Title: "Other", Rating: 7.456, VoteCount: 300, Embedding: []float64{0.9, 0.6}},
	}
	e := New(newStore(t, movies))

	recs := e.Recommend(0, 1, 0, 0)
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Rating != 7.5 {
		t.Fatalf("rating = %v, want 7.5 (1 decimal)", r.Rating)
	}
	if r.Similarity != roundTo(r.Similarity, 3) {
		t.Fatalf("similarity %v not rounded to 3 decimals", r.Similarity)
	}
	if r.Score != roundTo(r.Score, 3) {
		t.Fatalf("score %v not rounded to 3 decimals", r.Score)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
		{name: "length mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

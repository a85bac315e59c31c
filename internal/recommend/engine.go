// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package recommend ranks the catalog relative to one anchor movie.
//
// The ranking blends embedding similarity with a popularity/quality score:
//
//	quality = 0.7 * (rating / 10) + 0.3 * (log1p(votes) / log1p(maxVotes))
//	final   = 0.6 * similarity + 0.4 * quality
//
// Similarity dominates (it answers "is this like the anchor?") while quality
// boosts well-regarded, well-known titles. Popularity is log-scaled so a
// handful of blockbusters cannot saturate the signal.
package recommend

import (
	"math"
	"sort"

	"github.com/reelrank/reelrank/internal/catalog"
)

// Score blend weights.
const (
	ratingWeight     = 0.7
	popularityWeight = 0.3
	similarityWeight = 0.6
	qualityWeight    = 0.4
)

// Recommendation is one ranked output row. Rating is rounded to 1 decimal,
// Similarity and Score to 3 decimals; rounding is presentational only and
// never feeds back into ranking.
type Recommendation struct {
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	VoteCount  int     `json:"vote_count"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// Engine derives rankings from the shared catalog store. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	store *catalog.Store
}

// New creates an engine over the given catalog store.
func New(store *catalog.Store) *Engine {
	return &Engine{store: store}
}

// Recommend ranks every catalog row against the embedding at anchor and
// returns the topN rows by blended score, excluding the anchor itself and any
// row below minVotes or minRating. Ordering is deterministic: descending
// score, ties broken by ascending catalog index.
//
// Degenerate inputs are clamped rather than rejected: an out-of-range anchor
// or topN < 1 yields an empty result.
func (e *Engine) Recommend(anchor, topN, minVotes int, minRating float64) []Recommendation {
	entries := e.store.Entries()
	if anchor < 0 || anchor >= len(entries) || topN < 1 {
		return nil
	}

	// log1p(0) = 0: with an all-zero-vote catalog the popularity term is
	// dropped instead of dividing by zero.
	voteDenom := math.Log1p(float64(e.store.MaxVoteCount()))

	anchorVec := e.store.Embedding(anchor)

	type scored struct {
		index      int
		similarity float64
		score      float64
	}
	candidates := make([]scored, 0, len(entries))

	for i := range entries {
		if i == anchor {
			continue
		}
		m := &entries[i]
		if m.VoteCount < minVotes || m.Rating < minRating {
			continue
		}

		similarity := cosineSimilarity(anchorVec, e.store.Embedding(i))

		popularity := 0.0
		if voteDenom > 0 {
			popularity = math.Log1p(float64(m.VoteCount)) / voteDenom
		}
		quality := ratingWeight*(m.Rating/10) + popularityWeight*popularity

		candidates = append(candidates, scored{
			index:      i,
			similarity: similarity,
			score:      similarityWeight*similarity + qualityWeight*quality,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].index < candidates[j].index
	})

	if topN > len(candidates) {
		topN = len(candidates)
	}

	results := make([]Recommendation, 0, topN)
	for _, c := range candidates[:topN] {
		m := entries[c.index]
		results = append(results, Recommendation{
			Title:      m.Title,
			Rating:     roundTo(m.Rating, 1),
			VoteCount:  m.VoteCount,
			Similarity: roundTo(c.similarity, 3),
			Score:      roundTo(c.score, 3),
		})
	}
	return results
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero norm or the lengths disagree.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package resolver maps free-text queries to known catalog titles using
// fuzzy string matching.
//
// Scores are normalized similarity ratios in the 0-100 range, computed from
// the indel (insert/delete) edit distance between the case-folded query and
// each title. A linear scan per query is deliberate: at catalog scale
// (thousands of rows) it is cheap, and it keeps ranking exact rather than
// approximate.
package resolver

import (
	"sort"
	"strings"

	"github.com/reelrank/reelrank/internal/catalog"
)

// DefaultThreshold is the minimum score for a single-best resolution.
// A score exactly at the threshold is accepted.
const DefaultThreshold = 60.0

// Match is one scored candidate title.
type Match struct {
	Title string
	Score float64
	Index int
}

// Resolver performs fuzzy matching over the catalog's title list. It is a
// pure reader: no state beyond the shared store reference.
type Resolver struct {
	store *catalog.Store
}

// New creates a resolver over the given catalog store.
func New(store *catalog.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveOne returns the highest-scoring title whose score is >= threshold.
// Ties on the maximum score resolve to the lowest catalog index, so results
// are reproducible for identical inputs. An empty or whitespace-only query
// never matches.
func (r *Resolver) ResolveOne(query string, threshold float64) (Match, bool) {
	q := normalize(query)
	if q == "" {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, title := range r.store.Titles() {
		score := ratio(q, normalize(title))
		// Strictly-greater comparison keeps the first index on ties.
		if score > best.Score || best.Index == -1 {
			best = Match{Title: title, Score: score, Index: i}
		}
	}

	if best.Index == -1 || best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

// ResolveMany returns up to limit candidates ordered by descending score,
// ties broken by ascending catalog index. The limit is clamped to the catalog
// size. An empty query or a limit below 1 yields an empty result, not an
// error.
func (r *Resolver) ResolveMany(query string, limit int) []Match {
	q := normalize(query)
	if q == "" || limit < 1 {
		return nil
	}

	titles := r.store.Titles()
	matches := make([]Match, 0, len(titles))
	for i, title := range titles {
		matches = append(matches, Match{
			Title: title,
			Score: ratio(q, normalize(title)),
			Index: i,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	if limit > len(matches) {
		limit = len(matches)
	}
	return matches[:limit]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ratio computes the normalized indel similarity between a and b in the
// 0-100 range: 100 * (1 - indelDistance/(len(a)+len(b))), which reduces to
// 200*LCS/(len(a)+len(b)). Two empty strings score 100.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	lensum := len(ra) + len(rb)
	if lensum == 0 {
		return 100
	}
	return 100 * float64(2*lcsLength(ra, rb)) / float64(lensum)
}

// lcsLength returns the length of the longest common subsequence of a and b
// using a two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

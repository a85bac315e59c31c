// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package catalog holds the immutable movie catalog and its embedding table.
//
// The catalog is loaded once from a precomputed artifact bundle and shared
// read-only by all requests for the lifetime of the process. Entries and
// embedding vectors are parallel slices joined by position: index i in one
// corresponds exactly to index i in the other. A flat title list is kept as
// its own slice so the resolver can scan it without touching full entries.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/metrics"
)

// Sentinel errors for artifact loading. Both are fatal to the call path that
// triggered the load and surface as a health failure, never as a retry.
var (
	// ErrArtifactNotFound indicates the backing artifact file is missing.
	ErrArtifactNotFound = errors.New("artifact file not found")

	// ErrArtifactCorrupt indicates the artifact deserialized but violates an
	// invariant (missing collection, length mismatch, ragged embeddings).
	ErrArtifactCorrupt = errors.New("artifact corrupt")
)

// Entry is one movie row, index-aligned with its embedding vector.
type Entry struct {
	Title     string  `json:"title"`
	Rating    float64 `json:"rating"`
	VoteCount int     `json:"vote_count"`
	Overview  string  `json:"overview"`
	Genres    string  `json:"genres"`
}

// artifact is the on-disk bundle layout. The three collections must be
// index-aligned; titles is redundant with movies[i].Title but kept as a flat
// list for resolver throughput.
type artifact struct {
	Movies     []Entry     `json:"movies"`
	Embeddings [][]float64 `json:"embeddings"`
	Titles     []string    `json:"titles"`
}

// Store owns the loaded artifact. Loading is idempotent and safe under
// concurrent first access: the Unloaded -> Loaded transition happens at most
// once, and every caller of Load observes the same cached outcome.
type Store struct {
	path string

	once   sync.Once
	loaded atomic.Bool
	err    error

	entries    []Entry
	embeddings [][]float64
	titles     []string
	dimension  int
	maxVotes   int
}

// NewStore creates a store for the artifact at path. No I/O happens until
// Load is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and validates the artifact. The first call performs the read;
// subsequent calls are no-ops returning the cached result, including a cached
// failure. A failed load is not retried.
func (s *Store) Load() error {
	s.once.Do(func() {
		start := time.Now()
		s.err = s.load()
		if s.err != nil {
			logging.Error().Err(s.err).Str("path", s.path).Msg("Artifact load failed")
			return
		}
		s.loaded.Store(true)
		metrics.RecordArtifactLoad(len(s.entries), time.Since(start))
		logging.Info().
			Str("path", s.path).
			Int("movies", len(s.entries)).
			Int("dimension", s.dimension).
			Dur("duration", time.Since(start)).
			Msg("Artifact loaded")
	})
	return s.err
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, s.path)
		}
		return fmt.Errorf("reading artifact %s: %w", s.path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: decode failed: %v", ErrArtifactCorrupt, err)
	}

	// All three collections are required, even when empty.
	if a.Movies == nil || a.Embeddings == nil || a.Titles == nil {
		return fmt.Errorf("%w: missing required collection (movies/embeddings/titles)", ErrArtifactCorrupt)
	}

	// Positional correspondence is the sole join key; the lengths must agree.
	if len(a.Movies) != len(a.Embeddings) || len(a.Movies) != len(a.Titles) {
		return fmt.Errorf("%w: length mismatch (movies=%d embeddings=%d titles=%d)",
			ErrArtifactCorrupt, len(a.Movies), len(a.Embeddings), len(a.Titles))
	}

	// Embedding dimension is fixed at load time and uniform across rows.
	dimension := 0
	if len(a.Embeddings) > 0 {
		dimension = len(a.Embeddings[0])
	}
	for i, vec := range a.Embeddings {
		if len(vec) != dimension {
			return fmt.Errorf("%w: embedding %d has dimension %d, want %d",
				ErrArtifactCorrupt, i, len(vec), dimension)
		}
	}

	maxVotes := 0
	for _, m := range a.Movies {
		if m.VoteCount > maxVotes {
			maxVotes = m.VoteCount
		}
	}

	s.entries = a.Movies
	s.embeddings = a.Embeddings
	s.titles = a.Titles
	s.dimension = dimension
	s.maxVotes = maxVotes
	return nil
}

// Loaded reports whether the artifact has been loaded successfully. It is
// side-effect free and safe to call at any time, including during a
// concurrent Load.
func (s *Store) Loaded() bool {
	return s.loaded.Load()
}

// Len returns the number of catalog rows, 0 before a successful load.
func (s *Store) Len() int {
	if !s.Loaded() {
		return 0
	}
	return len(s.entries)
}

// Entry returns the catalog row at index i. The index must be in range.
func (s *Store) Entry(i int) Entry {
	return s.entries[i]
}

// Entries returns the full catalog. Callers must not mutate the result.
func (s *Store) Entries() []Entry {
	return s.entries
}

// Embedding returns the embedding vector at index i. Callers must not mutate
// the result.
func (s *Store) Embedding(i int) []float64 {
	return s.embeddings[i]
}

// Titles returns the flat title list, index-aligned with Entries.
func (s *Store) Titles() []string {
	return s.titles
}

// Dimension returns the embedding dimension fixed at load time.
func (s *Store) Dimension() int {
	return s.dimension
}

// MaxVoteCount returns the largest vote count across the catalog, used to
// normalize the popularity term of the quality score.
func (s *Store) MaxVoteCount() int {
	return s.maxVotes
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package models

// RecommendRequest is the POST /recommendations body. Optional fields use
// pointers so that an absent field and a zero value are distinguishable;
// absent fields take server-side defaults.
type RecommendRequest struct {
	// Title is the free-text movie title to anchor recommendations on.
	Title string `json:"title" validate:"required,min=1,max=200"`

	// TopN caps the number of recommendations returned. Default: 10.
	TopN *int `json:"top_n,omitempty" validate:"omitempty,gte=1,lte=50"`

	// MinVotes filters out movies with fewer votes. Default: 50.
	MinVotes *int `json:"min_votes,omitempty" validate:"omitempty,gte=0"`

	// MinRating filters out movies rated below this value. Default: 6.0.
	MinRating *float64 `json:"min_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Request defaults applied when optional RecommendRequest fields are absent.
const (
	DefaultTopN      = 10
	DefaultMinVotes  = 50
	DefaultMinRating = 6.0
)

// Search parameter bounds for GET /search.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 20
	MinQueryLength     = 2
	MaxQueryLength     = 200
)

// SearchResponse is the GET /search payload.
type SearchResponse struct {
	Query        string      `json:"query"`
	TotalResults int         `json:"total_results"`
	Results      interface{} `json:"results"`
}

// HealthStatus is the GET /health payload.
type HealthStatus struct {
	Status         string `json:"status"` // "healthy" or "unhealthy"
	ArtifactLoaded bool   `json:"artifact_loaded"`
	TotalMovies    int    `json:"total_movies"`
}

// ServiceInfo is the GET / payload describing the running service.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

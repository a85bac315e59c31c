// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package models defines the wire types of the HTTP API: the response
// envelope every endpoint uses and the request/response payloads.
package models

import "time"

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response bookkeeping.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached"`
}

// APIError is the structured error payload inside an error envelope.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes returned by the API.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// NewSuccessResponse creates a success envelope around data.
func NewSuccessResponse(data interface{}, queryTime time.Duration) *APIResponse {
	return &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: &Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}
}

// NewErrorResponse creates an error envelope.
func NewErrorResponse(code, message string, details interface{}) *APIResponse {
	return &APIResponse{
		Status: "error",
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: &Metadata{
			Timestamp: time.Now().UTC(),
		},
	}
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package api implements the HTTP surface of the service: routing,
// middleware, and request handlers.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/models"
	"github.com/reelrank/reelrank/internal/validation"
)

// respondJSON writes v as a JSON response with the given status code. An ETag
// derived from the body is attached so clients can revalidate cheaply.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("Response marshaling failed")
		http.Error(w, `{"status":"error","error":{"code":"INTERNAL_ERROR","message":"response encoding failed"}}`,
			http.StatusInternalServerError)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Str("path", r.URL.Path).Msg("Response write failed")
	}
}

// respondError writes a structured error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	respondJSON(w, r, status, models.NewErrorResponse(code, message, details))
}

// decodeAndValidate decodes the request body into v and validates it. On
// failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
			"Invalid JSON request body", err.Error())
		return false
	}

	if err := validation.ValidateStruct(v); err != nil {
		if reqErr, ok := err.(*validation.RequestValidationError); ok {
			apiErr := reqErr.ToAPIError()
			respondJSON(w, r, http.StatusBadRequest, &models.APIResponse{
				Status: "error",
				Error:  apiErr,
			})
			return false
		}
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"Request validation failed", err.Error())
		return false
	}
	return true
}

// queryIntParam parses an integer query parameter, returning def when absent
// and an error when malformed.
func queryIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// ReelRank - Content-Based Movie Recommendation Service
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package validation wraps go-playground/validator behind a singleton with
// API-friendly error translation.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/reelrank/reelrank/internal/models"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// RequestValidationError aggregates all failures for one request payload.
type RequestValidationError struct {
	Errors []ValidationError `json:"errors"`
}

func (e *RequestValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError converts the validation failures to a structured API error.
func (e *RequestValidationError) ToAPIError() *models.APIError {
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: "Request validation failed",
		Details: e.Errors,
	}
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s and returns a *RequestValidationError describing
// every failed field, or nil when the struct is valid.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	result := &RequestValidationError{
		Errors: make([]ValidationError, 0, len(validationErrors)),
	}
	for _, fe := range validationErrors {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: translateError(fe),
		})
	}
	return result
}

// translateError produces a human-readable message for a field error.
func translateError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
	}
}

// Package models defines the API request and response bodies.
package models

import (
	"encoding/json"
	"net/http"
)

// Stable error codes returned in APIError bodies.
const (
	CodeMissingSegments  = "MISSING_S_QUERY_PARAM"
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeInternalError    = "INTERNAL_SERVER_ERROR"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// APIError is the JSON error body for all non-2xx responses:
// {"error_code": ..., "message": ..., "details": {...}}.
type APIError struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`

	// Status is the HTTP status code, not part of the body.
	Status int `json:"-"`
}

func (e *APIError) Error() string {
	return e.ErrorCode + ": " + e.Message
}

// Write renders the error as JSON with its status code.
func (e *APIError) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// NewBadRequest creates a 400 error with a stable code.
func NewBadRequest(code, message string, details map[string]any) *APIError {
	return &APIError{
		ErrorCode: code,
		Message:   message,
		Details:   details,
		Status:    http.StatusBadRequest,
	}
}

// NewInternalError creates the generic 500 error body. Internals are not
// leaked to the client; the request ID lets operators find the dump.
func NewInternalError(requestID string) *APIError {
	var details map[string]any
	if requestID != "" {
		details = map[string]any{"request_id": requestID}
	}
	return &APIError{
		ErrorCode: CodeInternalError,
		Message:   "An unexpected internal server error occurred.",
		Details:   details,
		Status:    http.StatusInternalServerError,
	}
}

// NewTooManyRequests creates the 429 error body.
func NewTooManyRequests() *APIError {
	return &APIError{
		ErrorCode: CodeRateLimited,
		Message:   "Rate limit exceeded. Please try again later.",
		Status:    http.StatusTooManyRequests,
	}
}

// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/weatherlamp/weatherlamp/internal/api/middleware"
	"github.com/weatherlamp/weatherlamp/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RawJSON writes pre-encoded JSON bytes. Used by the formats that control
// their own encoding, like the compact WLED payload.
func RawJSON(w http.ResponseWriter, r *http.Request, body []byte) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HTML writes an HTML response.
func HTML(w http.ResponseWriter, r *http.Request, body []byte) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Binary writes raw bytes as an octet stream.
func Binary(w http.ResponseWriter, r *http.Request, body []byte) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Error writes an APIError body with its status code.
func Error(w http.ResponseWriter, r *http.Request, apiErr *models.APIError) {
	setRequestID(w, r)
	apiErr.Write(w)
}

// InternalError writes the generic 500 body.
func InternalError(w http.ResponseWriter, r *http.Request) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context())))
}

func setRequestID(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
}

package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/weatherlamp/weatherlamp/internal/api/middleware"
	"github.com/weatherlamp/weatherlamp/internal/api/models"
	"github.com/weatherlamp/weatherlamp/internal/api/response"
)

// requestWithContext creates an HTTP request that has been processed by the RequestID middleware
// to populate the context with a request ID.
func requestWithContext(t *testing.T, method, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()

	// Process through RequestID middleware to set up context
	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(rec, req)

	// Reset the recorder for actual test use
	rec = httptest.NewRecorder()

	return processedReq, rec
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	requestID := rec.Header().Get("X-Request-Id")
	if requestID == "" {
		t.Error("expected X-Request-Id header to be set")
	}
	if len(requestID) < 10 {
		t.Errorf("expected request ID to be a valid ID, got %q", requestID)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", contentType)
	}
}

func TestJSON_WithoutRequestID(t *testing.T) {
	// Create request without middleware (no request ID in context)
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	// Should not have X-Request-Id if context doesn't have it
	requestID := rec.Header().Get("X-Request-Id")
	if requestID != "" {
		t.Errorf("expected no X-Request-Id header when not in context, got %q", requestID)
	}
}

func TestRawJSON_PreservesBodyBytes(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	body := []byte(`[[{"hex":"000000"}]]`)
	response.RawJSON(rec, req, body)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != string(body) {
		t.Errorf("body was re-encoded: got %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
}

func TestHTML_SetsContentType(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.HTML(rec, req, []byte("<html></html>"))

	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("expected HTML content type, got %q", ct)
	}
}

func TestBinary_SetsOctetStream(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.Binary(rec, req, []byte{255, 0, 128})

	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("expected octet-stream content type, got %q", ct)
	}
	if rec.Body.Len() != 3 {
		t.Errorf("expected 3 body bytes, got %d", rec.Body.Len())
	}
}

func TestError_WritesAPIErrorBody(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.Error(rec, req, models.NewBadRequest(
		"INVALID_SEGMENT_FORMAT",
		"Invalid segment format. Expected 6 comma-separated values.",
		map[string]any{"segment": "1,dark"},
	))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var apiErr models.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if apiErr.ErrorCode != "INVALID_SEGMENT_FORMAT" {
		t.Errorf("expected error code INVALID_SEGMENT_FORMAT, got %q", apiErr.ErrorCode)
	}
	if apiErr.Details["segment"] != "1,dark" {
		t.Errorf("expected segment detail, got %v", apiErr.Details)
	}
}

func TestInternalError_DoesNotLeakDetails(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.InternalError(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}

	var apiErr models.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if apiErr.ErrorCode != models.CodeInternalError {
		t.Errorf("expected code %s, got %q", models.CodeInternalError, apiErr.ErrorCode)
	}
	if apiErr.Details["request_id"] == "" {
		t.Error("expected request_id detail for correlation")
	}
}

package middleware

import (
	"net/http"
	"os"

	"github.com/weatherlamp/weatherlamp/internal/api/models"
)

// SecurityHeaders adds standard security headers to all HTTP responses.
// The CSP allows inline style/script because the service serves its own
// small configuration UI page.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Disable browser features
		w.Header().Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")

		next.ServeHTTP(w, r)
	})
}

// RequireTLS middleware enforces HTTPS connections.
// It checks the X-Forwarded-Proto header (set by reverse proxies).
// Enable with REQUIRE_TLS=true environment variable.
func RequireTLS(next http.Handler) http.Handler {
	requireTLS := os.Getenv("REQUIRE_TLS") == "true"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requireTLS {
			proto := r.Header.Get("X-Forwarded-Proto")
			if proto != "" && proto != "https" {
				apiErr := &models.APIError{
					ErrorCode: "TLS_REQUIRED",
					Message:   "This endpoint requires HTTPS",
					Status:    http.StatusForbidden,
				}
				apiErr.Write(w)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

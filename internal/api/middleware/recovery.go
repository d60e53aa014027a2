package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/api/models"
	"github.com/weatherlamp/weatherlamp/internal/errordump"
)

// Recovery returns a middleware that recovers from panics, dumps the
// failure to disk and returns a generic 500 error. The dumper may be nil.
func Recovery(log zerolog.Logger, dumper *errordump.Dumper) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID := GetRequestID(r.Context())

					log.Error().
						Str("request_id", requestID).
						Interface("error", err).
						Str("stack", string(debug.Stack())).
						Msg("panic recovered")

					if dumper != nil {
						dumper.Dump(err, errordump.RequestInfo{
							URL:        r.URL.String(),
							Method:     r.Method,
							ClientHost: r.RemoteAddr,
						})
					}

					models.NewInternalError(requestID).Write(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

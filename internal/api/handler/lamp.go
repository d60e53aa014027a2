// Package handler provides HTTP handlers for the WeatherLamp API.
package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/api/middleware"
	"github.com/weatherlamp/weatherlamp/internal/api/models"
	"github.com/weatherlamp/weatherlamp/internal/api/response"
	"github.com/weatherlamp/weatherlamp/internal/lamp"
	"github.com/weatherlamp/weatherlamp/internal/segment"
)

// DefaultColormap is used when the cm parameter is absent.
const DefaultColormap = "plain"

// LampHandler serves the lamp endpoint.
type LampHandler struct {
	service *lamp.Service
	logger  zerolog.Logger
}

// NewLampHandler creates a LampHandler.
func NewLampHandler(service *lamp.Service, logger zerolog.Logger) *LampHandler {
	return &LampHandler{service: service, logger: logger}
}

// Render handles the lamp endpoint: it parses the segment list, renders
// every segment and encodes the result in the requested format. Upstream
// trouble is conveyed in the content (error pattern, stale indicator),
// not the HTTP status; only malformed requests get a 4xx.
func (h *LampHandler) Render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = FormatWLED
	}
	if !ValidFormat(format) {
		response.Error(w, r, models.NewBadRequest(
			models.CodeInvalidFormat,
			"Unsupported format: "+format,
			nil,
		))
		return
	}

	cm := q.Get("cm")
	if cm == "" {
		cm = DefaultColormap
	}
	_, dev := q["dev"]
	_, preview := q["cm_preview"]

	specs, err := segment.ParseList(q.Get("s"))
	if err != nil {
		var parseErr *segment.ParseError
		if errors.As(err, &parseErr) {
			h.logger.Warn().
				Str("request_id", middleware.GetRequestID(r.Context())).
				Str("error_code", parseErr.Code).
				Msg("segment validation failed")
			response.Error(w, r, models.NewBadRequest(parseErr.Code, parseErr.Message, parseErr.Details))
			return
		}
		response.InternalError(w, r)
		return
	}

	h.logger.Info().
		Str("format", format).
		Str("colormap", cm).
		Bool("dev", dev).
		Bool("cm_preview", preview).
		Int("segments", len(specs)).
		Msg("request validated")

	results, err := h.service.Render(r.Context(), specs, lamp.RenderOptions{
		Colormap: cm,
		Dev:      dev,
		Preview:  preview,
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("segment rendering failed")
		response.InternalError(w, r)
		return
	}

	switch format {
	case FormatHTML:
		response.HTML(w, r, encodeHTML(results))
	case FormatJSON:
		body, err := encodeJSON(results)
		if err != nil {
			response.InternalError(w, r)
			return
		}
		response.RawJSON(w, r, body)
	case FormatBinary:
		response.Binary(w, r, encodeBinary(results))
	default:
		body, err := encodeWLED(results)
		if err != nil {
			response.InternalError(w, r)
			return
		}
		response.RawJSON(w, r, body)
	}
}

// Package api provides the HTTP API for WeatherLamp.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/api/handler"
	"github.com/weatherlamp/weatherlamp/internal/api/middleware"
	"github.com/weatherlamp/weatherlamp/internal/errordump"
	"github.com/weatherlamp/weatherlamp/internal/lamp"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	// EndpointPath is the mount point of the lamp endpoint, "/v2" by
	// default. Display firmware has the path baked in, so it is
	// configurable rather than versioned in code.
	EndpointPath string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	LampService  *lamp.Service
	ErrorDumper  *errordump.Dumper
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "weatherlamp-api"
	}
	path := cfg.EndpointPath
	if path == "" {
		path = "/v2"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))                    // Structured logging
	r.Use(middleware.Recovery(cfg.Logger, cfg.ErrorDumper)) // Panic recovery with error dumps
	r.Use(chimiddleware.RealIP)                             // Real IP extraction
	r.Use(middleware.SecurityHeaders)                       // Security headers
	r.Use(middleware.RequireTLS)                            // TLS enforcement (REQUIRE_TLS=true)

	lampHandler := handler.NewLampHandler(cfg.LampService, cfg.Logger)
	opsHandler := handler.NewOpsHandler()
	uiHandler := handler.NewUIHandler()

	lampRateLimit := middleware.RateLimitByIP(middleware.LampRateLimit)

	r.Route(path, func(r chi.Router) {
		// Displays poll with GET or HEAD; POST is allowed for clients
		// that cannot express long query strings otherwise.
		r.With(lampRateLimit).Get("/", lampHandler.Render)
		r.With(lampRateLimit).Post("/", lampHandler.Render)
		r.With(lampRateLimit).Head("/", lampHandler.Render)

		r.Get("/ui", uiHandler.ServePage)
		r.Get("/health", opsHandler.HealthCheck)
	})

	return r
}

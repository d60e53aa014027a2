// Package main provides the entrypoint for the WeatherLamp API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/api"
	"github.com/weatherlamp/weatherlamp/internal/api/middleware"
	"github.com/weatherlamp/weatherlamp/internal/colormap"
	"github.com/weatherlamp/weatherlamp/internal/config"
	"github.com/weatherlamp/weatherlamp/internal/errordump"
	"github.com/weatherlamp/weatherlamp/internal/forecast"
	"github.com/weatherlamp/weatherlamp/internal/lamp"
	"github.com/weatherlamp/weatherlamp/internal/metno"
	"github.com/weatherlamp/weatherlamp/internal/storage/cache"
	"github.com/weatherlamp/weatherlamp/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "weatherlamp-api"

	cfg := config.FromEnv()

	// Setup structured logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting WeatherLamp API")

	// Create data directories up front so the request path stays free of
	// blocking filesystem setup.
	for _, dir := range []string{cfg.CacheDir(), cfg.HistoryDir(), cfg.ErrorDumpDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := middleware.NewProviderMetrics(metno.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Load colormaps
	colormaps := colormap.LoadDir(cfg.ColormapDir, log)
	log.Info().Strs("colormaps", colormaps.Names()).Msg("colormaps loaded")

	// Wire the forecast pipeline: resilient upstream client, file cache,
	// cache-first fetcher, segment renderer.
	client := metno.NewClient(metno.ClientConfig{Logger: log})
	store := cache.NewStore(cache.StoreConfig{
		Dir:         cfg.CacheDir(),
		HistoryDir:  cfg.HistoryDir(),
		SaveHistory: cfg.SaveHistory,
		Logger:      log,
	})
	fetcher := forecast.NewFetcher(forecast.FetcherConfig{
		Client: client,
		Store:  store,
		Logger: log,
		Stats:  providerMetrics,
	})
	lampService := lamp.NewService(fetcher, colormaps, log)
	log.Info().Msg("lamp service initialized")

	dumper := errordump.New(cfg.ErrorDumpDir(), log)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		EndpointPath: cfg.EndpointPath,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		LampService:  lampService,
		ErrorDumper:  dumper,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("endpoint_path", cfg.EndpointPath).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// Package config reads the service configuration from the environment.
package config

import (
	"os"
	"path/filepath"
)

// Config holds the service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DataDir is the root for cache, history and error dump directories.
	DataDir string

	// EndpointPath is the mount point of the lamp endpoint.
	EndpointPath string

	// SaveHistory enables archiving of every upstream response.
	SaveHistory bool

	// ColormapDir holds the colormap JSON files.
	ColormapDir string

	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string

	// Debug enables verbose behavior (log level floor, error details).
	Debug bool

	// OTELEnabled turns on trace/metric export.
	OTELEnabled bool

	// OTLPEndpoint is the OTLP gRPC collector address.
	OTLPEndpoint string

	// Environment names the deployment environment for telemetry.
	Environment string
}

// FromEnv creates a Config from environment variables.
func FromEnv() Config {
	dataDir := getEnvOrDefault("DATA_DIR", "data")
	return Config{
		Port:         getEnvOrDefault("APP_PORT", "8080"),
		DataDir:      dataDir,
		EndpointPath: getEnvOrDefault("ENDPOINT_PATH", "/v2"),
		SaveHistory:  os.Getenv("SAVE_HISTORY") == "1",
		ColormapDir:  getEnvOrDefault("COLORMAP_DIR", "colormaps"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:        os.Getenv("DEBUG") != "",
		OTELEnabled:  os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
	}
}

// CacheDir is where upstream responses are cached.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// HistoryDir is where archived responses go when SaveHistory is on.
func (c Config) HistoryDir() string {
	return filepath.Join(c.DataDir, "history")
}

// ErrorDumpDir is where failure reports are written. Overridable
// separately because it is the directory operators pull from devices.
func (c Config) ErrorDumpDir() string {
	if dir := os.Getenv("ERROR_DUMP_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(c.DataDir, "error_dumps")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

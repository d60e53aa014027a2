// Package cache provides the file-backed upstream response cache.
//
// Entries are keyed by (cast type, lat, lon) and stored as raw response
// bytes. The file mtime is the freshness clock. Stale entries are never
// deleted; they are the fallback when the upstream is unreachable.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/metno"
)

// DefaultTTL is the freshness window for cache entries.
const DefaultTTL = 2 * time.Minute

// StoreConfig holds configuration for the cache store.
type StoreConfig struct {
	// Dir is the cache directory. Must exist before the first write
	// (created at service start, not per call).
	Dir string

	// HistoryDir enables the debug history archive when SaveHistory is
	// set. Defaults to a sibling "history" directory of Dir.
	HistoryDir string

	// SaveHistory archives a copy of every successful API write under
	// HistoryDir/YYYY-MM-DD/. Debug sink only; nothing reads it back.
	SaveHistory bool

	// TTL is the freshness window. Default: DefaultTTL.
	TTL time.Duration

	// Logger for store operations.
	Logger zerolog.Logger
}

// Store is a file-backed cache of raw upstream responses.
type Store struct {
	dir         string
	historyDir  string
	saveHistory bool
	ttl         time.Duration
	logger      zerolog.Logger
}

// Entry is the result of a cache lookup.
type Entry struct {
	// Present reports whether a cache file exists at all.
	Present bool

	// Age is how long ago the entry was written. Zero when not present.
	Age time.Duration

	// Data holds the cached bytes when the entry is fresh, nil otherwise.
	Data []byte
}

// NewStore creates a cache store.
func NewStore(cfg StoreConfig) *Store {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	historyDir := cfg.HistoryDir
	if historyDir == "" {
		historyDir = filepath.Join(filepath.Dir(cfg.Dir), "history")
	}
	return &Store{
		dir:         cfg.Dir,
		historyDir:  historyDir,
		saveHistory: cfg.SaveHistory,
		ttl:         ttl,
		logger:      cfg.Logger,
	}
}

// Path returns the cache file path for a key. Lat and lon are rendered as
// plain decimal strings (they were rounded to 3 decimals at ingress).
func (s *Store) Path(cast metno.CastType, lat, lon float64) string {
	name := fmt.Sprintf("yr-cache-%s.%s_%s.json", cast, formatCoord(lat), formatCoord(lon))
	return filepath.Join(s.dir, name)
}

// Lookup checks the cache for a key. Data is populated only when the entry
// is within the TTL; a stale entry reports Present with its age so the
// caller can decide whether to fall back to it later.
func (s *Store) Lookup(cast metno.CastType, lat, lon float64) Entry {
	path := s.Path(cast, lat, lon)

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}
	}

	age := time.Since(info.ModTime())
	if age > s.ttl {
		s.logger.Debug().
			Str("path", path).
			Dur("age", age).
			Msg("cache entry is stale")
		return Entry{Present: true, Age: age}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to read cache file")
		return Entry{Present: true, Age: age}
	}

	s.logger.Debug().
		Str("path", path).
		Dur("age", age).
		Msg("using fresh cached data")
	return Entry{Present: true, Age: age, Data: data}
}

// Write replaces the cache entry for a key. The write goes through a temp
// file and rename so a concurrent reader never sees a partial file. When
// history archiving is enabled, a dated copy is written alongside.
func (s *Store) Write(cast metno.CastType, lat, lon float64, data []byte) error {
	path := s.Path(cast, lat, lon)

	tmp, err := os.CreateTemp(s.dir, ".yr-cache-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming cache file: %w", err)
	}

	if s.saveHistory {
		if err := s.writeHistory(cast, lat, lon, data); err != nil {
			// History is a debug sink; never fail the write for it.
			s.logger.Warn().Err(err).Msg("failed to write history file")
		}
	}
	return nil
}

// ReadStale returns the raw bytes of an entry regardless of age, or nil
// when no usable entry exists. Used only as an upstream-failure fallback;
// the body is re-validated against the expected response shape.
func (s *Store) ReadStale(cast metno.CastType, lat, lon float64) []byte {
	path := s.Path(cast, lat, lon)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to read stale cache")
		}
		return nil
	}
	if _, err := metno.ParseDocument(data); err != nil {
		s.logger.Warn().Str("path", path).Msg("stale cache file has invalid structure")
		return nil
	}
	return data
}

func (s *Store) writeHistory(cast metno.CastType, lat, lon float64, data []byte) error {
	now := time.Now().UTC()
	dir := filepath.Join(s.historyDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("yr-%s-%s_%s-%s.json",
		cast, formatCoord(lat), formatCoord(lon), now.Format("20060102T150405Z"))
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

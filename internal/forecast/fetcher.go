package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/weatherlamp/weatherlamp/internal/metno"
	"github.com/weatherlamp/weatherlamp/internal/storage/cache"
)

// ErrInvalidCoordinates is returned for coordinates outside the valid
// lat/lon range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Upstream is the client interface the fetcher calls on cache misses.
type Upstream interface {
	Fetch(ctx context.Context, cast metno.CastType, lat, lon float64) ([]byte, error)
}

// Stats records cache and upstream call metrics. Satisfied by
// *middleware.ProviderMetrics.
type Stats interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// FetcherConfig holds configuration for the fetcher.
type FetcherConfig struct {
	// Client is the upstream API client.
	Client Upstream

	// Store is the file-backed response cache.
	Store *cache.Store

	// Logger for fetch operations.
	Logger zerolog.Logger

	// Stats is optional; nil disables metrics.
	Stats Stats

	// Now overrides the clock (used by tests).
	Now func() time.Time
}

// Fetcher implements the cache-first fetch strategy with stale fallback
// and composes per-segment forecasts from the two upstream products.
type Fetcher struct {
	client Upstream
	store  *cache.Store
	logger zerolog.Logger
	stats  Stats
	now    func() time.Time
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		client: cfg.Client,
		store:  cfg.Store,
		logger: cfg.Logger,
		stats:  cfg.Stats,
		now:    now,
	}
}

// GetLocationForecast fetches the hourly forecast for a coordinate.
func (f *Fetcher) GetLocationForecast(ctx context.Context, lat, lon float64, dev bool) (FetchResult, error) {
	if lat <= -90 || lat >= 90 || lon <= -180 || lon >= 180 {
		return FetchResult{}, fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, lat, lon)
	}
	return f.get(ctx, metno.CastLocationForecast, lat, lon, dev)
}

// GetNowcast fetches the radar nowcast for a coordinate. Coordinates
// outside the radar coverage polygon resolve to SourceNone without a
// network call.
func (f *Fetcher) GetNowcast(ctx context.Context, lat, lon float64, dev bool) (FetchResult, error) {
	if !metno.InNowcastCoverage(lat, lon) {
		return FetchResult{Source: SourceNone}, nil
	}
	return f.get(ctx, metno.CastNowcast, lat, lon, dev)
}

// get runs the cache-first strategy: fresh cache wins, then a live API
// call, then stale cache, then nothing. Dev mode short-circuits to the
// embedded sample data and never touches the cache directory.
func (f *Fetcher) get(ctx context.Context, cast metno.CastType, lat, lon float64, dev bool) (FetchResult, error) {
	if dev {
		doc, err := metno.SampleDocument(cast, f.now())
		if err != nil {
			return FetchResult{}, fmt.Errorf("loading dev sample: %w", err)
		}
		return FetchResult{Doc: doc, HasAge: true, Source: SourceFresh}, nil
	}

	entry := f.store.Lookup(cast, lat, lon)
	if entry.Data != nil {
		doc, err := metno.ParseDocument(entry.Data)
		if err == nil {
			if f.stats != nil {
				f.stats.RecordCacheHit(metno.ProviderName, string(cast))
			}
			return FetchResult{Doc: doc, CacheAge: entry.Age, HasAge: true, Source: SourceFresh}, nil
		}
		f.logger.Warn().
			Str("cast", string(cast)).
			Msg("fresh cache entry failed validation, refreshing from API")
	}
	if f.stats != nil {
		f.stats.RecordCacheMiss(metno.ProviderName, string(cast))
	}

	fetchStart := f.now()
	body, err := f.client.Fetch(ctx, cast, lat, lon)
	if f.stats != nil {
		f.stats.RecordRequest(metno.ProviderName, string(cast), time.Since(fetchStart), err)
	}
	if err != nil {
		f.logger.Warn().Err(err).
			Str("cast", string(cast)).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("upstream fetch failed")
		return f.staleOrNone(cast, lat, lon, entry), nil
	}

	doc, err := metno.ParseDocument(body)
	if err != nil {
		f.logger.Error().
			Str("cast", string(cast)).
			Msg("upstream response failed validation")
		return f.staleOrNone(cast, lat, lon, entry), nil
	}

	if err := f.store.Write(cast, lat, lon, body); err != nil {
		return FetchResult{}, fmt.Errorf("caching %s response: %w", cast, err)
	}
	return FetchResult{Doc: doc, HasAge: true, Source: SourceAPI}, nil
}

// staleOrNone falls back to an expired cache entry if a valid one exists.
func (f *Fetcher) staleOrNone(cast metno.CastType, lat, lon float64, entry cache.Entry) FetchResult {
	data := f.store.ReadStale(cast, lat, lon)
	if data == nil {
		f.logger.Error().
			Str("cast", string(cast)).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("no data available: upstream failed and no stale cache")
		return FetchResult{Source: SourceNone}
	}

	doc, err := metno.ParseDocument(data)
	if err != nil {
		return FetchResult{Source: SourceNone}
	}

	f.logger.Warn().
		Str("cast", string(cast)).
		Dur("age", entry.Age).
		Msg("serving stale cache after upstream failure")
	return FetchResult{Doc: doc, CacheAge: entry.Age, HasAge: entry.Present, Source: SourceStale}
}

// CreateForecast fetches both products concurrently and composes the slot
// grid plus freshness metadata for one segment.
func (f *Fetcher) CreateForecast(ctx context.Context, lat, lon float64, slotMinutes, slotCount int, dev bool) (Result, error) {
	var nowcast, locfore FetchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nowcast, err = f.GetNowcast(gctx, lat, lon, dev)
		return err
	})
	g.Go(func() error {
		var err error
		locfore, err = f.GetLocationForecast(gctx, lat, lon, dev)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{
		HasData: locfore.Source != SourceNone,
	}
	for _, fr := range []FetchResult{nowcast, locfore} {
		if fr.HasAge && (!result.HasCacheAge || fr.CacheAge > result.MaxCacheAge) {
			result.MaxCacheAge = fr.CacheAge
			result.HasCacheAge = true
		}
	}

	switch {
	case !result.HasData:
		result.Status = StatusError
	case result.HasCacheAge && result.MaxCacheAge > ErrorThreshold:
		result.Status = StatusError
	case result.HasCacheAge && result.MaxCacheAge > StaleWarningThreshold:
		result.Status = StatusStale
	default:
		result.Status = StatusFresh
	}

	result.Grid = Combine(nowcast.Doc, locfore.Doc, slotMinutes, slotCount, f.now(), f.logger)

	return result, nil
}

package forecast_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherlamp/weatherlamp/internal/forecast"
	"github.com/weatherlamp/weatherlamp/internal/metno"
	"github.com/weatherlamp/weatherlamp/internal/storage/cache"
)

// In-coverage and out-of-coverage test coordinates.
const (
	helsinkiLat = 60.17
	helsinkiLon = 24.94
	nycLat      = 40.713
	nycLon      = -74.006
)

// stubUpstream serves canned bodies per product and counts calls.
type stubUpstream struct {
	bodies map[metno.CastType][]byte
	err    error
	calls  atomic.Int64
}

func (s *stubUpstream) Fetch(_ context.Context, cast metno.CastType, _, _ float64) ([]byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.bodies[cast], nil
}

// forecastBody builds a minimal valid locationforecast response.
func forecastBody(base time.Time, symbol string) []byte {
	entries := ""
	for i := 0; i < 4; i++ {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`{
			"time": %q,
			"data": {
				"instant": {"details": {"wind_speed": 3.0}},
				"next_1_hours": {
					"summary": {"symbol_code": %q},
					"details": {"precipitation_amount": 0.0, "probability_of_precipitation": 5.0}
				}
			}
		}`, base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), symbol)
	}
	return []byte(`{"properties": {"timeseries": [` + entries + `]}}`)
}

// nowcastBody builds a minimal valid nowcast response.
func nowcastBody(base time.Time, rate float64) []byte {
	entries := ""
	for i := 0; i < 12; i++ {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`{
			"time": %q,
			"data": {"instant": {"details": {"precipitation_rate": %g}}}
		}`, base.Add(time.Duration(i)*5*time.Minute).Format(time.RFC3339), rate)
	}
	return []byte(`{"properties": {"timeseries": [` + entries + `]}}`)
}

func newTestFetcher(t *testing.T, upstream forecast.Upstream) (*forecast.Fetcher, *cache.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := cache.NewStore(cache.StoreConfig{Dir: dir, Logger: zerolog.Nop()})
	fetcher := forecast.NewFetcher(forecast.FetcherConfig{
		Client: upstream,
		Store:  store,
		Logger: zerolog.Nop(),
	})
	return fetcher, store, dir
}

func TestGetLocationForecast_CachesUpstreamResponse(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	upstream := &stubUpstream{bodies: map[metno.CastType][]byte{
		metno.CastLocationForecast: forecastBody(now, "clearsky_day"),
	}}
	fetcher, _, _ := newTestFetcher(t, upstream)

	res, err := fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceAPI, res.Source)
	require.NotNil(t, res.Doc)
	assert.Equal(t, int64(1), upstream.calls.Load())

	// Second call inside the TTL is served from cache.
	res, err = fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceFresh, res.Source)
	assert.True(t, res.HasAge)
	assert.Equal(t, int64(1), upstream.calls.Load())
}

func TestGetLocationForecast_StaleFallbackOnUpstreamFailure(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	upstream := &stubUpstream{bodies: map[metno.CastType][]byte{
		metno.CastLocationForecast: forecastBody(now, "cloudy"),
	}}
	fetcher, store, _ := newTestFetcher(t, upstream)

	// Seed the cache, then age it past the TTL and break the upstream.
	require.NoError(t, store.Write(metno.CastLocationForecast, helsinkiLat, helsinkiLon, forecastBody(now, "cloudy")))
	path := store.Path(metno.CastLocationForecast, helsinkiLat, helsinkiLon)
	old := time.Now().Add(-10 * time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))
	upstream.err = errors.New("connection refused")

	res, err := fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceStale, res.Source)
	assert.True(t, res.HasAge)
	assert.Greater(t, res.CacheAge, 9*time.Minute)
	require.NotNil(t, res.Doc)
}

func TestGetLocationForecast_NoDataWhenUpstreamDownAndCacheEmpty(t *testing.T) {
	upstream := &stubUpstream{err: errors.New("connection refused")}
	fetcher, _, _ := newTestFetcher(t, upstream)

	res, err := fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceNone, res.Source)
	assert.Nil(t, res.Doc)
}

func TestGetLocationForecast_InvalidBodyFallsBackToStale(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	upstream := &stubUpstream{bodies: map[metno.CastType][]byte{
		metno.CastLocationForecast: []byte(`{"unexpected": true}`),
	}}
	fetcher, store, _ := newTestFetcher(t, upstream)

	require.NoError(t, store.Write(metno.CastLocationForecast, helsinkiLat, helsinkiLon, forecastBody(now, "cloudy")))
	path := store.Path(metno.CastLocationForecast, helsinkiLat, helsinkiLon)
	old := time.Now().Add(-5 * time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))

	res, err := fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceStale, res.Source)
}

func TestGetLocationForecast_InvalidCoordinates(t *testing.T) {
	fetcher, _, _ := newTestFetcher(t, &stubUpstream{})

	_, err := fetcher.GetLocationForecast(context.Background(), 95, 24.94, false)
	assert.ErrorIs(t, err, forecast.ErrInvalidCoordinates)

	_, err = fetcher.GetLocationForecast(context.Background(), 60.17, 181, false)
	assert.ErrorIs(t, err, forecast.ErrInvalidCoordinates)
}

func TestGetNowcast_OutOfCoverageSkipsUpstream(t *testing.T) {
	upstream := &stubUpstream{}
	fetcher, _, _ := newTestFetcher(t, upstream)

	res, err := fetcher.GetNowcast(context.Background(), nycLat, nycLon, false)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceNone, res.Source)
	assert.Equal(t, int64(0), upstream.calls.Load())
}

func TestDevMode_UsesEmbeddedSamplesWithoutCache(t *testing.T) {
	upstream := &stubUpstream{}
	fetcher, _, dir := newTestFetcher(t, upstream)

	res, err := fetcher.GetLocationForecast(context.Background(), helsinkiLat, helsinkiLon, true)
	require.NoError(t, err)
	assert.Equal(t, forecast.SourceFresh, res.Source)
	require.NotNil(t, res.Doc)
	assert.Equal(t, int64(0), upstream.calls.Load())

	// Dev mode must not touch the cache directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateForecast_Fresh(t *testing.T) {
	now := time.Now().UTC()
	upstream := &stubUpstream{bodies: map[metno.CastType][]byte{
		metno.CastLocationForecast: forecastBody(now.Truncate(time.Hour), "clearsky_day"),
		metno.CastNowcast:          nowcastBody(now.Truncate(5*time.Minute), 0.0),
	}}
	fetcher, _, _ := newTestFetcher(t, upstream)

	res, err := fetcher.CreateForecast(context.Background(), helsinkiLat, helsinkiLon, 15, 8, false)
	require.NoError(t, err)
	assert.True(t, res.HasData)
	assert.Equal(t, forecast.StatusFresh, res.Status)
	assert.Len(t, res.Grid, 8)
	// Both products fetched concurrently.
	assert.Equal(t, int64(2), upstream.calls.Load())
}

func TestCreateForecast_ErrorWithoutForecastData(t *testing.T) {
	upstream := &stubUpstream{err: errors.New("connection refused")}
	fetcher, _, _ := newTestFetcher(t, upstream)

	// Out of nowcast coverage, upstream down, empty cache: nothing to show.
	res, err := fetcher.CreateForecast(context.Background(), nycLat, nycLon, 15, 8, false)
	require.NoError(t, err)
	assert.False(t, res.HasData)
	assert.Equal(t, forecast.StatusError, res.Status)
	assert.Len(t, res.Grid, 8)
}

func TestCreateForecast_StaleStatus(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	upstream := &stubUpstream{bodies: map[metno.CastType][]byte{
		metno.CastLocationForecast: forecastBody(now, "cloudy"),
	}}
	fetcher, store, _ := newTestFetcher(t, upstream)

	require.NoError(t, store.Write(metno.CastLocationForecast, nycLat, nycLon, forecastBody(now, "cloudy")))
	path := store.Path(metno.CastLocationForecast, nycLat, nycLon)
	old := time.Now().Add(-45 * time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))
	upstream.err = errors.New("connection refused")

	// Out-of-coverage coordinate keeps the nowcast leg quiet.
	res, err := fetcher.CreateForecast(context.Background(), nycLat, nycLon, 15, 8, false)
	require.NoError(t, err)
	assert.True(t, res.HasData)
	assert.Equal(t, forecast.StatusStale, res.Status)
	assert.Greater(t, res.MaxCacheAge, 30*time.Minute)
}

func TestCreateForecast_ErrorWhenDataTooOld(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Hour)
	upstream := &stubUpstream{}
	fetcher, store, _ := newTestFetcher(t, upstream)

	require.NoError(t, store.Write(metno.CastLocationForecast, nycLat, nycLon, forecastBody(now, "cloudy")))
	path := store.Path(metno.CastLocationForecast, nycLat, nycLon)
	old := time.Now().Add(-4 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	upstream.err = errors.New("connection refused")

	res, err := fetcher.CreateForecast(context.Background(), nycLat, nycLon, 15, 8, false)
	require.NoError(t, err)
	assert.True(t, res.HasData)
	assert.Equal(t, forecast.StatusError, res.Status)
}

// Package forecast implements the forecast composition engine: the
// cache-first upstream fetch, timeseries parsing, slot grid construction
// and the per-slot weather classification.
package forecast

import (
	"time"

	"github.com/weatherlamp/weatherlamp/internal/metno"
)

// Source identifies where fetched data came from.
type Source string

const (
	// SourceFresh means the data came from a cache entry within the TTL.
	SourceFresh Source = "cache_fresh"

	// SourceAPI means the data came from a live upstream call.
	SourceAPI Source = "api"

	// SourceStale means the upstream failed and an expired cache entry
	// was served instead.
	SourceStale Source = "cache_stale"

	// SourceNone means no data is available at all.
	SourceNone Source = "none"
)

// FetchResult is the outcome of a single cache-aware upstream fetch.
type FetchResult struct {
	// Doc is the parsed response, nil when Source is SourceNone.
	Doc *metno.Document

	// CacheAge is the age of the served cache entry. Zero for live API
	// data. Only meaningful when HasAge is true.
	CacheAge time.Duration

	// HasAge reports whether CacheAge is known.
	HasAge bool

	// Source identifies the origin of the data.
	Source Source
}

// DataStatus describes the freshness of a composed segment forecast.
type DataStatus string

const (
	StatusFresh DataStatus = "fresh"
	StatusStale DataStatus = "stale"
	StatusError DataStatus = "error"
)

// Freshness thresholds for the visual staleness indicators.
const (
	// StaleWarningThreshold marks data old enough to warrant the
	// stale-indicator LED.
	StaleWarningThreshold = 30 * time.Minute

	// ErrorThreshold marks data too old to display at all.
	ErrorThreshold = 3 * time.Hour
)

// Row is one slot's worth of combined nowcast and forecast data. Pointer
// fields are absent when no upstream value covered the slot.
type Row struct {
	// Time is the slot start, UTC.
	Time time.Time

	// PrecNow is the radar precipitation rate in mm/h.
	PrecNow *float64

	// PrecFore is the forecast precipitation amount in mm for the slot's
	// hour.
	PrecFore *float64

	// ProbOfPrec is the forecast probability of precipitation in percent.
	ProbOfPrec *float64

	// Symbol is the base weather symbol with any _day/_night suffix
	// stripped. Empty when unknown.
	Symbol string

	WindSpeed *float64
	WindGust  *float64
}

// Result is the per-segment aggregate of both fetches and the slot grid.
type Result struct {
	// Grid has exactly the requested slot count of rows, ascending by time.
	Grid []Row

	// MaxCacheAge is the worst-case staleness across the two sources.
	// Only meaningful when HasCacheAge is true.
	MaxCacheAge time.Duration
	HasCacheAge bool

	// HasData is false only when the forecast source is none; the
	// nowcast alone is never enough to light a segment.
	HasData bool

	// Status is derived from HasData and MaxCacheAge.
	Status DataStatus
}

// Bucket is a color-bucket key produced by the classifier.
type Bucket string

const (
	BucketClearSky      Bucket = "CLEARSKY"
	BucketPartlyCloudy  Bucket = "PARTLYCLOUDY"
	BucketCloudy        Bucket = "CLOUDY"
	BucketLightRainLT50 Bucket = "LIGHTRAIN_LT50"
	BucketLightRain     Bucket = "LIGHTRAIN"
	BucketRain          Bucket = "RAIN"
	BucketHeavyRain     Bucket = "HEAVYRAIN"
	BucketVeryHeavyRain Bucket = "VERYHEAVYRAIN"

	// BucketUnknown is the fail-soft marker for slots whose bucket could
	// not be determined.
	BucketUnknown Bucket = "UNKNOWN"
)

// Buckets is the closed set of colormap buckets in display order. Colormap
// previews stride through this order.
var Buckets = []Bucket{
	BucketClearSky,
	BucketPartlyCloudy,
	BucketCloudy,
	BucketLightRainLT50,
	BucketLightRain,
	BucketRain,
	BucketHeavyRain,
	BucketVeryHeavyRain,
}

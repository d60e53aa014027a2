// Package lamp turns parsed segment specs into per-LED slot lists: it
// orchestrates the concurrent forecast fetches and applies the colormap,
// reversal and the stale/error visual indicators.
package lamp

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/weatherlamp/weatherlamp/internal/colormap"
	"github.com/weatherlamp/weatherlamp/internal/forecast"
	"github.com/weatherlamp/weatherlamp/internal/segment"
)

// HotPink is the indicator color shared by the stale marker and the
// error pattern.
var HotPink = colormap.RGB{255, 0, 128}

// Synthetic wl_symbol markers for slots that do not carry weather data.
const (
	SymbolDark           = "dark"
	SymbolError          = "error"
	SymbolStaleIndicator = "stale_indicator"
	symbolPreviewPrefix  = "colormap_preview_"
)

// Slot is one LED's worth of output. Nullable fields marshal as JSON null
// when absent, matching what display clients expect.
type Slot struct {
	Time          *string      `json:"time"`
	YrSymbol      *string      `json:"yr_symbol"`
	WlSymbol      string       `json:"wl_symbol"`
	PrecNowcast   *float64     `json:"prec_nowcast"`
	PrecForecast  *float64     `json:"prec_forecast"`
	Precipitation *float64     `json:"precipitation"`
	ProbOfPrec    *float64     `json:"prob_of_prec"`
	WindGust      *float64     `json:"wind_gust"`
	RGB           colormap.RGB `json:"rgb"`
	Hex           string       `json:"hex"`
}

// SegmentResult pairs one segment's slot list with its freshness status.
type SegmentResult struct {
	Status forecast.DataStatus
	Slots  []Slot
}

// ForecastSource produces the composed slot grid for one coordinate.
// Satisfied by *forecast.Fetcher.
type ForecastSource interface {
	CreateForecast(ctx context.Context, lat, lon float64, slotMinutes, slotCount int, dev bool) (forecast.Result, error)
}

// RenderOptions are the per-request knobs shared by all segments.
type RenderOptions struct {
	// Colormap is the requested colormap name; unknown names fall back
	// to the registry default.
	Colormap string

	// Dev routes fetches to the embedded sample data.
	Dev bool

	// Preview renders the colormap itself instead of weather data.
	Preview bool
}

// Service renders segments.
type Service struct {
	source    ForecastSource
	colormaps *colormap.Registry
	logger    zerolog.Logger
}

// NewService creates a renderer.
func NewService(source ForecastSource, colormaps *colormap.Registry, logger zerolog.Logger) *Service {
	return &Service{
		source:    source,
		colormaps: colormaps,
		logger:    logger,
	}
}

// Render resolves every segment spec into its slot list. Dark and preview
// segments resolve inline; weather segments fan out concurrently. Output
// order matches input order regardless of fetch completion order.
func (s *Service) Render(ctx context.Context, specs []segment.Spec, opts RenderOptions) ([]SegmentResult, error) {
	cm, cmName := s.colormaps.Get(opts.Colormap)

	results := make([]SegmentResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)

	for i, spec := range specs {
		if opts.Preview {
			results[i] = SegmentResult{
				Status: forecast.StatusFresh,
				Slots:  previewSegment(cm, spec),
			}
			continue
		}
		if spec.Program == segment.ProgramDark {
			results[i] = SegmentResult{
				Status: forecast.StatusFresh,
				Slots:  darkSegment(spec),
			}
			continue
		}

		i, spec := i, spec
		g.Go(func() error {
			res, err := s.weatherSegment(gctx, cm, spec, opts.Dev)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("segments", len(specs)).
		Str("colormap", cmName).
		Bool("preview", opts.Preview).
		Msg("rendered segments")
	return results, nil
}

// weatherSegment fetches, classifies and colors one weather segment.
func (s *Service) weatherSegment(ctx context.Context, cm colormap.Colormap, spec segment.Spec, dev bool) (SegmentResult, error) {
	res, err := s.source.CreateForecast(ctx, spec.Lat, spec.Lon, spec.SlotMinutes, spec.LEDCount, dev)
	if err != nil {
		return SegmentResult{}, err
	}

	if res.Status == forecast.StatusError {
		s.logger.Warn().
			Float64("lat", spec.Lat).
			Float64("lon", spec.Lon).
			Bool("has_data", res.HasData).
			Dur("max_cache_age", res.MaxCacheAge).
			Msg("no usable data for segment, rendering error pattern")
		return SegmentResult{
			Status: forecast.StatusError,
			Slots:  reverse(errorSegment(spec), spec.Reversed),
		}, nil
	}

	slots := make([]Slot, 0, len(res.Grid))
	for _, row := range res.Grid {
		slots = append(slots, s.weatherSlot(cm, row))
	}

	// The stale marker goes on the last slot in pre-reversal order so it
	// lands on the far end of the strip regardless of wiring direction.
	if res.Status == forecast.StatusStale && len(slots) > 0 {
		last := &slots[len(slots)-1]
		last.RGB = HotPink
		last.Hex = HotPink.Hex()
		last.WlSymbol = SymbolStaleIndicator
	}

	return SegmentResult{
		Status: res.Status,
		Slots:  reverse(slots, spec.Reversed),
	}, nil
}

// weatherSlot classifies one grid row and attaches its color.
func (s *Service) weatherSlot(cm colormap.Colormap, row forecast.Row) Slot {
	bucket := forecast.ClassifyRow(row)
	rgb, ok := cm[bucket]
	if !ok {
		if bucket != forecast.BucketUnknown {
			s.logger.Warn().
				Str("bucket", string(bucket)).
				Msg("bucket missing from colormap, falling back")
		}
		if cloudy, hasCloudy := cm[forecast.BucketCloudy]; hasCloudy {
			rgb = cloudy
		} else {
			rgb = colormap.Black
		}
	}

	ts := row.Time.Format(time.RFC3339)
	slot := Slot{
		Time:         &ts,
		WlSymbol:     string(bucket),
		PrecNowcast:  row.PrecNow,
		PrecForecast: row.PrecFore,
		ProbOfPrec:   row.ProbOfPrec,
		WindGust:     row.WindGust,
		RGB:          rgb,
		Hex:          rgb.Hex(),
	}
	if row.Symbol != "" {
		sym := row.Symbol
		slot.YrSymbol = &sym
	}
	if row.PrecNow != nil {
		slot.Precipitation = row.PrecNow
	} else {
		slot.Precipitation = row.PrecFore
	}
	return slot
}

// darkSegment emits an all-off segment without any fetch.
func darkSegment(spec segment.Spec) []Slot {
	slots := make([]Slot, spec.LEDCount)
	for i := range slots {
		slots[i] = Slot{
			WlSymbol: SymbolDark,
			RGB:      colormap.Black,
			Hex:      colormap.Black.Hex(),
		}
	}
	return reverse(slots, spec.Reversed)
}

// errorSegment fills the whole segment with the alternating hot-pink/off
// pattern.
func errorSegment(spec segment.Spec) []Slot {
	slots := make([]Slot, spec.LEDCount)
	for i := range slots {
		rgb := colormap.Black
		if i%2 == 0 {
			rgb = HotPink
		}
		slots[i] = Slot{
			WlSymbol: SymbolError,
			RGB:      rgb,
			Hex:      rgb.Hex(),
		}
	}
	return slots
}

// previewSegment strides evenly through the colormap's bucket order so a
// short strip still shows every color band.
func previewSegment(cm colormap.Colormap, spec segment.Spec) []Slot {
	buckets := forecast.Buckets
	slots := make([]Slot, spec.LEDCount)
	for i := range slots {
		idx := 0
		if spec.LEDCount > 1 {
			idx = i * len(buckets) / spec.LEDCount
		}
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		bucket := buckets[idx]
		rgb := cm[bucket]
		slots[i] = Slot{
			WlSymbol: symbolPreviewPrefix + string(bucket),
			RGB:      rgb,
			Hex:      rgb.Hex(),
		}
	}
	return reverse(slots, spec.Reversed)
}

// reverse flips the slot order in place when requested.
func reverse(slots []Slot, reversed bool) []Slot {
	if !reversed {
		return slots
	}
	for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
		slots[i], slots[j] = slots[j], slots[i]
	}
	return slots
}

package forecast

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/metno"
)

// SlotWindow computes the grid window for a slot length and count. The
// start is found by flooring now to the top of the hour and stepping
// forward in whole slot lengths while more than one slot length has
// elapsed, so the first slot always covers now.
func SlotWindow(slotMinutes, slotCount int, now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = now.Truncate(time.Hour)
	slot := time.Duration(slotMinutes) * time.Minute

	if over := now.Sub(start); over > slot {
		start = start.Add(over / slot * slot)
	}
	end = start.Add(time.Duration(slotCount) * slot)
	return start, end
}

// Combine builds the fixed-width slot grid from the two upstream
// documents. Either document may be nil. Nowcast rates are aggregated by
// max per slot without forward fill, so slots the radar does not cover
// stay empty and the classifier falls through to the forecast. Forecast
// values are aggregated by max (first observed symbol) per slot and
// forward-filled across the hourly-to-subhourly gap.
func Combine(nowDoc, foreDoc *metno.Document, slotMinutes, slotCount int, now time.Time, logger zerolog.Logger) []Row {
	start, end := SlotWindow(slotMinutes, slotCount, now)
	slot := time.Duration(slotMinutes) * time.Minute

	grid := make([]Row, slotCount)
	for i := range grid {
		grid[i].Time = start.Add(time.Duration(i) * slot)
	}

	if nowDoc != nil {
		applyNowcast(grid, parseNowcast(nowDoc, logger), start, end, slot)
	}
	if foreDoc != nil {
		applyForecast(grid, parseForecast(foreDoc, logger), start, slot)
	}
	return grid
}

// applyNowcast folds nowcast rows into the grid, keeping the max rate
// observed within each slot. Rows outside [start, end) are dropped.
func applyNowcast(grid []Row, rows []Row, start, end time.Time, slot time.Duration) {
	for _, r := range rows {
		if r.Time.Before(start) || !r.Time.Before(end) {
			continue
		}
		idx := int(r.Time.Sub(start) / slot)
		grid[idx].PrecNow = maxFloat(grid[idx].PrecNow, r.PrecNow)
	}
}

// bucketAgg accumulates forecast values falling into one slot-width bucket.
type bucketAgg struct {
	precFore   *float64
	probOfPrec *float64
	symbol     string
	windSpeed  *float64
	windGust   *float64
}

// applyForecast resamples forecast rows onto the grid. Aggregation runs
// over the forecast's full span so forward fill can draw on buckets before
// the window start; slots beyond the last observed bucket stay empty.
// Fill is per column: a bucket that carries a symbol but no probability
// still inherits the previous bucket's probability.
func applyForecast(grid []Row, rows []Row, start time.Time, slot time.Duration) {
	if len(rows) == 0 {
		return
	}

	buckets := make(map[int64]*bucketAgg)
	minBucket, maxBucket := int64(0), int64(0)
	first := true
	for _, r := range rows {
		idx := floorDiv(int64(r.Time.Sub(start)), int64(slot))
		agg := buckets[idx]
		if agg == nil {
			agg = &bucketAgg{}
			buckets[idx] = agg
		}
		agg.precFore = maxFloat(agg.precFore, r.PrecFore)
		agg.probOfPrec = maxFloat(agg.probOfPrec, r.ProbOfPrec)
		agg.windSpeed = maxFloat(agg.windSpeed, r.WindSpeed)
		agg.windGust = maxFloat(agg.windGust, r.WindGust)
		if agg.symbol == "" {
			agg.symbol = r.Symbol
		}
		if first || idx < minBucket {
			minBucket = idx
		}
		if first || idx > maxBucket {
			maxBucket = idx
		}
		first = false
	}

	var carry bucketAgg
	for idx := minBucket; idx <= maxBucket; idx++ {
		filled := carry
		if agg, ok := buckets[idx]; ok {
			if agg.precFore != nil {
				filled.precFore = agg.precFore
			}
			if agg.probOfPrec != nil {
				filled.probOfPrec = agg.probOfPrec
			}
			if agg.windSpeed != nil {
				filled.windSpeed = agg.windSpeed
			}
			if agg.windGust != nil {
				filled.windGust = agg.windGust
			}
			if agg.symbol != "" {
				filled.symbol = agg.symbol
			}
		}
		carry = filled

		if idx < 0 || idx >= int64(len(grid)) {
			continue
		}
		grid[idx].PrecFore = filled.precFore
		grid[idx].ProbOfPrec = filled.probOfPrec
		grid[idx].Symbol = filled.symbol
		grid[idx].WindSpeed = filled.windSpeed
		grid[idx].WindGust = filled.windGust
	}
}

// maxFloat returns the larger of two optional floats.
func maxFloat(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	default:
		return a
	}
}

// floorDiv divides rounding toward negative infinity, which bucket
// indexing needs for times before the window start.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

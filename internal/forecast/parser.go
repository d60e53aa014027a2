package forecast

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/metno"
)

// parseNowcast converts a nowcast document into rows carrying the radar
// precipitation rate. Entries without a rate still produce a row so gaps
// stay visible to the grid builder.
func parseNowcast(doc *metno.Document, logger zerolog.Logger) []Row {
	rows := make([]Row, 0, len(doc.Properties.Timeseries))
	for _, entry := range doc.Properties.Timeseries {
		rate := entry.Data.Instant.Details.PrecipitationRate
		if rate == nil {
			logger.Warn().
				Time("entry_time", entry.Time).
				Msg("precipitation rate missing from nowcast entry")
		}
		rows = append(rows, Row{
			Time:    entry.Time.UTC(),
			PrecNow: rate,
		})
	}
	return rows
}

// parseForecast converts a locationforecast document into hourly rows.
// Entries with next_1_hours yield one row; entries carrying only
// next_6_hours (the long tail of the forecast) are expanded into six
// hourly rows sharing the period's symbol and probability, with the
// precipitation amount split evenly. Entries with neither are skipped.
func parseForecast(doc *metno.Document, logger zerolog.Logger) []Row {
	var rows []Row
	for _, entry := range doc.Properties.Timeseries {
		details := entry.Data.Instant.Details

		switch {
		case entry.Data.Next1Hours != nil:
			block := entry.Data.Next1Hours
			rows = append(rows, Row{
				Time:       entry.Time.UTC(),
				PrecFore:   block.Details.PrecipitationAmount,
				ProbOfPrec: block.Details.ProbabilityOfPrecipitation,
				Symbol:     baseSymbol(block.Summary.SymbolCode),
				WindSpeed:  details.WindSpeed,
				WindGust:   details.WindSpeedOfGust,
			})

		case entry.Data.Next6Hours != nil:
			block := entry.Data.Next6Hours
			hourly := splitSixHourAmount(block.Details.PrecipitationAmount)
			symbol := baseSymbol(block.Summary.SymbolCode)
			for offset := 0; offset < 6; offset++ {
				rows = append(rows, Row{
					Time:       entry.Time.UTC().Add(time.Duration(offset) * time.Hour),
					PrecFore:   hourly,
					ProbOfPrec: block.Details.ProbabilityOfPrecipitation,
					Symbol:     symbol,
					WindSpeed:  details.WindSpeed,
					WindGust:   details.WindSpeedOfGust,
				})
			}

		default:
			logger.Debug().
				Time("entry_time", entry.Time).
				Msg("forecast entry has neither next_1_hours nor next_6_hours")
		}
	}
	return rows
}

// splitSixHourAmount converts a 6-hour accumulated amount to an hourly
// average. A missing amount counts as zero.
func splitSixHourAmount(amount *float64) *float64 {
	hourly := 0.0
	if amount != nil {
		hourly = *amount / 6.0
	}
	return &hourly
}

// baseSymbol strips the _day/_night/_polartwilight suffix from an upstream
// symbol code.
func baseSymbol(code string) string {
	if i := strings.IndexByte(code, '_'); i >= 0 {
		return code[:i]
	}
	return code
}

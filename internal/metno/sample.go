package metno

import (
	"embed"
	"fmt"
	"time"
)

//go:embed sampledata/*.json
var sampleFS embed.FS

// SampleDocument loads the checked-in sample response for the given product
// and rewrites its timeseries timestamps to a window ending at now, so that
// offline smoke tests see plausible data. Locationforecast samples step by
// 60 minutes from the top of the hour; nowcast samples step by 5 minutes
// from the previous 5-minute boundary.
func SampleDocument(cast CastType, now time.Time) (*Document, error) {
	body, err := sampleFS.ReadFile(fmt.Sprintf("sampledata/yr-cache-%s.dev.json", cast))
	if err != nil {
		return nil, fmt.Errorf("reading sample data: %w", err)
	}

	doc, err := ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("parsing sample data: %w", err)
	}

	now = now.UTC()
	var ts time.Time
	var step time.Duration
	if cast == CastLocationForecast {
		ts = now.Truncate(time.Hour)
		step = time.Hour
	} else {
		ts = now.Truncate(5 * time.Minute)
		step = 5 * time.Minute
	}

	for i := range doc.Properties.Timeseries {
		doc.Properties.Timeseries[i].Time = ts
		ts = ts.Add(step)
	}
	return doc, nil
}

// Package metno provides a client for the MET Norway weather API
// (locationforecast and nowcast products).
package metno

import (
	"encoding/json"
	"errors"
	"time"
)

// CastType selects one of the two MET Norway products.
type CastType string

const (
	// CastNowcast is the 5-minute radar precipitation product.
	CastNowcast CastType = "nowcast"

	// CastLocationForecast is the hourly model forecast product.
	CastLocationForecast CastType = "locationforecast"
)

// API errors.
var (
	// ErrNoData indicates the API returned 422 (no data for this location).
	ErrNoData = errors.New("no data available for location")

	// ErrUnexpectedStatus indicates a non-ok HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")

	// ErrInvalidResponse indicates the response body failed shape validation.
	ErrInvalidResponse = errors.New("invalid upstream response structure")
)

// Document is the subset of the MET Norway complete response the service
// consumes. Unknown fields are ignored on decode.
type Document struct {
	Properties struct {
		Timeseries []Entry `json:"timeseries"`
	} `json:"properties"`
}

// Entry is a single timeseries element.
type Entry struct {
	Time time.Time `json:"time"`
	Data EntryData `json:"data"`
}

// EntryData carries the instant details plus the forecast period blocks.
type EntryData struct {
	Instant struct {
		Details InstantDetails `json:"details"`
	} `json:"instant"`
	Next1Hours *PeriodBlock `json:"next_1_hours,omitempty"`
	Next6Hours *PeriodBlock `json:"next_6_hours,omitempty"`
}

// InstantDetails holds instantaneous measurements. Pointer fields are
// optional in the upstream payload.
type InstantDetails struct {
	PrecipitationRate *float64 `json:"precipitation_rate,omitempty"`
	WindSpeed         *float64 `json:"wind_speed,omitempty"`
	WindSpeedOfGust   *float64 `json:"wind_speed_of_gust,omitempty"`
}

// PeriodBlock holds the summary and details for a forecast period
// (next_1_hours or next_6_hours).
type PeriodBlock struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details PeriodDetails `json:"details"`
}

// PeriodDetails holds accumulated values for a forecast period.
type PeriodDetails struct {
	PrecipitationAmount        *float64 `json:"precipitation_amount,omitempty"`
	ProbabilityOfPrecipitation *float64 `json:"probability_of_precipitation,omitempty"`
}

// ParseDocument decodes and validates an API response body. A valid body
// must parse as JSON and contain a non-empty properties.timeseries list.
func ParseDocument(body []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, ErrInvalidResponse
	}
	if len(doc.Properties.Timeseries) == 0 {
		return nil, ErrInvalidResponse
	}
	return &doc, nil
}

package forecast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weatherlamp/weatherlamp/internal/forecast"
)

func TestClassifyRow_NowcastLadder(t *testing.T) {
	cases := []struct {
		name string
		rate float64
		want forecast.Bucket
	}{
		{"torrential", 3.5, forecast.BucketVeryHeavyRain},
		{"exactly 3.0 is not very heavy", 3.0, forecast.BucketHeavyRain},
		{"heavy", 1.6, forecast.BucketHeavyRain},
		{"exactly 1.5 is not heavy", 1.5, forecast.BucketRain},
		{"moderate", 0.6, forecast.BucketRain},
		{"exactly 0.5 is not moderate", 0.5, forecast.BucketLightRain},
		{"drizzle", 0.1, forecast.BucketLightRain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := forecast.Row{PrecNow: floatPtr(tc.rate)}
			assert.Equal(t, tc.want, forecast.ClassifyRow(row))
		})
	}
}

func TestClassifyRow_NowcastZeroRate(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
		want   forecast.Bucket
	}{
		// A precipitation symbol at zero radar rate means cloud without
		// rainfall right now.
		{"rain symbol becomes cloudy", "lightrain", forecast.BucketCloudy},
		{"sleet symbol becomes cloudy", "heavysleetshowers", forecast.BucketCloudy},
		{"snow symbol becomes cloudy", "snow", forecast.BucketCloudy},
		{"clear sky stays clear", "clearsky", forecast.BucketClearSky},
		{"partly cloudy kept", "partlycloudy", forecast.BucketPartlyCloudy},
		{"fog maps to cloudy", "fog", forecast.BucketCloudy},
		{"unknown symbol", "volcanicash", forecast.BucketUnknown},
		{"no symbol", "", forecast.BucketUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := forecast.Row{PrecNow: floatPtr(0), Symbol: tc.symbol}
			assert.Equal(t, tc.want, forecast.ClassifyRow(row))
		})
	}
}

func TestClassifyRow_ForecastSymbols(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
		prob   *float64
		want   forecast.Bucket
	}{
		{"clearsky", "clearsky", nil, forecast.BucketClearSky},
		{"fair is clear", "fair", nil, forecast.BucketClearSky},
		{"partly cloudy", "partlycloudy", nil, forecast.BucketPartlyCloudy},
		{"cloudy", "cloudy", nil, forecast.BucketCloudy},
		{"light rain no probability", "lightrain", nil, forecast.BucketLightRain},
		{"light rain high probability", "lightrain", floatPtr(80), forecast.BucketLightRain},
		{"light rain low probability", "lightrain", floatPtr(40), forecast.BucketLightRainLT50},
		{"exactly 50 percent softens", "lightrain", floatPtr(50), forecast.BucketLightRainLT50},
		{"light snow low probability softens too", "lightsnow", floatPtr(30), forecast.BucketLightRainLT50},
		{"rain", "rainshowers", nil, forecast.BucketRain},
		{"sleet counts as rain", "sleetandthunder", nil, forecast.BucketRain},
		{"heavy rain", "heavyrainshowersandthunder", nil, forecast.BucketHeavyRain},
		{"heavy snow", "heavysnow", nil, forecast.BucketHeavyRain},
		{"unknown symbol", "meteorshower", nil, forecast.BucketUnknown},
		{"empty symbol", "", nil, forecast.BucketUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := forecast.Row{Symbol: tc.symbol, ProbOfPrec: tc.prob}
			assert.Equal(t, tc.want, forecast.ClassifyRow(row))
		})
	}
}

func TestClassifyRow_NowcastWinsOverSymbol(t *testing.T) {
	// A nonzero radar rate overrides whatever the forecast symbol says.
	row := forecast.Row{PrecNow: floatPtr(2.0), Symbol: "clearsky"}
	assert.Equal(t, forecast.BucketHeavyRain, forecast.ClassifyRow(row))
}

func TestBuckets_DisplayOrder(t *testing.T) {
	// The preview mode strides through this order; keep it stable.
	assert.Equal(t, []forecast.Bucket{
		forecast.BucketClearSky,
		forecast.BucketPartlyCloudy,
		forecast.BucketCloudy,
		forecast.BucketLightRainLT50,
		forecast.BucketLightRain,
		forecast.BucketRain,
		forecast.BucketHeavyRain,
		forecast.BucketVeryHeavyRain,
	}, forecast.Buckets)
}

package forecast

import "regexp"

// rainFamilyRe matches any precipitation-family symbol. At zero radar rate
// a precipitation symbol means the cloud is there but nothing is falling
// yet, which displays as plain cloud cover.
var rainFamilyRe = regexp.MustCompile(`(?i)rain|sleet|snow`)

// symbolBuckets maps base weather symbols (after _day/_night stripping) to
// their color buckets. The set is closed; unlisted symbols classify as
// unknown.
var symbolBuckets = map[string]Bucket{
	"clearsky": BucketClearSky,
	"fair":     BucketClearSky,

	"partlycloudy": BucketPartlyCloudy,

	"cloudy": BucketCloudy,
	"fog":    BucketCloudy,

	"lightrain":                    BucketLightRain,
	"lightrainandthunder":          BucketLightRain,
	"lightrainshowers":             BucketLightRain,
	"lightrainshowersandthunder":   BucketLightRain,
	"lightsleet":                   BucketLightRain,
	"lightsleetandthunder":         BucketLightRain,
	"lightsleetshowers":            BucketLightRain,
	"lightsnow":                    BucketLightRain,
	"lightsnowandthunder":          BucketLightRain,
	"lightsnowshowers":             BucketLightRain,
	"lightssleetshowersandthunder": BucketLightRain,
	"lightssnowshowersandthunder":  BucketLightRain,

	"rain":                   BucketRain,
	"rainandthunder":         BucketRain,
	"rainshowers":            BucketRain,
	"rainshowersandthunder":  BucketRain,
	"sleet":                  BucketRain,
	"sleetandthunder":        BucketRain,
	"sleetshowers":           BucketRain,
	"sleetshowersandthunder": BucketRain,
	"snow":                   BucketRain,
	"snowandthunder":         BucketRain,
	"snowshowers":            BucketRain,
	"snowshowersandthunder":  BucketRain,

	"heavyrain":                   BucketHeavyRain,
	"heavyrainandthunder":         BucketHeavyRain,
	"heavyrainshowers":            BucketHeavyRain,
	"heavyrainshowersandthunder":  BucketHeavyRain,
	"heavysleet":                  BucketHeavyRain,
	"heavysleetandthunder":        BucketHeavyRain,
	"heavysleetshowers":           BucketHeavyRain,
	"heavysleetshowersandthunder": BucketHeavyRain,
	"heavysnow":                   BucketHeavyRain,
	"heavysnowandthunder":         BucketHeavyRain,
	"heavysnowshowers":            BucketHeavyRain,
	"heavysnowshowersandthunder":  BucketHeavyRain,
}

// ClassifyRow picks the color bucket for one slot. The radar rate wins
// when present; otherwise the forecast symbol decides, with a low
// probability of precipitation softening light rain. Returns BucketUnknown
// when no key can be determined.
func ClassifyRow(r Row) Bucket {
	if r.PrecNow != nil {
		return classifyNowcast(*r.PrecNow, r.Symbol)
	}
	return classifyForecast(r.Symbol, r.ProbOfPrec)
}

func classifyNowcast(rate float64, symbol string) Bucket {
	switch {
	case rate > 3.0:
		return BucketVeryHeavyRain
	case rate > 1.5:
		return BucketHeavyRain
	case rate > 0.5:
		return BucketRain
	case rate > 0.0:
		return BucketLightRain
	}

	if rate == 0.0 && symbol != "" {
		if rainFamilyRe.MatchString(symbol) {
			return BucketCloudy
		}
		if bucket, ok := symbolBuckets[symbol]; ok {
			return bucket
		}
	}
	return BucketUnknown
}

func classifyForecast(symbol string, probOfPrec *float64) Bucket {
	bucket, ok := symbolBuckets[symbol]
	if !ok {
		return BucketUnknown
	}
	if bucket == BucketLightRain && probOfPrec != nil && *probOfPrec <= 50 {
		return BucketLightRainLT50
	}
	return bucket
}

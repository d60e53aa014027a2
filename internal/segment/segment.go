// Package segment parses and validates the LED segment definitions that
// arrive in the request's "s" query parameter.
package segment

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxForecastDurationHours caps the total time span a single segment may
// cover (slot length times LED count).
const MaxForecastDurationHours = 200

// specParts is the number of comma-separated fields in one segment tuple.
const specParts = 6

// ProgramDark is the program name for segments that stay off.
const ProgramDark = "dark"

// programRe extracts the slot length from program names like "r5min" or
// "rain15min".
var programRe = regexp.MustCompile(`(\d+)min$`)

// Error codes for segment validation failures.
const (
	CodeMissingParam    = "MISSING_S_QUERY_PARAM"
	CodeInvalidFormat   = "INVALID_SEGMENT_FORMAT"
	CodeInvalidData     = "INVALID_SEGMENT_DATA"
	CodeDurationTooLong = "DURATION_TOO_LONG"
)

// ParseError is a structured validation failure suitable for direct
// rendering as an API error body.
type ParseError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Spec is one parsed segment definition.
type Spec struct {
	// Index is a client-defined identifier, opaque to the service.
	Index int

	// Program is either "dark" or a name ending in "<N>min".
	Program string

	// LEDCount is the number of output slots.
	LEDCount int

	// Reversed flips the output order of the finished segment.
	Reversed bool

	// Lat and Lon are rounded to 3 decimals at ingress.
	Lat float64
	Lon float64

	// SlotMinutes is derived from Program; zero for dark segments.
	SlotMinutes int
}

// ParseList parses a space-separated list of 6-tuples
// "index,program,led_count,reversed,lat,lon".
func ParseList(s string) ([]Spec, error) {
	if s == "" {
		return nil, &ParseError{
			Code:    CodeMissingParam,
			Message: "Missing 's' query parameter",
		}
	}

	raw := strings.Split(s, " ")
	specs := make([]Spec, 0, len(raw))
	for _, segmentStr := range raw {
		spec, err := parseOne(segmentStr)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseOne(segmentStr string) (Spec, error) {
	parts := strings.Split(segmentStr, ",")
	if len(parts) != specParts {
		return Spec{}, &ParseError{
			Code:    CodeInvalidFormat,
			Message: "Invalid segment format. Expected 6 comma-separated values.",
			Details: map[string]any{"segment": segmentStr},
		}
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return Spec{}, dataError(segmentStr, "index must be an integer")
	}
	program := parts[1]
	ledCount, err := strconv.Atoi(parts[2])
	if err != nil {
		return Spec{}, dataError(segmentStr, "led_count must be an integer")
	}
	if ledCount < 1 {
		return Spec{}, dataError(segmentStr, "led_count must be at least 1")
	}
	reversedFlag, err := strconv.Atoi(parts[3])
	if err != nil || (reversedFlag != 0 && reversedFlag != 1) {
		return Spec{}, dataError(segmentStr, "reversed flag must be 0 or 1")
	}
	lat, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return Spec{}, dataError(segmentStr, "lat must be a number")
	}
	lon, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return Spec{}, dataError(segmentStr, "lon must be a number")
	}
	if lat <= -90 || lat >= 90 || lon <= -180 || lon >= 180 {
		return Spec{}, dataError(segmentStr, "coordinates out of range")
	}

	spec := Spec{
		Index:    index,
		Program:  program,
		LEDCount: ledCount,
		Reversed: reversedFlag == 1,
		Lat:      round3(lat),
		Lon:      round3(lon),
	}

	if program == ProgramDark {
		return spec, nil
	}

	match := programRe.FindStringSubmatch(program)
	if match == nil {
		return Spec{}, dataError(segmentStr,
			fmt.Sprintf("invalid program %q: expected 'dark' or a name ending in '<N>min'", program))
	}
	spec.SlotMinutes, _ = strconv.Atoi(match[1])
	if spec.SlotMinutes < 1 {
		return Spec{}, dataError(segmentStr, "slot length must be at least 1 minute")
	}

	durationHours := float64(spec.SlotMinutes) / 60 * float64(ledCount)
	if durationHours > MaxForecastDurationHours {
		return Spec{}, &ParseError{
			Code: CodeDurationTooLong,
			Message: fmt.Sprintf(
				"Derived interval * led_count cannot exceed %d hours for a segment.",
				MaxForecastDurationHours),
			Details: map[string]any{
				"segment":                segmentStr,
				"derived_duration_hours": durationHours,
			},
		}
	}
	return spec, nil
}

func dataError(segmentStr, msg string) *ParseError {
	return &ParseError{
		Code:    CodeInvalidData,
		Message: "Invalid data in segment: " + msg,
		Details: map[string]any{"segment": segmentStr},
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

package handler

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/weatherlamp/weatherlamp/internal/forecast"
	"github.com/weatherlamp/weatherlamp/internal/lamp"
)

// Output formats for the lamp endpoint.
const (
	FormatWLED   = "json_wled"
	FormatJSON   = "json"
	FormatHTML   = "html"
	FormatBinary = "bin"
)

// ValidFormat reports whether format is a supported output format.
func ValidFormat(format string) bool {
	switch format {
	case FormatWLED, FormatJSON, FormatHTML, FormatBinary:
		return true
	}
	return false
}

// wledSlot is the single field WLED controllers consume per LED.
type wledSlot struct {
	Hex string `json:"hex"`
}

// encodeWLED renders [[{"hex":"rrggbb"}, ...], ...] without whitespace.
func encodeWLED(results []lamp.SegmentResult) ([]byte, error) {
	out := make([][]wledSlot, len(results))
	for i, res := range results {
		out[i] = make([]wledSlot, len(res.Slots))
		for j, slot := range res.Slots {
			out[i][j] = wledSlot{Hex: slot.Hex}
		}
	}
	return json.Marshal(out)
}

// jsonSegment wraps a segment's slots with its freshness status.
type jsonSegment struct {
	DataStatus forecast.DataStatus `json:"data_status"`
	Data       []lamp.Slot         `json:"data"`
}

// encodeJSON renders the full per-slot detail, one object per segment.
func encodeJSON(results []lamp.SegmentResult) ([]byte, error) {
	out := make([]jsonSegment, len(results))
	for i, res := range results {
		out[i] = jsonSegment{DataStatus: res.Status, Data: res.Slots}
	}
	return json.Marshal(out)
}

// encodeBinary renders all segments' RGB triples as 3 bytes per LED,
// concatenated in segment order.
func encodeBinary(results []lamp.SegmentResult) []byte {
	size := 0
	for _, res := range results {
		size += len(res.Slots) * 3
	}
	out := make([]byte, 0, size)
	for _, res := range results {
		for _, slot := range res.Slots {
			out = append(out, byte(slot.RGB[0]), byte(slot.RGB[1]), byte(slot.RGB[2]))
		}
	}
	return out
}

// htmlColumns is the column order of the debug table.
var htmlColumns = []string{
	"time", "yr_symbol", "wl_symbol", "prec_nowcast", "prec_forecast",
	"precipitation", "prob_of_prec", "wind_gust", "rgb", "hex",
}

// encodeHTML renders a debug table, one per segment, with each row tinted
// in its slot's color.
func encodeHTML(results []lamp.SegmentResult) []byte {
	var b strings.Builder
	b.WriteString(`<html><head>
<title>WeatherLamp V2 Output</title>
<style>
  body { margin: 10px; font-family: sans-serif; }
  table { border-collapse: collapse; margin-bottom: 20px; }
  th, td { border: 1px solid #ccc; padding: 5px 8px; text-align: left; }
  th { background-color: #f0f0f0; }
</style>
</head><body><h1>WeatherLamp V2 Output</h1>
`)

	for _, res := range results {
		b.WriteString("<table>\n<tr>")
		for _, col := range htmlColumns {
			fmt.Fprintf(&b, "<th>%s</th>", col)
		}
		b.WriteString("</tr>\n")

		if len(res.Slots) == 0 {
			b.WriteString("<tr><td>No data for this segment.</td></tr>\n")
		}
		for _, slot := range res.Slots {
			fmt.Fprintf(&b, "<tr style='background-color: rgb(%d,%d,%d)'>",
				slot.RGB[0], slot.RGB[1], slot.RGB[2])
			for _, cell := range htmlCells(slot) {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</table>\n")
	}

	b.WriteString("</body></html>\n")
	return []byte(b.String())
}

// htmlCells formats one slot's values in htmlColumns order.
func htmlCells(slot lamp.Slot) []string {
	return []string{
		strOr(slot.Time),
		strOr(slot.YrSymbol),
		slot.WlSymbol,
		floatOr(slot.PrecNowcast),
		floatOr(slot.PrecForecast),
		floatOr(slot.Precipitation),
		floatOr(slot.ProbOfPrec),
		floatOr(slot.WindGust),
		fmt.Sprintf("[%d %d %d]", slot.RGB[0], slot.RGB[1], slot.RGB[2]),
		slot.Hex,
	}
}

func strOr(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func floatOr(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

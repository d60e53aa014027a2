package metno

import (
	"fmt"
	"strconv"
	"strings"
)

// nowcastCoverageWKT is the nowcast radar coverage area (Fennoscandia and
// adjacent seas). Derived from the polygon published at
// https://api.met.no/weatherapi/nowcast/2.0/coverage.zip, simplified and
// shrunk with a negative buffer so borderline coordinates are excluded.
const nowcastCoverageWKT = `POLYGON ((
    2.547779705832076 53.30271492607023,
    -2.905815348621908 64.65327205671177,
    -9.497201603182553 71.32483641294951,
    15.01761974015538 72.85721223563839,
    39.50028754686385 71.32462086941165,
    32.90812282213389 64.65301564004723,
    27.45389690417179 53.30251807369419,
    2.547779705832076 53.30271492607023
))`

type point struct {
	x, y float64 // lon, lat
}

var nowcastCoverage = mustParseWKTPolygon(nowcastCoverageWKT)

// InNowcastCoverage reports whether the coordinate lies inside the nowcast
// radar coverage polygon.
func InNowcastCoverage(lat, lon float64) bool {
	return polygonContains(nowcastCoverage, point{x: lon, y: lat})
}

// mustParseWKTPolygon parses a single-ring WKT POLYGON into its vertex
// list. Panics on malformed input; the only caller is a package constant.
func mustParseWKTPolygon(wkt string) []point {
	s := strings.TrimSpace(wkt)
	s = strings.TrimPrefix(s, "POLYGON")
	s = strings.Trim(strings.TrimSpace(s), "()")

	var ring []point
	for _, pair := range strings.Split(s, ",") {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			panic(fmt.Sprintf("metno: malformed WKT vertex %q", pair))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			panic(fmt.Sprintf("metno: malformed WKT coordinate %q", fields[0]))
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			panic(fmt.Sprintf("metno: malformed WKT coordinate %q", fields[1]))
		}
		ring = append(ring, point{x: x, y: y})
	}
	if len(ring) < 4 {
		panic("metno: WKT polygon ring too short")
	}
	return ring
}

// polygonContains implements the even-odd ray casting rule. The ring is
// expected to be closed (first vertex repeated at the end).
func polygonContains(ring []point, p point) bool {
	inside := false
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		if (a.y > p.y) == (b.y > p.y) {
			continue
		}
		crossX := a.x + (p.y-a.y)/(b.y-a.y)*(b.x-a.x)
		if p.x < crossX {
			inside = !inside
		}
	}
	return inside
}

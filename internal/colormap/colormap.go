// Package colormap loads and serves the named colormaps that translate
// weather buckets into LED colors.
package colormap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weatherlamp/weatherlamp/internal/forecast"
)

// RGB is a color triple with components in 0..255. It marshals as a plain
// JSON array, matching the on-disk colormap format.
type RGB [3]int

// Hex renders the color as a lowercase rrggbb string.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c[0], c[1], c[2])
}

// Black is the all-off color.
var Black = RGB{0, 0, 0}

// Colormap maps every color bucket to its RGB value. Display order comes
// from forecast.Buckets, not from the map.
type Colormap map[forecast.Bucket]RGB

// fallbackPlain is used when no colormap files are found, so the service
// can always serve something sensible.
var fallbackPlain = Colormap{
	forecast.BucketClearSky:      {3, 3, 235},
	forecast.BucketPartlyCloudy:  {65, 126, 205},
	forecast.BucketCloudy:        {180, 200, 200},
	forecast.BucketLightRainLT50: {161, 228, 74},
	forecast.BucketLightRain:     {240, 240, 42},
	forecast.BucketRain:          {241, 155, 44},
	forecast.BucketHeavyRain:     {236, 94, 42},
	forecast.BucketVeryHeavyRain: {234, 57, 248},
}

// Registry holds the loaded colormaps. Populated once at startup and
// read-only afterwards.
type Registry struct {
	maps        map[string]Colormap
	defaultName string
	logger      zerolog.Logger
}

// LoadDir reads every *.json colormap from dir, validating each against
// the closed bucket set. Invalid files are skipped with an error log. If
// no valid colormap is found (or the directory is missing) the built-in
// plain map is registered as a fallback.
func LoadDir(dir string, logger zerolog.Logger) *Registry {
	reg := &Registry{
		maps:   make(map[string]Colormap),
		logger: logger,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("colormaps directory not readable")
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		cm, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Error().Err(err).Str("file", entry.Name()).Msg("skipping invalid colormap")
			continue
		}
		reg.maps[name] = cm
		names = append(names, name)
		logger.Info().Str("colormap", name).Msg("loaded colormap")
	}

	if len(reg.maps) == 0 {
		logger.Warn().Msg("no valid colormaps loaded, registering built-in plain fallback")
		reg.maps["plain"] = fallbackPlain
		names = append(names, "plain")
	}

	sort.Strings(names)
	if _, ok := reg.maps["plain"]; ok {
		reg.defaultName = "plain"
	} else {
		reg.defaultName = names[0]
	}
	return reg
}

// Get returns the named colormap, falling back to the default when the
// name is unknown. The second return value is the name actually used.
func (r *Registry) Get(name string) (Colormap, string) {
	if cm, ok := r.maps[name]; ok {
		return cm, name
	}
	r.logger.Warn().
		Str("colormap", name).
		Str("fallback", r.defaultName).
		Msg("unknown colormap requested")
	return r.maps[r.defaultName], r.defaultName
}

// Names lists the registered colormap names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.maps))
	for name := range r.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadFile parses and validates one colormap file. Every bucket must be
// present with components in range; unknown keys are rejected to catch
// typos in hand-edited files.
func loadFile(path string) (Colormap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]RGB
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing colormap: %w", err)
	}

	cm := make(Colormap, len(forecast.Buckets))
	for key, rgb := range raw {
		bucket := forecast.Bucket(key)
		if !knownBucket(bucket) {
			return nil, fmt.Errorf("unknown bucket %q", key)
		}
		for _, comp := range rgb {
			if comp < 0 || comp > 255 {
				return nil, fmt.Errorf("bucket %q: component %d out of range", key, comp)
			}
		}
		cm[bucket] = rgb
	}

	for _, bucket := range forecast.Buckets {
		if _, ok := cm[bucket]; !ok {
			return nil, fmt.Errorf("missing bucket %q", bucket)
		}
	}
	return cm, nil
}

func knownBucket(b forecast.Bucket) bool {
	for _, known := range forecast.Buckets {
		if b == known {
			return true
		}
	}
	return false
}

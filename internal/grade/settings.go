package grade

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Supported lattice resolutions for generated LUTs.
const (
	ResolutionSmall   = 17
	ResolutionDefault = 33
	ResolutionLarge   = 65
)

// minGamma floors the gamma parameter so 1/gamma stays finite.
const minGamma = 0.01

// Curves holds the per-channel and master tone curves.
type Curves struct {
	R      Curve
	G      Curve
	B      Curve
	Master Curve
}

// Settings describes a procedural grade.
type Settings struct {
	// Exposure in EV stops.
	Exposure float64
	// Contrast multiplier around mid-gray 0.5.
	Contrast float64
	// Gamma must be positive; values below 0.01 are treated as 0.01.
	Gamma float64
	// Hue rotation in degrees.
	Hue float64
	// Saturation multiplier.
	Saturation float64
	// Vibrance multiplier; boosts low-saturation colors more than saturated
	// ones.
	Vibrance float64

	Curves Curves

	// Resolution is the lattice edge used by Build: 17, 33 or 65. Other
	// values fall back to 33.
	Resolution int
}

// DefaultSettings returns the neutral grade: every adjustment at its
// identity value and identity curves.
func DefaultSettings() Settings {
	return Settings{
		Exposure:   0,
		Contrast:   1,
		Gamma:      1,
		Hue:        0,
		Saturation: 1,
		Vibrance:   1,
		Curves: Curves{
			R:      IdentityCurve(),
			G:      IdentityCurve(),
			B:      IdentityCurve(),
			Master: IdentityCurve(),
		},
		Resolution: ResolutionDefault,
	}
}

// NormalizeResolution maps a requested resolution onto a supported one.
// The second result is false when the request was replaced by the default.
func NormalizeResolution(n int) (int, bool) {
	switch n {
	case ResolutionSmall, ResolutionDefault, ResolutionLarge:
		return n, true
	}
	return ResolutionDefault, false
}

// ParseSettings decodes a settings JSON document of the form
//
//	{"resolution": 33, "exposure": 0.5, "contrast": 1.1, "gamma": 1,
//	 "hue": 0, "saturation": 1, "vibrance": 1.2,
//	 "curves": {"r": [{"x": 0, "y": 0}, {"x": 1, "y": 1}], "g": [], "b": [], "master": []}}
//
// Decoding is lenient: a missing, null, non-numeric or non-finite field keeps
// its default, numeric strings such as "1.5" are accepted, and an unreadable
// document yields DefaultSettings.
func ParseSettings(data []byte) Settings {
	s := DefaultSettings()

	var doc map[string]json.RawMessage
	if len(data) == 0 {
		return s
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.WithError(err).Debug("settings are not a JSON object, using defaults")
		return s
	}

	if v, ok := number(doc["exposure"]); ok {
		s.Exposure = v
	}
	if v, ok := number(doc["contrast"]); ok {
		s.Contrast = v
	}
	if v, ok := number(doc["gamma"]); ok {
		s.Gamma = v
	}
	if v, ok := number(doc["hue"]); ok {
		s.Hue = v
	}
	if v, ok := number(doc["saturation"]); ok {
		s.Saturation = v
	}
	if v, ok := number(doc["vibrance"]); ok {
		s.Vibrance = v
	}
	if v, ok := number(doc["resolution"]); ok && math.Abs(v) < math.MaxInt32 {
		s.Resolution = int(v)
	}

	var curves map[string]json.RawMessage
	if raw, ok := doc["curves"]; ok && json.Unmarshal(raw, &curves) == nil {
		if c, ok := curve(curves["r"]); ok {
			s.Curves.R = c
		}
		if c, ok := curve(curves["g"]); ok {
			s.Curves.G = c
		}
		if c, ok := curve(curves["b"]); ok {
			s.Curves.B = c
		}
		if c, ok := curve(curves["master"]); ok {
			s.Curves.Master = c
		}
	}
	return s
}

// number reads a JSON number or numeric string.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if json.Unmarshal(raw, &str) != nil {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// curve reads a JSON array of {x, y} points. Points with unusable
// coordinates are dropped; a value that is not an array is rejected so the
// default curve is kept.
func curve(raw json.RawMessage) (Curve, bool) {
	if len(raw) == 0 {
		return Curve{}, false
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return Curve{}, false
	}

	points := make([]Point, 0, len(items))
	for _, item := range items {
		x, okX := number(item["x"])
		y, okY := number(item["y"])
		if okX && okY {
			points = append(points, Point{X: x, Y: y})
		}
	}
	return NewCurve(points...), true
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type settingsJSON struct {
	Resolution int                    `json:"resolution"`
	Exposure   float64                `json:"exposure"`
	Contrast   float64                `json:"contrast"`
	Gamma      float64                `json:"gamma"`
	Hue        float64                `json:"hue"`
	Saturation float64                `json:"saturation"`
	Vibrance   float64                `json:"vibrance"`
	Curves     map[string][]pointJSON `json:"curves"`
}

// MarshalJSON encodes the settings in the schema ParseSettings reads.
func (s Settings) MarshalJSON() ([]byte, error) {
	points := func(c Curve) []pointJSON {
		out := make([]pointJSON, 0, len(c.points))
		for _, p := range c.points {
			out = append(out, pointJSON{X: p.X, Y: p.Y})
		}
		return out
	}
	return json.Marshal(settingsJSON{
		Resolution: s.Resolution,
		Exposure:   s.Exposure,
		Contrast:   s.Contrast,
		Gamma:      s.Gamma,
		Hue:        s.Hue,
		Saturation: s.Saturation,
		Vibrance:   s.Vibrance,
		Curves: map[string][]pointJSON{
			"r":      points(s.Curves.R),
			"g":      points(s.Curves.G),
			"b":      points(s.Curves.B),
			"master": points(s.Curves.Master),
		},
	})
}

// UnmarshalJSON decodes settings leniently, see ParseSettings.
func (s *Settings) UnmarshalJSON(data []byte) error {
	*s = ParseSettings(data)
	return nil
}

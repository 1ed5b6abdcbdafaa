package grade

import (
	"encoding/json"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Exposure != 0 || s.Contrast != 1 || s.Gamma != 1 || s.Hue != 0 ||
		s.Saturation != 1 || s.Vibrance != 1 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.Resolution != 33 {
		t.Errorf("Resolution: got %d, want 33", s.Resolution)
	}
	for name, c := range map[string]Curve{"r": s.Curves.R, "g": s.Curves.G, "b": s.Curves.B, "master": s.Curves.Master} {
		if !c.IsIdentity() {
			t.Errorf("default %s curve is not an identity", name)
		}
	}
}

func TestNormalizeResolution(t *testing.T) {
	tests := []struct {
		in   int
		want int
		ok   bool
	}{
		{17, 17, true},
		{33, 33, true},
		{65, 65, true},
		{0, 33, false},
		{32, 33, false},
		{64, 33, false},
		{-17, 33, false},
		{129, 33, false},
	}

	for _, tt := range tests {
		got, ok := NormalizeResolution(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeResolution(%d) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseSettings_Full(t *testing.T) {
	data := []byte(`{
		"resolution": 65,
		"exposure": 0.5,
		"contrast": 1.2,
		"gamma": 2.2,
		"hue": -30,
		"saturation": 0.8,
		"vibrance": 1.4,
		"curves": {
			"r": [{"x": 1, "y": 0.9}, {"x": 0, "y": 0.1}],
			"master": [{"x": 0.2, "y": 0.5}]
		}
	}`)

	s := ParseSettings(data)
	if s.Resolution != 65 {
		t.Errorf("Resolution: got %d, want 65", s.Resolution)
	}
	if s.Exposure != 0.5 || s.Contrast != 1.2 || s.Gamma != 2.2 || s.Hue != -30 ||
		s.Saturation != 0.8 || s.Vibrance != 1.4 {
		t.Errorf("unexpected values: %+v", s)
	}

	r := s.Curves.R.Points()
	if len(r) != 2 || r[0] != (Point{0, 0.1}) || r[1] != (Point{1, 0.9}) {
		t.Errorf("red curve should be sorted by x: %+v", r)
	}
	if !s.Curves.G.IsIdentity() || !s.Curves.B.IsIdentity() {
		t.Error("missing curves should stay identity")
	}
	if got := s.Curves.Master.Eval(0); got != 0.5 {
		t.Errorf("master Eval(0) = %v, want 0.5", got)
	}
}

func TestParseSettings_Lenient(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(Settings) bool
	}{
		{"empty", ``, func(s Settings) bool { return s.Contrast == 1 && s.Resolution == 33 }},
		{"not json", `{{{`, func(s Settings) bool { return s.Gamma == 1 }},
		{"array document", `[1,2]`, func(s Settings) bool { return s.Saturation == 1 }},
		{"string number", `{"exposure": "1.5"}`, func(s Settings) bool { return s.Exposure == 1.5 }},
		{"garbage string", `{"contrast": "lots"}`, func(s Settings) bool { return s.Contrast == 1 }},
		{"null field", `{"gamma": null}`, func(s Settings) bool { return s.Gamma == 1 }},
		{"bool field", `{"hue": true}`, func(s Settings) bool { return s.Hue == 0 }},
		{"object field", `{"vibrance": {"v": 2}}`, func(s Settings) bool { return s.Vibrance == 1 }},
		{"fractional resolution", `{"resolution": 17.9}`, func(s Settings) bool { return s.Resolution == 17 }},
		{"string resolution", `{"resolution": "65"}`, func(s Settings) bool { return s.Resolution == 65 }},
		{"curves not an object", `{"curves": [1]}`, func(s Settings) bool { return s.Curves.R.IsIdentity() }},
		{"curve not an array", `{"curves": {"g": "up"}}`, func(s Settings) bool { return s.Curves.G.IsIdentity() }},
		{"bad curve point dropped", `{"curves": {"b": [{"x": "a", "y": 0}, {"x": 0.2, "y": 0.5}]}}`,
			func(s Settings) bool { return len(s.Curves.B.Points()) == 1 && s.Curves.B.Eval(0) == 0.5 }},
		{"empty curve is identity", `{"curves": {"master": []}}`,
			func(s Settings) bool { return s.Curves.Master.Eval(0.3) == 0.3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ParseSettings([]byte(tt.data))
			if !tt.check(s) {
				t.Errorf("unexpected settings for %s: %+v", tt.data, s)
			}
		})
	}
}

func TestSettings_JSONRoundTrip(t *testing.T) {
	in := DefaultSettings()
	in.Exposure = -1
	in.Hue = 45
	in.Resolution = 17
	in.Curves.G = NewCurve(Point{0, 0.05}, Point{0.5, 0.6}, Point{1, 1})

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Exposure != -1 || out.Hue != 45 || out.Resolution != 17 {
		t.Errorf("scalar fields lost: %+v", out)
	}
	if got := out.Curves.G.Eval(0.5); got != 0.6 {
		t.Errorf("green curve lost: Eval(0.5) = %v", got)
	}
}

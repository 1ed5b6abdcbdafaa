package grade

import (
	"math"
	"testing"
)

func TestCurve_Eval(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		x      float64
		want   float64
	}{
		{"identity low", []Point{{0, 0}, {1, 1}}, 0.25, 0.25},
		{"identity high", []Point{{0, 0}, {1, 1}}, 0.9, 0.9},
		{"single point before", []Point{{0.2, 0.5}}, 0.0, 0.5},
		{"single point after", []Point{{0.2, 0.5}}, 0.8, 0.5},
		{"flat below first", []Point{{0.2, 0.1}, {0.8, 0.9}}, 0.1, 0.1},
		{"flat above last", []Point{{0.2, 0.1}, {0.8, 0.9}}, 0.95, 0.9},
		{"midpoint", []Point{{0.2, 0.1}, {0.8, 0.9}}, 0.5, 0.5},
		{"unsorted input", []Point{{1, 1}, {0.5, 0.25}, {0, 0}}, 0.75, 0.625},
		{"at control point", []Point{{0, 0}, {0.5, 0.8}, {1, 1}}, 0.5, 0.8},
		{"inverted", []Point{{0, 1}, {1, 0}}, 0.3, 0.7},
		{"x beyond unit", []Point{{0, 0}, {1, 1}}, 1.7, 1},
		{"x below zero", []Point{{0, 0.2}, {1, 1}}, -0.4, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCurve(tt.points...).Eval(tt.x)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestCurve_Empty(t *testing.T) {
	c := NewCurve()
	for _, x := range []float64{0, 0.3, 1} {
		if got := c.Eval(x); got != x {
			t.Errorf("empty curve Eval(%v) = %v", x, got)
		}
	}
	if !c.IsIdentity() {
		t.Error("empty curve should be an identity")
	}
}

func TestCurve_DuplicateX(t *testing.T) {
	c := NewCurve(Point{0, 0}, Point{0.5, 0.2}, Point{0.5, 0.8}, Point{1, 1})
	got := c.Eval(0.5 + 1e-12)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("Eval near a vertical step returned %v", got)
	}
	if got < 0.2 || got > 1 {
		t.Errorf("Eval near a vertical step = %v, want within [0.2, 1]", got)
	}
}

func TestNewCurve_ClampsPoints(t *testing.T) {
	c := NewCurve(Point{-1, 2}, Point{3, -5})
	ps := c.Points()
	if ps[0] != (Point{0, 1}) || ps[1] != (Point{1, 0}) {
		t.Errorf("clamped points = %+v", ps)
	}
}

func TestCurve_IsIdentity(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   bool
	}{
		{"default", []Point{{0, 0}, {1, 1}}, true},
		{"extra diagonal point", []Point{{0, 0}, {0.4, 0.4}, {1, 1}}, true},
		{"bent", []Point{{0, 0}, {0.4, 0.5}, {1, 1}}, false},
		{"lifted blacks", []Point{{0, 0.1}, {1, 1}}, false},
		{"single point", []Point{{0.2, 0.5}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCurve(tt.points...).IsIdentity(); got != tt.want {
				t.Errorf("IsIdentity = %v, want %v", got, tt.want)
			}
		})
	}
}

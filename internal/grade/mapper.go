package grade

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// Map pushes one RGB triple through the grade and returns the result in
// [0,1]. Map is pure and safe for concurrent use.
func (s Settings) Map(r, g, b float64) (float64, float64, float64) {
	// exposure
	k := math.Exp2(s.Exposure)
	r, g, b = r*k, g*k, b*k

	// contrast around mid-gray
	r = 0.5 + (r-0.5)*s.Contrast
	g = 0.5 + (g-0.5)*s.Contrast
	b = 0.5 + (b-0.5)*s.Contrast

	// gamma
	inv := 1 / math.Max(s.Gamma, minGamma)
	r, g, b = gammaPow(r, inv), gammaPow(g, inv), gammaPow(b, inv)

	r, g, b = s.hsl(r, g, b)

	// per-channel curves, then master
	r = s.Curves.R.Eval(r)
	g = s.Curves.G.Eval(g)
	b = s.Curves.B.Eval(b)
	r = s.Curves.Master.Eval(r)
	g = s.Curves.Master.Eval(g)
	b = s.Curves.Master.Eval(b)

	return lut.Clamp(r, 0, 1), lut.Clamp(g, 0, 1), lut.Clamp(b, 0, 1)
}

// gammaPow raises x to inv. A negative x is only floored at zero when inv is
// fractional and the power has no real value.
func gammaPow(x, inv float64) float64 {
	if x < 0 && inv != math.Trunc(inv) {
		x = 0
	}
	return math.Pow(x, inv)
}

// hslEpsilon keeps the lightness and hue divisions finite. Channels are not
// clamped before this step, so lightness may leave [0,1].
const hslEpsilon = 1e-6

// hsl applies hue rotation, saturation and vibrance on unclamped RGB.
func (s Settings) hsl(r, g, b float64) (float64, float64, float64) {
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	l := (mx + mn) / 2
	d := mx - mn

	var h, sat float64
	if d != 0 {
		sat = d / (1 - math.Abs(2*l-1) + hslEpsilon)
		switch mx {
		case r:
			h = floorMod((g-b)/(d+hslEpsilon), 6)
		case g:
			h = (b-r)/(d+hslEpsilon) + 2
		default:
			h = (r-g)/(d+hslEpsilon) + 4
		}
		h *= 60
	}

	h = floorMod(h+s.Hue, 360)

	boost := s.Saturation * (1 + (s.Vibrance-1)*(1-sat))
	sat = lut.Clamp(sat*boost, 0, 1)

	// colorful.Hsl reconstructs max = l + c/2 and min = l - c/2 with
	// c = (1-|2l-1|)*sat, which holds for any l.
	out := colorful.Hsl(h, sat, l)
	return out.R, out.G, out.B
}

// floorMod returns x mod m with the sign of m.
func floorMod(x, m float64) float64 {
	return x - m*math.Floor(x/m)
}

package grade

import (
	"sort"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// curveMinSpan keeps interpolation finite between points sharing an x.
const curveMinSpan = 1e-6

// Point is a tone curve control point in [0,1]².
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is a piecewise-linear tone curve. Points are kept sorted by X.
type Curve struct {
	points []Point
}

// IdentityCurve returns the curve through (0,0) and (1,1).
func IdentityCurve() Curve {
	return Curve{points: []Point{{0, 0}, {1, 1}}}
}

// NewCurve builds a curve from control points. Coordinates are clamped to
// [0,1] and the points sorted by X; points with equal X keep their order.
// A curve without points maps every input to itself.
func NewCurve(points ...Point) Curve {
	ps := make([]Point, len(points))
	for i, p := range points {
		ps[i] = Point{X: lut.Clamp(p.X, 0, 1), Y: lut.Clamp(p.Y, 0, 1)}
	}
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].X < ps[j].X })
	return Curve{points: ps}
}

// Points returns a copy of the control points in X order.
func (c Curve) Points() []Point {
	out := make([]Point, len(c.points))
	copy(out, c.points)
	return out
}

// IsIdentity reports whether the curve leaves every value in [0,1] unchanged.
func (c Curve) IsIdentity() bool {
	if len(c.points) == 0 {
		return true
	}
	first, last := c.points[0], c.points[len(c.points)-1]
	if first.X != 0 || first.Y != 0 || last.X != 1 || last.Y != 1 {
		return false
	}
	for _, p := range c.points {
		if p.X != p.Y {
			return false
		}
	}
	return true
}

// Eval returns the curve value at x. Before the first point and after the
// last one the curve is flat; in between it interpolates linearly.
func (c Curve) Eval(x float64) float64 {
	ps := c.points
	if len(ps) == 0 {
		return x
	}
	if x <= ps[0].X {
		return ps[0].Y
	}
	last := ps[len(ps)-1]
	if x >= last.X {
		return last.Y
	}

	// first point strictly right of x; ps[i-1].X <= x < ps[i].X
	i := sort.Search(len(ps), func(i int) bool { return ps[i].X > x })
	a, b := ps[i-1], ps[i]
	span := b.X - a.X
	if span < curveMinSpan {
		span = curveMinSpan
	}
	t := (x - a.X) / span
	return a.Y*(1-t) + b.Y*t
}

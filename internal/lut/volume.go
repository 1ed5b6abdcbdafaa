package lut

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

// MinSize and MaxSize bound the lattice edge of a Volume. 256³ nodes is far
// beyond any table in use and keeps node counts well inside int.
const (
	MinSize = 2
	MaxSize = 256
)

// minSpan keeps domain normalization finite when DomainMax equals DomainMin.
const minSpan = 1e-6

// Triple is an RGB value or a per-channel vector such as a domain bound.
type Triple struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// UnitMin and UnitMax are the default domain bounds.
var (
	UnitMin = Triple{0, 0, 0}
	UnitMax = Triple{1, 1, 1}
)

// Volume is an immutable N×N×N RGB lookup table.
type Volume struct {
	size      int
	nodes     []float32 // 3 values per node, cube order
	domainMin Triple
	domainMax Triple

	// float32 copies of the domain for the sampling hot path
	lo   [3]float32
	span [3]float32
}

// New builds a Volume of the given edge size from nodes, a flat slice of
// 3*size³ values in cube order (R fastest). The slice is copied.
func New(size int, nodes []float32, domainMin, domainMax Triple) (*Volume, error) {
	if size < MinSize {
		return nil, fmt.Errorf("lut size %d is below the minimum of %d", size, MinSize)
	}
	if size > MaxSize {
		return nil, fmt.Errorf("lut size %d is above the maximum of %d", size, MaxSize)
	}
	want := 3 * size * size * size
	if len(nodes) != want {
		return nil, fmt.Errorf("lut of size %d needs %d values, got %d", size, want, len(nodes))
	}

	v := &Volume{
		size:      size,
		nodes:     make([]float32, want),
		domainMin: domainMin,
		domainMax: domainMax,
	}
	copy(v.nodes, nodes)

	mins := [3]float64{domainMin.R, domainMin.G, domainMin.B}
	maxs := [3]float64{domainMax.R, domainMax.G, domainMax.B}
	for c := 0; c < 3; c++ {
		v.lo[c] = float32(mins[c])
		v.span[c] = float32(math.Max(maxs[c]-mins[c], minSpan))
	}
	return v, nil
}

// Identity returns a Volume that maps every node of the unit cube to itself.
// A size outside [MinSize, MaxSize] is clamped into that range.
func Identity(size int) *Volume {
	size = Clamp(size, MinSize, MaxSize)
	nodes := make([]float32, 3*size*size*size)
	step := float32(size - 1)
	i := 0
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				nodes[i] = float32(r) / step
				nodes[i+1] = float32(g) / step
				nodes[i+2] = float32(b) / step
				i += 3
			}
		}
	}
	v, _ := New(size, nodes, UnitMin, UnitMax)
	return v
}

// Index returns the flat node index of lattice position (r, g, b).
func Index(size, r, g, b int) int {
	return (b*size+g)*size + r
}

// NodeCoord returns the unit-cube coordinate of lattice index i for a lattice
// of the given edge size.
func NodeCoord(i, size int) float64 {
	return float64(i) / float64(size-1)
}

// Size returns the lattice edge N.
func (v *Volume) Size() int { return v.size }

// Len returns the number of nodes, N³.
func (v *Volume) Len() int { return v.size * v.size * v.size }

// DomainMin returns the lower input bound.
func (v *Volume) DomainMin() Triple { return v.domainMin }

// DomainMax returns the upper input bound.
func (v *Volume) DomainMax() Triple { return v.domainMax }

// At returns the node stored at lattice position (r, g, b). Positions outside
// the lattice are clamped to its edge.
func (v *Volume) At(r, g, b int) Triple {
	last := v.size - 1
	i := 3 * Index(v.size, Clamp(r, 0, last), Clamp(g, 0, last), Clamp(b, 0, last))
	return Triple{
		R: float64(v.nodes[i]),
		G: float64(v.nodes[i+1]),
		B: float64(v.nodes[i+2]),
	}
}

// Node returns the i-th node in cube order.
func (v *Volume) Node(i int) Triple {
	i *= 3
	return Triple{
		R: float64(v.nodes[i]),
		G: float64(v.nodes[i+1]),
		B: float64(v.nodes[i+2]),
	}
}

// Equal reports whether o has the same size and domain as v and every node
// matches within tol.
func (v *Volume) Equal(o *Volume, tol float64) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.size != o.size || v.domainMin != o.domainMin || v.domainMax != o.domainMax {
		return false
	}
	for i := range v.nodes {
		if math.Abs(float64(v.nodes[i])-float64(o.nodes[i])) > tol {
			return false
		}
	}
	return true
}

// Interpolate looks up an input color by trilinear interpolation of the 8
// lattice nodes surrounding it. Inputs are expressed in the volume's domain;
// anything outside it is clamped to the lattice edge.
func (v *Volume) Interpolate(r, g, b float32) (float32, float32, float32) {
	n := v.size
	scale := float32(n - 1)

	fr := Clamp((r-v.lo[0])/v.span[0], 0, 1) * scale
	fg := Clamp((g-v.lo[1])/v.span[1], 0, 1) * scale
	fb := Clamp((b-v.lo[2])/v.span[2], 0, 1) * scale

	// base index in [0, n-2] so the +1 neighbour always exists; a coordinate
	// of exactly 1.0 then lands on the last node with weight 1
	r0 := Clamp(int(math32.Floor(fr)), 0, n-2)
	g0 := Clamp(int(math32.Floor(fg)), 0, n-2)
	b0 := Clamp(int(math32.Floor(fb)), 0, n-2)
	dr := fr - float32(r0)
	dg := fg - float32(g0)
	db := fb - float32(b0)

	sr, sg, sb := 3, 3*n, 3*n*n
	base := 3 * Index(n, r0, g0, b0)
	p := v.nodes

	var out [3]float32
	for c := 0; c < 3; c++ {
		i := base + c
		c000 := p[i]
		c100 := p[i+sr]
		c010 := p[i+sg]
		c110 := p[i+sg+sr]
		c001 := p[i+sb]
		c101 := p[i+sb+sr]
		c011 := p[i+sb+sg]
		c111 := p[i+sb+sg+sr]

		c00 := c000 + (c100-c000)*dr
		c10 := c010 + (c110-c010)*dr
		c01 := c001 + (c101-c001)*dr
		c11 := c011 + (c111-c011)*dr

		c0 := c00 + (c10-c00)*dg
		c1 := c01 + (c11-c01)*dg

		out[c] = c0 + (c1-c0)*db
	}
	return out[0], out[1], out[2]
}

// Clamp limits x to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

package grade

import (
	"context"
	"time"

	"github.com/anthonynsimon/bild/parallel"
	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// Build evaluates the grade over a uniform lattice on [0,1]³ and returns it
// as a LUT. The edge size comes from s.Resolution, normalized by
// NormalizeResolution.
//
// The lattice is computed on worker goroutines. Build waits for them unless
// ctx is done first, in which case it returns ctx.Err() and the abandoned
// result is discarded when the workers finish.
func Build(ctx context.Context, s Settings) (*lut.Volume, error) {
	size, ok := NormalizeResolution(s.Resolution)
	if !ok && s.Resolution != 0 {
		log.WithFields(log.Fields{
			"requested": s.Resolution,
			"used":      size,
		}).Warn("unsupported LUT resolution, using default")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		v   *lut.Volume
		err error
	}
	done := make(chan result, 1)
	start := time.Now()

	go func() {
		v, err := lut.New(size, evaluate(s, size), lut.UnitMin, lut.UnitMax)
		done <- result{v, err}
	}()

	select {
	case res := <-done:
		if res.err == nil {
			log.WithFields(log.Fields{
				"size":    size,
				"elapsed": time.Since(start),
			}).Debug("built LUT from settings")
		}
		return res.v, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// evaluate fills the lattice in cube order. Planes of constant blue are
// spread across goroutines; each writes a disjoint part of the slice.
func evaluate(s Settings, size int) []float32 {
	nodes := make([]float32, 3*size*size*size)
	plane := size * size

	coords := make([]float64, size)
	for i := range coords {
		coords[i] = lut.NodeCoord(i, size)
	}

	parallel.Line(size, func(start, end int) {
		for bi := start; bi < end; bi++ {
			i := 3 * bi * plane
			for gi := 0; gi < size; gi++ {
				for ri := 0; ri < size; ri++ {
					r, g, b := s.Map(coords[ri], coords[gi], coords[bi])
					nodes[i] = float32(r)
					nodes[i+1] = float32(g)
					nodes[i+2] = float32(b)
					i += 3
				}
			}
		}
	})
	return nodes
}

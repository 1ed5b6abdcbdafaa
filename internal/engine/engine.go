// Package engine composes the LUT codec, the procedural builder and the
// sampler into the three operations the server exposes.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cube-lut-mcp/internal/cube"
	"github.com/ironsheep/cube-lut-mcp/internal/grade"
	"github.com/ironsheep/cube-lut-mcp/internal/lut"
	"github.com/ironsheep/cube-lut-mcp/internal/sample"
)

// CubeFilename is the suggested name for a generated cube file.
const CubeFilename = "custom.cube"

// CubeTitle is written into the TITLE line of generated cube files.
const CubeTitle = "custom"

// Engine runs LUT operations with a fixed sampler. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	sampler sample.Sampler
}

// New returns an engine using s, or the process default sampler when s is
// nil.
func New(s sample.Sampler) *Engine {
	if s == nil {
		s = sample.Default()
	}
	return &Engine{sampler: s}
}

// Sampler returns the sampling strategy in use.
func (e *Engine) Sampler() sample.Sampler {
	return e.sampler
}

// ApplyExternalLut parses cubeText and applies it to img at the given
// strength.
func (e *Engine) ApplyExternalLut(img image.Image, cubeText string, strength float64) (image.Image, error) {
	v, err := parseCube(cubeText)
	if err != nil {
		return nil, err
	}
	return e.apply(img, v, strength), nil
}

// ApplyExternalLutBatch parses cubeText once and applies it to every image
// in order. It stops between images once ctx is done.
func (e *Engine) ApplyExternalLutBatch(ctx context.Context, imgs []image.Image, cubeText string, strength float64) ([]image.Image, error) {
	v, err := parseCube(cubeText)
	if err != nil {
		return nil, err
	}

	out := make([]image.Image, 0, len(imgs))
	for _, img := range imgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.apply(img, v, strength))
	}
	return out, nil
}

func parseCube(text string) (*lut.Volume, error) {
	v, err := cube.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid cube file: %w", err)
	}
	return v, nil
}

func (e *Engine) apply(img image.Image, v *lut.Volume, strength float64) image.Image {
	start := time.Now()
	out := e.sampler.Apply(img, v, strength)
	log.WithFields(log.Fields{
		"sampler":  e.sampler.Name(),
		"size":     v.Size(),
		"strength": sample.NormalizeStrength(strength),
		"elapsed":  time.Since(start),
	}).Debug("applied LUT")
	return out
}

// GenerateCube builds a LUT from s and returns it as cube text.
func (e *Engine) GenerateCube(ctx context.Context, s grade.Settings) ([]byte, error) {
	v, err := grade.Build(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to build LUT: %w", err)
	}
	var buf bytes.Buffer
	if err := cube.Encode(&buf, v, CubeTitle); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PreviewWithSettings builds a LUT from s and applies it to img at full
// strength.
func (e *Engine) PreviewWithSettings(ctx context.Context, img image.Image, s grade.Settings) (image.Image, error) {
	v, err := grade.Build(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to build LUT: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.sampler.Apply(img, v, 1), nil
}

package sample

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/cube-lut-mcp/internal/lut"
)

// Sampler applies a LUT to an image at a blend strength in [0,1]. The input
// image is never modified.
type Sampler interface {
	Name() string
	Apply(img image.Image, v *lut.Volume, strength float64) image.Image
}

// Serial samples every row on the calling goroutine.
type Serial struct{}

// Name implements Sampler.
func (Serial) Name() string { return StrategySerial }

// Apply implements Sampler.
func (Serial) Apply(img image.Image, v *lut.Volume, strength float64) image.Image {
	return apply(img, v, strength, func(n int, fn func(start, end int)) { fn(0, n) })
}

// Parallel spreads rows across goroutines.
type Parallel struct{}

// Name implements Sampler.
func (Parallel) Name() string { return StrategyParallel }

// Apply implements Sampler.
func (Parallel) Apply(img image.Image, v *lut.Volume, strength float64) image.Image {
	return apply(img, v, strength, parallel.Line)
}

// Apply runs the process-wide default sampler.
func Apply(img image.Image, v *lut.Volume, strength float64) image.Image {
	return Default().Apply(img, v, strength)
}

// NormalizeStrength clamps strength to [0,1]. NaN counts as full strength.
func NormalizeStrength(strength float64) float64 {
	if math.IsNaN(strength) {
		return 1
	}
	return lut.Clamp(strength, 0, 1)
}

// rowFunc dispatches fn over the row range [0, n).
type rowFunc func(n int, fn func(start, end int))

func apply(img image.Image, v *lut.Volume, strength float64, rows rowFunc) image.Image {
	k := float32(NormalizeStrength(strength))

	if is16Bit(img) {
		dst := toNRGBA64(img)
		if k > 0 {
			rows(dst.Rect.Dy(), func(start, end int) { grade16(dst, v, k, start, end) })
		}
		return dst
	}

	dst := imaging.Clone(img)
	if k > 0 {
		rows(dst.Rect.Dy(), func(start, end int) { grade8(dst, v, k, start, end) })
	}
	return dst
}

func is16Bit(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		return true
	}
	return false
}

func toNRGBA64(img image.Image) *image.NRGBA64 {
	b := img.Bounds()
	dst := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))

	// draw goes through premultiplied color and would lose precision on
	// translucent pixels.
	if src, ok := img.(*image.NRGBA64); ok {
		n := 8 * b.Dx()
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+n], src.Pix[i:i+n])
		}
		return dst
	}

	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func blend(orig, sampled, k float32) float32 {
	return lut.Clamp(orig+(sampled-orig)*k, 0, 1)
}

func grade8(dst *image.NRGBA, v *lut.Volume, k float32, start, end int) {
	const scale = 255
	w := dst.Rect.Dx()
	for y := start; y < end; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+4*w]
		for i := 0; i < len(row); i += 4 {
			r := float32(row[i]) / scale
			g := float32(row[i+1]) / scale
			b := float32(row[i+2]) / scale
			sr, sg, sb := v.Interpolate(r, g, b)
			row[i] = uint8(blend(r, sr, k)*scale + 0.5)
			row[i+1] = uint8(blend(g, sg, k)*scale + 0.5)
			row[i+2] = uint8(blend(b, sb, k)*scale + 0.5)
		}
	}
}

func grade16(dst *image.NRGBA64, v *lut.Volume, k float32, start, end int) {
	const scale = 65535
	w := dst.Rect.Dx()
	for y := start; y < end; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+8*w]
		for i := 0; i < len(row); i += 8 {
			r := float32(get16(row[i:])) / scale
			g := float32(get16(row[i+2:])) / scale
			b := float32(get16(row[i+4:])) / scale
			sr, sg, sb := v.Interpolate(r, g, b)
			put16(row[i:], uint16(blend(r, sr, k)*scale+0.5))
			put16(row[i+2:], uint16(blend(g, sg, k)*scale+0.5))
			put16(row[i+4:], uint16(blend(b, sb, k)*scale+0.5))
		}
	}
}

// NRGBA64 stores each channel big-endian.
func get16(p []byte) uint16 { return uint16(p[0])<<8 | uint16(p[1]) }

func put16(p []byte, x uint16) {
	p[0] = uint8(x >> 8)
	p[1] = uint8(x)
}

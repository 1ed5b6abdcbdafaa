package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultQuality is the JPEG quality used when none is given, on the 0..1
// scale callers pass.
const DefaultQuality = 0.92

// ParseFormat maps a format name to a Format. "jpg" is an alias for jpeg;
// anything unrecognised is PNG.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg", "jpg":
		return FormatJPEG
	}
	return FormatPNG
}

// MimeType returns the MIME type of f.
func (f Format) MimeType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// JPEGQuality converts a 0..1 quality into the 1..100 scale of the JPEG
// encoder, rounding to the nearest step.
func JPEGQuality(q float64) int {
	if math.IsNaN(q) {
		q = DefaultQuality
	}
	return int(math.Max(1, math.Min(100, math.Round(q*100))))
}

// Encode encodes img as f. quality is on the 1..100 scale and ignored for
// PNG. 16-bit images are written as 16-bit PNG.
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	var err error
	switch f {
	case FormatJPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodedImage describes an encoded output image.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      Format `json:"format"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int    `json:"size_bytes"`
	ImageBase64 string `json:"image_base64,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
}

// NewEncodedImage describes data, the encoding of img as f, with the bytes
// attached as base64.
func NewEncodedImage(img image.Image, f Format, data []byte) *EncodedImage {
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		Format:      f,
		MimeType:    f.MimeType(),
		SizeBytes:   len(data),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
	}
}

// Fit downsizes img so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds, and maxDim <= 0, return img as is.
// The result of a resize is 8-bit.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

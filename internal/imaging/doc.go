// Package imaging handles image bytes for the MCP server.
//
// It decodes input images (PNG, JPEG, GIF, WebP, BMP, TIFF) into standard Go
// image.Image values with EXIF orientation applied, and encodes results as
// PNG or JPEG. The LUT packages never see encoded bytes; everything they
// receive passes through here first.
//
// # Bit Depth
//
// Decoding keeps the native type of the image, so 16-bit PNG and TIFF input
// stays 16-bit through LUT application and is written back as 16-bit PNG.
// JPEG output is always 8-bit.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading
//   - Data that is not a supported image
//   - Invalid base64 input
//   - Encoding errors during image output
package imaging

// Package grade synthesizes 3D LUTs from photographic adjustment settings.
//
// Settings describes exposure, contrast, gamma, hue, saturation, vibrance and
// four tone curves. Settings.Map pushes one RGB triple through the
// adjustments and Build evaluates Map over a uniform lattice to produce a
// lut.Volume that can be exported as a cube file or applied to an image.
//
// # Pipeline Order
//
// Map applies the adjustments in a fixed order:
//
//  1. Exposure: multiply by 2^exposure
//  2. Contrast: scale around mid-gray 0.5
//  3. Gamma: raise to 1/gamma
//  4. Hue, saturation and vibrance in HSL space, on unclamped values
//  5. Red, green and blue curves, then the master curve
//  6. Clamp to [0,1]
//
// Reordering the steps changes the output.
//
// # Leniency
//
// ParseSettings never fails. Missing or unusable fields fall back to their
// defaults so that any settings payload produces a LUT.
package grade

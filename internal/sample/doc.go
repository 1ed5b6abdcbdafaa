// Package sample applies a 3D LUT to an image.
//
// Each pixel is normalized to [0,1], looked up in the LUT by trilinear
// interpolation and blended with the original by a strength factor:
//
//	out = orig + (lut(orig) - orig) * strength
//
// Results are written to a new image with the dimensions of the input. 8-bit
// sources produce *image.NRGBA and 16-bit sources *image.NRGBA64; alpha is
// copied through and color math runs on straight (un-premultiplied) values.
//
// Two strategies implement Sampler: Serial walks the image on the calling
// goroutine, Parallel partitions rows across GOMAXPROCS goroutines. Both
// produce identical output. Detect reports what the process can use and is
// computed once; New picks a strategy from it.
package sample

// Package lut defines the in-memory 3D color lookup table shared by the cube
// codec, the procedural builder and the sampling engine.
//
// # Layout
//
// A Volume holds N×N×N RGB nodes. The three lattice axes map to the input
// (R, G, B) channels respectively and nodes are stored in cube file order:
// the flat node index is
//
//	b*N*N + g*N + r
//
// so R varies fastest. Parsed and synthesized volumes share this layout and
// therefore behave identically under sampling.
//
// # Domain
//
// DomainMin and DomainMax describe the per-channel input range the lattice
// covers. Inputs are normalized against the domain and clamped to [0,1]
// before lookup, so out-of-range pixels address the lattice edge instead of
// indexing outside it.
//
// # Immutability
//
// A Volume never changes after construction. New copies the node data it is
// given and the type only exposes read accessors, so a Volume may be shared
// freely between goroutines.
package lut

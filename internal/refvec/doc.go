// Package refvec holds small reference containers used to exercise the
// conformance verifier.
//
// Fixed and Paged honor every pinning guarantee. Naive is a plain Go slice
// and reallocates on growth, so it must fail G1 once it outgrows its
// initial capacity. Faulty honors nothing it is told to sabotage.
//
// These types are test fixtures, not production containers.
package refvec

import "github.com/roach88/pinvec"

// Compile-time contract checks.
var (
	_ pinvec.PinnedVec[int]      = (*Fixed[int])(nil)
	_ pinvec.PinnedVec[int]      = (*Paged[int])(nil)
	_ pinvec.PinnedVec[int]      = (*Naive[int])(nil)
	_ pinvec.PinnedVec[int]      = (*Faulty[int])(nil)
	_ pinvec.CapacityStater      = (*Fixed[int])(nil)
	_ pinvec.CapacityStater      = (*Paged[int])(nil)
	_ pinvec.PointerIndexer[int] = (*Fixed[int])(nil)
	_ pinvec.PointerIndexer[int] = (*Paged[int])(nil)
	_ pinvec.Cloner[int]         = (*Fixed[int])(nil)
	_ pinvec.Swapper             = (*Fixed[int])(nil)
	_ pinvec.Swapper             = (*Paged[int])(nil)
	_ pinvec.Swapper             = (*Faulty[int])(nil)
	_ pinvec.Slicer[int]         = (*Fixed[int])(nil)
	_ pinvec.Slicer[int]         = (*Paged[int])(nil)
)

package conformance

import (
	"slices"

	"github.com/roach88/pinvec"
)

// lengthPlan returns the sorted base lengths to exercise: the boundary
// lengths 0 through 3, a doubling spread, the neighbors of every capacity
// boundary a sample container reveals while growing, and targetLen itself.
func lengthPlan(factory Factory, targetLen int, cfg config) []int {
	if cfg.lengths != nil {
		lengths := slices.DeleteFunc(append([]int(nil), cfg.lengths...), func(n int) bool { return n < 0 })
		slices.Sort(lengths)
		return slices.Compact(lengths)
	}

	target := max(targetLen, 0)
	lengths := []int{0, 1, 2, 3, target - 1, target}
	for n := 4; n < target; n *= 2 {
		lengths = append(lengths, n)
	}
	for _, b := range capacityBoundaries(factory, target) {
		lengths = append(lengths, b-1, b, b+1)
	}

	lengths = slices.DeleteFunc(lengths, func(n int) bool { return n < 0 || n > target })
	slices.Sort(lengths)
	return slices.Compact(lengths)
}

// capacityBoundaries grows a sample container to limit and returns every
// length at which it was full right before acquiring more capacity. A sample
// that panics (for example a fixed container out of room) ends discovery.
// A container reporting FixedCapacity through CapacityState is not grown:
// its only boundary is its current capacity.
func capacityBoundaries(factory Factory, limit int) (boundaries []int) {
	defer func() {
		// Best effort: the scenarios surface the panic themselves.
		_ = recover()
	}()

	sample := factory()
	prevCap := capacityOf(sample)
	if prevCap > 0 {
		boundaries = append(boundaries, prevCap)
	}
	if cs, ok := sample.(pinvec.CapacityStater); ok && !cs.CapacityState().CanGrow() {
		return boundaries
	}
	for i := 0; i < limit; i++ {
		sample.Push(i)
		if c := capacityOf(sample); c != prevCap {
			boundaries = append(boundaries, sample.Len()-1)
			prevCap = c
		}
	}
	return boundaries
}

// capacityOf prefers CapacityState over Cap when the container offers it.
func capacityOf(c pinvec.PinnedVec[int]) int {
	if cs, ok := c.(pinvec.CapacityStater); ok {
		return cs.CapacityState().Current
	}
	return c.Cap()
}

// sweep returns the values of [lo, hi] to try. Ranges of at most limit
// values are returned whole; larger ranges are sampled at both ends, the
// middle and evenly in between.
func sweep(lo, hi, limit int) []int {
	if hi < lo {
		return nil
	}
	if hi-lo+1 <= limit {
		out := make([]int, 0, hi-lo+1)
		for x := lo; x <= hi; x++ {
			out = append(out, x)
		}
		return out
	}

	out := []int{lo, lo + 1, lo + 2, (lo + hi) / 2, hi - 2, hi - 1, hi}
	slots := max(limit-len(out), 1)
	step := max((hi-lo)/slots, 1)
	for x := lo + step; x < hi && len(out) < limit; x += step {
		out = append(out, x)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// growthChunks splits n into alternating single pushes and extends of
// increasing size: 1, 2, 1, 3, 1, 4, ... with the final chunk clipped.
func growthChunks(n int) []int {
	var chunks []int
	next := 2
	for total, i := 0, 0; total < n; i++ {
		size := 1
		if i%2 == 1 {
			size = next
			next++
		}
		size = min(size, n-total)
		chunks = append(chunks, size)
		total += size
	}
	return chunks
}

// chunkMutation describes a growth chunk at length n.
func chunkMutation(n, size int) pinvec.Mutation {
	if size == 1 {
		return pinvec.Push(n)
	}
	return pinvec.Extend(n, size)
}

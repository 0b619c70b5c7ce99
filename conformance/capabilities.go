package conformance

import (
	"fmt"

	"github.com/roach88/pinvec"
)

// Capability names used in reports.
const (
	CapabilityCapacityState = "capacity_state"
	CapabilityPointerIndex  = "pointer_index"
	CapabilityClone         = "clone"
	CapabilitySwap          = "swap"
	CapabilitySlices        = "slices"
)

// mismatch is a failed capability check.
type mismatch struct {
	expected string
	actual   string
}

func mismatchf(expected, format string, args ...any) *mismatch {
	return &mismatch{expected: expected, actual: fmt.Sprintf(format, args...)}
}

// verifyCapabilities checks the optional interfaces the container
// implements at length n. Each capability takes one sequence number; every
// individual check counts in Report.Capabilities.
func (v *verifier) verifyCapabilities(n int) {
	sample := v.factory()

	if _, ok := sample.(pinvec.CapacityStater); ok {
		seq := v.clock.Next()
		v.capabilityCheck(seq, CapabilityCapacityState, "capacity_state()", n, checkCapacityState)
	}
	if _, ok := sample.(pinvec.PointerIndexer[int]); ok {
		seq := v.clock.Next()
		v.capabilityCheck(seq, CapabilityPointerIndex, "index_of(get(i)) around pop", n, checkPointerIndex)
	}
	if _, ok := sample.(pinvec.Cloner[int]); ok {
		seq := v.clock.Next()
		v.capabilityCheck(seq, CapabilityClone, "clone()", n, checkClone)
	}
	if _, ok := sample.(pinvec.Swapper); ok {
		seq := v.clock.Next()
		for _, a := range sweep(0, n-1, v.cfg.sweepLimit) {
			b := n - 1 - a
			v.capabilityCheck(seq, CapabilitySwap, fmt.Sprintf("swap(%d, %d)", a, b), n,
				func(c pinvec.PinnedVec[int]) *mismatch { return checkSwap(c, a, b) })
		}
		v.capabilityCheck(seq, CapabilitySwap, fmt.Sprintf("swap(0, %d)", n), n,
			func(c pinvec.PinnedVec[int]) *mismatch { return checkSwapRejected(c, 0, n) })
	}
	if _, ok := sample.(pinvec.Slicer[int]); ok {
		seq := v.clock.Next()
		for _, r := range [][2]int{{0, n}, {0, n / 2}, {n / 2, n}} {
			v.capabilityCheck(seq, CapabilitySlices, fmt.Sprintf("slices(%d, %d)", r[0], r[1]), n,
				func(c pinvec.PinnedVec[int]) *mismatch { return checkSlices(c, r[0], r[1]) })
		}
		v.capabilityCheck(seq, CapabilitySlices, fmt.Sprintf("slices(0, %d)", n+1), n,
			func(c pinvec.PinnedVec[int]) *mismatch { return checkSlicesRejected(c, 0, n+1) })
	}
}

// capabilityCheck runs fn on a fresh container of length n and records the
// mismatch it returns. A panic is recorded as a mismatch too.
func (v *verifier) capabilityCheck(seq int64, capability, check string, n int, fn func(pinvec.PinnedVec[int]) *mismatch) {
	v.report.Capabilities[capability]++
	defer func() {
		if r := recover(); r != nil {
			v.capabilityIssue(seq, capability, check, n, mismatch{expected: "no panic", actual: panicMessage(r)})
		}
	}()

	c := v.factory()
	v.grow(c, n)
	if m := fn(c); m != nil {
		v.capabilityIssue(seq, capability, check, n, *m)
	}
}

func (v *verifier) capabilityIssue(seq int64, capability, check string, n int, m mismatch) {
	v.report.CapabilityIssues = append(v.report.CapabilityIssues, CapabilityIssue{
		Seq:        seq,
		Capability: capability,
		Check:      check,
		N:          n,
		Expected:   m.expected,
		Actual:     m.actual,
	})
	v.logger.Debug("capability issue", "capability", capability, "check", check, "n", n,
		"expected", m.expected, "actual", m.actual)
}

// checkCapacityState compares CapacityState with Cap and Len.
func checkCapacityState(c pinvec.PinnedVec[int]) *mismatch {
	st := c.(pinvec.CapacityStater).CapacityState()
	switch {
	case st.Kind != pinvec.FixedCapacity && st.Kind != pinvec.DynamicCapacity:
		return mismatchf("fixed or dynamic kind", "%s", st.Kind)
	case st.Current != c.Cap():
		return mismatchf(fmt.Sprintf("current = cap() = %d", c.Cap()), "current = %d", st.Current)
	case st.Current < c.Len():
		return mismatchf(fmt.Sprintf("current >= len() = %d", c.Len()), "current = %d", st.Current)
	case st.Kind == pinvec.FixedCapacity && st.MaxConcurrent != st.Current:
		return mismatchf("max_concurrent = current", "%s", st)
	case st.Kind == pinvec.DynamicCapacity && st.MaxConcurrent < st.Current:
		return mismatchf("max_concurrent >= current", "%s", st)
	}
	return nil
}

// checkPointerIndex maps every slot pointer back to its position, then pops
// and checks that the popped slot is no longer contained while the slots
// that stayed in place still map to their positions.
func checkPointerIndex(c pinvec.PinnedVec[int]) *mismatch {
	ix := c.(pinvec.PointerIndexer[int])
	n := c.Len()
	slots, err := capture(c, n)
	if err != nil {
		return &mismatch{expected: "distinct slots", actual: err.Error()}
	}
	if m := indexMatches(ix, slots, nil); m != nil {
		return m
	}

	outside := -1
	if ix.ContainsPointer(&outside) {
		return &mismatch{expected: "foreign pointer not contained", actual: "contained"}
	}
	if n == 0 {
		return nil
	}

	if _, ok := c.Pop(); !ok {
		return &mismatch{expected: "pop to succeed", actual: "reported empty"}
	}
	if ix.ContainsPointer(slots[n-1]) {
		return mismatchf(fmt.Sprintf("popped slot %d not contained", n-1), "contained")
	}
	// Positions the pop relocated are a G2 matter, not an index one.
	return indexMatches(ix, slots[:n-1], c)
}

// indexMatches checks IndexOf and ContainsPointer for every slot. With c
// set, slots no longer returned by c.Get are skipped.
func indexMatches(ix pinvec.PointerIndexer[int], slots []*int, c pinvec.PinnedVec[int]) *mismatch {
	for i, p := range slots {
		if c != nil {
			if now, err := c.Get(i); err != nil || now != p {
				continue
			}
		}
		got, ok := ix.IndexOf(p)
		switch {
		case !ok:
			return mismatchf(fmt.Sprintf("index_of(get(%d)) = %d", i, i), "not found")
		case got != i:
			return mismatchf(fmt.Sprintf("index_of(get(%d)) = %d", i, i), "%d", got)
		case !ix.ContainsPointer(p):
			return mismatchf(fmt.Sprintf("get(%d) contained", i), "not contained")
		}
	}
	return nil
}

// checkClone checks that a clone holds equal values in fresh storage and
// that writing through the clone leaves the original untouched.
func checkClone(c pinvec.PinnedVec[int]) *mismatch {
	n := c.Len()
	orig, err := capture(c, n)
	if err != nil {
		return &mismatch{expected: "distinct slots", actual: err.Error()}
	}
	values := make([]int, n)
	for i, p := range orig {
		values[i] = *p
	}

	clone := c.(pinvec.Cloner[int]).Clone()
	if clone == nil {
		return &mismatch{expected: "a clone", actual: "nil"}
	}
	if clone.Len() != n {
		return mismatchf(fmt.Sprintf("clone of length %d", n), "length %d", clone.Len())
	}
	copies, err := capture(clone, n)
	if err != nil {
		return &mismatch{expected: "distinct clone slots", actual: err.Error()}
	}
	for i := range copies {
		if copies[i] == orig[i] {
			return mismatchf("fresh storage", "clone shares slot %d", i)
		}
		if *copies[i] != values[i] {
			return mismatchf(fmt.Sprintf("get(%d) = %d", i, values[i]), "%d", *copies[i])
		}
		*copies[i] = -values[i] - 1
	}
	for i, p := range orig {
		if *p != values[i] {
			return mismatchf(fmt.Sprintf("original get(%d) = %d after writing the clone", i, values[i]), "%d", *p)
		}
	}
	if c.Len() != n {
		return mismatchf(fmt.Sprintf("original length %d", n), "%d", c.Len())
	}
	return nil
}

// checkSwap checks that swap(a, b) exchanges the two values and moves no
// slot.
func checkSwap(c pinvec.PinnedVec[int], a, b int) *mismatch {
	n := c.Len()
	before, err := capture(c, n)
	if err != nil {
		return &mismatch{expected: "distinct slots", actual: err.Error()}
	}
	va, vb := *before[a], *before[b]

	if err := c.(pinvec.Swapper).Swap(a, b); err != nil {
		return mismatchf("no error", "error %q", err)
	}
	if c.Len() != n {
		return mismatchf(fmt.Sprintf("length %d", n), "length %d", c.Len())
	}
	after, err := capture(c, n)
	if err != nil {
		return &mismatch{expected: "distinct slots", actual: err.Error()}
	}
	for i := range before {
		if before[i] != after[i] {
			return mismatchf("every slot in place", "position %d moved %s -> %s",
				i, pinvec.TokenOf(before[i]), pinvec.TokenOf(after[i]))
		}
	}
	if *after[a] != vb || *after[b] != va {
		return mismatchf(fmt.Sprintf("get(%d) = %d, get(%d) = %d", a, vb, b, va),
			"get(%d) = %d, get(%d) = %d", a, *after[a], b, *after[b])
	}
	return nil
}

func checkSwapRejected(c pinvec.PinnedVec[int], a, b int) *mismatch {
	n := c.Len()
	err := c.(pinvec.Swapper).Swap(a, b)
	if expected, actual := expectErr(c, n, err, pinvec.ErrIndexOutOfRange); expected != actual {
		return &mismatch{expected: expected, actual: actual}
	}
	return nil
}

// checkSlices checks that the fragments of [begin, end) cover the range in
// order and alias the slots Get returns.
func checkSlices(c pinvec.PinnedVec[int], begin, end int) *mismatch {
	frags, err := c.(pinvec.Slicer[int]).Slices(begin, end)
	if err != nil {
		return mismatchf("no error", "error %q", err)
	}

	pos := begin
	for _, frag := range frags {
		for j := range frag {
			if pos >= end {
				return mismatchf(fmt.Sprintf("%d elements", end-begin), "more than %d", end-begin)
			}
			p, err := c.Get(pos)
			if err != nil {
				return mismatchf(fmt.Sprintf("get(%d) to succeed", pos), "error %q", err)
			}
			if p != &frag[j] {
				return mismatchf(fmt.Sprintf("fragment slot of position %d at %s", pos, pinvec.TokenOf(p)),
					"%s", pinvec.TokenOf(&frag[j]))
			}
			pos++
		}
	}
	if pos != end {
		return mismatchf(fmt.Sprintf("%d elements", end-begin), "%d", pos-begin)
	}
	return nil
}

func checkSlicesRejected(c pinvec.PinnedVec[int], begin, end int) *mismatch {
	n := c.Len()
	_, err := c.(pinvec.Slicer[int]).Slices(begin, end)
	if expected, actual := expectErr(c, n, err, pinvec.ErrRangeOutOfBounds); expected != actual {
		return &mismatch{expected: expected, actual: actual}
	}
	return nil
}

package conformance

import (
	"fmt"

	"github.com/roach88/pinvec"
)

// capture returns the slot pointers of positions [0, n) of c. Holding the
// pointers keeps the captured storage reachable, so an address can not be
// reused by a relocation while it is being compared. Two positions
// resolving to the same slot make identity meaningless and are reported as
// an error.
func capture(c pinvec.PinnedVec[int], n int) ([]*int, error) {
	slots := make([]*int, n)
	seen := make(map[pinvec.Token]int, n)
	for i := range slots {
		p, err := c.Get(i)
		if err != nil {
			return nil, fmt.Errorf("get(%d) on length %d: %w", i, c.Len(), err)
		}
		if p == nil {
			return nil, fmt.Errorf("get(%d) on length %d returned a nil pointer", i, c.Len())
		}
		tok := pinvec.TokenOf(p)
		if j, dup := seen[tok]; dup {
			return nil, fmt.Errorf("get(%d) and get(%d) on length %d return the same slot", j, i, c.Len())
		}
		seen[tok] = i
		slots[i] = p
	}
	return slots, nil
}

// expectedLen returns the length c must have after mut was applied.
func expectedLen(mut pinvec.Mutation) int {
	switch mut.Op {
	case pinvec.OpPush, pinvec.OpExtend, pinvec.OpInsert:
		return mut.N + mut.M
	case pinvec.OpRemove, pinvec.OpPop, pinvec.OpTruncate, pinvec.OpClear:
		return mut.N - mut.M
	default:
		return mut.N
	}
}

// check compares the protected prefix of c against the tokens captured
// before mut. It returns a violation when any protected position moved, and
// an error when c ended up with the wrong length and can not be compared.
func check(c pinvec.PinnedVec[int], mut pinvec.Mutation, before []*int) (*Violation, error) {
	if want, got := expectedLen(mut), c.Len(); got != want {
		return nil, fmt.Errorf("length after %s is %d, want %d", mut, got, want)
	}

	protected := min(mut.Protected(), len(before))
	after, err := capture(c, protected)
	if err != nil {
		return nil, err
	}
	return compare(mut, before[:protected], after), nil
}

// compare returns a violation describing the first moved position, or nil
// when before and after agree.
func compare(mut pinvec.Mutation, before, after []*int) *Violation {
	var violation *Violation
	for i := range before {
		if before[i] == after[i] {
			continue
		}
		if violation == nil {
			violation = &Violation{
				Guarantee: mut.Guarantee(),
				Op:        mut.Op,
				N:         mut.N,
				M:         mut.M,
				P:         mut.P,
				Protected: len(before),
				Position:  i,
				Before:    pinvec.TokenOf(before[i]),
				After:     pinvec.TokenOf(after[i]),
			}
		}
		violation.Moved++
	}
	return violation
}

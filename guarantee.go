package pinvec

import "fmt"

// Guarantee identifies one of the four pinning obligations.
type Guarantee int

const (
	G1GrowEnd Guarantee = iota + 1
	G2ShrinkEnd
	G3Insert
	G4Remove
)

// AllGuarantees returns G1 through G4 in order.
func AllGuarantees() []Guarantee {
	return []Guarantee{G1GrowEnd, G2ShrinkEnd, G3Insert, G4Remove}
}

func (g Guarantee) String() string {
	switch g {
	case G1GrowEnd, G2ShrinkEnd, G3Insert, G4Remove:
		return fmt.Sprintf("G%d", int(g))
	default:
		return fmt.Sprintf("Guarantee(%d)", int(g))
	}
}

// Describe returns a one-line statement of the obligation.
func (g Guarantee) Describe() string {
	switch g {
	case G1GrowEnd:
		return "growing at the end by m >= 1 keeps positions [0, n) in place"
	case G2ShrinkEnd:
		return "shrinking from the end by m keeps positions [0, n-m) in place"
	case G3Insert:
		return "inserting at earliest position p keeps positions [0, p) in place"
	case G4Remove:
		return "removing at earliest position p keeps positions [0, p) in place"
	default:
		return "unknown guarantee"
	}
}

// MarshalText encodes the guarantee as "G1".."G4".
func (g Guarantee) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText accepts "G1".."G4" (case-insensitive).
func (g *Guarantee) UnmarshalText(text []byte) error {
	parsed, err := ParseGuarantee(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGuarantee parses "G1".."G4".
func ParseGuarantee(s string) (Guarantee, error) {
	switch s {
	case "G1", "g1":
		return G1GrowEnd, nil
	case "G2", "g2":
		return G2ShrinkEnd, nil
	case "G3", "g3":
		return G3Insert, nil
	case "G4", "g4":
		return G4Remove, nil
	}
	return 0, fmt.Errorf("unknown guarantee %q: must be one of G1, G2, G3, G4", s)
}

// Op names a contract operation.
type Op string

const (
	OpGet      Op = "get"
	OpPush     Op = "push"
	OpExtend   Op = "extend"
	OpInsert   Op = "insert"
	OpRemove   Op = "remove"
	OpPop      Op = "pop"
	OpTruncate Op = "truncate"
	OpClear    Op = "clear"
	OpSwap     Op = "swap"
	OpSlices   Op = "slices"
)

// MutatingOps lists every mutating operation of the contract.
func MutatingOps() []Op {
	return []Op{OpPush, OpExtend, OpInsert, OpRemove, OpPop, OpTruncate, OpClear}
}

// ParseOp parses an operation name.
func ParseOp(s string) (Op, error) {
	op := Op(s)
	switch op {
	case OpGet, OpPush, OpExtend, OpInsert, OpRemove, OpPop, OpTruncate, OpClear:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Guarantee returns the obligation the operation carries. Get carries none
// and returns 0.
func (o Op) Guarantee() Guarantee {
	switch o {
	case OpPush, OpExtend:
		return G1GrowEnd
	case OpPop, OpTruncate, OpClear:
		return G2ShrinkEnd
	case OpInsert:
		return G3Insert
	case OpRemove:
		return G4Remove
	default:
		return 0
	}
}

// Mutation describes one applied operation in the terms of the guarantee
// predicates: N is the length before, M the number of elements added or
// removed, P the earliest affected position.
type Mutation struct {
	Op Op  `json:"op"`
	N  int `json:"n"`
	M  int `json:"m"`
	P  int `json:"p"`
}

// Guarantee returns the obligation that applies to the mutation.
func (m Mutation) Guarantee() Guarantee {
	return m.Op.Guarantee()
}

// Protected returns the length of the prefix [0, k) whose slots the
// mutation must leave unchanged.
func (m Mutation) Protected() int {
	return ProtectedPrefix(m.Guarantee(), m.N, m.M, m.P)
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s(n=%d, m=%d, p=%d)", m.Op, m.N, m.M, m.P)
}

// ProtectedPrefix evaluates a guarantee predicate. It returns k such that
// positions [0, k) must keep their identity tokens.
func ProtectedPrefix(g Guarantee, n, m, p int) int {
	var k int
	switch g {
	case G1GrowEnd:
		k = n
	case G2ShrinkEnd:
		k = n - m
	case G3Insert, G4Remove:
		k = min(p, n)
	}
	return max(k, 0)
}

// Push returns the mutation for appending one element at length n.
func Push(n int) Mutation { return Mutation{Op: OpPush, N: n, M: 1, P: n} }

// Extend returns the mutation for appending m elements at length n.
func Extend(n, m int) Mutation { return Mutation{Op: OpExtend, N: n, M: m, P: n} }

// Insert returns the mutation for inserting one element at p.
func Insert(n, p int) Mutation { return Mutation{Op: OpInsert, N: n, M: 1, P: p} }

// Remove returns the mutation for removing the element at p.
func Remove(n, p int) Mutation { return Mutation{Op: OpRemove, N: n, M: 1, P: p} }

// Pop returns the mutation for removing the last of n elements.
func Pop(n int) Mutation { return Mutation{Op: OpPop, N: n, M: 1, P: n - 1} }

// Truncate returns the mutation for shortening n elements to newLen.
func Truncate(n, newLen int) Mutation {
	return Mutation{Op: OpTruncate, N: n, M: n - newLen, P: newLen}
}

// Clear returns the mutation for removing all n elements.
func Clear(n int) Mutation { return Mutation{Op: OpClear, N: n, M: n, P: 0} }

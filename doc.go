// Package pinvec defines the capability contract for pinned-element
// containers: growable sequences whose elements never move in memory as a
// side effect of a mutation that does not target them.
//
// # Pinned Elements Guarantees
//
// Let a container hold n elements before a mutation:
//
//   - G1 (grow at end by m >= 1): positions [0, n) keep their slots.
//     Push and Extend.
//   - G2 (shrink from end by m in [1, n]): positions [0, n-m) keep their
//     slots. Pop, Truncate and Clear.
//   - G3 (insert m >= 1 elements, earliest at p <= n): positions [0, p) keep
//     their slots. Insert.
//   - G4 (remove elements, earliest at p < n): positions [0, p) keep their
//     slots. Remove.
//
// Positions outside the protected prefix carry no claim either way.
//
// The contract is a plain interface. Nothing in the type system enforces the
// guarantees; the conformance package verifies them empirically by comparing
// identity tokens captured before and after each mutation.
//
// # Caller Discipline
//
// A pointer obtained from Get stays valid across any mutation whose
// protected prefix covers its position. Callers must not hold pointers (or
// tokens) across a mutation that does not protect the position.
//
// Duplication is not part of the contract. Elements of a pinned container
// commonly point at each other, and a value copy would carry pointers into
// the source container. Implementations whose element types permit safe
// duplication may offer Cloner.
package pinvec

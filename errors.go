package pinvec

import (
	"errors"
	"fmt"
)

// Precondition sentinels. Returned wrapped in *PreconditionError.
var (
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInsertOutOfRange   = errors.New("insert position out of range")
	ErrTruncateOutOfRange = errors.New("truncate length out of range")
	ErrRangeOutOfBounds   = errors.New("range out of bounds")
)

// Growth sentinels. Returned (or panicked) wrapped in *GrowthError.
var (
	// ErrGrowOnlyAtCapacity reports a request to add capacity while unused
	// capacity remains.
	ErrGrowOnlyAtCapacity = errors.New("can only grow when at capacity")

	// ErrCannotGrowPinned reports that more capacity could not be obtained
	// without relocating existing elements.
	ErrCannotGrowPinned = errors.New("failed to grow while keeping elements pinned")
)

// PreconditionError is returned when a call violates the contract
// precondition of a single operation. It is unrelated to pinning.
type PreconditionError struct {
	Op    Op
	Index int // offending index, position or length argument
	Len   int // container length at the time of the call
	Err   error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s(%d) on length %d: %v", e.Op, e.Index, e.Len, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// GrowthError is raised when a container can not add capacity without
// breaking G1.
type GrowthError struct {
	Op  Op
	Len int
	Cap int
	Err error
}

// Error implements the error interface.
func (e *GrowthError) Error() string {
	return fmt.Sprintf("%s at length %d, capacity %d: %v", e.Op, e.Len, e.Cap, e.Err)
}

func (e *GrowthError) Unwrap() error {
	return e.Err
}

// CheckIndex returns a *PreconditionError unless i is in [0, n).
func CheckIndex(op Op, i, n int) error {
	if i < 0 || i >= n {
		return &PreconditionError{Op: op, Index: i, Len: n, Err: ErrIndexOutOfRange}
	}
	return nil
}

// CheckInsert returns a *PreconditionError unless p is in [0, n].
func CheckInsert(p, n int) error {
	if p < 0 || p > n {
		return &PreconditionError{Op: OpInsert, Index: p, Len: n, Err: ErrInsertOutOfRange}
	}
	return nil
}

// CheckTruncate returns a *PreconditionError unless newLen is in [0, n].
func CheckTruncate(newLen, n int) error {
	if newLen < 0 || newLen > n {
		return &PreconditionError{Op: OpTruncate, Index: newLen, Len: n, Err: ErrTruncateOutOfRange}
	}
	return nil
}

// CheckRange returns a *PreconditionError unless 0 <= begin <= end <= n.
// Index carries the offending bound.
func CheckRange(begin, end, n int) error {
	switch {
	case begin < 0 || begin > n:
		return &PreconditionError{Op: OpSlices, Index: begin, Len: n, Err: ErrRangeOutOfBounds}
	case end < begin || end > n:
		return &PreconditionError{Op: OpSlices, Index: end, Len: n, Err: ErrRangeOutOfBounds}
	}
	return nil
}

// IsPrecondition reports whether err is a contract precondition violation.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

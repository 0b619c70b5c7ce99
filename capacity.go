package pinvec

import "fmt"

// CapacityKind tells whether a container can acquire more capacity.
type CapacityKind int

const (
	// FixedCapacity means the current capacity is a hard limit.
	FixedCapacity CapacityKind = iota + 1

	// DynamicCapacity means the container can grow its capacity.
	DynamicCapacity
)

func (k CapacityKind) String() string {
	switch k {
	case FixedCapacity:
		return "fixed"
	case DynamicCapacity:
		return "dynamic"
	default:
		return fmt.Sprintf("CapacityKind(%d)", int(k))
	}
}

// CapacityState describes a container's capacity.
//
// MaxConcurrent is the number of elements that can be placed before the
// container has to touch its own bookkeeping structures (for a paged
// container, the page table). Beyond that point a concurrent wrapper must
// serialize growth. For fixed containers it equals Current.
type CapacityState struct {
	Kind          CapacityKind `json:"kind"`
	Current       int          `json:"current"`
	MaxConcurrent int          `json:"max_concurrent"`
}

// Fixed returns the state of a container that can never exceed capacity.
func Fixed(capacity int) CapacityState {
	return CapacityState{Kind: FixedCapacity, Current: capacity, MaxConcurrent: capacity}
}

// Dynamic returns the state of a growable container.
func Dynamic(current, maxConcurrent int) CapacityState {
	return CapacityState{Kind: DynamicCapacity, Current: current, MaxConcurrent: maxConcurrent}
}

// CanGrow reports whether the container may acquire capacity beyond Current.
func (s CapacityState) CanGrow() bool {
	return s.Kind == DynamicCapacity
}

func (s CapacityState) String() string {
	if s.Kind == FixedCapacity {
		return fmt.Sprintf("fixed(%d)", s.Current)
	}
	return fmt.Sprintf("dynamic(current=%d, max_concurrent=%d)", s.Current, s.MaxConcurrent)
}

package pinvec

// PinnedVec is the capability contract every pinned container implements.
//
// Each mutating method documents the guarantee it must honor. An
// implementation that can not honor an obligation must not be offered as a
// PinnedVec; it must never relocate protected elements silently.
type PinnedVec[T any] interface {
	// Len returns the number of elements.
	Len() int

	// Cap returns the number of elements the container can hold without
	// acquiring more storage.
	Cap() int

	// Get returns a pointer to the slot at position i.
	// Returns a *PreconditionError wrapping ErrIndexOutOfRange if i is not
	// in [0, Len()).
	Get(i int) (*T, error)

	// Push appends v. G1 with m = 1.
	Push(v T)

	// Extend appends all of vs in order. G1 with m = len(vs).
	Extend(vs []T)

	// Insert places v at position p, shifting later elements right.
	// G3 with earliest inserted position p. Returns ErrInsertOutOfRange if p
	// is not in [0, Len()].
	Insert(p int, v T) error

	// Remove deletes and returns the element at position p, shifting later
	// elements left. G4 with earliest removed position p. Returns
	// ErrIndexOutOfRange if p is not in [0, Len()).
	Remove(p int) (T, error)

	// Pop removes and returns the last element. G2 with m = 1.
	// Returns false when the container is empty.
	Pop() (T, bool)

	// Truncate shortens the container to n elements. G2 with m = Len()-n.
	// Truncate(Len()) is a no-op. Returns ErrTruncateOutOfRange if n is not
	// in [0, Len()].
	Truncate(n int) error

	// Clear removes every element. G2 with m = Len().
	Clear()
}

// CapacityStater is implemented by containers that can describe their
// capacity in more detail than Cap.
type CapacityStater interface {
	CapacityState() CapacityState
}

// PointerIndexer is implemented by containers that can map an element
// pointer back to its position without comparing values.
type PointerIndexer[T any] interface {
	// IndexOf returns the position of the slot ptr points at.
	IndexOf(ptr *T) (int, bool)

	// ContainsPointer reports whether ptr points into a live slot.
	ContainsPointer(ptr *T) bool
}

// Cloner is implemented by containers whose element type can be duplicated
// safely. The clone owns fresh storage.
type Cloner[T any] interface {
	Clone() PinnedVec[T]
}

// Swapper is implemented by containers that can exchange two elements in
// place. Swap moves values, never slots: every position keeps its token.
type Swapper interface {
	// Swap exchanges the values at positions a and b. Returns
	// ErrIndexOutOfRange unless both are in [0, Len()).
	Swap(a, b int) error
}

// Slicer is implemented by containers that can expose their storage
// directly.
type Slicer[T any] interface {
	// Slices returns the storage fragments covering positions [begin, end)
	// in order. The fragments alias the container: &frag[j] is the slot Get
	// returns for the same position. Returns ErrRangeOutOfBounds unless
	// 0 <= begin <= end <= Len().
	Slices(begin, end int) ([][]T, error)
}

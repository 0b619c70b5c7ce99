package refvec

import "github.com/roach88/pinvec"

// Fixed is a pinned container backed by one allocation made up front. It
// never reallocates; growing past capacity panics with a
// *pinvec.GrowthError.
type Fixed[T any] struct {
	data []T
}

// NewFixed creates an empty container that can hold capacity elements.
func NewFixed[T any](capacity int) *Fixed[T] {
	return &Fixed[T]{data: make([]T, 0, max(capacity, 0))}
}

func (f *Fixed[T]) Len() int { return len(f.data) }

func (f *Fixed[T]) Cap() int { return cap(f.data) }

func (f *Fixed[T]) CapacityState() pinvec.CapacityState {
	return pinvec.Fixed(cap(f.data))
}

func (f *Fixed[T]) Get(i int) (*T, error) {
	if err := pinvec.CheckIndex(pinvec.OpGet, i, len(f.data)); err != nil {
		return nil, err
	}
	return &f.data[i], nil
}

func (f *Fixed[T]) Push(v T) {
	f.ensureRoom(pinvec.OpPush, 1)
	f.data = append(f.data, v)
}

func (f *Fixed[T]) Extend(vs []T) {
	if len(vs) == 0 {
		return
	}
	f.ensureRoom(pinvec.OpExtend, len(vs))
	f.data = append(f.data, vs...)
}

func (f *Fixed[T]) Insert(p int, v T) error {
	if err := pinvec.CheckInsert(p, len(f.data)); err != nil {
		return err
	}
	f.ensureRoom(pinvec.OpInsert, 1)

	var zero T
	f.data = append(f.data, zero)
	copy(f.data[p+1:], f.data[p:])
	f.data[p] = v
	return nil
}

func (f *Fixed[T]) Remove(p int) (T, error) {
	n := len(f.data)
	if err := pinvec.CheckIndex(pinvec.OpRemove, p, n); err != nil {
		var zero T
		return zero, err
	}

	v := f.data[p]
	copy(f.data[p:], f.data[p+1:])
	clear(f.data[n-1:])
	f.data = f.data[:n-1]
	return v, nil
}

func (f *Fixed[T]) Pop() (T, bool) {
	n := len(f.data)
	if n == 0 {
		var zero T
		return zero, false
	}
	v := f.data[n-1]
	clear(f.data[n-1:])
	f.data = f.data[:n-1]
	return v, true
}

func (f *Fixed[T]) Truncate(n int) error {
	if err := pinvec.CheckTruncate(n, len(f.data)); err != nil {
		return err
	}
	clear(f.data[n:])
	f.data = f.data[:n]
	return nil
}

func (f *Fixed[T]) Clear() {
	clear(f.data)
	f.data = f.data[:0]
}

func (f *Fixed[T]) Swap(a, b int) error {
	if err := pinvec.CheckIndex(pinvec.OpSwap, a, len(f.data)); err != nil {
		return err
	}
	if err := pinvec.CheckIndex(pinvec.OpSwap, b, len(f.data)); err != nil {
		return err
	}
	f.data[a], f.data[b] = f.data[b], f.data[a]
	return nil
}

// Slices returns the single fragment data[begin:end], capped so that
// appending to it can not write past end.
func (f *Fixed[T]) Slices(begin, end int) ([][]T, error) {
	if err := pinvec.CheckRange(begin, end, len(f.data)); err != nil {
		return nil, err
	}
	if begin == end {
		return nil, nil
	}
	return [][]T{f.data[begin:end:end]}, nil
}

func (f *Fixed[T]) IndexOf(ptr *T) (int, bool) {
	return pinvec.IndexOfPtr(f.data, ptr)
}

func (f *Fixed[T]) ContainsPointer(ptr *T) bool {
	return pinvec.ContainsPtr(f.data, ptr)
}

// Clone copies the elements into a new container of the same capacity.
func (f *Fixed[T]) Clone() pinvec.PinnedVec[T] {
	c := NewFixed[T](cap(f.data))
	c.data = append(c.data, f.data...)
	return c
}

// Values returns a copy of the elements in order.
func (f *Fixed[T]) Values() []T {
	return append([]T(nil), f.data...)
}

func (f *Fixed[T]) ensureRoom(op pinvec.Op, additional int) {
	if len(f.data)+additional > cap(f.data) {
		panic(&pinvec.GrowthError{
			Op:  op,
			Len: len(f.data),
			Cap: cap(f.data),
			Err: pinvec.ErrCannotGrowPinned,
		})
	}
}

// relocate moves every element into fresh storage of the same capacity.
func (f *Fixed[T]) relocate() {
	moved := make([]T, len(f.data), cap(f.data))
	copy(moved, f.data)
	f.data = moved
}

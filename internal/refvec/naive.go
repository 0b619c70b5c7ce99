package refvec

import (
	"slices"

	"github.com/roach88/pinvec"
)

// Naive is a plain reallocating Go slice. It satisfies the method set of
// pinvec.PinnedVec but not its obligations: once it outgrows its capacity,
// append moves every element.
type Naive[T any] struct {
	data []T
}

// NewNaive creates an empty slice-backed container with the given initial
// capacity.
func NewNaive[T any](capacity int) *Naive[T] {
	return &Naive[T]{data: make([]T, 0, max(capacity, 0))}
}

func (n *Naive[T]) Len() int { return len(n.data) }

func (n *Naive[T]) Cap() int { return cap(n.data) }

func (n *Naive[T]) Get(i int) (*T, error) {
	if err := pinvec.CheckIndex(pinvec.OpGet, i, len(n.data)); err != nil {
		return nil, err
	}
	return &n.data[i], nil
}

func (n *Naive[T]) Push(v T) {
	n.data = append(n.data, v)
}

func (n *Naive[T]) Extend(vs []T) {
	n.data = append(n.data, vs...)
}

func (n *Naive[T]) Insert(p int, v T) error {
	if err := pinvec.CheckInsert(p, len(n.data)); err != nil {
		return err
	}
	n.data = slices.Insert(n.data, p, v)
	return nil
}

func (n *Naive[T]) Remove(p int) (T, error) {
	if err := pinvec.CheckIndex(pinvec.OpRemove, p, len(n.data)); err != nil {
		var zero T
		return zero, err
	}
	v := n.data[p]
	n.data = slices.Delete(n.data, p, p+1)
	return v, nil
}

func (n *Naive[T]) Pop() (T, bool) {
	if len(n.data) == 0 {
		var zero T
		return zero, false
	}
	v := n.data[len(n.data)-1]
	n.data = n.data[:len(n.data)-1]
	return v, true
}

func (n *Naive[T]) Truncate(k int) error {
	if err := pinvec.CheckTruncate(k, len(n.data)); err != nil {
		return err
	}
	n.data = n.data[:k]
	return nil
}

func (n *Naive[T]) Clear() {
	n.data = n.data[:0]
}

package refvec

import (
	"fmt"
	"strings"
)

// Sabotage selects which operations of a Faulty container relocate its
// storage after they run.
type Sabotage uint8

const (
	RelocateOnGrow Sabotage = 1 << iota
	RelocateOnShrink
	RelocateOnInsert
	RelocateOnRemove
	RelocateOnSwap
)

var sabotageNames = []struct {
	flag Sabotage
	name string
}{
	{RelocateOnGrow, "grow"},
	{RelocateOnShrink, "shrink"},
	{RelocateOnInsert, "insert"},
	{RelocateOnRemove, "remove"},
	{RelocateOnSwap, "swap"},
}

func (s Sabotage) String() string {
	var parts []string
	for _, sn := range sabotageNames {
		if s&sn.flag != 0 {
			parts = append(parts, sn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseSabotage parses a "|"-separated list such as "shrink|remove".
func ParseSabotage(s string) (Sabotage, error) {
	var out Sabotage
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, sn := range sabotageNames {
			if part == sn.name {
				out |= sn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown sabotage %q", part)
		}
	}
	return out, nil
}

// Faulty is a Fixed container that moves all of its elements into fresh
// storage after the sabotaged operations, violating the matching guarantee
// whenever the protected prefix is non-empty.
type Faulty[T any] struct {
	*Fixed[T]
	sabotage Sabotage
}

// NewFaulty creates a Faulty container with the given capacity.
func NewFaulty[T any](capacity int, sabotage Sabotage) *Faulty[T] {
	return &Faulty[T]{Fixed: NewFixed[T](capacity), sabotage: sabotage}
}

func (f *Faulty[T]) Push(v T) {
	f.Fixed.Push(v)
	f.after(RelocateOnGrow)
}

func (f *Faulty[T]) Extend(vs []T) {
	f.Fixed.Extend(vs)
	f.after(RelocateOnGrow)
}

func (f *Faulty[T]) Insert(p int, v T) error {
	if err := f.Fixed.Insert(p, v); err != nil {
		return err
	}
	f.after(RelocateOnInsert)
	return nil
}

func (f *Faulty[T]) Remove(p int) (T, error) {
	v, err := f.Fixed.Remove(p)
	if err != nil {
		return v, err
	}
	f.after(RelocateOnRemove)
	return v, nil
}

func (f *Faulty[T]) Pop() (T, bool) {
	v, ok := f.Fixed.Pop()
	if ok {
		f.after(RelocateOnShrink)
	}
	return v, ok
}

func (f *Faulty[T]) Truncate(n int) error {
	if err := f.Fixed.Truncate(n); err != nil {
		return err
	}
	f.after(RelocateOnShrink)
	return nil
}

func (f *Faulty[T]) Clear() {
	f.Fixed.Clear()
	f.after(RelocateOnShrink)
}

func (f *Faulty[T]) Swap(a, b int) error {
	if err := f.Fixed.Swap(a, b); err != nil {
		return err
	}
	f.after(RelocateOnSwap)
	return nil
}

func (f *Faulty[T]) after(flag Sabotage) {
	if f.sabotage&flag != 0 {
		f.relocate()
	}
}

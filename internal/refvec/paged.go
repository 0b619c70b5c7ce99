package refvec

import (
	"math"

	"github.com/roach88/pinvec"
)

const (
	defaultFirstPage = 4
	defaultMaxPages  = 32
)

// Paged is a growable pinned container. Elements live in pages whose sizes
// double; a page, once allocated, is never reallocated, so growth never
// moves existing elements.
//
// Pages [0, used) are in use; every page before used-1 is full. Pages past
// used are kept after a shrink and reused on the next growth.
type Paged[T any] struct {
	pages     [][]T
	used      int
	length    int
	firstPage int
	maxPages  int
}

// PagedOption configures a Paged container.
type PagedOption func(*pagedConfig)

type pagedConfig struct {
	firstPage int
	maxPages  int
}

// WithFirstPage sets the capacity of the first page.
func WithFirstPage(n int) PagedOption {
	return func(c *pagedConfig) {
		if n > 0 {
			c.firstPage = n
		}
	}
}

// WithMaxPages bounds the page table. Growing past the last page panics with
// a *pinvec.GrowthError.
func WithMaxPages(n int) PagedOption {
	return func(c *pagedConfig) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// NewPaged creates an empty paged container.
func NewPaged[T any](opts ...PagedOption) *Paged[T] {
	cfg := pagedConfig{firstPage: defaultFirstPage, maxPages: defaultMaxPages}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Paged[T]{
		pages:     make([][]T, 0, cfg.maxPages),
		firstPage: cfg.firstPage,
		maxPages:  cfg.maxPages,
	}
}

func (p *Paged[T]) Len() int { return p.length }

func (p *Paged[T]) Cap() int {
	total := 0
	for _, page := range p.pages {
		total += cap(page)
	}
	return total
}

// CapacityState reports the allocated capacity and the capacity reachable
// without growing the page table. The reachable capacity saturates at
// math.MaxInt.
func (p *Paged[T]) CapacityState() pinvec.CapacityState {
	reachable := 0
	for k := 0; k < p.maxPages; k++ {
		size := p.pageSize(k)
		if reachable > math.MaxInt-size {
			reachable = math.MaxInt
			break
		}
		reachable += size
	}
	return pinvec.Dynamic(p.Cap(), reachable)
}

func (p *Paged[T]) Get(i int) (*T, error) {
	if err := pinvec.CheckIndex(pinvec.OpGet, i, p.length); err != nil {
		return nil, err
	}
	return p.slot(i), nil
}

func (p *Paged[T]) Push(v T) {
	p.grow(pinvec.OpPush)
	last := p.used - 1
	p.pages[last] = append(p.pages[last], v)
	p.length++
}

func (p *Paged[T]) Extend(vs []T) {
	for _, v := range vs {
		p.Push(v)
	}
}

func (p *Paged[T]) Insert(pos int, v T) error {
	if err := pinvec.CheckInsert(pos, p.length); err != nil {
		return err
	}

	var zero T
	p.Push(zero)
	for i := p.length - 1; i > pos; i-- {
		*p.slot(i) = *p.slot(i - 1)
	}
	*p.slot(pos) = v
	return nil
}

func (p *Paged[T]) Remove(pos int) (T, error) {
	if err := pinvec.CheckIndex(pinvec.OpRemove, pos, p.length); err != nil {
		var zero T
		return zero, err
	}

	v := *p.slot(pos)
	for i := pos; i < p.length-1; i++ {
		*p.slot(i) = *p.slot(i + 1)
	}
	p.Pop()
	return v, nil
}

func (p *Paged[T]) Pop() (T, bool) {
	var zero T
	if p.length == 0 {
		return zero, false
	}

	last := p.used - 1
	page := p.pages[last]
	v := page[len(page)-1]
	page[len(page)-1] = zero
	p.pages[last] = page[:len(page)-1]
	if len(p.pages[last]) == 0 {
		p.used--
	}
	p.length--
	return v, true
}

func (p *Paged[T]) Truncate(n int) error {
	if err := pinvec.CheckTruncate(n, p.length); err != nil {
		return err
	}
	for p.length > n {
		p.Pop()
	}
	return nil
}

func (p *Paged[T]) Clear() {
	for k := 0; k < p.used; k++ {
		clear(p.pages[k])
		p.pages[k] = p.pages[k][:0]
	}
	p.used = 0
	p.length = 0
}

func (p *Paged[T]) Swap(a, b int) error {
	if err := pinvec.CheckIndex(pinvec.OpSwap, a, p.length); err != nil {
		return err
	}
	if err := pinvec.CheckIndex(pinvec.OpSwap, b, p.length); err != nil {
		return err
	}
	x, y := p.slot(a), p.slot(b)
	*x, *y = *y, *x
	return nil
}

// Slices returns one fragment per page overlapping [begin, end).
func (p *Paged[T]) Slices(begin, end int) ([][]T, error) {
	if err := pinvec.CheckRange(begin, end, p.length); err != nil {
		return nil, err
	}

	var out [][]T
	offset := 0
	for k := 0; k < p.used && offset < end; k++ {
		page := p.pages[k]
		lo, hi := max(begin-offset, 0), min(end-offset, len(page))
		if lo < hi {
			out = append(out, page[lo:hi:hi])
		}
		offset += len(page)
	}
	return out, nil
}

func (p *Paged[T]) IndexOf(ptr *T) (int, bool) {
	offset := 0
	for k := 0; k < p.used; k++ {
		if i, ok := pinvec.IndexOfPtr(p.pages[k], ptr); ok {
			return offset + i, true
		}
		offset += len(p.pages[k])
	}
	return 0, false
}

func (p *Paged[T]) ContainsPointer(ptr *T) bool {
	_, ok := p.IndexOf(ptr)
	return ok
}

// Pages returns the number of allocated pages.
func (p *Paged[T]) Pages() int {
	return len(p.pages)
}

// grow makes room for one more element at the end.
func (p *Paged[T]) grow(op pinvec.Op) {
	if p.used > 0 {
		last := p.pages[p.used-1]
		if len(last) < cap(last) {
			return
		}
	}
	if p.used < len(p.pages) {
		p.used++
		return
	}
	if len(p.pages) == p.maxPages {
		panic(&pinvec.GrowthError{
			Op:  op,
			Len: p.length,
			Cap: p.Cap(),
			Err: pinvec.ErrCannotGrowPinned,
		})
	}
	p.pages = append(p.pages, make([]T, 0, p.pageSize(len(p.pages))))
	p.used++
}

// pageSize returns the capacity of page k, saturating at math.MaxInt once
// the doubling would overflow.
func (p *Paged[T]) pageSize(k int) int {
	if p.firstPage > math.MaxInt>>k {
		return math.MaxInt
	}
	return p.firstPage << k
}

// slot returns the address of position i. Caller checks bounds.
func (p *Paged[T]) slot(i int) *T {
	for k := 0; k < p.used; k++ {
		if i < len(p.pages[k]) {
			return &p.pages[k][i]
		}
		i -= len(p.pages[k])
	}
	panic("refvec: slot out of range")
}

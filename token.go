package pinvec

import (
	"fmt"
	"unsafe"
)

// Token is an opaque identity for a storage slot. Two tokens are equal iff
// they were captured from the same slot.
//
// A Token holds the slot's address as an unsafe.Pointer, which keeps the
// backing storage reachable for as long as the token lives. A relocated
// element can therefore never be reported as unchanged because its old
// storage was freed and the address reused.
//
// Tokens are meaningless for zero-sized element types, whose slots may all
// share one address.
type Token struct {
	addr unsafe.Pointer
}

// TokenOf captures the identity of the slot p points at. It neither reads
// nor writes the element.
func TokenOf[T any](p *T) Token {
	return Token{addr: unsafe.Pointer(p)}
}

// IsZero reports whether the token was captured from a nil pointer.
func (t Token) IsZero() bool {
	return t.addr == nil
}

// Addr returns the raw address for diagnostics.
func (t Token) Addr() uintptr {
	return uintptr(t.addr)
}

func (t Token) String() string {
	if t.addr == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%#x", uintptr(t.addr))
}

// IndexOfPtr returns the position of the element p points at within s,
// using address arithmetic only. O(1).
func IndexOfPtr[T any](s []T, p *T) (int, bool) {
	size := unsafe.Sizeof(*new(T))
	if len(s) == 0 || p == nil || size == 0 {
		return 0, false
	}

	begin := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	addr := uintptr(unsafe.Pointer(p))
	if addr < begin {
		return 0, false
	}

	diff := addr - begin
	if diff%size != 0 {
		return 0, false
	}
	idx := diff / size
	if idx >= uintptr(len(s)) {
		return 0, false
	}
	return int(idx), true
}

// ContainsPtr reports whether p points at an element of s.
func ContainsPtr[T any](s []T, p *T) bool {
	_, ok := IndexOfPtr(s, p)
	return ok
}

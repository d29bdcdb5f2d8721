// Package typed provides the checked reinterpret-cast that bytefile,
// recordfile, and streamfile use to turn a []byte borrow from a
// mapping into a typed pointer, asserting size and alignment at the
// boundary instead of doing any endian-aware encoding.
package typed

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrAlignment is returned when a byte slice's address does not
// satisfy the alignment requirement of the target type.
var ErrAlignment = errors.New("typed: value is misaligned for its type")

// ErrShort is returned when a byte slice is too short to hold the
// target type.
var ErrShort = errors.New("typed: byte slice too short for type")

// Size returns size(T) in bytes.
func Size[T any]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

// Align returns align(T) in bytes.
func Align[T any]() int64 {
	var zero T
	return int64(unsafe.Alignof(zero))
}

// Bytes returns a byte slice view of v's in-memory representation,
// valid only as long as v is not moved or garbage collected. Callers
// that write this slice to a file must do so before v goes out of
// scope.
func Bytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), Size[T]())
}

// Reinterpret returns a *T aliasing the first size(T) bytes of b. It
// fails if b is too short or insufficiently aligned for T.
func Reinterpret[T any](b []byte) (*T, error) {
	size := Size[T]()
	align := Align[T]()
	if int64(len(b)) < size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShort, size, len(b))
	}
	ptr := unsafe.Pointer(&b[0])
	if uintptr(ptr)%uintptr(align) != 0 {
		return nil, fmt.Errorf("%w: need %d-byte alignment", ErrAlignment, align)
	}
	return (*T)(ptr), nil
}

// AlignUp rounds off up to the next multiple of align (align must be
// a power of two).
func AlignUp(off, align int64) int64 {
	if align <= 1 {
		return off
	}
	return (off + align - 1) &^ (align - 1)
}

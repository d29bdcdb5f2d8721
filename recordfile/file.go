package recordfile

import (
	"errors"
	"fmt"

	"github.com/blockwalk/chainfile/bytefile"
	"github.com/blockwalk/chainfile/internal/typed"
)

// ErrOutOfBounds is returned when a record index is >= Len().
var ErrOutOfBounds = errors.New("recordfile: index out of bounds")

// File is a strided, index-addressable view over a bytefile.File
// whose length is always a multiple of size(T).
type File[T any] struct {
	bf       *bytefile.File
	elemSize int64
}

// Open opens path as a RecordFile of T, forwarding opts to
// bytefile.Open. It fails if the underlying file's length is not a
// multiple of size(T).
func Open[T any](path string, opts ...bytefile.Option) (*File[T], error) {
	bf, err := bytefile.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	elemSize := typed.Size[T]()
	if bf.Len()%elemSize != 0 {
		_ = bf.Close()
		return nil, fmt.Errorf("recordfile: %s has length %d, not a multiple of record size %d", path, bf.Len(), elemSize)
	}
	return &File[T]{bf: bf, elemSize: elemSize}, nil
}

// Len returns the number of records currently stored.
func (f *File[T]) Len() int64 {
	return f.bf.Len() / f.elemSize
}

// Get returns a pointer to record i. The pointer aliases the
// underlying mapping (or tail buffer) directly: mutating *T through
// it, when the File is writable, patches the record in place without
// going through Write. The pointer must not be retained past the next
// Flush, Reload, or Truncate.
func (f *File[T]) Get(i int64) (*T, error) {
	if i < 0 || i >= f.Len() {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrOutOfBounds, i, f.Len())
	}
	b, err := f.bf.Bytes(i*f.elemSize, f.elemSize)
	if err != nil {
		return nil, err
	}
	return typed.Reinterpret[T](b)
}

// Write appends one record at the write cursor, which must already be
// a multiple of size(T) (true of any cursor reached purely through
// Write/Seek/Truncate on this type). It returns true if writing this
// record triggered bytefile's auto-flush.
func (f *File[T]) Write(v T) (flushed bool, err error) {
	cur := f.bf.WriteCursor()
	if cur%f.elemSize != 0 {
		return false, fmt.Errorf("recordfile: write cursor %d is not a multiple of record size %d", cur, f.elemSize)
	}
	return bytefile.WriteValue(f.bf, v)
}

// Seek moves the write cursor to the start of record i (which may
// equal Len(), positioning for the next append).
func (f *File[T]) Seek(i int64) error {
	return f.bf.Seek(i * f.elemSize)
}

// Truncate discards records i and beyond.
func (f *File[T]) Truncate(i int64) error {
	if i < 0 {
		return fmt.Errorf("%w: truncate to negative index %d", ErrOutOfBounds, i)
	}
	return f.bf.Truncate(i * f.elemSize)
}

// FindAll scans every record in ascending order and returns the
// indices for which pred holds. There is no acceleration beyond the
// linear scan; callers needing better than O(n) should index records
// themselves.
func (f *File[T]) FindAll(pred func(*T) bool) ([]uint32, error) {
	var matches []uint32
	n := f.Len()
	for i := int64(0); i < n; i++ {
		rec, err := f.Get(i)
		if err != nil {
			return nil, err
		}
		if pred(rec) {
			matches = append(matches, uint32(i))
		}
	}
	return matches, nil
}

// Flush flushes the underlying bytefile.File.
func (f *File[T]) Flush() error {
	return f.bf.Flush()
}

// Reload reloads the underlying bytefile.File.
func (f *File[T]) Reload() error {
	return f.bf.Reload()
}

// Close closes the underlying bytefile.File.
func (f *File[T]) Close() error {
	return f.bf.Close()
}

// Package mmap memory-maps a file as a []byte, in either read-only or
// read-write MAP_SHARED mode, adding a writable mode so bytefile can
// patch mapped pages in place.
package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is a memory-mapped region of a file.
type Mapping struct {
	data     []byte
	writable bool
}

// Open maps the first size bytes of f. If writable is true the mapping
// is PROT_READ|PROT_WRITE and MAP_SHARED, so writes through Data are
// visible to other mappers of the same file after they reload and are
// eventually written back to disk by the kernel; otherwise the mapping
// is PROT_READ only.
//
// size must equal the current file size; callers are responsible for
// truncating the file to the desired size before calling Open.
func Open(f *os.File, size int64, writable bool) (*Mapping, error) {
	if size == 0 {
		return &Mapping{data: nil, writable: writable}, nil
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unix.Mmap(%s, size=%d): %w", f.Name(), size, err)
	}

	if err := unix.Madvise(data, unix.MADV_RANDOM); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("unix.Madvise: %w", err)
	}

	return &Mapping{data: data, writable: writable}, nil
}

// Data returns the mapped bytes. The returned slice is valid until the
// next call to Close; it is nil if the mapping is empty.
func (m *Mapping) Data() []byte {
	return m.data
}

// Len returns the length in bytes of the mapped region.
func (m *Mapping) Len() int64 {
	return int64(len(m.data))
}

// Writable reports whether the mapping was opened read-write.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Close unmaps the region. It is a no-op if the mapping is empty.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("unix.Munmap: %w", err)
	}
	return nil
}

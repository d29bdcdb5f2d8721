package bytefile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blockwalk/chainfile/internal/mmap"
	"github.com/blockwalk/chainfile/internal/typed"
)

// InvalidOffset denotes "no payload recorded here". It is the maximum
// positive signed 64-bit integer.
const InvalidOffset int64 = 1<<63 - 1

var (
	// ErrOutOfBounds is returned when an offset or index is beyond a
	// File's current logical length.
	ErrOutOfBounds = errors.New("bytefile: offset out of bounds")
	// ErrReadOnly is returned by every mutating method on a File not
	// opened with WithWritable.
	ErrReadOnly = errors.New("bytefile: file is not writable")
)

// File is a single on-disk file exposed as a contiguous byte region.
// See the package doc for the mapped-region/tail-buffer layout.
//
// A File is owned by a single goroutine. Concurrent readers across
// separate File values on the same path are safe as long as each
// reader serializes its own Reload calls against its own reads.
type File struct {
	path          string
	writable      bool
	highWaterMark int64
	logger        *slog.Logger

	f *os.File

	mapping   *mmap.Mapping
	mappedLen int64
	tail      []byte
	cursor    int64
}

// Open opens the file at path. Read-only by default; pass
// WithWritable to allow writes. If the file does not exist, the
// mapping starts out empty; in writable mode Open creates the file and
// subsequent writes extend it.
func Open(path string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	f := &File{
		path:          path,
		writable:      o.writable,
		highWaterMark: o.highWaterMark,
		logger:        o.logger,
	}

	if err := f.openBackingFile(); err != nil {
		return nil, err
	}
	if err := f.remap(); err != nil {
		return nil, err
	}
	f.cursor = f.Len()

	f.logger.Debug("bytefile.Open", "path", path, "writable", f.writable, "mapped_len", f.mappedLen)
	return f, nil
}

func (f *File) openBackingFile() error {
	if f.writable {
		ff, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0o644)
		if err != nil {
			return fmt.Errorf("bytefile: open %s: %w", f.path, err)
		}
		f.f = ff
		return nil
	}

	ff, err := os.OpenFile(f.path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			f.f = nil
			return nil
		}
		return fmt.Errorf("bytefile: open %s: %w", f.path, err)
	}
	f.f = ff
	return nil
}

// remap drops the current mapping (if any) and remaps based on the
// backing file's current on-disk size.
func (f *File) remap() error {
	if f.mapping != nil {
		if err := f.mapping.Close(); err != nil {
			return fmt.Errorf("bytefile: unmap %s: %w", f.path, err)
		}
		f.mapping = nil
	}
	f.mappedLen = 0

	if f.f == nil {
		return nil
	}

	stat, err := f.f.Stat()
	if err != nil {
		return fmt.Errorf("bytefile: stat %s: %w", f.path, err)
	}
	size := stat.Size()
	if size == 0 {
		return nil
	}

	m, err := mmap.Open(f.f, size, f.writable)
	if err != nil {
		return fmt.Errorf("bytefile: mmap %s: %w", f.path, err)
	}
	f.mapping = m
	f.mappedLen = size
	return nil
}

// Len returns the file's current logical length: mapped bytes plus
// buffered tail bytes.
func (f *File) Len() int64 {
	return f.mappedLen + int64(len(f.tail))
}

// Bytes returns a view of the n bytes starting at off. The slice is a
// zero-copy borrow of the mapping or the tail buffer when the range
// lies entirely within one of them; a range spanning both is served
// via a short copy. The returned slice must not be retained past the
// next Flush, Reload, or Truncate.
//
// Bytes returns (nil, nil) for off == InvalidOffset, matching the
// sentinel contract on MultiStreamFile offset slots.
func (f *File) Bytes(off, n int64) ([]byte, error) {
	if off == InvalidOffset {
		return nil, nil
	}
	if off < 0 || n < 0 || off+n > f.Len() {
		return nil, fmt.Errorf("%w: [%d, %d) beyond length %d", ErrOutOfBounds, off, off+n, f.Len())
	}
	if n == 0 {
		return nil, nil
	}

	switch {
	case off+n <= f.mappedLen:
		return f.mapping.Data()[off : off+n], nil
	case off >= f.mappedLen:
		start := off - f.mappedLen
		return f.tail[start : start+n], nil
	default:
		buf := make([]byte, n)
		fromMapped := f.mappedLen - off
		copy(buf, f.mapping.Data()[off:f.mappedLen])
		copy(buf[fromMapped:], f.tail[:n-fromMapped])
		return buf, nil
	}
}

// WriteCursor returns the logical offset the next Write will land at.
func (f *File) WriteCursor() int64 {
	return f.cursor
}

// Seek moves the write cursor to off, which must be within [0, Len()].
func (f *File) Seek(off int64) error {
	if !f.writable {
		return ErrReadOnly
	}
	if off < 0 || off > f.Len() {
		return fmt.Errorf("%w: seek to %d beyond length %d", ErrOutOfBounds, off, f.Len())
	}
	f.cursor = off
	return nil
}

// SeekEnd moves the write cursor to the current logical end.
func (f *File) SeekEnd() {
	f.cursor = f.Len()
}

// Write writes p starting at the write cursor and advances the
// cursor by len(p). It returns true if, as a side effect of this
// call, the tail buffer was flushed to disk because it exceeded the
// high-water mark.
func (f *File) Write(p []byte) (flushed bool, err error) {
	if !f.writable {
		return false, ErrReadOnly
	}
	n := int64(len(p))
	if n == 0 {
		return false, nil
	}

	cur := f.cursor
	switch {
	case cur < f.mappedLen:
		avail := f.mappedLen - cur
		if n <= avail {
			copy(f.mapping.Data()[cur:cur+n], p)
		} else {
			copy(f.mapping.Data()[cur:f.mappedLen], p[:avail])
			f.patchTail(0, p[avail:])
		}
	case cur == f.Len():
		f.tail = append(f.tail, p...)
	default:
		f.patchTail(cur-f.mappedLen, p)
	}
	f.cursor += n

	if int64(len(f.tail)) > f.highWaterMark {
		if err := f.flush(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// patchTail writes p into the tail buffer starting at tailOff,
// growing the buffer if p extends past its current length.
func (f *File) patchTail(tailOff int64, p []byte) {
	end := tailOff + int64(len(p))
	if end > int64(len(f.tail)) {
		grown := make([]byte, end)
		copy(grown, f.tail)
		f.tail = grown
	}
	copy(f.tail[tailOff:end], p)
}

// Flush synchronously writes the tail buffer to disk, clears it, and
// remaps. It is a no-op on a read-only File or one with nothing
// buffered.
func (f *File) Flush() error {
	if !f.writable {
		return nil
	}
	return f.flush()
}

func (f *File) flush() error {
	if len(f.tail) == 0 {
		return nil
	}
	if _, err := f.f.WriteAt(f.tail, f.mappedLen); err != nil {
		return fmt.Errorf("bytefile: flush %s: %w", f.path, err)
	}
	if err := f.f.Sync(); err != nil {
		return fmt.Errorf("bytefile: sync %s: %w", f.path, err)
	}
	f.tail = nil
	if err := f.remap(); err != nil {
		return err
	}
	f.logger.Debug("bytefile.Flush", "path", f.path, "mapped_len", f.mappedLen)
	return nil
}

// Reload reconciles the in-memory mapping with the on-disk file: if
// the file grew, the mapping is replaced; if it shrank, it is
// replaced with a smaller one; if it disappeared, the mapping is
// dropped. For writable Files, Reload first flushes pending writes.
func (f *File) Reload() error {
	if f.writable {
		if err := f.flush(); err != nil {
			return err
		}
	}

	_, statErr := os.Stat(f.path)
	switch {
	case statErr == nil:
		if f.f == nil {
			if err := f.openBackingFile(); err != nil {
				return err
			}
		}
		if err := f.remap(); err != nil {
			return err
		}
	case os.IsNotExist(statErr):
		if f.f != nil {
			_ = f.f.Close()
			f.f = nil
		}
		if f.mapping != nil {
			_ = f.mapping.Close()
			f.mapping = nil
		}
		f.mappedLen = 0
	default:
		return fmt.Errorf("bytefile: stat %s: %w", f.path, statErr)
	}

	if f.cursor > f.Len() {
		f.cursor = f.Len()
	}
	f.logger.Debug("bytefile.Reload", "path", f.path, "mapped_len", f.mappedLen)
	return nil
}

// Truncate flushes pending writes, then sets the on-disk (and
// therefore logical) length to off, discarding anything beyond —
// including any not-yet-flushed tail content above off. Growing via
// Truncate zero-fills the new region.
func (f *File) Truncate(off int64) error {
	if !f.writable {
		return ErrReadOnly
	}
	if off < 0 {
		return fmt.Errorf("%w: truncate to negative offset %d", ErrOutOfBounds, off)
	}
	if err := f.flush(); err != nil {
		return err
	}
	if f.f == nil {
		if err := f.openBackingFile(); err != nil {
			return err
		}
	}
	if err := f.f.Truncate(off); err != nil {
		return fmt.Errorf("bytefile: truncate %s to %d: %w", f.path, off, err)
	}
	if err := f.remap(); err != nil {
		return err
	}
	if f.cursor > f.Len() {
		f.cursor = f.Len()
	}
	f.logger.Debug("bytefile.Truncate", "path", f.path, "offset", off)
	return nil
}

// Close flushes (if writable) and releases the mapping and file
// handle. Close is idempotent.
func (f *File) Close() error {
	if f.writable {
		if err := f.flush(); err != nil {
			return err
		}
	}
	if f.mapping != nil {
		if err := f.mapping.Close(); err != nil {
			return err
		}
		f.mapping = nil
	}
	if f.f != nil {
		if err := f.f.Close(); err != nil {
			return fmt.Errorf("bytefile: close %s: %w", f.path, err)
		}
		f.f = nil
	}
	return nil
}

// WriteValue appends size(T) bytes of v's in-memory representation at
// the write cursor.
func WriteValue[T any](f *File, v T) (bool, error) {
	return f.Write(typed.Bytes(&v))
}

// ReadValue returns a typed pointer to the size(T) bytes starting at
// off, or nil if off == InvalidOffset.
func ReadValue[T any](f *File, off int64) (*T, error) {
	size := typed.Size[T]()
	b, err := f.Bytes(off, size)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return typed.Reinterpret[T](b)
}

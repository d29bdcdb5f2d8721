package streamfile

import (
	"errors"
	"fmt"

	"github.com/blockwalk/chainfile/bytefile"
	"github.com/blockwalk/chainfile/internal/typed"
	"github.com/blockwalk/chainfile/internal/zero"
)

// InvalidOffset re-exports bytefile.InvalidOffset: the sentinel slot
// value meaning "no payload recorded for this stream".
const InvalidOffset = bytefile.InvalidOffset

var (
	// ErrInvalidSlot is returned for a stream index outside [0, NumStreams).
	ErrInvalidSlot = errors.New("streamfile: stream index out of range")
	// ErrOutOfBounds is returned for a logical record index >= Len().
	ErrOutOfBounds = errors.New("streamfile: record index out of bounds")
	// ErrAlignment is returned when the data file's write cursor isn't
	// aligned for the stream element type about to be written.
	ErrAlignment = errors.New("streamfile: data file cursor is misaligned for this stream's type")
)

// Option configures Open; it's the same functional-option type
// bytefile.Open takes, applied to both the index and data files.
type Option = bytefile.Option

// VarPayload is a variable-length payload: a fixed head of type T
// followed by a type-erased tail. RealSize is size(T) + len(Tail);
// WriteNewVar/WriteStreamVar pad the on-disk payload with zeros up to
// the next multiple of align(T) so later writes stay aligned.
type VarPayload[T any] struct {
	Head T
	Tail []byte
}

// RealSize returns the payload's total on-disk size before padding.
func (p VarPayload[T]) RealSize() int64 {
	return typed.Size[T]() + int64(len(p.Tail))
}

// File binds NumStreams parallel typed streams per logical record to
// one shared data file, addressed through a per-record offset tuple
// stored in an index file. See the package doc for the on-disk
// layout.
type File struct {
	numStreams int
	index      *bytefile.File
	data       *bytefile.File
}

// Open opens (or creates, in writable mode) the index and data files
// at pathPrefix+"_index.dat" and pathPrefix+"_data.dat".
func Open(pathPrefix string, numStreams int, opts ...Option) (*File, error) {
	if numStreams < 1 {
		return nil, fmt.Errorf("streamfile: numStreams must be >= 1, got %d", numStreams)
	}

	index, err := bytefile.Open(pathPrefix+"_index.dat", opts...)
	if err != nil {
		return nil, fmt.Errorf("streamfile: open index: %w", err)
	}

	stride := int64(numStreams) * 8
	if index.Len()%stride != 0 {
		_ = index.Close()
		return nil, fmt.Errorf("streamfile: index file %s has length %d, not a multiple of %d (numStreams*8)", pathPrefix, index.Len(), stride)
	}

	data, err := bytefile.Open(pathPrefix+"_data.dat", opts...)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("streamfile: open data: %w", err)
	}

	return &File{numStreams: numStreams, index: index, data: data}, nil
}

func (f *File) stride() int64 {
	return int64(f.numStreams) * 8
}

// NumStreams returns N, the number of parallel streams.
func (f *File) NumStreams() int {
	return f.numStreams
}

// Len returns the number of logical records.
func (f *File) Len() int64 {
	return f.index.Len() / f.stride()
}

// DataLen returns the current size in bytes of the shared data file.
func (f *File) DataLen() int64 {
	return f.data.Len()
}

// DataBytes borrows [off, off+n) of the shared data file. It exists
// for tools that need to scan or hash the raw data file (e.g. an
// external content-hash check) without going through a typed stream
// accessor.
func (f *File) DataBytes(off, n int64) ([]byte, error) {
	return f.data.Bytes(off, n)
}

// Offsets returns a copy of record i's N-tuple of data-file offsets.
func (f *File) Offsets(i int64) ([]int64, error) {
	if i < 0 || i >= f.Len() {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrOutOfBounds, i, f.Len())
	}
	b, err := f.index.Bytes(i*f.stride(), f.stride())
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, f.numStreams)
	for k := 0; k < f.numStreams; k++ {
		slot, err := typed.Reinterpret[int64](b[k*8:])
		if err != nil {
			return nil, err
		}
		offsets[k] = *slot
	}
	return offsets, nil
}

func (f *File) appendIndexEntry(offsets []int64) (bool, error) {
	buf := make([]byte, f.stride())
	for k := range offsets {
		copy(buf[k*8:k*8+8], typed.Bytes(&offsets[k]))
	}
	return f.index.Write(buf)
}

func (f *File) patchIndexSlot(i int64, stream int, off int64) (bool, error) {
	pos := i*f.stride() + int64(stream)*8
	if err := f.index.Seek(pos); err != nil {
		return false, err
	}
	flushed, err := bytefile.WriteValue(f.index, off)
	// Patching a slot moves the index cursor away from the end of the
	// file; appendIndexEntry assumes the cursor is always at Len(), so
	// restore that here rather than leaving the next WriteNew to
	// silently overwrite this record's entry instead of appending.
	f.index.SeekEnd()
	return flushed, err
}

// DataAt returns a typed pointer to stream k of record i, or nil if
// slot k is InvalidOffset.
func DataAt[T any](f *File, stream int, i int64) (*T, error) {
	if stream < 0 || stream >= f.numStreams {
		return nil, fmt.Errorf("%w: stream %d, numStreams %d", ErrInvalidSlot, stream, f.numStreams)
	}
	offsets, err := f.Offsets(i)
	if err != nil {
		return nil, err
	}
	return bytefile.ReadValue[T](f.data, offsets[stream])
}

// Data0 is shorthand for DataAt[T](f, 0, i), the common case when
// NumStreams() == 1.
func Data0[T any](f *File, i int64) (*T, error) {
	return DataAt[T](f, 0, i)
}

// WriteNew appends a new logical record: it records the current
// data-file offset as stream 0's payload location, appends an index
// entry [off, InvalidOffset, ...], then appends v's bytes. The
// data-file write cursor must already be aligned to align(T).
func WriteNew[T any](f *File, v T) (bool, error) {
	off, err := f.beginNewRecord(typed.Align[T]())
	if err != nil {
		return false, err
	}
	idxFlushed, err := f.appendIndexEntry(newOffsets(f.numStreams, off))
	if err != nil {
		return false, err
	}
	dataFlushed, err := bytefile.WriteValue(f.data, v)
	if err != nil {
		return false, err
	}
	return idxFlushed || dataFlushed, nil
}

// WriteNewVar is WriteNew for a variable-length payload.
func WriteNewVar[T any](f *File, v VarPayload[T]) (bool, error) {
	off, err := f.beginNewRecord(typed.Align[T]())
	if err != nil {
		return false, err
	}
	idxFlushed, err := f.appendIndexEntry(newOffsets(f.numStreams, off))
	if err != nil {
		return false, err
	}
	dataFlushed, err := writeVarPayload(f, v.Head, v.Tail)
	if err != nil {
		return false, err
	}
	return idxFlushed || dataFlushed, nil
}

// WriteStream updates stream k>0 of an already-written record i: it
// records the current data-file offset into slot k, then appends v.
// Slot k of record i must currently be InvalidOffset; this is the
// caller's responsibility and is not rechecked.
func WriteStream[T any](f *File, stream int, i int64, v T) (bool, error) {
	off, err := f.beginStreamUpdate(stream, i, typed.Align[T]())
	if err != nil {
		return false, err
	}
	idxFlushed, err := f.patchIndexSlot(i, stream, off)
	if err != nil {
		return false, err
	}
	dataFlushed, err := bytefile.WriteValue(f.data, v)
	if err != nil {
		return false, err
	}
	return idxFlushed || dataFlushed, nil
}

// WriteStreamVar is WriteStream for a variable-length payload.
func WriteStreamVar[T any](f *File, stream int, i int64, v VarPayload[T]) (bool, error) {
	off, err := f.beginStreamUpdate(stream, i, typed.Align[T]())
	if err != nil {
		return false, err
	}
	idxFlushed, err := f.patchIndexSlot(i, stream, off)
	if err != nil {
		return false, err
	}
	dataFlushed, err := writeVarPayload(f, v.Head, v.Tail)
	if err != nil {
		return false, err
	}
	return idxFlushed || dataFlushed, nil
}

func (f *File) beginNewRecord(align int64) (off int64, err error) {
	cur := f.data.WriteCursor()
	if cur%align != 0 {
		return 0, fmt.Errorf("%w: data cursor %d not aligned to %d", ErrAlignment, cur, align)
	}
	return cur, nil
}

func (f *File) beginStreamUpdate(stream int, i int64, align int64) (off int64, err error) {
	if stream <= 0 || stream >= f.numStreams {
		return 0, fmt.Errorf("%w: stream %d, numStreams %d", ErrInvalidSlot, stream, f.numStreams)
	}
	if i < 0 || i >= f.Len() {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrOutOfBounds, i, f.Len())
	}
	cur := f.data.WriteCursor()
	if cur%align != 0 {
		return 0, fmt.Errorf("%w: data cursor %d not aligned to %d", ErrAlignment, cur, align)
	}
	return cur, nil
}

func newOffsets(n int, head int64) []int64 {
	offsets := make([]int64, n)
	offsets[0] = head
	for k := 1; k < n; k++ {
		offsets[k] = bytefile.InvalidOffset
	}
	return offsets
}

// writeVarPayload writes head, then tail, then zero-pads the data
// file up to the next multiple of align(T) so the next write starts
// aligned.
func writeVarPayload[T any](f *File, head T, tail []byte) (bool, error) {
	flushed, err := bytefile.WriteValue(f.data, head)
	if err != nil {
		return false, err
	}
	if len(tail) > 0 {
		tailFlushed, err := f.data.Write(tail)
		if err != nil {
			return false, err
		}
		flushed = flushed || tailFlushed
	}

	size := typed.Size[T]() + int64(len(tail))
	padded := typed.AlignUp(size, typed.Align[T]())
	if padLen := padded - size; padLen > 0 {
		pad := make([]byte, padLen)
		zero.Bytes(pad) // pad is already zero; documents the on-disk invariant explicitly
		padFlushed, err := f.data.Write(pad)
		if err != nil {
			return false, err
		}
		flushed = flushed || padFlushed
	}
	return flushed, nil
}

// Truncate discards records i and beyond: it truncates the index file
// to i entries and the data file to offsets(i)[0] bytes. This is only
// well-defined if records were appended monotonically and any
// stream-k payloads for records < i were written before record i's
// stream-0 payload.
func (f *File) Truncate(i int64) error {
	if i >= f.Len() {
		return nil
	}
	offsets, err := f.Offsets(i)
	if err != nil {
		return err
	}
	if err := f.index.Truncate(i * f.stride()); err != nil {
		return err
	}
	return f.data.Truncate(offsets[0])
}

// Grow pre-extends the index file by indexRecords records and the
// data file by dataBytes bytes for a bulk-allocation pattern. The new
// region is zero-filled (truncate-to-larger zero-fills on every
// platform this repository targets), not pre-populated with
// InvalidOffset — callers that Grow the index ahead of writing must
// still call WriteNew/WriteStream to populate each slot before
// treating it as present.
func (f *File) Grow(indexRecords, dataBytes int64) error {
	if indexRecords > 0 {
		if err := f.index.Truncate(f.index.Len() + indexRecords*f.stride()); err != nil {
			return err
		}
	}
	if dataBytes > 0 {
		if err := f.data.Truncate(f.data.Len() + dataBytes); err != nil {
			return err
		}
	}
	return nil
}

// Seek positions the index cursor at record i and the data cursor at
// dataOffset.
func (f *File) Seek(i int64, dataOffset int64) error {
	if err := f.index.Seek(i * f.stride()); err != nil {
		return err
	}
	return f.data.Seek(dataOffset)
}

// Reload reloads the index file, then the data file. Between the two
// steps the index may reference data-file bytes not yet mapped.
func (f *File) Reload() error {
	if err := f.index.Reload(); err != nil {
		return err
	}
	return f.data.Reload()
}

// Flush flushes both files.
func (f *File) Flush() error {
	if err := f.index.Flush(); err != nil {
		return err
	}
	return f.data.Flush()
}

// Close closes both files, returning the first error encountered but
// still attempting to close both.
func (f *File) Close() error {
	err1 := f.index.Close()
	err2 := f.data.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

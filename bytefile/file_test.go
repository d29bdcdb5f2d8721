package bytefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "bytefile.dat")
}

func TestOpenMissingFileReadOnlyIsEmpty(t *testing.T) {
	f, err := Open(testPath(t))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, int64(0), f.Len())
	_, err = f.Bytes(0, 1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := testPath(t)
	f, err := Open(path, WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	payload := []byte("the quick brown fox")
	flushed, err := f.Write(payload)
	require.NoError(t, err)
	require.False(t, flushed)

	require.Equal(t, int64(len(payload)), f.Len())

	got, err := f.Bytes(0, int64(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestWriteReadAcrossFlushBoundary(t *testing.T) {
	path := testPath(t)
	f, err := Open(path, WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.Write([]byte("hello "))
	require.NoError(t, err)
	require.NoError(t, f.Flush())

	// patch the now-mapped prefix in place, then append past it
	require.NoError(t, f.Seek(0))
	_, err = f.Write([]byte("HELLO "))
	require.NoError(t, err)
	f.SeekEnd()
	_, err = f.Write([]byte("world"))
	require.NoError(t, err)

	got, err := f.Bytes(0, f.Len())
	require.NoError(t, err)
	require.Equal(t, "HELLO world", string(got))
}

func TestBytesReturnsNilForInvalidOffset(t *testing.T) {
	f, err := Open(testPath(t), WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	b, err := f.Bytes(InvalidOffset, 8)
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestAutoFlushBoundary(t *testing.T) {
	path := testPath(t)
	f, err := Open(path, WithWritable(), WithHighWaterMark(1024))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var anyFlushed bool
	chunk := make([]byte, 4)
	for i := 0; i < 500; i++ { // 2000 bytes total
		flushed, err := f.Write(chunk)
		require.NoError(t, err)
		if flushed {
			anyFlushed = true
		}
	}
	require.True(t, anyFlushed, "expected at least one auto-flush while writing past the high-water mark")

	stat, err := os.Stat(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stat.Size(), int64(1024))
	require.Less(t, int64(len(f.tail)), int64(1024))
}

func TestReloadAfterExternalGrowth(t *testing.T) {
	path := testPath(t)

	writer, err := Open(path, WithWritable())
	require.NoError(t, err)
	defer func() { _ = writer.Close() }()

	reader, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	require.Equal(t, int64(0), reader.Len())

	_, err = writer.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, writer.Flush())

	// reader hasn't reloaded yet: still sees the old (empty) length
	require.Equal(t, int64(0), reader.Len())

	require.NoError(t, reader.Reload())
	require.Equal(t, int64(10), reader.Len())

	got, err := reader.Bytes(0, 10)
	require.NoError(t, err)
	require.Equal(t, "0123456789", string(got))
}

func TestTruncateShrinksAndDropsTail(t *testing.T) {
	path := testPath(t)
	f, err := Open(path, WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, f.Flush())

	_, err = f.Write([]byte("ABCDE")) // lands in the tail buffer
	require.NoError(t, err)

	require.NoError(t, f.Truncate(5))
	require.Equal(t, int64(5), f.Len())

	got, err := f.Bytes(0, 5)
	require.NoError(t, err)
	require.Equal(t, "01234", string(got))
}

func TestTruncateGrowZeroFills(t *testing.T) {
	path := testPath(t)
	f, err := Open(path, WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.NoError(t, f.Truncate(16))
	require.Equal(t, int64(16), f.Len())

	got, err := f.Bytes(0, 16)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 16), got)
}

func TestWriteOnReadOnlyFails(t *testing.T) {
	f, err := Open(testPath(t))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = f.Write([]byte("nope"))
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestWriteValueReadValueRoundTrip(t *testing.T) {
	type record struct {
		A uint64
		B int32
		C int32
	}

	f, err := Open(testPath(t), WithWritable())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	want := record{A: 0xdeadbeef, B: -7, C: 42}
	_, err = WriteValue(f, want)
	require.NoError(t, err)

	got, err := ReadValue[record](f, 0)
	require.NoError(t, err)
	require.Equal(t, want, *got)
}

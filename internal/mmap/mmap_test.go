package mmap

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, contents []byte) *os.File {
	f, err := os.CreateTemp(t.TempDir(), "bit-mmap.*.test")
	require.NoError(t, err)
	if len(contents) > 0 {
		_, err = f.Write(contents)
		require.NoError(t, err)
	}
	return f
}

func TestOpenEmpty(t *testing.T) {
	f := createTestFile(t, nil)
	defer func() { _ = f.Close() }()

	m, err := Open(f, 0, false)
	require.NoError(t, err)
	require.Nil(t, m.Data())
	require.Equal(t, int64(0), m.Len())
	require.NoError(t, m.Close())
}

func TestOpenReadOnly(t *testing.T) {
	contents := []byte("hello, mmap")
	f := createTestFile(t, contents)
	defer func() { _ = f.Close() }()

	m, err := Open(f, int64(len(contents)), false)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	require.Equal(t, contents, m.Data())
	require.False(t, m.Writable())
}

func TestOpenWritablePatchesFile(t *testing.T) {
	contents := []byte("0123456789")
	f := createTestFile(t, contents)
	defer func() { _ = f.Close() }()

	m, err := Open(f, int64(len(contents)), true)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	require.True(t, m.Writable())
	data := m.Data()
	data[0] = 'X'

	back := make([]byte, 1)
	_, err = f.ReadAt(back, 0)
	require.NoError(t, err)
	require.Equal(t, byte('X'), back[0])
}

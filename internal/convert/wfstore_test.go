package convert

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaveformStoreAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.w")

	s, err := OpenWaveformStore(path)
	require.NoError(t, err)

	off, err := s.Append([]int32{1, -2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	off, err = s.Append([]int32{100000})
	require.NoError(t, err)
	assert.Equal(t, int64(12), off)
	assert.Equal(t, int64(16), s.Offset())

	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 16)

	decoded := make([]int32, 4)
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.NativeEndian, decoded))
	assert.Equal(t, []int32{1, -2, 3, 100000}, decoded)
}

func TestWaveformStoreEmptyAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.w")

	s, err := OpenWaveformStore(path)
	require.NoError(t, err)

	off, err := s.Append(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)
	assert.Equal(t, int64(0), s.Offset())

	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestWaveformStoreTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.w")
	require.NoError(t, os.WriteFile(path, []byte("stale bytes"), 0o644))

	s, err := OpenWaveformStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndCopy(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "icon.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF, '\n'}
	require.NoError(t, os.WriteFile(src, payload, 0o600))

	s := New()
	data, err := s.Read(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	dst := filepath.Join(dir, "out", "deep", "icon.png")
	require.NoError(t, s.Copy(ctx, src, dst))
	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, copied)
}

func TestReadMissing(t *testing.T) {
	_, err := New().Read(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWriteAtomic(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b.json")

	require.NoError(t, WriteAtomic(ctx, path, []byte("v1")))
	require.NoError(t, WriteAtomic(ctx, path, []byte("v2")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestWriteAtomicCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "x.json")
	assert.ErrorIs(t, WriteAtomic(ctx, path, []byte("x")), context.Canceled)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

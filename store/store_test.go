package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlobStore(t *testing.T, bs BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := bs.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, bs.Put(ctx, "a/one", []byte("first")))
	require.NoError(t, bs.Put(ctx, "a/two", []byte("second")))
	require.NoError(t, bs.Put(ctx, "b/three", []byte("third")))

	data, err := ReadBlob(ctx, bs, "a/two")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	// Put replaces.
	require.NoError(t, bs.Put(ctx, "a/one", []byte("replaced")))
	data, err = ReadBlob(ctx, bs, "a/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), data)

	names, err := bs.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two"}, names)

	all, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one", "a/two", "b/three"}, all)

	// Partial reads via ReaderAt.
	b, err := bs.Open(ctx, "a/two")
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(6), b.Size())
	buf := make([]byte, 3)
	n, err := b.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("con"), buf)
}

func TestMemoryStore(t *testing.T) {
	testBlobStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	bs, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	testBlobStore(t, bs)
}

func TestMemoryStoreIsolatesBuffers(t *testing.T) {
	ctx := context.Background()
	bs := NewMemoryStore()

	data := []byte("mutable")
	require.NoError(t, bs.Put(ctx, "x", data))
	data[0] = 'X'

	got, err := ReadBlob(ctx, bs, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("mutable"), got)
}

func TestThrottledPassesThrough(t *testing.T) {
	ctx := context.Background()
	bs := NewThrottled(NewMemoryStore(), 1<<30, 1<<20)

	require.NoError(t, bs.Put(ctx, "x", []byte("payload")))
	got, err := ReadBlob(ctx, bs, "x")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names)
}

func TestThrottledChunksLargeWrites(t *testing.T) {
	ctx := context.Background()
	// Burst of 4 bytes forces a 10-byte write to reserve in chunks.
	bs := NewThrottled(NewMemoryStore(), 1e6, 4)

	require.NoError(t, bs.Put(ctx, "x", []byte("0123456789")))
	got, err := ReadBlob(ctx, bs, "x")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestThrottledHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// One byte per second: the second chunk cannot be served in time.
	bs := NewThrottled(NewMemoryStore(), 1, 1)
	err := bs.Put(ctx, "x", []byte("ab"))
	assert.Error(t, err)
}

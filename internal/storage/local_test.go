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

func TestLocalStoreRoundtrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Put(ctx, "invoice.pdf", []byte("contents"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "invoice.pdf"))

	data, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("contents"), data)

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorePutNamespacesCollidingNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Put(ctx, "photo.jpg", []byte("one"))
	require.NoError(t, err)
	second, err := store.Put(ctx, "photo.jpg", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	data, err := store.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)
}

func TestLocalStorePutStripsDirectoryComponents(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Put(context.Background(), "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "passwd"))
	assert.NotContains(t, path, "..")
}

func TestLocalStoreCannotReachOutsideBase(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "objects")
	store, err := NewLocalStore(base)
	require.NoError(t, err)

	secret := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep out"), 0o644))

	_, err = store.Get(context.Background(), "../secret.txt")
	assert.Error(t, err)

	err = store.Delete(context.Background(), "../secret.txt")
	assert.Error(t, err)
	_, statErr := os.Stat(secret)
	assert.NoError(t, statErr)
}

func TestNewLocalStoreRequiresBaseDir(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)
}

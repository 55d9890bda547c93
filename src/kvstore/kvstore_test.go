package kvstore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/state/ollamadesk/kv.json")
	require.NoError(t, err)

	require.NoError(t, store.Set("server_host", "http://127.0.0.1:11434"))

	v, err := store.Get("server_host")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434", v)

	// Values survive a reopen.
	reopened, err := NewFileStore(fs, "/state/ollamadesk/kv.json")
	require.NoError(t, err)
	v, err = reopened.Get("server_host")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434", v)
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(afero.NewMemMapFs(), "/kv.json")
	require.NoError(t, err)

	_, err = store.Get("absent")
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(afero.NewMemMapFs(), "/kv.json")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Delete("k"))
	_, err = store.Get("k")
	assert.ErrorIs(t, err, ErrNoValue)

	// Deleting an absent key is a no-op.
	require.NoError(t, store.Delete("k"))
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set("k", "v"))
	v, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	require.NoError(t, store.Delete("k"))
	_, err = store.Get("k")
	assert.ErrorIs(t, err, ErrNoValue)
}

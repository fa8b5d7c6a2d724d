package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	cp := Checkpoint{LastEndTimestamp: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:05Z"}
	require.NoError(t, store.Set("prod_acme_last_end_date", cp))

	got, ok, err := store.Get("prod_acme_last_end_date")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cp, got)
}

func TestFileStore_MissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get("never_written")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_OverwritesWhole(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", Checkpoint{LastEndTimestamp: "old", UpdatedAt: "old"}))
	require.NoError(t, store.Set("k", Checkpoint{LastEndTimestamp: "new"}))

	got, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.LastEndTimestamp)
	assert.Empty(t, got.UpdatedAt)
}

func TestFileStore_CorruptFileIsReadError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte("{broken"), 0o644))
	_, _, err = store.Get("k")
	assert.Error(t, err)
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("a/b c_last_end_date", Checkpoint{LastEndTimestamp: "x"}))

	got, ok, err := store.Get("a/b c_last_end_date")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", got.LastEndTimestamp)

	// No path traversal: everything stays inside the state dir.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a_b_c_last_end_date.json", entries[0].Name())
}

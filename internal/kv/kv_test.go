package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/CycleWarden/internal/config"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"file":   file,
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "absent")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_PutThenGetOverwrites(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "@ignite-timer:cycles-state-1.0.0"

			require.NoError(t, store.Put(ctx, key, []byte(`{"v":1}`)))
			require.NoError(t, store.Put(ctx, key, []byte(`{"v":2}`)))

			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(got))
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'z'

	got, _ := store.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestFileStore_AtomicWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "state", []byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.Path("state")), entries[0].Name())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cycles.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, ":memory:", sqlitePath(":memory:"))
	assert.Equal(t, "/var/lib/x.db", sqlitePath("/var/lib/x.db"))
	assert.Equal(t, filepath.Join("/var/lib/cw", "cyclewarden.db"), sqlitePath("/var/lib/cw"))
}

func TestNATSKey(t *testing.T) {
	assert.Equal(t, "ignite-timer.cycles-state-1.0.0", natsKey("ignite-timer.cycles-state-1.0.0"))
	assert.Equal(t, "_ignite-timer_cycles-state-1.0.0", natsKey("@ignite-timer:cycles-state-1.0.0"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(ctx, config.StorageConfig{Backend: config.BackendFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = Open(ctx, config.StorageConfig{Backend: "etcd"})
	assert.Error(t, err)
}

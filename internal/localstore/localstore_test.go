package localstore

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) (*SQLiteStorage, func()) {
	path := "./test_localstore_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	store, err := OpenSQLite(path)
	require.NoError(t, err)
	return store, func() {
		store.Close()
		os.Remove(path)
	}
}

func TestStorageImplementations(t *testing.T) {
	sqliteStore, cleanup := setupSQLite(t)
	defer cleanup()

	for name, store := range map[string]Storage{
		"sqlite": sqliteStore,
		"memory": NewMemoryStorage(),
	} {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(KeyBookmarks)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(KeyBookmarks, `["a"]`))
			require.NoError(t, store.Set(KeyBookmarks, `["a","b"]`))

			v, ok, err := store.Get(KeyBookmarks)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `["a","b"]`, v)

			require.NoError(t, store.Remove(KeyBookmarks))
			_, ok, err = store.Get(KeyBookmarks)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, store.Remove(KeyBookmarks))
		})
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := "./test_localstore_reopen.db"
	defer os.Remove(path)

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyReadingSettings, `{"nightMode":true}`))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get(KeyReadingSettings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"nightMode":true}`, v)
}

func TestMemoryStorage_SetErr(t *testing.T) {
	store := NewMemoryStorage()
	store.SetErr = errors.New("quota exceeded")

	assert.Error(t, store.Set(KeyBookmarks, "[]"))
	_, ok, _ := store.Get(KeyBookmarks)
	assert.False(t, ok)
}

package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := store.Get(ctx, "team:missing")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Set(ctx, "team:t1", []byte(`{"id":"t1"}`)))

			raw, ok, err := store.Get(ctx, "team:t1")
			require.NoError(t, err)
			require.True(t, ok)
			require.JSONEq(t, `{"id":"t1"}`, string(raw))

			require.NoError(t, store.Remove(ctx, "team:t1"))
			_, ok, err = store.Get(ctx, "team:t1")
			require.NoError(t, err)
			require.False(t, ok)

			// Removing an absent key is not an error.
			require.NoError(t, store.Remove(ctx, "team:t1"))
		})
	}
}

func TestStorePutRecordMaintainsIndex(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			indexKey := TeamScopedIndexKey(KindPlayer, "t1")

			require.NoError(t, store.PutRecord(ctx, PrimaryKey(KindPlayer, "p1"), []byte(`{"id":"p1"}`), indexKey, "p1"))
			require.NoError(t, store.PutRecord(ctx, PrimaryKey(KindPlayer, "p2"), []byte(`{"id":"p2"}`), indexKey, "p2"))

			// Re-saving must not duplicate the index entry.
			require.NoError(t, store.PutRecord(ctx, PrimaryKey(KindPlayer, "p1"), []byte(`{"id":"p1","v":2}`), indexKey, "p1"))

			ids, err := store.Index(ctx, indexKey)
			require.NoError(t, err)
			require.Equal(t, []string{"p1", "p2"}, ids)

			require.NoError(t, store.DeleteRecord(ctx, PrimaryKey(KindPlayer, "p1"), indexKey, "p1"))

			ids, err = store.Index(ctx, indexKey)
			require.NoError(t, err)
			require.Equal(t, []string{"p2"}, ids)

			_, ok, err := store.Get(ctx, PrimaryKey(KindPlayer, "p1"))
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStoreEmptyIndexKeySkipsIndex(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.PutRecord(ctx, PrimaryKey(KindTeam, "t1"), []byte(`{"id":"t1"}`), "", "t1"))

			ids, err := store.Index(ctx, TeamIndexKey)
			require.NoError(t, err)
			require.Empty(t, ids)
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.PutRecord(ctx, PrimaryKey(KindTeam, "t1"), []byte(`{"id":"t1"}`), TeamIndexKey, "t1"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	raw, ok, err := reopened.Get(ctx, PrimaryKey(KindTeam, "t1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"id":"t1"}`, string(raw))

	ids, err := reopened.Index(ctx, TeamIndexKey)
	require.NoError(t, err)
	require.Equal(t, []string{"t1"}, ids)
}

func TestIndexKeyFor(t *testing.T) {
	require.Equal(t, TeamIndexKey, IndexKeyFor(KindTeam, ""))
	require.Equal(t, "player:team:t1", IndexKeyFor(KindPlayer, "t1"))
	require.Equal(t, "", IndexKeyFor(KindPlayer, ""))
}

package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/geosync/internal/client/migrations"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func TestGet_AbsentKey(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), KeyDeviceCode)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_InsertsThenOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyDeviceCode, []byte("dev-1")))
	require.NoError(t, r.Set(ctx, KeyDeviceCode, []byte("dev-2")))

	v, err := r.Get(ctx, KeyDeviceCode)
	require.NoError(t, err)
	require.Equal(t, []byte("dev-2"), v)
}

func TestSet_NilValueStoredEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyLastSyncAt, nil))

	v, err := r.Get(ctx, KeyLastSyncAt)
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Empty(t, v)
}

func TestDelete_SyncKeysKeepsDeviceCode(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyDeviceCode, []byte("dev-1")))
	require.NoError(t, r.Set(ctx, KeyLastSyncAt, []byte("2024-01-01T09:00:00.000Z")))
	require.NoError(t, r.Set(ctx, KeyLastSyncReport, []byte(`{}`)))

	require.NoError(t, r.Delete(ctx, SyncKeys...))

	for _, k := range SyncKeys {
		v, err := r.Get(ctx, k)
		require.NoError(t, err)
		require.Nil(t, v, k)
	}
	v, err := r.Get(ctx, KeyDeviceCode)
	require.NoError(t, err)
	require.Equal(t, []byte("dev-1"), v)

	// absent keys and an empty list are no-ops
	require.NoError(t, r.Delete(ctx, SyncKeys...))
	require.NoError(t, r.Delete(ctx))
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	err = r.Delete(ctx, "a", "b")
	require.ErrorContains(t, err, "failed to delete metadata[a b]")
}

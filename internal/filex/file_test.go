package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	dsn := filepath.Join(tmp, "data", "local", "geo.db")

	got, err := EnsureParentDir(dsn)
	require.NoError(t, err)

	want := filepath.Join(tmp, "data", "local")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "data", "geo.db")

	first, err := EnsureParentDir(dsn)
	require.NoError(t, err)

	second, err := EnsureParentDir(dsn)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureParentDir_Skips(t *testing.T) {
	for _, dsn := range []string{"", ":memory:", "file:geo.db?mode=memory", "geo.db"} {
		got, err := EnsureParentDir(dsn)
		require.NoError(t, err, dsn)
		require.Empty(t, got, dsn)
	}
}

func TestEnsureParentDir_Error(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureParentDir(filepath.Join(blocker, "sub", "geo.db"))
	require.Error(t, err)
}

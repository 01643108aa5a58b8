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
	path := filepath.Join(tmp, "a", "b", "state.db")

	require.NoError(t, EnsureParentDir(path, 0o700))

	fi, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "the file itself is not created")
}

func TestEnsureParentDir_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x", "state.db")

	require.NoError(t, EnsureParentDir(path, 0o700))
	require.NoError(t, EnsureParentDir(path, 0o700))
}

func TestEnsureParentDir_NothingToDo(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, EnsureParentDir(":memory:", 0o700))
	require.NoError(t, EnsureParentDir("state.db", 0o700))
	require.NoError(t, EnsureParentDir("", 0o700))
}

func TestEnsureParentDir_FailsUnderAFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(blocker, "sub", "state.db"), 0o700)
	require.Error(t, err)
}

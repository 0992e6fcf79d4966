package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic_ReplacesFile(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "handles.json")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644)) //nolint:gosec // G306: Test file, relaxed perms OK
	require.NoError(t, WriteAtomic(target, []byte("new"), 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: Test path from t.TempDir()
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteAtomic_CreatesParents(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "a", "b", "state.json")
	require.NoError(t, WriteAtomic(target, []byte("x"), 0o600))

	_, err := os.Stat(target)
	require.NoError(t, err)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_FailureLeavesOriginalFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "state.json")
	require.NoError(t, os.WriteFile(target, []byte("original"), 0o644)) //nolint:gosec // G306: Test file, relaxed perms OK

	require.NoError(t, os.Chmod(tmpDir, 0o500)) //nolint:gosec // G302: Test uses intentionally restrictive perms
	t.Cleanup(func() {
		_ = os.Chmod(tmpDir, 0o700) //nolint:gosec // G302: Restoring perms in test cleanup
	})

	require.Error(t, WriteAtomic(target, []byte("replacement"), 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: Test path from t.TempDir()
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestWriteAtomic_EmptyPath(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, WriteAtomic("", []byte("data"), 0o600), ErrEmptyPath)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(target, map[string]int{"n": 1}, 0o600))

	data, err := os.ReadFile(target) //nolint:gosec // G304: Test path from t.TempDir()
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(data))

	require.Error(t, WriteJSON(target, make(chan int), 0o600))
}

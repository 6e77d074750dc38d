package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_RollbackRestoresPriorContent(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "example.c")
	created := filepath.Join(tempDir, "example.h")
	require.NoError(t, os.WriteFile(existing, []byte("original\n"), 0600))

	tx := NewTransaction()
	require.NoError(t, tx.WriteFile(existing, []byte("regenerated\n"), 0644))
	require.NoError(t, tx.WriteFile(created, []byte("new\n"), 0644))

	require.NoError(t, tx.Rollback())

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(content))

	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(created)
	assert.True(t, os.IsNotExist(err), "file created in the transaction should be removed")
}

func TestTransaction_FirstSnapshotWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.c")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	tx := NewTransaction()
	require.NoError(t, tx.WriteFile(path, []byte("v2"), 0644))
	require.NoError(t, tx.WriteFile(path, []byte("v3"), 0644))
	require.NoError(t, tx.Rollback())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(content))
}

func TestTransaction_CommitKeepsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.c")

	tx := NewTransaction()
	require.NoError(t, tx.WriteFile(path, []byte("content"), 0644))
	require.NoError(t, tx.Commit())

	// Rollback after commit is a no-op.
	require.NoError(t, tx.Rollback())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

func TestTransaction_CannotCommitTwice(t *testing.T) {
	tx := NewTransaction()
	require.NoError(t, tx.Commit())

	assert.Error(t, tx.Commit())
	assert.Error(t, tx.Snapshot(filepath.Join(t.TempDir(), "late.c")))
}

func TestTransaction_WriteFailureLeavesSnapshot(t *testing.T) {
	tempDir := t.TempDir()
	ok := filepath.Join(tempDir, "ok.c")
	bad := filepath.Join(tempDir, "missing-dir", "bad.c")

	tx := NewTransaction()
	require.NoError(t, tx.WriteFile(ok, []byte("x"), 0644))
	require.Error(t, tx.WriteFile(bad, []byte("y"), 0644))
	require.NoError(t, tx.Rollback())

	_, err := os.Stat(ok)
	assert.True(t, os.IsNotExist(err))
}

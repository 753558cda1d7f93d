package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir))
}

func TestCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mappings.csv"), []byte("txn_id\n"), 0o644))

	changed, err := HasChanges(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	hash, err := Commit(dir, "reconcile: 2 results")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, gitLog(t, dir, "%s"), "reconcile: 2 results")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), AuthorName+" <"+AuthorEmail+">")
	assert.Contains(t, gitLog(t, dir, "%cn"), AuthorName)

	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed, "work tree is clean after commit")
}

func TestCommit_NothingToCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	_, err := Commit(dir, "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git commit")
}

func TestHasChanges_NotARepo(t *testing.T) {
	requireGit(t)
	_, err := HasChanges(t.TempDir())
	require.Error(t, err)
}

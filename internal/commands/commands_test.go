package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tradematch/internal/commands"
	"github.com/cleared-dev/tradematch/internal/gitops"
)

func runTradematch(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// initRepo creates a fresh tradematch repo in a temp dir, without git.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runTradematch(t, "init", dir, "--name", "Test Account", "--no-git")
	require.NoError(t, err)
	return dir
}

func requireGit(t *testing.T) {
	t.Helper()
	if !gitops.Available() {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format=%s")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

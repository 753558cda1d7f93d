package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&HistoryParser{})
	p := r.Get("robinhood")
	require.NotNil(t, p)
	assert.Equal(t, "robinhood", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&HistoryParser{})
	assert.NotNil(t, r.Get("Robinhood"))
	assert.NotNil(t, r.Get("ROBINHOOD"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&HistoryParser{})
	assert.Panics(t, func() { r.Register(&HistoryParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(Settings{Lookahead: 12, LegLookahead: 4})
	p, ok := r.Get("Robinhood").(*HistoryParser)
	require.True(t, ok)
	assert.Equal(t, 12, p.Lookahead)
	assert.Equal(t, 4, p.LegLookahead)
	assert.Nil(t, r.Get("schwab"))
}

func TestScan_FindsHistoryFiles(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "history.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "feed.json"), []byte("[]"), 0o644))

	files, err := Scan(dir, ".txt")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "history.txt", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.txt"), []byte("data"), 0o644))

	files, err := Scan(dir, ".txt")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.txt", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir, ".txt")
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "history.txt"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "history.txt")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(importDir, "history.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "history.txt"))
	assert.NoError(t, err)
}

func TestMarkProcessed_MissingFile(t *testing.T) {
	dir := t.TempDir()
	err := MarkProcessed(dir, "missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moving missing.txt")
}

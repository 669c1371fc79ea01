package writeback_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/writeback"
)

func TestWrite_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cpp")

	require.NoError(t, writeback.Write(path, []byte("class A {};"), writeback.Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {};", string(data))
}

func TestWrite_ReplacesExistingFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.cpp")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, writeback.Write(path, []byte("new content"), writeback.Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))

	// No leftover temp file.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".stereoscope.tmp"))
	}
}

func TestWrite_BackupPreservesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.cpp")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	require.NoError(t, writeback.Write(path, []byte("updated"), writeback.Options{Backup: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var sawBackup bool
	for _, e := range entries {
		if strings.Contains(e.Name(), ".bak.") {
			sawBackup = true
			content, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			assert.Equal(t, "original", string(content))
		}
	}
	assert.True(t, sawBackup, "backup file must be created when Options.Backup is set")
}

func TestWrite_NoBackupWhenOriginalAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.cpp")

	require.NoError(t, writeback.Write(path, []byte("fresh"), writeback.Options{Backup: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no backup should be made when there is nothing to back up")
}

func TestEnsureDir_CreatesParent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "deep", "out.cpp")

	require.NoError(t, writeback.EnsureDir(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

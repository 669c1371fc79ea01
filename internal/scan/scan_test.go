package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/scan"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestWalk_ResolvesLanguageByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.cpp", "class A {};")
	writeFile(t, root, "b.cs", "class B {}")
	writeFile(t, root, "c.java", "class C {}")
	writeFile(t, root, "readme.md", "not source")

	files, err := scan.Walk(root, scan.Options{})
	require.NoError(t, err)

	byLang := map[lang.Language]int{}
	for _, f := range files {
		byLang[f.Language]++
	}
	assert.Equal(t, 1, byLang[lang.CPP])
	assert.Equal(t, 1, byLang[lang.CSH])
	assert.Equal(t, 1, byLang[lang.JVA])
	assert.Len(t, files, 3)
}

func TestWalk_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "vendor/\n")
	writeFile(t, root, "a.cpp", "class A {};")
	writeFile(t, root, "vendor/b.cpp", "class B {};")

	files, err := scan.Walk(root, scan.Options{})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "a.cpp"), files[0].Path)
}

func TestWalk_NoGitignoreSkipsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "vendor/\n")
	writeFile(t, root, "vendor/b.cpp", "class B {};")

	files, err := scan.Walk(root, scan.Options{NoGitignore: true})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWalk_IncludeAndExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.cpp", "class A {};")
	writeFile(t, root, "test/b.cpp", "class B {};")

	files, err := scan.Walk(root, scan.Options{
		IncludeGlobs: []string{"src/**"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Path, "src")

	files, err = scan.Walk(root, scan.Options{
		ExcludeGlobs: []string{"test/**"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Path, "src")
}

func TestReadSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.cpp", "class A {};")

	data, err := scan.ReadSource(filepath.Join(root, "a.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "class A {};", string(data))
}

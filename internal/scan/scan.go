// Package scan walks an input directory and resolves each source file to
// the language it should be parsed as, honoring .gitignore and optional
// include/exclude globs — the same shape as the teacher's directory
// walker, narrowed to the three dialects stereoscope understands.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/oxhq/stereoscope/internal/lang"
)

// extensionLanguage maps a file extension to the dialect that parses it.
var extensionLanguage = map[string]lang.Language{
	".cpp": lang.CPP, ".cc": lang.CPP, ".cxx": lang.CPP,
	".h": lang.CPP, ".hpp": lang.CPP, ".hxx": lang.CPP,
	".cs": lang.CSH,
	".java": lang.JVA,
}

// File is one discovered source file paired with its resolved language.
type File struct {
	Path     string
	Language lang.Language
}

// Options controls traversal.
type Options struct {
	IncludeGlobs []string
	ExcludeGlobs []string
	NoGitignore  bool
}

// Walk enumerates every file under root whose extension maps to a
// supported language and that is not excluded by .gitignore or the
// exclude globs (and, when include globs are given, matches at least one).
func Walk(root string, opts Options) ([]File, error) {
	var gi *ignore.GitIgnore
	if !opts.NoGitignore {
		if compiled, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			gi = compiled
		}
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if d.Name() == ".git" || (gi != nil && gi.MatchesPath(rel)) {
				return fs.SkipDir
			}
			return nil
		}

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		language, ok := extensionLanguage[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		if len(opts.IncludeGlobs) > 0 && !matchesAny(opts.IncludeGlobs, rel, path) {
			return nil
		}
		if matchesAny(opts.ExcludeGlobs, rel, path) {
			return nil
		}

		files = append(files, File{Path: path, Language: language})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}
	return files, nil
}

func matchesAny(patterns []string, rel, full string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.PathMatch(p, rel); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(p, full); err == nil && matched {
			return true
		}
	}
	return false
}

// ReadSource reads the file's bytes, the sole I/O the engine needs before
// parsing.
func ReadSource(path string) ([]byte, error) {
	return os.ReadFile(path)
}

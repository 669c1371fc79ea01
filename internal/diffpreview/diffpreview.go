// Package diffpreview implements C15, the DiffPreview: a unified diff
// between a unit's prior annotated form and its freshly computed form,
// restricted to stereotype-bearing lines, used for idempotence checks and
// by the CLI's --diff-against option, which prints it after the output
// has been written.
package diffpreview

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified returns a unified diff of the stereotype-bearing lines only: any
// line containing "@stereotype" or carrying the reserved stereotype
// attribute marker. Non-stereotype lines that happen to differ (e.g.
// unrelated reformatting upstream) are not surfaced, keeping the preview
// scoped to what AnnotationEmitter actually changed.
func Unified(path, before, after string) (string, error) {
	beforeLines := stereotypeLines(before)
	afterLines := stereotypeLines(after)

	if beforeLines == afterLines {
		return "", nil
	}

	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(beforeLines),
		B:        difflib.SplitLines(afterLines),
		FromFile: path,
		ToFile:   path + " (annotated)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(d)
}

// stereotypeLines keeps only lines that carry a stereotype marker, joined
// back with newlines, so the diff ignores unrelated content drift.
func stereotypeLines(source string) string {
	var kept []string
	for _, line := range strings.Split(source, "\n") {
		if strings.Contains(line, "@stereotype") || strings.Contains(line, "stereotype=\"") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

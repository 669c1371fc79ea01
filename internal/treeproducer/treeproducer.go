// Package treeproducer is C10, the external parse-tree producer adapter.
// It owns zero inference logic: it only answers the four operations spec
// §6 requires of a producer (enumerate units, report a unit's language,
// run a path expression against a unit, serialize a subnode to text),
// implemented over github.com/smacker/go-tree-sitter.
package treeproducer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/stereoscope/internal/lang"
)

// Unit is one source file, parsed once and held for the duration of a run.
type Unit struct {
	Path     string
	Language lang.Language
	Source   []byte
	Tree     *sitter.Tree
}

// Archive is the set of parsed units for one analysis run.
type Archive struct {
	Units []*Unit
}

// Producer parses source bytes into Units using the Tree-sitter grammar
// selected by the language registry.
type Producer struct {
	registry *lang.Registry
}

func New(registry *lang.Registry) *Producer {
	return &Producer{registry: registry}
}

// Parse parses one file's content as the given language.
func (p *Producer) Parse(ctx context.Context, path string, language lang.Language, source []byte) (*Unit, error) {
	provider, err := p.registry.Get(language)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(provider.SitterLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("treeproducer: parse %s: %w", path, err)
	}

	return &Unit{Path: path, Language: language, Source: source, Tree: tree}, nil
}

// Query runs a Tree-sitter query string against a unit and returns every
// node captured as "@target", in document order. An unmatched query
// yields an empty slice and no error — queries are treated as infallible
// per spec §7.
func (p *Producer) Query(unit *Unit, provider lang.Provider, queryStr string) ([]*sitter.Node, error) {
	if queryStr == "" {
		return nil, nil
	}
	q, err := sitter.NewQuery([]byte(queryStr), provider.SitterLanguage())
	if err != nil {
		// Malformed query template: treated as "no matches" rather than a
		// fatal error, matching the infallible-query contract.
		return nil, nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, unit.Tree.RootNode())

	var results []*sitter.Node
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			name := q.CaptureNameForId(capture.Index)
			if name == "target" {
				results = append(results, capture.Node)
			}
		}
	}
	return results, nil
}

// Serialize returns the verbatim source text of a node.
func Serialize(unit *Unit, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(unit.Source)
}

// FormatQuery substitutes a predicate into every "%s" placeholder of a
// query template, or returns the template unchanged if it has none — used to
// turn a C1 query ("match all classes") into a name-constrained query
// ("match class X") by injecting a Tree-sitter `(#eq? ...)` predicate, and
// into an unconstrained enumeration query by injecting "".
func FormatQuery(template, predicate string) string {
	if template == "" {
		return ""
	}
	count := 0
	for i := 0; i+1 < len(template); i++ {
		if template[i] == '%' && template[i+1] == 's' {
			count++
		}
	}
	if count == 0 {
		return template
	}
	out := template
	for i := 0; i < count; i++ {
		out = replaceFirst(out, "%s", predicate)
	}
	return out
}

func replaceFirst(s, old, new string) string {
	idx := indexOf(s, old)
	if idx < 0 {
		return s
	}
	return s[:idx] + new + s[idx+len(old):]
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

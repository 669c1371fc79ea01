// Package exprrule implements the expression-to-variable rule of spec
// §4.7, used by both C3 (extraction: return/use/modify classification)
// and C6 (CallFilter: resolving a method-call receiver to a field).
package exprrule

import (
	"regexp"
	"strings"
	"sync"

	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// Mode selects which side effects apply_ rule performs.
type Mode int

const (
	ModeReturn Mode = iota
	ModeUse
	ModeModify
)

// Resolution is what the rule found an expression to resolve to.
type Resolution int

const (
	ResolvedNone Resolution = iota
	ResolvedLocal
	ResolvedParameter
	ResolvedField
)

// Outcome reports the resolution plus the name resolved and whether the
// parameter-reference-aliasing sub-rule fired (modify mode only).
type Outcome struct {
	Kind             Resolution
	Name             string
	ParameterIsRef   bool
	CreatedWithNew   bool // field branch + name in variablesCreatedWithNew
}

var (
	compiledMu sync.Mutex
	compiled   = map[lang.Language]*regexp.Regexp{}
)

// compile returns the language's expression-splitting regex, compiled
// once and cached — spec §9 design note: "treat the three patterns as
// data, not code, and compile them once per language."
func compile(p lang.Provider) *regexp.Regexp {
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if re, ok := compiled[p.Lang()]; ok {
		return re
	}
	re := regexp.MustCompile(p.ExprToVariablePattern())
	compiled[p.Lang()] = re
	return re
}

// trimOuter trims whitespace, balanced outer parentheses/braces, array
// suffixes, a leading "*" (CPP/CSH), and CSH null-conditional "?".
func trimOuter(expr string, p lang.Provider) string {
	e := strings.TrimSpace(expr)
	for {
		changed := false
		if len(e) >= 2 && ((e[0] == '(' && e[len(e)-1] == ')') || (e[0] == '{' && e[len(e)-1] == '}')) {
			inner := e[1 : len(e)-1]
			if balanced(inner) {
				e = strings.TrimSpace(inner)
				changed = true
			}
		}
		for strings.HasSuffix(e, "]") {
			if idx := strings.LastIndex(e, "["); idx >= 0 {
				e = strings.TrimSpace(e[:idx])
				changed = true
			} else {
				break
			}
		}
		if changed {
			continue
		}
		break
	}
	if p.Lang() == lang.CPP || p.Lang() == lang.CSH {
		e = strings.TrimPrefix(e, "*")
	}
	if p.Lang() == lang.CSH {
		e = strings.ReplaceAll(e, "?", "")
	}
	return strings.TrimSpace(e)
}

func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Apply runs the expression-to-variable rule against one expression.
//
// Precedence on each candidate component: local -> parameter -> field. If
// it resolves to a local or parameter, any field-only side effect is
// cleared. In modify mode on a parameter, the reference-aliasing sub-rule
// is evaluated. Reaching the field branch sets CreatedWithNew when the
// resolved name is in variablesCreatedWithNew. If nothing matches in
// modify mode, the caller is expected to treat that as
// globalOrStaticModified.
func Apply(
	p lang.Provider,
	expr string,
	method *stereomodel.MethodModel,
	class *stereomodel.ClassModel,
	mode Mode,
) Outcome {
	e := trimOuter(expr, p)
	re := compile(p)

	m := re.FindStringSubmatch(e)
	var first, second string
	if m != nil {
		first = m[1]
		if len(m) > 2 {
			second = m[2]
		}
	} else {
		// No qualifier matched: treat the whole trimmed expression as a
		// bare name candidate.
		second = e
	}

	candidates := []string{second, first}
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		if v, ok := findLocal(method, cand); ok {
			_ = v
			return Outcome{Kind: ResolvedLocal, Name: cand}
		}
		if param, ok := findParameter(method, cand); ok {
			out := Outcome{Kind: ResolvedParameter, Name: cand}
			if mode == ModeModify {
				dotted := m != nil && cand == strings.TrimSpace(first)
				out.ParameterIsRef = isReferenceParameter(p, param, dotted)
			}
			return out
		}
	}

	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		if _, ok := class.Fields[cand]; ok {
			out := Outcome{Kind: ResolvedField, Name: cand}
			if _, created := method.VariablesCreatedWithNew[cand]; created {
				out.CreatedWithNew = true
			}
			return out
		}
	}

	return Outcome{Kind: ResolvedNone}
}

func findLocal(m *stereomodel.MethodModel, name string) (stereomodel.Variable, bool) {
	for _, l := range m.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return stereomodel.Variable{}, false
}

func findParameter(m *stereomodel.MethodModel, name string) (stereomodel.Variable, bool) {
	for _, pm := range m.Parameters {
		if pm.Name == name {
			return pm, true
		}
	}
	return stereomodel.Variable{}, false
}

// isReferenceParameter implements the three language-specific
// reference-aliasing tests from spec §4.7. dotted reports that the
// parameter was the qualifier of a dotted access ("p.X").
func isReferenceParameter(p lang.Provider, param stereomodel.Variable, dotted bool) bool {
	switch p.Lang() {
	case lang.CPP:
		return strings.ContainsAny(param.RawType, "&*") || strings.HasSuffix(param.Name, "[]")
	case lang.CSH:
		if strings.Contains(param.RawType, "out") || strings.Contains(param.RawType, "ref") ||
			strings.ContainsAny(param.RawType, "*") || strings.Contains(param.RawType, "[]") {
			return true
		}
		return param.NonPrimitive && dotted
	case lang.JVA:
		if strings.Contains(param.RawType, "[]") {
			return true
		}
		return param.NonPrimitive && dotted
	}
	return false
}

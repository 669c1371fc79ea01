// Package classify implements C2, the TypeClassifier: per-language
// primitive/ignored-call/type-modifier sets, merged with any
// user-supplied extensions, and the three pure classification operations
// every other component calls through rather than re-deriving.
package classify

import (
	"regexp"
	"strings"

	"github.com/oxhq/stereoscope/internal/lang"
)

// Extensions holds user-supplied additions to the built-in sets, as read
// by config.OptionLoader from the three optional JSON override files.
type Extensions struct {
	Primitives    []string
	IgnoredCalls  []string
	TypeModifiers []string // extra regex alternatives, OR'd into the pattern
}

// Tables is the compiled, per-language classifier built once at start-up
// and shared read-only by every MethodModel/ClassModel extraction. It is
// passed explicitly wherever classification is needed; there is no
// package-level singleton.
type Tables struct {
	provider   lang.Provider
	primitives map[string]struct{}
	ignored    map[string]struct{}
	modifierRe *regexp.Regexp
}

// Build compiles the classifier tables for one language, merging in any
// user extensions. Never fails: empty regex fragments are skipped, and if
// the combined modifier pattern does not compile, stripping falls back to
// a no-op instead of an error, matching the "classifier never throws" fail
// mode in spec §4.2.
func Build(p lang.Provider, ext Extensions) *Tables {
	primitives := cloneSet(p.Primitives())
	for _, t := range ext.Primitives {
		primitives[t] = struct{}{}
	}

	ignored := cloneSet(p.IgnoredCalls())
	for _, c := range ext.IgnoredCalls {
		ignored[c] = struct{}{}
	}

	pattern := p.TypeModifierPattern()
	for _, extra := range ext.TypeModifiers {
		if extra == "" {
			continue
		}
		pattern = pattern + "|" + extra
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		// Fall back to a pattern that never matches; stripping becomes a
		// no-op rather than a crash.
		re = regexp.MustCompile(`a^`)
	}

	return &Tables{provider: p, primitives: primitives, ignored: ignored, modifierRe: re}
}

func cloneSet(src map[string]struct{}) map[string]struct{} {
	dst := make(map[string]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// IsIgnoredCall reports whether the trailing name component of a callee
// (after the last "::", "->", or ".", and after any template argument
// list) is in this language's ignored set.
func (t *Tables) IsIgnoredCall(callee string) bool {
	trailing := TrailingNameComponent(callee)
	_, ignored := t.ignored[trailing]
	return ignored
}

// TrailingNameComponent strips namespace/receiver qualification and any
// trailing template argument list from a callee name, e.g.
// "std::vector<int>::push_back" -> "push_back".
func TrailingNameComponent(callee string) string {
	name := callee
	for _, sep := range []string{"::", "->", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	if idx := strings.Index(name, "<"); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// StripModifiers removes all specifiers, containers, and sigils, then
// collapses whitespace — the regex-based operation spec §4.2 names
// strip_modifiers.
func (t *Tables) StripModifiers(rawType string) string {
	stripped := t.modifierRe.ReplaceAllString(rawType, "")
	fields := strings.Fields(stripped)
	return strings.Join(fields, " ")
}

// IsPrimitive reports whether every comma-separated component of the
// stripped type is in the primitive set.
func (t *Tables) IsPrimitive(rawType string) bool {
	stripped := t.StripModifiers(rawType)
	if stripped == "" {
		return false
	}
	for _, part := range strings.Split(stripped, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := t.primitives[part]; !ok {
			return false
		}
	}
	return true
}

// Classification is the result of classify_non_primitive: whether a type
// is non-primitive, and whether it is additionally external to the
// enclosing class.
type Classification struct {
	NonPrimitive         bool
	NonPrimitiveExternal bool
}

// ClassifyNonPrimitive strips generics, splits by commas, removes
// namespaces from each component, and decides non-primitive /
// non-primitive-external against ownClassName. Unknown components are
// non-primitive-external by definition (spec §4.2 fail mode).
func (t *Tables) ClassifyNonPrimitive(rawType, ownClassName string) Classification {
	stripped := t.StripModifiers(rawType)
	if stripped == "" {
		return Classification{}
	}

	result := Classification{}
	for _, part := range strings.Split(stripped, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		simple := withoutNamespace(part)
		if _, ok := t.primitives[simple]; ok {
			continue
		}
		result.NonPrimitive = true
		if simple != ownClassName {
			result.NonPrimitiveExternal = true
		}
	}
	return result
}

func withoutNamespace(name string) string {
	name = strings.TrimSpace(name)
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	return name
}

// Package callfilter implements C6, the CallFilter: post-extraction,
// post-resolution classification of every call in a method using the
// resolved class+method tables.
package callfilter

import (
	"strings"

	"github.com/oxhq/stereoscope/internal/exprrule"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// thisAliases are receiver names that get a method call reclassified as a
// function call instead of counted as an external-method call (spec §4.6
// branch (a)). They are checked before field resolution, since the
// pseudo-field "this" would otherwise always resolve as a field.
var thisAliases = map[lang.Language][]string{
	lang.CPP: {"this"},
	lang.CSH: {"this", "base"},
	lang.JVA: {"this", "super"},
}

// Run applies C6 to every method of every class in the collection.
func Run(provider lang.Provider, classes []*stereomodel.ClassModel) {
	for _, class := range classes {
		for _, method := range class.Methods {
			filterMethod(provider, class, method)
		}
	}
}

func filterMethod(provider lang.Provider, class *stereomodel.ClassModel, m *stereomodel.MethodModel) {
	var keptFunctionCalls []stereomodel.Call
	for _, call := range m.FunctionCalls {
		if class.HasMethodSignature(call.Signature) {
			keptFunctionCalls = append(keptFunctionCalls, call)
			continue
		}
		m.NumExternalFunctionCalls++
	}
	m.FunctionCalls = keptFunctionCalls

	var keptMethodCalls []stereomodel.Call
	for _, call := range m.MethodCalls {
		receiver := receiverOf(call.Callee)
		if isThisAlias(provider.Lang(), receiver) {
			call.Signature = withoutNamespace(classifyTrailing(call.Callee)) + "(" + commaPlaceholder(call.Args) + ")"
			if class.HasMethodSignature(call.Signature) {
				m.FunctionCalls = append(m.FunctionCalls, call)
			} else {
				m.NumExternalFunctionCalls++
			}
			continue
		}

		outcome := exprrule.Apply(provider, receiver, m, class, exprrule.ModeUse)

		if outcome.Kind == exprrule.ResolvedField {
			keptMethodCalls = append(keptMethodCalls, call)
			if usedAsAccessor(call, m) {
				m.AccessorMethodCallUser = true
			}
			continue
		}

		switch outcome.Kind {
		case exprrule.ResolvedLocal, exprrule.ResolvedParameter:
			m.NumExternalMethodCalls++
		default:
			m.NumExternalFunctionCalls++
		}
	}
	m.MethodCalls = keptMethodCalls
}

// receiverOf extracts the "X" in "X.f(...)" / "X->f(...)".
func receiverOf(callee string) string {
	for _, sep := range []string{"->", "."} {
		if idx := strings.LastIndex(callee, sep); idx >= 0 {
			return strings.TrimSpace(callee[:idx])
		}
	}
	return callee
}

func isThisAlias(language lang.Language, receiver string) bool {
	for _, alias := range thisAliases[language] {
		if receiver == alias {
			return true
		}
	}
	return false
}

// usedAsAccessor marks a method as an accessor-method-call user when a
// kept method call's text appears inside one of the method's return
// expressions. Assignment right-hand sides are not checked.
func usedAsAccessor(call stereomodel.Call, m *stereomodel.MethodModel) bool {
	needle := call.Callee
	for _, expr := range m.ReturnExpressions {
		if strings.Contains(expr, needle) {
			return true
		}
	}
	return false
}

func withoutNamespace(name string) string {
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	return name
}

func classifyTrailing(callee string) string {
	name := callee
	for _, sep := range []string{"::", "->", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	return name
}

func commaPlaceholder(args string) string {
	depth := 0
	commas := 0
	for _, r := range args {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth <= 1 {
				commas++
			}
		}
	}
	return strings.Repeat(",", commas)
}

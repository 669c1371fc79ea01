// Package rules implements C7, the StereotypeRules: the pure function
// from accumulated MethodModel/ClassModel facts to stereotype labels,
// per spec §4.8.
package rules

import (
	"strings"

	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// ApplyMethodRules assigns m.Stereotypes in place, in the logical order
// spec §4.8 lists the labels. Constructor/destructor methods short-circuit.
func ApplyMethodRules(provider lang.Provider, m *stereomodel.MethodModel) {
	m.Stereotypes = nil

	if m.IsConstructorOrDtor {
		switch {
		case m.IsDestructor:
			m.Stereotypes = append(m.Stereotypes, "destructor")
		case m.IsCopyConstructor:
			m.Stereotypes = append(m.Stereotypes, "copy-constructor")
		default:
			m.Stereotypes = append(m.Stereotypes, "constructor")
		}
		return
	}

	fm := m.NumFieldsModified
	ccm := len(m.MethodCalls)
	ccf := len(m.FunctionCalls)
	ecf := m.NumExternalFunctionCalls
	ecm := m.NumExternalMethodCalls

	isVoid := isVoidReturn(provider, m.ReturnTypeRaw, m.ReturnTypeParsed)
	isBool := isBooleanReturn(m.ReturnTypeParsed)

	if m.NonCommentStatementCount == 0 {
		m.Stereotypes = append(m.Stereotypes, "empty")
	}

	if m.FieldReturned {
		m.Stereotypes = append(m.Stereotypes, "get")
	}

	collaboratorHint := m.FieldUsed || hasSiblingMethodCall(m)

	if isBool && m.ComplexReturn && collaboratorHint {
		m.Stereotypes = append(m.Stereotypes, "predicate")
	}

	if !isVoid && !isBool && m.ComplexReturn && collaboratorHint {
		m.Stereotypes = append(m.Stereotypes, "property")
	}

	if isVoid && m.ParameterRefModified && collaboratorHint {
		m.Stereotypes = append(m.Stereotypes, "void-accessor")
	}

	if fm == 1 && (ccm+ccf) <= 1 {
		m.Stereotypes = append(m.Stereotypes, "set")
	}

	commandEligible := fm >= 2 || (fm == 1 && (ccm+ccf) >= 2) || (fm == 0 && (ccm+ccf) >= 1)
	constGuard := true
	if provider.Lang() == lang.CPP && m.IsConst {
		constGuard = fm >= 2
	}
	if commandEligible && constGuard {
		if isVoid {
			m.Stereotypes = append(m.Stereotypes, "command")
		} else {
			m.Stereotypes = append(m.Stereotypes, "non-void-command")
		}
	}

	if m.NonPrimitiveReturnType && (m.NewReturned || m.FieldsCreatedWithNewAndReturned) {
		m.Stereotypes = append(m.Stereotypes, "factory")
	}

	if fm == 0 && ccm == 0 && ccf == 0 && ecm == 0 && ecf >= 1 {
		m.Stereotypes = append(m.Stereotypes, "wrapper")
	}

	if fm == 0 && ccm == 0 && ccf == 0 && (ecm >= 1 || m.NonPrimitiveLocalOrParamModified) {
		m.Stereotypes = append(m.Stereotypes, "controller")
	}

	if hasNonPrimitiveExternal(m) {
		m.Stereotypes = append(m.Stereotypes, "collaborator")
	}

	nonEmpty := m.NonCommentStatementCount != 0
	noCalls := ccm == 0 && ccf == 0 && ecf == 0 && ecm == 0 && len(m.ConstructorCalls) == 0

	if nonEmpty && !m.FieldUsed && ccm == 0 && ccf == 0 && (ecf+ecm+len(m.ConstructorCalls)) >= 1 {
		m.Stereotypes = append(m.Stereotypes, "stateless")
	}

	if nonEmpty && !m.FieldUsed && noCalls {
		m.Stereotypes = append(m.Stereotypes, "incidental")
	}

	if len(m.Stereotypes) == 0 {
		m.Stereotypes = append(m.Stereotypes, "unclassified")
	}
}

func isVoidReturn(provider lang.Provider, rawType, parsedType string) bool {
	t := strings.TrimSpace(parsedType)
	if t == "void" && strings.Contains(rawType, "*") {
		// The modifier pattern may have stripped the pointer sigil.
		return provider.IsVoidPointerVoid()
	}
	if t == "void" {
		return true
	}
	if t == "void*" || t == "void *" {
		return provider.IsVoidPointerVoid()
	}
	return t == ""
}

func isBooleanReturn(parsedType string) bool {
	switch strings.TrimSpace(parsedType) {
	case "bool", "boolean", "Boolean":
		return true
	default:
		return false
	}
}

func hasSiblingMethodCall(m *stereomodel.MethodModel) bool {
	return len(m.FunctionCalls) > 0
}

func hasNonPrimitiveExternal(m *stereomodel.MethodModel) bool {
	if m.NonPrimitiveExternalField || m.NonPrimitiveReturnTypeExternal {
		return true
	}
	for _, p := range m.Parameters {
		if p.NonPrimitiveExternal {
			return true
		}
	}
	for _, l := range m.Locals {
		if l.NonPrimitiveExternal {
			return true
		}
	}
	return false
}

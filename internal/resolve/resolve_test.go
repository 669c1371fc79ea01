package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/stereoscope/internal/extract"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

func newNamedClass(name string) *stereomodel.ClassModel {
	c := stereomodel.NewClassModel()
	c.NameRaw = name
	c.NameWithoutGeneric = name
	c.NameWithoutNsOrGen = name
	return c
}

func TestResolveAll_FieldsInheritedFromParent(t *testing.T) {
	base := newNamedClass("Base")
	base.AddField(stereomodel.Variable{Name: "id"})

	child := newNamedClass("Child")
	child.Parents = map[string]lang.InheritanceSpecifier{"Base": lang.Public}

	r := New([]*stereomodel.ClassModel{base, child})
	r.ResolveAll(nil)

	_, ok := child.Fields["id"]
	assert.True(t, ok, "child must inherit the parent's field")
}

func TestResolveAll_MethodSignaturesInherited(t *testing.T) {
	base := newNamedClass("Base")
	base.AddMethodSignature("run()")

	child := newNamedClass("Child")
	child.Parents = map[string]lang.InheritanceSpecifier{"Base": lang.Public}

	r := New([]*stereomodel.ClassModel{base, child})
	r.ResolveAll(nil)

	assert.True(t, child.HasMethodSignature("run()"))
}

func TestResolveAll_CyclicParentsRecordsDiagnosticNotPanic(t *testing.T) {
	a := newNamedClass("A")
	b := newNamedClass("B")
	a.Parents = map[string]lang.InheritanceSpecifier{"B": lang.Public}
	b.Parents = map[string]lang.InheritanceSpecifier{"A": lang.Public}

	r := New([]*stereomodel.ClassModel{a, b})
	assert.NotPanics(t, func() {
		r.ResolveAll(nil)
	})

	var sawCycle bool
	for _, d := range r.Diagnostics {
		if d.Code == "cyclic-parent" {
			sawCycle = true
		}
	}
	assert.True(t, sawCycle, "a cyclic parent graph must surface as a diagnostic, never a fatal error")
}

func TestResolveAll_FuzzyParentFallback(t *testing.T) {
	base := newNamedClass("Account")
	base.AddField(stereomodel.Variable{Name: "balance"})

	child := newNamedClass("Child")
	// Typo'd parent name, one edit away from "Account".
	child.Parents = map[string]lang.InheritanceSpecifier{"Acount": lang.Public}

	r := New([]*stereomodel.ClassModel{base, child})
	r.ResolveAll(nil)

	_, ok := child.Fields["balance"]
	assert.True(t, ok, "a typo'd parent name should still resolve via the fuzzy fallback")

	var sawFuzzy bool
	for _, d := range r.Diagnostics {
		if d.Code == "fuzzy-parent-resolved" {
			sawFuzzy = true
		}
	}
	assert.True(t, sawFuzzy)
}

func TestResolveAll_UnknownParentIsSkipped(t *testing.T) {
	child := newNamedClass("Child")
	child.Parents = map[string]lang.InheritanceSpecifier{"Nonexistent": lang.Public}

	r := New([]*stereomodel.ClassModel{child})
	assert.NotPanics(t, func() {
		r.ResolveAll(nil)
	})
}

func TestAttachExternalMethods_CPPQualifiedFreeFunction(t *testing.T) {
	owner := newNamedClass("Account")
	owner.Language = lang.CPP

	fn := stereomodel.NewMethodModel()
	fn.NameSignature = "withdraw()"
	free := map[lang.Language][]extract.FreeFunction{
		lang.CPP: {{Method: fn, Name: "Account::withdraw"}},
	}

	r := New([]*stereomodel.ClassModel{owner})
	r.ResolveAll(free)

	assert.Contains(t, owner.Methods, fn)
	assert.True(t, owner.HasMethodSignature("withdraw()"))
	assert.Empty(t, r.RemainingFreeFunctions)
}

func TestAttachExternalMethods_UnattachedFreeFunctionRemains(t *testing.T) {
	owner := newNamedClass("Account")
	owner.Language = lang.CPP

	fn := stereomodel.NewMethodModel()
	free := map[lang.Language][]extract.FreeFunction{
		lang.CPP: {{Method: fn, Name: "helper"}},
	}

	r := New([]*stereomodel.ClassModel{owner})
	r.ResolveAll(free)

	assert.Len(t, r.RemainingFreeFunctions, 1)
}

func TestAttachExternalMethods_NonCPPLanguageNeverAttaches(t *testing.T) {
	owner := newNamedClass("Account")
	owner.Language = lang.JVA

	fn := stereomodel.NewMethodModel()
	free := map[lang.Language][]extract.FreeFunction{
		lang.JVA: {{Method: fn, Name: "Account::helper"}},
	}

	r := New([]*stereomodel.ClassModel{owner})
	r.ResolveAll(free)

	assert.Len(t, r.RemainingFreeFunctions, 1)
}

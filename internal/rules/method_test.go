package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/stereoscope/internal/lang/cpp"
	"github.com/oxhq/stereoscope/internal/rules"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

func newMethod() *stereomodel.MethodModel {
	return stereomodel.NewMethodModel()
}

func TestApplyMethodRules_ConstructorFamily(t *testing.T) {
	p := cpp.New()

	ctor := newMethod()
	ctor.IsConstructorOrDtor = true
	rules.ApplyMethodRules(p, ctor)
	assert.Equal(t, []string{"constructor"}, ctor.Stereotypes)

	dtor := newMethod()
	dtor.IsConstructorOrDtor = true
	dtor.IsDestructor = true
	rules.ApplyMethodRules(p, dtor)
	assert.Equal(t, []string{"destructor"}, dtor.Stereotypes)

	cc := newMethod()
	cc.IsConstructorOrDtor = true
	cc.IsCopyConstructor = true
	rules.ApplyMethodRules(p, cc)
	assert.Equal(t, []string{"copy-constructor"}, cc.Stereotypes)
}

func TestApplyMethodRules_Empty(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 0

	rules.ApplyMethodRules(p, m)

	assert.Equal(t, []string{"empty"}, m.Stereotypes)
}

func TestApplyMethodRules_Get(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.FieldReturned = true
	m.FieldUsed = true

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "get")
	assert.NotContains(t, m.Stereotypes, "incidental")
}

func TestApplyMethodRules_Predicate(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "bool"
	m.ComplexReturn = true
	m.FieldUsed = true

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "predicate")
}

func TestApplyMethodRules_Property(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "int"
	m.ComplexReturn = true
	m.FieldUsed = true

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "property")
}

func TestApplyMethodRules_Set(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "void"
	m.NumFieldsModified = 1

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "set")
}

func TestApplyMethodRules_Command(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "void"
	m.NumFieldsModified = 2

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "command")
}

func TestApplyMethodRules_NonVoidCommand(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "int"
	m.NumFieldsModified = 2

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "non-void-command")
}

func TestApplyMethodRules_ConstCommandRequiresTwoFields(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "void"
	m.IsConst = true
	m.NumFieldsModified = 1
	// Two sibling calls make fm == 1 command-eligible, so only the const
	// guard keeps the label off.
	m.FunctionCalls = []stereomodel.Call{{Callee: "a"}, {Callee: "b"}}

	rules.ApplyMethodRules(p, m)

	assert.NotContains(t, m.Stereotypes, "command",
		"a const CPP method with only one field modified must not qualify as command")
}

func TestApplyMethodRules_Factory(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.ReturnTypeParsed = "Widget"
	m.NonPrimitiveReturnType = true
	m.NewReturned = true

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "factory")
}

func TestApplyMethodRules_Wrapper(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.NumExternalFunctionCalls = 1

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "wrapper")
}

func TestApplyMethodRules_Controller(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.NumExternalMethodCalls = 1

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "controller")
}

func TestApplyMethodRules_Collaborator(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1
	m.NonPrimitiveExternalField = true

	rules.ApplyMethodRules(p, m)

	assert.Contains(t, m.Stereotypes, "collaborator")
}

func TestApplyMethodRules_Incidental(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 1

	rules.ApplyMethodRules(p, m)

	assert.Equal(t, []string{"incidental"}, m.Stereotypes)
}

func TestApplyMethodRules_Unclassified(t *testing.T) {
	p := cpp.New()
	m := newMethod()
	m.NonCommentStatementCount = 0
	// Force every branch off by simulating a non-empty, field-using method
	// that still triggers nothing else: not achievable with the empty
	// short-circuit above, so instead drop straight to the fallback by
	// disabling the "empty" branch's only trigger while keeping every
	// other accumulator at zero and FieldUsed true (so the
	// stateless/incidental "not field used" guard does not fire either).
	m.NonCommentStatementCount = 1
	m.FieldUsed = true

	rules.ApplyMethodRules(p, m)

	assert.Equal(t, []string{"unclassified"}, m.Stereotypes)
}

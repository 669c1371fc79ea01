package exprrule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/stereoscope/internal/exprrule"
	"github.com/oxhq/stereoscope/internal/lang/cpp"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

func newMethodWithField(classFieldName string) (*stereomodel.MethodModel, *stereomodel.ClassModel) {
	class := stereomodel.NewClassModel()
	class.AddField(stereomodel.Variable{Name: classFieldName})
	m := stereomodel.NewMethodModel()
	return m, class
}

func TestApply_ResolvesLocalOverField(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("count")
	m.Locals = append(m.Locals, stereomodel.Variable{Name: "count"})

	out := exprrule.Apply(p, "count", m, class, exprrule.ModeUse)

	assert.Equal(t, exprrule.ResolvedLocal, out.Kind)
	assert.Equal(t, "count", out.Name)
}

func TestApply_ResolvesParameterOverField(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("total")
	m.Parameters = append(m.Parameters, stereomodel.Variable{Name: "total", RawType: "int"})

	out := exprrule.Apply(p, "total", m, class, exprrule.ModeUse)

	assert.Equal(t, exprrule.ResolvedParameter, out.Kind)
}

func TestApply_ResolvesThisArrowField(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("balance")

	out := exprrule.Apply(p, "this->balance", m, class, exprrule.ModeUse)

	assert.Equal(t, exprrule.ResolvedField, out.Kind)
	assert.Equal(t, "balance", out.Name)
}

func TestApply_FieldCreatedWithNew(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("cache")
	m.VariablesCreatedWithNew["cache"] = struct{}{}

	out := exprrule.Apply(p, "this->cache", m, class, exprrule.ModeReturn)

	assert.Equal(t, exprrule.ResolvedField, out.Kind)
	assert.True(t, out.CreatedWithNew)
}

func TestApply_UnresolvedExpressionIsNone(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("balance")

	out := exprrule.Apply(p, "globalCounter", m, class, exprrule.ModeModify)

	assert.Equal(t, exprrule.ResolvedNone, out.Kind)
}

func TestApply_ModifyModeDetectsReferenceParameter(t *testing.T) {
	p := cpp.New()
	m, class := newMethodWithField("x")
	m.Parameters = append(m.Parameters, stereomodel.Variable{Name: "out", RawType: "int&"})

	outcome := exprrule.Apply(p, "out", m, class, exprrule.ModeModify)

	assert.Equal(t, exprrule.ResolvedParameter, outcome.Kind)
	assert.True(t, outcome.ParameterIsRef)
}

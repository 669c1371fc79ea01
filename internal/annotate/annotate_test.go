package annotate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/annotate"
	"github.com/oxhq/stereoscope/internal/stereomodel"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

func TestRun_InsertsCommentsInReverseLineOrder(t *testing.T) {
	unit := &treeproducer.Unit{
		Path:   "a.cpp",
		Source: []byte("class A {\nvoid f() {}\nvoid g() {}\n};\n"),
	}
	jobs := []annotate.Job{
		{
			UnitIdx: 0,
			Unit:    unit,
			Anchors: []annotate.Anchor{
				{Stereotype: "wrapper", Line: 3},
				{Stereotype: "empty", Line: 2},
			},
		},
	}

	results := annotate.Run(jobs, annotate.Options{EmitComments: true, Workers: 2})

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, 0, r.UnitIdx)
	assert.Equal(t, 2, r.AttrCount)
	assert.Contains(t, string(r.Source), "@stereotype empty")
	assert.Contains(t, string(r.Source), "@stereotype wrapper")
	assert.NoError(t, r.Err)
}

func TestRun_SkipsCancelledJobsWithNilUnit(t *testing.T) {
	jobs := []annotate.Job{{UnitIdx: 0, Unit: nil}}
	results := annotate.Run(jobs, annotate.Options{})
	assert.Empty(t, results)
}

func TestRun_PreservesUnitIndexOrder(t *testing.T) {
	mk := func(idx int) annotate.Job {
		return annotate.Job{
			UnitIdx: idx,
			Unit:    &treeproducer.Unit{Path: "f.cpp", Source: []byte("x\n")},
		}
	}
	jobs := []annotate.Job{mk(2), mk(0), mk(1)}

	results := annotate.Run(jobs, annotate.Options{Workers: 3})

	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{results[0].UnitIdx, results[1].UnitIdx, results[2].UnitIdx})
}

func TestAnchorsForClasses_GroupsByMethodUnitIdx(t *testing.T) {
	m := stereomodel.NewMethodModel()
	m.UnitIdx = 1
	m.XPath = "unit1.cpp#/class/method"
	m.Stereotypes = []string{"get"}
	m.StartLine = 5

	c := stereomodel.NewClassModel()
	c.Methods = []*stereomodel.MethodModel{m}
	c.Stereotypes = []string{"entity"}
	c.XPathAnchors = []string{"unit1.cpp#/class"}
	c.XPathAnchorLines = []int{1}

	byUnit := annotate.AnchorsForClasses([]*stereomodel.ClassModel{c})

	anchors, ok := byUnit[1]
	require.True(t, ok)
	require.Len(t, anchors, 2)

	var sawMethod, sawClass bool
	for _, a := range anchors {
		if a.Stereotype == "get" {
			sawMethod = true
		}
		if a.Stereotype == "entity" {
			sawClass = true
		}
	}
	assert.True(t, sawMethod)
	assert.True(t, sawClass)
}

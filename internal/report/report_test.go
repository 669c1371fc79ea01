package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stereoscope/internal/extract"
	"github.com/oxhq/stereoscope/internal/report"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

func sampleClasses() []*stereomodel.ClassModel {
	m1 := stereomodel.NewMethodModel()
	m1.Name = "getBalance"
	m1.Stereotypes = []string{"get"}

	m2 := stereomodel.NewMethodModel()
	m2.Name = "withdraw"
	m2.Stereotypes = []string{"command"}

	c1 := stereomodel.NewClassModel()
	c1.NameRaw = "Account"
	c1.Stereotypes = []string{"data-provider"}
	c1.Methods = []*stereomodel.MethodModel{m1, m2}

	c2 := stereomodel.NewClassModel()
	c2.NameRaw = "Marker"
	c2.Stereotypes = []string{"empty"}

	return []*stereomodel.ClassModel{c1, c2}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, sampleClasses()))

	out := buf.String()
	assert.Contains(t, out, "Account")
	assert.Contains(t, out, "data-provider")
	assert.Contains(t, out, "getBalance")
	assert.Contains(t, out, strings.Repeat("-", 60))
	assert.Contains(t, out, "Marker")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, sampleClasses()))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Class Name,Class Stereotype,Method Name,Method Stereotype", lines[0])
	// Account has two methods, Marker has zero and still gets one row.
	assert.Len(t, lines, 4)
	assert.Contains(t, out, "Marker,empty,,")
}

func TestWriteFreeFunctionCSV(t *testing.T) {
	fn := stereomodel.NewMethodModel()
	fn.Stereotypes = []string{"wrapper"}
	free := []extract.FreeFunction{{Method: fn, Name: "helper"}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteFreeFunctionCSV(&buf, free))

	out := buf.String()
	assert.Contains(t, out, "Free Function Name,Free Function Stereotype")
	assert.Contains(t, out, "helper,wrapper")
}

func TestBuildVerbose_CategoryCounts(t *testing.T) {
	v := report.BuildVerbose(sampleClasses())

	assert.Equal(t, 2, v.Category.Total)
	assert.Equal(t, 1, v.Category.Accessors)
	assert.Equal(t, 1, v.Category.Mutators)
	assert.Equal(t, 0, v.Category.Unclassified)
}

func TestBuildVerbose_FixedKeyOrderIncludesZeroCounts(t *testing.T) {
	v := report.BuildVerbose(sampleClasses())

	require.NotEmpty(t, v.MethodByLabel)
	assert.Equal(t, "get", v.MethodByLabel[0].Label)
	assert.Equal(t, 1, v.MethodByLabel[0].Count)

	var sawZero bool
	for _, row := range v.MethodByLabel {
		if row.Label == "factory" {
			assert.Equal(t, 0, row.Count)
			sawZero = true
		}
	}
	assert.True(t, sawZero, "zero-count labels must still appear in the fixed order")
}

func TestWriteVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteVerbose(&buf, report.BuildVerbose(sampleClasses())))

	out := buf.String()
	assert.Contains(t, out, "Category counts")
	assert.Contains(t, out, "Total")
}

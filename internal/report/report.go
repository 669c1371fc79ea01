// Package report implements C9, the Reporter: the TXT and CSV output
// formats spec §6 defines, plus the verbose roll-ups.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/oxhq/stereoscope/internal/extract"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// methodLabelOrder and classLabelOrder are the fixed key orders the
// verbose per-label roll-ups must use, per spec §6.
var methodLabelOrder = []string{
	"get", "predicate", "property", "void-accessor", "set", "command",
	"non-void-command", "collaborator", "controller", "wrapper",
	"constructor", "copy-constructor", "destructor", "factory",
	"incidental", "stateless", "empty", "unclassified",
}

var classLabelOrder = []string{
	"entity", "minimal-entity", "data-provider", "commander", "boundary",
	"factory", "controller", "pure-controller", "large-class",
	"lazy-class", "degenerate", "data-class", "small-class", "empty",
	"unclassified",
}

// WriteText emits the TXT report: per class, a class-name/class-stereotype
// header, one row per method, separated by a horizontal rule.
func WriteText(w io.Writer, classes []*stereomodel.ClassModel) error {
	for i, c := range classes {
		if i > 0 {
			if _, err := fmt.Fprintln(w, strings.Repeat("-", 60)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%-40s%s\n", c.NameRaw, strings.Join(c.Stereotypes, " ")); err != nil {
			return err
		}
		for _, m := range c.Methods {
			if _, err := fmt.Fprintf(w, "%-40s%s\n", m.Name, strings.Join(m.Stereotypes, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCSV emits the CSV report: header "Class Name,Class
// Stereotype,Method Name,Method Stereotype", one row per method.
func WriteCSV(w io.Writer, classes []*stereomodel.ClassModel) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Class Name", "Class Stereotype", "Method Name", "Method Stereotype"}); err != nil {
		return err
	}
	for _, c := range classes {
		classStereo := strings.Join(c.Stereotypes, " ")
		if len(c.Methods) == 0 {
			if err := cw.Write([]string{c.NameRaw, classStereo, "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, m := range c.Methods {
			row := []string{c.NameRaw, classStereo, m.Name, strings.Join(m.Stereotypes, " ")}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

// WriteFreeFunctionCSV emits the separate "Free Function Name,Free
// Function Stereotype" CSV, one row per unattached free function.
func WriteFreeFunctionCSV(w io.Writer, free []extract.FreeFunction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Free Function Name", "Free Function Stereotype"}); err != nil {
		return err
	}
	for _, f := range free {
		row := []string{f.Name, strings.Join(f.Method.Stereotypes, " ")}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// Verbose holds the five roll-ups spec §6 requires in verbose mode.
type Verbose struct {
	UniqueMethodStereotypes []CountedLabel
	UniqueClassStereotypes  []CountedLabel
	MethodByLabel           []CountedLabel // fixed key order, zero counts included
	ClassByLabel            []CountedLabel
	Category                CategoryCounts
}

type CountedLabel struct {
	Label string
	Count int
}

// CategoryCounts is the final roll-up: Accessors, Mutators, Creational,
// Collaborational, Degenerate, Unclassified, Total.
type CategoryCounts struct {
	Accessors       int
	Mutators        int
	Creational      int
	Collaborational int
	Degenerate      int
	Unclassified    int
	Total           int
}

// BuildVerbose aggregates the verbose roll-ups over every method and class.
func BuildVerbose(classes []*stereomodel.ClassModel) Verbose {
	methodStereoCounts := map[string]int{}
	classStereoCounts := map[string]int{}
	methodLabelCounts := map[string]int{}
	classLabelCounts := map[string]int{}
	var cat CategoryCounts

	for _, c := range classes {
		classStereoCounts[strings.Join(c.Stereotypes, " ")]++
		for _, l := range c.Stereotypes {
			classLabelCounts[l]++
		}
		for _, m := range c.Methods {
			methodStereoCounts[strings.Join(m.Stereotypes, " ")]++
			cat.Total++
			for _, l := range m.Stereotypes {
				methodLabelCounts[l]++
				switch l {
				case "get", "predicate", "property", "void-accessor":
					cat.Accessors++
				case "set", "command", "non-void-command":
					cat.Mutators++
				case "factory":
					cat.Creational++
				case "collaborator", "controller", "wrapper":
					cat.Collaborational++
				case "empty", "stateless", "incidental":
					cat.Degenerate++
				case "unclassified":
					cat.Unclassified++
				}
			}
		}
	}

	v := Verbose{
		UniqueMethodStereotypes: sortedCounted(methodStereoCounts),
		UniqueClassStereotypes:  sortedCounted(classStereoCounts),
		Category:                cat,
	}
	for _, l := range methodLabelOrder {
		v.MethodByLabel = append(v.MethodByLabel, CountedLabel{Label: l, Count: methodLabelCounts[l]})
	}
	for _, l := range classLabelOrder {
		v.ClassByLabel = append(v.ClassByLabel, CountedLabel{Label: l, Count: classLabelCounts[l]})
	}
	return v
}

func sortedCounted(m map[string]int) []CountedLabel {
	out := make([]CountedLabel, 0, len(m))
	for k, v := range m {
		out = append(out, CountedLabel{Label: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// WriteVerbose renders the five roll-ups as plain text.
func WriteVerbose(w io.Writer, v Verbose) error {
	sections := []struct {
		title string
		rows  []CountedLabel
	}{
		{"Unique method stereotypes", v.UniqueMethodStereotypes},
		{"Unique class stereotypes", v.UniqueClassStereotypes},
		{"Method stereotype counts", v.MethodByLabel},
		{"Class stereotype counts", v.ClassByLabel},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "%s\n", s.title); err != nil {
			return err
		}
		for _, row := range s.rows {
			if _, err := fmt.Fprintf(w, "  %-30s%d\n", row.Label, row.Count); err != nil {
				return err
			}
		}
	}
	c := v.Category
	_, err := fmt.Fprintf(w, "Category counts\n  %-30s%d\n  %-30s%d\n  %-30s%d\n  %-30s%d\n  %-30s%d\n  %-30s%d\n  %-30s%d\n",
		"Accessors", c.Accessors,
		"Mutators", c.Mutators,
		"Creational", c.Creational,
		"Collaborational", c.Collaborational,
		"Degenerate", c.Degenerate,
		"Unclassified", c.Unclassified,
		"Total", c.Total,
	)
	return err
}

package rules

import (
	"math"

	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// ClassThresholds bundles the configurable knobs the class-level rules
// need; only LargeClassThreshold is currently user-configurable (default
// 21 per spec §4.8/§6).
type ClassThresholds struct {
	LargeClassThreshold int
}

// DefaultThresholds returns the spec-mandated defaults.
func DefaultThresholds() ClassThresholds {
	return ClassThresholds{LargeClassThreshold: 21}
}

// tally counts, per method-stereotype label, how many of the class's
// methods carry it (a multi-stereotype method contributes once per label).
type tally struct {
	get, set, predicate, property, voidAccessor int
	command, nonVoidCommand                     int
	controller, collaborator, wrapper           int
	factory, incidental, stateless, empty       int
	unclassified                                int
}

func countStereotypes(methods []*stereomodel.MethodModel) tally {
	var t tally
	for _, m := range methods {
		if m.IsConstructorOrDtor {
			continue
		}
		for _, s := range m.Stereotypes {
			switch s {
			case "get":
				t.get++
			case "set":
				t.set++
			case "predicate":
				t.predicate++
			case "property":
				t.property++
			case "void-accessor":
				t.voidAccessor++
			case "command":
				t.command++
			case "non-void-command":
				t.nonVoidCommand++
			case "controller":
				t.controller++
			case "collaborator":
				t.collaborator++
			case "wrapper":
				t.wrapper++
			case "factory":
				t.factory++
			case "incidental":
				t.incidental++
			case "stateless":
				t.stateless++
			case "empty":
				t.empty++
			case "unclassified":
				t.unclassified++
			}
		}
	}
	return t
}

// ApplyClassRules assigns class.Stereotypes in place, per spec §4.8.
func ApplyClassRules(class *stereomodel.ClassModel, th ClassThresholds) {
	class.Stereotypes = nil

	allM := 0
	for _, m := range class.Methods {
		if !m.IsConstructorOrDtor {
			allM++
		}
	}

	if allM == 0 {
		class.Stereotypes = append(class.Stereotypes, "empty")
		return
	}

	t := countStereotypes(class.Methods)

	accessors := t.get + t.predicate + t.property + t.voidAccessor
	mutators := t.set + t.command + t.nonVoidCommand
	collaborators := t.controller + t.collaborator + t.wrapper
	nonCollaborators := allM - collaborators
	degenerates := t.empty + t.stateless + t.incidental
	factories := t.factory

	ratio := func(a, b int) float64 {
		if b <= 0 {
			if a > 0 {
				return math.Inf(1) // treat "divide by ~0" as clearing any >=2 threshold
			}
			return 0
		}
		return float64(a) / float64(b)
	}

	fAllM := float64(allM)

	if accessors > t.get && mutators > t.set && t.controller == 0 && ratio(collaborators, nonCollaborators) >= 2 {
		class.Stereotypes = append(class.Stereotypes, "entity")
	}

	if allM == t.get+t.set+t.command+t.nonVoidCommand &&
		t.get > 0 && t.set > 0 && (t.command+t.nonVoidCommand) > 0 &&
		ratio(collaborators, nonCollaborators) >= 2 {
		class.Stereotypes = append(class.Stereotypes, "minimal-entity")
	}

	if float64(accessors) > 2*float64(mutators) && float64(accessors) > 2*float64(t.controller+factories) {
		class.Stereotypes = append(class.Stereotypes, "data-provider")
	}

	if float64(mutators) > 2*float64(accessors) && float64(mutators) > 2*float64(t.controller+factories) {
		class.Stereotypes = append(class.Stereotypes, "commander")
	}

	if collaborators > nonCollaborators &&
		float64(factories) < 0.5*fAllM &&
		float64(t.controller) < 0.33*fAllM {
		class.Stereotypes = append(class.Stereotypes, "boundary")
	}

	if float64(factories) > 0.67*fAllM {
		class.Stereotypes = append(class.Stereotypes, "factory")
	}

	if float64(t.controller+factories) > 0.67*fAllM && (accessors+mutators) > 0 {
		class.Stereotypes = append(class.Stereotypes, "controller")
	}

	if t.controller+factories > 0 && accessors+mutators+t.collaborator == 0 && t.controller > 0 {
		class.Stereotypes = append(class.Stereotypes, "pure-controller")
	}

	if inBand(accessors+mutators, fAllM) && inBand(t.controller+factories, fAllM) &&
		accessors > 0 && mutators > 0 && (t.controller+factories) > 0 && collaborators > 0 &&
		allM > th.LargeClassThreshold {
		class.Stereotypes = append(class.Stereotypes, "large-class")
	}

	if t.get+t.set > 0 && ratio(degenerates, allM) > 0.33 &&
		ratio(allM-degenerates-t.get-t.set, allM) <= 0.2 {
		class.Stereotypes = append(class.Stereotypes, "lazy-class")
	}

	if ratio(degenerates, allM) > 0.5 {
		class.Stereotypes = append(class.Stereotypes, "degenerate")
	}

	if allM == t.get+t.set && t.get+t.set > 0 {
		class.Stereotypes = append(class.Stereotypes, "data-class")
	}

	if allM > 0 && allM < 3 {
		class.Stereotypes = append(class.Stereotypes, "small-class")
	}

	if len(class.Stereotypes) == 0 {
		class.Stereotypes = append(class.Stereotypes, "unclassified")
	}
}

// inBand reports whether count/allM falls within [0.2, 0.67], the
// large-class banding spec §4.8 requires for both the accessor+mutator
// group and the controller+factory group.
func inBand(count int, allM float64) bool {
	if allM == 0 {
		return false
	}
	r := float64(count) / allM
	return r >= 0.2 && r <= 0.67
}

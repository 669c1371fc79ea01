// Package resolve implements C5, the Resolver: field and method-signature
// inheritance closure over the class graph, external-method attachment
// for CPP, and the C14 fuzzy-name fallback used when a parent lookup
// misses by exact name.
package resolve

import (
	"strings"

	"github.com/oxhq/stereoscope/internal/apperr"
	"github.com/oxhq/stereoscope/internal/extract"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
)

// Diagnostic records a non-fatal event worth surfacing to the Reporter,
// such as a fuzzy-resolved parent name.
type Diagnostic struct {
	Code    string
	Message string
}

// Resolver walks the class graph produced by extraction and closes it
// over inheritance, per spec §4.5.
type Resolver struct {
	classes     []*stereomodel.ClassModel
	byName      map[string]*stereomodel.ClassModel
	byGeneric   map[string]*stereomodel.ClassModel // CPP: name without generic args
	byAngle     map[string]*stereomodel.ClassModel // CSH/JVA: name without angles
	fuzzy       *FuzzyResolver
	Diagnostics []Diagnostic

	// RemainingFreeFunctions holds every free function that was not
	// attached to a class after external-method resolution (spec §4.5);
	// these feed the Reporter's free-function report.
	RemainingFreeFunctions []extract.FreeFunction
}

// New builds a Resolver's lookup indexes from the full class collection.
func New(classes []*stereomodel.ClassModel) *Resolver {
	r := &Resolver{
		classes:   classes,
		byName:    make(map[string]*stereomodel.ClassModel),
		byGeneric: make(map[string]*stereomodel.ClassModel),
		byAngle:   make(map[string]*stereomodel.ClassModel),
		fuzzy:     NewFuzzyResolver(),
	}
	for _, c := range classes {
		r.byName[c.NameRaw] = c
		r.byGeneric[c.NameWithoutGeneric] = c
		r.byAngle[c.NameWithoutNsOrGen] = c
	}
	return r
}

// ResolveAll runs the field-inheritance and method-signature-inheritance
// passes, then CPP external-method attachment, over the whole collection.
func (r *Resolver) ResolveAll(freeFunctions map[lang.Language][]extract.FreeFunction) {
	for _, c := range r.classes {
		c.Visited = false
	}
	for _, c := range r.classes {
		r.resolveFields(c, map[*stereomodel.ClassModel]bool{})
	}
	for _, c := range r.classes {
		c.Visited = false
	}
	for _, c := range r.classes {
		r.resolveSignatures(c, map[*stereomodel.ClassModel]bool{})
	}

	for language, funcs := range freeFunctions {
		r.RemainingFreeFunctions = append(r.RemainingFreeFunctions, r.attachExternalMethods(language, funcs)...)
	}
}

// lookupParent implements the lookup order from spec §4.5: exact name,
// then CPP name-without-generic-args, then CSH/JVA name-without-angles,
// then (added, C14) a fuzzy best-effort match.
func (r *Resolver) lookupParent(name string, inLang lang.Language) *stereomodel.ClassModel {
	if c, ok := r.byName[name]; ok {
		return c
	}
	if inLang == lang.CPP {
		if c, ok := r.byGeneric[name]; ok {
			return c
		}
	} else {
		if c, ok := r.byAngle[name]; ok {
			return c
		}
	}

	candidates := make([]string, 0, len(r.byName))
	for n, c := range r.byName {
		if c.Language == inLang {
			candidates = append(candidates, n)
		}
	}
	match, ok := r.fuzzy.Resolve(name, candidates)
	if !ok {
		return nil
	}
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Code:    "fuzzy-parent-resolved",
		Message: "resolved parent name \"" + name + "\" to \"" + match + "\"",
	})
	return r.byName[match]
}

// resolveFields propagates ALL fields transitively (not just non-private)
// from every reachable parent into c's own field map, per spec §4.5: the
// decision to propagate everything is deliberate since access control is
// statically visible only at point of use, not at inference time.
func (r *Resolver) resolveFields(c *stereomodel.ClassModel, stack map[*stereomodel.ClassModel]bool) {
	if stack[c] {
		r.recordCycle(c)
		return
	}
	if c.Visited {
		return
	}
	stack[c] = true
	defer delete(stack, c)
	c.Visited = true

	for parentName := range c.Parents {
		parent := r.lookupParent(parentName, c.Language)
		if parent == nil {
			continue
		}
		if stack[parent] || !parent.Visited {
			r.resolveFields(parent, stack)
		}
		for _, name := range parent.FieldOrder {
			if _, exists := c.Fields[name]; !exists {
				c.AddField(parent.Fields[name])
			}
		}
	}
	c.Inherited = true
}

func (r *Resolver) resolveSignatures(c *stereomodel.ClassModel, stack map[*stereomodel.ClassModel]bool) {
	if stack[c] {
		r.recordCycle(c)
		return
	}
	if c.Visited {
		return
	}
	stack[c] = true
	defer delete(stack, c)
	c.Visited = true

	for parentName := range c.Parents {
		parent := r.lookupParent(parentName, c.Language)
		if parent == nil {
			continue
		}
		if stack[parent] || !parent.Visited {
			r.resolveSignatures(parent, stack)
		}
		for sig := range parent.MethodSignatures {
			c.AddMethodSignature(sig)
		}
	}
}

// attachExternalMethods implements CPP's "C::f" external-method
// attachment: a free function whose name contains "::" is split at the
// first occurrence; if the prefix names a known class, the function
// moves from the free list into that class's methods.
func (r *Resolver) attachExternalMethods(language lang.Language, funcs []extract.FreeFunction) []extract.FreeFunction {
	if language != lang.CPP {
		return funcs
	}
	var remaining []extract.FreeFunction
	for _, f := range funcs {
		idx := strings.Index(f.Name, "::")
		if idx < 0 {
			remaining = append(remaining, f)
			continue
		}
		prefix := f.Name[:idx]
		owner, ok := r.byName[prefix]
		if !ok {
			// Retry with the generic-argument-stripped prefix.
			stripped := withoutGenericArgs(prefix)
			owner, ok = r.byGeneric[stripped]
		}
		if !ok {
			remaining = append(remaining, f)
			continue
		}
		owner.Methods = append(owner.Methods, f.Method)
		owner.AddMethodSignature(f.Method.NameSignature)
	}
	return remaining
}

// recordCycle notes that resolution reached c while already resolving c
// (a cyclic parent graph) as a diagnostic, never a fatal error — resolution
// simply stops walking that branch and the already-accumulated fields and
// signatures stand, per the Design Notes' best-effort cycle handling.
func (r *Resolver) recordCycle(c *stereomodel.ClassModel) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Code:    "cyclic-parent",
		Message: apperr.ErrCyclicParent.Error() + ": " + c.NameRaw,
	})
}

func withoutGenericArgs(name string) string {
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		return name[:idx]
	}
	return name
}

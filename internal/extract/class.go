// Package extract implements the C3 (MethodModel) and C4 (ClassModel)
// extraction pipelines: a sequence of path-query calls against a unit's
// parse tree, each populating one accumulator, in the order spec §4.3
// and §4.4 prescribe.
package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/stereoscope/internal/classify"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

// Context bundles everything the extraction steps need: the language
// provider (C1 queries + language identity), the compiled classifier
// tables (C2), and the tree producer used to re-query sub-regions.
type Context struct {
	Provider lang.Provider
	Tables   *classify.Tables
	Producer *treeproducer.Producer

	// UnitIdx is the position of the unit currently being extracted within
	// the run's unit list; set by the caller before each ExtractClasses
	// call and threaded onto every MethodModel it produces, so the
	// AnnotationEmitter can group anchors back into per-unit jobs.
	UnitIdx int
}

// ExtractClasses runs the C4 pipeline (spec §4.4 steps 1-7) over one unit,
// returning one ClassModel per class/struct/interface/enum/union form
// plus the list of free-standing function nodes for later resolution
// (C5 external-method attachment).
func (c *Context) ExtractClasses(unit *treeproducer.Unit) ([]*stereomodel.ClassModel, []FreeFunction) {
	q := c.Provider.Queries()
	classNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QClassForm], ""))

	var classes []*stereomodel.ClassModel
	seen := map[string]*stereomodel.ClassModel{}

	for i, node := range classNodes {
		class := c.extractOneClass(unit, node, i)

		// CSH partial classes: a second encounter of the same name merges
		// into the existing entry rather than creating a duplicate (spec
		// §4.4 step 7, Open Question preserved as documented: silent merge).
		if c.Provider.Lang() == lang.CSH {
			if existing, ok := seen[class.NameRaw]; ok {
				mergePartial(existing, class)
				continue
			}
			seen[class.NameRaw] = class
		}

		classes = append(classes, class)
	}

	free := c.extractFreeFunctions(unit)
	return classes, free
}

func mergePartial(dst, src *stereomodel.ClassModel) {
	for name, spec := range src.Parents {
		dst.Parents[name] = spec
	}
	for _, name := range src.FieldOrder {
		dst.AddField(src.Fields[name])
	}
	dst.Methods = append(dst.Methods, src.Methods...)
	dst.XPathAnchors = append(dst.XPathAnchors, src.XPathAnchors...)
	dst.XPathAnchorLines = append(dst.XPathAnchorLines, src.XPathAnchorLines...)
}

func (c *Context) extractOneClass(unit *treeproducer.Unit, node *sitter.Node, idx int) *stereomodel.ClassModel {
	class := stereomodel.NewClassModel()
	class.Language = c.Provider.Lang()
	class.Kind = classifyKind(node.Type())
	class.XPathAnchors = append(class.XPathAnchors, xpathFor(unit, node, idx))
	class.XPathAnchorLines = append(class.XPathAnchorLines, int(node.StartPoint().Row)+1)

	q := c.Provider.Queries()

	// inClass runs a query and keeps only the results inside this class node.
	inClass := func(name string) []*sitter.Node {
		nodes, _ := c.Producer.Query(subUnit(unit, node), c.Provider, treeproducer.FormatQuery(q[name], ""))
		var kept []*sitter.Node
		for _, n := range nodes {
			if within(node, n) {
				kept = append(kept, n)
			}
		}
		return kept
	}

	// Step 1: class name, in all four forms.
	nameNodes := inClass(lang.QClassName)
	if len(nameNodes) > 0 {
		raw := treeproducer.Serialize(unit, nameNodes[0])
		class.NameRaw = raw
		class.NameStripped = strings.Join(strings.Fields(raw), "")
		class.NameWithoutGeneric = withoutGeneric(raw)
		class.NameWithoutNsOrGen = withoutNamespace(withoutGeneric(raw))
	}

	// Step 2/3: class kind (CPP) default parent specifier.
	kindStr := string(class.Kind)

	// Step 3: parent names, each with explicit or defaulted specifier.
	parentNodes := inClass(lang.QParentEntry)
	for _, pn := range parentNodes {
		name := strings.TrimSpace(treeproducer.Serialize(unit, pn))
		if name == "" {
			continue
		}
		class.Parents[name] = c.Provider.DefaultParentSpecifier(kindStr)
	}

	// Step 4/5: fields + pseudo field "this" already present from
	// NewClassModel. Static fields are not filtered out: the field queries
	// match static and non-static declarations alike.
	fieldNameNodes := inClass(lang.QFieldName)
	fieldTypeNodes := inClass(lang.QFieldType)

	var prevType string
	for i, fn := range fieldNameNodes {
		name := strings.TrimSpace(treeproducer.Serialize(unit, fn))
		name = stripArraySuffix(name, c.Provider.Lang())

		rawType := prevType
		if i < len(fieldTypeNodes) {
			t := strings.TrimSpace(treeproducer.Serialize(unit, fieldTypeNodes[i]))
			if t != "<type ref=\"prev\"/>" && t != "" {
				rawType = t
			}
		}
		prevType = rawType

		cls := c.Tables.ClassifyNonPrimitive(rawType, class.NameWithoutNsOrGen)
		class.AddField(stereomodel.Variable{
			RawType:              rawType,
			ParsedType:           c.Tables.StripModifiers(rawType),
			Name:                 name,
			NonPrimitive:         cls.NonPrimitive,
			NonPrimitiveExternal: cls.NonPrimitiveExternal,
		})
	}

	// Step 6: methods syntactically inside the class, one MethodModel per
	// function/constructor/destructor.
	methodCtx := &Context{Provider: c.Provider, Tables: c.Tables, Producer: c.Producer, UnitIdx: c.UnitIdx}
	class.Methods = methodCtx.extractMethods(unit, node, class)

	if c.Provider.Lang() == lang.CSH {
		class.Methods = append(class.Methods, methodCtx.extractPropertyMethods(unit, node, class)...)
	}

	for _, m := range class.Methods {
		if m.IsConstructorOrDtor {
			if m.IsDestructor {
				class.DestructorCount++
			} else {
				class.ConstructorCount++
			}
		}
		class.AddMethodSignature(m.NameSignature)
	}

	return class
}

func classifyKind(nodeType string) stereomodel.ClassKind {
	switch {
	case strings.Contains(nodeType, "interface"):
		return stereomodel.KindInterface
	case strings.Contains(nodeType, "enum"):
		return stereomodel.KindEnum
	case strings.Contains(nodeType, "union"):
		return stereomodel.KindUnion
	case strings.Contains(nodeType, "struct"):
		return stereomodel.KindStruct
	default:
		return stereomodel.KindClass
	}
}

func withoutGeneric(name string) string {
	if idx := strings.IndexAny(name, "<["); idx >= 0 {
		return strings.TrimSpace(name[:idx])
	}
	return name
}

func withoutNamespace(name string) string {
	for _, sep := range []string{"::", "."} {
		if idx := strings.LastIndex(name, sep); idx >= 0 {
			name = name[idx+len(sep):]
		}
	}
	return name
}

func stripArraySuffix(name string, language lang.Language) string {
	if language == lang.CPP {
		return strings.TrimSuffix(name, "[]")
	}
	return name
}

func xpathFor(unit *treeproducer.Unit, node *sitter.Node, idx int) string {
	return unit.Path + "#" + node.Type() + "[" + itoa(idx) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{byte('0' + i%10)}, buf...)
		i /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// subUnit produces a scoped view of the unit for queries that should be
// restricted to a node's own subtree. Tree-sitter queries run from the
// document root, so restriction is done by filtering results to those
// whose start byte falls within the node; pathQuery implementations
// express this by running the query against the whole tree and relying on
// FormatQuery predicates — here we reuse the same Unit and let callers
// post-filter when required (class-level fields/methods do not escape
// their own braces in well-formed source).
func subUnit(unit *treeproducer.Unit, _ *sitter.Node) *treeproducer.Unit {
	return unit
}

// FreeFunction is a function defined outside any class, captured for the
// C5 external-method-attachment pass.
type FreeFunction struct {
	Method *stereomodel.MethodModel
	Name   string // as written, possibly qualified with "::" (CPP)
}

func (c *Context) extractFreeFunctions(unit *treeproducer.Unit) []FreeFunction {
	q := c.Provider.Queries()
	tmpl := q[lang.QFreeFunctionForm]
	if tmpl == "" {
		return nil
	}
	nodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(tmpl, ""))

	var out []FreeFunction
	for i, node := range nodes {
		m := c.extractOneMethod(unit, node, i, nil)
		out = append(out, FreeFunction{Method: m, Name: m.Name})
	}
	return out
}

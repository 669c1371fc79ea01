package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/stereoscope/internal/classify"
	"github.com/oxhq/stereoscope/internal/exprrule"
	"github.com/oxhq/stereoscope/internal/lang"
	"github.com/oxhq/stereoscope/internal/stereomodel"
	"github.com/oxhq/stereoscope/internal/treeproducer"
)

// extractMethods finds every function/constructor/destructor syntactically
// inside classNode and builds one MethodModel per occurrence.
func (c *Context) extractMethods(
	unit *treeproducer.Unit, classNode *sitter.Node, class *stereomodel.ClassModel,
) []*stereomodel.MethodModel {
	q := c.Provider.Queries()
	nodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QMethodForm], ""))

	var methods []*stereomodel.MethodModel
	for i, node := range nodes {
		if !within(classNode, node) {
			continue
		}
		methods = append(methods, c.extractOneMethod(unit, node, i, class))
	}
	return methods
}

// extractPropertyMethods collects CSH accessor functions nested within
// property nodes, passing the property's declared type as the accessor's
// return type (spec §4.4 step 6).
func (c *Context) extractPropertyMethods(
	unit *treeproducer.Unit, classNode *sitter.Node, class *stereomodel.ClassModel,
) []*stereomodel.MethodModel {
	q := c.Provider.Queries()
	propNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QPropertyForm], ""))

	var methods []*stereomodel.MethodModel
	idx := 0
	for _, prop := range propNodes {
		if !within(classNode, prop) {
			continue
		}
		accessors, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QPropertyMethodForm], ""))
		propType := propertyType(unit, prop)
		for _, acc := range accessors {
			if !within(prop, acc) {
				continue
			}
			m := c.extractOneMethod(unit, acc, idx, class)
			idx++
			m.ReturnTypeRaw = propType
			m.ReturnTypeParsed = c.Tables.StripModifiers(propType)
			cls := c.Tables.ClassifyNonPrimitive(propType, class.NameWithoutNsOrGen)
			m.NonPrimitiveReturnType = cls.NonPrimitive
			m.NonPrimitiveReturnTypeExternal = cls.NonPrimitiveExternal
			methods = append(methods, m)
		}
	}
	return methods
}

func propertyType(unit *treeproducer.Unit, prop *sitter.Node) string {
	for i := 0; i < int(prop.ChildCount()); i++ {
		child := prop.Child(i)
		if strings.Contains(child.Type(), "type") {
			return strings.TrimSpace(treeproducer.Serialize(unit, child))
		}
	}
	return ""
}

func within(outer, inner *sitter.Node) bool {
	if outer == nil || inner == nil {
		return false
	}
	return inner.StartByte() >= outer.StartByte() && inner.EndByte() <= outer.EndByte()
}

// extractOneMethod runs the full C3 pipeline (spec §4.3 steps 1-14)
// against one method's tree fragment. class may be nil for free
// functions, which skip class-relative facts until C5 attaches them.
func (c *Context) extractOneMethod(
	unit *treeproducer.Unit, node *sitter.Node, idx int, class *stereomodel.ClassModel,
) *stereomodel.MethodModel {
	m := stereomodel.NewMethodModel()
	m.Language = c.Provider.Lang()
	m.UnitIdx = c.UnitIdx
	m.XPath = xpathFor(unit, node, idx)
	m.StartLine = int(node.StartPoint().Row) + 1
	m.Source = treeproducer.Serialize(unit, node)

	q := c.Provider.Queries()

	// Step 1: constructor/destructor presence.
	ctorDtorNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QCtorDtorForm], ""))
	for _, cd := range ctorDtorNodes {
		if cd.StartByte() == node.StartByte() {
			m.IsConstructorOrDtor = true
			if strings.HasPrefix(treeproducer.Serialize(unit, cd), "~") {
				m.IsDestructor = true
			}
		}
	}

	// Step 2: method name and parameter list.
	m.Name = methodName(unit, node)
	className := ""
	if class != nil {
		className = class.NameWithoutNsOrGen
	}
	m.NameSignature = buildSignature(m.Name, parameterListText(unit, node))

	if class != nil && m.IsConstructorOrDtor && !m.IsDestructor &&
		strings.Contains(m.Name, className) && className != "" {
		m.IsCopyConstructor = hasParameterOfType(unit, node, className)
	}

	// Step 3: const (CPP).
	if c.Provider.Lang() == lang.CPP {
		constNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QConstSpecifier], ""))
		for _, cn := range constNodes {
			if within(node, cn) {
				m.IsConst = true
			}
		}
	}

	// Step 4: return type, classified via C2.
	if !m.IsConstructorOrDtor {
		m.ReturnTypeRaw = returnTypeText(unit, node)
		m.ReturnTypeParsed = c.Tables.StripModifiers(m.ReturnTypeRaw)
		cls := c.Tables.ClassifyNonPrimitive(m.ReturnTypeRaw, className)
		m.NonPrimitiveReturnType = cls.NonPrimitive
		m.NonPrimitiveReturnTypeExternal = cls.NonPrimitiveExternal
	}

	// Step 5: parameters.
	m.Parameters = extractParameters(unit, node, c, className)

	// Step 6: locals.
	m.Locals = c.extractLocals(unit, node, className)

	// Step 7: return expressions + new-returned flag.
	m.ReturnExpressions = c.extractReturnExpressions(unit, node)
	for _, expr := range m.ReturnExpressions {
		if strings.HasPrefix(strings.TrimSpace(expr), "new ") || strings.HasPrefix(strings.TrimSpace(expr), "new(") {
			m.NewReturned = true
		}
	}

	// Step 8: calls, by flavor.
	m.FunctionCalls = c.extractCalls(unit, node, lang.QCallNameFunction, lang.QCallArgsFunction)
	m.MethodCalls = c.extractCalls(unit, node, lang.QCallNameMethod, lang.QCallArgsMethod)
	m.ConstructorCalls = c.extractCalls(unit, node, lang.QCallNameCtor, lang.QCallArgsCtor)

	// Step 9: variables initialized with `new`.
	newAssignNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QNewAssignName], ""))
	for _, nn := range newAssignNodes {
		if within(node, nn) {
			m.VariablesCreatedWithNew[strings.TrimSpace(treeproducer.Serialize(unit, nn))] = struct{}{}
		}
	}

	// Step 10: drop ignorable calls.
	m.FunctionCalls = filterIgnored(m.FunctionCalls, c)
	m.MethodCalls = filterIgnored(m.MethodCalls, c)

	// Step 11: classify returns.
	if class != nil {
		c.classifyReturns(m, class)
	}

	// Step 12: classify variable uses.
	if class != nil {
		c.classifyUses(unit, node, m, class)
	}

	// Step 13: classify modifications.
	if class != nil {
		c.classifyModifications(unit, node, m, class)
	}

	// Step 14: non-comment statement count.
	stmtNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QNonCommentStmtCount], ""))
	count := 0
	for _, sn := range stmtNodes {
		if within(node, sn) && sn.Type() != "comment" {
			count++
		}
	}
	m.NonCommentStatementCount = count

	return m
}

// buildSignature derives a method's registered signature the same way
// extractCalls derives a call's: name-without-namespace plus a
// comma-count placeholder for the argument/parameter list, so the two
// sides of class.HasMethodSignature compare like with like regardless of
// arity.
func buildSignature(name, paramsText string) string {
	return withoutNamespace(name) + "(" + commaPlaceholder(paramsText) + ")"
}

// parameterListText returns the verbatim text of a method node's
// parameter list (including its enclosing parens), the same shape
// commaPlaceholder expects for a call's argument list.
func parameterListText(unit *treeproducer.Unit, node *sitter.Node) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	return treeproducer.Serialize(unit, params)
}

func methodName(unit *treeproducer.Unit, node *sitter.Node) string {
	nameNode := node.ChildByFieldName("declarator")
	if nameNode == nil {
		return strings.TrimSpace(treeproducer.Serialize(unit, node))
	}
	return strings.TrimSpace(treeproducer.Serialize(unit, nameNode))
}

func returnTypeText(unit *treeproducer.Unit, node *sitter.Node) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	return strings.TrimSpace(treeproducer.Serialize(unit, typeNode))
}

func hasParameterOfType(unit *treeproducer.Unit, node *sitter.Node, className string) bool {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return false
	}
	return strings.Contains(treeproducer.Serialize(unit, params), className)
}

func extractParameters(unit *treeproducer.Unit, node *sitter.Node, c *Context, className string) []stereomodel.Variable {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []stereomodel.Variable
	idx := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		name, rawType := splitDeclNameType(unit, child)
		if name == "" {
			continue
		}
		name = stripArraySuffix(name, c.Provider.Lang())
		cls := c.Tables.ClassifyNonPrimitive(rawType, className)
		out = append(out, stereomodel.Variable{
			RawType:              rawType,
			ParsedType:           c.Tables.StripModifiers(rawType),
			Name:                 name,
			Index:                idx,
			NonPrimitive:         cls.NonPrimitive,
			NonPrimitiveExternal: cls.NonPrimitiveExternal,
		})
		idx++
	}
	return out
}

func splitDeclNameType(unit *treeproducer.Unit, node *sitter.Node) (name, rawType string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.ChildByFieldName("declarator")
	}
	typeNode := node.ChildByFieldName("type")
	if nameNode != nil {
		name = strings.TrimSpace(treeproducer.Serialize(unit, nameNode))
	}
	if typeNode != nil {
		rawType = strings.TrimSpace(treeproducer.Serialize(unit, typeNode))
	}
	if name == "" {
		name = strings.TrimSpace(treeproducer.Serialize(unit, node))
	}
	return name, rawType
}

func (c *Context) extractLocals(unit *treeproducer.Unit, node *sitter.Node, className string) []stereomodel.Variable {
	q := c.Provider.Queries()
	// Local variable declarations are not modeled with a dedicated query
	// name in the lang.QueryTable; they are discovered the same way
	// fields are, scoped to the method body, mirroring spec §4.3 step 6's
	// "<type ref=\"prev\"/>" sentinel rule.
	nameNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QFieldName], ""))
	typeNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QFieldType], ""))

	var out []stereomodel.Variable
	var prevType string
	for i, nn := range nameNodes {
		if !within(node, nn) {
			continue
		}
		name := strings.TrimSpace(treeproducer.Serialize(unit, nn))
		name = stripArraySuffix(name, c.Provider.Lang())

		rawType := prevType
		if i < len(typeNodes) && within(node, typeNodes[i]) {
			t := strings.TrimSpace(treeproducer.Serialize(unit, typeNodes[i]))
			if t != "" {
				rawType = t
			}
		}
		prevType = rawType

		cls := c.Tables.ClassifyNonPrimitive(rawType, className)
		out = append(out, stereomodel.Variable{
			RawType:              rawType,
			ParsedType:           c.Tables.StripModifiers(rawType),
			Name:                 name,
			NonPrimitive:         cls.NonPrimitive,
			NonPrimitiveExternal: cls.NonPrimitiveExternal,
		})
	}
	return out
}

func (c *Context) extractReturnExpressions(unit *treeproducer.Unit, node *sitter.Node) []string {
	q := c.Provider.Queries()
	nodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QReturnExpr], ""))
	var out []string
	for _, rn := range nodes {
		if !within(node, rn) {
			continue
		}
		out = append(out, strings.TrimSpace(treeproducer.Serialize(unit, rn)))
	}
	return out
}

func (c *Context) extractCalls(unit *treeproducer.Unit, node *sitter.Node, nameQuery, argsQuery string) []stereomodel.Call {
	q := c.Provider.Queries()
	nameNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[nameQuery], ""))
	argNodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[argsQuery], ""))

	var calls []stereomodel.Call
	for i, nn := range nameNodes {
		if !within(node, nn) {
			continue
		}
		callee := strings.TrimSpace(treeproducer.Serialize(unit, nn))
		args := ""
		if i < len(argNodes) && within(node, argNodes[i]) {
			args = treeproducer.Serialize(unit, argNodes[i])
		}
		calls = append(calls, stereomodel.Call{
			Callee:    callee,
			Args:      args,
			Signature: withoutNamespace(classify.TrailingNameComponent(callee)) + "(" + commaPlaceholder(args) + ")",
		})
	}
	return calls
}

// commaPlaceholder reduces argument-list text to a comma-count
// placeholder, e.g. "(a, b, c)" -> ",,": arity-only signature
// normalization per spec §9.
func commaPlaceholder(args string) string {
	depth := 0
	commas := 0
	for _, r := range args {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth <= 1 {
				commas++
			}
		}
	}
	if strings.TrimSpace(strings.Trim(args, "()")) == "" {
		return ""
	}
	return strings.Repeat(",", commas)
}

func filterIgnored(calls []stereomodel.Call, c *Context) []stereomodel.Call {
	var out []stereomodel.Call
	for _, call := range calls {
		if c.Tables.IsIgnoredCall(call.Callee) {
			continue
		}
		out = append(out, call)
	}
	return out
}

// classifyReturns implements spec §4.3 step 11: each return expression is
// run through the expression-to-variable rule with mode=return.
func (c *Context) classifyReturns(m *stereomodel.MethodModel, class *stereomodel.ClassModel) {
	for _, expr := range m.ReturnExpressions {
		if isSimpleExpression(expr) {
			outcome := exprrule.Apply(c.Provider, expr, m, class, exprrule.ModeReturn)
			switch outcome.Kind {
			case exprrule.ResolvedField:
				m.FieldReturned = true
				if outcome.CreatedWithNew {
					m.FieldsCreatedWithNewAndReturned = true
				}
			case exprrule.ResolvedParameter:
				m.ParameterNotReturned = false
			case exprrule.ResolvedLocal:
				// a simple local return is neither a field-return nor a
				// complex return.
			default:
				m.ComplexReturn = true
			}
		} else {
			m.ComplexReturn = true
		}
	}
}

// isSimpleExpression reports whether an expression, after the standard
// trimming, contains no further operators — a "simple return" per the
// glossary.
func isSimpleExpression(expr string) bool {
	e := strings.TrimSpace(expr)
	if e == "" {
		return true
	}
	for _, r := range e {
		switch r {
		case '(', ')', '+', '-', '*', '/', '%', '<', '>', '=', '!', '&', '|', '?', ':', ',':
			return false
		}
	}
	return true
}

// classifyUses implements spec §4.3 step 12: every non-call name node at
// the method's own depth is run through the rule with mode=use.
func (c *Context) classifyUses(unit *treeproducer.Unit, node *sitter.Node, m *stereomodel.MethodModel, class *stereomodel.ClassModel) {
	q := c.Provider.Queries()
	nodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QExpressionName], ""))
	for _, n := range nodes {
		if !within(node, n) {
			continue
		}
		expr := strings.TrimSpace(treeproducer.Serialize(unit, n))
		outcome := exprrule.Apply(c.Provider, expr, m, class, exprrule.ModeUse)
		switch outcome.Kind {
		case exprrule.ResolvedField:
			m.FieldUsed = true
			if f, ok := class.Fields[outcome.Name]; ok && f.NonPrimitiveExternal {
				m.NonPrimitiveExternalField = true
			}
		case exprrule.ResolvedParameter:
			m.ParameterUsed = true
		}
	}
}

// classifyModifications implements spec §4.3 step 13: every name adjacent
// to an assignment operator or pre/post ++/-- is run through the rule
// with mode=modify.
func (c *Context) classifyModifications(unit *treeproducer.Unit, node *sitter.Node, m *stereomodel.MethodModel, class *stereomodel.ClassModel) {
	q := c.Provider.Queries()
	nodes, _ := c.Producer.Query(unit, c.Provider, treeproducer.FormatQuery(q[lang.QExpressionNameModified], ""))

	modifiedFields := map[string]struct{}{}
	for _, n := range nodes {
		if !within(node, n) {
			continue
		}
		expr := strings.TrimSpace(treeproducer.Serialize(unit, n))
		outcome := exprrule.Apply(c.Provider, expr, m, class, exprrule.ModeModify)
		switch outcome.Kind {
		case exprrule.ResolvedField:
			modifiedFields[outcome.Name] = struct{}{}
		case exprrule.ResolvedParameter:
			if outcome.ParameterIsRef {
				m.ParameterRefModified = true
			}
			if p, ok := findParamByName(m, outcome.Name); ok && p.NonPrimitive {
				m.NonPrimitiveLocalOrParamModified = true
			}
		case exprrule.ResolvedLocal:
			if l, ok := findLocalByName(m, outcome.Name); ok && l.NonPrimitive {
				m.NonPrimitiveLocalOrParamModified = true
			}
		default:
			m.GlobalOrStaticModified = true
		}
	}
	m.NumFieldsModified = len(modifiedFields)
}

func findParamByName(m *stereomodel.MethodModel, name string) (stereomodel.Variable, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return stereomodel.Variable{}, false
}

func findLocalByName(m *stereomodel.MethodModel, name string) (stereomodel.Variable, bool) {
	for _, l := range m.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return stereomodel.Variable{}, false
}

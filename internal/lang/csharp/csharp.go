// Package csharp implements the C1/C2 strategy tables for the managed
// dialect with single class inheritance, multiple interface inheritance,
// properties, partial classes, and ref/out/?/??.
package csharp

import (
	sitter "github.com/smacker/go-tree-sitter"
	tscsharp "github.com/smacker/go-tree-sitter/csharp"

	"github.com/oxhq/stereoscope/internal/lang"
)

type provider struct {
	queries lang.QueryTable
}

func New() lang.Provider {
	return &provider{queries: buildQueries()}
}

func (p *provider) Lang() lang.Language { return lang.CSH }

func (p *provider) Queries() lang.QueryTable { return p.queries }

func (p *provider) SitterLanguage() *sitter.Language { return tscsharp.GetLanguage() }

func buildQueries() lang.QueryTable {
	return lang.QueryTable{
		lang.QClassForm: `[(class_declaration) (struct_declaration) (interface_declaration)
			(enum_declaration)] @target`,
		lang.QClassName:   `(class_declaration name: (identifier) @name %s) @target`,
		lang.QClassKind:   `(class_declaration) @target`,
		lang.QParentEntry: `(base_list (_) @name) @target`,
		lang.QFieldName:   `(field_declaration (variable_declaration (variable_declarator name: (identifier) @name %s))) @target`,
		lang.QFieldType:   `(field_declaration (variable_declaration type: (_) @type %s)) @target`,
		lang.QNonPrivateFieldName: `(field_declaration
			(modifier)* @mod
			(variable_declaration (variable_declarator name: (identifier) @name %s))) @target`,
		lang.QNonPrivateFieldType: `(field_declaration
			(modifier)* @mod
			(variable_declaration type: (_) @type %s)) @target`,
		lang.QMethodForm: `(method_declaration name: (identifier) @name %s) @target`,
		lang.QPropertyForm: `(property_declaration
			type: (_) @type name: (identifier) @name %s) @target`,
		lang.QPropertyMethodForm: `(accessor_declaration) @target`,
		lang.QFreeFunctionForm:   `(local_function_statement name: (identifier) @name %s) @target`,
		lang.QCtorDtorForm: `[(constructor_declaration name: (identifier) @name %s)
			(destructor_declaration name: (identifier) @name %s)] @target`,
		lang.QReturnExpr:       `(return_statement (_)? @expr) @target`,
		lang.QCallNameFunction: `(invocation_expression function: (identifier) @name) @target`,
		lang.QCallArgsFunction: `(invocation_expression arguments: (argument_list) @args) @target`,
		lang.QCallNameMethod: `(invocation_expression
			function: (member_access_expression name: (identifier) @name)) @target`,
		lang.QCallArgsMethod:      `(invocation_expression arguments: (argument_list) @args) @target`,
		lang.QCallNameCtor:        `(object_creation_expression type: (identifier) @name) @target`,
		lang.QCallArgsCtor:        `(object_creation_expression arguments: (argument_list)? @args) @target`,
		lang.QNewAssignName:      `(variable_declarator name: (identifier) @name value: (object_creation_expression) @ctor) @target`,
		lang.QConstSpecifier:      ``, // not applicable in CSH
		lang.QNonCommentStmtCount: `(block (_) @stmt) @target`,
		lang.QExpressionName:         `(identifier) @name @target`,
		lang.QExpressionNameModified: `(identifier) @name @target`,
	}
}

func (p *provider) Primitives() map[string]struct{} {
	return set(
		"void", "bool", "byte", "sbyte", "char", "decimal", "double", "float",
		"int", "uint", "long", "ulong", "short", "ushort", "string", "object", "dynamic", "var",
	)
}

func (p *provider) IgnoredCalls() map[string]struct{} {
	return set(
		"Console.WriteLine", "Console.Write", "Console.ReadLine",
		"Debug.Assert", "Trace.Assert", "Assert.IsTrue", "Assert.IsFalse",
		"WriteLine", "Write",
	)
}

// TypeModifierPattern strips CSH nullable/array/generic sigils and common
// wrapper containers.
func (p *provider) TypeModifierPattern() string {
	return `\bstatic\b|\breadonly\b|\bvirtual\b|\boverride\b|[?\[\]]+|` +
		`(List|IList|IEnumerable|ICollection|Dictionary|Nullable|Task)\s*<[^>]*>|<[^<>]*>`
}

// ExprToVariablePattern is the CSH rule from spec §4.7: base/this/ns
// prefix followed by . or -> then the member.
func (p *provider) ExprToVariablePattern() string {
	return `^(?:base|this|([^.>]*))(?:\.|->)([^.>]*)`
}

func (p *provider) DefaultParentSpecifier(classKind string) lang.InheritanceSpecifier {
	return lang.Public
}

// IsVoidPointerVoid is false: CSH has no unmanaged pointers under normal
// analysis, but `void*` appears in unsafe contexts and is treated like
// CPP for symmetry with the asymmetry the spec documents.
func (p *provider) IsVoidPointerVoid() bool { return false }

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

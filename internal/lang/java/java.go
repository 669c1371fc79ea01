// Package java implements the C1/C2 strategy tables for the managed
// dialect with single class inheritance, multiple interface inheritance,
// enums with methods, and no unsigned pointers.
package java

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"

	"github.com/oxhq/stereoscope/internal/lang"
)

type provider struct {
	queries lang.QueryTable
}

func New() lang.Provider {
	return &provider{queries: buildQueries()}
}

func (p *provider) Lang() lang.Language { return lang.JVA }

func (p *provider) Queries() lang.QueryTable { return p.queries }

func (p *provider) SitterLanguage() *sitter.Language { return tsjava.GetLanguage() }

func buildQueries() lang.QueryTable {
	return lang.QueryTable{
		lang.QClassForm: `[(class_declaration) (interface_declaration) (enum_declaration)] @target`,
		lang.QClassName: `(class_declaration name: (identifier) @name %s) @target`,
		lang.QClassKind: `(class_declaration) @target`,
		lang.QParentEntry: `[(superclass (type_identifier) @name)
			(super_interfaces (interface_type_list (type_identifier) @name))] @target`,
		lang.QFieldName: `(field_declaration declarator: (variable_declarator name: (identifier) @name %s)) @target`,
		lang.QFieldType: `(field_declaration type: (_) @type %s) @target`,
		lang.QNonPrivateFieldName: `(field_declaration
			(modifiers)? @mod
			declarator: (variable_declarator name: (identifier) @name %s)) @target`,
		lang.QNonPrivateFieldType: `(field_declaration
			(modifiers)? @mod
			type: (_) @type %s) @target`,
		lang.QMethodForm:       `(method_declaration name: (identifier) @name %s) @target`,
		lang.QFreeFunctionForm: ``, // JVA has no free functions outside classes
		lang.QCtorDtorForm:     `(constructor_declaration name: (identifier) @name %s) @target`,
		lang.QReturnExpr:       `(return_statement (_)? @expr) @target`,
		lang.QCallNameFunction: `(method_invocation name: (identifier) @name !object) @target`,
		lang.QCallArgsFunction: `(method_invocation arguments: (argument_list) @args) @target`,
		lang.QCallNameMethod:   `(method_invocation object: (_) name: (identifier) @name) @target`,
		lang.QCallArgsMethod:   `(method_invocation arguments: (argument_list) @args) @target`,
		lang.QCallNameCtor:        `(object_creation_expression type: (type_identifier) @name) @target`,
		lang.QCallArgsCtor:        `(object_creation_expression arguments: (argument_list)? @args) @target`,
		lang.QNewAssignName:      `(variable_declarator name: (identifier) @name value: (object_creation_expression) @ctor) @target`,
		lang.QConstSpecifier:      ``, // not applicable in JVA
		lang.QNonCommentStmtCount: `(block (_) @stmt) @target`,
		lang.QExpressionName:         `(identifier) @name @target`,
		lang.QExpressionNameModified: `(identifier) @name @target`,
	}
}

func (p *provider) Primitives() map[string]struct{} {
	return set(
		"void", "boolean", "byte", "short", "int", "long", "char", "float", "double",
		"Boolean", "Byte", "Short", "Integer", "Long", "Character", "Float", "Double", "String",
	)
}

func (p *provider) IgnoredCalls() map[string]struct{} {
	return set(
		"System.out.println", "System.out.print", "System.err.println",
		"println", "print", "assert", "Objects.requireNonNull",
	)
}

func (p *provider) TypeModifierPattern() string {
	return `\b(final|static|volatile|transient)\b|` +
		`(List|ArrayList|Map|HashMap|Set|HashSet|Optional|Collection)\s*<[^>]*>|<[^<>]*>|\[\]`
}

// ExprToVariablePattern is the JVA rule from spec §4.7: super/this/ns
// prefix followed by a single dot then the member.
func (p *provider) ExprToVariablePattern() string {
	return `^(?:super|this|([^.]*))\.([^.]*)`
}

func (p *provider) DefaultParentSpecifier(classKind string) lang.InheritanceSpecifier {
	return lang.Public
}

// IsVoidPointerVoid is true: JVA has no pointers, so there is no
// void-pointer-vs-void asymmetry to preserve; every void return is void.
func (p *provider) IsVoidPointerVoid() bool { return true }

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

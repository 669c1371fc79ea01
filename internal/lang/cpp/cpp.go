// Package cpp implements the C1 (PathQueries) and C2 (TypeClassifier)
// strategy tables for the systems dialect: multiple inheritance, free
// pointers and references, templates, mutable/const methods, friend
// declarations, unions, and externally defined (C::f) methods.
package cpp

import (
	sitter "github.com/smacker/go-tree-sitter"
	tscpp "github.com/smacker/go-tree-sitter/cpp"

	"github.com/oxhq/stereoscope/internal/lang"
)

type provider struct {
	queries lang.QueryTable
}

// New constructs the CPP language strategy table.
func New() lang.Provider {
	return &provider{queries: buildQueries()}
}

func (p *provider) Lang() lang.Language { return lang.CPP }

func (p *provider) Queries() lang.QueryTable { return p.queries }

func (p *provider) SitterLanguage() *sitter.Language { return tscpp.GetLanguage() }

// buildQueries mirrors the teacher's per-node Tree-sitter template map
// (internal/lang/golang/queries.go), one entry per required query name,
// with a single "%s" predicate placeholder.
func buildQueries() lang.QueryTable {
	return lang.QueryTable{
		lang.QClassForm: `[(class_specifier) (struct_specifier) (union_specifier)] @target`,
		lang.QClassName: `(class_specifier name: (type_identifier) @name %s) @target`,
		lang.QClassKind: `(class_specifier) @target`,
		lang.QParentEntry: `(base_class_clause
			(access_specifier)? @spec
			[(type_identifier) (qualified_identifier)] @name) @target`,
		lang.QFieldName: `(field_declaration declarator: (field_identifier) @name %s) @target`,
		lang.QFieldType: `(field_declaration type: (_) @type %s) @target`,
		lang.QNonPrivateFieldName: `(field_declaration
			declarator: (field_identifier) @name %s) @target`,
		lang.QNonPrivateFieldType: `(field_declaration
			type: (_) @type %s) @target`,
		lang.QMethodForm: `[(function_definition
			declarator: (function_declarator declarator: (field_identifier) @name))
			(function_definition
			declarator: (function_declarator declarator: (qualified_identifier) @name))] @target`,
		lang.QFreeFunctionForm: `(function_definition
			declarator: (function_declarator declarator: (identifier) @name)) @target`,
		lang.QCtorDtorForm: `(function_definition
			declarator: (function_declarator declarator: [(identifier) (destructor_name)] @name %s)) @target`,
		lang.QReturnExpr: `(return_statement (_)? @expr) @target`,
		lang.QCallNameFunction: `(call_expression function: (identifier) @name) @target`,
		lang.QCallArgsFunction: `(call_expression arguments: (argument_list) @args) @target`,
		lang.QCallNameMethod: `(call_expression
			function: (field_expression field: (field_identifier) @name)) @target`,
		lang.QCallArgsMethod: `(call_expression arguments: (argument_list) @args) @target`,
		lang.QCallNameCtor: `(new_expression type: (type_identifier) @name) @target`,
		lang.QCallArgsCtor: `(new_expression arguments: (argument_list)? @args) @target`,
		lang.QNewAssignName: `(init_declarator
			declarator: (identifier) @name value: (new_expression) @ctor) @target`,
		lang.QConstSpecifier: `(function_definition
			declarator: (function_declarator (type_qualifier) @const)) @target`,
		lang.QNonCommentStmtCount: `(compound_statement (_) @stmt) @target`,
		lang.QExpressionName:         `(identifier) @name @target`,
		lang.QExpressionNameModified: `(identifier) @name @target`,
		lang.QFriendDeclaration:      `(friend_declaration) @target`,
	}
}

// primitives is the CPP fundamental-type set (before specifier stripping;
// see typeModifierPattern for the specifiers/containers removed first).
func (p *provider) Primitives() map[string]struct{} {
	return set(
		"void", "bool", "char", "wchar_t", "char8_t", "char16_t", "char32_t",
		"short", "int", "long", "float", "double",
		"signed", "unsigned", "size_t", "ptrdiff_t", "nullptr_t",
		"signed char", "unsigned char", "short int", "unsigned short", "unsigned short int",
		"signed int", "unsigned int", "long int", "unsigned long", "unsigned long int",
		"long long", "long long int", "unsigned long long", "unsigned long long int", "long double",
	)
}

// IgnoredCalls are I/O and assertion-like names that must not count as
// calls for stereotype purposes.
func (p *provider) IgnoredCalls() map[string]struct{} {
	return set(
		"printf", "fprintf", "sprintf", "scanf", "cout", "cerr", "cin",
		"assert", "static_assert", "abort", "exit", "throw",
		"std::cout", "std::cerr", "std::cin", "std::endl",
	)
}

// TypeModifierPattern strips cv-qualifiers, pointer/reference sigils and
// template arguments; a standard-library wrapper such as std::shared_ptr<T>
// loses only its wrapper, leaving the element type T.
func (p *provider) TypeModifierPattern() string {
	return `\b(const|volatile|static|mutable|inline|virtual|extern)\b|[*&]+|` +
		`std::(vector|unique_ptr|shared_ptr|weak_ptr|optional|list|map|set|pair|tuple)\s*<|<[^<>]*>|>`
}

// ExprToVariablePattern is the CPP expression-to-variable splitting regex
// from spec §4.7: this-> / (*this). / ns::name / obj.name / obj->name.
func (p *provider) ExprToVariablePattern() string {
	return `^(?:\(\*this\)\.|this->|([^.>]*)(?:::|\.|->))([^.>]*)`
}

func (p *provider) DefaultParentSpecifier(classKind string) lang.InheritanceSpecifier {
	if classKind == "struct" || classKind == "union" {
		return lang.Public
	}
	return lang.Private
}

// IsVoidPointerVoid is false in CPP: a `void*` return is still a pointer
// return, not a void return, for command-vs-property purposes.
func (p *provider) IsVoidPointerVoid() bool { return false }

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

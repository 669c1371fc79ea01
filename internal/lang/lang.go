// Package lang defines the language enum and the per-language strategy
// table every other component dispatches through. There is no global
// mutable state here beyond the registry itself: primitive/ignored/modifier
// sets and query templates are owned by each Provider instance and passed
// around explicitly, never reached for as a package-level singleton.
package lang

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language identifies one of the three supported dialects.
type Language string

const (
	CPP Language = "cpp"
	CSH Language = "csh"
	JVA Language = "jva"
)

// InheritanceSpecifier is the access level under which a class inherits
// from a parent (public/protected/private). CSH and JVA always default to
// Public; CPP defaults to Private for a class and Public for a struct.
type InheritanceSpecifier string

const (
	Public    InheritanceSpecifier = "public"
	Protected InheritanceSpecifier = "protected"
	Private   InheritanceSpecifier = "private"
)

// QueryTable is the compile-time table keyed by query name that C1
// (PathQueries) must provide for a language. Values are Tree-sitter query
// template strings with zero or more "%s" placeholders, all filled with the
// same injected name predicate; queries with no placeholder match
// unconditionally.
type QueryTable map[string]string

// Required query names every language Provider must populate. Rule
// components depend only on their existence, never on the literal
// template text.
const (
	QClassForm              = "class_form" // class/struct/interface/enum/union declarations
	QClassName              = "class_name"
	QClassKind              = "class_kind"
	QParentEntry            = "parent_entry"
	QFieldName              = "field_name"
	QFieldType              = "field_type"
	QNonPrivateFieldName    = "non_private_field_name"
	QNonPrivateFieldType    = "non_private_field_type"
	QMethodForm             = "method_form"
	QPropertyForm           = "property_form"       // CSH only
	QPropertyMethodForm     = "property_method_form" // CSH only
	QFreeFunctionForm       = "free_function_form"
	QCtorDtorForm           = "ctor_dtor_form"
	QReturnExpr             = "return_expr"
	QCallNameFunction       = "call_name_function"
	QCallArgsFunction       = "call_args_function"
	QCallNameMethod         = "call_name_method"
	QCallArgsMethod         = "call_args_method"
	QCallNameCtor           = "call_name_ctor"
	QCallArgsCtor           = "call_args_ctor"
	QNewAssignName          = "new_assign_name"
	QConstSpecifier         = "const_specifier" // CPP only
	QNonCommentStmtCount    = "non_comment_stmt_count"
	QExpressionName         = "expression_name"
	QExpressionNameModified = "expression_name_modified" // sibling is = or ++/--
	QFriendDeclaration      = "friend_declaration"        // CPP only, added
)

// Provider is the per-language strategy object combining C1 (PathQueries)
// and C2 (TypeClassifier tables). Every phase of the engine branches on
// language by asking the registry for a Provider and calling through this
// interface rather than switching on the Language constant directly.
type Provider interface {
	Lang() Language

	// Queries returns the query template table for this language.
	Queries() QueryTable

	// SitterLanguage returns the Tree-sitter grammar used to parse units
	// of this language.
	SitterLanguage() *sitter.Language

	// Primitives returns the built-in primitive type-name set.
	Primitives() map[string]struct{}

	// IgnoredCalls returns callee names that must never count as calls.
	IgnoredCalls() map[string]struct{}

	// TypeModifierPattern returns the regex (as a string, compiled once by
	// the caller) matching specifiers/containers/sigils to strip from a
	// raw type string.
	TypeModifierPattern() string

	// ExprToVariablePattern returns the two-group expression-splitting
	// regex from spec §4.7.
	ExprToVariablePattern() string

	// DefaultParentSpecifier returns the inheritance specifier assumed
	// when a parent entry omits one explicitly, given the kind of the
	// inheriting class ("class" or "struct").
	DefaultParentSpecifier(classKind string) InheritanceSpecifier

	// IsVoidPointerVoid reports whether a `void*`-shaped return type
	// should be treated as void for command-vs-property purposes. CPP and
	// CSH say no (a pointer return is never "void" for classification);
	// JVA has no pointers and trivially says yes.
	IsVoidPointerVoid() bool
}

// Registry holds one Provider per Language. Built once at start-up and
// treated as read-only thereafter, matching the "no mutation after
// resolver completion" rule the spec applies to classifier tables.
type Registry struct {
	mu        sync.RWMutex
	providers map[Language]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[Language]Provider)}
}

func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("lang: provider cannot be nil")
	}
	if _, exists := r.providers[p.Lang()]; exists {
		return fmt.Errorf("lang: provider for %q already registered", p.Lang())
	}
	r.providers[p.Lang()] = p
	return nil
}

func (r *Registry) Get(l Language) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[l]
	if !ok {
		return nil, fmt.Errorf("lang: no provider registered for %q", l)
	}
	return p, nil
}

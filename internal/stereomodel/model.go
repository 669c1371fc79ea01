// Package stereomodel holds the uniform data model extraction fills and
// the rule engine consumes: Variable, Call, MethodModel, and ClassModel,
// exactly as spec §3 defines them.
package stereomodel

import "github.com/oxhq/stereoscope/internal/lang"

// Variable is the uniform record for a field, a local, or a parameter.
type Variable struct {
	RawType              string
	ParsedType           string // specifiers/containers stripped
	Name                 string
	Index                int // positional index, parameters only
	NonPrimitive         bool
	NonPrimitiveExternal bool
}

// Call is one observed call site.
type Call struct {
	Callee    string // callee name as written
	Args      string // argument-list text
	Signature string // name-without-namespace + "(" + comma-placeholder + ")"
}

// ClassKind enumerates the class-like forms a unit can declare.
type ClassKind string

const (
	KindClass     ClassKind = "class"
	KindStruct    ClassKind = "struct"
	KindInterface ClassKind = "interface"
	KindEnum      ClassKind = "enum"
	KindUnion     ClassKind = "union"
)

// MethodModel owns all per-method extracted facts.
type MethodModel struct {
	// Source anchoring.
	Source    string // verbatim tree subarchive, re-queryable
	XPath     string
	StartLine int // 1-based source line, for comment-pass insertion
	UnitIdx   int
	Language  lang.Language

	// Signature.
	Name          string
	NameSignature string // name-without-namespace + "(" + commas + ")"
	Parameters    []Variable
	Locals        []Variable

	ReturnTypeRaw    string
	ReturnTypeParsed string

	IsConst               bool // CPP only
	IsConstructorOrDtor   bool
	IsDestructor          bool
	IsCopyConstructor     bool

	NonPrimitiveReturnType         bool
	NonPrimitiveReturnTypeExternal bool

	// Accumulators, all zero/false initially.
	NumFieldsModified         int
	NumExternalFunctionCalls  int
	NumExternalMethodCalls    int
	NonCommentStatementCount  int

	FieldReturned                     bool
	ComplexReturn                     bool
	ParameterNotReturned               bool
	ParameterUsed                      bool
	FieldUsed                          bool
	ParameterRefModified               bool
	GlobalOrStaticModified             bool
	NewReturned                        bool
	FieldsCreatedWithNewAndReturned     bool
	NonPrimitiveLocalOrParamModified   bool
	NonPrimitiveExternalField          bool
	NonPrimitiveExternalReturn         bool
	NonPrimitiveExternalLocal          bool
	NonPrimitiveExternalParameter      bool

	// Accessor-method-call user: set by CallFilter when a kept method call
	// (its receiver resolves to a field) appears inside a return
	// expression; assignment right-hand sides are not checked.
	AccessorMethodCallUser bool

	FunctionCalls    []Call
	MethodCalls      []Call
	ConstructorCalls []Call

	VariablesCreatedWithNew map[string]struct{}
	ReturnExpressions       []string

	Stereotypes []string
}

// NewMethodModel returns a zero-valued MethodModel ready for extraction.
func NewMethodModel() *MethodModel {
	return &MethodModel{
		VariablesCreatedWithNew: make(map[string]struct{}),
	}
}

// ClassModel owns name forms, inheritance, fields, methods, and the
// stereotype list for one class-like declaration.
type ClassModel struct {
	Language lang.Language

	NameRaw             string
	NameStripped        string // whitespace-stripped
	NameWithoutNsOrGen   string // without namespace/generic
	NameWithoutGeneric   string // without generic only

	Kind ClassKind

	// parent name -> inheritance specifier.
	Parents map[string]lang.InheritanceSpecifier

	// ordered field table, name -> Variable (includes inherited fields
	// after Resolver runs, and the pseudo-field "this").
	Fields     map[string]Variable
	FieldOrder []string

	Methods []*MethodModel

	// set of method signatures, own + inherited after Resolver runs.
	MethodSignatures map[string]struct{}

	ConstructorCount int
	DestructorCount  int

	Stereotypes []string

	// xpath anchors per declaring unit, used by AnnotationEmitter.
	XPathAnchors     []string
	XPathAnchorLines []int // 1-based start line, parallel to XPathAnchors

	// Resolver bookkeeping.
	Inherited bool
	Visited   bool
}

// NewClassModel returns a ClassModel with the reserved pseudo-field
// "this" already inserted, as spec §4.4 step 5 requires.
func NewClassModel() *ClassModel {
	c := &ClassModel{
		Parents:          make(map[string]lang.InheritanceSpecifier),
		Fields:           make(map[string]Variable),
		MethodSignatures: make(map[string]struct{}),
	}
	c.addField(Variable{Name: "this", NonPrimitive: true, NonPrimitiveExternal: false})
	return c
}

func (c *ClassModel) addField(v Variable) {
	if _, exists := c.Fields[v.Name]; !exists {
		c.FieldOrder = append(c.FieldOrder, v.Name)
	}
	c.Fields[v.Name] = v
}

// AddField inserts or replaces a field by name, preserving first-seen
// ordering in FieldOrder.
func (c *ClassModel) AddField(v Variable) { c.addField(v) }

// AddMethodSignature records a signature in the own+inherited union set.
func (c *ClassModel) AddMethodSignature(sig string) {
	c.MethodSignatures[sig] = struct{}{}
}

// HasMethodSignature reports whether sig is a sibling method signature
// (own or inherited).
func (c *ClassModel) HasMethodSignature(sig string) bool {
	_, ok := c.MethodSignatures[sig]
	return ok
}

// Package nodes implements the typed-AST vertex set of spec.md §3/§4.2:
// a stable-id graph produced by lowering a sexpr.Expr, with lexical
// scope already resolved. Grounded in the teacher's internal/core
// Core-AST shape (NodeID + interface-per-variant), generalized from
// ANF-lowered lambda-calculus nodes to this spec's statement/expression
// surface (if/while/assignment/struct-def/etc).
package nodes

import (
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/sexpr"
)

// Node is the common interface every content variant satisfies.
type Node interface {
	ID() ids.NodeId
	Span() sexpr.Span
	node()
}

// Base carries the identity every node shares.
type Base struct {
	NodeID ids.NodeId
	Loc    sexpr.Span
}

func (b Base) ID() ids.NodeId   { return b.NodeID }
func (b Base) Span() sexpr.Span { return b.Loc }
func (b Base) node()            {}

// Literal is a self-typed constant (§4.2).
type Literal struct {
	Base
	Value sexpr.Literal
}

// VariableInit declares a new local binding: `let name = init`.
type VariableInit struct {
	Base
	Symbol ids.SymbolId
	Name   string
	Init   ids.NodeId
}

// Assignment assigns to an existing lvalue (a reference or field
// access), `lvalue = value`.
type Assignment struct {
	Base
	Target ids.NodeId
	Value  ids.NodeId
}

// If is a conditional with no else branch; its value is always void.
type If struct {
	Base
	Cond ids.NodeId
	Then ids.NodeId
}

// IfElse is a conditional expression; Then and Else must resolve to the
// same type, which becomes the node's type.
type IfElse struct {
	Base
	Cond ids.NodeId
	Then ids.NodeId
	Else ids.NodeId
}

// Block is a sequence of statements; its value is that of the last
// statement (§6 "block (last-expression value)").
type Block struct {
	Base
	Statements []ids.NodeId
}

// Quote wraps an unevaluated sexpr.Expr literal, created by the `#`
// operator (§6 "Quote").
type Quote struct {
	Base
	Template sexpr.Expr
}

// Reference is a use of a named binding: a local (Refers != zero) or an
// unresolved global (resolved later by the solver's lookup, §4.5).
type Reference struct {
	Base
	Name    string
	Refers  ids.SymbolId // zero until resolved to a local symbol
	IsLocal bool
}

// Param is one formal parameter of a function definition.
type Param struct {
	Symbol ids.SymbolId
	Name   string
}

// FunctionDef declares a function; Generics lists the generic variable
// names mentioned by ReturnType/ParamTypes. A non-empty Generics list
// makes the resulting symbol polymorphic (§3).
type FunctionDef struct {
	Base
	Name       string
	Symbol     ids.SymbolId
	Params     []Param
	ParamTypes []TypeExpr
	ReturnType TypeExpr
	Generics   []string
	Body       ids.NodeId
}

// CBind declares a function or global whose implementation is an
// external C symbol resolved at link time (§3 "initializer kind").
type CBind struct {
	Base
	Name       string
	Symbol     ids.SymbolId
	CSymbol    string
	ParamTypes []TypeExpr
	ReturnType TypeExpr
}

// GlobalDef declares a named, unit-wide value binding initialized by an
// ordinary expression (§3 "initializer kind": expression) — distinct
// from a FunctionDef/CBind, which are callable. A plain top-level `let`
// is a local of the synthesized entry function and never reaches this
// node; only an explicit `global` form does (§4.3 "GlobalDef").
type GlobalDef struct {
	Base
	Name   string
	Symbol ids.SymbolId
	Type   TypeExpr
	Init   ids.NodeId
}

// FieldDef is one (name, type) member of a TypeDef.
type FieldDef struct {
	Name string
	Type TypeExpr
}

// TypeDefKind mirrors types.DefKind at the node level, before the
// TypeExpr fields have been resolved to concrete types.
type TypeDefKind int

const (
	TypeDefStruct TypeDefKind = iota
	TypeDefUnion
)

// TypeDef declares a struct or union (§4.2).
type TypeDef struct {
	Base
	Name   string
	Kind   TypeDefKind
	Fields []FieldDef
}

// ConstructorArg is one argument to a Constructor node: Field is empty
// for positional construction.
type ConstructorArg struct {
	Field string
	Value ids.NodeId
}

// Constructor builds a struct or union value, `Name.new(...)`.
type Constructor struct {
	Base
	TypeName string
	Args     []ConstructorArg
}

// FieldAccess reads a field off a (possibly pointer-wrapped) struct or
// union value.
type FieldAccess struct {
	Base
	Container ids.NodeId
	Field     string
}

// ArrayLiteral builds a fixed array value from its elements.
type ArrayLiteral struct {
	Base
	Elements []ids.NodeId
}

// CallArg is one argument to a FunctionCall: Name is set for a named
// argument (struct-constructor-style call sugar), empty for positional.
type CallArg struct {
	Name  string
	Value ids.NodeId
}

// FunctionCall invokes either a named global (Name != "") resolved via
// §4.5 lookup, or a first-class function value (Callee != 0).
type FunctionCall struct {
	Base
	Name   string
	Callee ids.NodeId // set instead of Name when calling a value
	Args   []CallArg
}

// While is the only loop form (§6).
type While struct {
	Base
	Cond ids.NodeId
	Body ids.NodeId
}

// Convert is an explicit cast, checked against the §4.1 conversion
// policy.
type Convert struct {
	Base
	Value ids.NodeId
	Into  TypeExpr
}

// SizeOf computes the size of a type at codegen time.
type SizeOf struct {
	Base
	Of TypeExpr
}

// Label introduces a named, breakable scope around Body (§6 "labeled
// break").
type Label struct {
	Base
	Name string
	ID   ids.LabelId
	Body ids.NodeId
}

// BreakToLabel transfers control (and optionally a value) to the
// nearest enclosing Label with a matching name.
type BreakToLabel struct {
	Base
	Label ids.LabelId
	Value ids.NodeId // zero NodeId ("") if no value
}

// TypeExpr is the syntactic spelling of a type annotation before the
// generator turns it into a types.Type — it may name a still-unbound
// generic, which the node-level representation must preserve until a
// per-instantiation solve resolves it.
type TypeExpr struct {
	Kind     TypeExprKind
	Name     string     // primitive or named-type identifier, or generic name
	Elem     *TypeExpr  // pointer/array element
	Args     []TypeExpr // function signature params
	Ret      *TypeExpr  // function signature return
}

type TypeExprKind int

const (
	TypeExprPrimitiveOrNamed TypeExprKind = iota
	TypeExprPointer
	TypeExprArray
	TypeExprFunc
	TypeExprGeneric
)

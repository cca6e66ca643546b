package constraints

import (
	"github.com/weavelang/weave/internal/ids"
	"github.com/weavelang/weave/internal/sexpr"
	"github.com/weavelang/weave/internal/types"
)

// Constraint is the common interface every grammar production in §4.3
// satisfies. The solver (internal/solver) processes constraints
// generically, without knowing which node produced them.
type Constraint interface {
	constraint()
}

// Assert: ts must unify with T (T may be abstract).
type Assert struct {
	TS TS
	T  types.Type
}

func (Assert) constraint() {}

// Equivalent: a and b resolve to the same type.
type Equivalent struct {
	A, B TS
}

func (Equivalent) constraint() {}

// Array: arr = array-of(elem).
type Array struct {
	Arr, Elem TS
}

func (Array) constraint() {}

// Convert: permitted by the §4.1 conversion policy.
type Convert struct {
	Val, Into TS
	Node      ids.NodeId // for diagnostics
}

func (Convert) constraint() {}

// FieldArg is one argument slot for FieldAccess/Constructor.
type FieldArg struct {
	Field string // "" means positional (Constructor only)
	TS    TS
}

// FieldAccess: container must resolve to a (possibly pointer-wrapped)
// named struct/union; result = field type.
type FieldAccess struct {
	Container TS
	Field     string
	Result    TS
	Node      ids.NodeId
}

func (FieldAccess) constraint() {}

// Constructor: struct requires arity+field-name match (or all
// positional); union requires exactly one field supplied.
type Constructor struct {
	TypeName string
	Args     []FieldArg
	Result   TS
	Node     ids.NodeId
}

func (Constructor) constraint() {}

// FunctionDefArg is one parameter's (symbol, type-symbol) pair.
type FunctionDefArg struct {
	Symbol ids.SymbolId
	TS     TS
}

// FunctionDef: once every arg ts and the return ts are concrete,
// registers a new global function symbol with that signature.
type FunctionDef struct {
	Name      string
	Symbol    ids.SymbolId
	Args      []FunctionDefArg
	ReturnTS  TS
	Generics  []string
	Body      ids.NodeId
	Loc       sexpr.Span
}

func (FunctionDef) constraint() {}

// CallArg is one call-site argument slot.
type CallArg struct {
	Name string // "" for positional
	TS   TS
}

// FunctionCall: function is either the ts of a value (must resolve to a
// function signature) or a name (resolved via §4.5 lookup); result =
// signature return type.
type FunctionCall struct {
	Node         ids.NodeId
	FunctionTS   TS     // set when calling a first-class value
	FunctionName string // set when calling a named global
	Args         []CallArg
	Result       TS
}

func (FunctionCall) constraint() {}

// GlobalDef: like FunctionDef, but for a non-callable value global.
type GlobalDef struct {
	Name   string
	Symbol ids.SymbolId
	TS     TS
}

func (GlobalDef) constraint() {}

// GlobalReference: a reference whose name didn't resolve to a local —
// resolved against globals (including other units) by §4.5 lookup.
type GlobalReference struct {
	Node   TS // the reference node's own type symbol
	NodeID ids.NodeId // the reference node's graph id, for the typemap's SymbolRefs entry
	Name   string
}

func (GlobalReference) constraint() {}

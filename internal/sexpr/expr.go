// Package sexpr defines the generic expression tree of spec.md §3: the
// output of the external lexer/parser and the input to the structure
// pass (internal/nodes). It is deliberately untyped and source-shaped —
// a symbol, a literal, or a constructor node with children — so that
// quoting (`#`) and template substitution (`$`) can manipulate it
// without knowing anything about the type system.
package sexpr

import "github.com/weavelang/weave/internal/ids"

// LitKind enumerates the literal forms §3 names: bool, signed/unsigned
// int of widths 8/16/32/64, float 32/64, string, void.
type LitKind int

const (
	LitBool LitKind = iota
	LitI8
	LitI16
	LitI32
	LitI64
	LitU8
	LitU16
	LitU32
	LitU64
	LitF32
	LitF64
	LitString
	LitVoid

	// LitIntUntyped and LitFloatUntyped are bare numeric literals with
	// no explicit width suffix ("4", "4.0") — the constraint generator
	// asserts these against the Integer/Float class rather than a
	// concrete width, so defaulting (§4.1) picks i64/f64 unless context
	// narrows them first.
	LitIntUntyped
	LitFloatUntyped
)

// Literal is a self-typed constant value.
type Literal struct {
	Kind   LitKind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string
}

// Span records the source buffer and byte offsets an expression came
// from (§3 "Source"); it is empty for expressions synthesized by
// template_quote rather than parsed from text.
type Span struct {
	Source ids.SourceId
	Start  int
	End    int
	HasSrc bool
}

// Expr is the generic s-expression value of §3: a symbol, a literal, or
// a constructor node (head, children). Values are immutable once built
// (spec invariant 5); callers that need a modified tree build a new one.
type Expr struct {
	Span Span

	// exactly one of the following is populated, selected by Tag
	Tag     ExprTag
	Symbol  string
	Literal Literal
	Head    string
	Children []Expr

	// Splice marks a `$`-tagged slot inside a quoted template, consumed
	// left-to-right, depth-first by template_quote (§6).
	Splice bool
}

type ExprTag int

const (
	TagSymbol ExprTag = iota
	TagLiteral
	TagConstructor
)

func Symbol(name string) Expr { return Expr{Tag: TagSymbol, Symbol: name} }

func Lit(l Literal) Expr { return Expr{Tag: TagLiteral, Literal: l} }

func Constructor(head string, children ...Expr) Expr {
	return Expr{Tag: TagConstructor, Head: head, Children: children}
}

// SpliceSlot marks a `$` placeholder for template_quote substitution.
func SpliceSlot() Expr { return Expr{Tag: TagSymbol, Symbol: "$", Splice: true} }

// Equal is deep structural equality, ignoring source spans — used by
// PT6 (round-trip quoting) and by the parser's golden tests.
func Equal(a, b Expr) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagSymbol:
		return a.Symbol == b.Symbol
	case TagLiteral:
		return a.Literal == b.Literal
	case TagConstructor:
		if a.Head != b.Head || len(a.Children) != len(b.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

package parser

import (
	"testing"

	"github.com/weavelang/weave/internal/nodes"
	"github.com/weavelang/weave/internal/sexpr"
)

func mustParse(t *testing.T, src string) []sexpr.Expr {
	t.Helper()
	top, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return top
}

func TestParseLetMatchesHandBuiltExpr(t *testing.T) {
	top := mustParse(t, `(let x 4i64)`)
	want := sexpr.Constructor("let", sexpr.Symbol("x"), sexpr.Lit(sexpr.Literal{Kind: sexpr.LitI64, Int: 4}))
	if len(top) != 1 || !sexpr.Equal(top[0], want) {
		t.Fatalf("got %#v, want %#v", top, want)
	}
}

func TestParseUntypedLiteralsDefaultKind(t *testing.T) {
	top := mustParse(t, `(let x 4)`)
	want := sexpr.Constructor("let", sexpr.Symbol("x"), sexpr.Lit(sexpr.Literal{Kind: sexpr.LitIntUntyped, Int: 4}))
	if !sexpr.Equal(top[0], want) {
		t.Fatalf("got %#v", top[0])
	}
}

func TestParseQuoteSugarMatchesExplicitForm(t *testing.T) {
	sugar := mustParse(t, `#(call f (args))`)
	explicit := mustParse(t, `(quote (call f (args)))`)
	if !sexpr.Equal(sugar[0], explicit[0]) {
		t.Fatalf("sugar %#v != explicit %#v", sugar[0], explicit[0])
	}
}

func TestParseSpliceSlotIsDollar(t *testing.T) {
	top := mustParse(t, `(quote (call f (args (arg _ $))))`)
	call := top[0].Children[0]
	arg := call.Children[1].Children[0]
	slot := arg.Children[1]
	if slot.Tag != sexpr.TagSymbol || slot.Symbol != "$" || !slot.Splice {
		t.Fatalf("expected splice slot, got %#v", slot)
	}
}

func TestParseUnderscoreIsPositionalFieldName(t *testing.T) {
	top := mustParse(t, `(ctor Point (args (arg _ 1) (arg _ 2)))`)
	args := top[0].Children[1].Children
	if args[0].Children[0].Symbol != "" || args[1].Children[0].Symbol != "" {
		t.Fatalf("expected empty field names, got %#v", args)
	}
}

// This is the review's central concern made concrete: feed a realistic
// program through the parser and then through nodes.ToNodes and
// confirm the structurer accepts every form without an arity/shape
// error, i.e. the new front end actually produces what the node
// grammar expects instead of an independently-invented tree shape.
func TestParsedProgramStructuresCleanly(t *testing.T) {
	src := `
(struct-def Point (fields (field x i64) (field y i64)))

(fn make_point (generics) (params (param x i64) (param y i64)) Point
  (ctor Point (args (arg x x) (arg y y))))

(fn sum_point (generics) (params (param p Point)) i64
  (block
    (let total (field p x))
    (assign total (call + (args (arg _ total) (arg _ (field p y)))))
    total))

(fn main (generics) (params) i64
  (block
    (let p (call make_point (args (arg _ 1) (arg _ 2))))
    (call sum_point (args (arg _ p)))))
`
	top := mustParse(t, src)
	if len(top) != 3 {
		t.Fatalf("expected 3 top-level forms, got %d", len(top))
	}
	graph, err := nodes.ToNodes(top)
	if err != nil {
		t.Fatalf("ToNodes: %v", err)
	}
	if len(graph.TopLevel) != 3 {
		t.Fatalf("expected 3 structured top-level nodes, got %d", len(graph.TopLevel))
	}
}

func TestParseBreakToLabelRequiresSymbolName(t *testing.T) {
	top := mustParse(t, `(label loop (block (break loop 1)))`)
	if top[0].Head != "label" {
		t.Fatalf("got %#v", top[0])
	}
	_, err := nodes.ToNodes(top)
	if err != nil {
		t.Fatalf("ToNodes: %v", err)
	}
}

func TestParseTrueFalseVoidLiterals(t *testing.T) {
	top := mustParse(t, `(let a true) (let b false) (let c void)`)
	lit := func(e sexpr.Expr) sexpr.Literal { return e.Children[1].Literal }
	if lit(top[0]).Kind != sexpr.LitBool || lit(top[0]).Bool != true {
		t.Fatalf("got %#v", top[0])
	}
	if lit(top[1]).Kind != sexpr.LitBool || lit(top[1]).Bool != false {
		t.Fatalf("got %#v", top[1])
	}
	if lit(top[2]).Kind != sexpr.LitVoid {
		t.Fatalf("got %#v", top[2])
	}
}

func TestParseUnterminatedListIsError(t *testing.T) {
	_, err := Parse(`(let x 4`)
	if err == nil {
		t.Fatal("expected error")
	}
}

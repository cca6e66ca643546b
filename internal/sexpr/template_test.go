package sexpr

import "testing"

// PT6: template_quote(quote E, []) produces a tree structurally equal to
// E; substituting then reading back the marked positions yields the
// provided args in order.
func TestTemplateQuoteRoundTrip(t *testing.T) {
	e := Constructor("add", Symbol("x"), Lit(Literal{Kind: LitI64, Int: 1}))
	got, err := TemplateQuote(e, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got, e) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, e)
	}
}

func TestTemplateQuoteSubstitutesInOrder(t *testing.T) {
	template := Constructor("add", SpliceSlot(), SpliceSlot())
	args := []Expr{
		Lit(Literal{Kind: LitI64, Int: 10}),
		Lit(Literal{Kind: LitI64, Int: 20}),
	}
	got, err := TemplateQuote(template, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Constructor("add", args[0], args[1])
	if !Equal(got, want) {
		t.Fatalf("substitution mismatch: got %+v want %+v", got, want)
	}
}

func TestTemplateQuoteDepthFirst(t *testing.T) {
	template := Constructor("outer",
		Constructor("inner", SpliceSlot()),
		SpliceSlot(),
	)
	args := []Expr{Symbol("a"), Symbol("b")}
	got, err := TemplateQuote(template, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Constructor("outer", Constructor("inner", Symbol("a")), Symbol("b"))
	if !Equal(got, want) {
		t.Fatalf("depth-first substitution mismatch: got %+v want %+v", got, want)
	}
}

func TestTemplateQuoteArityMismatch(t *testing.T) {
	template := Constructor("add", SpliceSlot())
	if _, err := TemplateQuote(template, []Expr{Symbol("a"), Symbol("b")}); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

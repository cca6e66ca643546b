package sexpr

import "fmt"

// TemplateQuote substitutes each `$`-marked child in template with the
// corresponding element of args, consumed left-to-right, depth-first
// (spec.md §6 and SPEC_FULL.md's "template_quote substitution order").
// It returns an error if the number of splice slots in the template
// doesn't match len(args) — the original Rust prototype treats this as
// a hard mismatch rather than silently ignoring leftover args or slots.
func TemplateQuote(template Expr, args []Expr) (Expr, error) {
	idx := 0
	result := substitute(template, args, &idx)
	if idx != len(args) {
		return Expr{}, fmt.Errorf("template_quote: template has %d splice slots, got %d args", idx, len(args))
	}
	return result, nil
}

func substitute(e Expr, args []Expr, idx *int) Expr {
	if e.Tag == TagSymbol && e.Splice {
		if *idx >= len(args) {
			*idx++ // let the caller report the mismatch with an accurate count
			return e
		}
		a := args[*idx]
		*idx++
		return a
	}
	if e.Tag != TagConstructor {
		return e
	}
	children := make([]Expr, len(e.Children))
	for i, c := range e.Children {
		children[i] = substitute(c, args, idx)
	}
	return Expr{Tag: TagConstructor, Head: e.Head, Children: children, Span: e.Span}
}

// CountSplices reports how many `$` slots a template contains, used to
// validate arity before calling TemplateQuote.
func CountSplices(e Expr) int {
	if e.Tag == TagSymbol && e.Splice {
		return 1
	}
	if e.Tag != TagConstructor {
		return 0
	}
	n := 0
	for _, c := range e.Children {
		n += CountSplices(c)
	}
	return n
}

// Package parser reads weave's parenthesized surface syntax into the
// generic internal/sexpr tree that internal/nodes structures into the
// node graph. Concrete syntax is deliberately a direct rendering of
// that tree: `(head c1 c2 ...)` IS `sexpr.Constructor(head, c1, c2,
// ...)` — there is no separate surface grammar to keep in sync with
// internal/nodes/structure.go's constructor-head vocabulary, only a
// reader for it.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	werrors "github.com/weavelang/weave/internal/errors"
	"github.com/weavelang/weave/internal/frontend/lexer"
	"github.com/weavelang/weave/internal/sexpr"
)

// Parser turns a token stream into sexpr.Expr values.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

func New(input string) (*Parser, error) {
	p := &Parser{lex: lexer.New(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

// ParseProgram reads every top-level form until EOF.
func (p *Parser) ParseProgram() ([]sexpr.Expr, error) {
	var top []sexpr.Expr
	for p.cur.Type != lexer.EOF {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		top = append(top, e)
	}
	return top, nil
}

// Parse implements internal/store.Parser: it reads a full program from
// sourceText and returns its top-level forms.
func Parse(sourceText string) ([]sexpr.Expr, error) {
	p, err := New(sourceText)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

func (p *Parser) err(code, msg string) error {
	return werrors.New(werrors.PhaseParse, code, msg).
		At(werrors.Span{Start: p.cur.Start, End: p.cur.End}).
		With("line", p.cur.Line).With("column", p.cur.Column)
}

func (p *Parser) span(start int) sexpr.Span {
	return sexpr.Span{Start: start, End: p.cur.End, HasSrc: true}
}

func (p *Parser) parseExpr() (sexpr.Expr, error) {
	start := p.cur.Start
	switch p.cur.Type {
	case lexer.LPAREN:
		return p.parseList(start)
	case lexer.HASH:
		if err := p.advance(); err != nil {
			return sexpr.Expr{}, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return sexpr.Expr{}, err
		}
		e := sexpr.Constructor("quote", inner)
		e.Span = p.span(start)
		return e, nil
	case lexer.DOLLAR:
		if err := p.advance(); err != nil {
			return sexpr.Expr{}, err
		}
		e := sexpr.SpliceSlot()
		e.Span = p.span(start)
		return e, nil
	case lexer.STRING:
		lit := sexpr.Lit(sexpr.Literal{Kind: sexpr.LitString, String: p.cur.Literal})
		lit.Span = sexpr.Span{Start: start, End: p.cur.End, HasSrc: true}
		if err := p.advance(); err != nil {
			return sexpr.Expr{}, err
		}
		return lit, nil
	case lexer.INT:
		return p.parseIntLiteral()
	case lexer.FLOAT:
		return p.parseFloatLiteral()
	case lexer.SYMBOL:
		return p.parseSymbolOrKeyword()
	case lexer.RPAREN:
		return sexpr.Expr{}, p.err(werrors.PAR001, "unexpected )")
	case lexer.EOF:
		return sexpr.Expr{}, p.err(werrors.PAR002, "unexpected end of input")
	default:
		return sexpr.Expr{}, p.err(werrors.PAR001, fmt.Sprintf("unexpected token %s", p.cur.Type))
	}
}

// parseList reads "(" head child* ")". head must be a bare symbol —
// every grammar production in structure.go is keyed by a literal
// string head, never a computed one.
func (p *Parser) parseList(start int) (sexpr.Expr, error) {
	if err := p.advance(); err != nil { // consume "("
		return sexpr.Expr{}, err
	}
	if p.cur.Type != lexer.SYMBOL {
		return sexpr.Expr{}, p.err(werrors.PAR001, "expected a list head symbol after (")
	}
	head := p.cur.Literal
	if err := p.advance(); err != nil {
		return sexpr.Expr{}, err
	}

	var children []sexpr.Expr
	for p.cur.Type != lexer.RPAREN {
		if p.cur.Type == lexer.EOF {
			return sexpr.Expr{}, p.err(werrors.PAR002, "unterminated list, missing )")
		}
		child, err := p.parseExpr()
		if err != nil {
			return sexpr.Expr{}, err
		}
		children = append(children, child)
	}
	e := sexpr.Constructor(head, children...)
	e.Span = p.span(start)
	if err := p.advance(); err != nil { // consume ")"
		return sexpr.Expr{}, err
	}
	return e, nil
}

// parseSymbolOrKeyword handles the handful of bare symbols that mean
// something other than themselves: true/false/void literals and "_"
// for an elided (positional) field name.
func (p *Parser) parseSymbolOrKeyword() (sexpr.Expr, error) {
	start, end := p.cur.Start, p.cur.End
	lit := p.cur.Literal
	if err := p.advance(); err != nil {
		return sexpr.Expr{}, err
	}
	sp := sexpr.Span{Start: start, End: end, HasSrc: true}
	switch lit {
	case "true", "false":
		e := sexpr.Lit(sexpr.Literal{Kind: sexpr.LitBool, Bool: lit == "true"})
		e.Span = sp
		return e, nil
	case "void":
		e := sexpr.Lit(sexpr.Literal{Kind: sexpr.LitVoid})
		e.Span = sp
		return e, nil
	case "_":
		e := sexpr.Symbol("")
		e.Span = sp
		return e, nil
	default:
		e := sexpr.Symbol(lit)
		e.Span = sp
		return e, nil
	}
}

var intSuffixes = map[string]sexpr.LitKind{
	"i8": sexpr.LitI8, "i16": sexpr.LitI16, "i32": sexpr.LitI32, "i64": sexpr.LitI64,
	"u8": sexpr.LitU8, "u16": sexpr.LitU16, "u32": sexpr.LitU32, "u64": sexpr.LitU64,
}

var unsignedSuffix = map[string]bool{"u8": true, "u16": true, "u32": true, "u64": true}

func splitNumericSuffix(raw string) (digits, suffix string) {
	i := len(raw)
	for i > 0 && (raw[i-1] < '0' || raw[i-1] > '9') {
		i--
	}
	return raw[:i], raw[i:]
}

func (p *Parser) parseIntLiteral() (sexpr.Expr, error) {
	start, end := p.cur.Start, p.cur.End
	raw := p.cur.Literal
	if err := p.advance(); err != nil {
		return sexpr.Expr{}, err
	}
	digits, suffix := splitNumericSuffix(raw)
	if suffix == "" {
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("invalid integer literal %q", raw)).
				At(werrors.Span{Start: start, End: end})
		}
		e := sexpr.Lit(sexpr.Literal{Kind: sexpr.LitIntUntyped, Int: v})
		e.Span = sexpr.Span{Start: start, End: end, HasSrc: true}
		return e, nil
	}
	kind, ok := intSuffixes[suffix]
	if !ok {
		return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("unknown integer suffix %q", suffix)).
			At(werrors.Span{Start: start, End: end})
	}
	lit := sexpr.Literal{Kind: kind}
	if unsignedSuffix[suffix] {
		uv, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("invalid unsigned literal %q", raw)).
				At(werrors.Span{Start: start, End: end})
		}
		lit.Uint = uv
	} else {
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("invalid integer literal %q", raw)).
				At(werrors.Span{Start: start, End: end})
		}
		lit.Int = v
	}
	e := sexpr.Lit(lit)
	e.Span = sexpr.Span{Start: start, End: end, HasSrc: true}
	return e, nil
}

func (p *Parser) parseFloatLiteral() (sexpr.Expr, error) {
	start, end := p.cur.Start, p.cur.End
	raw := p.cur.Literal
	if err := p.advance(); err != nil {
		return sexpr.Expr{}, err
	}
	digits, suffix := raw, ""
	if idx := strings.IndexAny(raw, "f"); idx >= 0 && (strings.HasSuffix(raw, "f32") || strings.HasSuffix(raw, "f64")) {
		digits, suffix = raw[:idx], raw[idx:]
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("invalid float literal %q", raw)).
			At(werrors.Span{Start: start, End: end})
	}
	kind := sexpr.LitFloatUntyped
	switch suffix {
	case "f32":
		kind = sexpr.LitF32
	case "f64":
		kind = sexpr.LitF64
	case "":
	default:
		return sexpr.Expr{}, werrors.New(werrors.PhaseLex, werrors.LEX002, fmt.Sprintf("unknown float suffix %q", suffix)).
			At(werrors.Span{Start: start, End: end})
	}
	e := sexpr.Lit(sexpr.Literal{Kind: kind, Float: v})
	e.Span = sexpr.Span{Start: start, End: end, HasSrc: true}
	return e, nil
}

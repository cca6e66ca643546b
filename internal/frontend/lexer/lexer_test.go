package lexer

import "testing"

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(src)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestLexerTokenizesListOfAtoms(t *testing.T) {
	toks := collect(t, `(let x 4i64)`)
	want := []TokenType{LPAREN, SYMBOL, SYMBOL, INT, RPAREN, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
	if toks[3].Literal != "4i64" {
		t.Fatalf("literal = %q", toks[3].Literal)
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	toks := collect(t, "-- a comment\n(x)")
	want := []TokenType{LPAREN, SYMBOL, RPAREN, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens: %v", len(toks), toks)
	}
}

func TestLexerReadsStringWithEscapes(t *testing.T) {
	toks := collect(t, `"hi\n\"there\""`)
	if toks[0].Type != STRING || toks[0].Literal != "hi\n\"there\"" {
		t.Fatalf("got %#v", toks[0])
	}
}

func TestLexerReadsHashAndDollar(t *testing.T) {
	toks := collect(t, `#(call f (args)) $`)
	want := []TokenType{HASH, LPAREN, SYMBOL, SYMBOL, LPAREN, SYMBOL, RPAREN, RPAREN, DOLLAR, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
}

func TestLexerDistinguishesFloatFromIntSuffix(t *testing.T) {
	toks := collect(t, `4.0f32 4u8 -3`)
	if toks[0].Type != FLOAT || toks[0].Literal != "4.0f32" {
		t.Fatalf("got %#v", toks[0])
	}
	if toks[1].Type != INT || toks[1].Literal != "4u8" {
		t.Fatalf("got %#v", toks[1])
	}
	if toks[2].Type != INT || toks[2].Literal != "-3" {
		t.Fatalf("got %#v", toks[2])
	}
}

func TestLexerUnterminatedStringIsError(t *testing.T) {
	l := New(`"abc`)
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error")
	}
}

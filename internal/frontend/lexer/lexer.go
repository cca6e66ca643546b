package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	werrors "github.com/weavelang/weave/internal/errors"
)

// Lexer tokenizes weave surface syntax.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
	} else {
		var size int
		l.ch, size = utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.position = l.readPosition
		l.readPosition += size
		l.column++
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// skipComment consumes a "-- ..." line comment.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// NextToken returns the next token, skipping whitespace and comments.
func (l *Lexer) NextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.ch == '-' && l.peekChar() == '-' {
			l.skipComment()
			continue
		}
		break
	}

	line, column, start := l.line, l.column, l.position

	switch {
	case l.ch == 0:
		return NewToken(EOF, "", start, start, line, column), nil
	case l.ch == '(':
		l.readChar()
		return NewToken(LPAREN, "(", start, l.position, line, column), nil
	case l.ch == ')':
		l.readChar()
		return NewToken(RPAREN, ")", start, l.position, line, column), nil
	case l.ch == '#':
		l.readChar()
		return NewToken(HASH, "#", start, l.position, line, column), nil
	case l.ch == '$':
		l.readChar()
		return NewToken(DOLLAR, "$", start, l.position, line, column), nil
	case l.ch == '"':
		lit, err := l.readString()
		if err != nil {
			return Token{}, err
		}
		return NewToken(STRING, lit, start, l.position, line, column), nil
	case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
		return l.readNumber(start, line, column)
	case isSymbolStart(l.ch):
		lit := l.readSymbol()
		return NewToken(SYMBOL, lit, start, l.position, line, column), nil
	default:
		ch := l.ch
		l.readChar()
		return NewToken(ILLEGAL, string(ch), start, l.position, line, column), nil
	}
}

func (l *Lexer) readString() (string, error) {
	startLine, startCol := l.line, l.column
	l.readChar() // consume opening quote
	var out strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return "", werrors.New(werrors.PhaseLex, werrors.LEX001, "unterminated string literal").
				At(werrors.Span{Start: l.position}).With("line", startLine).With("column", startCol)
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				out.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		out.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return out.String(), nil
}

// readNumber scans an integer or float literal, including an optional
// width suffix (i8/i16/i32/i64/u8/u16/u32/u64/f32/f64). The parser is
// responsible for splitting the suffix back out and picking the
// sexpr.LitKind; the lexer only needs to know INT vs FLOAT, by whether
// a '.' appeared before the suffix letters started.
func (l *Lexer) readNumber(start, line, column int) (Token, error) {
	var out strings.Builder
	if l.ch == '-' {
		out.WriteRune(l.ch)
		l.readChar()
	}
	for isDigit(l.ch) {
		out.WriteRune(l.ch)
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		out.WriteRune(l.ch)
		l.readChar()
		for isDigit(l.ch) {
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
	for isLetter(l.ch) || isDigit(l.ch) {
		out.WriteRune(l.ch)
		l.readChar()
	}
	if isFloat {
		return NewToken(FLOAT, out.String(), start, l.position, line, column), nil
	}
	return NewToken(INT, out.String(), start, l.position, line, column), nil
}

// readSymbol scans a bare identifier/operator run: letters, digits,
// and the punctuation weave uses for operator names and compound
// identifiers (+, -, *, /, %, =, <, >, !, ?, _, -kebab-case-).
func (l *Lexer) readSymbol() string {
	start := l.position
	for isSymbolStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isSymbolStart(ch rune) bool {
	switch ch {
	case '(', ')', '"', '#', '$', 0:
		return false
	}
	if unicode.IsSpace(ch) {
		return false
	}
	return true
}

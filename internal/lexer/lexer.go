// Package lexer turns UTF-8 plasm source text into a token stream.
//
// A struct-based lexer (NewLexer/NextToken, driven by the parser):
// Lexer carries its own position and error list so multiple
// compilation units never share mutable state.
package lexer

import (
	"strconv"

	"github.com/plasm-lang/plasm/internal/diag"
	"github.com/plasm-lang/plasm/internal/token"
)

// Lexer scans one compilation unit's source bytes into tokens.
type Lexer struct {
	src    []byte
	pos    int
	line   int
	col    int
	Errors diag.List

	cur token.Token
}

// NewLexer prepares a Lexer over src. src need not be nul-terminated.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the entire input and returns every token including the
// trailing EOF, plus whatever diagnostics the lexer collected. This is
// the batch-mode entry point; NextToken/Current below
// provide the incremental contract the parser drives directly.
func Tokenize(src []byte) ([]token.Token, *diag.List) {
	l := NewLexer(src)
	var toks []token.Token
	l.NextToken()
	for {
		toks = append(toks, l.Current())
		if l.Current().Kind == token.EOF {
			break
		}
		l.NextToken()
	}
	return toks, &l.Errors
}

// Current returns the most recently scanned token.
func (l *Lexer) Current() token.Token { return l.cur }

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.peekByte()
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peekByte() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekByteAt(1) == '/' {
				for l.peekByte() != '\n' && l.peekByte() != 0 {
					l.advance()
				}
				continue
			}
			if l.peekByteAt(1) == '*' {
				l.advance()
				l.advance()
				for {
					if l.peekByte() == 0 {
						break
					}
					if l.peekByte() == '*' && l.peekByteAt(1) == '/' {
						l.advance()
						l.advance()
						break
					}
					l.advance()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func isLetter(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentRune(b byte) bool {
	return isLetter(b) || isDigit(b)
}

// NextToken scans the next token and stores it as Current().
func (l *Lexer) NextToken() {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		l.cur = token.Token{Kind: token.EOF, Line: line, Column: col}
		return
	}

	b := l.peekByte()
	switch {
	case isLetter(b):
		l.scanIdentifier(line, col)
		return
	case isDigit(b):
		l.scanNumber(line, col)
		return
	case b == '"':
		l.scanString(line, col)
		return
	case b == '$':
		l.scanDollar(line, col)
		return
	}

	l.scanOperator(line, col)
}

func (l *Lexer) scanIdentifier(line, col int) {
	start := l.pos
	for isIdentRune(l.peekByte()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	kind := token.Lookup(text)
	tok := token.Token{Kind: kind, Literal: text, Line: line, Column: col}
	if kind == token.TRUE || kind == token.FALSE {
		tok.BoolValue = kind == token.TRUE
	}
	l.cur = tok
}

func (l *Lexer) scanNumber(line, col int) {
	start := l.pos
	for isDigit(l.peekByte()) {
		l.advance()
	}
	isFloat := false
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	text := string(l.src[start:l.pos])
	if isFloat {
		v, _ := strconv.ParseFloat(text, 64)
		l.cur = token.Token{Kind: token.FLOAT_LITERAL, Literal: text, Line: line, Column: col, FloatValue: v}
		return
	}
	v, _ := strconv.ParseInt(text, 10, 64)
	l.cur = token.Token{Kind: token.INT_LITERAL, Literal: text, Line: line, Column: col, IntValue: v}
}

func (l *Lexer) scanString(line, col int) {
	l.advance() // opening quote
	var decoded []byte
	terminated := false
	for {
		b := l.peekByte()
		if b == 0 {
			break
		}
		if b == '"' {
			l.advance()
			terminated = true
			break
		}
		if b == '\\' {
			l.advance()
			esc := l.advance()
			switch esc {
			case 'n':
				decoded = append(decoded, '\n')
			case 't':
				decoded = append(decoded, '\t')
			case 'r':
				decoded = append(decoded, '\r')
			case '\\':
				decoded = append(decoded, '\\')
			case '"':
				decoded = append(decoded, '"')
			default:
				decoded = append(decoded, esc)
			}
			continue
		}
		decoded = append(decoded, l.advance())
	}
	if !terminated {
		l.Errors.Addf("Lexer", line, col, "Unterminated string literal")
		l.cur = token.Token{Kind: token.ILLEGAL, Literal: string(decoded), Line: line, Column: col}
		return
	}
	l.cur = token.Token{Kind: token.STRING_LITERAL, Literal: string(decoded), Line: line, Column: col, StringValue: string(decoded)}
}

func (l *Lexer) scanDollar(line, col int) {
	l.advance() // '$'
	if !isLetter(l.peekByte()) {
		l.cur = token.Token{Kind: token.DOLLAR, Literal: "$", Line: line, Column: col}
		return
	}
	start := l.pos
	for isIdentRune(l.peekByte()) {
		l.advance()
	}
	text := "$" + string(l.src[start:l.pos])
	l.cur = token.Token{Kind: token.PROC_IDENT, Literal: text, Line: line, Column: col}
}

// twoByte maps a lookahead pair to the compound operator it forms.
var twoByte = map[[2]byte]token.Kind{
	{'=', '='}: token.EQ, {'!', '='}: token.NEQ,
	{'<', '='}: token.LE, {'>', '='}: token.GE,
	{'&', '&'}: token.AND, {'|', '|'}: token.OR,
	{'=', '>'}: token.ARROW,
}

var oneByte = map[byte]token.Kind{
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH, '%': token.PERCENT,
	'=': token.ASSIGN, '<': token.LT, '>': token.GT, '!': token.NOT,
	',': token.COMMA, ';': token.SEMI, ':': token.COLON, '.': token.DOT,
	'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACKET, ']': token.RBRACKET, '@': token.AT,
}

func (l *Lexer) scanOperator(line, col int) {
	b0 := l.peekByte()
	b1 := l.peekByteAt(1)
	if k, ok := twoByte[[2]byte{b0, b1}]; ok {
		l.advance()
		l.advance()
		l.cur = token.Token{Kind: k, Literal: string([]byte{b0, b1}), Line: line, Column: col}
		return
	}
	if k, ok := oneByte[b0]; ok {
		l.advance()
		l.cur = token.Token{Kind: k, Literal: string(b0), Line: line, Column: col}
		return
	}
	l.advance()
	l.Errors.Addf("Lexer", line, col, "Unexpected character: %c", b0)
	l.cur = token.Token{Kind: token.ILLEGAL, Literal: string(b0), Line: line, Column: col}
}

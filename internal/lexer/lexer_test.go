package lexer

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/token"
)

func TestNextTokenSimple(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected token.Kind
	}{
		{"identifier", "foo", token.IDENT},
		{"keyword fn", "fn", token.FN},
		{"keyword class", "class", token.CLASS},
		{"int literal", "42", token.INT_LITERAL},
		{"float literal", "3.14", token.FLOAT_LITERAL},
		{"string literal", `"hi"`, token.STRING_LITERAL},
		{"bool literal", "true", token.TRUE}, // true/false are their own keyword kinds
		{"proc identifier", "$main", token.PROC_IDENT},
		{"bare dollar", "$", token.DOLLAR},
		{"arrow", "=>", token.ARROW},
		{"eq", "==", token.EQ},
		{"assign", "=", token.ASSIGN},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := NewLexer([]byte(test.src))
			l.NextToken()
			be.Equal(t, test.expected, l.Current().Kind)
		})
	}
}

func TestLexerTracksPosition(t *testing.T) {
	l := NewLexer([]byte("fn\nfoo"))
	l.NextToken()
	be.Equal(t, 1, l.Current().Line)
	be.Equal(t, 1, l.Current().Column)

	l.NextToken()
	be.Equal(t, 2, l.Current().Line)
	be.Equal(t, 1, l.Current().Column)
}

func TestLexerSkipsComments(t *testing.T) {
	l := NewLexer([]byte("// comment\nfn /* block */ proc"))
	l.NextToken()
	be.Equal(t, token.FN, l.Current().Kind)
	l.NextToken()
	be.Equal(t, token.PROC, l.Current().Kind)
}

func TestLexerStringEscapes(t *testing.T) {
	l := NewLexer([]byte(`"a\nb\tc\\d\"e"`))
	l.NextToken()
	be.Equal(t, token.STRING_LITERAL, l.Current().Kind)
	be.Equal(t, "a\nb\tc\\d\"e", l.Current().StringValue)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer([]byte(`"unterminated`))
	l.NextToken()
	be.Equal(t, token.ILLEGAL, l.Current().Kind)
	be.True(t, l.Errors.HasErrors())
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	l := NewLexer([]byte("#"))
	l.NextToken()
	be.Equal(t, token.ILLEGAL, l.Current().Kind)
	be.True(t, l.Errors.HasErrors())
}

func TestTokenizeEndsWithEOF(t *testing.T) {
	toks, errs := Tokenize([]byte("fn add() {}"))
	be.True(t, !errs.HasErrors())
	be.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestNumericLiteralValues(t *testing.T) {
	l := NewLexer([]byte("123"))
	l.NextToken()
	be.Equal(t, int64(123), l.Current().IntValue)

	l = NewLexer([]byte("1.5"))
	l.NextToken()
	be.Equal(t, 1.5, l.Current().FloatValue)
}

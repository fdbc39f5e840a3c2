// Package parser is a recursive-descent, Pratt-style parser turning a
// plasm token stream into a typed ast.Program.
//
// A hand-written recursive-descent parser (ParseExpression down a
// ladder of one method per precedence level to parsePrimary, and
// ParseStatement, driven by a single lookahead token with next/accept/
// expect helpers) covering plasm's full declaration and expression
// grammar.
package parser

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/diag"
	"github.com/plasm-lang/plasm/internal/lexer"
	"github.com/plasm-lang/plasm/internal/token"
)

// Parser drives a Lexer one token of lookahead at a time, with an
// optional second buffered token for the handful of call sites that
// need to look past cur before deciding how to parse it.
type Parser struct {
	lex    *lexer.Lexer
	cur    token.Token
	peeked *token.Token
	Errors diag.List
}

// New prepares a Parser and primes the first lookahead token.
func New(src []byte) *Parser {
	l := lexer.NewLexer(src)
	p := &Parser{lex: l}
	p.next()
	return p
}

// NewFromLexer wraps a Lexer the caller has already advanced once
// (`l.NextToken()`), taking its current token as the first lookahead.
func NewFromLexer(l *lexer.Lexer) *Parser {
	p := &Parser{lex: l, cur: l.Current()}
	return p
}

func (p *Parser) next() {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return
	}
	p.lex.NextToken()
	p.cur = p.lex.Current()
	p.Errors.Merge(&p.lex.Errors)
	p.lex.Errors = diag.List{}
}

// peekNextKind returns the kind of the token following cur, buffering
// it so the next call to next() consumes it instead of re-lexing.
func (p *Parser) peekNextKind() token.Kind {
	if p.peeked == nil {
		p.lex.NextToken()
		t := p.lex.Current()
		p.Errors.Merge(&p.lex.Errors)
		p.lex.Errors = diag.List{}
		p.peeked = &t
	}
	return p.peeked.Kind
}

func (p *Parser) peekKind() token.Kind { return p.cur.Kind }

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) errorf(format string, args ...any) {
	p.Errors.Addf("Parse", p.cur.Line, p.cur.Column, format, args...)
}

// expect consumes the current token if it matches k, else records a
// diagnostic and returns the current (unexpected) token without
// advancing (so the caller can still attempt to resynchronise).
func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.errorf("expected %s, got %s", k, p.cur.Kind)
		return p.cur
	}
	t := p.cur
	p.next()
	return t
}

func (p *Parser) accept(k token.Kind) bool {
	if p.cur.Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{Line: p.cur.Line, Column: p.cur.Column}
}

// statementStartKinds are the tokens synchronise() scans forward to after
// a statement-level parse error.
var statementStartKinds = map[token.Kind]bool{
	token.CLASS: true, token.FN: true, token.PROC: true, token.CONST: true,
	token.FINAL: true, token.LET: true, token.IF: true, token.WHILE: true,
	token.RETURN: true,
}

// synchronise advances past tokens until it reaches a semicolon (which it
// also consumes) or a token that can start a new statement/declaration.
func (p *Parser) synchronise() {
	for {
		if p.at(token.SEMI) {
			p.next()
			return
		}
		if p.at(token.EOF) || statementStartKinds[p.cur.Kind] {
			return
		}
		p.next()
	}
}

// ParseProgram parses a complete compilation unit.
func ParseProgram(src []byte) *ast.Program {
	p := New(src)
	return p.parseProgram()
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Pos: p.pos()}
	for p.at(token.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImport())
	}
	for !p.at(token.EOF) {
		before := p.cur
		decl := p.parseDeclaration()
		if decl != nil {
			prog.Declarations = append(prog.Declarations, decl)
		}
		if p.cur == before {
			// parseDeclaration made no progress; force advance to avoid
			// an infinite loop on a truly unparseable token.
			p.next()
		}
	}
	prog.Errors = p.Errors.All()
	return prog
}

func (p *Parser) parseImport() *ast.ImportDecl {
	pos := p.pos()
	p.expect(token.IMPORT)
	path := ""
	if p.at(token.STRING_LITERAL) {
		path = p.cur.StringValue
		p.next()
	} else if p.at(token.IDENT) {
		path = p.cur.Literal
		p.next()
	}
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after import")
	}
	return &ast.ImportDecl{Pos: pos, Path: path}
}

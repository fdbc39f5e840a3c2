package parser

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/token"
)

// parseType parses a TypeSpec: primitive/identifier -> simple, `N<T,...>`
// -> generic, `(T,...) => T` -> function, `void`/`any` -> their own
// forms, `(T, T)` (no trailing `=>`) -> tuple.
func (p *Parser) parseType() *ast.TypeSpec {
	pos := p.pos()

	switch p.cur.Kind {
	case token.VOID:
		p.next()
		return &ast.TypeSpec{Pos: pos, Kind: ast.TypeVoid, Name: "void"}
	case token.ANY:
		p.next()
		return &ast.TypeSpec{Pos: pos, Kind: ast.TypeAny, Name: "any"}
	case token.LPAREN:
		return p.parseTupleOrFunctionType()
	}

	if token.IsPrimitiveType(p.cur.Kind) || p.at(token.IDENT) {
		name := p.cur.Literal
		p.next()
		if p.at(token.LT) {
			return p.parseGenericTypeTail(pos, name)
		}
		return &ast.TypeSpec{Pos: pos, Kind: ast.TypeSimple, Name: name}
	}

	p.errorf("expected type, got %s", p.cur.Kind)
	return &ast.TypeSpec{Pos: pos, Kind: ast.TypeSimple, Name: "void"}
}

func (p *Parser) parseGenericTypeTail(pos ast.Pos, name string) *ast.TypeSpec {
	p.expect(token.LT)
	var args []*ast.TypeSpec
	for !p.at(token.GT) && !p.at(token.EOF) {
		args = append(args, p.parseType())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.GT)
	return &ast.TypeSpec{Pos: pos, Kind: ast.TypeGeneric, GenericName: name, GenericArgs: args}
}

// parseTupleOrFunctionType commits to a function type only when a `=>`
// follows the closing `)`. Both forms start with the same parenthesised
// type list, so it parses that list once, consumes the `)`, and then
// wraps the list as function parameters if `=>` follows or as a tuple
// otherwise.
func (p *Parser) parseTupleOrFunctionType() *ast.TypeSpec {
	pos := p.pos()
	p.expect(token.LPAREN)
	var elems []*ast.TypeSpec
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		elems = append(elems, p.parseType())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)

	if p.accept(token.ARROW) {
		ret := p.parseType()
		return &ast.TypeSpec{Pos: pos, Kind: ast.TypeFunc, FuncParams: elems, FuncReturns: ret}
	}
	return &ast.TypeSpec{Pos: pos, Kind: ast.TypeTuple, TupleElems: elems}
}

package parser

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/token"
)

var binaryOpSymbols = map[token.Kind]string{
	token.PLUS: "+", token.MINUS: "-", token.STAR: "*", token.SLASH: "/", token.PERCENT: "%",
	token.EQ: "==", token.NEQ: "!=", token.LT: "<", token.GT: ">", token.LE: "<=", token.GE: ">=",
	token.AND: "&&", token.OR: "||",
}

func (p *Parser) parseVisibility() ast.Visibility {
	switch p.cur.Kind {
	case token.PUB:
		p.next()
		return ast.VisPub
	case token.PROT:
		p.next()
		return ast.VisProt
	}
	return ast.VisDefault
}

// parseDeclaration parses one top-level declaration; class members are
// parsed by parseClassMember.
func (p *Parser) parseDeclaration() ast.Declaration {
	pos := p.pos()
	vis := p.parseVisibility()
	static := p.accept(token.STATIC)

	switch p.cur.Kind {
	case token.CONST:
		return p.parseConstDecl(pos, vis)
	case token.FN:
		return p.parseFunctionDecl(pos, vis, static)
	case token.PROC:
		return p.parseProcedureDecl(pos, vis, static)
	case token.CLASS:
		return p.parseClassDecl(pos, vis)
	}

	p.errorf("expected declaration, got %s", p.cur.Kind)
	p.synchronise()
	return nil
}

func (p *Parser) parseConstDecl(pos ast.Pos, vis ast.Visibility) *ast.ConstDecl {
	p.expect(token.CONST)
	name := p.expect(token.IDENT).Literal
	var typ *ast.TypeSpec
	if p.accept(token.COLON) {
		typ = p.parseType()
	}
	p.expect(token.ASSIGN)
	value := p.ParseExpression()
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after const declaration")
	}
	return &ast.ConstDecl{Pos: pos, Visibility: vis, Name: name, Type: typ, Value: value}
}

func (p *Parser) parseParams() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		ppos := p.pos()
		typ := p.parseType()
		name := p.expect(token.IDENT).Literal
		params = append(params, &ast.Param{Pos: ppos, Name: name, Type: typ})
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseFunctionDecl(pos ast.Pos, vis ast.Visibility, static bool) *ast.FunctionDecl {
	p.expect(token.FN)
	name := p.expect(token.IDENT).Literal
	params := p.parseParams()
	ret := p.parseType()
	body := p.parseBlock()
	return &ast.FunctionDecl{Pos: pos, Visibility: vis, Static: static, Name: name, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseProcedureDecl(pos ast.Pos, vis ast.Visibility, static bool) *ast.ProcedureDecl {
	p.expect(token.PROC)
	name := p.expect(token.PROC_IDENT).Literal
	params := p.parseParams()
	ret := p.parseType()
	body := p.parseBlock()
	return &ast.ProcedureDecl{Pos: pos, Visibility: vis, Static: static, Name: name, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) parseClassDecl(pos ast.Pos, vis ast.Visibility) *ast.ClassDecl {
	p.expect(token.CLASS)
	name := p.expect(token.IDENT).Literal
	p.expect(token.LBRACE)

	var members []ast.ClassMember
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		m := p.parseClassMember()
		if m != nil {
			members = append(members, m)
		}
	}
	p.expect(token.RBRACE)
	return &ast.ClassDecl{Pos: pos, Visibility: vis, Name: name, Members: members}
}

func (p *Parser) parseClassMember() ast.ClassMember {
	mpos := p.pos()
	vis := p.parseVisibility()
	static := p.accept(token.STATIC)

	switch p.cur.Kind {
	case token.FINAL, token.LET:
		return p.parseFieldDecl(mpos, vis)
	case token.CONSTRUCTOR:
		return p.parseConstructorDecl(mpos, vis)
	case token.OP:
		return p.parseOperatorDecl(mpos, vis)
	case token.FN:
		return p.parseFunctionDecl(mpos, vis, static)
	case token.PROC:
		return p.parseProcedureDecl(mpos, vis, static)
	}

	p.errorf("expected class member, got %s", p.cur.Kind)
	p.synchronise()
	return nil
}

func (p *Parser) parseFieldDecl(pos ast.Pos, vis ast.Visibility) *ast.FieldDecl {
	final := p.at(token.FINAL)
	p.next() // final or let

	var typ *ast.TypeSpec
	// A field's type is mandatory for final (`final T name;`) and
	// otherwise inferred from the lookahead heuristic.
	if final || p.peekIsTypeThenIdent() {
		typ = p.parseType()
	}
	name := p.expect(token.IDENT).Literal

	var def ast.Expr
	if p.accept(token.ASSIGN) {
		def = p.ParseExpression()
	}
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after field declaration")
	}
	return &ast.FieldDecl{Pos: pos, Visibility: vis, Final: final, Name: name, Type: typ, Default: def}
}

// peekIsTypeThenIdent looks past cur to decide whether it starts a
// type rather than being the binding/field name itself. A primitive
// keyword can never be a name, so it always starts a type. A plain
// identifier starts a type only when a second identifier follows (a
// class-typed name, e.g. `Point p`) or a `<` follows (a generic-typed
// name, e.g. `array<u64> xs`) — a bare name can be followed by neither
// in this position, so the two-token lookahead is unambiguous.
func (p *Parser) peekIsTypeThenIdent() bool {
	if token.IsPrimitiveType(p.cur.Kind) {
		return true
	}
	if p.at(token.IDENT) {
		next := p.peekNextKind()
		return next == token.IDENT || next == token.LT
	}
	return false
}

func (p *Parser) parseConstructorDecl(pos ast.Pos, vis ast.Visibility) *ast.ConstructorDecl {
	p.expect(token.CONSTRUCTOR)
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.ConstructorDecl{Pos: pos, Visibility: vis, Params: params, Body: body}
}

func (p *Parser) parseOperatorDecl(pos ast.Pos, vis ast.Visibility) *ast.OperatorDecl {
	p.expect(token.OP)
	p.expect(token.LPAREN)
	symbol := p.parseOperatorSymbol()
	p.expect(token.RPAREN)

	p.expect(token.LPAREN)
	var param *ast.Param
	if !p.at(token.RPAREN) {
		ppos := p.pos()
		typ := p.parseType()
		name := p.expect(token.IDENT).Literal
		param = &ast.Param{Pos: ppos, Name: name, Type: typ}
	}
	p.expect(token.RPAREN)

	ret := p.parseType()
	body := p.parseBlock()
	return &ast.OperatorDecl{Pos: pos, Visibility: vis, Symbol: symbol, Param: param, ReturnType: ret, Body: body}
}

func (p *Parser) parseOperatorSymbol() string {
	if sym, ok := binaryOpSymbols[p.cur.Kind]; ok {
		p.next()
		return sym
	}
	p.errorf("expected operator symbol, got %s", p.cur.Kind)
	p.next()
	return "?"
}

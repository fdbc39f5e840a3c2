package parser

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/token"
)

func (p *Parser) parseBlock() *ast.Block {
	pos := p.pos()
	p.expect(token.LBRACE)
	var stmts []ast.Stmt
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmts = append(stmts, p.ParseStatement())
	}
	p.expect(token.RBRACE)
	return &ast.Block{Pos: pos, Statements: stmts}
}

// ParseStatement parses a single statement, synchronising on error so one
// bad statement does not abort the enclosing block.
func (p *Parser) ParseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.FINAL, token.LET:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	pos := p.pos()
	final := p.at(token.FINAL)
	p.next() // final or let

	var typ *ast.TypeSpec
	if p.peekIsTypeThenIdent() {
		typ = p.parseType()
	}

	var bindings []*ast.Binding
	for {
		bpos := p.pos()
		name := p.expect(token.IDENT).Literal
		var init ast.Expr
		if p.accept(token.ASSIGN) {
			init = p.ParseExpression()
		}
		bindings = append(bindings, &ast.Binding{Pos: bpos, Name: name, Init: init})
		if !p.accept(token.COMMA) {
			break
		}
	}
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after variable declaration")
	}
	return &ast.VarDecl{Pos: pos, Final: final, Type: typ, Bindings: bindings}
}

func (p *Parser) parseOptionalParens() bool {
	return p.accept(token.LPAREN)
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	pos := p.pos()
	p.expect(token.IF)
	hasParen := p.parseOptionalParens()
	cond := p.ParseExpression()
	if hasParen {
		p.expect(token.RPAREN)
	}
	then := p.parseBlock()

	var elseBlock *ast.Block
	if p.accept(token.ELSE) {
		if p.at(token.IF) {
			nested := p.parseIfStatement()
			elseBlock = &ast.Block{Pos: nested.Pos, Statements: []ast.Stmt{nested}}
		} else {
			elseBlock = p.parseBlock()
		}
	}
	return &ast.IfStatement{Pos: pos, Cond: cond, Then: then, Else: elseBlock}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	pos := p.pos()
	p.expect(token.WHILE)
	hasParen := p.parseOptionalParens()
	cond := p.ParseExpression()
	if hasParen {
		p.expect(token.RPAREN)
	}
	body := p.parseBlock()
	return &ast.WhileStatement{Pos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	pos := p.pos()
	p.expect(token.RETURN)
	var value ast.Expr
	if !p.at(token.SEMI) {
		value = p.ParseExpression()
	}
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after return statement")
	}
	return &ast.ReturnStatement{Pos: pos, Value: value}
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	pos := p.pos()
	expr := p.ParseExpression()
	if !p.accept(token.SEMI) {
		p.errorf("expected ';' after expression statement")
	}
	return &ast.ExpressionStatement{Pos: pos, Expr: expr}
}

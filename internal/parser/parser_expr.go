package parser

import (
	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/token"
)

// ParseExpression parses a full expression starting at the assignment
// precedence level of the full precedence ladder.
func (p *Parser) ParseExpression() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment is right-associative and restricted to a bare
// identifier target: member assignment is syntactically rejected here
// by construction, not detected and diagnosed later.
func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseLogicalOr()
	if p.at(token.ASSIGN) {
		pos := p.pos()
		p.next()
		value := p.parseAssignment()
		ident, ok := left.(*ast.Identifier)
		if !ok {
			p.errorf("assignment target must be a bare identifier")
			return left
		}
		return &ast.AssignmentExpr{Pos: pos, Target: ident, Value: value}
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAnd()
	for p.at(token.OR) {
		pos := p.pos()
		p.next()
		right := p.parseLogicalAnd()
		left = &ast.BinaryExpr{Pos: pos, Op: "||", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(token.AND) {
		pos := p.pos()
		p.next()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Pos: pos, Op: "&&", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.at(token.EQ) || p.at(token.NEQ) {
		pos := p.pos()
		op := binaryOpSymbols[p.cur.Kind]
		p.next()
		right := p.parseRelational()
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// parseRelational also consumes `is T` and zero-or-more left-associative
// `as T` casts at this precedence level.
func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.at(token.LT) || p.at(token.GT) || p.at(token.LE) || p.at(token.GE) {
		pos := p.pos()
		op := binaryOpSymbols[p.cur.Kind]
		p.next()
		right := p.parseAdditive()
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	for {
		if p.at(token.IS) {
			pos := p.pos()
			p.next()
			target := p.parseType()
			left = &ast.TypeTestExpr{Pos: pos, Value: left, Target: target}
			continue
		}
		if p.at(token.AS) {
			pos := p.pos()
			p.next()
			target := p.parseType()
			left = &ast.CastExpr{Pos: pos, Value: left, Target: target}
			continue
		}
		break
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		pos := p.pos()
		op := binaryOpSymbols[p.cur.Kind]
		p.next()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		pos := p.pos()
		op := binaryOpSymbols[p.cur.Kind]
		p.next()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

// parseUnary handles the `-`/`!` prefix operators. There is no prefix
// `(T) expr` cast form: a `(` at the start of a unary expression is
// always parsed by parsePrimary as a parenthesised expression or tuple,
// and casts are written with a trailing `as T`.
func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.MINUS) || p.at(token.NOT) {
		pos := p.pos()
		op := p.cur.Literal
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Pos: pos, Op: op, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			pos := p.pos()
			p.next()
			isProc := p.at(token.PROC_IDENT)
			var member string
			if isProc {
				member = p.cur.Literal
				p.next()
			} else {
				member = p.expect(token.IDENT).Literal
			}
			expr = &ast.MemberAccessExpr{Pos: pos, Receiver: expr, Member: member, IsProc: isProc}
		case token.LBRACKET:
			pos := p.pos()
			p.next()
			index := p.ParseExpression()
			p.expect(token.RBRACKET)
			expr = &ast.ArrayIndexExpr{Pos: pos, Array: expr, Index: index}
		case token.LPAREN:
			pos := p.pos()
			args := p.parseArgs()
			expr = &ast.CallExpr{Pos: pos, Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.ParseExpression())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.pos()
	switch p.cur.Kind {
	case token.TRUE, token.FALSE:
		v := p.cur.BoolValue
		p.next()
		return &ast.Literal{Pos: pos, Kind: ast.BoolLiteral, BoolValue: v}
	case token.INT_LITERAL:
		v := p.cur.IntValue
		p.next()
		return &ast.Literal{Pos: pos, Kind: ast.IntLiteral, IntValue: v}
	case token.FLOAT_LITERAL:
		v := p.cur.FloatValue
		p.next()
		return &ast.Literal{Pos: pos, Kind: ast.FloatLiteral, FloatValue: v}
	case token.STRING_LITERAL:
		v := p.cur.StringValue
		p.next()
		return &ast.Literal{Pos: pos, Kind: ast.StringLiteral, StringValue: v}
	case token.SELF:
		p.next()
		var expr ast.Expr = &ast.SelfExpr{Pos: pos}
		if p.accept(token.DOT) {
			member := p.expect(token.IDENT).Literal
			expr = &ast.MemberAccessExpr{Pos: pos, Receiver: expr, Member: member}
		}
		return expr
	case token.NEW:
		p.next()
		elem := p.parseType()
		p.expect(token.LBRACKET)
		size := p.ParseExpression()
		p.expect(token.RBRACKET)
		return &ast.ArrayAllocExpr{Pos: pos, ElemType: elem, Size: size}
	case token.LBRACKET:
		p.next()
		var elems []ast.Expr
		for !p.at(token.RBRACKET) && !p.at(token.EOF) {
			elems = append(elems, p.ParseExpression())
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACKET)
		return &ast.ArrayLiteralExpr{Pos: pos, Elements: elems}
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		if p.at(token.LPAREN) {
			args := p.parseArgs()
			return &ast.CallExpr{Pos: pos, Callee: &ast.Identifier{Pos: pos, Name: name}, Args: args}
		}
		return &ast.Identifier{Pos: pos, Name: name}
	case token.PROC_IDENT:
		name := p.cur.Literal
		p.next()
		if p.at(token.LPAREN) {
			args := p.parseArgs()
			return &ast.CallExpr{Pos: pos, Callee: &ast.Identifier{Pos: pos, Name: name}, Args: args}
		}
		return &ast.Identifier{Pos: pos, Name: name}
	case token.AT:
		return p.parseLambda()
	case token.LPAREN:
		return p.parseParenOrTuple()
	}

	p.errorf("unexpected token in expression: %s", p.cur.Kind)
	p.next()
	return &ast.Literal{Pos: pos, Kind: ast.IntLiteral, IntValue: 0}
}

func (p *Parser) parseLambda() ast.Expr {
	pos := p.pos()
	p.expect(token.AT)
	params := p.parseParams()

	if p.accept(token.ARROW) {
		body := p.ParseExpression()
		return &ast.LambdaExpr{Pos: pos, Params: params, BodyExpr: body}
	}
	body := p.parseBlock()
	return &ast.LambdaExpr{Pos: pos, Params: params, BodyBlock: body}
}

// parseParenOrTuple handles a parenthesised expression or a tuple
// literal; the cast-vs-paren ambiguity is resolved earlier at the
// relational level by always treating `as`/`is` suffixes uniformly, so
// here `(` always starts either a single parenthesised expression or a
// comma-separated tuple.
func (p *Parser) parseParenOrTuple() ast.Expr {
	pos := p.pos()
	p.expect(token.LPAREN)
	if p.at(token.RPAREN) {
		p.next()
		return &ast.TupleExpr{Pos: pos, Elements: nil}
	}
	first := p.ParseExpression()
	if p.accept(token.COMMA) {
		elems := []ast.Expr{first}
		for !p.at(token.RPAREN) && !p.at(token.EOF) {
			elems = append(elems, p.ParseExpression())
			if !p.accept(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.TupleExpr{Pos: pos, Elements: elems}
	}
	p.expect(token.RPAREN)
	return first
}

package parser

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ast"
)

func TestParseConstAndFunction(t *testing.T) {
	src := "const x = 42; fn add(u64 a, u64 b) u64 { return a + b; }"
	prog := ParseProgram([]byte(src))
	be.Equal(t, 2, len(prog.Declarations))

	c, ok := prog.Declarations[0].(*ast.ConstDecl)
	be.True(t, ok)
	be.Equal(t, "x", c.Name)

	fn, ok := prog.Declarations[1].(*ast.FunctionDecl)
	be.True(t, ok)
	be.Equal(t, "add", fn.Name)
	be.Equal(t, 2, len(fn.Params))
}

func TestParseClassWithOperatorAndConstructor(t *testing.T) {
	src := `class Point {
		final u64 x;
		final u64 y;
		constructor(u64 x, u64 y) { }
		op(+)(Point other) Point { return self; }
	}`
	prog := ParseProgram([]byte(src))
	be.True(t, !(prog.Errors != nil && len(prog.Errors) > 0))

	cls, ok := prog.Declarations[0].(*ast.ClassDecl)
	be.True(t, ok)
	be.Equal(t, "Point", cls.Name)
	be.Equal(t, 4, len(cls.Members))

	op, ok := cls.Members[3].(*ast.OperatorDecl)
	be.True(t, ok)
	be.Equal(t, "+", op.Symbol)
}

func TestParseIfWhileReturn(t *testing.T) {
	src := `fn t() u64 {
		if (true) { return 1; } else { return 2; }
		while (true) { return 0; }
		return 3;
	}`
	prog := ParseProgram([]byte(src))
	be.Equal(t, 1, len(prog.Declarations))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	be.Equal(t, 3, len(fn.Body.Statements))
	_, ok := fn.Body.Statements[0].(*ast.IfStatement)
	be.True(t, ok)
	_, ok = fn.Body.Statements[1].(*ast.WhileStatement)
	be.True(t, ok)
}

func TestParseCastChainAssociatesLeft(t *testing.T) {
	src := "fn t() u8 { return x as u16 as u8; }"
	prog := ParseProgram([]byte(src))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	outer, ok := ret.Value.(*ast.CastExpr)
	be.True(t, ok)
	be.Equal(t, "u8", outer.Target.Name)
	inner, ok := outer.Value.(*ast.CastExpr)
	be.True(t, ok)
	be.Equal(t, "u16", inner.Target.Name)
}

func TestParseLambdaZeroParams(t *testing.T) {
	src := "fn t() u64 { final f = @() => 1; return f(); }"
	prog := ParseProgram([]byte(src))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	lambda, ok := decl.Bindings[0].Init.(*ast.LambdaExpr)
	be.True(t, ok)
	be.Equal(t, 0, len(lambda.Params))
}

func TestParseEmptyArrayLiteral(t *testing.T) {
	src := "fn t() void { final x = []; }"
	prog := ParseProgram([]byte(src))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	lit, ok := decl.Bindings[0].Init.(*ast.ArrayLiteralExpr)
	be.True(t, ok)
	be.Equal(t, 0, len(lit.Elements))
}

func TestParseMissingSemicolonIsDiagnosed(t *testing.T) {
	src := "fn t() u64 { return 1 }"
	prog := ParseProgram([]byte(src))
	be.True(t, len(prog.Errors) > 0)
}

func TestParseAssignmentRestrictedToIdentifier(t *testing.T) {
	src := "fn t() void { self.x = 1; }"
	prog := ParseProgram([]byte(src))
	be.True(t, len(prog.Errors) > 0)
}

func TestParseGenericArrayType(t *testing.T) {
	src := "fn t(array<u64> xs) u64 { return xs[0]; }"
	prog := ParseProgram([]byte(src))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	be.Equal(t, ast.TypeGeneric, fn.Params[0].Type.Kind)
	be.Equal(t, "array", fn.Params[0].Type.GenericName)
}

func TestParseFieldWithClassTypeAndNoInitializer(t *testing.T) {
	src := `class Line {
		final Point start;
		constructor(Point start) { }
	}`
	prog := ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	cls := prog.Declarations[0].(*ast.ClassDecl)
	field, ok := cls.Members[0].(*ast.FieldDecl)
	be.True(t, ok)
	be.Equal(t, "start", field.Name)
	be.Equal(t, "Point", field.Type.Name)
}

func TestParseFieldWithGenericTypeAndNoInitializer(t *testing.T) {
	src := `class Path {
		final array<u64> points;
		constructor(array<u64> points) { }
	}`
	prog := ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	cls := prog.Declarations[0].(*ast.ClassDecl)
	field, ok := cls.Members[0].(*ast.FieldDecl)
	be.True(t, ok)
	be.Equal(t, "points", field.Name)
	be.Equal(t, ast.TypeGeneric, field.Type.Kind)
	be.Equal(t, "array", field.Type.GenericName)
}

func TestParseVarDeclWithClassTypeAndNoInitializer(t *testing.T) {
	src := `fn t() void { final Point p; }`
	prog := ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	be.Equal(t, "Point", decl.Type.Name)
	be.Equal(t, "p", decl.Bindings[0].Name)
}

func TestParseFunctionTypeSpec(t *testing.T) {
	src := "fn t((u64) => u64 f) u64 { return f(1); }"
	prog := ParseProgram([]byte(src))
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	be.Equal(t, ast.TypeFunc, fn.Params[0].Type.Kind)
	be.Equal(t, 1, len(fn.Params[0].Type.FuncParams))
}

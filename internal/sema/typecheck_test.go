package sema

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/types"
)

func checkSrc(t *testing.T, src string) (*ast.Program, *SymbolTable, *TypeChecker) {
	t.Helper()
	prog := parse(t, src)
	st := BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())
	tc := CheckProgram(prog, st)
	return prog, st, tc
}

func TestCheckProgramInfersLiteralWidening(t *testing.T) {
	prog, _, tc := checkSrc(t, "fn t() u8 { final u8 x = 1; return x; }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	lit := decl.Bindings[0].Init.(*ast.Literal)
	be.True(t, !tc.Errors.HasErrors())
	be.Equal(t, types.U8, tc.Types[lit])
}

func TestCheckProgramAllowsImplicitUpcastOnReturn(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() u64 { final u32 x = 1; return x; }")
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramRejectsNarrowingReturn(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() u8 { final u64 x = 1; return x; }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramRejectsSignedToUnsigned(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() u64 { final i64 x = 1; return x; }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramRejectsU64ToI64(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() i64 { final u64 x = 1; return x; }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramRejectsBareReturnFromNonVoid(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() u64 { return; }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramAllowsBareReturnFromVoid(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() void { return; }")
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramRejectsNonBoolIfCondition(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() void { if (1) { } }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramResolvesOperatorOverload(t *testing.T) {
	_, _, tc := checkSrc(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
		op(+)(Point other) Point { return self; }
	}
	fn t() void {
		final a = Point(1 as u64);
		final b = Point(2 as u64);
		final c = a + b;
	}`)
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramDiagnosesMissingOperatorOverload(t *testing.T) {
	_, _, tc := checkSrc(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
	}
	fn t() void {
		final a = Point(1 as u64);
		final b = Point(2 as u64);
		final c = a - b;
	}`)
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramDiagnosesClassWithNoConstructors(t *testing.T) {
	_, _, tc := checkSrc(t, `class Empty { final u64 x; }
	fn t() void { final e = Empty(1); }`)
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramDiagnosesArityMismatchConstructor(t *testing.T) {
	_, _, tc := checkSrc(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
	}
	fn t() void { final p = Point(1, 2); }`)
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramInfersLambdaFunctionType(t *testing.T) {
	prog, _, tc := checkSrc(t, "fn t() u64 { final f = @(u64 n) => n; return f(1 as u64); }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	lambda := decl.Bindings[0].Init.(*ast.LambdaExpr)
	lambdaType := tc.Types[lambda]
	be.True(t, lambdaType != nil)
	be.Equal(t, types.Function, lambdaType.Kind)
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramInfersArrayIndexElementType(t *testing.T) {
	prog, _, tc := checkSrc(t, "fn t(array<u64> xs) u64 { return xs[0]; }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	idx := ret.Value.(*ast.ArrayIndexExpr)
	be.Equal(t, types.U64, tc.Types[idx])
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramDiagnosesArrayLiteralElementMismatch(t *testing.T) {
	_, _, tc := checkSrc(t, "fn t() void { final xs = [1, true]; }")
	be.True(t, tc.Errors.HasErrors())
}

func TestCheckProgramInfersStringLiteralType(t *testing.T) {
	prog, _, tc := checkSrc(t, `const s: string = "hi";`)
	decl := prog.Declarations[0].(*ast.ConstDecl)
	lit := decl.Value.(*ast.Literal)
	be.True(t, !tc.Errors.HasErrors())
	be.Equal(t, types.String, tc.Types[lit])
}

func TestCheckProgramAllowsStringLiteralReturn(t *testing.T) {
	_, _, tc := checkSrc(t, `fn greeting() string { return "hi"; }`)
	be.True(t, !tc.Errors.HasErrors())
}

func TestCheckProgramAllowsStringLiteralCallArgument(t *testing.T) {
	_, _, tc := checkSrc(t, `fn greet(string name) void { }
	fn t() void { greet("hi"); }`)
	be.True(t, !tc.Errors.HasErrors())
}

package sema

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ast"
	"github.com/plasm-lang/plasm/internal/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog := parser.ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	return prog
}

func TestBuildSymbolTableResolvesParameterUse(t *testing.T) {
	prog := parse(t, "fn add(u64 a, u64 b) u64 { return a + b; }")
	st := BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())

	fn := prog.Declarations[0].(*ast.FunctionDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	bin := ret.Value.(*ast.BinaryExpr)
	left := bin.Left.(*ast.Identifier)

	sym := st.Refs[left]
	be.True(t, sym != nil)
	be.Equal(t, "a", sym.Name)
	be.Equal(t, SymParameter, sym.Kind)
}

func TestBuildSymbolTableDetectsUndefinedIdentifier(t *testing.T) {
	prog := parse(t, "fn t() u64 { return missing; }")
	st := BuildSymbolTable(prog)
	be.True(t, st.Errors.HasErrors())
}

func TestBuildSymbolTableDetectsDuplicateTopLevel(t *testing.T) {
	prog := parse(t, "const x = 1; const x = 2;")
	st := BuildSymbolTable(prog)
	be.True(t, st.Errors.HasErrors())
}

func TestBuildSymbolTableDetectsIllegalAssignmentTarget(t *testing.T) {
	prog := parse(t, "const x = 1; fn t() void { x = 2; }")
	st := BuildSymbolTable(prog)
	be.True(t, st.Errors.HasErrors())
}

func TestBuildSymbolTableAllowsShadowingInNestedScope(t *testing.T) {
	prog := parse(t, `fn t() u64 {
		final x = 1;
		if (true) {
			final x = 2;
			return x;
		}
		return x;
	}`)
	st := BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())
}

func TestBuildSymbolTableRegistersClassMembers(t *testing.T) {
	prog := parse(t, `class Point {
		final u64 x;
		final u64 y;
		constructor(u64 x, u64 y) { }
		op(+)(Point other) Point { return self; }
	}`)
	st := BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())

	info := st.Classes["Point"]
	be.True(t, info != nil)
	be.Equal(t, 2, len(info.Fields))
	be.Equal(t, 1, len(info.Constructors))
	_, hasPlus := info.Operators["+"]
	be.True(t, hasPlus)
}

func TestBuildSymbolTableDetectsUnknownClassInConstructorCall(t *testing.T) {
	prog := parse(t, "fn t() void { final p = Missing(1, 2); }")
	st := BuildSymbolTable(prog)
	be.True(t, st.Errors.HasErrors())
}

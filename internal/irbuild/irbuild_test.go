package irbuild

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ir"
	"github.com/plasm-lang/plasm/internal/parser"
	"github.com/plasm-lang/plasm/internal/sema"
)

func buildModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	prog := parser.ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	st := sema.BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())
	tc := sema.CheckProgram(prog, st)
	be.True(t, !tc.Errors.HasErrors())
	return BuildModule(prog, st, tc.Types)
}

func TestBuildModuleLowersConstToGlobal(t *testing.T) {
	m := buildModule(t, "const x = 42;")
	be.Equal(t, 1, len(m.Globals))
	be.Equal(t, "x", m.Globals[0].Name)
	be.True(t, m.Globals[0].Initializer != nil)
	be.Equal(t, int64(42), m.Globals[0].Initializer.ConstInt)
}

func TestBuildModuleLowersFunctionWithEntryBlock(t *testing.T) {
	m := buildModule(t, "fn add(u64 a, u64 b) u64 { return a + b; }")
	fn := m.FindFunction("add")
	be.True(t, fn != nil)
	be.Equal(t, 2, len(fn.Params))
	be.Equal(t, "entry", fn.Blocks[0].Label)
	be.Equal(t, ir.TermRet, fn.Blocks[0].Term.Kind)
}

func TestBuildModuleLowersIfIntoThenElseMerge(t *testing.T) {
	m := buildModule(t, `fn t() u64 {
		if (true) { return 1; } else { return 2; }
		return 0;
	}`)
	fn := m.FindFunction("t")
	var labels []string
	for _, b := range fn.Blocks {
		labels = append(labels, b.Label)
	}
	be.Equal(t, []string{"entry", "then", "else", "merge"}, labels)
	be.Equal(t, ir.TermCondBr, fn.Blocks[0].Term.Kind)
}

func TestBuildModuleLowersWhileIntoHeaderBodyExit(t *testing.T) {
	m := buildModule(t, `fn t() void {
		while (true) { }
	}`)
	fn := m.FindFunction("t")
	var labels []string
	for _, b := range fn.Blocks {
		labels = append(labels, b.Label)
	}
	be.Equal(t, []string{"entry", "while_header", "while_body", "while_exit"}, labels)
}

func TestBuildModuleLowersOperatorOverloadToMangledFunction(t *testing.T) {
	m := buildModule(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
		op(+)(Point other) Point { return self; }
	}`)
	fn := m.FindFunction("Point_op_add")
	be.True(t, fn != nil)
	be.Equal(t, 2, len(fn.Params))
	be.Equal(t, "self", fn.Params[0].Name)
}

func TestBuildModuleLowersConstructorToNumberedFunction(t *testing.T) {
	m := buildModule(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
	}`)
	fn := m.FindFunction("Point_constructor_0")
	be.True(t, fn != nil)
}

func TestBuildModuleDispatchesOperatorCallToMangledFunction(t *testing.T) {
	m := buildModule(t, `class Point {
		final u64 x;
		constructor(u64 x) { }
		op(+)(Point other) Point { return self; }
	}
	fn t() void {
		final a = Point(1 as u64);
		final b = Point(2 as u64);
		final c = a + b;
	}`)
	fn := m.FindFunction("t")
	be.True(t, fn != nil)
	var sawOpCall bool
	for _, blk := range fn.Blocks {
		for _, ins := range blk.Instructions {
			if ins.Op == ir.OpCall && ins.CalleeName == "Point_op_add" {
				sawOpCall = true
			}
		}
	}
	be.True(t, sawOpCall)
}

func TestBuildModuleLiftsLambdaToTopLevelFunction(t *testing.T) {
	m := buildModule(t, "fn t() u64 { final f = @(u64 n) => n; return f(1 as u64); }")
	var sawLambda bool
	for _, fn := range m.Functions {
		if fn.Name == "__lambda_0" {
			sawLambda = true
		}
	}
	be.True(t, sawLambda)
}

func TestBuildModuleLowersArrayAllocIndexAndLiteral(t *testing.T) {
	m := buildModule(t, `fn t() u64 {
		final xs = new u64[3];
		final ys = [1, 2, 3];
		return xs[0] + ys[1];
	}`)
	fn := m.FindFunction("t")
	var sawAlloc, sawLiteral, sawGet bool
	for _, blk := range fn.Blocks {
		for _, ins := range blk.Instructions {
			switch ins.Op {
			case ir.OpArrayNewDefault:
				sawAlloc = true
			case ir.OpArraySet:
				sawLiteral = true
			case ir.OpArrayGet:
				sawGet = true
			}
		}
	}
	be.True(t, sawAlloc)
	be.True(t, sawLiteral)
	be.True(t, sawGet)
}

func TestBuildModuleMarksUsesMemoryFalseWithoutLoadStoreAlloca(t *testing.T) {
	m := buildModule(t, "fn t() u64 { return 1; }")
	be.True(t, !m.UsesMemory())
}

func TestBuildModuleMarksUsesMemoryTrueWithUninitialisedVarDecl(t *testing.T) {
	m := buildModule(t, "fn t() u64 { final u64 x; return 1; }")
	be.True(t, m.UsesMemory())
}

func TestBuildModuleResolvesOverloadedConstructorByArgumentType(t *testing.T) {
	m := buildModule(t, `class Box {
		final f64 v;
		constructor(u64 v) { }
		constructor(f64 v) { }
	}
	fn t() void {
		final b = Box(1.5);
	}`)
	fn := m.FindFunction("t")
	be.True(t, fn != nil)
	var calleeName string
	for _, blk := range fn.Blocks {
		for _, ins := range blk.Instructions {
			if ins.Op == ir.OpCall {
				calleeName = ins.CalleeName
			}
		}
	}
	be.Equal(t, "Box_constructor_1", calleeName)
}

func TestBuildModuleLowersStringConstToStringTypedGlobal(t *testing.T) {
	m := buildModule(t, `const greeting: string = "hi";`)
	be.Equal(t, 1, len(m.Globals))
	g := m.Globals[0]
	be.True(t, g.Initializer != nil)
	be.Equal(t, "string", g.Type.Name)
	be.Equal(t, "string", g.Initializer.Type.Name)
	be.Equal(t, "hi", g.Initializer.ConstStr)
}

func TestBuildModuleLowersStringLiteralReturn(t *testing.T) {
	m := buildModule(t, `fn greeting() string { return "hi"; }`)
	fn := m.FindFunction("greeting")
	be.True(t, fn != nil)
	be.Equal(t, "string", fn.ReturnType.Name)
	be.Equal(t, ir.TermRet, fn.Blocks[0].Term.Kind)
	be.True(t, fn.Blocks[0].Term.Value != nil)
	be.Equal(t, "string", fn.Blocks[0].Term.Value.Type.Name)
}

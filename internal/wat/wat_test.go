package wat

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ir"
	"github.com/plasm-lang/plasm/internal/irbuild"
	"github.com/plasm-lang/plasm/internal/parser"
	"github.com/plasm-lang/plasm/internal/sema"
)

func compile(t *testing.T, src string) *ir.Module {
	t.Helper()
	prog := parser.ParseProgram([]byte(src))
	be.Equal(t, 0, len(prog.Errors))
	st := sema.BuildSymbolTable(prog)
	be.True(t, !st.Errors.HasErrors())
	tc := sema.CheckProgram(prog, st)
	be.True(t, !tc.Errors.HasErrors())
	return irbuild.BuildModule(prog, st, tc.Types)
}

func TestTextEmitsFunctionWithParamsAndResult(t *testing.T) {
	m := compile(t, "fn add(u64 a, u64 b) u64 { return a + b; }")
	text := Text(m)
	be.True(t, strings.Contains(text, "(func $add"))
	be.True(t, strings.Contains(text, "(param $a i64)"))
	be.True(t, strings.Contains(text, "(result i64)"))
	be.True(t, strings.Contains(text, "i64.add"))
}

func TestTextSpillsComputedReturnValueToDeclaredLocal(t *testing.T) {
	m := compile(t, "fn add(u64 a, u64 b) u64 { return a + b; }")
	text := Text(m)
	be.True(t, !strings.Contains(text, "local.get %"))
	be.True(t, strings.Contains(text, "(local $t"))
	be.True(t, strings.Contains(text, "local.set $t"))
	be.True(t, strings.Contains(text, "local.get $t"))
}

func TestTextLowersIntegerNegationWithoutNegOpcode(t *testing.T) {
	m := compile(t, "fn t(i64 a) i64 { return -a; }")
	text := Text(m)
	be.True(t, !strings.Contains(text, "i64.neg"))
	be.True(t, strings.Contains(text, "i64.const 0"))
	be.True(t, strings.Contains(text, "i64.sub"))
}

func TestTextLowersLogicalNotToEqz(t *testing.T) {
	m := compile(t, "fn t(bool b) bool { return !b; }")
	text := Text(m)
	be.True(t, strings.Contains(text, "i32.eqz"))
}

func TestTextLowersNarrowingCastToWrap(t *testing.T) {
	m := compile(t, "fn t() u8 { final u64 x = 100; return x as u8; }")
	text := Text(m)
	be.True(t, strings.Contains(text, "i32.wrap_i64"))
}

func TestTextEmitsIfElseEnd(t *testing.T) {
	m := compile(t, `fn t() u64 {
		if (true) { return 1; } else { return 2; }
	}`)
	text := Text(m)
	be.True(t, strings.Contains(text, "if\n"))
	be.True(t, strings.Contains(text, "else\n"))
	be.True(t, strings.Contains(text, "end\n"))
}

func TestTextOmitsMemorySectionWithoutLoadStoreAlloca(t *testing.T) {
	m := compile(t, "fn t() u64 { return 1; }")
	text := Text(m)
	be.True(t, !strings.Contains(text, "(memory 1)"))
}

func TestTextEmitsMemorySectionWithAlloca(t *testing.T) {
	m := compile(t, "fn t() u64 { final u64 x; return 1; }")
	text := Text(m)
	be.True(t, strings.Contains(text, "(memory 1)"))
}

func TestTextEmitsGlobalForConst(t *testing.T) {
	m := compile(t, "const x = 42;")
	text := Text(m)
	be.True(t, strings.Contains(text, "(global $x"))
	be.True(t, strings.Contains(text, "i64.const 42"))
}

func TestTextEmitsExportForMainFunction(t *testing.T) {
	m := compile(t, "proc $main() void { return; }")
	text := Text(m)
	be.True(t, strings.Contains(text, "export \"_start\""))
}

func TestTextEmitsStringConstForStringLiteral(t *testing.T) {
	m := compile(t, `fn greeting() string { return "hi"; }`)
	text := Text(m)
	be.True(t, strings.Contains(text, "(result (ref null string))"))
	be.True(t, strings.Contains(text, `(string.const "hi")`))
}

func TestTextEmitsStructTypeForClass(t *testing.T) {
	m := compile(t, `class Point {
		final u64 x;
		let u64 y;
		constructor(u64 x, u64 y) { }
	}`)
	text := Text(m)
	be.True(t, strings.Contains(text, "(type $Point (struct"))
	be.True(t, strings.Contains(text, "(field $x (i64))"))
	be.True(t, strings.Contains(text, "(field $y (mut i64))"))
}

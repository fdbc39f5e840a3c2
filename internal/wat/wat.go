// Package wat renders an ir.Module as WebAssembly text format: the type,
// memory, global and function sections, with structured control-flow
// reconstruction from the IR's basic-block terminators.
package wat

import (
	"fmt"
	"strings"

	"github.com/plasm-lang/plasm/internal/ir"
)

// Text renders m as a single `(module ...)` S-expression.
func Text(m *ir.Module) string {
	var b strings.Builder
	b.WriteString("(module\n")

	for _, td := range m.Types {
		b.WriteString(typeDefText(td))
	}
	if m.UsesMemory() {
		b.WriteString("  (memory 1)\n")
		b.WriteString("  (export \"memory\" (memory 0))\n")
	}
	for _, g := range m.Globals {
		b.WriteString(globalText(g))
	}
	for _, fn := range m.Functions {
		b.WriteString(functionText(fn))
	}

	b.WriteString(")\n")
	return b.String()
}

func typeDefText(td *ir.TypeDef) string {
	var b strings.Builder
	if td.Elem != nil {
		fmt.Fprintf(&b, "  (type $%s (array (mut %s)))\n", td.Name, valType(td.Elem))
		return b.String()
	}
	fmt.Fprintf(&b, "  (type $%s (struct", td.Name)
	for _, f := range td.Fields {
		mut := ""
		if f.Mut {
			mut = "mut "
		}
		fmt.Fprintf(&b, " (field $%s (%s%s))", f.Name, mut, valType(f.Type))
	}
	b.WriteString("))\n")
	return b.String()
}

func globalText(g *ir.Global) string {
	mut := valType(g.Type)
	if !g.IsConstant {
		mut = "(mut " + mut + ")"
	}
	init := zeroValue(g.Type)
	if g.Initializer != nil {
		init = constText(g.Initializer)
	}
	return fmt.Sprintf("  (global $%s %s %s)\n", g.Name, mut, init)
}

func functionText(fn *ir.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  (func $%s", fn.Name)
	if strings.HasPrefix(fn.Name, "$main") {
		b.WriteString(" (export \"_start\")")
	}
	for _, p := range fn.Params {
		fmt.Fprintf(&b, " (param $%s %s)", p.Name, valType(p.Type))
	}
	if fn.ReturnType != nil && fn.ReturnType.Kind != ir.TVoid {
		fmt.Fprintf(&b, " (result %s)", valType(fn.ReturnType))
	}
	b.WriteString("\n")

	if !fn.IsExternal {
		g := &funcGen{fn: fn, out: &b}
		for _, l := range g.collectLocals() {
			fmt.Fprintf(&b, "    (local $%s %s)\n", l.name, l.typ)
		}
		if len(fn.Blocks) > 0 {
			g.emitFrom(fn.Blocks[0].ID)
		}
	}

	b.WriteString("  )\n")
	return b.String()
}

// funcGen walks a function's blocks starting from index 0, tracking
// which blocks have already been emitted so an unconditional `br` can
// fall into the next unvisited block without re-emitting anything.
type funcGen struct {
	fn      *ir.Function
	out     *strings.Builder
	visited map[int]bool
}

type localDecl struct {
	name string
	typ  string
}

// collectLocals walks every instruction in fn and assigns a synthetic
// name (t<id>) to any result value that source lowering left unnamed,
// so it can be spilled to a declared local instead of assumed to sit
// on the operand stack across instruction boundaries. Named results
// (parameters, alloca'd source variables, globals, constants) keep
// their existing identity; alloca'd variables are still collected here
// since they need a `(local ...)` declaration even though they carry
// no computed value themselves.
func (g *funcGen) collectLocals() []localDecl {
	var locals []localDecl
	seen := make(map[string]bool)
	for _, blk := range g.fn.Blocks {
		for _, ins := range blk.Instructions {
			if ins.Op == ir.OpConst || ins.Result == nil {
				continue
			}
			r := ins.Result
			if r.IsParam || r.IsGlobal || r.IsConstant {
				continue
			}
			if r.Name == "" {
				r.Name = fmt.Sprintf("t%d", r.ID)
			}
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			locals = append(locals, localDecl{name: r.Name, typ: valType(r.Type)})
		}
	}
	return locals
}

func (g *funcGen) emitFrom(blockID int) {
	if g.visited == nil {
		g.visited = make(map[int]bool)
	}
	blk := g.fn.Block(blockID)
	for blk != nil && !g.visited[blk.ID] {
		g.visited[blk.ID] = true
		g.emitInstructions(blk)
		switch blk.Term.Kind {
		case ir.TermRet:
			if blk.Term.Value != nil {
				g.emitPush(blk.Term.Value)
			}
			g.out.WriteString("    return\n")
			return
		case ir.TermBr:
			blk = blk.Term.Target
			continue
		case ir.TermCondBr:
			g.emitPush(blk.Term.Cond)
			g.out.WriteString("    if\n")
			if blk.Term.Then != nil {
				g.emitFrom(blk.Term.Then.ID)
			}
			if blk.Term.Else != nil {
				g.out.WriteString("    else\n")
				g.emitFrom(blk.Term.Else.ID)
			}
			g.out.WriteString("    end\n")
			return
		default:
			return
		}
	}
}

func (g *funcGen) emitInstructions(blk *ir.Block) {
	for _, ins := range blk.Instructions {
		g.emitInstruction(ins)
	}
}

// emitPush pushes v's value: local.get/global.get for named values, or
// an inline `(<t>.const v)` for constants. Every non-constant,
// non-global value reaching here is guaranteed by collectLocals to
// carry a name, whether it is a parameter, a source-level variable, or
// a computed result spilled to a local by emitInstruction.
func (g *funcGen) emitPush(v *ir.Value) {
	if v == nil {
		return
	}
	switch {
	case v.IsConstant:
		fmt.Fprintf(g.out, "    %s\n", constText(v))
	case v.IsGlobal:
		fmt.Fprintf(g.out, "    global.get $%s\n", v.Name)
	default:
		fmt.Fprintf(g.out, "    local.get $%s\n", v.Name)
	}
}

// spillResult stores an instruction's freshly computed value, still on
// top of the operand stack, into its declared local so later uses
// reference it by name instead of assuming it stays on the stack.
func (g *funcGen) spillResult(ins *ir.Instruction) {
	if ins.Result == nil {
		return
	}
	fmt.Fprintf(g.out, "    local.set $%s\n", ins.Result.Name)
}

// emitInstruction emits one instruction's operand pushes and opcode,
// then immediately spills any result it produced into its declared
// local (see collectLocals). A result is never left sitting on the
// operand stack for a later use site to assume is still there: every
// use instead re-fetches it with local.get, so a value consumed by
// more than one later instruction, or carried across a block
// boundary, still lowers correctly.
func (g *funcGen) emitInstruction(ins *ir.Instruction) {
	switch ins.Op {
	case ir.OpConst:
		return // constants are pushed inline at use sites, not pre-materialised
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpGt, ir.OpLte, ir.OpGte, ir.OpAnd, ir.OpOr:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		fmt.Fprintf(g.out, "    %s\n", numericOpText(ins))
		g.spillResult(ins)
	case ir.OpNeg:
		t := valType(ins.Result.Type)
		if strings.HasPrefix(t, "f") {
			g.emitPush(ins.Operands[0])
			fmt.Fprintf(g.out, "    %s.neg\n", t)
		} else {
			// WASM has no integer negate opcode; 0 - x.
			fmt.Fprintf(g.out, "    %s.const 0\n", t)
			g.emitPush(ins.Operands[0])
			fmt.Fprintf(g.out, "    %s.sub\n", t)
		}
		g.spillResult(ins)
	case ir.OpNot:
		// bool is represented as i32 0/1; eqz is the single-instruction
		// logical not of that representation.
		g.emitPush(ins.Operands[0])
		g.out.WriteString("    i32.eqz\n")
		g.spillResult(ins)
	case ir.OpCall:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		fmt.Fprintf(g.out, "    call $%s\n", ins.CalleeName)
		g.spillResult(ins)
	case ir.OpCallIndirect:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		g.out.WriteString("    call_indirect\n")
		g.spillResult(ins)
	case ir.OpLoad:
		g.emitPush(ins.Operands[0])
		fmt.Fprintf(g.out, "    %s.load\n", valType(ins.Result.Type))
		g.spillResult(ins)
	case ir.OpStore:
		g.emitPush(ins.Operands[0])
		fmt.Fprintf(g.out, "    local.set $%s\n", ins.Operands[1].Name)
	case ir.OpAlloca:
		return // declared up front by collectLocals; zero-initialised by WASM
	case ir.OpCast:
		g.emitPush(ins.Operands[0])
		fmt.Fprintf(g.out, "    %s\n", castOpText(ins.Operands[0].Type, ins.CalleeType))
		g.spillResult(ins)
	case ir.OpFuncRef:
		fmt.Fprintf(g.out, "    ref.func $%s\n", ins.CalleeName)
		g.spillResult(ins)
	case ir.OpStructNew:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		fmt.Fprintf(g.out, "    struct.new $%s\n", ins.ClassName)
		g.spillResult(ins)
	case ir.OpStructGet:
		g.emitPush(ins.Operands[0])
		fmt.Fprintf(g.out, "    struct.get $%s $%s\n", ins.ClassName, ins.FieldName)
		g.spillResult(ins)
	case ir.OpStructSet:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		fmt.Fprintf(g.out, "    struct.set $%s $%s\n", ins.ClassName, ins.FieldName)
	case ir.OpArrayNewDefault:
		g.emitPush(ins.Operands[0])
		fmt.Fprintf(g.out, "    array.new_default $%s\n", valType(ins.CalleeType))
		g.spillResult(ins)
	case ir.OpArrayGet:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		g.out.WriteString("    array.get\n")
		g.spillResult(ins)
	case ir.OpArraySet:
		for _, op := range ins.Operands {
			g.emitPush(op)
		}
		g.out.WriteString("    array.set\n")
	case ir.OpArrayLen:
		g.emitPush(ins.Operands[0])
		g.out.WriteString("    array.len\n")
		g.spillResult(ins)
	case ir.OpRefNull:
		fmt.Fprintf(g.out, "    ref.null $%s\n", ins.ClassName)
		g.spillResult(ins)
	case ir.OpRefIsNull:
		g.emitPush(ins.Operands[0])
		g.out.WriteString("    ref.is_null\n")
		g.spillResult(ins)
	}
}

// numericOpText prefixes an arithmetic/comparison opcode with the value
// type of its first operand (logical and/or are always i32); signed
// forms are used for integer div/rem/relational.
func numericOpText(ins *ir.Instruction) string {
	t := "i32"
	if ins.Operands[0].Type != nil {
		t = valType(ins.Operands[0].Type)
	}
	switch ins.Op {
	case ir.OpAdd:
		return t + ".add"
	case ir.OpSub:
		return t + ".sub"
	case ir.OpMul:
		return t + ".mul"
	case ir.OpDiv:
		if strings.HasPrefix(t, "f") {
			return t + ".div"
		}
		return t + ".div_s"
	case ir.OpMod:
		return t + ".rem_s"
	case ir.OpEq:
		return t + ".eq"
	case ir.OpNeq:
		return t + ".ne"
	case ir.OpLt:
		if strings.HasPrefix(t, "f") {
			return t + ".lt"
		}
		return t + ".lt_s"
	case ir.OpGt:
		if strings.HasPrefix(t, "f") {
			return t + ".gt"
		}
		return t + ".gt_s"
	case ir.OpLte:
		if strings.HasPrefix(t, "f") {
			return t + ".le"
		}
		return t + ".le_s"
	case ir.OpGte:
		if strings.HasPrefix(t, "f") {
			return t + ".ge"
		}
		return t + ".ge_s"
	case ir.OpAnd:
		return "i32.and"
	case ir.OpOr:
		return "i32.or"
	}
	return t + ".unknown"
}

// castOpText picks the WASM conversion opcode for an explicit `as`
// cast between src and dst. Same-width integer casts (the only kind
// this language's own numeric ops distinguish, since u8/i8/u16/... all
// share the i32 representation) need no instruction and fall back to
// `nop`; the rest use the standard wrap/extend/convert/trunc/promote
// family. Integer extends and int-to-float converts take the signed or
// unsigned form from the operand's signedness; float-to-int truncs take
// it from the target's.
func castOpText(src, dst *ir.Type) string {
	srcW, dstW := valType(src), valType(dst)
	srcSigned := src == nil || !strings.HasPrefix(src.Name, "u")
	dstSigned := dst == nil || !strings.HasPrefix(dst.Name, "u")

	isFloat := func(w string) bool { return w == "f32" || w == "f64" }

	switch {
	case srcW == dstW:
		return "nop"
	case !isFloat(srcW) && !isFloat(dstW):
		if srcW == "i64" && dstW == "i32" {
			return "i32.wrap_i64"
		}
		if srcSigned {
			return "i64.extend_i32_s"
		}
		return "i64.extend_i32_u"
	case isFloat(srcW) && isFloat(dstW):
		if srcW == "f32" {
			return "f64.promote_f32"
		}
		return "f32.demote_f64"
	case isFloat(srcW) && !isFloat(dstW):
		suffix := "_s"
		if !dstSigned {
			suffix = "_u"
		}
		return dstW + ".trunc_" + srcW + suffix
	default: // int -> float
		suffix := "_s"
		if !srcSigned {
			suffix = "_u"
		}
		return dstW + ".convert_" + srcW + suffix
	}
}

func constText(v *ir.Value) string {
	t := valType(v.Type)
	switch {
	case v.Type != nil && v.Type.Kind == ir.TPrimitive && v.Type.Name == "bool":
		if v.ConstBool {
			return "(i32.const 1)"
		}
		return "(i32.const 0)"
	case v.Type != nil && v.Type.Kind == ir.TPrimitive && v.Type.Name == "string":
		return fmt.Sprintf("(string.const %q)", v.ConstStr)
	case v.Type != nil && (v.Type.Name == "f32" || v.Type.Name == "f64"):
		return fmt.Sprintf("(%s.const %v)", t, v.ConstFloat)
	default:
		return fmt.Sprintf("(%s.const %d)", t, v.ConstInt)
	}
}

func zeroValue(t *ir.Type) string {
	if t != nil && t.Kind == ir.TPrimitive && t.Name == "string" {
		return "(ref.null string)"
	}
	switch valType(t) {
	case "i32":
		return "(i32.const 0)"
	case "i64":
		return "(i64.const 0)"
	case "f32":
		return "(f32.const 0)"
	case "f64":
		return "(f64.const 0)"
	default:
		return "(ref.null $" + t.Name + ")"
	}
}

// valType maps an IR type to its WASM value type text: integral types
// of width <= 32 emit as i32, 64-bit integrals as i64, bool as i32,
// f32/f64 unchanged. string is the GC proposal's built-in stringref
// heap type, not a user-defined type, so it renders without a `$name`
// reference. Class types render as nullable references to their struct
// type; every array type renders as `(ref null $array)`, whatever its
// element type, and no per-array type definition is emitted.
func valType(t *ir.Type) string {
	if t == nil {
		return "i32"
	}
	switch t.Kind {
	case ir.TPrimitive:
		switch t.Name {
		case "u8", "u16", "u32", "i8", "i16", "i32", "bool":
			return "i32"
		case "u64", "i64":
			return "i64"
		case "f32":
			return "f32"
		case "f64":
			return "f64"
		case "string":
			return "(ref null string)"
		}
		return "i32"
	case ir.TClass:
		return "(ref null $" + t.Name + ")"
	case ir.TArray:
		return "(ref null $array)"
	case ir.TFuncRef:
		return "funcref"
	case ir.TVoid:
		return "i32"
	}
	return "i32"
}

package pass

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/plasm-lang/plasm/internal/ir"
)

func TestConstFoldReducesAddOfConstants(t *testing.T) {
	left := &ir.Value{Type: ir.Primitive("i64"), IsConstant: true, ConstInt: 2}
	right := &ir.Value{Type: ir.Primitive("i64"), IsConstant: true, ConstInt: 3}
	result := &ir.Value{Type: ir.Primitive("i64")}
	ins := &ir.Instruction{Op: ir.OpAdd, Operands: []*ir.Value{left, right}, Result: result}
	blk := &ir.Block{ID: 0, Instructions: []*ir.Instruction{ins}}
	fn := &ir.Function{Name: "t", Blocks: []*ir.Block{blk}}
	m := &ir.Module{Functions: []*ir.Function{fn}}

	changed := (&ConstFold{}).Run(m)
	be.True(t, changed)
	be.Equal(t, ir.OpConst, ins.Op)
	be.Equal(t, int64(5), result.ConstInt)
}

func TestConstFoldLeavesNonConstantOperandsAlone(t *testing.T) {
	left := &ir.Value{Type: ir.Primitive("i64"), IsConstant: true, ConstInt: 2}
	right := &ir.Value{Type: ir.Primitive("i64"), Name: "n"}
	ins := &ir.Instruction{Op: ir.OpAdd, Operands: []*ir.Value{left, right}, Result: &ir.Value{Type: ir.Primitive("i64")}}
	blk := &ir.Block{ID: 0, Instructions: []*ir.Instruction{ins}}
	fn := &ir.Function{Name: "t", Blocks: []*ir.Block{blk}}
	m := &ir.Module{Functions: []*ir.Function{fn}}

	changed := (&ConstFold{}).Run(m)
	be.True(t, !changed)
	be.Equal(t, ir.OpAdd, ins.Op)
}

func TestDeadCodeDropsUnreachableBlock(t *testing.T) {
	entry := &ir.Block{ID: 0, Term: ir.Terminator{Kind: ir.TermRet}}
	unreachable := &ir.Block{ID: 1}
	fn := &ir.Function{Name: "t", Blocks: []*ir.Block{entry, unreachable}}
	m := &ir.Module{Functions: []*ir.Function{fn}}

	changed := (&DeadCode{}).Run(m)
	be.True(t, changed)
	be.Equal(t, 1, len(fn.Blocks))
	be.Equal(t, 0, fn.Blocks[0].ID)
}

func TestDefaultPipelineRunsBundledPasses(t *testing.T) {
	p := DefaultPipeline()
	be.Equal(t, 2, len(p.Passes))
	be.Equal(t, "deadcode", p.Passes[0].Name())
	be.Equal(t, "constfold", p.Passes[1].Name())
}

func TestWalkVisitsEveryLevel(t *testing.T) {
	val := &ir.Value{Type: ir.Primitive("i64"), IsConstant: true, ConstInt: 1}
	ins := &ir.Instruction{Op: ir.OpConst, Result: val}
	blk := &ir.Block{ID: 0, Instructions: []*ir.Instruction{ins}}
	fn := &ir.Function{Name: "t", Blocks: []*ir.Block{blk}}
	m := &ir.Module{Functions: []*ir.Function{fn}}

	var modules, fns, blocks, instrs, values int
	Walk(m, Visitor{
		Module:      func(*ir.Module) { modules++ },
		Function:    func(*ir.Function) { fns++ },
		Block:       func(*ir.Block) { blocks++ },
		Instruction: func(*ir.Instruction) { instrs++ },
		Value:       func(*ir.Value) { values++ },
	})
	be.Equal(t, 1, modules)
	be.Equal(t, 1, fns)
	be.Equal(t, 1, blocks)
	be.Equal(t, 1, instrs)
	be.Equal(t, 1, values)
}

package pass

import "github.com/plasm-lang/plasm/internal/ir"

// ConstFold folds binary instructions whose operands are both constant
// integers into a single constant, rewriting every later use of the
// instruction's result. It is conservative: floats, class operator
// dispatch and anything but the four basic integer arithmetic opcodes
// are left untouched.
type ConstFold struct{}

func (*ConstFold) Name() string { return "constfold" }

func (*ConstFold) Run(m *ir.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		for _, b := range fn.Blocks {
			for _, ins := range b.Instructions {
				if folded := foldConstInt(ins); folded != nil {
					ins.Result.IsConstant = true
					ins.Result.ConstInt = folded.ConstInt
					ins.Op = ir.OpConst
					ins.Operands = nil
					changed = true
				}
			}
		}
	}
	return changed
}

func foldConstInt(ins *ir.Instruction) *ir.Value {
	if len(ins.Operands) != 2 {
		return nil
	}
	l, r := ins.Operands[0], ins.Operands[1]
	if !l.IsConstant || !r.IsConstant {
		return nil
	}
	if l.Type == nil || l.Type.Kind != ir.TPrimitive || l.Type.Name == "f32" || l.Type.Name == "f64" {
		return nil
	}
	var v int64
	switch ins.Op {
	case ir.OpAdd:
		v = l.ConstInt + r.ConstInt
	case ir.OpSub:
		v = l.ConstInt - r.ConstInt
	case ir.OpMul:
		v = l.ConstInt * r.ConstInt
	case ir.OpDiv:
		if r.ConstInt == 0 {
			return nil
		}
		v = l.ConstInt / r.ConstInt
	default:
		return nil
	}
	return &ir.Value{Type: l.Type, IsConstant: true, ConstInt: v}
}

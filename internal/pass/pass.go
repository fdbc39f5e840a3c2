// Package pass defines the optimisation-pass contract run over a lowered
// ir.Module between IR building and WAT emission, plus a pre-order
// visitor over the module/function/block/instruction/value graph and two
// bundled passes (unreachable-block removal and integer constant
// folding).
package pass

import "github.com/plasm-lang/plasm/internal/ir"

// Pass is one module-level transformation. Run reports whether it
// modified the module, so a pipeline can iterate passes to a fixed
// point if it chooses to.
type Pass interface {
	Name() string
	Run(m *ir.Module) bool
}

// Visitor receives pre-order callbacks while Walk traverses a module.
// Any field left nil is skipped.
type Visitor struct {
	Module      func(*ir.Module)
	Function    func(*ir.Function)
	Block       func(*ir.Block)
	Instruction func(*ir.Instruction)
	Value       func(*ir.Value)
}

// Walk visits m, then every function, block, instruction and the values
// each instruction operates on, in that pre-order.
func Walk(m *ir.Module, v Visitor) {
	if v.Module != nil {
		v.Module(m)
	}
	for _, fn := range m.Functions {
		if v.Function != nil {
			v.Function(fn)
		}
		for _, blk := range fn.Blocks {
			if v.Block != nil {
				v.Block(blk)
			}
			for _, ins := range blk.Instructions {
				if v.Instruction != nil {
					v.Instruction(ins)
				}
				if v.Value != nil {
					for _, op := range ins.Operands {
						v.Value(op)
					}
					if ins.Result != nil {
						v.Value(ins.Result)
					}
				}
			}
		}
	}
}

// Pipeline runs an ordered list of passes over a module.
type Pipeline struct {
	Passes []Pass
}

// Run executes every pass in order, reporting whether any pass modified
// the module.
func (p *Pipeline) Run(m *ir.Module) bool {
	changed := false
	for _, pass := range p.Passes {
		if pass.Run(m) {
			changed = true
		}
	}
	return changed
}

// DefaultPipeline bundles the DeadCode and ConstFold passes in that
// order.
func DefaultPipeline() *Pipeline {
	return &Pipeline{Passes: []Pass{&DeadCode{}, &ConstFold{}}}
}

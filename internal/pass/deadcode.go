package pass

import "github.com/plasm-lang/plasm/internal/ir"

// DeadCode removes basic blocks no terminator or entry point can reach,
// computed per function by a depth-first walk from block 0 following
// each terminator's Br/CondBr targets.
type DeadCode struct{}

func (*DeadCode) Name() string { return "deadcode" }

func (*DeadCode) Run(m *ir.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		reachable := reachableBlocks(fn)
		kept := fn.Blocks[:0]
		for _, b := range fn.Blocks {
			if reachable[b.ID] {
				kept = append(kept, b)
			} else {
				changed = true
			}
		}
		fn.Blocks = kept
	}
	return changed
}

func reachableBlocks(fn *ir.Function) map[int]bool {
	reached := make(map[int]bool)
	if len(fn.Blocks) == 0 {
		return reached
	}
	var visit func(b *ir.Block)
	visit = func(b *ir.Block) {
		if b == nil || reached[b.ID] {
			return
		}
		reached[b.ID] = true
		switch b.Term.Kind {
		case ir.TermBr:
			visit(b.Term.Target)
		case ir.TermCondBr:
			visit(b.Term.Then)
			visit(b.Term.Else)
		}
	}
	visit(fn.Blocks[0])
	return reached
}

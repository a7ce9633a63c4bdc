package ir

// Dealias resolves every Alias instruction away (C7): it follows each
// alias chain to its ultimate non-alias target, rewrites every operand in
// the IR to reference that target directly, then drops the now-unreachable
// Alias instructions from their owning blocks. After Dealias returns, no
// reachable block contains an Alias instruction.
func Dealias(ir *IR) {
	targets := make(map[RegisterId]OperandId)
	for i := 0; i < ir.Registers.Len(); i++ {
		if a, ok := ir.Registers.Get(RegisterId(i)).Op.(*Alias); ok {
			targets[RegisterId(i)] = a.Id
		}
	}
	if len(targets) == 0 {
		return
	}

	var resolve func(OperandId) OperandId
	resolve = func(o OperandId) OperandId {
		if !o.IsRegister() {
			return o
		}
		if target, ok := targets[o.Register]; ok {
			return resolve(target)
		}
		return o
	}

	RewriteOperandsInIR(ir, resolve)

	TransformIR(ir, transformerFunc(func(b *Block) {
		ReplaceInstructions(b, func(bi BlockInstruction) (BlockInstruction, bool) {
			if !bi.IsVoid() {
				if _, ok := ir.Registers.Get(bi.Reg).Op.(*Alias); ok {
					return bi, false
				}
			}
			return bi, true
		})
	}))
}

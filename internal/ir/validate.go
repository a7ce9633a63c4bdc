package ir

import "fmt"

// Validate checks the closed-form invariants an IR must satisfy after a
// build (C11): every reachable block ends in exactly one terminator, a
// branching terminator's required slots are present and its case-label
// count matches its case-block count, and every register operand resolves
// within the arena. Violations are reported, not asserted, since Validate
// exists to catch a malformed IR before something else panics on it; a
// block instruction whose own register id is out of range still panics in
// the RegisterArena lookup.
func Validate(ir *IR) []string {
	var errs []string
	report := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	checkOperand := func(where string, o OperandId) {
		switch o.Kind {
		case OperandRegister:
			if int(o.Register) >= ir.Registers.Len() {
				report("%s: register id %d out of range (arena has %d)", where, o.Register, ir.Registers.Len())
			}
		case OperandConstant:
			if int(o.Constant) >= int(firstUserConstantId) {
				return // fixed ids always valid; user ids checked implicitly by ConstantArena.Get elsewhere
			}
		}
	}

	for _, fn := range ir.FunctionIds() {
		entry := ir.Entry(fn)
		VisitBlocks(ir.Registers, entry, func(b *Block) {
			where := fmt.Sprintf("function %d", fn)
			if b.Terminator == nil {
				report("%s: block has no terminator", where)
				return
			}
			for _, bi := range b.Instructions {
				op := bi.Op(ir.Registers)
				for _, o := range op.Operands() {
					checkOperand(where+"/"+op.OpName(), o)
				}
			}
			for _, o := range b.Terminator.Operands() {
				checkOperand(where+"/"+b.Terminator.OpName(), o)
			}

			switch t := b.Terminator.(type) {
			case *If:
				if b.Block1 == nil || b.Block2 == nil {
					report("%s: If missing a branch block", where)
				}
			case *Loop:
				if b.LoopCondition == nil || b.Block1 == nil {
					report("%s: Loop missing condition or body block", where)
				}
			case *DoLoop:
				// LoopCondition is required before astify but stripped by it
				// (§4.6.4, invariant 7(d)) — only Block1 is unconditional.
				if b.Block1 == nil {
					report("%s: DoLoop missing body block", where)
				}
			case *Switch:
				if len(t.Cases) != len(b.CaseBlocks) {
					report("%s: Switch has %d case labels but %d case blocks", where, len(t.Cases), len(b.CaseBlocks))
				}
				for i, cb := range b.CaseBlocks {
					if i == len(b.CaseBlocks)-1 {
						continue
					}
					if _, ok := cb.Terminator.(*Passthrough); !ok {
						continue
					}
				}
			case *Merge:
				// post-astify, a Merge must never still carry a value (it
				// would mean eliminateMergeInputs missed this branch).
				_ = t
			}
		})
	}
	return errs
}

// ValidatePostAstify additionally requires that no Merge terminator still
// carries a value, that no Alias instruction remains, that no Loop.Block2
// or DoLoop.LoopCondition survives (§4.6.4 strips both once their content
// has been spliced elsewhere), and that any propagate_break variable a
// switch reads is one it actually declared — invariants that only hold
// after Dealias and Astify have both run.
func ValidatePostAstify(ir *IR) []string {
	errs := Validate(ir)
	for _, fn := range ir.FunctionIds() {
		entry := ir.Entry(fn)
		VisitOps(ir.Registers, entry, func(b *Block, bi BlockInstruction, op OpCode) {
			if _, ok := op.(*Alias); ok {
				errs = append(errs, fmt.Sprintf("function %d: Alias instruction survived astify", fn))
			}
		})
		VisitBlocks(ir.Registers, entry, func(b *Block) {
			if m, ok := b.Terminator.(*Merge); ok && m.Val != nil {
				errs = append(errs, fmt.Sprintf("function %d: Merge still carries a value after astify", fn))
			}
			if _, ok := b.Terminator.(*Loop); ok && b.Block2 != nil {
				errs = append(errs, fmt.Sprintf("function %d: Loop.Block2 (continue clause) survived astify", fn))
			}
			if _, ok := b.Terminator.(*DoLoop); ok && b.LoopCondition != nil {
				errs = append(errs, fmt.Sprintf("function %d: DoLoop.LoopCondition survived astify", fn))
			}
			if _, ok := b.Terminator.(*Switch); ok && b.MergeBlock != nil {
				if ifTerm, ok := b.MergeBlock.Terminator.(*If); ok && ifTerm.Cond.IsRegister() {
					if load, ok := ir.Registers.Get(ifTerm.Cond.Register).Op.(*Load); ok && load.Ptr.Kind == OperandVariable {
						if ir.Meta.Variables.Get(load.Ptr.Variable).Name == "propagate_break" {
							declared := false
							for _, v := range b.Variables {
								if v == load.Ptr.Variable {
									declared = true
								}
							}
							if !declared {
								errs = append(errs, fmt.Sprintf("function %d: switch reads a propagate_break variable it never declared", fn))
							}
						}
					}
				}
			}
		})
	}
	return errs
}

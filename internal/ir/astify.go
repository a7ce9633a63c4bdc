package ir

// Astify runs the structural reshaping pass (C8) that makes the IR safe for
// backends with no notion of SSA phi nodes and no guarantee that a native
// `continue` statement re-runs a for-loop's increment clause or a do-while's
// condition check:
//
//   - materializeTemporaries (§4.6.1/§4.6.2) moves a register's defining
//     instruction into an ordinary local variable wherever sharing the
//     single-definition register would be wrong — a side-effecting call, or
//     any non-trivial value read more than once.
//   - eliminateMergeInputs (§4.6.3) replaces a merge block's Input register
//     with a plain Store/Load pair through a local variable.
//   - reshapeContinueAndBreak (§4.6.4) splices a loop's continue clause (or
//     a do-while's condition check) ahead of every `continue` inside its
//     body, and threads a `propagate_break` variable through any switch a
//     do-while's synthesized break would otherwise get trapped in.
//
// Astify assumes Dealias has already run — it only chases RegisterId
// references, so a live Alias in the operand graph would make a
// materialized temporary's Store target wrong.
func Astify(ir *IR) {
	for _, fn := range ir.FunctionIds() {
		entry := ir.Entry(fn)
		materializeTemporaries(ir, entry)
		eliminateMergeInputs(ir, entry)
		reshapeContinueAndBreak(ir, entry)
	}
}

// tailOf follows a chain of structured-construct merge blocks down to the
// literal Merge-terminated leaf a branch actually ends on (§4.2.3's merge
// chain): a branch's own entry block may itself contain further nested
// constructs, so the block that was handed to header.Block1/Block2 is not
// necessarily the one carrying the Merge terminator.
func tailOf(b *Block) *Block {
	for {
		switch b.Terminator.(type) {
		case *If, *Loop, *DoLoop, *Switch:
			b = b.MergeBlock
		default:
			return b
		}
	}
}

// eliminateMergeInputs walks every If whose merge block carries an Input
// register and replaces that mechanism with an ordinary local variable:
// each branch's Merge(val) becomes `store temp, val; Merge(None)`, and the
// merge block's MergeInput sentinel becomes a real `Load(temp)` — still
// under the same RegisterId, so every existing reference keeps resolving.
func eliminateMergeInputs(ir *IR, entry *Block) {
	VisitBlocks(ir.Registers, entry, func(b *Block) {
		if _, ok := b.Terminator.(*If); !ok || b.MergeBlock == nil || b.MergeBlock.Input == nil {
			return
		}
		input := b.MergeBlock.Input

		tempType := ir.Meta.Types.PointerTo(input.Type)
		tempVar := ir.Meta.Variables.New(Variable{
			Name:       "merge_tmp",
			NameSource: Temporary,
			Type:       tempType,
			Precision:  input.Precision,
			Scope:      Scope{Kind: ScopeLocal, Block: b},
		})
		b.DeclareVariable(tempVar)
		tempPtr := OperandId{Kind: OperandVariable, Variable: tempVar}

		storeBranchValue := func(branch *Block) {
			if branch == nil {
				return
			}
			tail := tailOf(branch)
			m, ok := tail.Terminator.(*Merge)
			if !ok || m.Val == nil {
				return
			}
			tail.Instructions = append(tail.Instructions, VoidInst(&Store{Ptr: tempPtr, Val: *m.Val}))
			tail.Terminator = &Merge{}
		}
		storeBranchValue(b.Block1)
		storeBranchValue(b.Block2)

		loadInst := ir.Registers.Get(input.Id)
		loadInst.Op = &Load{Ptr: tempPtr}
		InsertBefore(b.MergeBlock, 0, RegisterInst(input.Id))
		b.MergeBlock.Input = nil
	})
}

// registerInfo is the per-register usage summary §4.6.1's preprocessing
// pass builds: how many times a register is read, whether its defining
// instruction has a side effect, and whether recomputing it is nontrivial.
type registerInfo struct {
	readCount     int
	hasSideEffect bool
	isComplex     bool
}

// preprocessRegisters counts register reads (including terminator operands)
// and classifies each register's defining instruction, per §4.6.1. A Call
// always has a side effect; the pure projection opcodes (Access*/Load) are
// cheap enough to recompute and are never treated as complex; everything
// else is complex (worth caching if read more than once).
func preprocessRegisters(ir *IR, entry *Block) map[RegisterId]*registerInfo {
	info := make(map[RegisterId]*registerInfo)
	get := func(id RegisterId) *registerInfo {
		ri, ok := info[id]
		if !ok {
			ri = &registerInfo{}
			info[id] = ri
		}
		return ri
	}
	countReads := func(op OpCode) {
		for _, o := range op.Operands() {
			if o.IsRegister() {
				get(o.Register).readCount++
			}
		}
	}
	classify := func(bi BlockInstruction, op OpCode) {
		if bi.IsVoid() {
			return
		}
		ri := get(bi.Reg)
		switch op.(type) {
		case *Call:
			ri.hasSideEffect = true
			ri.isComplex = true
		case *AccessVectorComponent, *AccessVectorComponentMulti, *AccessVectorComponentDynamic,
			*AccessMatrixColumn, *AccessStructField, *AccessArrayElement, *Load:
			ri.isComplex = false
			ri.hasSideEffect = false
		default:
			ri.isComplex = true
		}
	}
	VisitBlocks(ir.Registers, entry, func(b *Block) {
		for _, bi := range b.Instructions {
			op := bi.Op(ir.Registers)
			classify(bi, op)
			countReads(op)
		}
		if b.Terminator != nil {
			countReads(b.Terminator)
		}
	})
	return info
}

// materializeTemporaries gives any register that has a side effect, or that
// is both complex and read more than once, a home in a local variable
// (§4.6.2): the defining instruction moves to a fresh register (via
// RegisterArena.AssignNewRegisterToInstruction, which leaves a MergeInput
// sentinel in the original slot), the original slot becomes `Load(temp)`, and a Store to temp is
// spliced in right after the (relocated) defining instruction — so every
// existing reference to the original RegisterId keeps resolving, now
// through the Load.
func materializeTemporaries(ir *IR, entry *Block) {
	info := preprocessRegisters(ir, entry)
	VisitBlocks(ir.Registers, entry, func(b *Block) {
		rebuilt := make([]BlockInstruction, 0, len(b.Instructions))
		for _, bi := range b.Instructions {
			if bi.IsVoid() {
				rebuilt = append(rebuilt, bi)
				continue
			}
			ri := info[bi.Reg]
			if ri == nil || !(ri.hasSideEffect || (ri.isComplex && ri.readCount > 1)) {
				rebuilt = append(rebuilt, bi)
				continue
			}

			inst := ir.Registers.Get(bi.Reg)
			resultType, resultPrec := inst.Result.Type, inst.Result.Precision

			tempVar := ir.Meta.Variables.New(Variable{
				Name:       "tmp",
				NameSource: Temporary,
				Type:       ir.Meta.Types.PointerTo(resultType),
				Precision:  resultPrec,
				Scope:      Scope{Kind: ScopeLocal, Block: b},
			})
			b.DeclareVariable(tempVar)
			tempPtr := VarOperand(tempVar)

			newId := ir.Registers.AssignNewRegisterToInstruction(bi.Reg)
			ir.Registers.Get(bi.Reg).Op = &Load{Ptr: tempPtr}

			rebuilt = append(rebuilt,
				RegisterInst(newId),
				VoidInst(&Store{Ptr: tempPtr, Val: RegOperand(newId)}),
				RegisterInst(bi.Reg),
			)
		}
		b.Instructions = rebuilt
	})
}

// breakScope is one entry of the break stack reshapeContinueAndBreak
// maintains while walking a function body: Loop and DoLoop push a
// non-switch scope, Switch pushes a switch scope that lazily grows a
// propagate_break variable the first time a do-while continue underneath it
// needs to break out through it (§4.6.4).
type breakScope struct {
	isSwitch     bool
	propagateVar *VariableId
}

// continueBreakState carries the three parallel stacks §4.6.4's combined
// pre/post-order traversal needs: which continue clause (for-loop) or
// condition block (do-while) a bare `continue` should splice, and which
// switch scopes a do-while's synthesized break must propagate through.
type continueBreakState struct {
	ir             *IR
	continueStack  []*Block
	conditionStack []*Block
	breakStack     []*breakScope
}

// reshapeContinueAndBreak is §4.6.4: it splices its loop's continue clause
// (for-loop) or condition recheck (do-while) in ahead of every `continue`
// reachable from entry, strips the now-redundant Loop.Block2/
// DoLoop.LoopCondition slots structured constructs no longer need, and
// threads a propagate_break variable through any switch a do-while's
// synthesized break would otherwise only escape one level of.
func reshapeContinueAndBreak(ir *IR, entry *Block) {
	st := &continueBreakState{ir: ir}
	st.walk(entry, make(map[*Block]bool))
}

func (st *continueBreakState) walk(b *Block, seen map[*Block]bool) {
	if b == nil || seen[b] {
		return
	}
	seen[b] = true

	switch b.Terminator.(type) {
	case *Continue:
		st.spliceContinue(b)
		return

	case *Loop:
		st.continueStack = append(st.continueStack, b.Block2)
		st.conditionStack = append(st.conditionStack, nil)
		st.breakStack = append(st.breakStack, &breakScope{})
		st.walk(b.LoopCondition, seen)
		st.walk(b.Block1, seen)
		n := len(st.continueStack)
		st.continueStack = st.continueStack[:n-1]
		st.conditionStack = st.conditionStack[:n-1]
		st.breakStack = st.breakStack[:n-1]
		if b.Block2 != nil {
			st.inlineLoopIncrement(b.Block1, b.Block2)
		}
		b.Block2 = nil
		st.walk(b.MergeBlock, seen)

	case *DoLoop:
		cond := b.LoopCondition
		b.LoopCondition = nil
		st.continueStack = append(st.continueStack, nil)
		st.conditionStack = append(st.conditionStack, cond)
		st.breakStack = append(st.breakStack, &breakScope{})
		st.walk(b.Block1, seen)
		n := len(st.continueStack)
		st.continueStack = st.continueStack[:n-1]
		st.conditionStack = st.conditionStack[:n-1]
		st.breakStack = st.breakStack[:n-1]
		st.inlineNormalExit(b.Block1, cond)
		st.walk(b.MergeBlock, seen)

	case *Switch:
		scope := &breakScope{isSwitch: true}
		st.breakStack = append(st.breakStack, scope)
		for _, cb := range b.CaseBlocks {
			st.walk(cb, seen)
		}
		st.breakStack = st.breakStack[:len(st.breakStack)-1]
		if scope.propagateVar != nil {
			insertPropagateBreakCheck(st.ir, b, *scope.propagateVar)
		}
		st.walk(b.MergeBlock, seen)

	default:
		for _, sub := range b.SubBlocks() {
			st.walk(sub, seen)
		}
	}
}

// spliceContinue puts whatever b's nearest enclosing loop needs ahead of b's
// Continue terminator: a for-loop gets its continue clause appended to b
// and keeps the Continue; a do-while re-evaluates its condition and either
// breaks or continues, since the condition has no separate block of its own
// left to jump back to once LoopCondition is stripped.
func (st *continueBreakState) spliceContinue(b *Block) {
	if n := len(st.continueStack); n > 0 && st.continueStack[n-1] != nil {
		dup := DuplicateBlock(st.ir.Registers, st.continueStack[n-1])
		b.Instructions = append(b.Instructions, dup.Instructions...)
		b.Variables = append(b.Variables, dup.Variables...)
		return
	}
	if n := len(st.conditionStack); n > 0 && st.conditionStack[n-1] != nil {
		st.spliceDoWhileRecheck(b, st.conditionStack[n-1], true)
	}
}

// inlineNormalExit handles a do-while body's ordinary (non-continue)
// fallthrough: if the body still falls off its own end, that tail gets the
// same condition recheck a spliced continue would get, minus any
// propagate_break bookkeeping (the tail is always outside any switch, since
// tailOf already walked past every structured construct's merge chain).
func (st *continueBreakState) inlineNormalExit(body *Block, cond *Block) {
	tail := tailOf(body)
	if _, ok := tail.Terminator.(*NextBlock); !ok {
		return
	}
	st.spliceDoWhileRecheck(tail, cond, false)
}

// inlineLoopIncrement handles a for-loop body's ordinary (non-continue)
// fallthrough: Driver.walk's LoopStmt contract only ever runs Block2 itself
// via a spliced continue, so without this the increment clause would simply
// never run on an iteration that falls off the body's own end rather than
// hitting an explicit continue. If the body still falls off its own end,
// a duplicate of the continue clause gets appended there too.
func (st *continueBreakState) inlineLoopIncrement(body *Block, clause *Block) {
	tail := tailOf(body)
	if _, ok := tail.Terminator.(*NextBlock); !ok {
		return
	}
	dup := DuplicateBlock(st.ir.Registers, clause)
	tail.Instructions = append(tail.Instructions, dup.Instructions...)
	tail.Variables = append(tail.Variables, dup.Variables...)
}

// spliceDoWhileRecheck inlines a duplicate of a do-while's condition block
// into tail, followed by `if (!cond) { [propagate_break := true;] break }
// else continue` — the do-while's own repeat is now just "fall off the end
// of the loop body", so a literal `continue` on the false branch is exactly
// what re-enters it.
func (st *continueBreakState) spliceDoWhileRecheck(tail *Block, cond *Block, withPropagateBreak bool) {
	dup := DuplicateBlock(st.ir.Registers, cond)
	loopIf, ok := dup.Terminator.(*LoopIf)
	invariant(ok, "do-while condition block must terminate with LoopIf")

	tail.Instructions = append(tail.Instructions, dup.Instructions...)
	tail.Variables = append(tail.Variables, dup.Variables...)

	notCond := st.ir.Registers.New(&Unary{Op: OpLogicalNot, X: loopIf.Cond}, TypeBool, NotApplicable)
	tail.Instructions = append(tail.Instructions, RegisterInst(notCond.Id))

	breakBlock := &Block{Terminator: &Break{}}
	if withPropagateBreak {
		for _, v := range st.collectPropagateBreakVars() {
			trueConst := st.ir.Meta.Constants.Bool(true)
			breakBlock.Instructions = append(breakBlock.Instructions,
				VoidInst(&Store{Ptr: VarOperand(v), Val: ConstOperand(trueConst)}))
		}
	}

	tail.Terminator = &If{Cond: RegOperand(notCond.Id)}
	tail.Block1 = breakBlock
	tail.Block2 = &Block{Terminator: &Continue{}}
}

// collectPropagateBreakVars walks the break stack from innermost outward,
// lazily allocating a propagate_break bool variable for every switch scope
// until (and not including) the loop scope the do-while's break is actually
// meant to escape to.
func (st *continueBreakState) collectPropagateBreakVars() []VariableId {
	var vars []VariableId
	for i := len(st.breakStack) - 1; i >= 0; i-- {
		scope := st.breakStack[i]
		if !scope.isSwitch {
			break
		}
		if scope.propagateVar == nil {
			v := st.ir.Meta.Variables.New(Variable{
				Name:       "propagate_break",
				NameSource: Temporary,
				Type:       st.ir.Meta.Types.PointerTo(TypeBool),
				Precision:  NotApplicable,
			})
			scope.propagateVar = &v
		}
		vars = append(vars, *scope.propagateVar)
	}
	return vars
}

// insertPropagateBreakCheck declares propagateVar in the switch header's
// scope, initializes it to false before the switch runs, and splits the
// switch's merge block into `if (propagate_break) break` followed by
// whatever originally came after the switch — so a do-while break that only
// managed to exit this switch keeps escaping outward (§4.6.4).
func insertPropagateBreakCheck(ir *IR, header *Block, propagateVar VariableId) {
	header.DeclareVariable(propagateVar)
	ir.Meta.Variables.Get(propagateVar).Scope = Scope{Kind: ScopeLocal, Block: header}
	falseConst := ir.Meta.Constants.Bool(false)
	header.Instructions = append(
		[]BlockInstruction{VoidInst(&Store{Ptr: VarOperand(propagateVar), Val: ConstOperand(falseConst)})},
		header.Instructions...,
	)

	mb := header.MergeBlock
	rest := &Block{
		Variables:     mb.Variables,
		Input:         mb.Input,
		Instructions:  mb.Instructions,
		Terminator:    mb.Terminator,
		MergeBlock:    mb.MergeBlock,
		LoopCondition: mb.LoopCondition,
		Block1:        mb.Block1,
		Block2:        mb.Block2,
		CaseBlocks:    mb.CaseBlocks,
		IsMergeBlock:  mb.IsMergeBlock,
		DeadCode:      mb.DeadCode,
	}

	loadVar := ir.Registers.New(&Load{Ptr: VarOperand(propagateVar)}, TypeBool, NotApplicable)
	mb.Variables = nil
	mb.Input = nil
	mb.Instructions = []BlockInstruction{RegisterInst(loadVar.Id)}
	mb.Terminator = &If{Cond: RegOperand(loadVar.Id)}
	mb.Block1 = &Block{Terminator: &Break{}}
	mb.Block2 = &Block{Terminator: &Merge{}}
	mb.MergeBlock = rest
	mb.LoopCondition = nil
	mb.CaseBlocks = nil
}

package ir

// CFGBuilder is the pushdown automaton from §4.2: it tracks a current block
// plus a stack of (parent, entry) frames, and exposes one pair of
// begin/end methods per structured construct (if/ternary, for/while,
// do-while, switch). It never constructs terminator-bearing opcodes
// directly except through these methods, so every Block it produces
// already satisfies the one-terminator-per-block invariant.
//
// Switch accumulates a variable number of sibling cases, which the generic
// frame stack alone can't track, so it gets its own small stack.
type CFGBuilder struct {
	regs *RegisterArena

	current *Block
	stack   []cfgFrame

	switches []*switchAccum
}

type cfgFrame struct {
	parent *Block
	entry  *Block
}

type switchAccum struct {
	header     *Block
	expr       OperandId
	cases      []*ConstantId
	caseBlocks []*Block
}

// NewCFGBuilder starts a builder positioned at a fresh, empty current block
// (a function's entry block, typically).
func NewCFGBuilder(regs *RegisterArena) *CFGBuilder {
	return &CFGBuilder{regs: regs, current: NewBlock()}
}

// Current returns the block presently receiving appended instructions.
func (c *CFGBuilder) Current() *Block { return c.current }

func isDeadTrigger(op OpCode) bool {
	switch op.(type) {
	case *Break, *Continue, *Return, *Discard:
		return true
	default:
		return false
	}
}

// Terminate sets current's terminator, per §4.2.1. Triggers dead-code mode
// for Break/Continue/Return/Discard; a no-op if current is already dead.
func (c *CFGBuilder) Terminate(op OpCode) {
	if c.current.DeadCode {
		return
	}
	c.current.Terminator = op
	if isDeadTrigger(op) {
		c.current.DeadCode = true
	}
}

// closeWithMerge auto-terminates a branch block that fell off its statement
// list without an explicit terminator (§4.2.1: merge-bearing constructs).
func (c *CFGBuilder) closeWithMerge(val *OperandId) {
	if c.current.Terminator == nil {
		c.current.Terminator = &Merge{Val: val}
	}
}

// closeWithNextBlock is closeWithMerge's counterpart for constructs whose
// fallthrough target is purely structural (loop body, continue clause).
func (c *CFGBuilder) closeWithNextBlock() {
	if c.current.Terminator == nil {
		c.current.Terminator = &NextBlock{}
	}
}

// push saves current as the restore point and starts a fresh child,
// inheriting deadness so dead subtrees stay silently dropped (§4.2.1).
func (c *CFGBuilder) push() *Block {
	entry := &Block{DeadCode: c.current.DeadCode}
	c.stack = append(c.stack, cfgFrame{parent: c.current, entry: entry})
	c.current = entry
	return entry
}

// pop restores current to the saved parent and returns (parent, entry).
// If parent is dead, the caller must discard entry's content entirely —
// it is never wired into any of parent's slots (§4.2.1 "discards the
// subtree entirely").
func (c *CFGBuilder) pop() (parent, entry *Block) {
	n := len(c.stack)
	invariant(n > 0, "CFGBuilder: pop on empty stack")
	fr := c.stack[n-1]
	c.stack = c.stack[:n-1]
	c.current = fr.parent
	return fr.parent, fr.entry
}

// ---- if / ternary (§4.2.2) ----

// BeginIfTrueBlock terminates the current (header) block with If(cond) and
// opens the true branch as current.
func (c *CFGBuilder) BeginIfTrueBlock(cond OperandId) {
	c.current.Terminator = &If{Cond: cond}
	c.push()
}

// EndIfTrueBlock closes the true branch (auto-Merge(mergeParam) if it fell
// through) and restores current to the header.
func (c *CFGBuilder) EndIfTrueBlock(mergeParam *OperandId) {
	c.closeWithMerge(mergeParam)
	header, trueEntry := c.pop()
	if header.DeadCode {
		return // dead subtree discarded entirely
	}
	header.Block1 = trueEntry
}

// BeginIfFalseBlock opens the false branch (or the trivial empty branch of
// a source-level if with no else) as current, again off the header.
func (c *CFGBuilder) BeginIfFalseBlock() { c.push() }

func (c *CFGBuilder) EndIfFalseBlock(mergeParam *OperandId) {
	c.closeWithMerge(mergeParam)
	header, falseEntry := c.pop()
	if header.DeadCode {
		return
	}
	header.Block2 = falseEntry
}

// EndIf finalizes the if/ternary (§4.2.2 constant-fold rules) and returns
// the construct's resulting value, or nil for a void statement-if.
func (c *CFGBuilder) EndIf(input *TypedOperand) *TypedOperand {
	header := c.current
	if header.DeadCode {
		return nil
	}
	cond := header.Terminator.(*If).Cond

	if cond.IsConstant() {
		chosen := header.Block2
		if cond.Constant == ConstTrue {
			chosen = header.Block1
		}
		return c.collapseIf(header, chosen, input)
	}

	merge := &Block{IsMergeBlock: true}
	header.MergeBlock = merge
	c.current = merge
	if input == nil {
		return nil
	}
	reg := c.regs.New(&MergeInput{}, input.Type, input.Precision)
	merge.Input = &reg
	result := reg.Operand()
	return &result
}

// collapseIf inlines chosen into header in place of the If terminator,
// per §4.2.2's constant-condition collapse rule.
func (c *CFGBuilder) collapseIf(header, chosen *Block, input *TypedOperand) *TypedOperand {
	header.Instructions = append(header.Instructions, chosen.Instructions...)
	header.Variables = append(header.Variables, chosen.Variables...)

	if m, ok := chosen.Terminator.(*Merge); ok {
		header.Terminator = nil
		header.Block1 = nil
		header.Block2 = nil
		header.DeadCode = false
		c.current = header
		if m.Val == nil {
			return nil
		}
		invariant(input != nil, "collapsed if produced a value but no input type was given")
		return &TypedOperand{Id: *m.Val, Type: input.Type, Precision: input.Precision}
	}

	header.Terminator = chosen.Terminator
	header.Block1 = chosen.Block1
	header.Block2 = chosen.Block2
	header.MergeBlock = chosen.MergeBlock
	header.LoopCondition = chosen.LoopCondition
	header.CaseBlocks = chosen.CaseBlocks
	header.DeadCode = chosen.DeadCode
	c.current = header
	return nil
}

// ---- for / while (§4.2.2) ----

func (c *CFGBuilder) BeginLoopCondition() {
	c.current.Terminator = &Loop{}
	c.push()
}

func (c *CFGBuilder) EndLoopCondition(cond OperandId) {
	cb := c.current
	cb.Terminator = &LoopIf{Cond: cond}
	header, condEntry := c.pop()
	if header.DeadCode {
		return
	}
	header.LoopCondition = condEntry
	c.push()
}

// EndLoopContinue closes the (possibly empty) continue clause and opens the
// loop body as current.
func (c *CFGBuilder) EndLoopContinue() {
	c.closeWithNextBlock()
	header, ccEntry := c.pop()
	if header.DeadCode {
		return
	}
	header.Block2 = ccEntry
	c.push()
}

// EndLoop closes the body and finalizes the loop, erasing it entirely if
// its condition folded to constant false (§4.2.2); a do-loop never does
// this, since its body always runs at least once.
func (c *CFGBuilder) EndLoop() {
	c.closeWithNextBlock()
	header, bodyEntry := c.pop()
	if header.DeadCode {
		return
	}
	header.Block1 = bodyEntry

	cond := header.LoopCondition.Terminator.(*LoopIf).Cond
	if cond.IsConstant() && cond.Constant == ConstFalse {
		header.Terminator = nil
		header.LoopCondition = nil
		header.Block1 = nil
		header.Block2 = nil
		return
	}
	merge := &Block{IsMergeBlock: true}
	header.MergeBlock = merge
	c.current = merge
}

// ---- do-while (§4.2.2) ----

func (c *CFGBuilder) BeginDoLoop() {
	c.current.Terminator = &DoLoop{}
	c.push()
}

func (c *CFGBuilder) BeginDoLoopCondition() {
	c.closeWithNextBlock()
	header, bodyEntry := c.pop()
	if header.DeadCode {
		c.push() // keep stack depth consistent; subtree already discarded
		return
	}
	header.Block1 = bodyEntry
	c.push()
}

func (c *CFGBuilder) EndDoLoop(cond OperandId) {
	cb := c.current
	cb.Terminator = &LoopIf{Cond: cond}
	header, condEntry := c.pop()
	if header.DeadCode {
		return
	}
	header.LoopCondition = condEntry
	merge := &Block{IsMergeBlock: true}
	header.MergeBlock = merge
	c.current = merge
}

// ---- switch (§4.2.2) ----

func (c *CFGBuilder) BeginSwitch(expr OperandId) {
	c.switches = append(c.switches, &switchAccum{header: c.current, expr: expr})
}

// BeginCase opens a case body for a given (already-folded) label constant.
func (c *CFGBuilder) BeginCase(label ConstantId) {
	c.push()
	sw := c.switches[len(c.switches)-1]
	l := label
	sw.cases = append(sw.cases, &l)
}

// BeginDefault opens the default case's body.
func (c *CFGBuilder) BeginDefault() {
	c.push()
	sw := c.switches[len(c.switches)-1]
	sw.cases = append(sw.cases, nil)
}

// EndCase closes the case body just opened by BeginCase/BeginDefault. A
// case that falls off its statement list gets Passthrough, not Merge or
// NextBlock, per §3.6/§4.2.2.
func (c *CFGBuilder) EndCase() {
	if c.current.Terminator == nil {
		c.current.Terminator = &Passthrough{}
	}
	sw := c.switches[len(c.switches)-1]
	header, entry := c.pop()
	invariant(header == sw.header, "EndCase: mismatched switch header")
	if header.DeadCode {
		// still record a slot so Cases/CaseBlocks stay aligned; content
		// is empty since the block was dead from the moment it opened.
		sw.caseBlocks = append(sw.caseBlocks, entry)
		return
	}
	sw.caseBlocks = append(sw.caseBlocks, entry)
}

// EndSwitch finalizes the switch per §4.2.2's erase/collapse/real-switch
// rules, promoting the last case's Passthrough to Break first.
func (c *CFGBuilder) EndSwitch() {
	n := len(c.switches)
	sw := c.switches[n-1]
	c.switches = c.switches[:n-1]

	header := sw.header
	if header.DeadCode {
		return
	}
	if len(sw.caseBlocks) == 0 {
		header.Terminator = nil
		return
	}
	if last := sw.caseBlocks[len(sw.caseBlocks)-1]; isPassthrough(last.Terminator) {
		last.Terminator = &Break{}
	}

	if sw.expr.IsConstant() {
		c.collapseSwitch(header, sw)
		return
	}

	header.Terminator = &Switch{Expr: sw.expr, Cases: sw.cases}
	header.CaseBlocks = sw.caseBlocks
	merge := &Block{IsMergeBlock: true}
	header.MergeBlock = merge
	c.current = merge
}

func isPassthrough(op OpCode) bool { _, ok := op.(*Passthrough); return ok }

// collapseSwitch implements the constant-expression branch of §4.2.2:
// erase entirely if nothing matches, else splice the matching case's
// block and any Passthrough chain of subsequent cases into header.
func (c *CFGBuilder) collapseSwitch(header *Block, sw *switchAccum) {
	idx := -1
	defaultIdx := -1
	for i, label := range sw.cases {
		if label == nil {
			defaultIdx = i
			continue
		}
		if *label == sw.expr.Constant {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = defaultIdx
	}
	if idx < 0 {
		header.Terminator = nil
		c.current = header
		return
	}

	for i := idx; i < len(sw.caseBlocks); i++ {
		cb := sw.caseBlocks[i]
		header.Instructions = append(header.Instructions, cb.Instructions...)
		header.Variables = append(header.Variables, cb.Variables...)
		if isPassthrough(cb.Terminator) {
			continue
		}
		if _, ok := cb.Terminator.(*Break); ok {
			header.Terminator = nil
			header.DeadCode = false
		} else {
			header.Terminator = cb.Terminator
			header.DeadCode = isDeadTrigger(cb.Terminator)
		}
		break
	}
	c.current = header
}

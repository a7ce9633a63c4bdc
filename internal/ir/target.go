package ir

// Backend is the opaque consumer side of the target contract (C9): the
// Driver walks the whole IR in the order §4.7 prescribes — begin, then a
// declaration pass over every arena in id order, then global scope, then one
// structured traversal per function — and calls back into Backend, handing
// it closures for each structured construct's sub-blocks rather than
// flattening them first. A backend "pulls" a sub-block's content by invoking
// the closure it was given, whenever (and however many times, though every
// concrete backend we ship calls each exactly once) suits its own emission
// strategy — e.g. to wrap it in braces, indent it, or defer it until after a
// header is written.
//
// Astify (§4.6.4) runs before the Driver ever sees this IR and leaves every
// Loop's continue clause and every DoLoop's condition check already folded
// into the ordinary structured flow of their bodies — so neither LoopStmt
// nor DoLoopStmt hand the backend a separate continue-clause/condition
// closure any more; the body closure alone is everything that runs per
// iteration.
type Backend interface {
	Begin()
	DeclareType(id TypeId, t Type)
	DeclareConstant(id ConstantId, c Constant)
	DeclareVariable(id VariableId, v *Variable)
	DeclareFunction(id FunctionId, fn *Function)
	GlobalScope(meta *Meta)

	BeginFunction(id FunctionId, fn *Function)
	EndFunction(id FunctionId)

	Instr(op OpCode, result *TypedRegister)

	IfStmt(cond OperandId, trueBranch func(), falseBranch func())
	LoopStmt(condBlock func() OperandId, body func())
	DoLoopStmt(body func())
	SwitchStmt(expr OperandId, cases []SwitchCase)

	Return(val *OperandId)
	Break()
	Continue()
	Discard()

	End()
}

// SwitchCase pairs a case label (nil for default) with its body closure,
// in the order the switch's cases were declared.
type SwitchCase struct {
	Label *ConstantId
	Body  func()
}

// Driver walks an IR, driving a Backend through the ordered callbacks §4.7
// prescribes: begin, arena-order declarations, global scope, one traversal
// per function in declaration order, end. Passthrough, NextBlock, and Merge
// are no-ops at this level: they exist purely to make every block end in
// exactly one terminator; the structural recursion below already puts their
// successor content in the right place without the backend needing to know
// they were there.
type Driver struct {
	ir *IR
}

func NewDriver(ir *IR) *Driver { return &Driver{ir: ir} }

// Run drives backend through the whole IR per §4.7. Declarations only cover
// the user-defined portion of each arena — the fixed/predefined entries
// (builtin types, the {false,true,0,1,...} constant table) need no
// declaration in generated source, since every backend already knows them.
func (d *Driver) Run(backend Backend) {
	backend.Begin()

	for id := firstUserTypeId; int(id) < d.ir.Meta.Types.Len(); id++ {
		backend.DeclareType(id, d.ir.Meta.Types.Get(id))
	}
	for id := firstUserConstantId; int(id) < d.ir.Meta.Constants.Len(); id++ {
		backend.DeclareConstant(id, d.ir.Meta.Constants.Get(id))
	}
	for i := 0; i < d.ir.Meta.Variables.Len(); i++ {
		id := VariableId(i)
		backend.DeclareVariable(id, d.ir.Meta.Variables.Get(id))
	}
	for i := 0; i < d.ir.Meta.Functions.Len(); i++ {
		id := FunctionId(i)
		backend.DeclareFunction(id, d.ir.Meta.Functions.Get(id))
	}

	backend.GlobalScope(d.ir.Meta)

	for _, fn := range d.ir.FunctionIds() {
		backend.BeginFunction(fn, d.ir.Meta.Functions.Get(fn))
		d.walk(d.ir.Entry(fn), backend)
		backend.EndFunction(fn)
	}

	backend.End()
}

func (d *Driver) instrs(b *Block, backend Backend) {
	for _, bi := range b.Instructions {
		if bi.IsVoid() {
			backend.Instr(bi.Void, nil)
			continue
		}
		inst := d.ir.Registers.Get(bi.Reg)
		backend.Instr(inst.Op, &inst.Result)
	}
}

func (d *Driver) walk(b *Block, backend Backend) {
	if b == nil {
		return
	}
	d.instrs(b, backend)

	switch t := b.Terminator.(type) {
	case *If:
		backend.IfStmt(t.Cond,
			func() { d.walk(b.Block1, backend) },
			func() { d.walk(b.Block2, backend) },
		)
		d.walk(b.MergeBlock, backend)

	case *Loop:
		condBlock := b.LoopCondition
		backend.LoopStmt(
			func() OperandId {
				d.instrs(condBlock, backend)
				return condBlock.Terminator.(*LoopIf).Cond
			},
			func() { d.walk(b.Block1, backend) },
		)
		d.walk(b.MergeBlock, backend)

	case *DoLoop:
		// Astify (§4.6.4, invariant 7(d)) has already stripped
		// LoopCondition: the trailing check is now just ordinary
		// structured flow inside Block1, so the body closure is all a
		// backend needs.
		backend.DoLoopStmt(func() { d.walk(b.Block1, backend) })
		d.walk(b.MergeBlock, backend)

	case *Switch:
		cases := make([]SwitchCase, len(t.Cases))
		for i, label := range t.Cases {
			caseBlock := b.CaseBlocks[i]
			cases[i] = SwitchCase{Label: label, Body: func() { d.walk(caseBlock, backend) }}
		}
		backend.SwitchStmt(t.Expr, cases)
		d.walk(b.MergeBlock, backend)

	case *Return:
		backend.Return(t.Val)
	case *Break:
		backend.Break()
	case *Continue:
		backend.Continue()
	case *Discard:
		backend.Discard()

	case *Merge, *Passthrough, *NextBlock, nil:
		// no-op: structural fallthrough, nothing further to visit here.
	}
}

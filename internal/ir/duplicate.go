package ir

// cloneOp returns a deep copy of op: a fresh struct, with any slice or
// pointer field copied rather than shared, so that rewriting operands on
// the clone (via RewriteOperands) never touches the original instruction.
// This is the one place in the package with an exhaustive type switch over
// every opcode kind — everywhere else goes through the Operands()/
// RewriteOperands() contract instead.
func cloneOp(op OpCode) OpCode {
	switch o := op.(type) {
	case *Discard:
		return &Discard{}
	case *Return:
		c := &Return{}
		if o.Val != nil {
			v := *o.Val
			c.Val = &v
		}
		return c
	case *Break:
		return &Break{}
	case *Continue:
		return &Continue{}
	case *Passthrough:
		return &Passthrough{}
	case *NextBlock:
		return &NextBlock{}
	case *Merge:
		c := &Merge{}
		if o.Val != nil {
			v := *o.Val
			c.Val = &v
		}
		return c
	case *If:
		return &If{Cond: o.Cond}
	case *Loop:
		return &Loop{}
	case *DoLoop:
		return &DoLoop{}
	case *LoopIf:
		return &LoopIf{Cond: o.Cond}
	case *Switch:
		cases := make([]*ConstantId, len(o.Cases))
		for i, c := range o.Cases {
			if c != nil {
				v := *c
				cases[i] = &v
			}
		}
		return &Switch{Expr: o.Expr, Cases: cases}
	case *Load:
		return &Load{Ptr: o.Ptr}
	case *Store:
		return &Store{Ptr: o.Ptr, Val: o.Val}
	case *Alias:
		return &Alias{Id: o.Id}
	case *Call:
		return &Call{Fn: o.Fn, Args: append([]OperandId(nil), o.Args...)}
	case *MergeInput:
		return &MergeInput{}
	case *ExtractVectorComponent:
		return &ExtractVectorComponent{V: o.V, K: o.K}
	case *ExtractVectorComponentMulti:
		return &ExtractVectorComponentMulti{V: o.V, K: append([]uint32(nil), o.K...)}
	case *ExtractVectorComponentDynamic:
		return &ExtractVectorComponentDynamic{V: o.V, K: o.K}
	case *ExtractMatrixColumn:
		return &ExtractMatrixColumn{M: o.M, K: o.K}
	case *ExtractStructField:
		return &ExtractStructField{S: o.S, K: o.K}
	case *ExtractArrayElement:
		return &ExtractArrayElement{A: o.A, K: o.K}
	case *AccessVectorComponent:
		return &AccessVectorComponent{V: o.V, K: o.K}
	case *AccessVectorComponentMulti:
		return &AccessVectorComponentMulti{V: o.V, K: append([]uint32(nil), o.K...)}
	case *AccessVectorComponentDynamic:
		return &AccessVectorComponentDynamic{V: o.V, K: o.K}
	case *AccessMatrixColumn:
		return &AccessMatrixColumn{M: o.M, K: o.K}
	case *AccessStructField:
		return &AccessStructField{S: o.S, K: o.K}
	case *AccessArrayElement:
		return &AccessArrayElement{A: o.A, K: o.K}
	case *ConstructScalarFromScalar:
		return &ConstructScalarFromScalar{X: o.X}
	case *ConstructVectorFromScalar:
		return &ConstructVectorFromScalar{X: o.X}
	case *ConstructMatrixFromScalar:
		return &ConstructMatrixFromScalar{X: o.X}
	case *ConstructMatrixFromMatrix:
		return &ConstructMatrixFromMatrix{X: o.X}
	case *ConstructVectorFromMultiple:
		return &ConstructVectorFromMultiple{Args: append([]OperandId(nil), o.Args...)}
	case *ConstructMatrixFromMultiple:
		return &ConstructMatrixFromMultiple{Args: append([]OperandId(nil), o.Args...)}
	case *ConstructStruct:
		return &ConstructStruct{Args: append([]OperandId(nil), o.Args...)}
	case *ConstructArray:
		return &ConstructArray{Args: append([]OperandId(nil), o.Args...)}
	case *Unary:
		return &Unary{Op: o.Op, X: o.X}
	case *Binary:
		return &Binary{Op: o.Op, L: o.L, R: o.R}
	default:
		invariant(false, "cloneOp: unhandled opcode %T", op)
		return nil
	}
}

// DuplicateBlock deep-copies the structured subtree rooted at src (its
// slot-linked sub-blocks and its own merge chain) into an independent block,
// allocating fresh RegisterIds for every register-producing instruction it
// contains and remapping all internal references to them.
//
// This exists for astify's continue-clause replication (§4.6.4): a loop's
// continue clause (or a do-while's repeated-body desugaring) must be
// spliced in at more than one point, and since a RegisterId is a
// single-definition slot, each splice site needs its own fresh registers —
// sharing one would mean a side-effecting instruction like Call appears to
// execute once for what are really N independent dynamic occurrences.
func DuplicateBlock(regs *RegisterArena, src *Block) *Block {
	remap := make(map[RegisterId]RegisterId)
	copies := make(map[*Block]*Block)

	var copyBlock func(b *Block) *Block
	copyBlock = func(b *Block) *Block {
		if b == nil {
			return nil
		}
		if nb, ok := copies[b]; ok {
			return nb
		}
		nb := &Block{
			Variables:    append([]VariableId(nil), b.Variables...),
			DeadCode:     b.DeadCode,
			IsMergeBlock: b.IsMergeBlock,
		}
		copies[b] = nb

		nb.Instructions = make([]BlockInstruction, len(b.Instructions))
		for i, bi := range b.Instructions {
			if bi.IsVoid() {
				nb.Instructions[i] = VoidInst(cloneOp(bi.Void))
				continue
			}
			orig := regs.Get(bi.Reg)
			fresh := regs.New(cloneOp(orig.Op), orig.Result.Type, orig.Result.Precision)
			remap[bi.Reg] = fresh.Id
			nb.Instructions[i] = RegisterInst(fresh.Id)
		}
		if b.Input != nil {
			fresh := regs.New(&MergeInput{}, b.Input.Type, b.Input.Precision)
			remap[b.Input.Id] = fresh.Id
			in := fresh
			nb.Input = &in
		}
		if b.Terminator != nil {
			nb.Terminator = cloneOp(b.Terminator)
		}
		nb.Block1 = copyBlock(b.Block1)
		nb.Block2 = copyBlock(b.Block2)
		nb.LoopCondition = copyBlock(b.LoopCondition)
		nb.MergeBlock = copyBlock(b.MergeBlock)
		for _, cb := range b.CaseBlocks {
			nb.CaseBlocks = append(nb.CaseBlocks, copyBlock(cb))
		}
		return nb
	}

	dup := copyBlock(src)

	subst := func(o OperandId) OperandId {
		if o.IsRegister() {
			if nid, ok := remap[o.Register]; ok {
				return RegOperand(nid)
			}
		}
		return o
	}
	for _, nb := range copies {
		for _, bi := range nb.Instructions {
			if bi.IsVoid() {
				bi.Void.RewriteOperands(subst)
			} else {
				regs.Get(bi.Reg).Op.RewriteOperands(subst)
			}
		}
		if nb.Terminator != nil {
			nb.Terminator.RewriteOperands(subst)
		}
	}
	return dup
}

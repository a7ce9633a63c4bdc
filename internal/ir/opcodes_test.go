package ir

import "testing"

func TestReturnOperandsAndRewrite(t *testing.T) {
	v := RegOperand(3)
	r := &Return{Val: &v}
	ops := r.Operands()
	if len(ops) != 1 || ops[0] != v {
		t.Fatalf("Return.Operands() = %+v, want [%v]", ops, v)
	}
	r.RewriteOperands(func(OperandId) OperandId { return ConstOperand(9) })
	if *r.Val != ConstOperand(9) {
		t.Fatalf("RewriteOperands did not update Val: %+v", r.Val)
	}

	bare := &Return{}
	if bare.Operands() != nil {
		t.Fatalf("void Return.Operands() should be nil")
	}
}

func TestBinaryOperandsAndRewrite(t *testing.T) {
	b := &Binary{Op: OpAdd, L: RegOperand(1), R: ConstOperand(2)}
	ops := b.Operands()
	if len(ops) != 2 || ops[0] != RegOperand(1) || ops[1] != ConstOperand(2) {
		t.Fatalf("Binary.Operands() wrong: %+v", ops)
	}
	b.RewriteOperands(func(o OperandId) OperandId {
		if o.IsRegister() {
			return RegOperand(99)
		}
		return o
	})
	if b.L != RegOperand(99) || b.R != ConstOperand(2) {
		t.Fatalf("RewriteOperands did not apply selectively: %+v", b)
	}
}

func TestCallOperandsCopiesArgsSlice(t *testing.T) {
	c := &Call{Fn: 0, Args: []OperandId{RegOperand(1), RegOperand(2)}}
	ops := c.Operands()
	ops[0] = RegOperand(77)
	if c.Args[0] == RegOperand(77) {
		t.Fatalf("Operands() must return a copy, not alias Args")
	}
	c.RewriteOperands(func(o OperandId) OperandId { return RegOperand(100) })
	if c.Args[0] != RegOperand(100) || c.Args[1] != RegOperand(100) {
		t.Fatalf("RewriteOperands must mutate Args in place: %+v", c.Args)
	}
}

func TestSwitchOperandsOnlyExposesExpr(t *testing.T) {
	label := ConstantId(4)
	s := &Switch{Expr: RegOperand(5), Cases: []*ConstantId{&label, nil}}
	ops := s.Operands()
	if len(ops) != 1 || ops[0] != RegOperand(5) {
		t.Fatalf("Switch.Operands() should expose only Expr, got %+v", ops)
	}
}

func TestIsBranchClassifiesTerminators(t *testing.T) {
	branching := []OpCode{&Discard{}, &Return{}, &Break{}, &Continue{}, &Passthrough{},
		&NextBlock{}, &Merge{}, &If{}, &Loop{}, &DoLoop{}, &LoopIf{}, &Switch{}}
	for _, op := range branching {
		if !op.IsBranch() {
			t.Errorf("%s should be a branch", op.OpName())
		}
	}
	nonBranching := []OpCode{&Load{}, &Store{}, &Alias{}, &Call{}, &MergeInput{}, &Unary{}, &Binary{}}
	for _, op := range nonBranching {
		if op.IsBranch() {
			t.Errorf("%s should not be a branch", op.OpName())
		}
	}
}

func TestRegisterArenaNewAndGet(t *testing.T) {
	regs := NewRegisterArena()
	r := regs.New(&Load{Ptr: RegOperand(0)}, TypeFloat, Medium)
	if r.Id != 0 {
		t.Fatalf("first register id should be 0, got %d", r.Id)
	}
	if regs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", regs.Len())
	}
	if regs.Get(0).Result.Type != TypeFloat {
		t.Fatalf("stored instruction has wrong type")
	}
}

func TestReplaceInstructionPopsTrailingSlot(t *testing.T) {
	regs := NewRegisterArena()
	regs.New(&Load{}, TypeFloat, Medium)  // r0, to be replaced
	regs.New(&Store{}, TypeVoid, Medium)  // r1
	regs.New(&Binary{Op: OpAdd}, TypeFloat, Medium) // r2, moved into r0, then popped

	regs.ReplaceInstruction(0, 2)
	if regs.Len() != 2 {
		t.Fatalf("ReplaceInstruction should pop the vacated trailing slot, Len() = %d", regs.Len())
	}
	if _, ok := regs.Get(0).Op.(*Binary); !ok {
		t.Fatalf("r0 should now hold the moved Binary instruction")
	}
	if regs.Get(0).Result.Id != 0 {
		t.Fatalf("moved instruction's Result.Id must be patched to the new slot")
	}
}

func TestAssignNewRegisterLeavesSentinel(t *testing.T) {
	regs := NewRegisterArena()
	orig := regs.New(&Binary{Op: OpAdd}, TypeFloat, High)
	newId := regs.AssignNewRegisterToInstruction(orig.Id)
	if newId == orig.Id {
		t.Fatalf("AssignNewRegisterToInstruction must allocate a fresh id")
	}
	if _, ok := regs.Get(orig.Id).Op.(*MergeInput); !ok {
		t.Fatalf("old slot must hold a MergeInput sentinel")
	}
	moved := regs.Get(newId)
	if _, ok := moved.Op.(*Binary); !ok {
		t.Fatalf("new slot must hold the original opcode")
	}
	if moved.Result.Type != TypeFloat || moved.Result.Precision != High {
		t.Fatalf("moved instruction must keep its original Result type/precision")
	}
}

func TestBlockInstructionVoidVsRegister(t *testing.T) {
	regs := NewRegisterArena()
	reg := regs.New(&Load{}, TypeFloat, Medium)

	voidBi := VoidInst(&Store{})
	if !voidBi.IsVoid() {
		t.Fatalf("VoidInst should be void")
	}
	if _, ok := voidBi.Op(regs).(*Store); !ok {
		t.Fatalf("void BlockInstruction.Op() should return its own opcode")
	}

	regBi := RegisterInst(reg.Id)
	if regBi.IsVoid() {
		t.Fatalf("RegisterInst should not be void")
	}
	if _, ok := regBi.Op(regs).(*Load); !ok {
		t.Fatalf("register BlockInstruction.Op() should resolve through the arena")
	}
}

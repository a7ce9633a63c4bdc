package ir

import "testing"

func TestIfWithDynamicCondBuildsMergeBlock(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cond := RegOperand(regs.New(&Load{}, TypeBool, Medium).Id)
	cfg.BeginIfTrueBlock(cond)
	trueVal := ConstOperand(ConstOneF)
	cfg.EndIfTrueBlock(&trueVal)

	cfg.BeginIfFalseBlock()
	falseVal := ConstOperand(ConstOneU)
	cfg.EndIfFalseBlock(&falseVal)

	result := cfg.EndIf(&TypedOperand{Type: TypeFloat, Precision: Medium})
	if result == nil || !result.Id.IsRegister() {
		t.Fatalf("EndIf with a dynamic cond should produce a fresh merge register, got %+v", result)
	}
	if header.Block1 == nil || header.Block2 == nil || header.MergeBlock == nil {
		t.Fatalf("header missing wired sub-blocks: %+v", header)
	}
	if _, ok := header.Terminator.(*If); !ok {
		t.Fatalf("header terminator should remain If, got %T", header.Terminator)
	}
	if header.Block1.Terminator.(*Merge).Val == nil || *header.Block1.Terminator.(*Merge).Val != trueVal {
		t.Fatalf("true branch should auto-close with Merge(trueVal)")
	}
}

func TestIfWithConstantTrueCondCollapses(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cfg.BeginIfTrueBlock(ConstOperand(ConstTrue))
	trueVal := ConstOperand(ConstOneF)
	cfg.EndIfTrueBlock(&trueVal)
	cfg.BeginIfFalseBlock()
	falseVal := ConstOperand(ConstOneU)
	cfg.EndIfFalseBlock(&falseVal)

	result := cfg.EndIf(&TypedOperand{Type: TypeFloat, Precision: Medium})
	if result == nil || result.Id != trueVal {
		t.Fatalf("constant-true If should collapse to the true branch's value, got %+v", result)
	}
	if header.Block1 != nil || header.Block2 != nil || header.MergeBlock != nil {
		t.Fatalf("collapsed header must not retain If's sub-block slots: %+v", header)
	}
	if header.Terminator != nil {
		t.Fatalf("collapsed header with a dissolved Merge should stay open (nil terminator), got %T", header.Terminator)
	}
}

func TestIfWithConstantFalseCondCollapsesToElse(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)

	cfg.BeginIfTrueBlock(ConstOperand(ConstFalse))
	trueVal := ConstOperand(ConstOneF)
	cfg.EndIfTrueBlock(&trueVal)
	cfg.BeginIfFalseBlock()
	falseVal := ConstOperand(ConstOneU)
	cfg.EndIfFalseBlock(&falseVal)

	result := cfg.EndIf(&TypedOperand{Type: TypeFloat, Precision: Medium})
	if result == nil || result.Id != falseVal {
		t.Fatalf("constant-false If should collapse to the false branch's value, got %+v", result)
	}
}

func TestIfPropagatesReturnThroughCollapse(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cfg.BeginIfTrueBlock(ConstOperand(ConstTrue))
	retVal := ConstOperand(ConstOneF)
	cfg.Terminate(&Return{Val: &retVal})
	cfg.EndIfTrueBlock(nil)
	cfg.BeginIfFalseBlock()
	cfg.EndIfFalseBlock(nil)

	cfg.EndIf(nil)
	if _, ok := header.Terminator.(*Return); !ok {
		t.Fatalf("collapsed header should inherit the true branch's Return, got %T", header.Terminator)
	}
	if !header.DeadCode {
		t.Fatalf("header should become dead code after inheriting a Return terminator")
	}
}

func TestLoopErasedWhenConditionFoldsFalse(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cfg.BeginLoopCondition()
	cfg.EndLoopCondition(ConstOperand(ConstFalse))
	cfg.EndLoopContinue()
	cfg.EndLoop()

	if header.Terminator != nil || header.LoopCondition != nil || header.Block1 != nil {
		t.Fatalf("a loop whose condition is constant-false must be erased entirely, got %+v", header)
	}
}

func TestLoopWithDynamicConditionBuildsMergeBlock(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cond := RegOperand(regs.New(&Load{}, TypeBool, Medium).Id)
	cfg.BeginLoopCondition()
	cfg.EndLoopCondition(cond)
	cfg.EndLoopContinue()
	cfg.EndLoop()

	if _, ok := header.Terminator.(*Loop); !ok {
		t.Fatalf("header terminator should be Loop, got %T", header.Terminator)
	}
	if header.LoopCondition == nil || header.Block1 == nil || header.Block2 == nil || header.MergeBlock == nil {
		t.Fatalf("loop header missing a wired sub-block: %+v", header)
	}
	if _, ok := header.LoopCondition.Terminator.(*LoopIf); !ok {
		t.Fatalf("condition block should terminate with LoopIf, got %T", header.LoopCondition.Terminator)
	}
}

func TestDoLoopNeverErasedOnConstantFalse(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	cfg.BeginDoLoop()
	cfg.BeginDoLoopCondition()
	cfg.EndDoLoop(ConstOperand(ConstFalse))

	if _, ok := header.Terminator.(*DoLoop); !ok {
		t.Fatalf("a do-loop must survive a constant-false condition (body runs once), got %T", header.Terminator)
	}
	if header.Block1 == nil || header.LoopCondition == nil || header.MergeBlock == nil {
		t.Fatalf("do-loop header missing a wired sub-block: %+v", header)
	}
}

func TestSwitchWithConstantExprCollapsesToMatchingCase(t *testing.T) {
	regs := NewRegisterArena()
	consts := NewConstantArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	label := consts.Int(TypeInt, 1)
	expr := ConstOperand(consts.Int(TypeInt, 1))

	cfg.BeginSwitch(expr)
	cfg.BeginCase(label)
	cfg.EndCase()
	cfg.BeginDefault()
	cfg.EndCase()
	cfg.EndSwitch()

	if header.Terminator != nil {
		t.Fatalf("collapsed switch with an empty matching case should fall through (nil terminator), got %T", header.Terminator)
	}
	if header.CaseBlocks != nil {
		t.Fatalf("collapsed switch must not retain the Switch terminator's case-block slots")
	}
}

func TestSwitchWithNoMatchingCaseErases(t *testing.T) {
	regs := NewRegisterArena()
	consts := NewConstantArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	label := consts.Int(TypeInt, 1)
	expr := ConstOperand(consts.Int(TypeInt, 2))

	cfg.BeginSwitch(expr)
	cfg.BeginCase(label)
	cfg.EndCase()
	cfg.EndSwitch()

	if header.Terminator != nil {
		t.Fatalf("a switch with no matching case and no default must erase entirely, got %T", header.Terminator)
	}
}

func TestSwitchWithDynamicExprBuildsRealSwitch(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	header := cfg.Current()

	expr := RegOperand(regs.New(&Load{}, TypeInt, Medium).Id)
	cfg.BeginSwitch(expr)
	cfg.BeginCase(ConstantId(0))
	cfg.EndCase() // no explicit terminator -> Passthrough
	cfg.BeginDefault()
	cfg.EndCase()
	cfg.EndSwitch()

	sw, ok := header.Terminator.(*Switch)
	if !ok {
		t.Fatalf("header terminator should be Switch, got %T", header.Terminator)
	}
	if len(sw.Cases) != 2 || len(header.CaseBlocks) != 2 {
		t.Fatalf("switch should retain both cases, got %d labels / %d blocks", len(sw.Cases), len(header.CaseBlocks))
	}
	if _, ok := header.CaseBlocks[0].Terminator.(*Passthrough); !ok {
		t.Fatalf("first case should stay Passthrough (falls into the next case)")
	}
	if _, ok := header.CaseBlocks[1].Terminator.(*Break); !ok {
		t.Fatalf("EndSwitch must promote the last case's Passthrough to Break, got %T", header.CaseBlocks[1].Terminator)
	}
	if header.MergeBlock == nil {
		t.Fatalf("a real switch must build a merge block")
	}
}

func TestTerminateIsNoOpOnDeadBlock(t *testing.T) {
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	cfg.Terminate(&Discard{})
	if !cfg.Current().DeadCode {
		t.Fatalf("Discard should mark the block dead")
	}
	cfg.Terminate(&Return{})
	if _, ok := cfg.Current().Terminator.(*Discard); !ok {
		t.Fatalf("Terminate must be a no-op once a block is already dead, got %T", cfg.Current().Terminator)
	}
}

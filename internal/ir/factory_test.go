package ir

import (
	"math"
	"testing"
)

func newTestFactory() (*Factory, *TypeArena, *ConstantArena, *RegisterArena, *CFGBuilder) {
	types := NewTypeArena()
	consts := NewConstantArena()
	regs := NewRegisterArena()
	cfg := NewCFGBuilder(regs)
	return NewFactory(types, consts, regs, cfg), types, consts, regs, cfg
}

func constFloat(consts *ConstantArena, v float32) TypedOperand {
	return TypedOperand{Id: ConstOperand(consts.Float(TypeFloat, v)), Type: TypeFloat, Precision: NotApplicable}
}

func TestBinaryConstantFolding(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	l := constFloat(consts, 2)
	r := constFloat(consts, 3)
	result := f.Binary(OpAdd, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("2+3 should fold to a constant, got %+v", result)
	}
	got := consts.Get(result.Id.Constant).Value.F
	if got != 5 {
		t.Fatalf("2+3 folded to %v, want 5", got)
	}
}

// TestIntDivByZeroSaturates: §4.1.3/§7 saturate an integer div-by-zero to
// MAX rather than declining to fold (instruction.rs's
// checked_div(...).unwrap_or(i32::MAX)).
func TestIntDivByZeroSaturates(t *testing.T) {
	f, _, consts, regs, _ := newTestFactory()
	l := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 7)), Type: TypeInt, Precision: NotApplicable}
	r := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 0)), Type: TypeInt, Precision: NotApplicable}
	before := regs.Len()
	result := f.Binary(OpDiv, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("int division by zero should still fold (saturating), got %+v", result)
	}
	if got := consts.Get(result.Id.Constant).Value.I; got != math.MaxInt32 {
		t.Fatalf("7/0 should saturate to MaxInt32, got %v", got)
	}
	if regs.Len() != before {
		t.Fatalf("a saturated fold must not allocate a register")
	}
}

// TestIntModByZeroSaturatesToZero mirrors the div case for IMod (§4.1.3).
func TestIntModByZeroSaturatesToZero(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	l := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 7)), Type: TypeInt, Precision: NotApplicable}
	r := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 0)), Type: TypeInt, Precision: NotApplicable}
	result := f.Binary(OpIMod, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("int modulo by zero should still fold (saturating), got %+v", result)
	}
	if got := consts.Get(result.Id.Constant).Value.I; got != 0 {
		t.Fatalf("7%%0 should saturate to 0, got %v", got)
	}
}

func TestFloatDivByZeroFoldsToIEEE754Infinity(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	l := constFloat(consts, 2)
	r := constFloat(consts, 0)
	result := f.Binary(OpDiv, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("float division by zero should fold via host IEEE-754 semantics, got %+v", result)
	}
	got := consts.Get(result.Id.Constant).Value.F
	if !math.IsInf(float64(got), 1) {
		t.Fatalf("2.0/0.0 should fold to +Inf, got %v", got)
	}
}

func TestPeepholeAddZero(t *testing.T) {
	f, types, consts, regs, cfg := newTestFactory()
	x := f.emit(&Load{}, TypeFloat, Medium) // stand-in for a non-constant value
	_ = types
	zero := constFloat(consts, 0)
	before := regs.Len()
	result := f.Binary(OpAdd, x, zero)
	if result.Id != x.Id {
		t.Fatalf("x+0 should fold to x unchanged, got %+v", result)
	}
	if regs.Len() != before {
		t.Fatalf("peephole rewrite must not allocate a new register")
	}
	_ = cfg
}

func TestPeepholeMulOne(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	x := f.emit(&Load{}, TypeFloat, Medium)
	one := constFloat(consts, 1)
	result := f.Binary(OpMul, x, one)
	if result.Id != x.Id {
		t.Fatalf("x*1 should fold to x, got %+v", result)
	}
}

func TestDoubleNegationCancels(t *testing.T) {
	f, _, _, regs, _ := newTestFactory()
	x := f.emit(&Load{}, TypeFloat, Medium)
	negOnce := f.Unary(OpNegate, x)
	before := regs.Len()
	negTwice := f.Unary(OpNegate, negOnce)
	if negTwice.Id != x.Id {
		t.Fatalf("--x should cancel back to x, got %+v", negTwice)
	}
	if regs.Len() != before {
		t.Fatalf("cancellation must not allocate")
	}
}

func TestUnaryNegateConstantFolds(t *testing.T) {
	f, _, consts, regs, _ := newTestFactory()
	x := constFloat(consts, 3)
	before := regs.Len()
	result := f.Unary(OpNegate, x)
	if !result.Id.IsConstant() {
		t.Fatalf("negating a constant should fold, got %+v", result)
	}
	if got := consts.Get(result.Id.Constant).Value.F; got != -3 {
		t.Fatalf("-3.0 folded to %v, want -3", got)
	}
	if regs.Len() != before {
		t.Fatalf("constant unary fold must not allocate a register")
	}
}

func TestShiftSaturatesOnOversizedRHS(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	l := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 1)), Type: TypeInt}
	r := TypedOperand{Id: ConstOperand(consts.Int(TypeInt, 99)), Type: TypeInt}
	result := f.Binary(OpBitShiftLeft, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("shift with constant operands should fold")
	}
	if consts.Get(result.Id.Constant).Value.I != 0 {
		t.Fatalf("oversized shift must saturate to 0")
	}
}

// TestCompositeConstantFoldingIsComponentwise exercises §4.1.3's recursion
// into Composite operands: vec3(1,2,3) + vec3(4,5,6) must fold to the
// composite constant vec3(5,7,9), not emit a Binary register.
func TestCompositeConstantFoldingIsComponentwise(t *testing.T) {
	f, _, consts, regs, _ := newTestFactory()
	mk := func(a, b, c float32) TypedOperand {
		elems := []ConstantId{
			consts.Float(TypeFloat, a),
			consts.Float(TypeFloat, b),
			consts.Float(TypeFloat, c),
		}
		return TypedOperand{Id: ConstOperand(consts.Composite(TypeVec3, elems)), Type: TypeVec3, Precision: NotApplicable}
	}
	l := mk(1, 2, 3)
	r := mk(4, 5, 6)
	before := regs.Len()
	result := f.Binary(OpAdd, l, r)
	if !result.Id.IsConstant() {
		t.Fatalf("vec3+vec3 of constants should fold to a composite constant, got %+v", result)
	}
	if regs.Len() != before {
		t.Fatalf("composite constant fold must not allocate a register")
	}
	got := consts.Get(result.Id.Constant).Value.Composite
	want := []float32{5, 7, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %d components, got %d", len(want), len(got))
	}
	for i, w := range want {
		if g := consts.Get(got[i]).Value.F; g != w {
			t.Fatalf("component %d: got %v, want %v", i, g, w)
		}
	}
}

// TestCompositeScalarBroadcastFolds covers the scalar-broadcast half of
// §4.1.3's composite folding: vec3(1,2,3) * 2.0 folds componentwise with
// the scalar broadcast across every element.
func TestCompositeScalarBroadcastFolds(t *testing.T) {
	f, _, consts, _, _ := newTestFactory()
	elems := []ConstantId{
		consts.Float(TypeFloat, 1),
		consts.Float(TypeFloat, 2),
		consts.Float(TypeFloat, 3),
	}
	vec := TypedOperand{Id: ConstOperand(consts.Composite(TypeVec3, elems)), Type: TypeVec3, Precision: NotApplicable}
	scalar := constFloat(consts, 2)
	result := f.Binary(OpVectorTimesScalar, vec, scalar)
	if !result.Id.IsConstant() {
		t.Fatalf("vec3*scalar of constants should fold, got %+v", result)
	}
	got := consts.Get(result.Id.Constant).Value.Composite
	want := []float32{2, 4, 6}
	for i, w := range want {
		if g := consts.Get(got[i]).Value.F; g != w {
			t.Fatalf("component %d: got %v, want %v", i, g, w)
		}
	}
}

func TestAccessVsExtractDispatch(t *testing.T) {
	f, types, _, _, _ := newTestFactory()
	vecVal := f.emit(&Load{}, TypeVec4, Medium)
	extracted := f.VectorComponent(vecVal, 0, TypeFloat)
	if _, isPtr := types.IsPointer(extracted.Type); isPtr {
		t.Fatalf("extracting from a value should produce a value, not a pointer")
	}

	ptrType := types.PointerTo(TypeVec4)
	vecPtr := TypedOperand{Id: RegOperand(9999), Type: ptrType}
	accessed := f.VectorComponent(vecPtr, 0, TypeFloat)
	pointee, isPtr := types.IsPointer(accessed.Type)
	if !isPtr || pointee != TypeFloat {
		t.Fatalf("accessing through a pointer should produce Pointer(float), got type %d", accessed.Type)
	}
}

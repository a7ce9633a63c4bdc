package ir

import "testing"

func TestOperandIdConstructors(t *testing.T) {
	r := RegOperand(RegisterId(3))
	if !r.IsRegister() || r.IsConstant() || r.IsVariable() {
		t.Fatalf("RegOperand kind wrong: %+v", r)
	}
	if r.String() != "r3" {
		t.Fatalf("String() = %q, want r3", r.String())
	}

	c := ConstOperand(ConstantId(5))
	if !c.IsConstant() || c.String() != "c5" {
		t.Fatalf("ConstOperand wrong: %+v", c)
	}

	v := VarOperand(VariableId(7))
	if !v.IsVariable() || v.String() != "v7" {
		t.Fatalf("VarOperand wrong: %+v", v)
	}
}

func TestPrecisionLattice(t *testing.T) {
	cases := []struct {
		a, b, want Precision
	}{
		{Low, Medium, Medium},
		{Medium, High, High},
		{Low, High, High},
		{NotApplicable, Low, Low},
		{NotApplicable, NotApplicable, NotApplicable},
	}
	for _, c := range cases {
		if got := higher(c.a, c.b); got != c.want {
			t.Errorf("higher(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
		if got := higher(c.b, c.a); got != c.want {
			t.Errorf("higher(%v, %v) = %v, want %v (commutative)", c.b, c.a, got, c.want)
		}
	}
}

func TestFoldPrecision(t *testing.T) {
	got := foldPrecision([]Precision{Low, Medium, NotApplicable, Low})
	if got != Medium {
		t.Fatalf("foldPrecision = %v, want Medium", got)
	}
}

func TestInvariantPanicsOnFalse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("invariant(false, ...) did not panic")
		}
	}()
	invariant(false, "boom %d", 1)
}

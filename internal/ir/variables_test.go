package ir

import "testing"

func TestVariableArenaAppendAndGet(t *testing.T) {
	a := NewVariableArena()
	types := NewTypeArena()
	ptrType := types.PointerTo(TypeFloat)

	id := a.New(Variable{
		Name:       "foo",
		NameSource: ShaderInterface,
		Type:       ptrType,
		Precision:  Medium,
		Scope:      Scope{Kind: ScopeGlobal},
	})
	if id != 0 {
		t.Fatalf("first variable id should be 0, got %d", id)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}

	got := a.Get(id)
	if got.Name != "foo" || got.Type != ptrType {
		t.Fatalf("Get() returned wrong variable: %+v", got)
	}

	second := a.New(Variable{Name: "bar", Type: ptrType, Scope: Scope{Kind: ScopeLocal}})
	if second != 1 {
		t.Fatalf("second variable id should be 1, got %d", second)
	}
}

func TestVariableArenaOutOfRangeGetPanics(t *testing.T) {
	a := NewVariableArena()
	defer func() {
		if recover() == nil {
			t.Fatal("Get() on an empty arena should panic")
		}
	}()
	a.Get(0)
}

func TestScopeKindsAreDistinguishable(t *testing.T) {
	block := NewBlock()
	local := Scope{Kind: ScopeLocal, Block: block}
	param := Scope{Kind: ScopeFunctionParam, Function: FunctionId(2)}

	if local.Kind == param.Kind {
		t.Fatalf("ScopeLocal and ScopeFunctionParam must be distinct")
	}
	if local.Block != block {
		t.Fatalf("local scope must keep its owning block")
	}
	if param.Function != FunctionId(2) {
		t.Fatalf("param scope must keep its owning function")
	}
}

func TestDecorationPayload(t *testing.T) {
	d := Decoration{Kind: DecLocation, N: 3}
	if d.Kind != DecLocation || d.N != 3 {
		t.Fatalf("Decoration fields not round-tripped: %+v", d)
	}
}

package ir

import "testing"

func TestMatrixTypeIdOrdering(t *testing.T) {
	if MatrixTypeId(2, 2) != TypeMat2x2 {
		t.Fatalf("mat2x2 should be the first matrix id")
	}
	if MatrixTypeId(4, 4) != TypeMat4x4 {
		t.Fatalf("mat4x4 should be the last matrix id")
	}
	if MatrixTypeId(3, 2) != TypeMat2x2+3 {
		t.Fatalf("mat3x2 id wrong: got %d want %d", MatrixTypeId(3, 2), TypeMat2x2+3)
	}
}

func TestVecTypeId(t *testing.T) {
	if VecTypeId(BasicFloat, 2) != TypeVec2 {
		t.Fatalf("vec2 wrong")
	}
	if VecTypeId(BasicInt, 4) != TypeIVec4 {
		t.Fatalf("ivec4 wrong")
	}
	if VecTypeId(BasicBool, 3) != TypeBVec3 {
		t.Fatalf("bvec3 wrong")
	}
}

func TestTypeArenaInterning(t *testing.T) {
	a := NewTypeArena()

	p1 := a.PointerTo(TypeFloat)
	p2 := a.PointerTo(TypeFloat)
	if p1 != p2 {
		t.Fatalf("PointerTo not interned: %d != %d", p1, p2)
	}

	arr1 := a.SizedArray(TypeInt, 4)
	arr2 := a.SizedArray(TypeInt, 4)
	if arr1 != arr2 {
		t.Fatalf("SizedArray not interned")
	}
	arr3 := a.SizedArray(TypeInt, 5)
	if arr3 == arr1 {
		t.Fatalf("different-length arrays must not collide")
	}

	s1 := a.NewStruct("Foo", []StructField{{Name: "x", Type: TypeFloat}}, StructPlain)
	s2 := a.NewStruct("Foo", []StructField{{Name: "x", Type: TypeFloat}}, StructPlain)
	if s1 == s2 {
		t.Fatalf("struct types must never be interned")
	}
}

func TestPointerToPointerPanics(t *testing.T) {
	a := NewTypeArena()
	p := a.PointerTo(TypeFloat)
	defer func() {
		if recover() == nil {
			t.Fatal("PointerTo(Pointer(_)) did not panic")
		}
	}()
	a.PointerTo(p)
}

func TestDerefAndMaybePointerWrap(t *testing.T) {
	a := NewTypeArena()
	p := a.PointerTo(TypeFloat)
	if a.Deref(p) != TypeFloat {
		t.Fatalf("Deref(Pointer(float)) != float")
	}
	if a.Deref(TypeFloat) != TypeFloat {
		t.Fatalf("Deref(float) should be a no-op")
	}
	if a.MaybePointerWrap(TypeFloat, true) != p {
		t.Fatalf("MaybePointerWrap(true) should reproduce the pointer type")
	}
	if a.MaybePointerWrap(TypeFloat, false) != TypeFloat {
		t.Fatalf("MaybePointerWrap(false) should be a no-op")
	}
}

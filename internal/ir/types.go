package ir

import "fmt"

// BasicType enumerates the scalar kinds a Scalar type or constant can hold.
type BasicType uint8

const (
	BasicVoid BasicType = iota
	BasicFloat
	BasicInt
	BasicUint
	BasicBool
	BasicAtomicCounter
	BasicYuvCsc
)

// ImageBasicType is the sampled/storage type of an image (float, int, uint).
type ImageBasicType uint8

const (
	ImageFloat ImageBasicType = iota
	ImageInt
	ImageUint
)

// ImageDimension is the "ImageType" sub-enum from §3.2 — renamed to avoid
// colliding with the outer Image Type variant.
type ImageDimension uint8

const (
	Image2D ImageDimension = iota
	Image3D
	ImageCube
	Image2DArray
	ImageCubeArray
	ImageBuffer
	ImageRect
	Image1D
)

// StructKind distinguishes an ordinary struct from an interface block
// (uniform/buffer/in/out block), per §3.2.
type StructKind uint8

const (
	StructPlain StructKind = iota
	StructInterfaceBlock
)

// StructField is one member of a Struct type.
type StructField struct {
	Name string
	Type TypeId
}

// Type is the sum type from §3.2. Implementations are small, comparable
// value-ish structs (pointers into the slice are fine since Struct identity
// is never interned) dispatched through a marker method, the same pattern
// the teacher uses for its Instruction/Terminator/Effect families.
type Type interface {
	isType()
	String() string
}

type Scalar struct{ Basic BasicType }

func (Scalar) isType() {}
func (s Scalar) String() string {
	switch s.Basic {
	case BasicVoid:
		return "void"
	case BasicFloat:
		return "float"
	case BasicInt:
		return "int"
	case BasicUint:
		return "uint"
	case BasicBool:
		return "bool"
	case BasicAtomicCounter:
		return "atomic_uint"
	case BasicYuvCsc:
		return "yuvCscStandardEXT"
	default:
		return "?scalar"
	}
}

type Vector struct {
	Elem TypeId
	N    uint8 // 2, 3, or 4
}

func (Vector) isType() {}
func (v Vector) String() string { return fmt.Sprintf("vec%d#%d", v.N, v.Elem) }

type Matrix struct {
	ColVec TypeId // the Vector type of one column
	Cols   uint8  // 2, 3, or 4
}

func (Matrix) isType() {}
func (m Matrix) String() string { return fmt.Sprintf("mat%dx#%d", m.Cols, m.ColVec) }

type Array struct {
	Elem TypeId
	N    uint32
}

func (Array) isType() {}
func (a Array) String() string { return fmt.Sprintf("array[%d]#%d", a.N, a.Elem) }

type UnsizedArray struct{ Elem TypeId }

func (UnsizedArray) isType() {}
func (a UnsizedArray) String() string { return fmt.Sprintf("array[]#%d", a.Elem) }

type Image struct {
	Basic ImageBasicType
	Kind  ImageDimension
}

func (Image) isType() {}
func (i Image) String() string { return "image" }

type Struct struct {
	Name   string
	Fields []StructField
	Kind   StructKind
}

func (Struct) isType() {}
func (s Struct) String() string { return s.Name }

type Pointer struct{ Pointee TypeId }

func (Pointer) isType() {}
func (p Pointer) String() string { return fmt.Sprintf("ptr#%d", p.Pointee) }

// Predefined ids, guaranteed stable (§3.2). void .. yuv-csc, then
// vec2..bvec4 in consecutive order, then mat2..mat4 in
// (col-2)*3 + (row-2) order.
const (
	TypeVoid TypeId = iota
	TypeFloat
	TypeInt
	TypeUint
	TypeBool
	TypeAtomicCounter
	TypeYuvCsc

	TypeVec2
	TypeVec3
	TypeVec4
	TypeIVec2
	TypeIVec3
	TypeIVec4
	TypeUVec2
	TypeUVec3
	TypeUVec4
	TypeBVec2
	TypeBVec3
	TypeBVec4

	TypeMat2x2
	TypeMat2x3
	TypeMat2x4
	TypeMat3x2
	TypeMat3x3
	TypeMat3x4
	TypeMat4x2
	TypeMat4x3
	TypeMat4x4

	firstUserTypeId
)

// MatrixTypeId returns the predefined id of the mat<cols>x<rows> type,
// per the (col-2)*3 + (row-2) ordering from §3.2. cols and rows must be in
// {2,3,4}.
func MatrixTypeId(cols, rows uint8) TypeId {
	invariant(cols >= 2 && cols <= 4 && rows >= 2 && rows <= 4, "matrix dims out of range: %dx%d", cols, rows)
	return TypeMat2x2 + TypeId((cols-2)*3+(rows-2))
}

// VecTypeId returns the predefined id of the float/int/uint/bool vector of
// width n (2..4).
func VecTypeId(basic BasicType, n uint8) TypeId {
	invariant(n >= 2 && n <= 4, "vector width out of range: %d", n)
	base := TypeVec2
	switch basic {
	case BasicFloat:
		base = TypeVec2
	case BasicInt:
		base = TypeIVec2
	case BasicUint:
		base = TypeUVec2
	case BasicBool:
		base = TypeBVec2
	default:
		invariant(false, "no vector type for basic kind %v", basic)
	}
	return base + TypeId(n-2)
}

// interning keys for the structurally-interned type families (§3.2: image,
// array, pointer, and composite-constant types; struct types are never
// interned).
type arrayKey struct {
	elem TypeId
	n    uint32
}
type unsizedArrayKey struct{ elem TypeId }
type imageKey struct {
	basic ImageBasicType
	kind  ImageDimension
}
type pointerKey struct{ pointee TypeId }

// TypeArena is the append-mostly vector of Type values described by C1,
// together with the interning maps that keep image/array/pointer types
// structurally unique (§3.2, testable property 4).
type TypeArena struct {
	types        []Type
	arrayIntern  map[arrayKey]TypeId
	unsizedArray map[unsizedArrayKey]TypeId
	imageIntern  map[imageKey]TypeId
	ptrIntern    map[pointerKey]TypeId
}

// NewTypeArena builds a TypeArena pre-populated with the predefined ids.
func NewTypeArena() *TypeArena {
	a := &TypeArena{
		arrayIntern:  make(map[arrayKey]TypeId),
		unsizedArray: make(map[unsizedArrayKey]TypeId),
		imageIntern:  make(map[imageKey]TypeId),
		ptrIntern:    make(map[pointerKey]TypeId),
	}
	push := func(t Type) { a.types = append(a.types, t) }

	push(Scalar{BasicVoid})
	push(Scalar{BasicFloat})
	push(Scalar{BasicInt})
	push(Scalar{BasicUint})
	push(Scalar{BasicBool})
	push(Scalar{BasicAtomicCounter})
	push(Scalar{BasicYuvCsc})

	for _, basic := range []BasicType{BasicFloat, BasicInt, BasicUint, BasicBool} {
		for n := uint8(2); n <= 4; n++ {
			push(Vector{Elem: scalarIdOf(basic), N: n})
		}
	}

	for cols := uint8(2); cols <= 4; cols++ {
		for rows := uint8(2); rows <= 4; rows++ {
			push(Matrix{ColVec: VecTypeId(BasicFloat, rows), Cols: cols})
		}
	}

	invariant(TypeId(len(a.types)) == firstUserTypeId, "predefined type table size mismatch: got %d want %d", len(a.types), firstUserTypeId)
	return a
}

func scalarIdOf(b BasicType) TypeId {
	switch b {
	case BasicFloat:
		return TypeFloat
	case BasicInt:
		return TypeInt
	case BasicUint:
		return TypeUint
	case BasicBool:
		return TypeBool
	default:
		invariant(false, "no scalar id for basic kind %v", b)
		return TypeVoid
	}
}

func (a *TypeArena) Get(id TypeId) Type {
	invariant(int(id) < len(a.types), "type id %d out of range", id)
	return a.types[id]
}

func (a *TypeArena) Len() int { return len(a.types) }

func (a *TypeArena) push(t Type) TypeId {
	id := TypeId(len(a.types))
	a.types = append(a.types, t)
	return id
}

// Struct types are never interned: identity matters (§3.2).
func (a *TypeArena) NewStruct(name string, fields []StructField, kind StructKind) TypeId {
	return a.push(Struct{Name: name, Fields: fields, Kind: kind})
}

func (a *TypeArena) SizedArray(elem TypeId, n uint32) TypeId {
	key := arrayKey{elem, n}
	if id, ok := a.arrayIntern[key]; ok {
		return id
	}
	id := a.push(Array{Elem: elem, N: n})
	a.arrayIntern[key] = id
	return id
}

func (a *TypeArena) UnsizedArrayOf(elem TypeId) TypeId {
	key := unsizedArrayKey{elem}
	if id, ok := a.unsizedArray[key]; ok {
		return id
	}
	id := a.push(UnsizedArray{Elem: elem})
	a.unsizedArray[key] = id
	return id
}

func (a *TypeArena) ImageOf(basic ImageBasicType, kind ImageDimension) TypeId {
	key := imageKey{basic, kind}
	if id, ok := a.imageIntern[key]; ok {
		return id
	}
	id := a.push(Image{Basic: basic, Kind: kind})
	a.imageIntern[key] = id
	return id
}

// PointerTo returns the Pointer(pointee) type, interned, and enforces the
// no-pointer-to-pointer invariant from §3.2.
func (a *TypeArena) PointerTo(pointee TypeId) TypeId {
	if _, isPtr := a.Get(pointee).(Pointer); isPtr {
		invariant(false, "cannot build Pointer(Pointer(_)) from type %d", pointee)
	}
	key := pointerKey{pointee}
	if id, ok := a.ptrIntern[key]; ok {
		return id
	}
	id := a.push(Pointer{Pointee: pointee})
	a.ptrIntern[key] = id
	return id
}

// IsPointer reports whether id names a Pointer type, and if so its pointee.
func (a *TypeArena) IsPointer(id TypeId) (TypeId, bool) {
	if p, ok := a.Get(id).(Pointer); ok {
		return p.Pointee, true
	}
	return 0, false
}

// Deref returns the pointee of id if it is a pointer, else id unchanged.
func (a *TypeArena) Deref(id TypeId) TypeId {
	if pointee, ok := a.IsPointer(id); ok {
		return pointee
	}
	return id
}

// MaybePointerWrap returns PointerTo(elem) if wasPointer, else elem, which
// preserves pointer-ness across a projection (§4.1.1). The factory's
// projection methods call PointerTo themselves rather than this helper.
func (a *TypeArena) MaybePointerWrap(elem TypeId, wasPointer bool) TypeId {
	if wasPointer {
		return a.PointerTo(elem)
	}
	return elem
}

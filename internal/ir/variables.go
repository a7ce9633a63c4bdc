package ir

// NameSource governs output treatment (prefixing, disambiguation) for a
// variable's name (§3.4).
type NameSource uint8

const (
	ShaderInterface NameSource = iota
	AngleInternal
	Temporary
)

// ScopeKind is one of Global, Local (attached to a Block), or FunctionParam
// (attached to a Function's params), per §3.4.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeLocal
	ScopeFunctionParam
)

// Scope records where a variable lives. For ScopeLocal, Block is the owning
// *Block (set once the variable is appended to that block's declaration
// list); for ScopeFunctionParam, Function is the owning function id.
type Scope struct {
	Kind     ScopeKind
	Block    *Block
	Function FunctionId
}

// Decoration is the closed set of layout/qualifier attributes from §6.2.
type Decoration struct {
	Kind DecorationKind
	N    int32 // payload for Location/Index/Binding/Offset/InputAttachmentIndex/SpecConst/NumViews/Depth
}

type DecorationKind uint8

const (
	DecLocation DecorationKind = iota
	DecIndex
	DecBinding
	DecOffset
	DecInputAttachmentIndex
	DecSpecConst
	DecNumViews

	DecStorageUniform
	DecStorageBuffer
	DecStorageInput
	DecStorageOutput
	DecStorageInputOutput

	DecBlockShared
	DecBlockPacked
	DecBlockStd140
	DecBlockStd430

	DecMatrixPacking // column-major / row-major packing; N: 0=column,1=row

	DecImageInternalFormat

	DecInterpolationFlat
	DecInterpolationNoPerspective
	DecInterpolationSmooth
	DecInterpolationCentroid
	DecInterpolationSample

	DecCoherent
	DecVolatile
	DecRestrict
	DecReadOnly
	DecWriteOnly
	DecNonCoherent

	DecInvariant
	DecPrecise
	DecYUV
	DecRasterOrdered
	DecDepth
)

// Variable is (Name, TypeId, Precision, Decorations, built_in?, initializer?)
// per §3.4. The recorded Type is always Pointer(declared type), per the
// invariant in §3.2.
type Variable struct {
	Name         string
	NameSource   NameSource
	Type         TypeId // Pointer(declared type)
	Precision    Precision
	Decorations  []Decoration
	BuiltIn      *Builtin
	Initializer  *ConstantId
	Scope        Scope
}

// VariableArena is the append-only vector of variables indexed by
// VariableId (C1).
type VariableArena struct {
	variables []Variable
}

func NewVariableArena() *VariableArena { return &VariableArena{} }

func (a *VariableArena) Get(id VariableId) *Variable {
	invariant(int(id) < len(a.variables), "variable id %d out of range", id)
	return &a.variables[id]
}

func (a *VariableArena) New(v Variable) VariableId {
	id := VariableId(len(a.variables))
	a.variables = append(a.variables, v)
	return id
}

func (a *VariableArena) Len() int { return len(a.variables) }

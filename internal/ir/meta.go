package ir

// ShaderKind is the pipeline stage this IR was built for (§3.9).
type ShaderKind uint8

const (
	ShaderVertex ShaderKind = iota
	ShaderFragment
	ShaderCompute
	ShaderGeometry
	ShaderTessControl
	ShaderTessEvaluation
)

// Builtin is the closed built-in enumeration from §6.3/§3.9.
type Builtin uint8

const (
	BuiltinVertexID Builtin = iota
	BuiltinInstanceID
	BuiltinPosition
	BuiltinPointSize
	BuiltinFragCoord
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinSampleID
	BuiltinSampleMask
	BuiltinSamplePosition
	BuiltinNumWorkGroups
	BuiltinWorkGroupID
	BuiltinLocalInvocationID
	BuiltinGlobalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinTessCoord
	BuiltinTessLevelOuter
	BuiltinTessLevelInner
	BuiltinPrimitiveID
	BuiltinInvocationID
	BuiltinLayer
	BuiltinClipDistance
	BuiltinCullDistance
	BuiltinViewportIndex
	BuiltinPerVertexIn
	BuiltinPerVertexOut
)

// TessPrimitive / TessSpacing / TessOrdering / geometry primitive kinds
// configure the tcs/tes/gs stage qualifiers named in §6.3.
type TessPrimitive uint8

const (
	TessTriangles TessPrimitive = iota
	TessQuads
	TessIsolines
)

type TessSpacing uint8

const (
	SpacingEqual TessSpacing = iota
	SpacingFractionalEven
	SpacingFractionalOdd
)

type TessOrdering uint8

const (
	OrderingCW TessOrdering = iota
	OrderingCCW
)

type GeomPrimitiveIn uint8

const (
	GeomPoints GeomPrimitiveIn = iota
	GeomLines
	GeomLinesAdjacency
	GeomTriangles
	GeomTrianglesAdjacency
)

type GeomPrimitiveOut uint8

const (
	GeomOutPoints GeomPrimitiveOut = iota
	GeomOutLineStrip
	GeomOutTriangleStrip
)

// TessConfig holds the tcs/tes qualifiers named in §6.3.
type TessConfig struct {
	Primitive TessPrimitive
	Spacing   TessSpacing
	Ordering  TessOrdering
	PointMode bool
}

// GeomConfig holds the geometry-stage qualifiers named in §6.3.
type GeomConfig struct {
	PrimitiveIn  GeomPrimitiveIn
	PrimitiveOut GeomPrimitiveOut
	Invocations  int
	MaxVertices  int
}

// advancedBlendEquationNames enumerates the 15 KHR_blend_equation_advanced
// equations the spec names only by count (§6.3). Order is not
// load-bearing; it only drives All()/SetAll() and debug output.
var advancedBlendEquationNames = [15]string{
	"Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"ColorDodge", "ColorBurn", "HardLight", "SoftLight",
	"Difference", "Exclusion", "HSLHue", "HSLSaturation",
	"HSLColor", "HSLLuminosity",
}

// AdvancedBlendEquations is the 15-boolean set from §6.3.
type AdvancedBlendEquations struct {
	flags [15]bool
}

func (e *AdvancedBlendEquations) Get(i int) bool { return e.flags[i] }
func (e *AdvancedBlendEquations) Set(i int, v bool) { e.flags[i] = v }

// SetAll sets (or clears) every equation flag at once.
func (e *AdvancedBlendEquations) SetAll(v bool) {
	for i := range e.flags {
		e.flags[i] = v
	}
}

// All reports whether every equation flag is set.
func (e *AdvancedBlendEquations) All() bool {
	for _, v := range e.flags {
		if !v {
			return false
		}
	}
	return true
}

func (e *AdvancedBlendEquations) Names() [15]string { return advancedBlendEquationNames }

// Function is per-function metadata (name, params, return type); the
// function's entry block lives separately in IR.Entries so that a
// pass can borrow Meta mutably while iterating function entries (§5).
type Function struct {
	Name       string
	Params     []VariableId // FunctionParam-scoped variables, in order
	ReturnType TypeId
}

// FunctionArena is the append-only vector of function metadata indexed by
// FunctionId (C1).
type FunctionArena struct {
	functions []Function
}

func NewFunctionArena() *FunctionArena { return &FunctionArena{} }

func (a *FunctionArena) Get(id FunctionId) *Function {
	invariant(int(id) < len(a.functions), "function id %d out of range", id)
	return &a.functions[id]
}

func (a *FunctionArena) New(f Function) FunctionId {
	id := FunctionId(len(a.functions))
	a.functions = append(a.functions, f)
	return id
}

func (a *FunctionArena) Len() int { return len(a.functions) }

// Meta bundles every arena plus per-stage configuration, per §3.8.
type Meta struct {
	Types     *TypeArena
	Constants *ConstantArena
	Variables *VariableArena
	Functions *FunctionArena

	Main FunctionId

	ShaderKind             ShaderKind
	EarlyFragmentTests     bool
	AdvancedBlendEquations AdvancedBlendEquations
	TcsVertices            int
	Tess                   TessConfig
	Geom                   GeomConfig
}

// NewMeta builds an empty Meta with fresh arenas.
func NewMeta(kind ShaderKind) *Meta {
	return &Meta{
		Types:      NewTypeArena(),
		Constants:  NewConstantArena(),
		Variables:  NewVariableArena(),
		Functions:  NewFunctionArena(),
		ShaderKind: kind,
	}
}

// TypeOfConstant and TypeOfVariable return the recorded type of a constant
// or a variable; a register's type lives on its TypedRegister in the
// RegisterArena (opcodes.go).
func (m *Meta) TypeOfConstant(id ConstantId) TypeId { return m.Constants.Get(id).Type }
func (m *Meta) TypeOfVariable(id VariableId) TypeId { return m.Variables.Get(id).Type }

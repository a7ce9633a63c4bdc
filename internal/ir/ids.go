package ir

import "fmt"

// Five disjoint id spaces. Each is a dense, nonnegative integer handed out by
// pushing into the arena it indexes; once allocated, an id's meaning is
// stable for the lifetime of the IR except for the two narrow register
// rewrites on RegisterArena in opcodes.go.
type (
	TypeId     uint32
	ConstantId uint32
	VariableId uint32
	FunctionId uint32
	RegisterId uint32
)

// Precision mirrors GLSL-style precision qualifiers. NotApplicable is used
// for booleans, comparisons, and anywhere precision is meaningless.
type Precision uint8

const (
	NotApplicable Precision = iota
	Low
	Medium
	High
)

func (p Precision) String() string {
	switch p {
	case Low:
		return "lowp"
	case Medium:
		return "mediump"
	case High:
		return "highp"
	default:
		return "n/a"
	}
}

// higher implements the §4.1.2 precision lattice: High beats anything,
// Medium beats Low, NotApplicable is absorbed (treated as "other").
func higher(a, b Precision) Precision {
	if a == High || b == High {
		return High
	}
	if a == Medium || b == Medium {
		return Medium
	}
	if a == Low {
		return a
	}
	return b
}

// foldPrecision folds higher() over a sequence of precisions, as used by
// constructor result-precision derivation (§4.1.2).
func foldPrecision(ps []Precision) Precision {
	result := NotApplicable
	for _, p := range ps {
		result = higher(result, p)
	}
	return result
}

// OperandKind discriminates the tagged union an OperandId is over.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandConstant
	OperandVariable
)

// OperandId is a tagged union over {Register, Constant, Variable}, per §3.1.
// It is a small value type so it can be used as a map key (dealias
// substitution, duplicate-block remapping) and compared with ==.
type OperandId struct {
	Kind     OperandKind
	Register RegisterId
	Constant ConstantId
	Variable VariableId
}

func RegOperand(id RegisterId) OperandId  { return OperandId{Kind: OperandRegister, Register: id} }
func ConstOperand(id ConstantId) OperandId { return OperandId{Kind: OperandConstant, Constant: id} }
func VarOperand(id VariableId) OperandId  { return OperandId{Kind: OperandVariable, Variable: id} }

func (o OperandId) IsRegister() bool { return o.Kind == OperandRegister }
func (o OperandId) IsConstant() bool { return o.Kind == OperandConstant }
func (o OperandId) IsVariable() bool { return o.Kind == OperandVariable }

func (o OperandId) String() string {
	switch o.Kind {
	case OperandRegister:
		return fmt.Sprintf("r%d", o.Register)
	case OperandConstant:
		return fmt.Sprintf("c%d", o.Constant)
	case OperandVariable:
		return fmt.Sprintf("v%d", o.Variable)
	default:
		return "?"
	}
}

// TypedOperand carries (id, TypeId, Precision) per §3.1.
type TypedOperand struct {
	Id        OperandId
	Type      TypeId
	Precision Precision
}

// TypedId is an alias for TypedOperand used where the factory passes an
// existing typed value through unchanged (NoOp results, §4.1).
type TypedId = TypedOperand

// TypedRegister carries (RegisterId, TypeId, Precision) per §3.1. It is the
// result slot of every Instruction (§3.5).
type TypedRegister struct {
	Id        RegisterId
	Type      TypeId
	Precision Precision
}

func (t TypedRegister) Operand() TypedOperand {
	return TypedOperand{Id: RegOperand(t.Id), Type: t.Type, Precision: t.Precision}
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

package ir

// OpCode is the sum type from §6.1. Each opcode is its own small struct
// implementing this marker interface, the same "one concrete type per
// variant, dispatch through a method" shape the teacher uses for its own
// Instruction/Terminator/Effect families (internal/ir/effects.go in the
// teacher repo).
//
// Operands/RewriteOperands expose every OperandId an opcode references, in
// a stable order, so dealias.go and duplicate.go can rewrite operands
// generically instead of re-deriving a type switch per pass.
type OpCode interface {
	OpName() string
	IsBranch() bool
	Operands() []OperandId
	RewriteOperands(f func(OperandId) OperandId)
}

// ---- control flow / terminators (§3.6, §6.1) ----

type Discard struct{}

func (*Discard) OpName() string                               { return "Discard" }
func (*Discard) IsBranch() bool                                { return true }
func (*Discard) Operands() []OperandId                         { return nil }
func (*Discard) RewriteOperands(f func(OperandId) OperandId) {}

type Return struct{ Val *OperandId }

func (*Return) OpName() string { return "Return" }
func (*Return) IsBranch() bool  { return true }
func (r *Return) Operands() []OperandId {
	if r.Val == nil {
		return nil
	}
	return []OperandId{*r.Val}
}
func (r *Return) RewriteOperands(f func(OperandId) OperandId) {
	if r.Val != nil {
		v := f(*r.Val)
		r.Val = &v
	}
}

type Break struct{}

func (*Break) OpName() string                               { return "Break" }
func (*Break) IsBranch() bool                                { return true }
func (*Break) Operands() []OperandId                         { return nil }
func (*Break) RewriteOperands(f func(OperandId) OperandId) {}

type Continue struct{}

func (*Continue) OpName() string                               { return "Continue" }
func (*Continue) IsBranch() bool                                { return true }
func (*Continue) Operands() []OperandId                         { return nil }
func (*Continue) RewriteOperands(f func(OperandId) OperandId) {}

type Passthrough struct{}

func (*Passthrough) OpName() string                               { return "Passthrough" }
func (*Passthrough) IsBranch() bool                                { return true }
func (*Passthrough) Operands() []OperandId                         { return nil }
func (*Passthrough) RewriteOperands(f func(OperandId) OperandId) {}

type NextBlock struct{}

func (*NextBlock) OpName() string                               { return "NextBlock" }
func (*NextBlock) IsBranch() bool                                { return true }
func (*NextBlock) Operands() []OperandId                         { return nil }
func (*NextBlock) RewriteOperands(f func(OperandId) OperandId) {}

// Merge jumps to the innermost merge block, optionally providing the merge
// block's input (§3.6). After astify, Val is always nil (invariant 7b).
type Merge struct{ Val *OperandId }

func (*Merge) OpName() string { return "Merge" }
func (*Merge) IsBranch() bool  { return true }
func (m *Merge) Operands() []OperandId {
	if m.Val == nil {
		return nil
	}
	return []OperandId{*m.Val}
}
func (m *Merge) RewriteOperands(f func(OperandId) OperandId) {
	if m.Val != nil {
		v := f(*m.Val)
		m.Val = &v
	}
}

// If uses block1 (true) / block2 (false), merge in merge_block (§3.6).
type If struct{ Cond OperandId }

func (*If) OpName() string               { return "If" }
func (*If) IsBranch() bool                 { return true }
func (i *If) Operands() []OperandId        { return []OperandId{i.Cond} }
func (i *If) RewriteOperands(f func(OperandId) OperandId) { i.Cond = f(i.Cond) }

// Loop jumps initially to loop_condition (§3.6).
type Loop struct{}

func (*Loop) OpName() string                               { return "Loop" }
func (*Loop) IsBranch() bool                                { return true }
func (*Loop) Operands() []OperandId                         { return nil }
func (*Loop) RewriteOperands(f func(OperandId) OperandId) {}

// DoLoop jumps initially to block1 (the body); loop_condition holds the
// condition evaluated after the body (§3.6).
type DoLoop struct{}

func (*DoLoop) OpName() string                               { return "DoLoop" }
func (*DoLoop) IsBranch() bool                                { return true }
func (*DoLoop) Operands() []OperandId                         { return nil }
func (*DoLoop) RewriteOperands(f func(OperandId) OperandId) {}

// LoopIf terminates a loop_condition block: true -> body, false -> merge.
type LoopIf struct{ Cond OperandId }

func (*LoopIf) OpName() string        { return "LoopIf" }
func (*LoopIf) IsBranch() bool         { return true }
func (l *LoopIf) Operands() []OperandId { return []OperandId{l.Cond} }
func (l *LoopIf) RewriteOperands(f func(OperandId) OperandId) { l.Cond = f(l.Cond) }

// Switch's Cases are one-to-one with the owning Block's CaseBlocks; a nil
// entry marks the default case (§3.6).
type Switch struct {
	Expr  OperandId
	Cases []*ConstantId
}

func (*Switch) OpName() string           { return "Switch" }
func (*Switch) IsBranch() bool            { return true }
func (s *Switch) Operands() []OperandId   { return []OperandId{s.Expr} }
func (s *Switch) RewriteOperands(f func(OperandId) OperandId) { s.Expr = f(s.Expr) }

// ---- data movement ----

type Load struct{ Ptr OperandId }

func (*Load) OpName() string             { return "Load" }
func (*Load) IsBranch() bool              { return false }
func (l *Load) Operands() []OperandId     { return []OperandId{l.Ptr} }
func (l *Load) RewriteOperands(f func(OperandId) OperandId) { l.Ptr = f(l.Ptr) }

type Store struct{ Ptr, Val OperandId }

func (*Store) OpName() string         { return "Store" }
func (*Store) IsBranch() bool          { return false }
func (s *Store) Operands() []OperandId { return []OperandId{s.Ptr, s.Val} }
func (s *Store) RewriteOperands(f func(OperandId) OperandId) {
	s.Ptr = f(s.Ptr)
	s.Val = f(s.Val)
}

// Alias is resolved away entirely by the dealias pass (C7); Id is the
// register/operand the aliased register stands for.
type Alias struct{ Id OperandId }

func (*Alias) OpName() string         { return "Alias" }
func (*Alias) IsBranch() bool          { return false }
func (a *Alias) Operands() []OperandId { return []OperandId{a.Id} }
func (a *Alias) RewriteOperands(f func(OperandId) OperandId) { a.Id = f(a.Id) }

type Call struct {
	Fn   FunctionId
	Args []OperandId
}

func (*Call) OpName() string         { return "Call" }
func (*Call) IsBranch() bool          { return false }
func (c *Call) Operands() []OperandId { return append([]OperandId(nil), c.Args...) }
func (c *Call) RewriteOperands(f func(OperandId) OperandId) {
	for i, a := range c.Args {
		c.Args[i] = f(a)
	}
}

// MergeInput is a sentinel opcode occupying the register arena slot
// allocated for a block's merge `input` (§6.1); it carries no operands and
// is never itself executed — it exists purely so RegisterId lookups for a
// merge input succeed before astify rewrites it into a real Load (§4.6.3).
type MergeInput struct{}

func (*MergeInput) OpName() string                               { return "MergeInput" }
func (*MergeInput) IsBranch() bool                                { return false }
func (*MergeInput) Operands() []OperandId                         { return nil }
func (*MergeInput) RewriteOperands(f func(OperandId) OperandId) {}

// ---- composite projection: value form (Extract*) and pointer form
// (Access*), §4.1.5 ----

type ExtractVectorComponent struct {
	V OperandId
	K uint32
}

func (*ExtractVectorComponent) OpName() string         { return "ExtractVectorComponent" }
func (*ExtractVectorComponent) IsBranch() bool          { return false }
func (e *ExtractVectorComponent) Operands() []OperandId { return []OperandId{e.V} }
func (e *ExtractVectorComponent) RewriteOperands(f func(OperandId) OperandId) { e.V = f(e.V) }

type ExtractVectorComponentMulti struct {
	V OperandId
	K []uint32
}

func (*ExtractVectorComponentMulti) OpName() string         { return "ExtractVectorComponentMulti" }
func (*ExtractVectorComponentMulti) IsBranch() bool          { return false }
func (e *ExtractVectorComponentMulti) Operands() []OperandId { return []OperandId{e.V} }
func (e *ExtractVectorComponentMulti) RewriteOperands(f func(OperandId) OperandId) { e.V = f(e.V) }

type ExtractVectorComponentDynamic struct{ V, K OperandId }

func (*ExtractVectorComponentDynamic) OpName() string { return "ExtractVectorComponentDynamic" }
func (*ExtractVectorComponentDynamic) IsBranch() bool  { return false }
func (e *ExtractVectorComponentDynamic) Operands() []OperandId {
	return []OperandId{e.V, e.K}
}
func (e *ExtractVectorComponentDynamic) RewriteOperands(f func(OperandId) OperandId) {
	e.V = f(e.V)
	e.K = f(e.K)
}

type ExtractMatrixColumn struct {
	M OperandId
	K uint32
}

func (*ExtractMatrixColumn) OpName() string         { return "ExtractMatrixColumn" }
func (*ExtractMatrixColumn) IsBranch() bool          { return false }
func (e *ExtractMatrixColumn) Operands() []OperandId { return []OperandId{e.M} }
func (e *ExtractMatrixColumn) RewriteOperands(f func(OperandId) OperandId) { e.M = f(e.M) }

type ExtractStructField struct {
	S OperandId
	K uint32
}

func (*ExtractStructField) OpName() string         { return "ExtractStructField" }
func (*ExtractStructField) IsBranch() bool          { return false }
func (e *ExtractStructField) Operands() []OperandId { return []OperandId{e.S} }
func (e *ExtractStructField) RewriteOperands(f func(OperandId) OperandId) { e.S = f(e.S) }

type ExtractArrayElement struct{ A, K OperandId }

func (*ExtractArrayElement) OpName() string         { return "ExtractArrayElement" }
func (*ExtractArrayElement) IsBranch() bool          { return false }
func (e *ExtractArrayElement) Operands() []OperandId { return []OperandId{e.A, e.K} }
func (e *ExtractArrayElement) RewriteOperands(f func(OperandId) OperandId) {
	e.A = f(e.A)
	e.K = f(e.K)
}

type AccessVectorComponent struct {
	V OperandId
	K uint32
}

func (*AccessVectorComponent) OpName() string         { return "AccessVectorComponent" }
func (*AccessVectorComponent) IsBranch() bool          { return false }
func (a *AccessVectorComponent) Operands() []OperandId { return []OperandId{a.V} }
func (a *AccessVectorComponent) RewriteOperands(f func(OperandId) OperandId) { a.V = f(a.V) }

type AccessVectorComponentMulti struct {
	V OperandId
	K []uint32
}

func (*AccessVectorComponentMulti) OpName() string         { return "AccessVectorComponentMulti" }
func (*AccessVectorComponentMulti) IsBranch() bool          { return false }
func (a *AccessVectorComponentMulti) Operands() []OperandId { return []OperandId{a.V} }
func (a *AccessVectorComponentMulti) RewriteOperands(f func(OperandId) OperandId) { a.V = f(a.V) }

type AccessVectorComponentDynamic struct{ V, K OperandId }

func (*AccessVectorComponentDynamic) OpName() string { return "AccessVectorComponentDynamic" }
func (*AccessVectorComponentDynamic) IsBranch() bool  { return false }
func (a *AccessVectorComponentDynamic) Operands() []OperandId {
	return []OperandId{a.V, a.K}
}
func (a *AccessVectorComponentDynamic) RewriteOperands(f func(OperandId) OperandId) {
	a.V = f(a.V)
	a.K = f(a.K)
}

type AccessMatrixColumn struct {
	M OperandId
	K uint32
}

func (*AccessMatrixColumn) OpName() string         { return "AccessMatrixColumn" }
func (*AccessMatrixColumn) IsBranch() bool          { return false }
func (a *AccessMatrixColumn) Operands() []OperandId { return []OperandId{a.M} }
func (a *AccessMatrixColumn) RewriteOperands(f func(OperandId) OperandId) { a.M = f(a.M) }

type AccessStructField struct {
	S OperandId
	K uint32
}

func (*AccessStructField) OpName() string         { return "AccessStructField" }
func (*AccessStructField) IsBranch() bool          { return false }
func (a *AccessStructField) Operands() []OperandId { return []OperandId{a.S} }
func (a *AccessStructField) RewriteOperands(f func(OperandId) OperandId) { a.S = f(a.S) }

type AccessArrayElement struct{ A, K OperandId }

func (*AccessArrayElement) OpName() string         { return "AccessArrayElement" }
func (*AccessArrayElement) IsBranch() bool          { return false }
func (a *AccessArrayElement) Operands() []OperandId { return []OperandId{a.A, a.K} }
func (a *AccessArrayElement) RewriteOperands(f func(OperandId) OperandId) {
	a.A = f(a.A)
	a.K = f(a.K)
}

// ---- constructors (§6.1) ----

type ConstructScalarFromScalar struct{ X OperandId }

func (*ConstructScalarFromScalar) OpName() string         { return "ConstructScalarFromScalar" }
func (*ConstructScalarFromScalar) IsBranch() bool          { return false }
func (c *ConstructScalarFromScalar) Operands() []OperandId { return []OperandId{c.X} }
func (c *ConstructScalarFromScalar) RewriteOperands(f func(OperandId) OperandId) { c.X = f(c.X) }

type ConstructVectorFromScalar struct{ X OperandId }

func (*ConstructVectorFromScalar) OpName() string         { return "ConstructVectorFromScalar" }
func (*ConstructVectorFromScalar) IsBranch() bool          { return false }
func (c *ConstructVectorFromScalar) Operands() []OperandId { return []OperandId{c.X} }
func (c *ConstructVectorFromScalar) RewriteOperands(f func(OperandId) OperandId) { c.X = f(c.X) }

type ConstructMatrixFromScalar struct{ X OperandId }

func (*ConstructMatrixFromScalar) OpName() string         { return "ConstructMatrixFromScalar" }
func (*ConstructMatrixFromScalar) IsBranch() bool          { return false }
func (c *ConstructMatrixFromScalar) Operands() []OperandId { return []OperandId{c.X} }
func (c *ConstructMatrixFromScalar) RewriteOperands(f func(OperandId) OperandId) { c.X = f(c.X) }

type ConstructMatrixFromMatrix struct{ X OperandId }

func (*ConstructMatrixFromMatrix) OpName() string         { return "ConstructMatrixFromMatrix" }
func (*ConstructMatrixFromMatrix) IsBranch() bool          { return false }
func (c *ConstructMatrixFromMatrix) Operands() []OperandId { return []OperandId{c.X} }
func (c *ConstructMatrixFromMatrix) RewriteOperands(f func(OperandId) OperandId) { c.X = f(c.X) }

type ConstructVectorFromMultiple struct{ Args []OperandId }

func (*ConstructVectorFromMultiple) OpName() string { return "ConstructVectorFromMultiple" }
func (*ConstructVectorFromMultiple) IsBranch() bool  { return false }
func (c *ConstructVectorFromMultiple) Operands() []OperandId {
	return append([]OperandId(nil), c.Args...)
}
func (c *ConstructVectorFromMultiple) RewriteOperands(f func(OperandId) OperandId) {
	for i, a := range c.Args {
		c.Args[i] = f(a)
	}
}

type ConstructMatrixFromMultiple struct{ Args []OperandId }

func (*ConstructMatrixFromMultiple) OpName() string { return "ConstructMatrixFromMultiple" }
func (*ConstructMatrixFromMultiple) IsBranch() bool  { return false }
func (c *ConstructMatrixFromMultiple) Operands() []OperandId {
	return append([]OperandId(nil), c.Args...)
}
func (c *ConstructMatrixFromMultiple) RewriteOperands(f func(OperandId) OperandId) {
	for i, a := range c.Args {
		c.Args[i] = f(a)
	}
}

type ConstructStruct struct{ Args []OperandId }

func (*ConstructStruct) OpName() string { return "ConstructStruct" }
func (*ConstructStruct) IsBranch() bool  { return false }
func (c *ConstructStruct) Operands() []OperandId {
	return append([]OperandId(nil), c.Args...)
}
func (c *ConstructStruct) RewriteOperands(f func(OperandId) OperandId) {
	for i, a := range c.Args {
		c.Args[i] = f(a)
	}
}

type ConstructArray struct{ Args []OperandId }

func (*ConstructArray) OpName() string { return "ConstructArray" }
func (*ConstructArray) IsBranch() bool  { return false }
func (c *ConstructArray) Operands() []OperandId {
	return append([]OperandId(nil), c.Args...)
}
func (c *ConstructArray) RewriteOperands(f func(OperandId) OperandId) {
	for i, a := range c.Args {
		c.Args[i] = f(a)
	}
}

// ---- algebra (§6.1) ----

type UnaryOperator uint8

const (
	OpArrayLength UnaryOperator = iota
	OpNegate
	OpLogicalNot
	OpBitwiseNot
)

type Unary struct {
	Op UnaryOperator
	X  OperandId
}

func (*Unary) OpName() string         { return "Unary" }
func (*Unary) IsBranch() bool          { return false }
func (u *Unary) Operands() []OperandId { return []OperandId{u.X} }
func (u *Unary) RewriteOperands(f func(OperandId) OperandId) { u.X = f(u.X) }

type BinaryOperator uint8

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpVectorTimesScalar
	OpMatrixTimesScalar
	OpVectorTimesMatrix
	OpMatrixTimesVector
	OpMatrixTimesMatrix
	OpDiv
	OpIMod
	OpLogicalXor
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpBitShiftLeft
	OpBitShiftRight
	OpBitwiseOr
	OpBitwiseXor
	OpBitwiseAnd
)

type Binary struct {
	Op   BinaryOperator
	L, R OperandId
}

func (*Binary) OpName() string         { return "Binary" }
func (*Binary) IsBranch() bool          { return false }
func (b *Binary) Operands() []OperandId { return []OperandId{b.L, b.R} }
func (b *Binary) RewriteOperands(f func(OperandId) OperandId) {
	b.L = f(b.L)
	b.R = f(b.R)
}

// Instruction is (OpCode, result) per §3.5, and lives in a single global
// vector indexed by RegisterId.
type Instruction struct {
	Op     OpCode
	Result TypedRegister
}

// RegisterArena is the global instruction vector from §3.5, plus the two
// narrow mutations from §3.7.
type RegisterArena struct {
	instructions []Instruction
}

func NewRegisterArena() *RegisterArena { return &RegisterArena{} }

func (a *RegisterArena) Get(id RegisterId) *Instruction {
	invariant(int(id) < len(a.instructions), "register id %d out of range", id)
	return &a.instructions[id]
}

func (a *RegisterArena) Len() int { return len(a.instructions) }

// New allocates op into a fresh register of the given type/precision.
func (a *RegisterArena) New(op OpCode, typ TypeId, prec Precision) TypedRegister {
	id := RegisterId(len(a.instructions))
	result := TypedRegister{Id: id, Type: typ, Precision: prec}
	a.instructions = append(a.instructions, Instruction{Op: op, Result: result})
	return result
}

// ReplaceInstruction swaps the instructions at to and from in the arena and
// patches the moved one's Result.Id so that fetching `to` now returns the
// former `from`'s opcode (§3.7). `from` is considered dead; if it is the
// last slot, it is popped instead of left as garbage.
func (a *RegisterArena) ReplaceInstruction(to, from RegisterId) {
	invariant(int(to) < len(a.instructions) && int(from) < len(a.instructions), "ReplaceInstruction: id out of range")
	moved := a.instructions[from]
	moved.Result.Id = to
	a.instructions[to] = moved
	if int(from) == len(a.instructions)-1 {
		a.instructions = a.instructions[:from]
	}
}

// AssignNewRegisterToInstruction moves the instruction at id to a fresh
// register and leaves a MergeInput sentinel at the old slot, for the
// caller to overwrite with that slot's new instruction (astify's
// materializeTemporaries writes a Load there) (§3.7).
func (a *RegisterArena) AssignNewRegisterToInstruction(id RegisterId) RegisterId {
	old := a.Get(id)
	newId := RegisterId(len(a.instructions))
	moved := *old
	moved.Result.Id = newId
	a.instructions = append(a.instructions, moved)
	a.instructions[id] = Instruction{Op: &MergeInput{}, Result: old.Result}
	return newId
}

// BlockInstruction is either Void(OpCode) (no result) or Register(id) (an
// indirect reference to the global instruction arena), per §3.5.
type BlockInstruction struct {
	Void OpCode // non-nil for the Void(OpCode) variant
	Reg  RegisterId
}

func VoidInst(op OpCode) BlockInstruction     { return BlockInstruction{Void: op} }
func RegisterInst(id RegisterId) BlockInstruction { return BlockInstruction{Reg: id} }

func (bi BlockInstruction) IsVoid() bool { return bi.Void != nil }

// Op resolves a BlockInstruction to its OpCode, following the indirection
// through regs for the Register variant.
func (bi BlockInstruction) Op(regs *RegisterArena) OpCode {
	if bi.IsVoid() {
		return bi.Void
	}
	return regs.Get(bi.Reg).Op
}

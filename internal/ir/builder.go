package ir

// Builder is the public, expression-stack-shaped façade over the factory
// and CFG builder (C4): a front end drives it by pushing operands (loads,
// constants) and popping them back off after combining them, rather than
// threading TypedOperand values through its own call graph by hand. One
// Builder is created per function; it shares the IR's arenas.
type Builder struct {
	ir      *IR
	fn      FunctionId
	factory *Factory
	cfg     *CFGBuilder
	stack   []TypedOperand

	// trueValue/falseValue hold whatever EndIfTrueBlock/EndIfFalseBlock
	// popped (if the branch produced a value), so EndIf can derive the
	// merge input's type/precision itself instead of requiring the caller
	// to supply them (§4.1.1/§4.1.2 apply to merge inputs the same as to
	// any other instruction result).
	trueValue  *TypedOperand
	falseValue *TypedOperand
}

// NewBuilder starts building fn's body, rooted at a fresh entry block.
func NewBuilder(ir *IR, fn FunctionId) *Builder {
	cfg := NewCFGBuilder(ir.Registers)
	ir.Entries[fn] = cfg.Current()
	return &Builder{
		ir:      ir,
		fn:      fn,
		factory: NewFactory(ir.Meta.Types, ir.Meta.Constants, ir.Registers, cfg),
		cfg:     cfg,
	}
}

// Push places a value directly on the expression stack (used for constants
// and for relaying a sub-builder's result, e.g. after EndIf).
func (b *Builder) Push(v TypedOperand) { b.stack = append(b.stack, v) }

// Pop removes and returns the top of the expression stack.
func (b *Builder) Pop() TypedOperand {
	n := len(b.stack)
	invariant(n > 0, "Builder: pop on empty expression stack")
	v := b.stack[n-1]
	b.stack = b.stack[:n-1]
	return v
}

// PeekDepth reports how many operands are currently on the stack, mainly
// useful for callers asserting balanced push/pop pairing in tests.
func (b *Builder) PeekDepth() int { return len(b.stack) }

func (b *Builder) PushConstant(c TypedOperand) { b.Push(c) }

// PushVariable loads a variable's current value and pushes it.
func (b *Builder) PushVariable(v VariableId) {
	variable := b.ir.Meta.Variables.Get(v)
	valueType, isPtr := b.ir.Meta.Types.IsPointer(variable.Type)
	invariant(isPtr, "variable %d's recorded type is not a Pointer", v)
	ptr := TypedOperand{Id: VarOperand(v), Type: variable.Type, Precision: variable.Precision}
	b.Push(b.factory.Load(ptr, valueType))
}

// PushVariablePointer pushes a pointer to a variable, for use as the target
// of Store or of a nested Access* projection.
func (b *Builder) PushVariablePointer(v VariableId) {
	variable := b.ir.Meta.Variables.Get(v)
	b.Push(TypedOperand{Id: VarOperand(v), Type: variable.Type, Precision: variable.Precision})
}

// Assign pops a value and stores it through ptr, which the caller passes
// directly rather than leaving it on the stack.
func (b *Builder) Assign(ptr TypedOperand) {
	val := b.Pop()
	b.factory.Store(ptr, val)
}

// Binary pops two operands, combines them through the factory (which
// derives the result type/precision itself and handles constant
// folding/peephole rewrites), and pushes the result.
func (b *Builder) Binary(op BinaryOperator) {
	r := b.Pop()
	l := b.Pop()
	b.Push(b.factory.Binary(op, l, r))
}

func (b *Builder) Unary(op UnaryOperator) {
	x := b.Pop()
	b.Push(b.factory.Unary(op, x))
}

func (b *Builder) CallVoid(fn FunctionId, argc int) {
	args := b.popN(argc)
	b.factory.Call(fn, TypeVoid, args, false)
}

func (b *Builder) CallValue(fn FunctionId, retType TypeId, argc int) {
	args := b.popN(argc)
	result := b.factory.Call(fn, retType, args, true)
	b.Push(*result)
}

func (b *Builder) popN(n int) []TypedOperand {
	invariant(len(b.stack) >= n, "Builder: popN(%d) exceeds stack depth %d", n, len(b.stack))
	args := append([]TypedOperand(nil), b.stack[len(b.stack)-n:]...)
	b.stack = b.stack[:len(b.stack)-n]
	return args
}

func (b *Builder) ConstructVectorFromMultiple(vecType TypeId, prec Precision, argc int) {
	args := b.popN(argc)
	b.Push(b.factory.ConstructVectorFromMultiple(vecType, prec, args))
}

// VectorComponent / StructField / ArrayElement / MatrixColumn dispatch to
// the factory's access-vs-extract projections, operating on the operand
// currently on top of the stack.
func (b *Builder) VectorComponent(k uint32, resultType TypeId) {
	base := b.Pop()
	b.Push(b.factory.VectorComponent(base, k, resultType))
}

// VectorComponentMulti swizzles several components at once (e.g. `.xyz`),
// composing with any swizzle already on top of the stack per §4.1.5.
func (b *Builder) VectorComponentMulti(ks []uint32, resultType TypeId) {
	base := b.Pop()
	b.Push(b.factory.VectorComponentMulti(base, ks, resultType))
}

func (b *Builder) StructField(k uint32, resultType TypeId) {
	base := b.Pop()
	b.Push(b.factory.StructField(base, k, resultType))
}

func (b *Builder) ArrayElement(resultType TypeId) {
	k := b.Pop()
	base := b.Pop()
	b.Push(b.factory.ArrayElement(base, k, resultType))
}

// ---- statement-level terminators ----

func (b *Builder) Return(hasValue bool) {
	if !hasValue {
		b.cfg.Terminate(&Return{})
		return
	}
	v := b.Pop()
	b.cfg.Terminate(&Return{Val: &v.Id})
}

func (b *Builder) Discard() { b.cfg.Terminate(&Discard{}) }
func (b *Builder) Break()   { b.cfg.Terminate(&Break{}) }
func (b *Builder) Continue() { b.cfg.Terminate(&Continue{}) }

// ---- structured-construct passthroughs (§4.2.2), exposed so a front end
// can drive control flow without reaching into the CFGBuilder directly ----

func (b *Builder) BeginIfTrueBlock() {
	cond := b.Pop()
	b.cfg.BeginIfTrueBlock(cond.Id)
}

func (b *Builder) EndIfTrueBlock(hasValue bool) {
	if !hasValue {
		b.cfg.EndIfTrueBlock(nil)
		return
	}
	v := b.Pop()
	b.trueValue = &v
	b.cfg.EndIfTrueBlock(&v.Id)
}

func (b *Builder) BeginIfFalseBlock() { b.cfg.BeginIfFalseBlock() }

func (b *Builder) EndIfFalseBlock(hasValue bool) {
	if !hasValue {
		b.cfg.EndIfFalseBlock(nil)
		return
	}
	v := b.Pop()
	b.falseValue = &v
	b.cfg.EndIfFalseBlock(&v.Id)
}

// EndIf derives the merge input's type/precision from whichever branch(es)
// pushed a value (§4.1.1/§4.1.2): if only one side produced a value, the
// merge takes its type/precision unchanged; if both did, the precision is
// higher(trueValue, falseValue), matching the rule used everywhere else a
// result is assembled from two typed operands.
func (b *Builder) EndIf() {
	var input *TypedOperand
	switch {
	case b.trueValue != nil && b.falseValue != nil:
		typ := b.trueValue.Type
		prec := higher(b.trueValue.Precision, b.falseValue.Precision)
		input = &TypedOperand{Type: typ, Precision: prec}
	case b.trueValue != nil:
		input = &TypedOperand{Type: b.trueValue.Type, Precision: b.trueValue.Precision}
	case b.falseValue != nil:
		input = &TypedOperand{Type: b.falseValue.Type, Precision: b.falseValue.Precision}
	}
	b.trueValue, b.falseValue = nil, nil
	result := b.cfg.EndIf(input)
	if result != nil {
		b.Push(*result)
	}
}

func (b *Builder) BeginLoopCondition() { b.cfg.BeginLoopCondition() }

func (b *Builder) EndLoopCondition() {
	cond := b.Pop()
	b.cfg.EndLoopCondition(cond.Id)
}

func (b *Builder) EndLoopContinue() { b.cfg.EndLoopContinue() }
func (b *Builder) EndLoop()         { b.cfg.EndLoop() }

func (b *Builder) BeginDoLoop()          { b.cfg.BeginDoLoop() }
func (b *Builder) BeginDoLoopCondition() { b.cfg.BeginDoLoopCondition() }
func (b *Builder) EndDoLoop() {
	cond := b.Pop()
	b.cfg.EndDoLoop(cond.Id)
}

func (b *Builder) BeginSwitch() {
	expr := b.Pop()
	b.cfg.BeginSwitch(expr.Id)
}
func (b *Builder) BeginCase(label ConstantId) { b.cfg.BeginCase(label) }
func (b *Builder) BeginDefault()              { b.cfg.BeginDefault() }
func (b *Builder) EndCase()                   { b.cfg.EndCase() }
func (b *Builder) EndSwitch()                 { b.cfg.EndSwitch() }

// Finish closes out the function: its entry block (tracked in ir.Entries)
// already reflects everything built, so Finish only needs to close a
// trailing fallthrough with an implicit void Return.
func (b *Builder) Finish() {
	if b.cfg.Current().Terminator == nil {
		b.cfg.Terminate(&Return{})
	}
}

package ir

import "math"

// Factory is the instruction factory from §4.1: every instruction a caller
// wants to add to the IR goes through one of its methods rather than being
// built by hand, so promotion, precision derivation, constant folding, and
// the small peephole rewrites all happen in one place instead of being
// re-implemented at each call site.
type Factory struct {
	types  *TypeArena
	consts *ConstantArena
	regs   *RegisterArena
	cfg    *CFGBuilder
}

func NewFactory(types *TypeArena, consts *ConstantArena, regs *RegisterArena, cfg *CFGBuilder) *Factory {
	return &Factory{types: types, consts: consts, regs: regs, cfg: cfg}
}

// emit appends op as a register instruction to the current block and
// returns its typed operand. Used once folding/peephole have both declined.
func (f *Factory) emit(op OpCode, typ TypeId, prec Precision) TypedOperand {
	reg := f.regs.New(op, typ, prec)
	f.cfg.Current().Append(RegisterInst(reg.Id))
	return reg.Operand()
}

// emitVoid appends a side-effecting, resultless op (Store, Call used as a
// statement) to the current block.
func (f *Factory) emitVoid(op OpCode) {
	f.cfg.Current().Append(VoidInst(op))
}

// ---- §4.1.1 promotion (result TypeId) ----

func (f *Factory) isScalarType(id TypeId) bool {
	_, ok := f.types.Get(id).(Scalar)
	return ok
}

// promoteBinaryType derives a Binary's result TypeId per §4.1.1. The caller
// never supplies this; it is always derived from the operand types so that
// promotion cannot drift out of sync with what was actually emitted.
func (f *Factory) promoteBinaryType(op BinaryOperator, l, r TypedOperand) TypeId {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpIMod, OpBitwiseOr, OpBitwiseAnd, OpBitwiseXor:
		lScalar, rScalar := f.isScalarType(l.Type), f.isScalarType(r.Type)
		switch {
		case lScalar && !rScalar:
			return r.Type
		case rScalar && !lScalar:
			return l.Type
		default:
			return l.Type
		}
	case OpVectorTimesScalar, OpMatrixTimesScalar:
		return l.Type
	case OpVectorTimesMatrix:
		m := f.types.Get(r.Type).(Matrix)
		return VecTypeId(BasicFloat, m.Cols)
	case OpMatrixTimesVector:
		m := f.types.Get(l.Type).(Matrix)
		return m.ColVec
	case OpMatrixTimesMatrix:
		lm := f.types.Get(l.Type).(Matrix)
		rm := f.types.Get(r.Type).(Matrix)
		rows := f.types.Get(lm.ColVec).(Vector).N
		return MatrixTypeId(rm.Cols, rows)
	case OpBitShiftLeft, OpBitShiftRight:
		return l.Type
	case OpLogicalXor, OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		return TypeBool
	default:
		invariant(false, "promoteBinaryType: unhandled op %v", op)
		return TypeVoid
	}
}

// promoteUnaryType derives a Unary's result TypeId per §4.1.1.
func (f *Factory) promoteUnaryType(op UnaryOperator, x TypedOperand) TypeId {
	switch op {
	case OpNegate, OpBitwiseNot:
		return x.Type
	case OpLogicalNot:
		return TypeBool
	case OpArrayLength:
		return TypeInt
	default:
		invariant(false, "promoteUnaryType: unhandled op %v", op)
		return TypeVoid
	}
}

// ---- §4.1.2 precision ----

// binaryPrecisionFor derives a Binary's result precision per §4.1.2: shifts
// take the lhs's precision, comparisons/equality/xor are NotApplicable, and
// everything else is higher(lhs, rhs).
func (f *Factory) binaryPrecisionFor(op BinaryOperator, l, r TypedOperand) Precision {
	switch op {
	case OpLogicalXor, OpEqual, OpNotEqual, OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		return NotApplicable
	case OpBitShiftLeft, OpBitShiftRight:
		return l.Precision
	default:
		return higher(l.Precision, r.Precision)
	}
}

// unaryPrecisionFor derives a Unary's result precision per §4.1.2.
func unaryPrecisionFor(op UnaryOperator, x TypedOperand) Precision {
	switch op {
	case OpLogicalNot:
		return NotApplicable
	case OpArrayLength:
		return High
	default:
		return x.Precision
	}
}

// promoteScalarToVector broadcasts a scalar operand up to a vector type by
// routing it through ConstructVectorFromScalar, used when a binary op mixes
// a vector operand with a bare scalar (e.g. `vec3 + float`).
func (f *Factory) promoteScalarToVector(scalar TypedOperand, vecType TypeId) TypedOperand {
	if scalar.Type == vecType {
		return scalar
	}
	return f.ConstructVectorFromScalar(vecType, scalar)
}

// ---- §4.1.3 constant folding ----

func asConstFloat(consts *ConstantArena, o TypedOperand) (float32, bool) {
	if !o.Id.IsConstant() {
		return 0, false
	}
	c := consts.Get(o.Id.Constant)
	if c.Value.Kind != CFloat {
		return 0, false
	}
	return c.Value.F, true
}

func asConstInt(consts *ConstantArena, o TypedOperand) (int32, bool) {
	if !o.Id.IsConstant() {
		return 0, false
	}
	c := consts.Get(o.Id.Constant)
	if c.Value.Kind != CInt {
		return 0, false
	}
	return c.Value.I, true
}

func asConstUint(consts *ConstantArena, o TypedOperand) (uint32, bool) {
	if !o.Id.IsConstant() {
		return 0, false
	}
	c := consts.Get(o.Id.Constant)
	if c.Value.Kind != CUint {
		return 0, false
	}
	return c.Value.U, true
}

func asConstBool(consts *ConstantArena, o TypedOperand) (bool, bool) {
	if !o.Id.IsConstant() {
		return false, false
	}
	c := consts.Get(o.Id.Constant)
	if c.Value.Kind != CBool {
		return false, false
	}
	return c.Value.B, true
}

// foldBinary attempts to evaluate a binary op at build time. It tries the
// plain-scalar case first, then the componentwise/broadcast case for
// Composite operands (§4.1.3); it declines (false) as soon as either
// operand is non-constant or the op has no constant-folded meaning.
func (f *Factory) foldBinary(op BinaryOperator, typ TypeId, l, r TypedOperand) (TypedOperand, bool) {
	if folded, ok := f.foldBinaryScalar(op, typ, l, r); ok {
		return folded, true
	}
	return f.foldBinaryComposite(op, typ, l, r)
}

// foldBinaryScalar folds when both operands are plain (non-Composite)
// constants of the same kind.
func (f *Factory) foldBinaryScalar(op BinaryOperator, typ TypeId, l, r TypedOperand) (TypedOperand, bool) {
	if !l.Id.IsConstant() || !r.Id.IsConstant() {
		return TypedOperand{}, false
	}
	lc, rc := f.consts.Get(l.Id.Constant), f.consts.Get(r.Id.Constant)
	if lc.Value.Kind == CComposite || rc.Value.Kind == CComposite {
		return TypedOperand{}, false
	}
	v, ok := foldScalarValue(op, lc.Value, rc.Value)
	if !ok {
		return TypedOperand{}, false
	}
	return f.internValue(typ, v), true
}

// foldBinaryComposite handles the case where at least one operand is a
// Composite constant: recurse componentwise, broadcasting a scalar operand
// against every component of the other side (§4.1.3). Equality/inequality
// of two composites is structural rather than componentwise, per the same
// section, and relies on equal composites sharing a single interned id.
func (f *Factory) foldBinaryComposite(op BinaryOperator, typ TypeId, l, r TypedOperand) (TypedOperand, bool) {
	if !l.Id.IsConstant() || !r.Id.IsConstant() {
		return TypedOperand{}, false
	}
	lc, rc := f.consts.Get(l.Id.Constant), f.consts.Get(r.Id.Constant)
	lComposite, rComposite := lc.Value.Kind == CComposite, rc.Value.Kind == CComposite
	if !lComposite && !rComposite {
		return TypedOperand{}, false
	}
	if op == OpEqual || op == OpNotEqual {
		if !lComposite || !rComposite {
			return TypedOperand{}, false
		}
		eq := l.Id == r.Id
		if op == OpNotEqual {
			eq = !eq
		}
		return f.internValue(TypeBool, BoolValue(eq)), true
	}

	elementOp, ok := compositeElementOp(op)
	if !ok {
		// Real matrix*vector/matrix*matrix products aren't componentwise;
		// folding those needs dot-product/matrix-multiply support this
		// factory doesn't implement, so it declines rather than emitting
		// a wrong answer.
		return TypedOperand{}, false
	}

	n := len(lc.Value.Composite)
	if rComposite {
		n = len(rc.Value.Composite)
	}
	elemType := f.compositeElementType(typ)
	elems := make([]ConstantId, n)
	for i := 0; i < n; i++ {
		lev := lc.Value
		if lComposite {
			lev = f.consts.Get(lc.Value.Composite[i]).Value
		}
		rev := rc.Value
		if rComposite {
			rev = f.consts.Get(rc.Value.Composite[i]).Value
		}
		v, ok := foldScalarValue(elementOp, lev, rev)
		if !ok {
			return TypedOperand{}, false
		}
		elems[i] = f.internScalarValue(elemType, v)
	}
	id := f.consts.Composite(typ, elems)
	return TypedOperand{Id: ConstOperand(id), Type: typ, Precision: NotApplicable}, true
}

// compositeElementOp maps a Binary op to the scalar op to apply per
// component when folding a Composite operand. vector*scalar/matrix*scalar
// are componentwise multiplication; vector*matrix/matrix*vector/
// matrix*matrix are not componentwise at all (they need a dot product or
// full matrix multiply), so they're reported as unfoldable here.
func compositeElementOp(op BinaryOperator) (BinaryOperator, bool) {
	switch op {
	case OpVectorTimesScalar, OpMatrixTimesScalar:
		return OpMul, true
	case OpVectorTimesMatrix, OpMatrixTimesVector, OpMatrixTimesMatrix:
		return 0, false
	default:
		return op, true
	}
}

// compositeElementType returns the per-component type of a vector/matrix
// (matrix components are column vectors) or array composite type.
func (f *Factory) compositeElementType(typ TypeId) TypeId {
	switch t := f.types.Get(typ).(type) {
	case Vector:
		return t.Elem
	case Matrix:
		return t.ColVec
	case Array:
		return t.Elem
	default:
		invariant(false, "compositeElementType: type %d is not a composite", typ)
		return TypeVoid
	}
}

// internValue interns a folded ConstantValue (scalar or composite) at typ,
// fixing the result type to bool for a comparison/equality/logical result.
func (f *Factory) internValue(typ TypeId, v ConstantValue) TypedOperand {
	if v.Kind == CComposite {
		id := f.consts.Composite(typ, v.Composite)
		return TypedOperand{Id: ConstOperand(id), Type: typ, Precision: NotApplicable}
	}
	resultType := typ
	if v.Kind == CBool {
		resultType = TypeBool
	}
	return TypedOperand{Id: ConstOperand(f.internScalarValue(resultType, v)), Type: resultType, Precision: NotApplicable}
}

func (f *Factory) internScalarValue(typ TypeId, v ConstantValue) ConstantId {
	switch v.Kind {
	case CFloat:
		return f.consts.Float(typ, v.F)
	case CInt:
		return f.consts.Int(typ, v.I)
	case CUint:
		return f.consts.Uint(typ, v.U)
	case CBool:
		return f.consts.Bool(v.B)
	default:
		invariant(false, "internScalarValue: unexpected kind %v", v.Kind)
		return 0
	}
}

// foldScalarValue evaluates op over two scalar ConstantValues of matching
// kind. Division/modulo by zero saturate (MAX for div, 0 for mod, §4.1.3,
// §7) rather than declining to fold.
func foldScalarValue(op BinaryOperator, l, r ConstantValue) (ConstantValue, bool) {
	if l.Kind != r.Kind {
		return ConstantValue{}, false
	}
	switch l.Kind {
	case CFloat:
		return foldFloatValue(op, l.F, r.F)
	case CInt:
		return foldIntValue(op, l.I, r.I)
	case CUint:
		return foldUintValue(op, l.U, r.U)
	case CBool:
		return foldBoolValue(op, l.B, r.B)
	default:
		return ConstantValue{}, false
	}
}

func foldFloatValue(op BinaryOperator, l, r float32) (ConstantValue, bool) {
	switch op {
	case OpAdd:
		return FloatValue(l + r), true
	case OpSub:
		return FloatValue(l - r), true
	case OpMul:
		return FloatValue(l * r), true
	case OpDiv:
		// Host IEEE-754 handles div-by-zero (±Inf/NaN) without trapping.
		return FloatValue(l / r), true
	case OpEqual:
		return BoolValue(l == r), true
	case OpNotEqual:
		return BoolValue(l != r), true
	case OpLessThan:
		return BoolValue(l < r), true
	case OpGreaterThan:
		return BoolValue(l > r), true
	case OpLessThanEqual:
		return BoolValue(l <= r), true
	case OpGreaterThanEqual:
		return BoolValue(l >= r), true
	default:
		return ConstantValue{}, false
	}
}

func foldIntValue(op BinaryOperator, l, r int32) (ConstantValue, bool) {
	switch op {
	case OpAdd:
		return IntValue(l + r), true
	case OpSub:
		return IntValue(l - r), true
	case OpMul:
		return IntValue(l * r), true
	case OpDiv:
		if r == 0 {
			return IntValue(math.MaxInt32), true
		}
		return IntValue(l / r), true
	case OpIMod:
		if r == 0 {
			return IntValue(0), true
		}
		return IntValue(l % r), true
	case OpBitwiseAnd:
		return IntValue(l & r), true
	case OpBitwiseOr:
		return IntValue(l | r), true
	case OpBitwiseXor:
		return IntValue(l ^ r), true
	case OpBitShiftLeft:
		return IntValue(foldShiftLeftInt(l, r)), true
	case OpBitShiftRight:
		return IntValue(foldShiftRightInt(l, r)), true
	case OpEqual:
		return BoolValue(l == r), true
	case OpNotEqual:
		return BoolValue(l != r), true
	case OpLessThan:
		return BoolValue(l < r), true
	case OpGreaterThan:
		return BoolValue(l > r), true
	case OpLessThanEqual:
		return BoolValue(l <= r), true
	case OpGreaterThanEqual:
		return BoolValue(l >= r), true
	default:
		return ConstantValue{}, false
	}
}

// foldShiftLeftInt/foldShiftRightInt apply the host-defined saturation
// policy for a shift whose right-hand side is out of [0, 31]: the result
// saturates to zero rather than invoking Go's own shift-count panic (§7).
func foldShiftLeftInt(l, r int32) int32 {
	if r < 0 || r > 31 {
		return 0
	}
	return l << uint32(r)
}

func foldShiftRightInt(l, r int32) int32 {
	if r < 0 || r > 31 {
		return 0
	}
	return l >> uint32(r)
}

func foldUintValue(op BinaryOperator, l, r uint32) (ConstantValue, bool) {
	switch op {
	case OpAdd:
		return UintValue(l + r), true
	case OpSub:
		return UintValue(l - r), true
	case OpMul:
		return UintValue(l * r), true
	case OpDiv:
		if r == 0 {
			return UintValue(math.MaxUint32), true
		}
		return UintValue(l / r), true
	case OpIMod:
		if r == 0 {
			return UintValue(0), true
		}
		return UintValue(l % r), true
	case OpBitwiseAnd:
		return UintValue(l & r), true
	case OpBitwiseOr:
		return UintValue(l | r), true
	case OpBitwiseXor:
		return UintValue(l ^ r), true
	case OpBitShiftLeft:
		if r > 31 {
			return UintValue(0), true
		}
		return UintValue(l << r), true
	case OpBitShiftRight:
		if r > 31 {
			return UintValue(0), true
		}
		return UintValue(l >> r), true
	case OpEqual:
		return BoolValue(l == r), true
	case OpNotEqual:
		return BoolValue(l != r), true
	case OpLessThan:
		return BoolValue(l < r), true
	case OpGreaterThan:
		return BoolValue(l > r), true
	case OpLessThanEqual:
		return BoolValue(l <= r), true
	case OpGreaterThanEqual:
		return BoolValue(l >= r), true
	default:
		return ConstantValue{}, false
	}
}

func foldBoolValue(op BinaryOperator, l, r bool) (ConstantValue, bool) {
	switch op {
	case OpEqual:
		return BoolValue(l == r), true
	case OpNotEqual:
		return BoolValue(l != r), true
	case OpLogicalXor:
		return BoolValue(l != r), true
	default:
		return ConstantValue{}, false
	}
}

// foldUnary attempts to evaluate a unary op at build time, recursing
// componentwise into a Composite operand the same way foldBinaryComposite
// does. ArrayLength is never foldable (its operand is a runtime pointer).
func (f *Factory) foldUnary(op UnaryOperator, typ TypeId, x TypedOperand) (TypedOperand, bool) {
	if !x.Id.IsConstant() {
		return TypedOperand{}, false
	}
	c := f.consts.Get(x.Id.Constant)
	if c.Value.Kind == CComposite {
		elemType := f.compositeElementType(typ)
		elems := make([]ConstantId, len(c.Value.Composite))
		for i, e := range c.Value.Composite {
			folded, ok := foldUnaryValue(op, f.consts.Get(e).Value)
			if !ok {
				return TypedOperand{}, false
			}
			elems[i] = f.internScalarValue(elemType, folded)
		}
		id := f.consts.Composite(typ, elems)
		return TypedOperand{Id: ConstOperand(id), Type: typ, Precision: NotApplicable}, true
	}
	folded, ok := foldUnaryValue(op, c.Value)
	if !ok {
		return TypedOperand{}, false
	}
	return f.internValue(typ, folded), true
}

// foldUnaryValue evaluates Negate/BitwiseNot/LogicalNot over a scalar
// ConstantValue; integer negation wraps per §4.1.3's "wrapping on integer
// arithmetic".
func foldUnaryValue(op UnaryOperator, v ConstantValue) (ConstantValue, bool) {
	switch op {
	case OpNegate:
		switch v.Kind {
		case CFloat:
			return FloatValue(-v.F), true
		case CInt:
			return IntValue(-v.I), true
		case CUint:
			return UintValue(-v.U), true
		default:
			return ConstantValue{}, false
		}
	case OpBitwiseNot:
		switch v.Kind {
		case CInt:
			return IntValue(^v.I), true
		case CUint:
			return UintValue(^v.U), true
		default:
			return ConstantValue{}, false
		}
	case OpLogicalNot:
		if v.Kind == CBool {
			return BoolValue(!v.B), true
		}
		return ConstantValue{}, false
	default:
		return ConstantValue{}, false
	}
}

// ---- §4.1.4 peephole ----

// peepholeBinary catches the small set of identities that are always safe
// regardless of precision or whether the non-constant side will itself
// later fold: x+0, x*1, x*0, x-0.
func (f *Factory) peepholeBinary(op BinaryOperator, typ TypeId, l, r TypedOperand) (TypedOperand, bool) {
	isZero := func(o TypedOperand) bool {
		if f, ok := asConstFloat(f.consts, o); ok {
			return f == 0
		}
		if i, ok := asConstInt(f.consts, o); ok {
			return i == 0
		}
		if u, ok := asConstUint(f.consts, o); ok {
			return u == 0
		}
		return false
	}
	isOne := func(o TypedOperand) bool {
		if f, ok := asConstFloat(f.consts, o); ok {
			return f == 1
		}
		if i, ok := asConstInt(f.consts, o); ok {
			return i == 1
		}
		if u, ok := asConstUint(f.consts, o); ok {
			return u == 1
		}
		return false
	}
	switch op {
	case OpAdd:
		if isZero(r) {
			return l, true
		}
		if isZero(l) {
			return r, true
		}
	case OpSub:
		if isZero(r) {
			return l, true
		}
	case OpMul:
		if isOne(r) {
			return l, true
		}
		if isOne(l) {
			return r, true
		}
		if isZero(r) && l.Type == r.Type {
			return r, true
		}
		if isZero(l) && l.Type == r.Type {
			return l, true
		}
	}
	return TypedOperand{}, false
}

// peepholeUnary cancels double negation (--x) and double logical-not (!!x)
// by unwrapping the inner Unary directly from the register arena, provided
// x is itself a Unary of the same kind (it returns the inner operand and
// mutates nothing, so no other instruction's meaning changes).
func (f *Factory) peepholeUnary(op UnaryOperator, x TypedOperand) (TypedOperand, bool) {
	if !x.Id.IsRegister() {
		return TypedOperand{}, false
	}
	inst := f.regs.Get(x.Id.Register)
	inner, ok := inst.Op.(*Unary)
	if !ok || inner.Op != op {
		return TypedOperand{}, false
	}
	if op != OpNegate && op != OpLogicalNot {
		return TypedOperand{}, false
	}
	return TypedOperand{Id: inner.X, Type: x.Type, Precision: x.Precision}, true
}

// ---- public entry points ----

// Binary derives the result TypeId (§4.1.1) and precision (§4.1.2) from the
// operands themselves, then tries constant folding (§4.1.3) and peephole
// rewrites (§4.1.4) in that order before falling back to emitting a real
// instruction. Callers never supply a result type or precision: doing so
// would let the two drift out of sync with what promotion actually derives.
func (f *Factory) Binary(op BinaryOperator, l, r TypedOperand) TypedOperand {
	typ := f.promoteBinaryType(op, l, r)
	if folded, ok := f.foldBinary(op, typ, l, r); ok {
		return folded
	}
	if rewritten, ok := f.peepholeBinary(op, typ, l, r); ok {
		return rewritten
	}
	prec := f.binaryPrecisionFor(op, l, r)
	return f.emit(&Binary{Op: op, L: l.Id, R: r.Id}, typ, prec)
}

// Unary mirrors Binary: it derives the result type/precision itself rather
// than accepting them from the caller.
func (f *Factory) Unary(op UnaryOperator, x TypedOperand) TypedOperand {
	typ := f.promoteUnaryType(op, x)
	if folded, ok := f.foldUnary(op, typ, x); ok {
		return folded
	}
	if rewritten, ok := f.peepholeUnary(op, x); ok {
		return rewritten
	}
	prec := unaryPrecisionFor(op, x)
	return f.emit(&Unary{Op: op, X: x.Id}, typ, prec)
}

// ConstructVectorFromScalar broadcasts a scalar to every component of a
// vector type (§6.1).
func (f *Factory) ConstructVectorFromScalar(vecType TypeId, x TypedOperand) TypedOperand {
	return f.emit(&ConstructVectorFromScalar{X: x.Id}, vecType, x.Precision)
}

func (f *Factory) ConstructVectorFromMultiple(vecType TypeId, prec Precision, args []TypedOperand) TypedOperand {
	ids := make([]OperandId, len(args))
	for i, a := range args {
		ids[i] = a.Id
	}
	return f.emit(&ConstructVectorFromMultiple{Args: ids}, vecType, prec)
}

func (f *Factory) Call(fn FunctionId, retType TypeId, args []TypedOperand, hasResult bool) *TypedOperand {
	ids := make([]OperandId, len(args))
	for i, a := range args {
		ids[i] = a.Id
	}
	call := &Call{Fn: fn, Args: ids}
	if !hasResult {
		f.emitVoid(call)
		return nil
	}
	result := f.emit(call, retType, NotApplicable)
	return &result
}

func (f *Factory) Load(ptr TypedOperand, valueType TypeId) TypedOperand {
	return f.emit(&Load{Ptr: ptr.Id}, valueType, ptr.Precision)
}

func (f *Factory) Store(ptr, val TypedOperand) {
	f.emitVoid(&Store{Ptr: ptr.Id, Val: val.Id})
}

// ---- §4.1.5 access-vs-extract dispatch ----

// innerSwizzle reports whether base is itself the result of a non-pointer
// (value-form) vector swizzle, returning the swizzled-from vector and the
// component indices that produced base — or ok=false if base is a pointer
// access or isn't a swizzle at all (§4.1.5's composition fold only applies
// to value-form swizzles; an Access* swizzle keeps its own addressability,
// so it is never folded into an outer one).
func (f *Factory) innerSwizzle(base TypedOperand) (v OperandId, ks []uint32, ok bool) {
	if _, isPtr := f.types.IsPointer(base.Type); isPtr {
		return OperandId{}, nil, false
	}
	if !base.Id.IsRegister() {
		return OperandId{}, nil, false
	}
	switch op := f.regs.Get(base.Id.Register).Op.(type) {
	case *ExtractVectorComponent:
		return op.V, []uint32{op.K}, true
	case *ExtractVectorComponentMulti:
		return op.V, op.K, true
	default:
		return OperandId{}, nil, false
	}
}

// VectorComponent reads/addresses a single vector component, picking the
// pointer-form Access opcode when base is itself a pointer (so the result
// can be stored through) or the value-form Extract opcode otherwise. A
// swizzle of a swizzle composes the outer index with the inner ones instead
// of nesting (§4.1.5, boundary scenario S3).
func (f *Factory) VectorComponent(base TypedOperand, k uint32, resultType TypeId) TypedOperand {
	if innerV, innerKs, ok := f.innerSwizzle(base); ok {
		return f.emit(&ExtractVectorComponent{V: innerV, K: innerKs[k]}, resultType, base.Precision)
	}
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessVectorComponent{V: base.Id, K: k}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractVectorComponent{V: base.Id, K: k}, resultType, base.Precision)
}

func (f *Factory) VectorComponentMulti(base TypedOperand, ks []uint32, resultType TypeId) TypedOperand {
	if innerV, innerKs, ok := f.innerSwizzle(base); ok {
		composed := make([]uint32, len(ks))
		for i, k := range ks {
			composed[i] = innerKs[k]
		}
		return f.emit(&ExtractVectorComponentMulti{V: innerV, K: composed}, resultType, base.Precision)
	}
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessVectorComponentMulti{V: base.Id, K: ks}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractVectorComponentMulti{V: base.Id, K: ks}, resultType, base.Precision)
}

func (f *Factory) VectorComponentDynamic(base, k TypedOperand, resultType TypeId) TypedOperand {
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessVectorComponentDynamic{V: base.Id, K: k.Id}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractVectorComponentDynamic{V: base.Id, K: k.Id}, resultType, base.Precision)
}

func (f *Factory) MatrixColumn(base TypedOperand, k uint32, resultType TypeId) TypedOperand {
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessMatrixColumn{M: base.Id, K: k}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractMatrixColumn{M: base.Id, K: k}, resultType, base.Precision)
}

func (f *Factory) StructField(base TypedOperand, k uint32, resultType TypeId) TypedOperand {
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessStructField{S: base.Id, K: k}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractStructField{S: base.Id, K: k}, resultType, base.Precision)
}

func (f *Factory) ArrayElement(base, k TypedOperand, resultType TypeId) TypedOperand {
	if _, ok := f.types.IsPointer(base.Type); ok {
		return f.emit(&AccessArrayElement{A: base.Id, K: k.Id}, f.types.PointerTo(resultType), base.Precision)
	}
	return f.emit(&ExtractArrayElement{A: base.Id, K: k.Id}, resultType, base.Precision)
}

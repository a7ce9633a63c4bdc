package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaderir/internal/ir"
)

// hasIf reports whether any block reachable from entry still has an *ir.If
// terminator.
func hasIf(irv *ir.IR, entry *ir.Block) bool {
	found := false
	ir.VisitBlocks(irv.Registers, entry, func(b *ir.Block) {
		if _, ok := b.Terminator.(*ir.If); ok {
			found = true
		}
	})
	return found
}

// TestConstantFalseIfCollapses is boundary scenario S1: `if (false) { x=1; }
// else { x=2; }` leaves no If in the built IR — the false branch is inlined
// directly into the header.
func TestConstantFalseIfCollapses(t *testing.T) {
	irv := runScript(t, `
		var x float
		const.bool false
		if.true
		const.float 1.0
		store x
		if.true.end
		if.false
		const.float 2.0
		store x
		if.false.end
		if.end
		return.void
	`)
	require.Empty(t, ir.Validate(irv))
	assert.False(t, hasIf(irv, irv.Entry(irv.FunctionIds()[0])), "constant-false if should collapse, leaving no If terminator")

	storesToX := 0
	ir.VisitOps(irv.Registers, irv.Entry(irv.FunctionIds()[0]), func(b *ir.Block, bi ir.BlockInstruction, op ir.OpCode) {
		if _, ok := op.(*ir.Store); ok {
			storesToX++
		}
	})
	assert.Equal(t, 1, storesToX, "only the chosen (false) branch's store should survive")
}

// TestShortCircuitOrWithConstantLeftCollapses is boundary scenario S2: `a ||
// b` desugars to `a ? true : b`; when a is the constant true, the whole
// ternary collapses to the constant true with no conditional left at all.
func TestShortCircuitOrWithConstantLeftCollapses(t *testing.T) {
	irv := runScript(t, `
		var r bool
		const.bool true
		if.true
		const.bool true
		if.true.end value
		if.false
		const.bool false
		if.false.end value
		if.end
		store r
		return.void
	`)
	require.Empty(t, ir.Validate(irv))
	entry := irv.Entry(irv.FunctionIds()[0])
	assert.False(t, hasIf(irv, entry), "constant-condition short-circuit should collapse, leaving no If")

	var storedVal *ir.OperandId
	ir.VisitOps(irv.Registers, entry, func(b *ir.Block, bi ir.BlockInstruction, op ir.OpCode) {
		if s, ok := op.(*ir.Store); ok {
			v := s.Val
			storedVal = &v
		}
	})
	require.NotNil(t, storedVal, "expected a Store into r")
	require.True(t, storedVal.IsConstant(), "the collapsed ternary's value should still be the constant true")
	assert.Equal(t, ir.ConstTrue, storedVal.Constant)
}

// TestSwizzleOfSwizzleComposes is boundary scenario S3: `v.xyz.xz` where v is
// a vec4 must produce a single ExtractVectorComponentMulti(v, [0,2]), not a
// swizzle of a swizzle.
func TestSwizzleOfSwizzleComposes(t *testing.T) {
	irv := ir.NewIR(ir.ShaderFragment)
	fn := irv.Meta.Functions.New(ir.Function{Name: "main", ReturnType: ir.TypeVoid})
	b := ir.NewBuilder(irv, fn)

	v := irv.Meta.Variables.New(ir.Variable{
		Name:  "v",
		Type:  irv.Meta.Types.PointerTo(ir.TypeVec4),
		Scope: ir.Scope{Kind: ir.ScopeLocal},
	})
	b.PushVariable(v)
	loadReg := b.Pop()
	require.True(t, loadReg.Id.IsRegister())
	b.Push(loadReg)

	b.VectorComponentMulti([]uint32{0, 1, 2}, ir.TypeVec3) // v.xyz
	b.VectorComponentMulti([]uint32{0, 2}, ir.TypeVec2)    // (v.xyz).xz
	result := b.Pop()
	b.Push(result)
	b.Return(false)
	b.Finish()

	require.True(t, result.Id.IsRegister())
	inst := irv.Registers.Get(result.Id.Register)
	multi, ok := inst.Op.(*ir.ExtractVectorComponentMulti)
	require.True(t, ok, "expected a single ExtractVectorComponentMulti, got %T", inst.Op)
	assert.Equal(t, []uint32{0, 2}, multi.K)
	assert.Equal(t, loadReg.Id, multi.V, "the composed swizzle should read straight from v's load, not the intermediate .xyz")
}

// TestRepeatedComplexRvalueMaterializesOnce is boundary scenario S4: a
// side-effect-free but nontrivial computation (modeling `x--`'s `x - 1`
// half) read three times as an rvalue gets exactly one local temporary after
// astify, not three recomputations.
func TestRepeatedComplexRvalueMaterializesOnce(t *testing.T) {
	irv := ir.NewIR(ir.ShaderFragment)
	fn := irv.Meta.Functions.New(ir.Function{Name: "main", ReturnType: ir.TypeInt})
	b := ir.NewBuilder(irv, fn)

	x := irv.Meta.Variables.New(ir.Variable{
		Name:  "x",
		Type:  irv.Meta.Types.PointerTo(ir.TypeInt),
		Scope: ir.Scope{Kind: ir.ScopeLocal},
	})
	b.PushVariable(x)
	one := irv.Meta.Constants.Int(ir.TypeInt, 1)
	b.PushConstant(ir.TypedOperand{Id: ir.ConstOperand(one), Type: ir.TypeInt})
	b.Binary(ir.OpSub) // x - 1, a non-foldable (variable-dependent) Sub register
	decremented := b.Pop()
	require.True(t, decremented.Id.IsRegister(), "x-1 must stay a register, not fold")

	// Use the decrement three times as an rvalue: once stored back to x
	// (modeling the "--" side effect), twice more combined into the
	// returned value.
	b.Push(decremented)
	b.Assign(ir.TypedOperand{Id: ir.VarOperand(x), Type: irv.Meta.Variables.Get(x).Type})
	b.Push(decremented)
	b.Push(decremented)
	b.Binary(ir.OpAdd)
	b.Return(true)
	b.Finish()

	ir.Dealias(irv)
	ir.Astify(irv)
	require.Empty(t, ir.ValidatePostAstify(irv))

	tempCount := 0
	for i := 0; i < irv.Meta.Variables.Len(); i++ {
		v := irv.Meta.Variables.Get(ir.VariableId(i))
		if v.NameSource == ir.Temporary {
			tempCount++
		}
	}
	assert.Equal(t, 1, tempCount, "exactly one temporary should be materialized for the thrice-read decrement")

	loads := 0
	ir.VisitOps(irv.Registers, irv.Entry(fn), func(b *ir.Block, bi ir.BlockInstruction, op ir.OpCode) {
		if _, ok := op.(*ir.Load); ok {
			loads++
		}
	})
	// one Load for the original PushVariable(x), one for the materialized
	// temporary's re-reads, no more.
	assert.Equal(t, 2, loads)
}

// TestContinueSplicesIncrementWithUserCall is boundary scenario S5: a
// for-loop whose continue clause calls a user function must, after astify,
// have that clause's content (and its call) spliced ahead of every
// `continue` and into the body's own normal fallthrough — never left
// reachable only through the original Loop.Block2 slot, which astify
// strips entirely.
func TestContinueSplicesIncrementWithUserCall(t *testing.T) {
	irv := ir.NewIR(ir.ShaderFragment)
	step := irv.Meta.Functions.New(ir.Function{Name: "step", ReturnType: ir.TypeInt})
	fn := irv.Meta.Functions.New(ir.Function{Name: "main", ReturnType: ir.TypeVoid})

	vars := map[string]ir.VariableId{}
	funcs := map[string]ir.FunctionId{"step": step}
	interp := NewInterpreter(irv, fn, vars, funcs)

	program, err := Parse("s5.script", `
		var i int
		var n int
		var cond bool
		const.int 0
		store i
		loop.cond
		push i
		push n
		binary lt
		loop.cond.end
		push i
		call.value step int 1
		store i
		loop.continue.end
		push cond
		if.true
		continue
		if.true.end
		if.false
		if.false.end
		if.end
		loop.end
		return.void
	`)
	require.NoError(t, err)
	require.NoError(t, interp.Run(program))

	ir.Dealias(irv)
	ir.Astify(irv)
	require.Empty(t, ir.ValidatePostAstify(irv))

	calls := 0
	ir.VisitOps(irv.Registers, irv.Entry(fn), func(b *ir.Block, bi ir.BlockInstruction, op ir.OpCode) {
		if c, ok := op.(*ir.Call); ok && c.Fn == step {
			calls++
		}
	})
	assert.Equal(t, 2, calls, "the continue-clause call must be replicated once for the continue path and once for the body's normal fallthrough")
}

// TestDoWhileSwitchPropagatesBreak is boundary scenario S6: a do-while whose
// body is a switch with `case 1: continue;` needs a shared propagate_break
// variable threaded out through the switch, since a do-while's synthesized
// break from re-checking its condition would otherwise only escape the
// switch, not the loop.
func TestDoWhileSwitchPropagatesBreak(t *testing.T) {
	irv := runScript(t, `
		var k int
		var cond bool
		doloop
		push k
		switch
		switch.case 1
		continue
		switch.case.end
		switch.default
		break
		switch.case.end
		switch.end
		doloop.cond
		push cond
		doloop.end
		return.void
	`)
	ir.Dealias(irv)
	ir.Astify(irv)
	require.Empty(t, ir.ValidatePostAstify(irv))

	foundPropagateVar := false
	ir.VisitBlocks(irv.Registers, irv.Entry(irv.FunctionIds()[0]), func(b *ir.Block) {
		for _, vid := range b.Variables {
			if irv.Meta.Variables.Get(vid).Name == "propagate_break" {
				foundPropagateVar = true
			}
		}
	})
	assert.True(t, foundPropagateVar, "a propagate_break variable should be declared somewhere in the do-loop body")
}

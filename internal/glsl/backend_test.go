package glsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaderir/internal/ir"
)

func buildSimpleIR(t *testing.T) *ir.IR {
	t.Helper()
	irv := ir.NewIR(ir.ShaderFragment)
	fn := irv.Meta.Functions.New(ir.Function{Name: "main", ReturnType: ir.TypeFloat})
	b := ir.NewBuilder(irv, fn)

	one := irv.Meta.Constants.Float(ir.TypeFloat, 1)
	b.PushConstant(ir.TypedOperand{Id: ir.ConstOperand(one), Type: ir.TypeFloat})

	ptr := irv.Meta.Variables.New(ir.Variable{
		Name:  "notConstant",
		Type:  irv.Meta.Types.PointerTo(ir.TypeFloat),
		Scope: ir.Scope{Kind: ir.ScopeLocal},
	})
	b.PushVariable(ptr) // forces a real Load instruction, not a fold
	b.Binary(ir.OpAdd)
	b.Return(true)
	b.Finish()

	ir.Dealias(irv)
	ir.Astify(irv)
	return irv
}

func TestGenerateProducesFunctionSignature(t *testing.T) {
	irv := buildSimpleIR(t)
	out := Generate(irv)
	assert.Contains(t, out, "float main(")
	assert.Contains(t, out, "return")
}

func TestBasicTypeStrCoversVectorsAndMatrices(t *testing.T) {
	irv := ir.NewIR(ir.ShaderVertex)
	cases := map[ir.TypeId]string{
		ir.TypeVoid:   "void",
		ir.TypeVec4:   "vec4",
		ir.TypeIVec2:  "ivec2",
		ir.TypeMat4x4: "mat4",
		ir.TypeMat2x3: "mat2x3",
	}
	for id, want := range cases {
		assert.Equal(t, want, basicTypeStr(irv, id))
	}
}

func TestSwizzleLetters(t *testing.T) {
	want := []string{"x", "y", "z", "w"}
	for k, w := range want {
		require.Equal(t, w, swizzleLetter(uint32(k)))
	}
}

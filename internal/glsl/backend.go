// Package glsl is a minimal, structured-GLSL-ish text emitter that
// implements ir.Backend (C9/target contract). It is not a spec-normative
// component — concrete emitters are explicitly out of scope for the core —
// but gives the build -> dealias -> astify -> target pipeline a concrete,
// testable consumer, grounded on the type/operator name tables in
// output/glsl.rs (the original ANGLE GLSL generator this module's IR was
// distilled from).
package glsl

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"shaderir/internal/ir"
)

var log = commonlog.GetLogger("shaderir.glsl")

// Generator walks one *ir.IR via ir.Driver and accumulates GLSL-ish source
// text. A fresh Generator is single-use, mirroring the Rust Generator's own
// one-shot accumulation of preamble/type/variable/function text.
type Generator struct {
	irv *ir.IR

	out    strings.Builder
	indent int

	// expressions caches the rendered text for each value-producing
	// register, the same role as the Rust generator's own
	// `expressions: HashMap<RegisterId, String>` cache — an op referencing
	// an earlier register's value reads the cached text rather than
	// re-deriving it.
	expressions map[ir.RegisterId]string
}

// NewGenerator prepares a Generator for irv.
func NewGenerator(irv *ir.IR) *Generator {
	return &Generator{irv: irv, expressions: make(map[ir.RegisterId]string)}
}

// Generate runs the target driver over irv and returns the emitted source.
func Generate(irv *ir.IR) string {
	g := NewGenerator(irv)
	ir.NewDriver(irv).Run(g)
	return g.out.String()
}

func (g *Generator) writeIndent() { g.out.WriteString(strings.Repeat("    ", g.indent)) }

func (g *Generator) writeLine(format string, args ...any) {
	g.writeIndent()
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

func basicTypeStr(irv *ir.IR, id ir.TypeId) string {
	switch id {
	case ir.TypeVoid:
		return "void"
	case ir.TypeFloat:
		return "float"
	case ir.TypeInt:
		return "int"
	case ir.TypeUint:
		return "uint"
	case ir.TypeBool:
		return "bool"
	case ir.TypeAtomicCounter:
		return "atomic_uint"
	case ir.TypeYuvCsc:
		return "yuvCscStandardEXT"
	case ir.TypeVec2:
		return "vec2"
	case ir.TypeVec3:
		return "vec3"
	case ir.TypeVec4:
		return "vec4"
	case ir.TypeIVec2:
		return "ivec2"
	case ir.TypeIVec3:
		return "ivec3"
	case ir.TypeIVec4:
		return "ivec4"
	case ir.TypeUVec2:
		return "uvec2"
	case ir.TypeUVec3:
		return "uvec3"
	case ir.TypeUVec4:
		return "uvec4"
	case ir.TypeBVec2:
		return "bvec2"
	case ir.TypeBVec3:
		return "bvec3"
	case ir.TypeBVec4:
		return "bvec4"
	case ir.TypeMat2x2:
		return "mat2"
	case ir.TypeMat2x3:
		return "mat2x3"
	case ir.TypeMat2x4:
		return "mat2x4"
	case ir.TypeMat3x2:
		return "mat3x2"
	case ir.TypeMat3x3:
		return "mat3"
	case ir.TypeMat3x4:
		return "mat3x4"
	case ir.TypeMat4x2:
		return "mat4x2"
	case ir.TypeMat4x3:
		return "mat4x3"
	case ir.TypeMat4x4:
		return "mat4"
	default:
		if s, ok := irv.Meta.Types.Get(id).(ir.Struct); ok {
			return s.Name
		}
		if p, ok := irv.Meta.Types.IsPointer(id); ok {
			return basicTypeStr(irv, p)
		}
		return fmt.Sprintf("/*type#%d*/", id)
	}
}

var binarySymbol = map[ir.BinaryOperator]string{
	ir.OpAdd: "+", ir.OpSub: "-", ir.OpMul: "*",
	ir.OpVectorTimesScalar: "*", ir.OpMatrixTimesScalar: "*",
	ir.OpVectorTimesMatrix: "*", ir.OpMatrixTimesVector: "*", ir.OpMatrixTimesMatrix: "*",
	ir.OpDiv: "/", ir.OpIMod: "%", ir.OpLogicalXor: "^^",
	ir.OpEqual: "==", ir.OpNotEqual: "!=",
	ir.OpLessThan: "<", ir.OpGreaterThan: ">",
	ir.OpLessThanEqual: "<=", ir.OpGreaterThanEqual: ">=",
	ir.OpBitShiftLeft: "<<", ir.OpBitShiftRight: ">>",
	ir.OpBitwiseOr: "|", ir.OpBitwiseXor: "^", ir.OpBitwiseAnd: "&",
}

var unarySymbol = map[ir.UnaryOperator]string{
	ir.OpNegate: "-", ir.OpLogicalNot: "!", ir.OpBitwiseNot: "~",
}

func (g *Generator) operand(o ir.OperandId) string {
	switch {
	case o.IsRegister():
		if s, ok := g.expressions[o.Register]; ok {
			return s
		}
		return fmt.Sprintf("r%d", o.Register)
	case o.IsConstant():
		return g.constantText(o.Constant)
	case o.IsVariable():
		return g.irv.Meta.Variables.Get(o.Variable).Name
	default:
		return o.String()
	}
}

func (g *Generator) constantText(id ir.ConstantId) string {
	c := g.irv.Meta.Constants.Get(id)
	return c.Value.String()
}

// Begin writes nothing yet — GLSL has no preamble this generator emits
// ahead of declarations, but the hook exists for a backend (e.g. one that
// writes a `#version` line) that needs one.
func (g *Generator) Begin() {
	log.Debug("glsl: begin")
}

// DeclareType emits a struct definition; every other Type the teacher's
// basicTypeStr table already names inline at every use site, so there is
// nothing to predeclare for them.
func (g *Generator) DeclareType(id ir.TypeId, t ir.Type) {
	s, ok := t.(ir.Struct)
	if !ok {
		return
	}
	g.writeLine("struct %s {", s.Name)
	g.indent++
	for _, f := range s.Fields {
		g.writeLine("%s %s;", basicTypeStr(g.irv, f.Type), f.Name)
	}
	g.indent--
	g.writeLine("};")
}

// DeclareConstant is a no-op: constants are rendered inline at every operand
// use (constantText), the same way the teacher's original generator never
// hoists a named `const` out of its use site.
func (g *Generator) DeclareConstant(id ir.ConstantId, c ir.Constant) {}

// DeclareVariable emits a global variable's declaration line, including its
// precision qualifier and any layout decorations attached to it. Parameters
// are declared by BeginFunction; function-local variables are not declared
// anywhere in the output and appear only by name at their uses.
func (g *Generator) DeclareVariable(id ir.VariableId, v *ir.Variable) {
	if v.Scope.Kind != ir.ScopeGlobal {
		return
	}
	declType := basicTypeStr(g.irv, g.irv.Meta.Types.Deref(v.Type))
	prefix := ""
	if v.Precision != ir.NotApplicable {
		prefix = v.Precision.String() + " "
	}
	if len(v.Decorations) > 0 {
		prefix = g.layoutQualifier(v.Decorations) + " " + prefix
	}
	g.writeLine("%s%s %s;", prefix, declType, v.Name)
}

func (g *Generator) layoutQualifier(decs []ir.Decoration) string {
	var ids []string
	for _, d := range decs {
		switch d.Kind {
		case ir.DecLocation:
			ids = append(ids, fmt.Sprintf("location = %d", d.N))
		case ir.DecBinding:
			ids = append(ids, fmt.Sprintf("binding = %d", d.N))
		case ir.DecOffset:
			ids = append(ids, fmt.Sprintf("offset = %d", d.N))
		case ir.DecIndex:
			ids = append(ids, fmt.Sprintf("index = %d", d.N))
		}
	}
	if len(ids) == 0 {
		return ""
	}
	return fmt.Sprintf("layout(%s)", strings.Join(ids, ", "))
}

// DeclareFunction is a no-op: BeginFunction writes the signature line at the
// point the Driver actually walks into the function body, which is the only
// place this generator needs it.
func (g *Generator) DeclareFunction(id ir.FunctionId, fn *ir.Function) {}

// GlobalScope emits the shader-stage pragma line this generator uses in
// place of a real `#version`/extension preamble.
func (g *Generator) GlobalScope(meta *ir.Meta) {
	switch meta.ShaderKind {
	case ir.ShaderVertex:
		g.writeLine("// stage: vertex")
	case ir.ShaderFragment:
		g.writeLine("// stage: fragment")
		if meta.EarlyFragmentTests {
			g.writeLine("layout(early_fragment_tests) in;")
		}
	case ir.ShaderCompute:
		g.writeLine("// stage: compute")
	case ir.ShaderGeometry:
		g.writeLine("// stage: geometry")
	case ir.ShaderTessControl:
		g.writeLine("// stage: tess_control")
		if meta.TcsVertices > 0 {
			g.writeLine("layout(vertices = %d) out;", meta.TcsVertices)
		}
	case ir.ShaderTessEvaluation:
		g.writeLine("// stage: tess_evaluation")
	}
	if meta.AdvancedBlendEquations.All() {
		g.writeLine("layout(blend_support_all_equations) out;")
	}
}

// End is a no-op for this generator: every function already closed its own
// braces in EndFunction.
func (g *Generator) End() {
	log.Debug("glsl: end")
}

// BeginFunction writes the function's opening signature line.
func (g *Generator) BeginFunction(id ir.FunctionId, fn *ir.Function) {
	retType := basicTypeStr(g.irv, fn.ReturnType)
	var params []string
	for _, p := range fn.Params {
		v := g.irv.Meta.Variables.Get(p)
		params = append(params, fmt.Sprintf("%s %s", basicTypeStr(g.irv, g.irv.Meta.Types.Deref(v.Type)), v.Name))
	}
	g.writeLine("%s %s(%s) {", retType, fn.Name, strings.Join(params, ", "))
	g.indent++
	log.Debugf("glsl: begin function %s#%d", fn.Name, id)
}

func (g *Generator) EndFunction(id ir.FunctionId) {
	g.indent--
	g.writeLine("}")
}

// Instr renders one instruction: value-producing ops cache their expression
// text for later operands to reference; void ops emit a statement directly.
func (g *Generator) Instr(op ir.OpCode, result *ir.TypedRegister) {
	expr, isStatement := g.render(op)
	if result != nil {
		g.expressions[result.Id] = expr
		return
	}
	if isStatement {
		g.writeLine("%s;", expr)
	}
}

func (g *Generator) render(op ir.OpCode) (text string, isStatement bool) {
	switch o := op.(type) {
	case *ir.Load:
		return g.operand(o.Ptr), false
	case *ir.Store:
		return fmt.Sprintf("%s = %s", g.operand(o.Ptr), g.operand(o.Val)), true
	case *ir.Alias:
		return g.operand(o.Id), false
	case *ir.Call:
		fn := g.irv.Meta.Functions.Get(o.Fn)
		args := make([]string, len(o.Args))
		for i, a := range o.Args {
			args[i] = g.operand(a)
		}
		return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(args, ", ")), true
	case *ir.MergeInput:
		return "/* merge input: astify should have removed this */", false

	case *ir.ExtractVectorComponent, *ir.AccessVectorComponent:
		v, k := vectorComponentOperands(o)
		return fmt.Sprintf("%s.%s", g.operand(v), swizzleLetter(k)), false
	case *ir.ExtractVectorComponentMulti, *ir.AccessVectorComponentMulti:
		v, ks := vectorComponentMultiOperands(o)
		var sw strings.Builder
		for _, k := range ks {
			sw.WriteString(swizzleLetter(k))
		}
		return fmt.Sprintf("%s.%s", g.operand(v), sw.String()), false
	case *ir.ExtractVectorComponentDynamic:
		return fmt.Sprintf("%s[%s]", g.operand(o.V), g.operand(o.K)), false
	case *ir.AccessVectorComponentDynamic:
		return fmt.Sprintf("%s[%s]", g.operand(o.V), g.operand(o.K)), false
	case *ir.ExtractMatrixColumn:
		return fmt.Sprintf("%s[%d]", g.operand(o.M), o.K), false
	case *ir.AccessMatrixColumn:
		return fmt.Sprintf("%s[%d]", g.operand(o.M), o.K), false
	case *ir.ExtractStructField:
		return fmt.Sprintf("%s.field%d", g.operand(o.S), o.K), false
	case *ir.AccessStructField:
		return fmt.Sprintf("%s.field%d", g.operand(o.S), o.K), false
	case *ir.ExtractArrayElement:
		return fmt.Sprintf("%s[%s]", g.operand(o.A), g.operand(o.K)), false
	case *ir.AccessArrayElement:
		return fmt.Sprintf("%s[%s]", g.operand(o.A), g.operand(o.K)), false

	case *ir.ConstructScalarFromScalar, *ir.ConstructVectorFromScalar,
		*ir.ConstructMatrixFromScalar, *ir.ConstructMatrixFromMatrix:
		return g.singleArgConstruct(o), false
	case *ir.ConstructVectorFromMultiple:
		return g.multiArgConstruct(o.Args), false
	case *ir.ConstructMatrixFromMultiple:
		return g.multiArgConstruct(o.Args), false
	case *ir.ConstructStruct:
		return g.multiArgConstruct(o.Args), false
	case *ir.ConstructArray:
		return g.multiArgConstruct(o.Args), false

	case *ir.Unary:
		return fmt.Sprintf("%s%s", unarySymbol[o.Op], g.operand(o.X)), false
	case *ir.Binary:
		return fmt.Sprintf("(%s %s %s)", g.operand(o.L), binarySymbol[o.Op], g.operand(o.R)), false

	default:
		return fmt.Sprintf("/* unhandled op %s */", op.OpName()), true
	}
}

func (g *Generator) singleArgConstruct(op ir.OpCode) string {
	x := op.Operands()[0]
	return fmt.Sprintf("(%s)", g.operand(x))
}

func (g *Generator) multiArgConstruct(args []ir.OperandId) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = g.operand(a)
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func vectorComponentOperands(op ir.OpCode) (ir.OperandId, uint32) {
	switch o := op.(type) {
	case *ir.ExtractVectorComponent:
		return o.V, o.K
	case *ir.AccessVectorComponent:
		return o.V, o.K
	}
	panic("vectorComponentOperands: unreachable")
}

func vectorComponentMultiOperands(op ir.OpCode) (ir.OperandId, []uint32) {
	switch o := op.(type) {
	case *ir.ExtractVectorComponentMulti:
		return o.V, o.K
	case *ir.AccessVectorComponentMulti:
		return o.V, o.K
	}
	panic("vectorComponentMultiOperands: unreachable")
}

func swizzleLetter(k uint32) string {
	switch k {
	case 0:
		return "x"
	case 1:
		return "y"
	case 2:
		return "z"
	case 3:
		return "w"
	default:
		return fmt.Sprintf("/*%d*/", k)
	}
}

func (g *Generator) IfStmt(cond ir.OperandId, trueBranch func(), falseBranch func()) {
	g.writeLine("if (%s) {", g.operand(cond))
	g.indent++
	trueBranch()
	g.indent--
	g.writeLine("} else {")
	g.indent++
	falseBranch()
	g.indent--
	g.writeLine("}")
}

// LoopStmt renders a for/while loop. Astify has already spliced the
// continue clause into every `continue` and into the body's own normal
// fallthrough (§4.6.4), so the body closure alone carries everything that
// needs to run per iteration.
func (g *Generator) LoopStmt(condBlock func() ir.OperandId, body func()) {
	cond := condBlock()
	g.writeLine("while (%s) {", g.operand(cond))
	g.indent++
	body()
	g.indent--
	g.writeLine("}")
}

// DoLoopStmt renders a do-while. Astify has already stripped the trailing
// condition check and replaced it with an inline recheck ending in an
// explicit break/continue inside the body (§4.6.4, invariant 7(d)), so this
// generator emits an unconditional loop and lets the body's own break decide
// when it ends.
func (g *Generator) DoLoopStmt(body func()) {
	g.writeLine("for (;;) {")
	g.indent++
	body()
	g.indent--
	g.writeLine("}")
}

func (g *Generator) SwitchStmt(expr ir.OperandId, cases []ir.SwitchCase) {
	g.writeLine("switch (%s) {", g.operand(expr))
	g.indent++
	for _, c := range cases {
		if c.Label == nil {
			g.writeLine("default:")
		} else {
			g.writeLine("case %s:", g.constantText(*c.Label))
		}
		g.indent++
		c.Body()
		g.indent--
	}
	g.indent--
	g.writeLine("}")
}

func (g *Generator) Return(val *ir.OperandId) {
	if val == nil {
		g.writeLine("return;")
		return
	}
	g.writeLine("return %s;", g.operand(*val))
}

func (g *Generator) Break()    { g.writeLine("break;") }
func (g *Generator) Continue() { g.writeLine("continue;") }
func (g *Generator) Discard()  { g.writeLine("discard;") }

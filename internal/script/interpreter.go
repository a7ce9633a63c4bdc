package script

import (
	"fmt"
	"strconv"

	"shaderir/internal/ir"
)

// Interpreter replays a parsed Program against an ir.Builder, standing in
// for the sequence of calls a real shader-language front end would make
// while walking one function body. It keeps its own name->id tables so a
// script can refer to variables and functions by name instead of by raw id.
type Interpreter struct {
	meta     *ir.Meta
	builder  *ir.Builder
	vars     map[string]ir.VariableId
	funcs    map[string]ir.FunctionId
}

// NewInterpreter builds an Interpreter that will emit fn's body into irv.
func NewInterpreter(irv *ir.IR, fn ir.FunctionId, vars map[string]ir.VariableId, funcs map[string]ir.FunctionId) *Interpreter {
	return &Interpreter{
		meta:    irv.Meta,
		builder: ir.NewBuilder(irv, fn),
		vars:    vars,
		funcs:   funcs,
	}
}

// Run executes every instruction in order, then closes the function body.
func (in *Interpreter) Run(p *Program) error {
	for _, instr := range p.Instructions {
		if err := in.step(instr); err != nil {
			return &Error{Pos: instr.Pos, Op: instr.Op, Err: err}
		}
	}
	in.builder.Finish()
	return nil
}

func typeByName(name string) (ir.TypeId, error) {
	switch name {
	case "void":
		return ir.TypeVoid, nil
	case "float":
		return ir.TypeFloat, nil
	case "int":
		return ir.TypeInt, nil
	case "uint":
		return ir.TypeUint, nil
	case "bool":
		return ir.TypeBool, nil
	case "vec2":
		return ir.TypeVec2, nil
	case "vec3":
		return ir.TypeVec3, nil
	case "vec4":
		return ir.TypeVec4, nil
	default:
		return 0, fmt.Errorf("unknown type name %q", name)
	}
}

func binaryOpByName(name string) (ir.BinaryOperator, error) {
	switch name {
	case "add":
		return ir.OpAdd, nil
	case "sub":
		return ir.OpSub, nil
	case "mul":
		return ir.OpMul, nil
	case "div":
		return ir.OpDiv, nil
	case "mod":
		return ir.OpIMod, nil
	case "eq":
		return ir.OpEqual, nil
	case "neq":
		return ir.OpNotEqual, nil
	case "lt":
		return ir.OpLessThan, nil
	case "gt":
		return ir.OpGreaterThan, nil
	case "le":
		return ir.OpLessThanEqual, nil
	case "ge":
		return ir.OpGreaterThanEqual, nil
	case "shl":
		return ir.OpBitShiftLeft, nil
	case "shr":
		return ir.OpBitShiftRight, nil
	case "and":
		return ir.OpBitwiseAnd, nil
	case "or":
		return ir.OpBitwiseOr, nil
	case "xor":
		return ir.OpBitwiseXor, nil
	default:
		return 0, fmt.Errorf("unknown binary operator %q", name)
	}
}

func unaryOpByName(name string) (ir.UnaryOperator, error) {
	switch name {
	case "neg":
		return ir.OpNegate, nil
	case "not":
		return ir.OpLogicalNot, nil
	case "bitnot":
		return ir.OpBitwiseNot, nil
	case "length":
		return ir.OpArrayLength, nil
	default:
		return 0, fmt.Errorf("unknown unary operator %q", name)
	}
}

func swizzleIndex(letter byte) (uint32, error) {
	switch letter {
	case 'x', 'r', 's':
		return 0, nil
	case 'y', 'g', 't':
		return 1, nil
	case 'z', 'b', 'p':
		return 2, nil
	case 'w', 'a', 'q':
		return 3, nil
	default:
		return 0, fmt.Errorf("unknown swizzle letter %q", letter)
	}
}

func (in *Interpreter) variable(name string) (ir.VariableId, error) {
	v, ok := in.vars[name]
	if !ok {
		return 0, fmt.Errorf("undeclared variable %q", name)
	}
	return v, nil
}

func (in *Interpreter) function(name string) (ir.FunctionId, error) {
	f, ok := in.funcs[name]
	if !ok {
		return 0, fmt.Errorf("undeclared function %q", name)
	}
	return f, nil
}

func (in *Interpreter) step(instr *Instruction) error {
	args := instr.Args
	switch instr.Op {
	case "var":
		if len(args) != 2 {
			return fmt.Errorf("var wants <name> <type>")
		}
		typ, err := typeByName(args[1])
		if err != nil {
			return err
		}
		id := in.meta.Variables.New(ir.Variable{
			Name: args[0],
			Type: in.meta.Types.PointerTo(typ),
			Scope: ir.Scope{Kind: ir.ScopeLocal},
		})
		in.vars[args[0]] = id
		return nil

	case "const.float":
		if len(args) != 1 {
			return fmt.Errorf("const.float wants one literal")
		}
		f, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return err
		}
		id := in.meta.Constants.Float(ir.TypeFloat, float32(f))
		in.builder.PushConstant(ir.TypedOperand{Id: ir.ConstOperand(id), Type: ir.TypeFloat})
		return nil

	case "const.int":
		if len(args) != 1 {
			return fmt.Errorf("const.int wants one literal")
		}
		i, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return err
		}
		id := in.meta.Constants.Int(ir.TypeInt, int32(i))
		in.builder.PushConstant(ir.TypedOperand{Id: ir.ConstOperand(id), Type: ir.TypeInt})
		return nil

	case "const.bool":
		if len(args) != 1 {
			return fmt.Errorf("const.bool wants true|false")
		}
		id := in.meta.Constants.Bool(args[0] == "true")
		in.builder.PushConstant(ir.TypedOperand{Id: ir.ConstOperand(id), Type: ir.TypeBool})
		return nil

	case "push":
		if len(args) != 1 {
			return fmt.Errorf("push wants <name>")
		}
		v, err := in.variable(args[0])
		if err != nil {
			return err
		}
		in.builder.PushVariable(v)
		return nil

	case "pushptr":
		if len(args) != 1 {
			return fmt.Errorf("pushptr wants <name>")
		}
		v, err := in.variable(args[0])
		if err != nil {
			return err
		}
		in.builder.PushVariablePointer(v)
		return nil

	case "store":
		if len(args) != 1 {
			return fmt.Errorf("store wants <name>")
		}
		v, err := in.variable(args[0])
		if err != nil {
			return err
		}
		variable := in.meta.Variables.Get(v)
		in.builder.Assign(ir.TypedOperand{Id: ir.VarOperand(v), Type: variable.Type, Precision: variable.Precision})
		return nil

	case "swizzle":
		if len(args) != 2 {
			return fmt.Errorf("swizzle wants <letters> <result-type>")
		}
		resultType, err := typeByName(args[1])
		if err != nil {
			return err
		}
		letters := args[0]
		ks := make([]uint32, len(letters))
		for i := 0; i < len(letters); i++ {
			k, err := swizzleIndex(letters[i])
			if err != nil {
				return err
			}
			ks[i] = k
		}
		if len(ks) == 1 {
			in.builder.VectorComponent(ks[0], resultType)
		} else {
			in.builder.VectorComponentMulti(ks, resultType)
		}
		return nil

	case "binary":
		if len(args) != 1 {
			return fmt.Errorf("binary wants <op>")
		}
		op, err := binaryOpByName(args[0])
		if err != nil {
			return err
		}
		in.builder.Binary(op)
		return nil

	case "unary":
		if len(args) != 1 {
			return fmt.Errorf("unary wants <op>")
		}
		op, err := unaryOpByName(args[0])
		if err != nil {
			return err
		}
		in.builder.Unary(op)
		return nil

	case "call.void":
		if len(args) != 2 {
			return fmt.Errorf("call.void wants <name> <argc>")
		}
		fn, err := in.function(args[0])
		if err != nil {
			return err
		}
		argc, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		in.builder.CallVoid(fn, argc)
		return nil

	case "call.value":
		if len(args) != 3 {
			return fmt.Errorf("call.value wants <name> <type> <argc>")
		}
		fn, err := in.function(args[0])
		if err != nil {
			return err
		}
		typ, err := typeByName(args[1])
		if err != nil {
			return err
		}
		argc, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		in.builder.CallValue(fn, typ, argc)
		return nil

	case "return.void":
		in.builder.Return(false)
		return nil
	case "return.value":
		in.builder.Return(true)
		return nil
	case "discard":
		in.builder.Discard()
		return nil
	case "break":
		in.builder.Break()
		return nil
	case "continue":
		in.builder.Continue()
		return nil

	case "if.true":
		in.builder.BeginIfTrueBlock()
		return nil
	case "if.true.end":
		in.builder.EndIfTrueBlock(len(args) == 1 && args[0] == "value")
		return nil
	case "if.false":
		in.builder.BeginIfFalseBlock()
		return nil
	case "if.false.end":
		in.builder.EndIfFalseBlock(len(args) == 1 && args[0] == "value")
		return nil
	case "if.end":
		if len(args) != 0 {
			return fmt.Errorf("if.end takes no arguments; merge type/precision are derived from the branches")
		}
		in.builder.EndIf()
		return nil

	case "loop.cond":
		in.builder.BeginLoopCondition()
		return nil
	case "loop.cond.end":
		in.builder.EndLoopCondition()
		return nil
	case "loop.continue.end":
		in.builder.EndLoopContinue()
		return nil
	case "loop.end":
		in.builder.EndLoop()
		return nil

	case "doloop":
		in.builder.BeginDoLoop()
		return nil
	case "doloop.cond":
		in.builder.BeginDoLoopCondition()
		return nil
	case "doloop.end":
		in.builder.EndDoLoop()
		return nil

	case "switch":
		in.builder.BeginSwitch()
		return nil
	case "switch.case":
		if len(args) != 1 {
			return fmt.Errorf("switch.case wants <int-literal>")
		}
		lit, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return err
		}
		label := in.meta.Constants.Int(ir.TypeInt, int32(lit))
		in.builder.BeginCase(label)
		return nil
	case "switch.default":
		in.builder.BeginDefault()
		return nil
	case "switch.case.end":
		in.builder.EndCase()
		return nil
	case "switch.end":
		in.builder.EndSwitch()
		return nil

	default:
		return fmt.Errorf("unrecognized instruction %q", instr.Op)
	}
}

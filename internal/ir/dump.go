package ir

import (
	"fmt"
	"strings"
)

// Dumper formats an IR as deterministic, indented text (C10), in the same
// indent/writeLine style the teacher's own Printer uses. Output depends
// only on the IR's content, never on map iteration order or pointer
// identity, so two builds of the same program dump byte-identical.
type Dumper struct {
	ir     *IR
	b      strings.Builder
	indent int
}

func Dump(ir *IR) string {
	d := &Dumper{ir: ir}
	for _, fn := range ir.FunctionIds() {
		d.dumpFunction(fn)
	}
	return d.b.String()
}

func (d *Dumper) writeLine(format string, args ...any) {
	d.b.WriteString(strings.Repeat("  ", d.indent))
	fmt.Fprintf(&d.b, format, args...)
	d.b.WriteByte('\n')
}

func (d *Dumper) dumpFunction(id FunctionId) {
	fn := d.ir.Meta.Functions.Get(id)
	d.writeLine("function %s#%d -> type#%d", fn.Name, id, fn.ReturnType)
	d.indent++
	d.dumpBlock(d.ir.Entry(id))
	d.indent--
}

func (d *Dumper) dumpBlock(b *Block) {
	if b == nil {
		d.writeLine("<nil block>")
		return
	}
	for _, v := range b.Variables {
		d.writeLine("var %s", d.varString(v))
	}
	for _, bi := range b.Instructions {
		if bi.IsVoid() {
			d.writeLine("%s", d.opString(bi.Void))
			continue
		}
		inst := d.ir.Registers.Get(bi.Reg)
		d.writeLine("r%d: type#%d %s = %s", bi.Reg, inst.Result.Type, inst.Result.Precision, d.opString(inst.Op))
	}

	switch t := b.Terminator.(type) {
	case *If:
		d.writeLine("if %s", d.operandString(t.Cond))
		d.writeLine("true:")
		d.indent++
		d.dumpBlock(b.Block1)
		d.indent--
		d.writeLine("false:")
		d.indent++
		d.dumpBlock(b.Block2)
		d.indent--
		if b.MergeBlock != nil {
			d.writeLine("merge:")
			d.indent++
			d.dumpBlock(b.MergeBlock)
			d.indent--
		}
	case *Loop:
		d.writeLine("loop")
		d.writeLine("condition:")
		d.indent++
		d.dumpBlock(b.LoopCondition)
		d.indent--
		d.writeLine("body:")
		d.indent++
		d.dumpBlock(b.Block1)
		d.indent--
		if b.Block2 != nil {
			d.writeLine("continue:")
			d.indent++
			d.dumpBlock(b.Block2)
			d.indent--
		}
		if b.MergeBlock != nil {
			d.writeLine("merge:")
			d.indent++
			d.dumpBlock(b.MergeBlock)
			d.indent--
		}
	case *DoLoop:
		d.writeLine("do-loop")
		d.writeLine("body:")
		d.indent++
		d.dumpBlock(b.Block1)
		d.indent--
		d.writeLine("condition:")
		d.indent++
		d.dumpBlock(b.LoopCondition)
		d.indent--
		if b.MergeBlock != nil {
			d.writeLine("merge:")
			d.indent++
			d.dumpBlock(b.MergeBlock)
			d.indent--
		}
	case *Switch:
		d.writeLine("switch %s", d.operandString(t.Expr))
		for i, label := range t.Cases {
			if label == nil {
				d.writeLine("default:")
			} else {
				d.writeLine("case %s:", d.ir.Meta.Constants.Get(*label).Value.String())
			}
			d.indent++
			d.dumpBlock(b.CaseBlocks[i])
			d.indent--
		}
		if b.MergeBlock != nil {
			d.writeLine("merge:")
			d.indent++
			d.dumpBlock(b.MergeBlock)
			d.indent--
		}
	case *Return:
		if t.Val != nil {
			d.writeLine("return %s", d.operandString(*t.Val))
		} else {
			d.writeLine("return")
		}
	case *Break:
		d.writeLine("break")
	case *Continue:
		d.writeLine("continue")
	case *Discard:
		d.writeLine("discard")
	case *Merge:
		d.writeLine("merge-leaf")
	case *Passthrough:
		d.writeLine("passthrough")
	case *NextBlock:
		d.writeLine("next")
	default:
		d.writeLine("<no terminator>")
	}
}

func (d *Dumper) varString(id VariableId) string {
	v := d.ir.Meta.Variables.Get(id)
	return fmt.Sprintf("v%d(%s):type#%d", id, v.Name, v.Type)
}

func (d *Dumper) operandString(o OperandId) string {
	switch o.Kind {
	case OperandConstant:
		return fmt.Sprintf("c%d(%s)", o.Constant, d.ir.Meta.Constants.Get(o.Constant).Value.String())
	case OperandVariable:
		return d.varString(o.Variable)
	default:
		return o.String()
	}
}

func (d *Dumper) opString(op OpCode) string {
	operands := op.Operands()
	parts := make([]string, len(operands))
	for i, o := range operands {
		parts[i] = d.operandString(o)
	}
	return fmt.Sprintf("%s(%s)", op.OpName(), strings.Join(parts, ", "))
}

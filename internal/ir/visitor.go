package ir

// Visitor is the read-only traversal contract (C5): VisitBlock is called
// once per reachable block, pre-order, before its sub-blocks; VisitOp once
// per instruction, void or register, in program order within its block.
// Implementations that only care about one of the two simply leave the
// other method empty.
type Visitor interface {
	VisitBlock(b *Block)
	VisitOp(b *Block, bi BlockInstruction, op OpCode)
}

// Walk drives v over every block reachable from entry, following each
// block's SubBlocks() in order and never revisiting a block (merge blocks
// are shared, so naive recursion would otherwise double-visit them).
func Walk(regs *RegisterArena, entry *Block, v Visitor) {
	seen := make(map[*Block]bool)
	var rec func(b *Block)
	rec = func(b *Block) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		v.VisitBlock(b)
		for _, bi := range b.Instructions {
			v.VisitOp(b, bi, bi.Op(regs))
		}
		for _, sub := range b.SubBlocks() {
			rec(sub)
		}
	}
	rec(entry)
}

// WalkIR drives v over every function entry in an IR, in declaration order.
func WalkIR(ir *IR, v Visitor) {
	for _, fn := range ir.FunctionIds() {
		Walk(ir.Registers, ir.Entry(fn), v)
	}
}

// visitorFunc adapts two plain functions into a Visitor, for callers that
// only need one of VisitBlock/VisitOp.
type visitorFunc struct {
	block func(*Block)
	op    func(*Block, BlockInstruction, OpCode)
}

func (f visitorFunc) VisitBlock(b *Block) {
	if f.block != nil {
		f.block(b)
	}
}

func (f visitorFunc) VisitOp(b *Block, bi BlockInstruction, op OpCode) {
	if f.op != nil {
		f.op(b, bi, op)
	}
}

// VisitBlocks walks entry calling fn on every reachable block.
func VisitBlocks(regs *RegisterArena, entry *Block, fn func(*Block)) {
	Walk(regs, entry, visitorFunc{block: fn})
}

// VisitOps walks entry calling fn on every instruction in every reachable
// block.
func VisitOps(regs *RegisterArena, entry *Block, fn func(*Block, BlockInstruction, OpCode)) {
	Walk(regs, entry, visitorFunc{op: fn})
}

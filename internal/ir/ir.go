package ir

// IR is the root artifact produced by a Builder and consumed by every
// downstream pass (dealias, astify, the debug dumper, the validator, and
// target drivers): the shared arenas plus one entry block per function.
type IR struct {
	Meta      *Meta
	Registers *RegisterArena
	Entries   map[FunctionId]*Block
}

// NewIR builds an empty IR for the given shader stage, with fresh arenas.
func NewIR(kind ShaderKind) *IR {
	return &IR{
		Meta:      NewMeta(kind),
		Registers: NewRegisterArena(),
		Entries:   make(map[FunctionId]*Block),
	}
}

// Entry returns a function's entry block, or nil if it hasn't been built.
func (ir *IR) Entry(fn FunctionId) *Block { return ir.Entries[fn] }

// FunctionIds returns every function id with a built entry, in ascending
// (declaration) order — the order the target contract (§6) walks them in.
func (ir *IR) FunctionIds() []FunctionId {
	ids := make([]FunctionId, 0, ir.Meta.Functions.Len())
	for i := 0; i < ir.Meta.Functions.Len(); i++ {
		id := FunctionId(i)
		if _, ok := ir.Entries[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

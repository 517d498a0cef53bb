package ir

// Instruction is a node in a block's instruction list.
//
// The set of instructions is closed; every implementation lives in this
// package.
type Instruction interface {
	// Block returns the block containing the instruction, or nil if it is
	// detached.
	Block() *Block
	Prev() Instruction
	Next() Instruction

	Operands() []Value
	Operand(i int) Value
	// SetOperand replaces operand i, keeping the usage lists of the old
	// and new values up to date.
	SetOperand(i int, v Value)
	SetOperands(vs ...Value)

	Results() []*InstructionResult
	// Result returns the first result, or nil.
	Result() *InstructionResult
	SetResults(rs ...*InstructionResult)
	// DetachResult removes and returns the single result of the
	// instruction without destroying it.
	DetachResult() *InstructionResult

	Alive() bool
	// Destroy removes the instruction from its block, drops its operands
	// and destroys its results.
	Destroy()

	// Remove detaches the instruction from its block without destroying it.
	Remove()
	// InsertBefore inserts the instruction before the given anchor.
	InsertBefore(before Instruction)
	// InsertAfter inserts the instruction after the given anchor.
	InsertAfter(after Instruction)
	// ReplaceWith puts inst in place of this instruction, which is removed
	// but left alive.
	ReplaceWith(inst Instruction)

	// FriendlyName returns the opcode name of the instruction.
	FriendlyName() string

	base() *instructionBase
	clone(ctx *CloneContext) Instruction
}

// Terminator is an instruction that ends a block.
type Terminator interface {
	Instruction

	// Args returns the values passed to the branch target.
	Args() []Value

	terminator()
}

type instructionBase struct {
	self Instruction

	block *Block
	prev  Instruction
	next  Instruction

	operands []Value
	results  []*InstructionResult

	dead bool
}

func (b *instructionBase) init(self Instruction) {
	b.self = self
}

func (b *instructionBase) base() *instructionBase { return b }

func (b *instructionBase) Block() *Block     { return b.block }
func (b *instructionBase) Prev() Instruction { return b.prev }
func (b *instructionBase) Next() Instruction { return b.next }

func (b *instructionBase) Operands() []Value { return b.operands }

func (b *instructionBase) Operand(i int) Value {
	if i < 0 || i >= len(b.operands) {
		return nil
	}
	return b.operands[i]
}

func (b *instructionBase) SetOperand(i int, v Value) {
	if old := b.operands[i]; old != nil {
		old.RemoveUsage(Usage{Instruction: b.self, Operand: i})
	}
	b.operands[i] = v
	if v != nil {
		v.AddUsage(Usage{Instruction: b.self, Operand: i})
	}
}

func (b *instructionBase) SetOperands(vs ...Value) {
	b.clearOperands()
	b.addOperands(vs...)
}

func (b *instructionBase) addOperands(vs ...Value) {
	for _, v := range vs {
		i := len(b.operands)
		b.operands = append(b.operands, v)
		if v != nil {
			v.AddUsage(Usage{Instruction: b.self, Operand: i})
		}
	}
}

func (b *instructionBase) clearOperands() {
	for i, v := range b.operands {
		if v != nil {
			v.RemoveUsage(Usage{Instruction: b.self, Operand: i})
		}
	}
	b.operands = b.operands[:0]
}

// insertOperand inserts v at position i, renumbering the usages of the
// operands that follow.
func (b *instructionBase) insertOperand(i int, v Value) {
	tail := append([]Value(nil), b.operands[i:]...)
	for len(b.operands) > i {
		b.removeLastOperand()
	}
	b.addOperands(v)
	b.addOperands(tail...)
}

func (b *instructionBase) removeLastOperand() {
	i := len(b.operands) - 1
	if v := b.operands[i]; v != nil {
		v.RemoveUsage(Usage{Instruction: b.self, Operand: i})
	}
	b.operands = b.operands[:i]
}

func (b *instructionBase) Results() []*InstructionResult { return b.results }

func (b *instructionBase) Result() *InstructionResult {
	if len(b.results) == 0 {
		return nil
	}
	return b.results[0]
}

func (b *instructionBase) SetResults(rs ...*InstructionResult) {
	for _, r := range b.results {
		if r != nil && r.inst == b.self {
			r.inst = nil
		}
	}
	b.results = append(b.results[:0:0], rs...)
	for _, r := range b.results {
		if r != nil {
			r.inst = b.self
		}
	}
}

func (b *instructionBase) DetachResult() *InstructionResult {
	if len(b.results) != 1 {
		bug("%s: DetachResult with %d results", b.self.FriendlyName(), len(b.results))
	}
	r := b.results[0]
	r.inst = nil
	b.results = nil
	return r
}

func (b *instructionBase) Alive() bool { return !b.dead }

func (b *instructionBase) Destroy() {
	if b.dead {
		bug("%s destroyed twice", b.self.FriendlyName())
	}
	if b.block != nil {
		b.block.Remove(b.self)
	}
	b.clearOperands()
	for _, r := range b.results {
		r.inst = nil
		r.Destroy()
	}
	b.dead = true
}

func (b *instructionBase) Remove() {
	if b.block == nil {
		bug("%s removed while not in a block", b.self.FriendlyName())
	}
	b.block.Remove(b.self)
}

func (b *instructionBase) InsertBefore(before Instruction) {
	if before == nil || before.Block() == nil {
		bug("%s inserted before a detached instruction", b.self.FriendlyName())
	}
	before.Block().InsertBefore(before, b.self)
}

func (b *instructionBase) InsertAfter(after Instruction) {
	if after == nil || after.Block() == nil {
		bug("%s inserted after a detached instruction", b.self.FriendlyName())
	}
	after.Block().InsertAfter(after, b.self)
}

func (b *instructionBase) ReplaceWith(inst Instruction) {
	if b.block == nil {
		bug("%s replaced while not in a block", b.self.FriendlyName())
	}
	b.block.Replace(b.self, inst)
}

// cloneResults creates fresh results with the same types as rs and records
// the mapping in ctx.
func cloneResults(ctx *CloneContext, rs []*InstructionResult) []*InstructionResult {
	out := make([]*InstructionResult, len(rs))
	for i, r := range rs {
		out[i] = NewInstructionResult(r.Type())
		ctx.Replace(r, out[i])
	}
	return out
}

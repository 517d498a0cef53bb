package ir

// Block is a straight-line sequence of instructions. Once sealed, a block
// ends with exactly one terminator.
type Block struct {
	first Instruction
	last  Instruction
	count int

	parent ControlInstruction
	multi  *MultiInBlock

	dead bool
}

// NewBlock returns a new empty block.
func NewBlock() *Block {
	return &Block{}
}

// Parent returns the control instruction that owns the block. It is nil
// for function bodies and the module root block.
func (b *Block) Parent() ControlInstruction { return b.parent }

// SetParent sets the owning control instruction.
func (b *Block) SetParent(c ControlInstruction) { b.parent = c }

// AsMultiIn returns the MultiInBlock embedding b, or nil.
func (b *Block) AsMultiIn() *MultiInBlock { return b.multi }

// Front returns the first instruction, or nil if the block is empty.
func (b *Block) Front() Instruction { return b.first }

// Back returns the last instruction, or nil if the block is empty.
func (b *Block) Back() Instruction { return b.last }

// Length returns the number of instructions in the block.
func (b *Block) Length() int { return b.count }

// IsEmpty reports whether the block has no instructions.
func (b *Block) IsEmpty() bool { return b.count == 0 }

// Alive reports whether the block has not been destroyed.
func (b *Block) Alive() bool { return !b.dead }

// Terminator returns the last instruction if it is a terminator, or nil.
func (b *Block) Terminator() Terminator {
	t, _ := b.last.(Terminator)
	return t
}

// Instructions returns a snapshot of the instructions in the block. The
// block may be modified while iterating over the snapshot.
func (b *Block) Instructions() []Instruction {
	list := make([]Instruction, 0, b.count)
	for inst := b.first; inst != nil; inst = inst.Next() {
		list = append(list, inst)
	}
	return list
}

func (b *Block) claim(inst Instruction) *instructionBase {
	if inst == nil {
		bug("nil instruction added to block")
	}
	ib := inst.base()
	if ib.dead {
		bug("%s added to block after destruction", inst.FriendlyName())
	}
	if ib.block != nil {
		bug("%s added to block while in another block", inst.FriendlyName())
	}
	ib.block = b
	b.count++
	return ib
}

func (b *Block) owns(anchor Instruction) {
	if anchor == nil || anchor.Block() != b {
		bug("anchor instruction not in this block")
	}
}

// Prepend adds inst to the start of the block.
func (b *Block) Prepend(inst Instruction) {
	if b.first == nil {
		b.Append(inst)
		return
	}
	b.InsertBefore(b.first, inst)
}

// Append adds inst to the end of the block.
func (b *Block) Append(inst Instruction) {
	ib := b.claim(inst)
	ib.prev = b.last
	ib.next = nil
	if b.last != nil {
		b.last.base().next = inst
	} else {
		b.first = inst
	}
	b.last = inst
}

// InsertBefore adds inst immediately before the before instruction, which
// must be in this block.
func (b *Block) InsertBefore(before, inst Instruction) {
	b.owns(before)
	ib := b.claim(inst)
	bb := before.base()
	ib.prev = bb.prev
	ib.next = before
	if bb.prev != nil {
		bb.prev.base().next = inst
	} else {
		b.first = inst
	}
	bb.prev = inst
}

// InsertAfter adds inst immediately after the after instruction, which must
// be in this block.
func (b *Block) InsertAfter(after, inst Instruction) {
	b.owns(after)
	ib := b.claim(inst)
	ab := after.base()
	ib.prev = after
	ib.next = ab.next
	if ab.next != nil {
		ab.next.base().prev = inst
	} else {
		b.last = inst
	}
	ab.next = inst
}

// Replace puts inst in the position of target. The target is removed from
// the block but not destroyed.
func (b *Block) Replace(target, inst Instruction) {
	b.owns(target)
	b.InsertBefore(target, inst)
	b.Remove(target)
}

// Remove detaches inst from the block without destroying it.
func (b *Block) Remove(inst Instruction) {
	b.owns(inst)
	ib := inst.base()
	if ib.prev != nil {
		ib.prev.base().next = ib.next
	} else {
		b.first = ib.next
	}
	if ib.next != nil {
		ib.next.base().prev = ib.prev
	} else {
		b.last = ib.prev
	}
	ib.prev = nil
	ib.next = nil
	ib.block = nil
	b.count--
}

// Destroy destroys every instruction in the block, then the block itself.
func (b *Block) Destroy() {
	if b.dead {
		bug("block destroyed twice")
	}
	for b.first != nil {
		b.first.Destroy()
	}
	b.parent = nil
	b.dead = true
}

// CloneInto clones every instruction of b and appends the clones to dst.
func (b *Block) CloneInto(ctx *CloneContext, dst *Block) {
	for inst := b.first; inst != nil; inst = inst.Next() {
		dst.Append(inst.clone(ctx))
	}
}

// Clone returns a new block holding clones of the instructions of b.
func (b *Block) Clone(ctx *CloneContext) *Block {
	n := NewBlock()
	b.CloneInto(ctx, n)
	return n
}

// Walk calls fn for every instruction of the block in order, descending
// into the blocks of control instructions before moving on to the next
// instruction. Walking stops when fn returns false.
func (b *Block) Walk(fn func(inst Instruction) bool) bool {
	for inst := b.first; inst != nil; inst = inst.Next() {
		if !fn(inst) {
			return false
		}
		ctrl, ok := inst.(ControlInstruction)
		if !ok {
			continue
		}
		cont := true
		ctrl.ForeachBlock(func(child *Block) {
			if cont {
				cont = child.Walk(fn)
			}
		})
		if !cont {
			return false
		}
	}
	return true
}

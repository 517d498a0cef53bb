package ir

// MultiInBlock is a block that can be entered from more than one branch.
// It carries block parameters and records the sibling branches that target
// it.
type MultiInBlock struct {
	Block

	params  []*BlockParam
	inbound []Terminator
}

// NewMultiInBlock returns a new empty multi-in block.
func NewMultiInBlock() *MultiInBlock {
	m := &MultiInBlock{}
	m.multi = m
	return m
}

// Params returns the block parameters.
func (m *MultiInBlock) Params() []*BlockParam { return m.params }

// SetParams replaces the block parameters. Parameters no longer in the list
// lose their owner.
func (m *MultiInBlock) SetParams(params ...*BlockParam) {
	for _, p := range m.params {
		p.block = nil
	}
	m.params = append([]*BlockParam(nil), params...)
	for _, p := range m.params {
		if p == nil {
			bug("nil block parameter")
		}
		p.block = m
	}
}

// AddParam appends a block parameter.
func (m *MultiInBlock) AddParam(p *BlockParam) {
	if p == nil {
		bug("nil block parameter")
	}
	p.block = m
	m.params = append(m.params, p)
}

// InboundSiblingBranches returns the branches from sibling blocks that
// target this block.
func (m *MultiInBlock) InboundSiblingBranches() []Terminator { return m.inbound }

// AddInboundSiblingBranch records a branch targeting this block. The same
// branch may be recorded more than once.
func (m *MultiInBlock) AddInboundSiblingBranch(t Terminator) {
	if t == nil {
		bug("nil inbound sibling branch")
	}
	m.inbound = append(m.inbound, t)
}

// RemoveInboundSiblingBranch removes the first record of t. Removing a
// branch that was never added does nothing.
func (m *MultiInBlock) RemoveInboundSiblingBranch(t Terminator) {
	for i, x := range m.inbound {
		if x == t {
			m.inbound = append(m.inbound[:i], m.inbound[i+1:]...)
			return
		}
	}
}

// CloneInto clones the parameters and instructions of m into dst.
// Inbound branches are not copied: the cloned branches register themselves.
func (m *MultiInBlock) CloneInto(ctx *CloneContext, dst *MultiInBlock) {
	params := make([]*BlockParam, len(m.params))
	for i, p := range m.params {
		params[i] = NewBlockParam(p.Type())
		ctx.Replace(p, params[i])
	}
	dst.SetParams(params...)
	m.Block.CloneInto(ctx, &dst.Block)
}

// Clone returns a new multi-in block holding clones of m's parameters and
// instructions.
func (m *MultiInBlock) Clone(ctx *CloneContext) *MultiInBlock {
	n := NewMultiInBlock()
	m.CloneInto(ctx, n)
	return n
}

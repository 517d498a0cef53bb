package ir

// ControlInstruction is an instruction that owns nested blocks. Its results
// are supplied by the exits that branch out of those blocks.
type ControlInstruction interface {
	Instruction

	// ForeachBlock calls fn for each owned block in order.
	ForeachBlock(fn func(b *Block))
	// Exits returns the exits registered with the instruction.
	Exits() []Exit
	AddExit(e Exit)
	RemoveExit(e Exit)

	controlInstruction()
}

type controlBase struct {
	instructionBase
	exits []Exit
}

func (*controlBase) controlInstruction() {}

func (c *controlBase) Exits() []Exit { return c.exits }

func (c *controlBase) AddExit(e Exit) {
	if e == nil {
		bug("nil exit added to %s", c.self.FriendlyName())
	}
	c.exits = append(c.exits, e)
}

func (c *controlBase) RemoveExit(e Exit) {
	for i, x := range c.exits {
		if x == e {
			c.exits = append(c.exits[:i], c.exits[i+1:]...)
			return
		}
	}
}

// destroyControl destroys the owned blocks before the instruction itself.
func (c *controlBase) destroyControl() {
	if c.dead {
		bug("%s destroyed twice", c.self.FriendlyName())
	}
	c.self.(ControlInstruction).ForeachBlock(func(b *Block) {
		b.Destroy()
	})
	c.instructionBase.Destroy()
}

// If executes the true block if the condition holds, otherwise the false
// block.
type If struct {
	controlBase

	trueBlock  *Block
	falseBlock *Block
}

const IfConditionOperandOffset = 0

func newIf(cond Value, t, f *Block) *If {
	i := &If{trueBlock: t, falseBlock: f}
	i.setup(i, nil, cond)
	t.SetParent(i)
	f.SetParent(i)
	return i
}

func (i *If) Condition() Value { return i.Operand(IfConditionOperandOffset) }
func (i *If) True() *Block     { return i.trueBlock }
func (i *If) False() *Block    { return i.falseBlock }

func (i *If) ForeachBlock(fn func(b *Block)) {
	fn(i.trueBlock)
	fn(i.falseBlock)
}

func (i *If) FriendlyName() string { return "if" }

func (i *If) Destroy() { i.destroyControl() }

func (i *If) clone(ctx *CloneContext) Instruction {
	n := newIf(ctx.Clone(i.Condition()), NewBlock(), NewBlock())
	ctx.ReplaceControl(i, n)
	n.SetResults(cloneResults(ctx, i.results)...)
	i.trueBlock.CloneInto(ctx, n.trueBlock)
	i.falseBlock.CloneInto(ctx, n.falseBlock)
	return n
}

// Loop runs its initializer once, then repeats body and continuing until an
// exit is taken.
type Loop struct {
	controlBase

	initializer *Block
	body        *MultiInBlock
	continuing  *MultiInBlock
}

func newLoop(init *Block, body, cont *MultiInBlock) *Loop {
	i := &Loop{initializer: init, body: body, continuing: cont}
	i.setup(i, nil)
	init.SetParent(i)
	body.SetParent(i)
	cont.SetParent(i)
	return i
}

func (i *Loop) Initializer() *Block       { return i.initializer }
func (i *Loop) Body() *MultiInBlock       { return i.body }
func (i *Loop) Continuing() *MultiInBlock { return i.continuing }

func (i *Loop) ForeachBlock(fn func(b *Block)) {
	fn(i.initializer)
	fn(&i.body.Block)
	fn(&i.continuing.Block)
}

func (i *Loop) FriendlyName() string { return "loop" }

func (i *Loop) Destroy() { i.destroyControl() }

func (i *Loop) clone(ctx *CloneContext) Instruction {
	n := newLoop(NewBlock(), NewMultiInBlock(), NewMultiInBlock())
	ctx.ReplaceControl(i, n)
	n.SetResults(cloneResults(ctx, i.results)...)
	i.initializer.CloneInto(ctx, n.initializer)
	i.body.CloneInto(ctx, n.body)
	i.continuing.CloneInto(ctx, n.continuing)
	return n
}

// CaseSelector is a switch case value. A nil Val selects the default case.
type CaseSelector struct {
	Val *Constant
}

// IsDefault reports whether the selector is the default selector.
func (s CaseSelector) IsDefault() bool { return s.Val == nil }

// Case is a switch case.
type Case struct {
	Selectors []CaseSelector
	Block     *Block
}

// Switch executes the case whose selector matches the condition.
type Switch struct {
	controlBase

	cases []Case
}

const SwitchConditionOperandOffset = 0

func newSwitch(cond Value) *Switch {
	i := &Switch{}
	i.setup(i, nil, cond)
	return i
}

func (i *Switch) Condition() Value { return i.Operand(SwitchConditionOperandOffset) }
func (i *Switch) Cases() []Case    { return i.cases }

// AddCase appends a case and takes ownership of its block.
func (i *Switch) AddCase(c Case) {
	c.Block.SetParent(i)
	i.cases = append(i.cases, c)
}

func (i *Switch) ForeachBlock(fn func(b *Block)) {
	for _, c := range i.cases {
		fn(c.Block)
	}
}

func (i *Switch) FriendlyName() string { return "switch" }

func (i *Switch) Destroy() { i.destroyControl() }

func (i *Switch) clone(ctx *CloneContext) Instruction {
	n := newSwitch(ctx.Clone(i.Condition()))
	ctx.ReplaceControl(i, n)
	n.SetResults(cloneResults(ctx, i.results)...)
	for _, c := range i.cases {
		n.AddCase(Case{
			Selectors: append([]CaseSelector(nil), c.Selectors...),
			Block:     c.Block.Clone(ctx),
		})
	}
	return n
}

var (
	_ ControlInstruction = (*If)(nil)
	_ ControlInstruction = (*Loop)(nil)
	_ ControlInstruction = (*Switch)(nil)
)

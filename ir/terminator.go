package ir

func (*Return) terminator()              {}
func (*ExitIf) terminator()              {}
func (*ExitLoop) terminator()            {}
func (*ExitSwitch) terminator()          {}
func (*Continue) terminator()            {}
func (*NextIteration) terminator()       {}
func (*BreakIf) terminator()             {}
func (*Unreachable) terminator()         {}
func (*TerminateInvocation) terminator() {}

// Return returns from a function.
type Return struct {
	instructionBase
}

const (
	ReturnFuncOperandOffset  = 0
	ReturnValueOperandOffset = 1
)

func newReturn(fn *Function, value Value) *Return {
	i := &Return{}
	i.setup(i, nil, fn)
	if value != nil {
		i.addOperands(value)
	}
	return i
}

// Func returns the function being returned from.
func (i *Return) Func() *Function {
	f, _ := i.Operand(ReturnFuncOperandOffset).(*Function)
	return f
}

// Value returns the returned value, or nil for a void return.
func (i *Return) Value() Value { return i.Operand(ReturnValueOperandOffset) }

// SetValue sets the returned value.
func (i *Return) SetValue(v Value) {
	if len(i.operands) > ReturnValueOperandOffset {
		i.SetOperand(ReturnValueOperandOffset, v)
		return
	}
	i.addOperands(v)
}

func (i *Return) Args() []Value        { return i.operands[ReturnValueOperandOffset:] }
func (i *Return) FriendlyName() string { return "return" }

func (i *Return) clone(ctx *CloneContext) Instruction {
	fn, _ := ctx.Clone(i.Func()).(*Function)
	return newReturn(fn, ctx.Clone(i.Value()))
}

// Exit is a branch out of a control instruction to the code that follows
// it. Its arguments become the control instruction's results.
type Exit interface {
	Terminator

	// ControlInstruction returns the control instruction being exited.
	ControlInstruction() ControlInstruction
	SetControlInstruction(ctrl ControlInstruction)
}

type exitBase struct {
	instructionBase
	ctrl ControlInstruction
}

func (e *exitBase) ControlInstruction() ControlInstruction { return e.ctrl }

func (e *exitBase) SetControlInstruction(ctrl ControlInstruction) {
	self := e.self.(Exit)
	if e.ctrl != nil {
		e.ctrl.RemoveExit(self)
	}
	e.ctrl = ctrl
	if ctrl != nil {
		ctrl.AddExit(self)
	}
}

func (e *exitBase) Args() []Value { return e.operands }

func (e *exitBase) Destroy() {
	if e.dead {
		bug("%s destroyed twice", e.self.FriendlyName())
	}
	e.SetControlInstruction(nil)
	e.instructionBase.Destroy()
}

// ExitIf exits an If.
type ExitIf struct {
	exitBase
}

func newExitIf(ctrl *If, args ...Value) *ExitIf {
	i := &ExitIf{}
	i.setup(i, nil, args...)
	i.SetControlInstruction(ctrl)
	return i
}

// If returns the exited If.
func (i *ExitIf) If() *If {
	c, _ := i.ctrl.(*If)
	return c
}

func (i *ExitIf) FriendlyName() string { return "exit_if" }

func (i *ExitIf) clone(ctx *CloneContext) Instruction {
	c, _ := ctx.CloneControl(i.ctrl).(*If)
	return newExitIf(c, ctx.CloneAll(i.operands)...)
}

// ExitLoop exits a Loop.
type ExitLoop struct {
	exitBase
}

func newExitLoop(ctrl *Loop, args ...Value) *ExitLoop {
	i := &ExitLoop{}
	i.setup(i, nil, args...)
	i.SetControlInstruction(ctrl)
	return i
}

// Loop returns the exited Loop.
func (i *ExitLoop) Loop() *Loop {
	c, _ := i.ctrl.(*Loop)
	return c
}

func (i *ExitLoop) FriendlyName() string { return "exit_loop" }

func (i *ExitLoop) clone(ctx *CloneContext) Instruction {
	c, _ := ctx.CloneControl(i.ctrl).(*Loop)
	return newExitLoop(c, ctx.CloneAll(i.operands)...)
}

// ExitSwitch exits a Switch.
type ExitSwitch struct {
	exitBase
}

func newExitSwitch(ctrl *Switch, args ...Value) *ExitSwitch {
	i := &ExitSwitch{}
	i.setup(i, nil, args...)
	i.SetControlInstruction(ctrl)
	return i
}

// Switch returns the exited Switch.
func (i *ExitSwitch) Switch() *Switch {
	c, _ := i.ctrl.(*Switch)
	return c
}

func (i *ExitSwitch) FriendlyName() string { return "exit_switch" }

func (i *ExitSwitch) clone(ctx *CloneContext) Instruction {
	c, _ := ctx.CloneControl(i.ctrl).(*Switch)
	return newExitSwitch(c, ctx.CloneAll(i.operands)...)
}

// Continue branches from a loop body to the loop's continuing block.
// It is registered as an inbound sibling branch of that block.
type Continue struct {
	instructionBase
	loop *Loop
}

func newContinue(loop *Loop, args ...Value) *Continue {
	i := &Continue{loop: loop}
	i.setup(i, nil, args...)
	if loop != nil {
		loop.Continuing().AddInboundSiblingBranch(i)
	}
	return i
}

func (i *Continue) Loop() *Loop          { return i.loop }
func (i *Continue) Args() []Value        { return i.operands }
func (i *Continue) FriendlyName() string { return "continue" }

func (i *Continue) Destroy() {
	if i.dead {
		bug("continue destroyed twice")
	}
	if i.loop != nil {
		i.loop.Continuing().RemoveInboundSiblingBranch(i)
	}
	i.instructionBase.Destroy()
}

func (i *Continue) clone(ctx *CloneContext) Instruction {
	l, _ := ctx.CloneControl(i.loop).(*Loop)
	return newContinue(l, ctx.CloneAll(i.operands)...)
}

// NextIteration branches to the loop body, starting a new iteration.
// It is registered as an inbound sibling branch of the body.
type NextIteration struct {
	instructionBase
	loop *Loop
}

func newNextIteration(loop *Loop, args ...Value) *NextIteration {
	i := &NextIteration{loop: loop}
	i.setup(i, nil, args...)
	if loop != nil {
		loop.Body().AddInboundSiblingBranch(i)
	}
	return i
}

func (i *NextIteration) Loop() *Loop          { return i.loop }
func (i *NextIteration) Args() []Value        { return i.operands }
func (i *NextIteration) FriendlyName() string { return "next_iteration" }

func (i *NextIteration) Destroy() {
	if i.dead {
		bug("next_iteration destroyed twice")
	}
	if i.loop != nil {
		i.loop.Body().RemoveInboundSiblingBranch(i)
	}
	i.instructionBase.Destroy()
}

func (i *NextIteration) clone(ctx *CloneContext) Instruction {
	l, _ := ctx.CloneControl(i.loop).(*Loop)
	return newNextIteration(l, ctx.CloneAll(i.operands)...)
}

// BreakIf ends a loop continuing block. If the condition is true the loop
// exits with the exit values, otherwise the next iteration starts with the
// next iteration values.
type BreakIf struct {
	exitBase
	numNextIter int
}

const BreakIfConditionOperandOffset = 0

func newBreakIf(loop *Loop, cond Value, nextIter, exit []Value) *BreakIf {
	i := &BreakIf{numNextIter: len(nextIter)}
	i.setup(i, nil, cond)
	i.addOperands(nextIter...)
	i.addOperands(exit...)
	if loop != nil {
		loop.Body().AddInboundSiblingBranch(i)
	}
	i.SetControlInstruction(loop)
	return i
}

// Loop returns the loop the branch belongs to.
func (i *BreakIf) Loop() *Loop {
	c, _ := i.ctrl.(*Loop)
	return c
}

func (i *BreakIf) Condition() Value { return i.Operand(BreakIfConditionOperandOffset) }

func (i *BreakIf) Args() []Value { return i.operands[BreakIfConditionOperandOffset+1:] }

func (i *BreakIf) NextIterValues() []Value {
	return i.operands[BreakIfConditionOperandOffset+1 : BreakIfConditionOperandOffset+1+i.numNextIter]
}

func (i *BreakIf) ExitValues() []Value {
	return i.operands[BreakIfConditionOperandOffset+1+i.numNextIter:]
}

func (i *BreakIf) FriendlyName() string { return "break_if" }

func (i *BreakIf) Destroy() {
	if i.dead {
		bug("break_if destroyed twice")
	}
	if l := i.Loop(); l != nil {
		l.Body().RemoveInboundSiblingBranch(i)
	}
	i.exitBase.Destroy()
}

func (i *BreakIf) clone(ctx *CloneContext) Instruction {
	l, _ := ctx.CloneControl(i.ctrl).(*Loop)
	return newBreakIf(l, ctx.Clone(i.Condition()), ctx.CloneAll(i.NextIterValues()), ctx.CloneAll(i.ExitValues()))
}

// Unreachable marks the end of a block that control never reaches.
type Unreachable struct {
	instructionBase
}

func newUnreachable() *Unreachable {
	i := &Unreachable{}
	i.setup(i, nil)
	return i
}

func (i *Unreachable) Args() []Value                   { return nil }
func (i *Unreachable) FriendlyName() string            { return "unreachable" }
func (i *Unreachable) clone(*CloneContext) Instruction { return newUnreachable() }

// TerminateInvocation ends the shader invocation.
type TerminateInvocation struct {
	instructionBase
}

func newTerminateInvocation() *TerminateInvocation {
	i := &TerminateInvocation{}
	i.setup(i, nil)
	return i
}

func (i *TerminateInvocation) Args() []Value                   { return nil }
func (i *TerminateInvocation) FriendlyName() string            { return "terminate_invocation" }
func (i *TerminateInvocation) clone(*CloneContext) Instruction { return newTerminateInvocation() }

var (
	_ Terminator = (*Return)(nil)
	_ Exit       = (*ExitIf)(nil)
	_ Exit       = (*ExitLoop)(nil)
	_ Exit       = (*ExitSwitch)(nil)
	_ Exit       = (*BreakIf)(nil)
	_ Terminator = (*Continue)(nil)
	_ Terminator = (*NextIteration)(nil)
	_ Terminator = (*Unreachable)(nil)
	_ Terminator = (*TerminateInvocation)(nil)
)

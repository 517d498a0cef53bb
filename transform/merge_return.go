package transform

import (
	"github.com/gogpu/tint/ir"
)

const mergeReturnName = "merge_return"

const mergeReturnCapabilities = ir.AllowPointersAndHandlesInStructures |
	ir.AllowPrivateVarsInFunctions |
	ir.AllowOverrides |
	ir.AllowUnusedValues

// MergeReturn rewrites every function so that its only return is the last
// instruction of the function body.
//
// A return nested in a control instruction is replaced by a store of the
// return value to a function-scope variable and an exit from the innermost
// construct. A boolean variable records that the function has returned,
// and the code that follows a construct which may have returned is guarded
// by it. Functions without nested returns are left unchanged.
func MergeReturn(m *ir.Module) error {
	if err := ir.ValidateAndDumpIfNeeded(m, mergeReturnName, mergeReturnCapabilities); err != nil {
		return err
	}

	for _, fn := range m.Functions() {
		s := mergeReturn{
			m: m,
			b: ir.NewBuilder(m),
		}
		s.process(fn)
	}

	return nil
}

type mergeReturn struct {
	m *ir.Module
	b *ir.Builder

	fn *ir.Function

	// returnValue holds the value to return, for non-void functions.
	returnValue *ir.Var
	// continueExecution is false once the function has returned.
	continueExecution *ir.Var

	// fnReturn is the return ending the function body, if any.
	fnReturn *ir.Return

	// holdsReturn contains the control instructions with a nested return.
	holdsReturn map[ir.ControlInstruction]bool
	// alwaysReturns contains the controls every path of which returns.
	alwaysReturns map[ir.ControlInstruction]bool
}

func (s *mergeReturn) process(fn *ir.Function) {
	s.fn = fn
	s.holdsReturn = make(map[ir.ControlInstruction]bool)
	s.alwaysReturns = make(map[ir.ControlInstruction]bool)

	var returns []*ir.Return
	for _, ret := range fn.Returns() {
		if ret.Block() == nil {
			continue
		}
		returns = append(returns, ret)

		for ctrl := ret.Block().Parent(); ctrl != nil && !s.holdsReturn[ctrl]; ctrl = ctrl.Block().Parent() {
			s.holdsReturn[ctrl] = true
		}
	}

	if len(s.holdsReturn) == 0 {
		return
	}

	// Computed up front: the rewrite changes the terminators it looks at.
	needsFlag := false
	for ctrl := range s.holdsReturn {
		if !s.controlAlwaysReturns(ctrl) {
			needsFlag = true
		}
	}

	types := s.m.Types

	s.b.Prepend(fn.Block(), func() {
		if _, void := fn.ReturnType().(*ir.VoidType); !void {
			s.returnValue = s.b.Var("return_value", types.Ptr(ir.SpaceFunction, fn.ReturnType(), ir.AccessReadWrite))
		}
		if needsFlag {
			s.continueExecution = s.b.Var("continue_execution", types.Ptr(ir.SpaceFunction, types.Bool(), ir.AccessReadWrite))
			s.continueExecution.SetInitializer(s.b.Bool(true))
		}
	})

	s.fnReturn, _ = fn.Block().Terminator().(*ir.Return)

	s.processBlock(fn.Block())

	if fn.Block().Terminator() == nil {
		s.appendFinalReturn(fn.Block())
	}
}

func (s *mergeReturn) blockAlwaysReturns(b *ir.Block) bool {
	switch b.Terminator().(type) {
	case *ir.Return, *ir.Unreachable, *ir.TerminateInvocation:
		return true
	}

	for inst := b.Front(); inst != nil; inst = inst.Next() {
		if ctrl, ok := inst.(ir.ControlInstruction); ok && s.controlAlwaysReturns(ctrl) {
			return true
		}
	}

	return false
}

func (s *mergeReturn) controlAlwaysReturns(ctrl ir.ControlInstruction) bool {
	if r, ok := s.alwaysReturns[ctrl]; ok {
		return r
	}

	var r bool
	switch c := ctrl.(type) {
	case *ir.If:
		r = !c.True().IsEmpty() && !c.False().IsEmpty() &&
			s.blockAlwaysReturns(c.True()) && s.blockAlwaysReturns(c.False())
	case *ir.Loop:
		// exit_loop and break_if may be nested in the body or in the
		// continuing block, whatever the body ends with.
		r = len(c.Exits()) == 0 && s.blockAlwaysReturns(&c.Body().Block)
	case *ir.Switch:
		// exit_switch may be nested in an if of a case ending in a return.
		r = len(c.Cases()) != 0 && len(c.Exits()) == 0
		for _, cs := range c.Cases() {
			r = r && s.blockAlwaysReturns(cs.Block)
		}
	}

	s.alwaysReturns[ctrl] = r

	return r
}

// processBlock rewrites the returns in b and in the controls nested in b.
// Everything after the first control holding a return is handled by
// afterControl.
func (s *mergeReturn) processBlock(b *ir.Block) {
	for inst := b.Front(); inst != nil; inst = inst.Next() {
		switch inst := inst.(type) {
		case *ir.Return:
			s.processReturn(inst)
			return
		case ir.ControlInstruction:
			if !s.holdsReturn[inst] {
				continue
			}

			inst.ForeachBlock(s.processBlock)
			s.afterControl(inst)

			return
		}
	}
}

// processReturn replaces a nested return with an exit from its construct.
func (s *mergeReturn) processReturn(ret *ir.Return) {
	block := ret.Block()
	ctrl := block.Parent()
	if ctrl == nil {
		return
	}

	s.b.InsertBefore(ret, func() {
		if s.returnValue != nil {
			s.b.Store(s.returnValue.Result(), ret.Value())
		}
		if s.continueExecution != nil && ret != s.fnReturn {
			s.b.Store(s.continueExecution.Result(), s.b.Bool(false))
		}
		s.b.Exit(ctrl, undefs(len(ctrl.Results()))...)
	})

	ret.Destroy()
}

// afterControl handles the instructions that follow ctrl, a control
// holding a return.
func (s *mergeReturn) afterControl(ctrl ir.ControlInstruction) {
	block := ctrl.Block()
	next := ctrl.Next()

	_, unreachable := next.(*ir.Unreachable)
	if s.alwaysReturns[ctrl] || unreachable {
		for next != nil {
			n := next.Next()
			next.Destroy()
			next = n
		}
		s.terminateBlock(block)

		return
	}

	if _, ok := next.(ir.Exit); ok {
		return
	}
	if next == nil || next == ir.Instruction(s.fnReturn) && s.fnReturn.Value() == nil {
		return
	}

	s.guardRemainder(ctrl)
}

// guardRemainder moves the instructions following ctrl into an if that
// runs only while the function has not returned.
func (s *mergeReturn) guardRemainder(ctrl ir.ControlInstruction) {
	block := ctrl.Block()

	var guard *ir.If
	s.b.InsertAfter(ctrl, func() {
		cond := s.b.Load(s.continueExecution.Result())
		guard = s.b.If(cond.Result())
	})

	for inst := guard.Next(); inst != nil; {
		next := inst.Next()
		inst.Remove()
		guard.True().Append(inst)
		inst = next
	}

	exit, ok := guard.True().Terminator().(ir.Exit)
	if _, breakIf := exit.(*ir.BreakIf); ok && !breakIf {
		s.hoistExit(guard, exit)
	} else {
		s.terminateBlock(block)
	}

	s.processBlock(guard.True())
}

// hoistExit moves exit, the terminator of the guard's true block, after
// the guard. The values it carried leave the guard as its results.
func (s *mergeReturn) hoistExit(guard *ir.If, exit ir.Exit) {
	target := exit.ControlInstruction()
	args := append([]ir.Value(nil), exit.Args()...)

	results := make([]*ir.InstructionResult, len(args))
	for i := range results {
		results[i] = s.b.Result(target.Results()[i].Type())
	}
	guard.SetResults(results...)

	s.b.InsertBefore(exit, func() {
		s.b.ExitIf(guard, args...)
	})

	exit.Remove()
	guard.Block().Append(exit)
	for i, r := range results {
		exit.SetOperand(i, r)
	}

	if len(results) != 0 {
		s.b.Append(guard.False(), func() {
			s.b.ExitIf(guard, undefs(len(results))...)
		})
	}
}

// terminateBlock ends b, which lost its terminator, with the exit of its
// construct or with the final return for the function body.
func (s *mergeReturn) terminateBlock(b *ir.Block) {
	ctrl := b.Parent()
	if ctrl == nil {
		s.appendFinalReturn(b)
		return
	}

	s.b.Append(b, func() {
		s.b.Exit(ctrl, undefs(len(ctrl.Results()))...)
	})
}

func (s *mergeReturn) appendFinalReturn(b *ir.Block) {
	s.b.Append(b, func() {
		if s.returnValue == nil {
			s.b.Return(s.fn)
			return
		}

		v := s.b.Load(s.returnValue.Result())
		s.b.Return(s.fn, v.Result())
	})
}

func undefs(n int) []ir.Value {
	return make([]ir.Value, n)
}

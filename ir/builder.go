package ir

// Builder creates IR nodes for a module. Created instructions are placed at
// the current insertion point, if one is set.
type Builder struct {
	m      *Module
	insert func(inst Instruction)
}

// NewBuilder returns a builder for m with no insertion point.
func NewBuilder(m *Module) *Builder {
	return &Builder{m: m}
}

// Module returns the module the builder creates nodes for.
func (b *Builder) Module() *Module { return b.m }

// Types returns the module type manager.
func (b *Builder) Types() *TypeManager { return b.m.Types }

func (b *Builder) with(insert func(Instruction), fn func()) {
	prev := b.insert
	b.insert = insert
	defer func() { b.insert = prev }()
	fn()
}

// Append runs fn with instructions appended to block.
func (b *Builder) Append(block *Block, fn func()) {
	b.with(block.Append, fn)
}

// Prepend runs fn with instructions inserted, in order, at the start of
// block.
func (b *Builder) Prepend(block *Block, fn func()) {
	front := block.Front()
	if front == nil {
		b.Append(block, fn)
		return
	}
	b.InsertBefore(front, fn)
}

// InsertBefore runs fn with instructions inserted, in order, before anchor.
func (b *Builder) InsertBefore(anchor Instruction, fn func()) {
	b.with(func(inst Instruction) {
		anchor.Block().InsertBefore(anchor, inst)
	}, fn)
}

// InsertAfter runs fn with instructions inserted, in order, after anchor.
func (b *Builder) InsertAfter(anchor Instruction, fn func()) {
	b.with(func(inst Instruction) {
		anchor.Block().InsertAfter(anchor, inst)
		anchor = inst
	}, fn)
}

// Insert places inst at the current insertion point and returns it.
func (b *Builder) Insert(inst Instruction) Instruction {
	if b.insert != nil {
		b.insert(inst)
	}
	return inst
}

func (b *Builder) result(t Type) *InstructionResult {
	return NewInstructionResult(t)
}

func (b *Builder) named(v Value, name string) {
	if name != "" {
		b.m.SetName(v, name)
	}
}

// Constants

func (b *Builder) constant(t Type, v any) *Constant {
	return &Constant{typ: t, Scalar: v}
}

func (b *Builder) I32(v int32) *Constant   { return b.constant(b.m.Types.I32(), v) }
func (b *Builder) U32(v uint32) *Constant  { return b.constant(b.m.Types.U32(), v) }
func (b *Builder) F32(v float32) *Constant { return b.constant(b.m.Types.F32(), v) }
func (b *Builder) Bool(v bool) *Constant   { return b.constant(b.m.Types.Bool(), v) }

// Unused returns a sentinel for a struct member of type t with no source.
func (b *Builder) Unused(t Type) *Unused { return &Unused{typ: t} }

// Result returns a new instruction result of type t.
func (b *Builder) Result(t Type) *InstructionResult { return b.result(t) }

// Composite returns a composite constant of type t.
func (b *Builder) Composite(t Type, elements ...*Constant) *Constant {
	return &Constant{typ: t, Elements: elements}
}

// Splat returns a composite constant of type t with every element set to el.
func (b *Builder) Splat(t Type, el *Constant) *Constant {
	n := 0
	switch t := t.(type) {
	case *VectorType:
		n = int(t.Size)
	case *MatrixType:
		n = int(t.Columns)
	case *ArrayType:
		n = int(t.Count)
	default:
		bug("splat of %v", t)
	}
	els := make([]*Constant, n)
	for i := range els {
		els[i] = el
	}
	return b.Composite(t, els...)
}

// Zero returns the zero value of a scalar or vector type.
func (b *Builder) Zero(t Type) *Constant {
	switch t := t.(type) {
	case *ScalarType:
		switch t.Kind {
		case ScalarSint:
			return b.constant(t, int32(0))
		case ScalarUint:
			return b.constant(t, uint32(0))
		case ScalarFloat:
			return b.constant(t, float32(0))
		default:
			return b.constant(t, false)
		}
	case *VectorType:
		return b.Splat(t, b.Zero(t.Elem))
	}
	bug("zero value of %v", t)
	return nil
}

// One returns the constant one of scalar type t, or a splat of one
// for a vector type.
func (b *Builder) One(t Type) *Constant {
	switch t := t.(type) {
	case *ScalarType:
		switch t.Kind {
		case ScalarSint:
			return b.constant(t, int32(1))
		case ScalarUint:
			return b.constant(t, uint32(1))
		case ScalarFloat:
			return b.constant(t, float32(1))
		default:
			return b.constant(t, true)
		}
	case *VectorType:
		return b.Splat(t, b.One(t.Elem))
	}
	bug("one value of %v", t)
	return nil
}

// Values

// Function creates a function named name and adds it to the module.
func (b *Builder) Function(name string, returnType Type, stage ShaderStage) *Function {
	fn := NewFunction(returnType, stage)
	b.named(fn, name)
	b.m.AddFunction(fn)
	return fn
}

// ComputeFunction creates a compute entry point.
func (b *Builder) ComputeFunction(name string, x, y, z uint32) *Function {
	fn := b.Function(name, b.m.Types.Void(), StageCompute)
	fn.WorkgroupSize = &[3]uint32{x, y, z}
	return fn
}

func (b *Builder) FunctionParam(name string, t Type) *FunctionParam {
	p := NewFunctionParam(t)
	b.named(p, name)
	return p
}

func (b *Builder) BlockParam(name string, t Type) *BlockParam {
	p := NewBlockParam(t)
	b.named(p, name)
	return p
}

// Instructions

func (b *Builder) Binary(op BinaryOp, t Type, lhs, rhs Value) *Binary {
	return b.Insert(newBinary(op, b.result(t), lhs, rhs)).(*Binary)
}

func (b *Builder) Add(t Type, lhs, rhs Value) *Binary {
	return b.Binary(BinaryAdd, t, lhs, rhs)
}

func (b *Builder) Subtract(t Type, lhs, rhs Value) *Binary {
	return b.Binary(BinarySubtract, t, lhs, rhs)
}

func (b *Builder) Multiply(t Type, lhs, rhs Value) *Binary {
	return b.Binary(BinaryMultiply, t, lhs, rhs)
}

func (b *Builder) ShiftLeft(t Type, lhs, rhs Value) *Binary {
	return b.Binary(BinaryShiftLeft, t, lhs, rhs)
}

func (b *Builder) Equal(lhs, rhs Value) *Binary {
	return b.Binary(BinaryEqual, b.m.Types.Bool(), lhs, rhs)
}

func (b *Builder) LessThan(lhs, rhs Value) *Binary {
	return b.Binary(BinaryLessThan, b.m.Types.Bool(), lhs, rhs)
}

func (b *Builder) Unary(op UnaryOp, t Type, val Value) *Unary {
	return b.Insert(newUnary(op, b.result(t), val)).(*Unary)
}

func (b *Builder) Negation(t Type, val Value) *Unary {
	return b.Unary(UnaryNegation, t, val)
}

func (b *Builder) Complement(t Type, val Value) *Unary {
	return b.Unary(UnaryComplement, t, val)
}

func (b *Builder) Not(t Type, val Value) *Unary {
	return b.Unary(UnaryNot, t, val)
}

func (b *Builder) Swizzle(t Type, obj Value, indices ...uint32) *Swizzle {
	return b.Insert(newSwizzle(b.result(t), obj, indices)).(*Swizzle)
}

// Load loads from the pointer from. The result type is its store type.
func (b *Builder) Load(from Value) *Load {
	t := StoreTypeOf(from.Type())
	if t == nil {
		bug("load from non-pointer %v", from.Type())
	}
	return b.Insert(newLoad(b.result(t), from)).(*Load)
}

func (b *Builder) Store(to, from Value) *Store {
	return b.Insert(newStore(to, from)).(*Store)
}

func (b *Builder) LoadVectorElement(from, index Value) *LoadVectorElement {
	vec, ok := StoreTypeOf(from.Type()).(*VectorType)
	if !ok {
		bug("load_vector_element from %v", from.Type())
	}
	return b.Insert(newLoadVectorElement(b.result(vec.Elem), from, index)).(*LoadVectorElement)
}

func (b *Builder) StoreVectorElement(to, index, value Value) *StoreVectorElement {
	return b.Insert(newStoreVectorElement(to, index, value)).(*StoreVectorElement)
}

// Var declares a variable of pointer type ptr, named name.
func (b *Builder) Var(name string, ptr *PointerType) *Var {
	v := newVar(b.result(ptr))
	b.named(v.Result(), name)
	return b.Insert(v).(*Var)
}

func (b *Builder) Let(name string, val Value) *Let {
	l := newLet(b.result(val.Type()), val)
	b.named(l.Result(), name)
	return b.Insert(l).(*Let)
}

func (b *Builder) Construct(t Type, args ...Value) *Construct {
	return b.Insert(newConstruct(b.result(t), args...)).(*Construct)
}

func (b *Builder) Access(t Type, obj Value, indices ...Value) *Access {
	return b.Insert(newAccess(b.result(t), obj, indices...)).(*Access)
}

func (b *Builder) Convert(t Type, val Value) *Convert {
	return b.Insert(newConvert(b.result(t), val)).(*Convert)
}

func (b *Builder) Bitcast(t Type, val Value) *Bitcast {
	return b.Insert(newBitcast(b.result(t), val)).(*Bitcast)
}

// Call calls fn. The result type is the return type of fn.
func (b *Builder) Call(fn *Function, args ...Value) *UserCall {
	return b.Insert(newUserCall(b.result(fn.ReturnType()), fn, args...)).(*UserCall)
}

func (b *Builder) BuiltinCall(t Type, fn BuiltinFn, args ...Value) *BuiltinCall {
	return b.Insert(newBuiltinCall(b.result(t), fn, args...)).(*BuiltinCall)
}

func (b *Builder) MemberBuiltinCall(t Type, name string, obj Value, args ...Value) *MemberBuiltinCall {
	return b.Insert(newMemberBuiltinCall(b.result(t), name, obj, args...)).(*MemberBuiltinCall)
}

func (b *Builder) Override(name string, t Type, init Value) *Override {
	o := newOverride(b.result(t), init)
	b.named(o.Result(), name)
	return b.Insert(o).(*Override)
}

func (b *Builder) Discard() *Discard {
	return b.Insert(newDiscard()).(*Discard)
}

// Control instructions

// If creates an If with empty true and false blocks.
func (b *Builder) If(cond Value) *If {
	return b.Insert(newIf(cond, NewBlock(), NewBlock())).(*If)
}

// Loop creates a Loop with empty blocks.
func (b *Builder) Loop() *Loop {
	return b.Insert(newLoop(NewBlock(), NewMultiInBlock(), NewMultiInBlock())).(*Loop)
}

func (b *Builder) Switch(cond Value) *Switch {
	return b.Insert(newSwitch(cond)).(*Switch)
}

// Case adds a case to s selected by the given values and returns its block.
// A nil selector value selects the default case.
func (b *Builder) Case(s *Switch, values ...*Constant) *Block {
	sels := make([]CaseSelector, len(values))
	for i, v := range values {
		sels[i] = CaseSelector{Val: v}
	}
	block := NewBlock()
	s.AddCase(Case{Selectors: sels, Block: block})
	return block
}

// DefaultCase adds the default case to s and returns its block.
func (b *Builder) DefaultCase(s *Switch) *Block {
	return b.Case(s, nil)
}

// Terminators

func (b *Builder) Return(fn *Function, value ...Value) *Return {
	var v Value
	if len(value) > 1 {
		bug("return with %d values", len(value))
	} else if len(value) == 1 {
		v = value[0]
	}
	return b.Insert(newReturn(fn, v)).(*Return)
}

func (b *Builder) ExitIf(i *If, args ...Value) *ExitIf {
	return b.Insert(newExitIf(i, args...)).(*ExitIf)
}

func (b *Builder) ExitLoop(l *Loop, args ...Value) *ExitLoop {
	return b.Insert(newExitLoop(l, args...)).(*ExitLoop)
}

func (b *Builder) ExitSwitch(s *Switch, args ...Value) *ExitSwitch {
	return b.Insert(newExitSwitch(s, args...)).(*ExitSwitch)
}

// Exit creates the exit instruction that leaves ctrl.
func (b *Builder) Exit(ctrl ControlInstruction, args ...Value) Exit {
	switch ctrl := ctrl.(type) {
	case *If:
		return b.ExitIf(ctrl, args...)
	case *Loop:
		return b.ExitLoop(ctrl, args...)
	case *Switch:
		return b.ExitSwitch(ctrl, args...)
	}
	bug("exit from %T", ctrl)
	return nil
}

func (b *Builder) Continue(l *Loop, args ...Value) *Continue {
	return b.Insert(newContinue(l, args...)).(*Continue)
}

func (b *Builder) NextIteration(l *Loop, args ...Value) *NextIteration {
	return b.Insert(newNextIteration(l, args...)).(*NextIteration)
}

func (b *Builder) BreakIf(l *Loop, cond Value, nextIter []Value, exit []Value) *BreakIf {
	return b.Insert(newBreakIf(l, cond, nextIter, exit)).(*BreakIf)
}

func (b *Builder) Unreachable() *Unreachable {
	return b.Insert(newUnreachable()).(*Unreachable)
}

func (b *Builder) TerminateInvocation() *TerminateInvocation {
	return b.Insert(newTerminateInvocation()).(*TerminateInvocation)
}

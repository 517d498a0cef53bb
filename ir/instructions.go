package ir

func (b *instructionBase) setup(self Instruction, result *InstructionResult, operands ...Value) {
	b.init(self)
	b.addOperands(operands...)
	if result != nil {
		b.SetResults(result)
	}
}

// BinaryOp is the operator of a Binary instruction.
type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryEqual
	BinaryNotEqual
	BinaryLessThan
	BinaryGreaterThan
	BinaryLessThanEqual
	BinaryGreaterThanEqual
	BinaryShiftLeft
	BinaryShiftRight
)

var binaryOpNames = [...]string{
	BinaryAdd:              "add",
	BinarySubtract:         "sub",
	BinaryMultiply:         "mul",
	BinaryDivide:           "div",
	BinaryModulo:           "mod",
	BinaryAnd:              "and",
	BinaryOr:               "or",
	BinaryXor:              "xor",
	BinaryEqual:            "eq",
	BinaryNotEqual:         "neq",
	BinaryLessThan:         "lt",
	BinaryGreaterThan:      "gt",
	BinaryLessThanEqual:    "lte",
	BinaryGreaterThanEqual: "gte",
	BinaryShiftLeft:        "shl",
	BinaryShiftRight:       "shr",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// IsComparison reports whether the operator yields a boolean.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterThanEqual
}

// Binary applies a binary operator to two operands.
type Binary struct {
	instructionBase
	Op BinaryOp
}

const (
	BinaryLHSOperandOffset = 0
	BinaryRHSOperandOffset = 1
)

func newBinary(op BinaryOp, result *InstructionResult, lhs, rhs Value) *Binary {
	i := &Binary{Op: op}
	i.setup(i, result, lhs, rhs)
	return i
}

func (i *Binary) LHS() Value           { return i.Operand(BinaryLHSOperandOffset) }
func (i *Binary) RHS() Value           { return i.Operand(BinaryRHSOperandOffset) }
func (i *Binary) FriendlyName() string { return i.Op.String() }

func (i *Binary) clone(ctx *CloneContext) Instruction {
	return newBinary(i.Op, cloneResults(ctx, i.results)[0], ctx.Clone(i.LHS()), ctx.Clone(i.RHS()))
}

// UnaryOp is the operator of a Unary instruction.
type UnaryOp uint8

const (
	UnaryNegation UnaryOp = iota
	UnaryComplement
	UnaryNot
)

func (op UnaryOp) String() string {
	return [...]string{"negation", "complement", "not"}[op]
}

// Unary applies a unary operator to its operand.
type Unary struct {
	instructionBase
	Op UnaryOp
}

func newUnary(op UnaryOp, result *InstructionResult, val Value) *Unary {
	i := &Unary{Op: op}
	i.setup(i, result, val)
	return i
}

func (i *Unary) Val() Value           { return i.Operand(0) }
func (i *Unary) FriendlyName() string { return i.Op.String() }

func (i *Unary) clone(ctx *CloneContext) Instruction {
	return newUnary(i.Op, cloneResults(ctx, i.results)[0], ctx.Clone(i.Val()))
}

// Swizzle selects vector components.
type Swizzle struct {
	instructionBase
	Indices []uint32
}

func newSwizzle(result *InstructionResult, obj Value, indices []uint32) *Swizzle {
	i := &Swizzle{Indices: indices}
	i.setup(i, result, obj)
	return i
}

func (i *Swizzle) Object() Value        { return i.Operand(0) }
func (i *Swizzle) FriendlyName() string { return "swizzle" }

func (i *Swizzle) clone(ctx *CloneContext) Instruction {
	return newSwizzle(cloneResults(ctx, i.results)[0], ctx.Clone(i.Object()), append([]uint32(nil), i.Indices...))
}

// Load reads the value a pointer points to.
type Load struct {
	instructionBase
}

func newLoad(result *InstructionResult, from Value) *Load {
	i := &Load{}
	i.setup(i, result, from)
	return i
}

func (i *Load) From() Value          { return i.Operand(0) }
func (i *Load) FriendlyName() string { return "load" }

func (i *Load) clone(ctx *CloneContext) Instruction {
	return newLoad(cloneResults(ctx, i.results)[0], ctx.Clone(i.From()))
}

// Store writes a value through a pointer.
type Store struct {
	instructionBase
}

const (
	StorePtrOperandOffset   = 0
	StoreValueOperandOffset = 1
)

func newStore(to, from Value) *Store {
	i := &Store{}
	i.setup(i, nil, to, from)
	return i
}

func (i *Store) To() Value            { return i.Operand(StorePtrOperandOffset) }
func (i *Store) From() Value          { return i.Operand(StoreValueOperandOffset) }
func (i *Store) FriendlyName() string { return "store" }

func (i *Store) clone(ctx *CloneContext) Instruction {
	return newStore(ctx.Clone(i.To()), ctx.Clone(i.From()))
}

// LoadVectorElement reads a single element of a vector through a pointer.
type LoadVectorElement struct {
	instructionBase
}

func newLoadVectorElement(result *InstructionResult, from, index Value) *LoadVectorElement {
	i := &LoadVectorElement{}
	i.setup(i, result, from, index)
	return i
}

func (i *LoadVectorElement) From() Value          { return i.Operand(0) }
func (i *LoadVectorElement) Index() Value         { return i.Operand(1) }
func (i *LoadVectorElement) FriendlyName() string { return "load_vector_element" }

func (i *LoadVectorElement) clone(ctx *CloneContext) Instruction {
	return newLoadVectorElement(cloneResults(ctx, i.results)[0], ctx.Clone(i.From()), ctx.Clone(i.Index()))
}

// StoreVectorElement writes a single element of a vector through a pointer.
type StoreVectorElement struct {
	instructionBase
}

func newStoreVectorElement(to, index, value Value) *StoreVectorElement {
	i := &StoreVectorElement{}
	i.setup(i, nil, to, index, value)
	return i
}

func (i *StoreVectorElement) To() Value            { return i.Operand(0) }
func (i *StoreVectorElement) Index() Value         { return i.Operand(1) }
func (i *StoreVectorElement) Value() Value         { return i.Operand(2) }
func (i *StoreVectorElement) FriendlyName() string { return "store_vector_element" }

func (i *StoreVectorElement) clone(ctx *CloneContext) Instruction {
	return newStoreVectorElement(ctx.Clone(i.To()), ctx.Clone(i.Index()), ctx.Clone(i.Value()))
}

// Var declares a variable. Its result is a pointer to the storage.
type Var struct {
	instructionBase
	BindingPoint *BindingPoint
}

const VarInitializerOperandOffset = 0

func newVar(result *InstructionResult) *Var {
	i := &Var{}
	i.setup(i, result, nil)
	return i
}

// Initializer returns the initial value, or nil.
func (i *Var) Initializer() Value { return i.Operand(VarInitializerOperandOffset) }

func (i *Var) SetInitializer(v Value) { i.SetOperand(VarInitializerOperandOffset, v) }

// PointerType returns the type of the variable's result.
func (i *Var) PointerType() *PointerType {
	p, _ := i.Result().Type().(*PointerType)
	return p
}

func (i *Var) FriendlyName() string { return "var" }

func (i *Var) clone(ctx *CloneContext) Instruction {
	v := newVar(cloneResults(ctx, i.results)[0])
	v.SetInitializer(ctx.Clone(i.Initializer()))
	if i.BindingPoint != nil {
		bp := *i.BindingPoint
		v.BindingPoint = &bp
	}
	return v
}

// Let names a value.
type Let struct {
	instructionBase
}

func newLet(result *InstructionResult, val Value) *Let {
	i := &Let{}
	i.setup(i, result, val)
	return i
}

func (i *Let) Value() Value         { return i.Operand(0) }
func (i *Let) FriendlyName() string { return "let" }

func (i *Let) clone(ctx *CloneContext) Instruction {
	return newLet(cloneResults(ctx, i.results)[0], ctx.Clone(i.Value()))
}

// Construct builds a composite value from its components.
type Construct struct {
	instructionBase
}

func newConstruct(result *InstructionResult, args ...Value) *Construct {
	i := &Construct{}
	i.setup(i, result, args...)
	return i
}

func (i *Construct) Args() []Value        { return i.operands }
func (i *Construct) FriendlyName() string { return "construct" }

func (i *Construct) clone(ctx *CloneContext) Instruction {
	return newConstruct(cloneResults(ctx, i.results)[0], ctx.CloneAll(i.operands)...)
}

// Access indexes into a composite value or a pointer to one.
type Access struct {
	instructionBase
}

const AccessIndicesOperandOffset = 1

func newAccess(result *InstructionResult, obj Value, indices ...Value) *Access {
	i := &Access{}
	i.setup(i, result, append([]Value{obj}, indices...)...)
	return i
}

func (i *Access) Object() Value        { return i.Operand(0) }
func (i *Access) Indices() []Value     { return i.operands[AccessIndicesOperandOffset:] }
func (i *Access) FriendlyName() string { return "access" }

func (i *Access) clone(ctx *CloneContext) Instruction {
	return newAccess(cloneResults(ctx, i.results)[0], ctx.Clone(i.Object()), ctx.CloneAll(i.Indices())...)
}

// Convert is a value conversion between numeric types.
type Convert struct {
	instructionBase
}

func newConvert(result *InstructionResult, val Value) *Convert {
	i := &Convert{}
	i.setup(i, result, val)
	return i
}

func (i *Convert) Val() Value           { return i.Operand(0) }
func (i *Convert) FriendlyName() string { return "convert" }

func (i *Convert) clone(ctx *CloneContext) Instruction {
	return newConvert(cloneResults(ctx, i.results)[0], ctx.Clone(i.Val()))
}

// Bitcast reinterprets the bits of a value as another type of the same size.
type Bitcast struct {
	instructionBase
}

func newBitcast(result *InstructionResult, val Value) *Bitcast {
	i := &Bitcast{}
	i.setup(i, result, val)
	return i
}

func (i *Bitcast) Val() Value           { return i.Operand(0) }
func (i *Bitcast) FriendlyName() string { return "bitcast" }

func (i *Bitcast) clone(ctx *CloneContext) Instruction {
	return newBitcast(cloneResults(ctx, i.results)[0], ctx.Clone(i.Val()))
}

// UserCall calls a function of the module.
type UserCall struct {
	instructionBase
}

const (
	UserCallFuncOperandOffset = 0
	UserCallArgsOperandOffset = 1
)

func newUserCall(result *InstructionResult, fn *Function, args ...Value) *UserCall {
	i := &UserCall{}
	i.setup(i, result, append([]Value{fn}, args...)...)
	return i
}

// Target returns the called function.
func (i *UserCall) Target() *Function {
	f, _ := i.Operand(UserCallFuncOperandOffset).(*Function)
	return f
}

func (i *UserCall) Args() []Value { return i.operands[UserCallArgsOperandOffset:] }

// AppendArg adds an argument after the existing ones.
func (i *UserCall) AppendArg(v Value) { i.addOperands(v) }

func (i *UserCall) FriendlyName() string { return "call" }

func (i *UserCall) clone(ctx *CloneContext) Instruction {
	fn, _ := ctx.Clone(i.Target()).(*Function)
	return newUserCall(cloneResults(ctx, i.results)[0], fn, ctx.CloneAll(i.Args())...)
}

// BuiltinFn is a builtin function.
type BuiltinFn uint8

const (
	BuiltinAbs BuiltinFn = iota
	BuiltinMin
	BuiltinMax
	BuiltinClamp
	BuiltinSelect
	BuiltinDot
	BuiltinLength
	BuiltinNormalize
	BuiltinArrayLength
	BuiltinTextureSample
	BuiltinTextureLoad
	BuiltinTextureDimensions
	BuiltinWorkgroupBarrier
	BuiltinStorageBarrier
)

var builtinFnNames = [...]string{
	BuiltinAbs:               "abs",
	BuiltinMin:               "min",
	BuiltinMax:               "max",
	BuiltinClamp:             "clamp",
	BuiltinSelect:            "select",
	BuiltinDot:               "dot",
	BuiltinLength:            "length",
	BuiltinNormalize:         "normalize",
	BuiltinArrayLength:       "arrayLength",
	BuiltinTextureSample:     "textureSample",
	BuiltinTextureLoad:       "textureLoad",
	BuiltinTextureDimensions: "textureDimensions",
	BuiltinWorkgroupBarrier:  "workgroupBarrier",
	BuiltinStorageBarrier:    "storageBarrier",
}

func (f BuiltinFn) String() string { return builtinFnNames[f] }

// BuiltinCall calls a builtin function.
type BuiltinCall struct {
	instructionBase
	Func BuiltinFn
}

func newBuiltinCall(result *InstructionResult, fn BuiltinFn, args ...Value) *BuiltinCall {
	i := &BuiltinCall{Func: fn}
	i.setup(i, result, args...)
	return i
}

func (i *BuiltinCall) Args() []Value        { return i.operands }
func (i *BuiltinCall) FriendlyName() string { return i.Func.String() }

func (i *BuiltinCall) clone(ctx *CloneContext) Instruction {
	return newBuiltinCall(cloneResults(ctx, i.results)[0], i.Func, ctx.CloneAll(i.operands)...)
}

// MemberBuiltinCall calls a builtin method on an object.
type MemberBuiltinCall struct {
	instructionBase
	Name string
}

func newMemberBuiltinCall(result *InstructionResult, name string, obj Value, args ...Value) *MemberBuiltinCall {
	i := &MemberBuiltinCall{Name: name}
	i.setup(i, result, append([]Value{obj}, args...)...)
	return i
}

func (i *MemberBuiltinCall) Object() Value        { return i.Operand(0) }
func (i *MemberBuiltinCall) Args() []Value        { return i.operands[1:] }
func (i *MemberBuiltinCall) FriendlyName() string { return i.Name }

func (i *MemberBuiltinCall) clone(ctx *CloneContext) Instruction {
	return newMemberBuiltinCall(cloneResults(ctx, i.results)[0], i.Name, ctx.Clone(i.Object()), ctx.CloneAll(i.Args())...)
}

// Override is a pipeline-overridable module-scope constant.
type Override struct {
	instructionBase
	ID *uint16
}

func newOverride(result *InstructionResult, init Value) *Override {
	i := &Override{}
	i.setup(i, result, init)
	return i
}

// Initializer returns the default value, or nil.
func (i *Override) Initializer() Value   { return i.Operand(0) }
func (i *Override) FriendlyName() string { return "override" }

func (i *Override) clone(ctx *CloneContext) Instruction {
	o := newOverride(cloneResults(ctx, i.results)[0], ctx.Clone(i.Initializer()))
	if i.ID != nil {
		id := *i.ID
		o.ID = &id
	}
	return o
}

// Discard demotes the invocation to a helper invocation.
type Discard struct {
	instructionBase
}

func newDiscard() *Discard {
	i := &Discard{}
	i.setup(i, nil)
	return i
}

func (i *Discard) FriendlyName() string { return "discard" }

func (i *Discard) clone(*CloneContext) Instruction { return newDiscard() }

var (
	_ Instruction = (*Binary)(nil)
	_ Instruction = (*Unary)(nil)
	_ Instruction = (*Swizzle)(nil)
	_ Instruction = (*Load)(nil)
	_ Instruction = (*Store)(nil)
	_ Instruction = (*LoadVectorElement)(nil)
	_ Instruction = (*StoreVectorElement)(nil)
	_ Instruction = (*Var)(nil)
	_ Instruction = (*Let)(nil)
	_ Instruction = (*Construct)(nil)
	_ Instruction = (*Access)(nil)
	_ Instruction = (*Convert)(nil)
	_ Instruction = (*Bitcast)(nil)
	_ Instruction = (*UserCall)(nil)
	_ Instruction = (*BuiltinCall)(nil)
	_ Instruction = (*MemberBuiltinCall)(nil)
	_ Instruction = (*Override)(nil)
	_ Instruction = (*Discard)(nil)
)

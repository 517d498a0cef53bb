package ir

// Function is a function of a module. Functions are values so that calls
// and returns can refer to them as operands.
type Function struct {
	valueBase

	params     []*FunctionParam
	returnType Type
	block      *Block

	// ReturnAttributes are the shader interface attributes of the
	// returned value of an entry point.
	ReturnAttributes IOAttributes

	Stage         ShaderStage
	WorkgroupSize *[3]uint32
}

// NewFunction returns a function with an empty body. The function must be
// added to a module with Module.AddFunction.
func NewFunction(returnType Type, stage ShaderStage) *Function {
	return &Function{
		returnType: returnType,
		block:      NewBlock(),
		Stage:      stage,
	}
}

// Type returns nil: functions are not first-class values.
func (f *Function) Type() Type { return nil }

func (f *Function) ReturnType() Type     { return f.returnType }
func (f *Function) SetReturnType(t Type) { f.returnType = t }

// Block returns the function body.
func (f *Function) Block() *Block { return f.block }

// IsEntryPoint reports whether the function is a shader entry point.
func (f *Function) IsEntryPoint() bool { return f.Stage != StageNone }

// Params returns the function parameters.
func (f *Function) Params() []*FunctionParam { return f.params }

// SetParams replaces the parameters. Parameters no longer in the list lose
// their owner.
func (f *Function) SetParams(params ...*FunctionParam) {
	for _, p := range f.params {
		p.fn = nil
		p.index = -1
	}
	f.params = append([]*FunctionParam(nil), params...)
	for i, p := range f.params {
		if p == nil {
			bug("nil function parameter")
		}
		p.fn = f
		p.index = i
	}
}

// AppendParam adds a parameter after the existing ones.
func (f *Function) AppendParam(p *FunctionParam) {
	if p == nil {
		bug("nil function parameter")
	}
	p.fn = f
	p.index = len(f.params)
	f.params = append(f.params, p)
}

// Returns returns the return instructions of the function, in the order
// they were created.
func (f *Function) Returns() []*Return {
	var rets []*Return
	for _, u := range f.usages {
		if r, ok := u.Instruction.(*Return); ok && u.Operand == ReturnFuncOperandOffset {
			rets = append(rets, r)
		}
	}
	return rets
}

// CallSites returns the calls of the function, in the order they were
// created.
func (f *Function) CallSites() []*UserCall {
	var calls []*UserCall
	for _, u := range f.usages {
		if c, ok := u.Instruction.(*UserCall); ok && u.Operand == UserCallFuncOperandOffset {
			calls = append(calls, c)
		}
	}
	return calls
}

package ir

import (
	"slices"
)

// Value is anything that can be used as an instruction operand.
type Value interface {
	// Type returns the type of the value. Functions have no type.
	Type() Type

	// Usages returns the instruction operands that use this value,
	// in the order they were added.
	Usages() []Usage
	AddUsage(u Usage)
	RemoveUsage(u Usage)
	IsUsed() bool
	NumUsages() int

	// ReplaceAllUsesWith replaces every use of this value with v.
	ReplaceAllUsesWith(v Value)
	// ReplaceAllUsesWithFn replaces every use of this value with the
	// value returned by fn for that use.
	ReplaceAllUsesWithFn(fn func(u Usage) Value)

	Destroy()
	Alive() bool

	value() *valueBase
}

// Usage is a single use of a value: operand Operand of Instruction.
type Usage struct {
	Instruction Instruction
	Operand     int
}

type valueBase struct {
	usages []Usage
	dead   bool
}

func (v *valueBase) value() *valueBase { return v }

func (v *valueBase) Usages() []Usage { return v.usages }

func (v *valueBase) AddUsage(u Usage) {
	v.usages = append(v.usages, u)
}

func (v *valueBase) RemoveUsage(u Usage) {
	if i := slices.Index(v.usages, u); i >= 0 {
		v.usages = slices.Delete(v.usages, i, i+1)
	}
}

func (v *valueBase) IsUsed() bool { return len(v.usages) != 0 }

func (v *valueBase) NumUsages() int { return len(v.usages) }

func (v *valueBase) ReplaceAllUsesWith(r Value) {
	v.ReplaceAllUsesWithFn(func(Usage) Value { return r })
}

func (v *valueBase) ReplaceAllUsesWithFn(fn func(u Usage) Value) {
	// SetOperand mutates v.usages.
	for _, u := range slices.Clone(v.usages) {
		u.Instruction.SetOperand(u.Operand, fn(u))
	}
}

func (v *valueBase) Destroy() {
	if v.dead {
		bug("value destroyed twice")
	}
	v.dead = true
}

func (v *valueBase) Alive() bool { return !v.dead }

// Constant is an immutable scalar or composite literal.
//
// Scalar holds an int32, uint32, float32 or bool. Composite constants have
// a nil Scalar and one element per component.
type Constant struct {
	valueBase

	typ      Type
	Scalar   any
	Elements []*Constant
}

func (c *Constant) Type() Type { return c.typ }

// Destroy is a no-op: constants live as long as the module.
func (c *Constant) Destroy() {}

// IsZero reports whether the constant is a scalar zero or false.
func (c *Constant) IsZero() bool {
	switch s := c.Scalar.(type) {
	case int32:
		return s == 0
	case uint32:
		return s == 0
	case float32:
		return s == 0
	case bool:
		return !s
	}
	for _, el := range c.Elements {
		if !el.IsZero() {
			return false
		}
	}
	return true
}

// InstructionResult is a value produced by an instruction.
type InstructionResult struct {
	valueBase

	typ  Type
	inst Instruction
}

// NewInstructionResult returns a result of type t not yet owned by any
// instruction.
func NewInstructionResult(t Type) *InstructionResult {
	return &InstructionResult{typ: t}
}

func (r *InstructionResult) Type() Type { return r.typ }

// SetType changes the result type.
func (r *InstructionResult) SetType(t Type) { r.typ = t }

// Instruction returns the instruction that owns the result, or nil.
func (r *InstructionResult) Instruction() Instruction { return r.inst }

// BindingPoint is a resource binding location.
type BindingPoint struct {
	Group   uint32
	Binding uint32
}

// BuiltinValue identifies a builtin shader input or output.
type BuiltinValue uint8

const (
	BuiltinNone BuiltinValue = iota
	BuiltinPosition
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinSampleIndex
	BuiltinSampleMask
	BuiltinLocalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinGlobalInvocationID
	BuiltinWorkgroupID
	BuiltinNumWorkgroups
)

var builtinValueNames = [...]string{
	BuiltinNone:                 "",
	BuiltinPosition:             "position",
	BuiltinVertexIndex:          "vertex_index",
	BuiltinInstanceIndex:        "instance_index",
	BuiltinFrontFacing:          "front_facing",
	BuiltinFragDepth:            "frag_depth",
	BuiltinSampleIndex:          "sample_index",
	BuiltinSampleMask:           "sample_mask",
	BuiltinLocalInvocationID:    "local_invocation_id",
	BuiltinLocalInvocationIndex: "local_invocation_index",
	BuiltinGlobalInvocationID:   "global_invocation_id",
	BuiltinWorkgroupID:          "workgroup_id",
	BuiltinNumWorkgroups:        "num_workgroups",
}

func (b BuiltinValue) String() string {
	if int(b) < len(builtinValueNames) {
		return builtinValueNames[b]
	}
	return "unknown"
}

// InterpolationType is the interpolation of a user-defined IO value.
type InterpolationType uint8

const (
	InterpolationPerspective InterpolationType = iota
	InterpolationLinear
	InterpolationFlat
)

// InterpolationSampling is the sampling of a user-defined IO value.
type InterpolationSampling uint8

const (
	SamplingNone InterpolationSampling = iota
	SamplingCenter
	SamplingCentroid
	SamplingSample
)

// Interpolation describes how a value is interpolated between stages.
type Interpolation struct {
	Type     InterpolationType
	Sampling InterpolationSampling
}

func (i Interpolation) String() string {
	s := [...]string{"perspective", "linear", "flat"}[i.Type]
	if i.Sampling != SamplingNone {
		s += ", " + [...]string{"", "center", "centroid", "sample"}[i.Sampling]
	}
	return s
}

// IOAttributes are the shader interface attributes of a function
// parameter or return value.
type IOAttributes struct {
	BindingPoint  *BindingPoint
	Location      *uint32
	Builtin       BuiltinValue
	Invariant     bool
	Interpolation *Interpolation
}

// IsEmpty reports whether no attribute is set.
func (a IOAttributes) IsEmpty() bool {
	return a.BindingPoint == nil && a.Location == nil && a.Builtin == BuiltinNone &&
		!a.Invariant && a.Interpolation == nil
}

// FunctionParam is a parameter of a function.
type FunctionParam struct {
	valueBase

	typ   Type
	fn    *Function
	index int

	Attributes IOAttributes
}

// NewFunctionParam returns a parameter of type t not yet owned by a function.
func NewFunctionParam(t Type) *FunctionParam {
	return &FunctionParam{typ: t, index: -1}
}

func (p *FunctionParam) Type() Type { return p.typ }

// Function returns the function that owns the parameter, or nil.
func (p *FunctionParam) Function() *Function { return p.fn }

// Index returns the position of the parameter in its function.
func (p *FunctionParam) Index() int { return p.index }

// BlockParam is a parameter of a MultiInBlock. It takes the value passed by
// whichever branch entered the block.
type BlockParam struct {
	valueBase

	typ   Type
	block *MultiInBlock
}

// NewBlockParam returns a block parameter of type t not yet owned by a block.
func NewBlockParam(t Type) *BlockParam {
	return &BlockParam{typ: t}
}

func (p *BlockParam) Type() Type { return p.typ }

// Block returns the block that owns the parameter, or nil.
func (p *BlockParam) Block() *MultiInBlock { return p.block }

// Unused marks a struct member with no live source. It is only valid as a
// Construct operand.
type Unused struct {
	valueBase

	typ Type
}

func (u *Unused) Type() Type { return u.typ }

var (
	_ Value = (*Constant)(nil)
	_ Value = (*InstructionResult)(nil)
	_ Value = (*FunctionParam)(nil)
	_ Value = (*BlockParam)(nil)
	_ Value = (*Unused)(nil)
	_ Value = (*Function)(nil)
)

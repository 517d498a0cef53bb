package ir

// CloneContext maps original values and control instructions to their
// clones. Values with no mapping clone to themselves, so references to
// values outside the cloned region are kept.
type CloneContext struct {
	Module *Module

	values   map[Value]Value
	controls map[ControlInstruction]ControlInstruction
}

// NewCloneContext returns an empty clone context for m.
func NewCloneContext(m *Module) *CloneContext {
	return &CloneContext{
		Module:   m,
		values:   make(map[Value]Value),
		controls: make(map[ControlInstruction]ControlInstruction),
	}
}

// Replace records that from is cloned as to.
func (ctx *CloneContext) Replace(from, to Value) {
	ctx.values[from] = to
	if name := ctx.Module.NameOf(from); name != "" && ctx.Module.NameOf(to) == "" {
		ctx.Module.SetName(to, name)
	}
}

// ReplaceControl records that from is cloned as to.
func (ctx *CloneContext) ReplaceControl(from, to ControlInstruction) {
	ctx.controls[from] = to
}

// Clone returns the clone of v, or v itself if it has none.
func (ctx *CloneContext) Clone(v Value) Value {
	if v == nil {
		return nil
	}
	if c, ok := ctx.values[v]; ok {
		return c
	}
	return v
}

// CloneAll clones each value of vs.
func (ctx *CloneContext) CloneAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = ctx.Clone(v)
	}
	return out
}

// CloneControl returns the clone of c, or c itself if it has none.
func (ctx *CloneContext) CloneControl(c ControlInstruction) ControlInstruction {
	if cc, ok := ctx.controls[c]; ok {
		return cc
	}
	return c
}

// CloneInstruction returns a detached clone of inst.
func (ctx *CloneContext) CloneInstruction(inst Instruction) Instruction {
	return inst.clone(ctx)
}

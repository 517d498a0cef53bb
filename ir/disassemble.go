package ir

import (
	"strconv"
	"strings"
)

// Disassemble returns the textual form of the module.
//
// The output is deterministic: blocks, unnamed values and control
// instructions are numbered in the order they are first printed.
func Disassemble(m *Module) string {
	d := newDisassembler(m)
	d.module()
	return d.buf.String()
}

// DisassembleFunction returns the textual form of a single function.
func DisassembleFunction(m *Module, fn *Function) string {
	d := newDisassembler(m)
	d.function(fn)
	return d.buf.String()
}

type disassembler struct {
	m   *Module
	buf strings.Builder

	indent int

	ids     map[Value]string
	taken   map[string]struct{}
	renamed map[Value]string

	blocks   map[*Block]int
	controls map[ControlInstruction]string
	counts   map[string]int
}

func newDisassembler(m *Module) *disassembler {
	return &disassembler{
		m:        m,
		ids:      make(map[Value]string),
		taken:    make(map[string]struct{}),
		renamed:  make(map[Value]string),
		blocks:   make(map[*Block]int),
		controls: make(map[ControlInstruction]string),
		counts:   make(map[string]int),
	}
}

func (d *disassembler) w(s ...string) {
	for _, s := range s {
		d.buf.WriteString(s)
	}
}

func (d *disassembler) newline() {
	d.buf.WriteByte('\n')
}

func (d *disassembler) startLine() {
	for i := 0; i < d.indent; i++ {
		d.buf.WriteString("  ")
	}
}

func (d *disassembler) module() {
	if !d.m.root.IsEmpty() {
		d.block(d.m.root, "root")
		d.newline()
	}

	for i, fn := range d.m.functions {
		if i != 0 {
			d.newline()
		}
		d.function(fn)
	}
}

func (d *disassembler) function(fn *Function) {
	d.startLine()
	d.w("%", d.id(fn), " = ")

	switch fn.Stage {
	case StageCompute:
		d.w("@compute ")
		if ws := fn.WorkgroupSize; ws != nil {
			d.w("@workgroup_size(", utoa(ws[0]), ", ", utoa(ws[1]), ", ", utoa(ws[2]), ") ")
		}
	case StageFragment, StageVertex:
		d.w("@", fn.Stage.String(), " ")
	}

	d.w("func(")
	for i, p := range fn.params {
		if i != 0 {
			d.w(", ")
		}
		d.w("%", d.id(p), ":", typeName(p.Type()), d.attributes(p.Attributes))
	}
	d.w("):", typeName(fn.returnType), d.attributes(fn.ReturnAttributes), " {")
	d.newline()

	d.indent++
	d.block(fn.block, "")
	d.indent--

	d.startLine()
	d.w("}")
	d.newline()
}

func (d *disassembler) attributes(a IOAttributes) string {
	if a.IsEmpty() {
		return ""
	}

	var parts []string
	if bp := a.BindingPoint; bp != nil {
		parts = append(parts, "@binding_point("+utoa(bp.Group)+", "+utoa(bp.Binding)+")")
	}
	if a.Location != nil {
		parts = append(parts, "@location("+utoa(*a.Location)+")")
	}
	if a.Builtin != BuiltinNone {
		parts = append(parts, "@builtin("+a.Builtin.String()+")")
	}
	if a.Interpolation != nil {
		parts = append(parts, "@interpolate("+a.Interpolation.String()+")")
	}
	if a.Invariant {
		parts = append(parts, "@invariant")
	}

	return " [" + strings.Join(parts, ", ") + "]"
}

func (d *disassembler) blockID(b *Block) string {
	id, ok := d.blocks[b]
	if !ok {
		id = len(d.blocks) + 1
		d.blocks[b] = id
	}
	return "$B" + strconv.Itoa(id)
}

func (d *disassembler) controlName(c ControlInstruction) string {
	if c == nil {
		return "undef"
	}
	name, ok := d.controls[c]
	if !ok {
		kind := c.FriendlyName()
		d.counts[kind]++
		name = kind + "_" + strconv.Itoa(d.counts[kind])
		d.controls[c] = name
	}
	return name
}

func (d *disassembler) id(v Value) string {
	if id, ok := d.ids[v]; ok {
		return id
	}

	var id string
	if name := d.m.NameOf(v); name != "" {
		id = name
		for i := 1; d.isTaken(id); i++ {
			id = name + "_" + strconv.Itoa(i)
		}
		if id != name {
			d.renamed[v] = name
		}
	} else {
		for n := len(d.ids) + 1; ; n++ {
			id = strconv.Itoa(n)
			if !d.isTaken(id) {
				break
			}
		}
	}

	d.ids[v] = id
	d.taken[id] = struct{}{}
	return id
}

func (d *disassembler) isTaken(id string) bool {
	_, ok := d.taken[id]
	return ok
}

func (d *disassembler) value(v Value) string {
	switch v := v.(type) {
	case nil:
		return "undef"
	case *Constant:
		return constantText(v)
	case *Unused:
		return "unused"
	default:
		return "%" + d.id(v)
	}
}

func (d *disassembler) values(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = d.value(v)
	}
	return strings.Join(parts, ", ")
}

func constantText(c *Constant) string {
	switch s := c.Scalar.(type) {
	case int32:
		return strconv.FormatInt(int64(s), 10) + "i"
	case uint32:
		return strconv.FormatUint(uint64(s), 10) + "u"
	case float32:
		f := strconv.FormatFloat(float64(s), 'f', -1, 32)
		if !strings.ContainsAny(f, ".IN") {
			f += ".0"
		}
		return f + "f"
	case bool:
		return strconv.FormatBool(s)
	}

	parts := make([]string, len(c.Elements))
	for i, el := range c.Elements {
		parts[i] = constantText(el)
	}
	return typeName(c.typ) + "(" + strings.Join(parts, ", ") + ")"
}

func typeName(t Type) string {
	if t == nil {
		return "undef"
	}
	return t.String()
}

func utoa(u uint32) string {
	return strconv.FormatUint(uint64(u), 10)
}

func (d *disassembler) block(b *Block, comment string) {
	d.startLine()
	d.w(d.blockID(b))
	if mb := b.AsMultiIn(); mb != nil && len(mb.params) != 0 {
		d.w(" (")
		for i, p := range mb.params {
			if i != 0 {
				d.w(", ")
			}
			d.w("%", d.id(p), ":", typeName(p.Type()))
		}
		d.w(")")
	}
	d.w(": {")
	if comment != "" {
		d.w("  # ", comment)
	}
	d.newline()

	d.indent++
	for inst := b.first; inst != nil; inst = inst.Next() {
		d.instruction(inst)
	}
	d.indent--

	d.startLine()
	d.w("}")
	d.newline()
}

func (d *disassembler) results(rs []*InstructionResult) {
	if len(rs) == 0 {
		return
	}
	for i, r := range rs {
		if i != 0 {
			d.w(", ")
		}
		d.w("%", d.id(r), ":", typeName(r.Type()))
	}
	d.w(" = ")
}

func (d *disassembler) renameComments(rs []*InstructionResult) {
	for _, r := range rs {
		if name, ok := d.renamed[r]; ok {
			d.w("  # %", d.ids[r], ": '", name, "'")
		}
	}
}

func (d *disassembler) instruction(inst Instruction) {
	d.startLine()
	d.results(inst.Results())

	if ctrl, ok := inst.(ControlInstruction); ok {
		d.control(ctrl)
		return
	}

	d.w(d.instructionText(inst))
	d.renameComments(inst.Results())
	d.newline()
}

func (d *disassembler) instructionText(inst Instruction) string {
	ops := func(name string, vs []Value) string {
		if len(vs) == 0 {
			return name
		}
		return name + " " + d.values(vs)
	}

	switch inst := inst.(type) {
	case *Swizzle:
		const comps = "xyzw"
		var sel strings.Builder
		for _, i := range inst.Indices {
			if int(i) < len(comps) {
				sel.WriteByte(comps[i])
			}
		}
		return "swizzle " + d.value(inst.Object()) + ", " + sel.String()

	case *Var:
		s := "var"
		if init := inst.Initializer(); init != nil {
			s += " " + d.value(init)
		}
		if bp := inst.BindingPoint; bp != nil {
			s += " @binding_point(" + utoa(bp.Group) + ", " + utoa(bp.Binding) + ")"
		}
		return s

	case *Override:
		s := "override"
		if init := inst.Initializer(); init != nil {
			s += " " + d.value(init)
		}
		if inst.ID != nil {
			s += " @id(" + strconv.Itoa(int(*inst.ID)) + ")"
		}
		return s

	case *UserCall:
		return ops("call", inst.Operands())

	case *MemberBuiltinCall:
		return ops(d.value(inst.Object())+"."+inst.Name, inst.Args())

	case *Return:
		return ops("ret", inst.Args())

	case Exit:
		if bi, ok := inst.(*BreakIf); ok {
			s := "break_if " + d.value(bi.Condition())
			if vs := bi.NextIterValues(); len(vs) != 0 {
				s += " next_iteration: [ " + d.values(vs) + " ]"
			}
			if vs := bi.ExitValues(); len(vs) != 0 {
				s += " exit_loop: [ " + d.values(vs) + " ]"
			}
			return s + "  # " + d.controlName(bi.ControlInstruction())
		}
		return ops(inst.FriendlyName(), inst.Args()) + "  # " + d.controlName(inst.ControlInstruction())

	case *Continue:
		return ops("continue", inst.Args()) + "  # " + d.controlName(inst.Loop())

	case *NextIteration:
		return ops("next_iteration", inst.Args()) + "  # " + d.controlName(inst.Loop())

	default:
		return ops(inst.FriendlyName(), inst.Operands())
	}
}

func (d *disassembler) control(ctrl ControlInstruction) {
	name := d.controlName(ctrl)

	switch c := ctrl.(type) {
	case *If:
		d.w("if ", d.value(c.Condition()), " [t: ", d.blockID(c.trueBlock))
		if !c.falseBlock.IsEmpty() {
			d.w(", f: ", d.blockID(c.falseBlock))
		}
		d.w("] {  # ", name)
		d.newline()

		d.indent++
		d.block(c.trueBlock, "true")
		if !c.falseBlock.IsEmpty() {
			d.block(c.falseBlock, "false")
		}
		d.indent--

	case *Loop:
		var parts []string
		if !c.initializer.IsEmpty() {
			parts = append(parts, "i: "+d.blockID(c.initializer))
		}
		parts = append(parts, "b: "+d.blockID(&c.body.Block))
		if !c.continuing.IsEmpty() {
			parts = append(parts, "c: "+d.blockID(&c.continuing.Block))
		}
		d.w("loop [", strings.Join(parts, ", "), "] {  # ", name)
		d.newline()

		d.indent++
		if !c.initializer.IsEmpty() {
			d.block(c.initializer, "initializer")
		}
		d.block(&c.body.Block, "body")
		if !c.continuing.IsEmpty() {
			d.block(&c.continuing.Block, "continuing")
		}
		d.indent--

	case *Switch:
		parts := make([]string, len(c.cases))
		for i, cs := range c.cases {
			sels := make([]string, len(cs.Selectors))
			for j, sel := range cs.Selectors {
				if sel.IsDefault() {
					sels[j] = "default"
				} else {
					sels[j] = constantText(sel.Val)
				}
			}
			parts[i] = "c: (" + strings.Join(sels, " ") + ", " + d.blockID(cs.Block) + ")"
		}
		d.w("switch ", d.value(c.Condition()), " [", strings.Join(parts, ", "), "] {  # ", name)
		d.newline()

		d.indent++
		for _, cs := range c.cases {
			d.block(cs.Block, "case")
		}
		d.indent--
	}

	d.startLine()
	d.w("}")
	d.newline()
}

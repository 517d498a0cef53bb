package ir

import "slices"

// Module is a compilation unit: module-scope declarations in the root
// block plus the functions.
type Module struct {
	Types   *TypeManager
	Symbols *SymbolTable

	root      *Block
	functions []*Function
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{
		Types:   NewTypeManager(),
		Symbols: NewSymbolTable(),
		root:    NewBlock(),
	}
}

// Root returns the block holding module-scope declarations.
func (m *Module) Root() *Block { return m.root }

// Functions returns the functions in declaration order.
func (m *Module) Functions() []*Function { return m.functions }

// AddFunction appends fn to the module.
func (m *Module) AddFunction(fn *Function) {
	if fn == nil {
		bug("nil function added to module")
	}
	if slices.Contains(m.functions, fn) {
		bug("function %q added to module twice", m.NameOf(fn))
	}
	m.functions = append(m.functions, fn)
}

// RemoveFunction removes fn from the module and destroys it.
func (m *Module) RemoveFunction(fn *Function) {
	i := slices.Index(m.functions, fn)
	if i < 0 {
		bug("function %q not in module", m.NameOf(fn))
	}
	m.functions = slices.Delete(m.functions, i, i+1)
	fn.block.Destroy()
	fn.Destroy()
}

// EntryPoints returns the entry point functions in declaration order.
func (m *Module) EntryPoints() []*Function {
	var eps []*Function
	for _, fn := range m.functions {
		if fn.IsEntryPoint() {
			eps = append(eps, fn)
		}
	}
	return eps
}

// NameOf returns the name of v, or "".
func (m *Module) NameOf(v Value) string { return m.Symbols.Get(v) }

// SetName names v.
func (m *Module) SetName(v Value, name string) { m.Symbols.Set(v, name) }

// DependencyOrderedFunctions returns the functions ordered so that every
// function comes after all the functions it calls. Functions that do not
// depend on each other keep their declaration order.
func (m *Module) DependencyOrderedFunctions() []*Function {
	order := make([]*Function, 0, len(m.functions))
	visited := make(map[*Function]bool, len(m.functions))

	var visit func(fn *Function)
	visit = func(fn *Function) {
		if visited[fn] {
			return
		}
		visited[fn] = true

		fn.block.Walk(func(inst Instruction) bool {
			if call, ok := inst.(*UserCall); ok && call.Target() != nil {
				visit(call.Target())
			}
			return true
		})

		order = append(order, fn)
	}

	for _, fn := range m.functions {
		visit(fn)
	}

	return order
}

// Callees returns the functions called directly from fn, in the order of
// their first call.
func Callees(fn *Function) []*Function {
	var out []*Function
	fn.block.Walk(func(inst Instruction) bool {
		if call, ok := inst.(*UserCall); ok && call.Target() != nil && !slices.Contains(out, call.Target()) {
			out = append(out, call.Target())
		}
		return true
	})
	return out
}

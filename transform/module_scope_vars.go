package transform

import (
	"strconv"

	"github.com/gogpu/tint/ir"
)

const moduleScopeVarsName = "module_scope_vars"

const moduleScopeVarsCapabilities = ir.AllowOverrides

const moduleScopeVarsResultCapabilities = ir.AllowPointersAndHandlesInStructures |
	ir.AllowPrivateVarsInFunctions |
	ir.AllowOverrides |
	ir.AllowUnusedValues

// ModuleScopeVars removes the module-scope variables.
//
// The variables are gathered in a structure that is created by each entry
// point and passed to every function that uses them, directly or through
// its callees. Entry points declare private variables locally, receive
// storage, uniform and handle variables as parameters with binding points,
// and receive workgroup variables through a pointer to a second structure.
func ModuleScopeVars(m *ir.Module) error {
	if err := ir.ValidateAndDumpIfNeeded(m, moduleScopeVarsName, moduleScopeVarsCapabilities); err != nil {
		return err
	}

	s := moduleScopeVars{
		m:     m,
		b:     ir.NewBuilder(m),
		index: make(map[ir.Value]int),
		refs:  make(map[*ir.Function]map[int]bool),
		param: make(map[*ir.Function]ir.Value),
	}
	s.run()

	return nil
}

type moduleScopeVars struct {
	m *ir.Module
	b *ir.Builder

	vars  []*ir.Var
	index map[ir.Value]int // var result -> index in vars

	structType *ir.StructType

	// refs is the set of variables used by a function or its callees.
	refs map[*ir.Function]map[int]bool

	// param is the structure value inside a function.
	param map[*ir.Function]ir.Value
}

func (s *moduleScopeVars) run() {
	for inst := s.m.Root().Front(); inst != nil; inst = inst.Next() {
		if v, ok := inst.(*ir.Var); ok {
			s.index[v.Result()] = len(s.vars)
			s.vars = append(s.vars, v)
		}
	}

	if len(s.vars) == 0 {
		return
	}

	members := make([]ir.StructMember, len(s.vars))
	for i, v := range s.vars {
		members[i] = ir.StructMember{
			Name: s.memberName(v, i),
			Type: s.memberType(v),
		}
	}
	s.structType = s.m.Types.Struct(s.structName("tint_module_vars_struct"), members...)

	order := s.m.DependencyOrderedFunctions()

	for _, fn := range order {
		refs := make(map[int]bool)
		fn.Block().Walk(func(inst ir.Instruction) bool {
			for _, op := range inst.Operands() {
				if i, ok := s.varIndex(op); ok {
					refs[i] = true
				}
			}
			if call, ok := inst.(*ir.UserCall); ok && call.Target() != nil {
				for i := range s.refs[call.Target()] {
					refs[i] = true
				}
			}
			return true
		})
		s.refs[fn] = refs
	}

	for _, fn := range order {
		if len(s.refs[fn]) == 0 {
			continue
		}

		if fn.IsEntryPoint() {
			s.processEntryPoint(fn)
		} else {
			s.processFunction(fn)
		}
	}

	for _, v := range s.vars {
		v.Destroy()
	}
}

func (s *moduleScopeVars) varIndex(v ir.Value) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := s.index[v]
	return i, ok
}

func (s *moduleScopeVars) memberName(v *ir.Var, i int) string {
	if name := s.m.NameOf(v.Result()); name != "" {
		return name
	}
	return "tint_symbol_" + strconv.Itoa(i)
}

// memberType is the type a variable has inside the structure: the pointer
// itself, or the handle value for handle variables.
func (s *moduleScopeVars) memberType(v *ir.Var) ir.Type {
	ptr := v.PointerType()
	if ptr.Space == ir.SpaceHandle {
		return ptr.StoreType
	}
	return ptr
}

func (s *moduleScopeVars) structName(prefix string) string {
	name := prefix
	for i := 1; s.m.Types.Find(name) != nil; i++ {
		name = prefix + "_" + strconv.Itoa(i)
	}
	return name
}

// needsStruct reports whether fn calls a function using module variables.
func (s *moduleScopeVars) needsStruct(fn *ir.Function) bool {
	for _, c := range ir.Callees(fn) {
		if len(s.refs[c]) != 0 {
			return true
		}
	}
	return false
}

func (s *moduleScopeVars) processFunction(fn *ir.Function) {
	p := s.b.FunctionParam("tint_module_vars", s.structType)
	fn.AppendParam(p)
	s.param[fn] = p

	s.replaceUses(fn, func(i int) ir.Value {
		a := s.b.Access(s.structType.Members[i].Type, p, s.b.U32(uint32(i)))
		return a.Result()
	})

	s.updateCalls(fn)
}

func (s *moduleScopeVars) processEntryPoint(fn *ir.Function) {
	types := s.m.Types
	refs := s.refs[fn]
	decls := make([]ir.Value, len(s.vars))

	var workgroup []int
	for i, v := range s.vars {
		if refs[i] && v.PointerType().Space == ir.SpaceWorkGroup {
			workgroup = append(workgroup, i)
		}
	}

	s.b.Prepend(fn.Block(), func() {
		var wg ir.Value
		if len(workgroup) != 0 {
			members := make([]ir.StructMember, len(workgroup))
			for k, i := range workgroup {
				members[k] = ir.StructMember{
					Name: s.memberName(s.vars[i], i),
					Type: s.vars[i].PointerType().StoreType,
				}
			}
			st := types.Struct(s.structName("tint_workgroup_vars_struct"), members...)

			p := s.b.FunctionParam("tint_workgroup_vars", types.Ptr(ir.SpaceWorkGroup, st, ir.AccessReadWrite))
			fn.AppendParam(p)
			wg = p
		}

		wgIndex := 0
		for i, v := range s.vars {
			if !refs[i] {
				continue
			}

			ptr := v.PointerType()
			name := s.m.NameOf(v.Result())

			switch ptr.Space {
			case ir.SpacePrivate:
				local := s.b.Var(name, ptr)
				if init := v.Initializer(); init != nil {
					local.SetInitializer(init)
				}
				decls[i] = local.Result()

			case ir.SpaceWorkGroup:
				a := s.b.Access(ptr, wg, s.b.U32(uint32(wgIndex)))
				s.m.SetName(a.Result(), name)
				decls[i] = a.Result()
				wgIndex++

			default:
				p := s.b.FunctionParam(name, s.memberType(v))
				if bp := v.BindingPoint; bp != nil {
					bp := *bp
					p.Attributes.BindingPoint = &bp
				}
				fn.AppendParam(p)
				decls[i] = p
			}
		}

		if s.needsStruct(fn) {
			args := make([]ir.Value, len(s.vars))
			for i, d := range decls {
				if d == nil {
					d = s.b.Unused(s.structType.Members[i].Type)
				}
				args[i] = d
			}

			c := s.b.Construct(s.structType, args...)
			s.m.SetName(c.Result(), "tint_module_vars")
			s.param[fn] = c.Result()
		}
	})

	s.replaceUses(fn, func(i int) ir.Value {
		return decls[i]
	})

	s.updateCalls(fn)
}

// replaceUses replaces the uses of module variables in fn. get is called
// with the builder positioned before the using instruction.
func (s *moduleScopeVars) replaceUses(fn *ir.Function, get func(i int) ir.Value) {
	var uses []ir.Usage
	fn.Block().Walk(func(inst ir.Instruction) bool {
		for k, op := range inst.Operands() {
			if _, ok := s.varIndex(op); ok {
				uses = append(uses, ir.Usage{Instruction: inst, Operand: k})
			}
		}
		return true
	})

	for _, u := range uses {
		i, _ := s.varIndex(u.Instruction.Operand(u.Operand))

		var repl ir.Value
		s.b.InsertBefore(u.Instruction, func() {
			repl = get(i)
		})

		load, isLoad := u.Instruction.(*ir.Load)
		if isLoad && s.vars[i].PointerType().Space == ir.SpaceHandle {
			load.Result().ReplaceAllUsesWith(repl)
			load.Destroy()
			continue
		}

		u.Instruction.SetOperand(u.Operand, repl)
	}
}

func (s *moduleScopeVars) updateCalls(fn *ir.Function) {
	var calls []*ir.UserCall
	fn.Block().Walk(func(inst ir.Instruction) bool {
		if call, ok := inst.(*ir.UserCall); ok && len(s.refs[call.Target()]) != 0 {
			calls = append(calls, call)
		}
		return true
	})

	for _, call := range calls {
		call.AppendArg(s.param[fn])
	}
}

package ir

import (
	"fmt"
	"strings"

	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function    string
	Instruction string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Instruction != "" {
			return fmt.Sprintf("in function %s, instruction '%s': %s", e.Function, e.Instruction, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	if e.Instruction != "" {
		return fmt.Sprintf("instruction '%s': %s", e.Instruction, e.Message)
	}
	return e.Message
}

// Failure is the error returned when a module fails validation.
type Failure struct {
	Pass   string
	Errors []ValidationError
}

func (f *Failure) Error() string {
	var b strings.Builder
	if f.Pass != "" {
		b.WriteString(f.Pass)
		b.WriteString(": ")
	}
	b.WriteString("IR validation failed:")
	for _, e := range f.Errors {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Validator validates IR modules.
type Validator struct {
	module  *Module
	caps    Capabilities
	errors  []ValidationError
	context validationContext

	names *disassembler
}

// validationContext holds current validation context.
type validationContext struct {
	function     *Function
	functionName string

	// scopes holds the values visible at the current point, innermost last.
	scopes []map[Value]struct{}
	// frames holds the enclosing control instructions, innermost last.
	frames []controlFrame
}

type controlFrame struct {
	ctrl  ControlInstruction
	block *Block
}

// Validate checks the IR module for correctness with the given
// capabilities. Returns validation errors if any, or nil if module is valid.
func Validate(module *Module, caps Capabilities) ([]ValidationError, error) {
	if module == nil {
		return nil, errors.New("module is nil")
	}

	v := &Validator{
		module: module,
		caps:   caps,
		errors: make([]ValidationError, 0),
		names:  newDisassembler(module),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateAndDumpIfNeeded validates the module before running the named
// pass. The module is dumped to the log when the ir_dump topic is enabled.
// A validation failure is returned as a *Failure.
func ValidateAndDumpIfNeeded(module *Module, pass string, caps Capabilities) error {
	if tlog.If("ir_dump") && module != nil {
		tlog.Printw("ir dump", "pass", pass, "ir", Disassemble(module))
	}

	errs, err := Validate(module, caps)
	if err != nil {
		return errors.Wrap(err, "validate before %v", pass)
	}
	if len(errs) != 0 {
		return &Failure{Pass: pass, Errors: errs}
	}
	return nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()

	v.pushScope()
	v.validateRoot()

	for _, fn := range v.module.functions {
		v.validateFunction(fn)
	}
	v.popScope()
}

// validateTypes checks the struct types of the module.
func (v *Validator) validateTypes() {
	for _, t := range v.module.Types.Types() {
		st, ok := t.(*StructType)
		if !ok {
			continue
		}
		if len(st.Members) == 0 {
			v.addError(fmt.Sprintf("struct %s has no members", st.Name))
		}
		for _, m := range st.Members {
			_, isPtr := m.Type.(*PointerType)
			if (isPtr || IsHandle(m.Type)) && !v.caps.Has(AllowPointersAndHandlesInStructures) {
				v.addError(fmt.Sprintf("struct %s member %s: %v types are not allowed in structures", st.Name, m.Name, m.Type))
			}
		}
	}
}

// validateRoot checks the module-scope declarations.
func (v *Validator) validateRoot() {
	root := v.module.root
	v.validateListIntegrity(root)

	for inst := root.first; inst != nil; inst = inst.Next() {
		switch inst := inst.(type) {
		case *Var:
			if p := inst.PointerType(); p != nil && p.Space == SpaceFunction {
				v.addErrorInInstruction(inst, "module-scope var in the function address space")
			}
		case *Override:
			if !v.caps.Has(AllowOverrides) {
				v.addErrorInInstruction(inst, "overrides are not allowed")
			}
		default:
			v.addErrorInInstruction(inst, "root block: invalid instruction")
			continue
		}
		v.validateInstruction(inst)
	}
}

func (v *Validator) validateFunction(fn *Function) {
	v.context.function = fn
	v.context.functionName = v.names.id(fn)
	defer func() {
		v.context.function = nil
		v.context.functionName = ""
	}()

	if !fn.Alive() {
		v.addErrorInFunction("destroyed function")
		return
	}

	if fn.returnType == nil {
		v.addErrorInFunction("function has no return type")
	}
	if fn.Stage == StageCompute && fn.WorkgroupSize == nil {
		v.addErrorInFunction("compute entry point without a workgroup size")
	}

	v.pushScope()
	defer v.popScope()

	for i, p := range fn.params {
		if p.Function() != fn || p.Index() != i {
			v.addErrorInFunction(fmt.Sprintf("parameter %d does not belong to the function", i))
		}
		if p.Type() == nil {
			v.addErrorInFunction(fmt.Sprintf("parameter %d has no type", i))
		}
		v.define(p)
	}

	if fn.block.Parent() != nil {
		v.addErrorInFunction("function body has a parent control instruction")
	}
	v.validateBlock(fn.block)
}

func (v *Validator) pushScope() {
	v.context.scopes = append(v.context.scopes, make(map[Value]struct{}))
}

func (v *Validator) popScope() {
	v.context.scopes = v.context.scopes[:len(v.context.scopes)-1]
}

func (v *Validator) define(val Value) {
	v.context.scopes[len(v.context.scopes)-1][val] = struct{}{}
}

func (v *Validator) inScope(val Value) bool {
	for _, s := range v.context.scopes {
		if _, ok := s[val]; ok {
			return true
		}
	}
	return false
}

// validateListIntegrity checks the instruction list links of b.
func (v *Validator) validateListIntegrity(b *Block) {
	if !b.Alive() {
		v.addErrorInFunction("destroyed block")
	}

	count := 0
	var prev Instruction
	for inst := b.first; inst != nil; inst = inst.Next() {
		count++
		if inst.Block() != b {
			v.addErrorInInstruction(inst, "instruction does not belong to its block")
		}
		if inst.Prev() != prev {
			v.addErrorInInstruction(inst, "broken instruction list: prev link mismatch")
		}
		prev = inst
		if count > b.count {
			break
		}
	}
	if prev != b.last {
		v.addErrorInFunction("broken instruction list: last instruction mismatch")
	}
	if count != b.count {
		v.addErrorInFunction(fmt.Sprintf("broken instruction list: block counts %d instructions, found %d", b.count, count))
	}
}

// validateBlock checks a block that must be sealed with a terminator.
func (v *Validator) validateBlock(b *Block) {
	v.pushScope()
	defer v.popScope()

	v.validateBlockContents(b)
}

// validateBlockContents validates the instructions of b in the current
// scope.
func (v *Validator) validateBlockContents(b *Block) {
	v.validateListIntegrity(b)

	if mb := b.AsMultiIn(); mb != nil {
		v.validateMultiIn(mb)
	}

	if b.IsEmpty() {
		v.addErrorInFunction(fmt.Sprintf("block %s does not end in a terminator", v.names.blockID(b)))
		return
	}

	for inst := b.first; inst != nil; inst = inst.Next() {
		if _, ok := inst.(Terminator); ok && inst != b.last {
			v.addErrorInInstruction(inst, "terminator which isn't the final instruction")
		}
		v.validateInstruction(inst)
	}

	if b.Terminator() == nil {
		v.addErrorInFunction(fmt.Sprintf("block %s does not end in a terminator", v.names.blockID(b)))
	}
}

func (v *Validator) validateMultiIn(b *MultiInBlock) {
	for i, p := range b.params {
		if p.Block() != b {
			v.addErrorInFunction(fmt.Sprintf("block %s: parameter %d does not belong to the block", v.names.blockID(&b.Block), i))
		}
		v.define(p)
	}

	for _, t := range b.inbound {
		if !t.Alive() {
			v.addErrorInFunction(fmt.Sprintf("block %s: destroyed inbound sibling branch", v.names.blockID(&b.Block)))
			continue
		}

		var target *MultiInBlock
		switch t := t.(type) {
		case *Continue:
			if t.Loop() != nil {
				target = t.Loop().Continuing()
			}
		case *NextIteration:
			if t.Loop() != nil {
				target = t.Loop().Body()
			}
		case *BreakIf:
			if t.Loop() != nil {
				target = t.Loop().Body()
			}
		}
		if target != b {
			v.addErrorInInstruction(t, fmt.Sprintf("inbound sibling branch of %s does not target it", v.names.blockID(&b.Block)))
		}
	}
}

func (v *Validator) validateInstruction(inst Instruction) {
	if !inst.Alive() {
		v.addErrorInInstruction(inst, "destroyed instruction")
		return
	}

	v.validateOperands(inst)

	switch inst := inst.(type) {
	case *Binary:
		v.validateBinary(inst)
	case *Unary:
		v.validateUnary(inst)
	case *Swizzle:
		v.validateSwizzle(inst)
	case *Load:
		if st := StoreTypeOf(typeOf(inst.From())); st == nil {
			v.addErrorInInstruction(inst, "load source is not a pointer")
		} else if st != inst.Result().Type() {
			v.addErrorInInstruction(inst, fmt.Sprintf("result type %v does not match store type %v", inst.Result().Type(), st))
		}
	case *Store:
		v.validateStore(inst)
	case *LoadVectorElement:
		vec, ok := StoreTypeOf(typeOf(inst.From())).(*VectorType)
		if !ok {
			v.addErrorInInstruction(inst, "source is not a pointer to a vector")
		} else if Type(vec.Elem) != inst.Result().Type() {
			v.addErrorInInstruction(inst, "result type does not match vector element type")
		}
		v.expectIntegerIndex(inst, inst.Index())
	case *StoreVectorElement:
		vec, ok := StoreTypeOf(typeOf(inst.To())).(*VectorType)
		if !ok {
			v.addErrorInInstruction(inst, "destination is not a pointer to a vector")
		} else if typeOf(inst.Value()) != Type(vec.Elem) {
			v.addErrorInInstruction(inst, "value type does not match vector element type")
		}
		v.expectIntegerIndex(inst, inst.Index())
	case *Var:
		v.validateVar(inst)
	case *Let:
		if inst.Value() == nil || typeOf(inst.Value()) != inst.Result().Type() {
			v.addErrorInInstruction(inst, "result type does not match value type")
		}
	case *Construct:
		v.validateResultCount(inst, 1)
	case *Access:
		v.validateAccess(inst)
	case *Convert, *Bitcast:
		v.validateResultCount(inst, 1)
		if len(inst.Operands()) != 1 || inst.Operand(0) == nil {
			v.addErrorInInstruction(inst, "expected exactly one operand")
		}
	case *UserCall:
		v.validateUserCall(inst)
	case *BuiltinCall, *MemberBuiltinCall:
		v.validateResultCount(inst, 1)
	case *Override:
		if v.context.function != nil {
			v.addErrorInInstruction(inst, "override declared inside a function")
		}
	case *Discard:
	case *Return:
		v.validateReturn(inst)
	case *BreakIf:
		v.validateBreakIf(inst)
	case Exit:
		v.validateExit(inst)
	case *Continue:
		v.validateContinue(inst)
	case *NextIteration:
		v.validateNextIteration(inst)
	case *Unreachable, *TerminateInvocation:
	case *If:
		v.validateIf(inst)
	case *Loop:
		v.validateLoop(inst)
	case *Switch:
		v.validateSwitch(inst)
	}

	v.validateResults(inst)
}

func typeOf(val Value) Type {
	if val == nil {
		return nil
	}
	return val.Type()
}

// validateOperands checks operand liveness, scoping and usage records.
func (v *Validator) validateOperands(inst Instruction) {
	for i, op := range inst.Operands() {
		if op == nil {
			if !nilOperandAllowed(inst, i) {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is undef", i))
			}
			continue
		}

		if !op.Alive() {
			v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is destroyed", i))
			continue
		}

		found := false
		for _, u := range op.Usages() {
			if u.Instruction == inst && u.Operand == i {
				found = true
				break
			}
		}
		if !found {
			v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is missing a usage record", i))
		}

		switch op := op.(type) {
		case *Constant:
		case *Function:
			_, isCall := inst.(*UserCall)
			_, isRet := inst.(*Return)
			if !(isCall && i == UserCallFuncOperandOffset) && !(isRet && i == ReturnFuncOperandOffset) {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is a function", i))
			}
		case *Unused:
			if _, ok := inst.(*Construct); !ok {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d: unused values are only allowed in construct", i))
			} else if !v.caps.Has(AllowUnusedValues) {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d: unused values are not allowed", i))
			}
		case *FunctionParam:
			if op.Function() != v.context.function || v.context.function == nil {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is a parameter of another function", i))
			}
		default:
			if !v.inScope(op) {
				v.addErrorInInstruction(inst, fmt.Sprintf("operand %d is not in scope", i))
			}
		}
	}
}

func nilOperandAllowed(inst Instruction, i int) bool {
	switch inst.(type) {
	case *Var, *Override:
		return i == 0
	case *BreakIf:
		return i != BreakIfConditionOperandOffset
	case Exit, *Continue, *NextIteration:
		return true
	}
	return false
}

// validateResults checks result ownership and the usage records of results.
func (v *Validator) validateResults(inst Instruction) {
	for i, r := range inst.Results() {
		if r == nil {
			v.addErrorInInstruction(inst, fmt.Sprintf("result %d is nil", i))
			continue
		}
		if !r.Alive() {
			v.addErrorInInstruction(inst, fmt.Sprintf("result %d is destroyed", i))
		}
		if r.Instruction() != inst {
			v.addErrorInInstruction(inst, fmt.Sprintf("result %d is owned by another instruction", i))
		}
		if r.Type() == nil {
			v.addErrorInInstruction(inst, fmt.Sprintf("result %d has no type", i))
		}
		for _, u := range r.Usages() {
			if !u.Instruction.Alive() || u.Instruction.Operand(u.Operand) != Value(r) {
				v.addErrorInInstruction(inst, fmt.Sprintf("result %d has a stale usage record", i))
			}
		}
		v.define(r)
	}
}

func (v *Validator) validateResultCount(inst Instruction, n int) {
	if len(inst.Results()) != n {
		v.addErrorInInstruction(inst, fmt.Sprintf("expected %d results, got %d", n, len(inst.Results())))
	}
}

func (v *Validator) expectIntegerIndex(inst Instruction, idx Value) {
	if !IsInteger(typeOf(idx)) {
		v.addErrorInInstruction(inst, "index is not an integer")
	}
}

func (v *Validator) validateBinary(inst *Binary) {
	v.validateResultCount(inst, 1)
	if inst.Result() == nil || inst.LHS() == nil || inst.RHS() == nil {
		return
	}
	lhs, rhs, res := inst.LHS().Type(), inst.RHS().Type(), inst.Result().Type()

	switch {
	case inst.Op.IsComparison():
		if !IsBool(res) {
			v.addErrorInInstruction(inst, "comparison result is not a boolean")
		}
		if lhs != rhs {
			v.addErrorInInstruction(inst, fmt.Sprintf("operand types %v and %v do not match", lhs, rhs))
		}
	case inst.Op == BinaryShiftLeft || inst.Op == BinaryShiftRight:
		if lhs != res {
			v.addErrorInInstruction(inst, fmt.Sprintf("result type %v does not match operand type %v", res, lhs))
		}
		if !IsInteger(rhs) {
			v.addErrorInInstruction(inst, "shift amount is not an integer")
		}
	default:
		if lhs != res && rhs != res {
			v.addErrorInInstruction(inst, fmt.Sprintf("result type %v does not match operand types %v and %v", res, lhs, rhs))
		}
	}
}

func (v *Validator) validateUnary(inst *Unary) {
	v.validateResultCount(inst, 1)
	if inst.Result() == nil || inst.Val() == nil {
		return
	}
	if inst.Val().Type() != inst.Result().Type() {
		v.addErrorInInstruction(inst, "result type does not match operand type")
	}
	if inst.Op == UnaryNot && !IsBool(inst.Val().Type()) {
		v.addErrorInInstruction(inst, "not of a non-boolean value")
	}
}

func (v *Validator) validateSwizzle(inst *Swizzle) {
	vec, ok := typeOf(inst.Object()).(*VectorType)
	if !ok {
		v.addErrorInInstruction(inst, "swizzle of a non-vector value")
		return
	}
	if len(inst.Indices) == 0 || len(inst.Indices) > 4 {
		v.addErrorInInstruction(inst, fmt.Sprintf("invalid number of swizzle indices: %d", len(inst.Indices)))
	}
	for _, i := range inst.Indices {
		if i >= uint32(vec.Size) {
			v.addErrorInInstruction(inst, fmt.Sprintf("swizzle index %d out of bounds", i))
		}
	}
}

func (v *Validator) validateStore(inst *Store) {
	ptr, ok := typeOf(inst.To()).(*PointerType)
	if !ok {
		v.addErrorInInstruction(inst, "store destination is not a pointer")
		return
	}
	if ptr.Access == AccessRead {
		v.addErrorInInstruction(inst, "store to a read-only pointer")
	}
	if typeOf(inst.From()) != ptr.StoreType {
		v.addErrorInInstruction(inst, fmt.Sprintf("value type %v does not match store type %v", typeOf(inst.From()), ptr.StoreType))
	}
}

func (v *Validator) validateVar(inst *Var) {
	v.validateResultCount(inst, 1)
	ptr := inst.PointerType()
	if ptr == nil {
		v.addErrorInInstruction(inst, "var result is not a pointer")
		return
	}

	if v.context.function != nil {
		switch ptr.Space {
		case SpaceFunction:
		case SpacePrivate:
			if !v.caps.Has(AllowPrivateVarsInFunctions) {
				v.addErrorInInstruction(inst, "private var declared inside a function")
			}
		default:
			v.addErrorInInstruction(inst, fmt.Sprintf("%v var declared inside a function", ptr.Space))
		}
	}

	if ptr.Space == SpaceHandle && !IsHandle(ptr.StoreType) {
		v.addErrorInInstruction(inst, "handle var of a non-handle type")
	}

	if init := inst.Initializer(); init != nil {
		if init.Type() != ptr.StoreType {
			v.addErrorInInstruction(inst, fmt.Sprintf("initializer type %v does not match store type %v", init.Type(), ptr.StoreType))
		}
		if ptr.Space != SpaceFunction && ptr.Space != SpacePrivate {
			v.addErrorInInstruction(inst, fmt.Sprintf("%v var with an initializer", ptr.Space))
		}
	}
}

func (v *Validator) validateAccess(inst *Access) {
	v.validateResultCount(inst, 1)
	if inst.Object() == nil {
		return
	}
	if len(inst.Indices()) == 0 {
		v.addErrorInInstruction(inst, "access without indices")
	}
	for _, idx := range inst.Indices() {
		if !IsInteger(typeOf(idx)) {
			v.addErrorInInstruction(inst, "access index is not an integer")
		}
	}

	_, objPtr := inst.Object().Type().(*PointerType)
	_, resPtr := inst.Result().Type().(*PointerType)

	// A pointer member of a structure value.
	member := !objPtr && resPtr && v.caps.Has(AllowPointersAndHandlesInStructures)

	if objPtr != resPtr && !member {
		v.addErrorInInstruction(inst, "access result and object must both be pointers or both be values")
	}
}

func (v *Validator) validateUserCall(inst *UserCall) {
	v.validateResultCount(inst, 1)
	fn := inst.Target()
	if fn == nil {
		v.addErrorInInstruction(inst, "call target is not a function")
		return
	}
	if fn.IsEntryPoint() {
		v.addErrorInInstruction(inst, "call to an entry point")
	}

	args := inst.Args()
	if len(args) != len(fn.params) {
		v.addErrorInInstruction(inst, fmt.Sprintf("function has %d parameters, but call provides %d arguments", len(fn.params), len(args)))
		return
	}
	for i, a := range args {
		if typeOf(a) != fn.params[i].Type() {
			v.addErrorInInstruction(inst, fmt.Sprintf("argument %d type %v does not match parameter type %v", i, typeOf(a), fn.params[i].Type()))
		}
	}
	if r := inst.Result(); r != nil && r.Type() != fn.returnType {
		v.addErrorInInstruction(inst, "call result type does not match the function return type")
	}
}

func (v *Validator) validateReturn(inst *Return) {
	fn := v.context.function
	if fn == nil || inst.Func() != fn {
		v.addErrorInInstruction(inst, "return from a different function")
		return
	}

	frames := v.context.frames
	for i, f := range frames {
		// Loop frames nest. Only the innermost frame of a loop is current.
		if i+1 < len(frames) && frames[i+1].ctrl == f.ctrl {
			continue
		}
		if l, ok := f.ctrl.(*Loop); ok && (f.block == l.initializer || f.block == &l.continuing.Block) {
			v.addErrorInInstruction(inst, "return inside a loop initializer or continuing block")
			break
		}
	}

	_, void := fn.returnType.(*VoidType)
	switch {
	case void && inst.Value() != nil:
		v.addErrorInInstruction(inst, "unexpected return value")
	case !void && inst.Value() == nil:
		v.addErrorInInstruction(inst, "expected return value")
	case !void && inst.Value().Type() != fn.returnType:
		v.addErrorInInstruction(inst, fmt.Sprintf("return value type %v does not match function return type %v", inst.Value().Type(), fn.returnType))
	}
}

// frameOf returns the index of the frame for ctrl, or -1.
func (v *Validator) frameOf(ctrl ControlInstruction) int {
	for i := len(v.context.frames) - 1; i >= 0; i-- {
		if v.context.frames[i].ctrl == ctrl {
			return i
		}
	}
	return -1
}

// checkJumpOver reports an error if any control instruction between the
// innermost one and the frame at index target is not allowed by allowed.
func (v *Validator) checkJumpOver(inst Instruction, target int, allowed func(ControlInstruction) bool) {
	for i := len(v.context.frames) - 1; i > target; i-- {
		c := v.context.frames[i].ctrl
		if !allowed(c) {
			v.addErrorInInstruction(inst, fmt.Sprintf("%s jumps over %s", inst.FriendlyName(), v.names.controlName(c)))
			return
		}
	}
}

func (v *Validator) checkExitArgs(inst Instruction, ctrl ControlInstruction, args []Value) {
	rs := ctrl.Results()
	if len(args) != len(rs) {
		v.addErrorInInstruction(inst, fmt.Sprintf("%s has %d results, but exit provides %d values", v.names.controlName(ctrl), len(rs), len(args)))
		return
	}
	for i, a := range args {
		if a != nil && a.Type() != rs[i].Type() {
			v.addErrorInInstruction(inst, fmt.Sprintf("exit value %d type %v does not match result type %v", i, a.Type(), rs[i].Type()))
		}
	}
}

func (v *Validator) checkRegistered(inst Exit, ctrl ControlInstruction) {
	for _, e := range ctrl.Exits() {
		if e == inst {
			return
		}
	}
	v.addErrorInInstruction(inst, "exit is not registered with its control instruction")
}

func (v *Validator) validateExit(inst Exit) {
	ctrl := inst.ControlInstruction()
	if ctrl == nil {
		v.addErrorInInstruction(inst, "exit without a control instruction")
		return
	}
	v.checkRegistered(inst, ctrl)

	target := v.frameOf(ctrl)
	if target < 0 {
		v.addErrorInInstruction(inst, fmt.Sprintf("exit target %s is not an enclosing control instruction", v.names.controlName(ctrl)))
		return
	}

	switch inst.(type) {
	case *ExitIf:
		v.checkJumpOver(inst, target, func(ControlInstruction) bool { return false })
	case *ExitSwitch:
		v.checkJumpOver(inst, target, func(c ControlInstruction) bool {
			_, ok := c.(*If)
			return ok
		})
	case *ExitLoop:
		if l, ok := ctrl.(*Loop); ok && v.context.frames[target].block == &l.continuing.Block {
			v.addErrorInInstruction(inst, "loop exit jumps out of continuing block")
		}
		v.checkJumpOver(inst, target, func(c ControlInstruction) bool {
			_, ok := c.(*If)
			return ok
		})
	}

	v.checkExitArgs(inst, ctrl, inst.Args())
}

func (v *Validator) validateContinue(inst *Continue) {
	l := inst.Loop()
	if l == nil {
		v.addErrorInInstruction(inst, "continue without a loop")
		return
	}

	target := v.frameOf(l)
	if target < 0 {
		v.addErrorInInstruction(inst, "continue target is not an enclosing loop")
		return
	}
	if v.context.frames[target].block != &l.body.Block {
		v.addErrorInInstruction(inst, "continue outside of the loop body")
	}
	v.checkJumpOver(inst, target, func(c ControlInstruction) bool {
		_, isLoop := c.(*Loop)
		return !isLoop
	})

	v.checkInbound(inst, l.continuing)
	v.checkBranchArgs(inst, l.continuing.params, inst.Args())
}

func (v *Validator) validateNextIteration(inst *NextIteration) {
	l := inst.Loop()
	if l == nil {
		v.addErrorInInstruction(inst, "next_iteration without a loop")
		return
	}

	target := v.frameOf(l)
	if target != len(v.context.frames)-1 {
		v.addErrorInInstruction(inst, "next_iteration is not in its loop's initializer or continuing block")
		return
	}
	if b := v.context.frames[target].block; b != l.initializer && b != &l.continuing.Block {
		v.addErrorInInstruction(inst, "next_iteration is not in its loop's initializer or continuing block")
	}

	v.checkInbound(inst, l.body)
	v.checkBranchArgs(inst, l.body.params, inst.Args())
}

func (v *Validator) validateBreakIf(inst *BreakIf) {
	l := inst.Loop()
	if l == nil {
		v.addErrorInInstruction(inst, "break_if without a loop")
		return
	}
	v.checkRegistered(inst, l)

	target := v.frameOf(l)
	if target != len(v.context.frames)-1 || v.context.frames[target].block != &l.continuing.Block {
		v.addErrorInInstruction(inst, "break_if is not in its loop's continuing block")
	}
	if !IsBool(typeOf(inst.Condition())) {
		v.addErrorInInstruction(inst, "break_if condition is not a boolean")
	}

	v.checkInbound(inst, l.body)
	v.checkBranchArgs(inst, l.body.params, inst.NextIterValues())
	v.checkExitArgs(inst, l, inst.ExitValues())
}

func (v *Validator) checkInbound(inst Terminator, b *MultiInBlock) {
	for _, t := range b.inbound {
		if t == inst {
			return
		}
	}
	v.addErrorInInstruction(inst, fmt.Sprintf("branch is not an inbound sibling branch of %s", v.names.blockID(&b.Block)))
}

func (v *Validator) checkBranchArgs(inst Instruction, params []*BlockParam, args []Value) {
	if len(args) != len(params) {
		v.addErrorInInstruction(inst, fmt.Sprintf("target block has %d parameters, but branch provides %d values", len(params), len(args)))
		return
	}
	for i, a := range args {
		if a != nil && a.Type() != params[i].Type() {
			v.addErrorInInstruction(inst, fmt.Sprintf("value %d type %v does not match parameter type %v", i, a.Type(), params[i].Type()))
		}
	}
}

func (v *Validator) checkExitsRegistered(ctrl ControlInstruction) {
	for _, e := range ctrl.Exits() {
		if !e.Alive() {
			v.addErrorInInstruction(ctrl, "destroyed exit registered with control instruction")
		} else if e.ControlInstruction() != ctrl {
			v.addErrorInInstruction(ctrl, "registered exit targets another control instruction")
		}
	}
}

// validateNested validates a child block of ctrl.
func (v *Validator) validateNested(ctrl ControlInstruction, b *Block) {
	if b.Parent() != ctrl {
		v.addErrorInInstruction(ctrl, fmt.Sprintf("block %s has the wrong parent", v.names.blockID(b)))
	}

	v.context.frames = append(v.context.frames, controlFrame{ctrl: ctrl, block: b})
	v.validateBlock(b)
	v.context.frames = v.context.frames[:len(v.context.frames)-1]
}

func (v *Validator) validateIf(inst *If) {
	v.checkExitsRegistered(inst)
	if !IsBool(typeOf(inst.Condition())) || isVector(typeOf(inst.Condition())) {
		v.addErrorInInstruction(inst, "if condition is not a boolean")
	}

	v.validateNested(inst, inst.trueBlock)
	if inst.falseBlock.IsEmpty() && len(inst.results) == 0 {
		if inst.falseBlock.Parent() != inst {
			v.addErrorInInstruction(inst, "false block has the wrong parent")
		}
	} else {
		v.validateNested(inst, inst.falseBlock)
	}
}

func isVector(t Type) bool {
	_, ok := t.(*VectorType)
	return ok
}

func (v *Validator) validateLoop(inst *Loop) {
	v.checkExitsRegistered(inst)

	push := func(b *Block) {
		if b.Parent() != inst {
			v.addErrorInInstruction(inst, fmt.Sprintf("block %s has the wrong parent", v.names.blockID(b)))
		}
		v.context.frames = append(v.context.frames, controlFrame{ctrl: inst, block: b})
		v.pushScope()
	}
	pop := func() {
		v.popScope()
		v.context.frames = v.context.frames[:len(v.context.frames)-1]
	}

	// The initializer scope encloses the body, which encloses the
	// continuing block.
	push(inst.initializer)
	if !inst.initializer.IsEmpty() {
		v.validateBlockContents(inst.initializer)
	}
	{
		push(&inst.body.Block)
		v.validateBlockContents(&inst.body.Block)
		{
			push(&inst.continuing.Block)
			if !inst.continuing.IsEmpty() {
				v.validateBlockContents(&inst.continuing.Block)
			} else if len(inst.continuing.inbound) != 0 {
				v.addErrorInInstruction(inst, "continue to an empty continuing block")
			}
			pop()
		}
		pop()
	}
	pop()

	if inst.initializer.IsEmpty() && len(inst.body.params) != 0 {
		v.addErrorInInstruction(inst, "loop body has parameters but no initializer")
	}
}

func (v *Validator) validateSwitch(inst *Switch) {
	v.checkExitsRegistered(inst)

	cond := typeOf(inst.Condition())
	if _, ok := cond.(*ScalarType); !ok || !IsInteger(cond) {
		v.addErrorInInstruction(inst, "switch condition is not an integer scalar")
	}

	if len(inst.cases) == 0 {
		v.addErrorInInstruction(inst, "switch has no cases")
	}

	defaults := 0
	for _, c := range inst.cases {
		for _, sel := range c.Selectors {
			if sel.IsDefault() {
				defaults++
			} else if sel.Val.Type() != cond {
				v.addErrorInInstruction(inst, fmt.Sprintf("case selector type %v does not match condition type %v", sel.Val.Type(), cond))
			}
		}
		v.validateNested(inst, c.Block)
	}
	if defaults != 1 {
		v.addErrorInInstruction(inst, fmt.Sprintf("switch has %d default selectors, expected 1", defaults))
	}
}

func (v *Validator) instructionName(inst Instruction) string {
	if _, ok := inst.(ControlInstruction); ok {
		return v.names.controlName(inst.(ControlInstruction))
	}

	var b strings.Builder
	for i, r := range inst.Results() {
		if i != 0 {
			b.WriteString(", ")
		}
		if r == nil {
			b.WriteString("undef")
			continue
		}
		b.WriteString("%" + v.names.id(r) + ":" + typeName(r.Type()))
	}
	if b.Len() != 0 {
		b.WriteString(" = ")
	}
	b.WriteString(v.names.instructionText(inst))
	return b.String()
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message: msg,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:  msg,
		Function: v.context.functionName,
	})
}

func (v *Validator) addErrorInInstruction(inst Instruction, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:     msg,
		Function:    v.context.functionName,
		Instruction: v.instructionName(inst),
	})
}

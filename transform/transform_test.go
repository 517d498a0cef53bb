package transform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/tint/ir"
)

func str(m *ir.Module) string {
	return "\n" + ir.Disassemble(m)
}

func expectFunction(t *testing.T, m *ir.Module, fn *ir.Function, expect string) {
	t.Helper()

	if got := ir.DisassembleFunction(m, fn); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

// expectValid checks that the output of a pass validates with caps.
func expectValid(t *testing.T, m *ir.Module, caps ir.Capabilities) {
	t.Helper()

	errs, err := ir.Validate(m, caps)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("invalid output: %v\n%s", e, str(m))
	}
}

func runMergeReturn(t *testing.T, m *ir.Module) {
	t.Helper()

	if err := MergeReturn(m); err != nil {
		t.Fatalf("MergeReturn returned error: %v", err)
	}
	expectValid(t, m, 0)
}

func runModuleScopeVars(t *testing.T, m *ir.Module) {
	t.Helper()

	if err := ModuleScopeVars(m); err != nil {
		t.Fatalf("ModuleScopeVars returned error: %v", err)
	}
	expectValid(t, m, moduleScopeVarsResultCapabilities)
}

func runPolyfill(t *testing.T, m *ir.Module, cfg SignedIntegerPolyfillConfig) {
	t.Helper()

	if err := SignedIntegerPolyfill(m, cfg); err != nil {
		t.Fatalf("SignedIntegerPolyfill returned error: %v", err)
	}
	expectValid(t, m, 0)
}

func simpleModule() *ir.Module {
	m := ir.NewModule()
	b := ir.NewBuilder(m)

	fn := b.Function("f", m.Types.Void(), ir.StageNone)
	b.Append(fn.Block(), func() {
		b.Return(fn)
	})

	return m
}

func TestRun_Order(t *testing.T) {
	m := simpleModule()

	var order []string
	pass := func(name string) Pass {
		return Pass{
			Name: name,
			Run: func(*ir.Module) error {
				order = append(order, name)
				return nil
			},
		}
	}

	err := Run(context.Background(), m, []Pass{pass("a"), pass("b"), pass("c")}, Config{
		Validate:   true,
		DumpBefore: "*",
		DumpAfter:  "b",
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.Join(order, " ") != "a b c" {
		t.Errorf("Expected passes a b c, got %v", order)
	}
}

func TestRun_PassError(t *testing.T) {
	m := simpleModule()
	boom := errors.New("boom")

	ran := false
	passes := []Pass{
		{Name: "fails", Run: func(*ir.Module) error { return boom }},
		{Name: "after", Run: func(*ir.Module) error { ran = true; return nil }},
	}

	err := Run(context.Background(), m, passes, Config{})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped boom, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "fails: ") {
		t.Errorf("Expected error prefixed with the pass name, got %q", err.Error())
	}
	if ran {
		t.Error("Expected passes after a failure not to run")
	}
}

func TestRun_ValidateOutput(t *testing.T) {
	addOverride := Pass{
		Name: "add_override",
		Run: func(m *ir.Module) error {
			b := ir.NewBuilder(m)
			b.Append(m.Root(), func() {
				b.Override("o", m.Types.I32(), nil)
			})
			return nil
		},
	}

	err := Run(context.Background(), simpleModule(), []Pass{addOverride}, Config{Validate: true})

	var f *ir.Failure
	if !errors.As(err, &f) {
		t.Fatalf("Expected *ir.Failure, got %v", err)
	}
	if f.Pass != "add_override" {
		t.Errorf("Expected failure of add_override, got %q", f.Pass)
	}

	addOverride.Capabilities = ir.AllowOverrides
	if err := Run(context.Background(), simpleModule(), []Pass{addOverride}, Config{Validate: true}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Without validation the invalid output goes through.
	addOverride.Capabilities = 0
	if err := Run(context.Background(), simpleModule(), []Pass{addOverride}, Config{}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestRun_Passes(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	i32 := m.Types.I32()

	var v *ir.Var
	b.Append(m.Root(), func() {
		v = b.Var("v", m.Types.Ptr(ir.SpacePrivate, i32, ir.AccessReadWrite))
	})

	helper := b.Function("helper", i32, ir.StageNone)
	cond := b.FunctionParam("cond", m.Types.Bool())
	helper.SetParams(cond)
	b.Append(helper.Block(), func() {
		i := b.If(cond)
		b.Append(i.True(), func() {
			b.Return(helper, b.Negation(i32, b.Load(v.Result()).Result()).Result())
		})
		b.Return(helper, b.I32(0))
	})

	main := b.ComputeFunction("main", 1, 1, 1)
	b.Append(main.Block(), func() {
		r := b.Call(helper, b.Bool(true))
		b.Store(v.Result(), r.Result())
		b.Return(main)
	})

	passes := []Pass{
		SignedIntegerPolyfillPass(polyfillAll),
		MergeReturnPass(),
		ModuleScopeVarsPass(),
	}
	if err := Run(context.Background(), m, passes, Config{Validate: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !m.Root().IsEmpty() {
		t.Error("Expected module-scope vars to be removed")
	}
	if got := len(helper.Params()); got != 2 {
		t.Errorf("Expected helper to gain the module vars parameter, got %d params", got)
	}
	if rets := helper.Returns(); len(rets) != 1 || rets[0] != helper.Block().Terminator() {
		t.Errorf("Expected a single return ending the helper, got %d", len(rets))
	}

	helper.Block().Walk(func(inst ir.Instruction) bool {
		if u, ok := inst.(*ir.Unary); ok && u.Op == ir.UnaryNegation {
			t.Errorf("Expected signed negation to be polyfilled")
		}
		return true
	})
}

package tint

import (
	"context"
	"strings"
	"testing"

	"github.com/gogpu/tint/ir"
	"github.com/gogpu/tint/transform"
)

// buildShader builds a compute shader with a private counter, a helper with
// an early return and signed arithmetic.
func buildShader() *ir.Module {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	i32 := m.Types.I32()

	var counter *ir.Var
	b.Append(m.Root(), func() {
		counter = b.Var("counter", m.Types.Ptr(ir.SpacePrivate, i32, ir.AccessReadWrite))
		counter.SetInitializer(b.I32(0))
	})

	step := b.Function("step", i32, ir.StageNone)
	x := b.FunctionParam("x", i32)
	step.SetParams(x)
	b.Append(step.Block(), func() {
		neg := b.LessThan(x, b.I32(0))
		i := b.If(neg.Result())
		b.Append(i.True(), func() {
			b.Return(step, b.Negation(i32, x).Result())
		})
		c := b.Load(counter.Result())
		sum := b.Add(i32, c.Result(), x)
		b.Store(counter.Result(), sum.Result())
		b.Return(step, sum.Result())
	})

	main := b.ComputeFunction("main", 64, 1, 1)
	b.Append(main.Block(), func() {
		b.Call(step, b.I32(3))
		b.Return(main)
	})

	return m
}

func passNames(passes []transform.Pass) string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return strings.Join(names, " ")
}

func TestPipeline(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", DefaultOptions(), "signed_integer_polyfill merge_return module_scope_vars"},
		{"none", Options{}, ""},
		{"merge_return", Options{MergeReturn: true}, "merge_return"},
		{"polyfill", Options{SignedIntegerPolyfill: transform.SignedIntegerPolyfillConfig{SignedShiftLeft: true}}, "signed_integer_polyfill"},
		{"vars", Options{MergeReturn: true, ModuleScopeVars: true}, "merge_return module_scope_vars"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passNames(Pipeline(tt.opts)); got != tt.want {
				t.Errorf("Expected passes %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	m := buildShader()

	if err := Transform(context.Background(), m, DefaultOptions()); err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	if !m.Root().IsEmpty() {
		t.Error("Expected module-scope vars to be removed")
	}

	for _, fn := range m.Functions() {
		rets := fn.Returns()
		if len(rets) != 1 || rets[0] != fn.Block().Terminator() {
			t.Errorf("%s: expected a single return ending the body", m.NameOf(fn))
		}
	}

	errs, err := ir.Validate(m, ir.AllCapabilities)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("invalid output: %v", e)
	}

	out := ir.Disassemble(m)
	if strings.Contains(out, "negation") {
		t.Errorf("Expected signed negation to be polyfilled:\n%s", out)
	}

	main := m.EntryPoints()[0]
	if ep := ir.DisassembleFunction(m, main); !strings.Contains(ep, "%tint_module_vars:tint_module_vars_struct = construct %counter") {
		t.Errorf("Expected the entry point to construct the module vars:\n%s", ep)
	}
}

func TestTransform_NilModule(t *testing.T) {
	if err := Transform(context.Background(), nil, DefaultOptions()); err == nil {
		t.Error("Expected error for nil module, got nil")
	}
}

func TestTransform_InvalidModule(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	b.Function("f", m.Types.Void(), ir.StageNone)

	err := Transform(context.Background(), m, DefaultOptions())
	if err == nil {
		t.Fatal("Expected error for an unterminated function")
	}
	if !strings.Contains(err.Error(), "does not end in a terminator") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestTransformAll(t *testing.T) {
	modules := make([]*ir.Module, 8)
	for i := range modules {
		modules[i] = buildShader()
	}

	if err := TransformAll(context.Background(), modules, DefaultOptions()); err != nil {
		t.Fatalf("TransformAll returned error: %v", err)
	}

	want := ir.Disassemble(modules[0])
	for i, m := range modules[1:] {
		if got := ir.Disassemble(m); got != want {
			t.Errorf("module %d: output differs from module 0:\n%s", i+1, got)
		}
	}
}

func TestTransformAll_Error(t *testing.T) {
	bad := ir.NewModule()
	ir.NewBuilder(bad).Function("f", bad.Types.Void(), ir.StageNone)

	modules := []*ir.Module{buildShader(), bad, buildShader()}

	err := TransformAll(context.Background(), modules, DefaultOptions())
	if err == nil {
		t.Fatal("Expected error for the invalid module")
	}
	if !strings.HasPrefix(err.Error(), "module 1: ") {
		t.Errorf("Expected error naming module 1, got %q", err.Error())
	}
}

package transform

import (
	"testing"

	"github.com/gogpu/tint/ir"
)

var polyfillAll = SignedIntegerPolyfillConfig{
	SignedNegation:   true,
	SignedArithmetic: true,
	SignedShiftLeft:  true,
}

func TestSignedIntegerPolyfill_ArithmeticAndNegation(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	i32 := m.Types.I32()

	fn := b.Function("f", i32, ir.StageNone)
	pa := b.FunctionParam("a", i32)
	pb := b.FunctionParam("b", i32)
	fn.SetParams(pa, pb)
	b.Append(fn.Block(), func() {
		sum := b.Add(i32, pa, pb)
		m.SetName(sum.Result(), "sum")
		neg := b.Negation(i32, sum.Result())
		b.Return(fn, neg.Result())
	})

	runPolyfill(t, m, polyfillAll)

	expect := `
%f = func(%a:i32, %b:i32):i32 {
  $B1: {
    %4:u32 = bitcast %a
    %5:u32 = bitcast %b
    %6:u32 = add %4, %5
    %sum:i32 = bitcast %6
    %8:u32 = bitcast %sum
    %9:u32 = complement %8
    %10:u32 = add %9, 1u
    %11:i32 = bitcast %10
    ret %11
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestSignedIntegerPolyfill_ShiftLeft(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	i32 := m.Types.I32()

	fn := b.Function("f", i32, ir.StageNone)
	x := b.FunctionParam("x", i32)
	n := b.FunctionParam("n", m.Types.U32())
	fn.SetParams(x, n)
	b.Append(fn.Block(), func() {
		shl := b.ShiftLeft(i32, x, n)
		b.Return(fn, shl.Result())
	})

	runPolyfill(t, m, polyfillAll)

	expect := `
%f = func(%x:i32, %n:u32):i32 {
  $B1: {
    %4:u32 = bitcast %x
    %5:u32 = shl %4, %n
    %6:i32 = bitcast %5
    ret %6
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestSignedIntegerPolyfill_Vector(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	vec2i := m.Types.Vec(ir.Vec2, m.Types.I32())

	fn := b.Function("f", vec2i, ir.StageNone)
	v := b.FunctionParam("v", vec2i)
	fn.SetParams(v)
	b.Append(fn.Block(), func() {
		mul := b.Multiply(vec2i, v, b.Splat(vec2i, b.I32(3)))
		b.Return(fn, mul.Result())
	})

	runPolyfill(t, m, polyfillAll)

	expect := `
%f = func(%v:vec2<i32>):vec2<i32> {
  $B1: {
    %3:vec2<u32> = bitcast %v
    %4:vec2<u32> = bitcast vec2<i32>(3i, 3i)
    %5:vec2<u32> = mul %3, %4
    %6:vec2<i32> = bitcast %5
    ret %6
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestSignedIntegerPolyfill_Config(t *testing.T) {
	tests := []struct {
		name string
		cfg  SignedIntegerPolyfillConfig
		ops  []string
	}{
		{"none", SignedIntegerPolyfillConfig{}, []string{"sub", "negation", "shl", "return"}},
		{"negation", SignedIntegerPolyfillConfig{SignedNegation: true},
			[]string{"sub", "bitcast", "complement", "add", "bitcast", "shl", "return"}},
		{"arithmetic", SignedIntegerPolyfillConfig{SignedArithmetic: true},
			[]string{"bitcast", "bitcast", "sub", "bitcast", "negation", "shl", "return"}},
		{"shift", SignedIntegerPolyfillConfig{SignedShiftLeft: true},
			[]string{"sub", "negation", "bitcast", "shl", "bitcast", "return"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule()
			b := ir.NewBuilder(m)
			i32 := m.Types.I32()

			fn := b.Function("f", i32, ir.StageNone)
			x := b.FunctionParam("x", i32)
			fn.SetParams(x)
			b.Append(fn.Block(), func() {
				sub := b.Subtract(i32, x, b.I32(1))
				neg := b.Negation(i32, sub.Result())
				shl := b.ShiftLeft(i32, neg.Result(), b.U32(2))
				b.Return(fn, shl.Result())
			})

			runPolyfill(t, m, tt.cfg)

			var got []string
			for inst := fn.Block().Front(); inst != nil; inst = inst.Next() {
				got = append(got, inst.FriendlyName())
			}
			if len(got) != len(tt.ops) {
				t.Fatalf("Expected %v, got %v", tt.ops, got)
			}
			for i := range got {
				if got[i] != tt.ops[i] {
					t.Errorf("Expected %v, got %v", tt.ops, got)
					break
				}
			}
		})
	}
}

func TestSignedIntegerPolyfill_UnsignedUntouched(t *testing.T) {
	m := ir.NewModule()
	b := ir.NewBuilder(m)
	u32 := m.Types.U32()
	f32 := m.Types.F32()

	fn := b.Function("f", m.Types.Void(), ir.StageNone)
	b.Append(fn.Block(), func() {
		b.Add(u32, b.U32(1), b.U32(2))
		b.Negation(f32, b.F32(1))
		b.Return(fn)
	})

	before := str(m)
	runPolyfill(t, m, polyfillAll)

	if got := str(m); got != before {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, before)
	}
}

package ir

import (
	"testing"
)

func str(m *Module) string {
	return "\n" + Disassemble(m)
}

func TestDisassemble_If(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()

	fn := b.Function("foo", i32, StageNone)
	p := b.FunctionParam("", i32)
	cond := b.FunctionParam("cond", m.Types.Bool())
	fn.SetParams(p, cond)

	b.Append(fn.Block(), func() {
		i := b.If(cond)
		i.SetResults(b.Result(i32))
		b.Append(i.True(), func() {
			add := b.Add(i32, p, b.I32(1))
			b.ExitIf(i, add.Result())
		})
		b.Append(i.False(), func() {
			b.ExitIf(i, b.I32(2))
		})
		b.Return(fn, i.Result())
	})

	expect := `
%foo = func(%2:i32, %cond:bool):i32 {
  $B1: {
    %4:i32 = if %cond [t: $B2, f: $B3] {  # if_1
      $B2: {  # true
        %5:i32 = add %2, 1i
        exit_if %5  # if_1
      }
      $B3: {  # false
        exit_if 2i  # if_1
      }
    }
    ret %4
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestDisassemble_LoopSwitchRoot(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()

	var v *Var
	b.Append(m.Root(), func() {
		v = b.Var("v", m.Types.Ptr(SpacePrivate, i32, AccessReadWrite))
		v.SetInitializer(b.I32(0))
	})

	fn := b.ComputeFunction("main", 1, 1, 1)
	b.Append(fn.Block(), func() {
		loop := b.Loop()
		b.Append(loop.Initializer(), func() {
			b.NextIteration(loop)
		})
		b.Append(&loop.Body().Block, func() {
			x := b.Load(v.Result())
			sw := b.Switch(x.Result())
			b.Append(b.Case(sw, b.I32(1), b.I32(2)), func() {
				b.ExitSwitch(sw)
			})
			b.Append(b.DefaultCase(sw), func() {
				b.ExitLoop(loop)
			})
			b.Continue(loop)
		})
		b.Append(&loop.Continuing().Block, func() {
			b.BreakIf(loop, b.Bool(true), nil, nil)
		})
		b.Return(fn)
	})

	expect := `
$B1: {  # root
  %v:ptr<private, i32, read_write> = var 0i
}

%main = @compute @workgroup_size(1, 1, 1) func():void {
  $B2: {
    loop [i: $B3, b: $B4, c: $B5] {  # loop_1
      $B3: {  # initializer
        next_iteration  # loop_1
      }
      $B4: {  # body
        %3:i32 = load %v
        switch %3 [c: (1i 2i, $B6), c: (default, $B7)] {  # switch_1
          $B6: {  # case
            exit_switch  # switch_1
          }
          $B7: {  # case
            exit_loop  # loop_1
          }
        }
        continue  # loop_1
      }
      $B5: {  # continuing
        break_if true  # loop_1
      }
    }
    ret
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestDisassemble_LoopBlockParams(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()

	fn := b.Function("count", i32, StageNone)
	b.Append(fn.Block(), func() {
		loop := b.Loop()
		loop.SetResults(b.Result(i32))

		i := b.BlockParam("i", i32)
		loop.Body().SetParams(i)

		b.Append(loop.Initializer(), func() {
			b.NextIteration(loop, b.I32(0))
		})
		b.Append(&loop.Body().Block, func() {
			b.Continue(loop)
		})
		b.Append(&loop.Continuing().Block, func() {
			next := b.Add(i32, i, b.I32(1))
			done := b.LessThan(next.Result(), b.I32(10))
			b.BreakIf(loop, done.Result(), []Value{next.Result()}, []Value{i})
		})
		b.Return(fn, loop.Result())
	})

	expect := `
%count = func():i32 {
  $B1: {
    %2:i32 = loop [i: $B2, b: $B3, c: $B4] {  # loop_1
      $B2: {  # initializer
        next_iteration 0i  # loop_1
      }
      $B3 (%i:i32): {  # body
        continue  # loop_1
      }
      $B4: {  # continuing
        %4:i32 = add %i, 1i
        %5:bool = lt %4, 10i
        break_if %5 next_iteration: [ %4 ] exit_loop: [ %i ]  # loop_1
      }
    }
    ret %2
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestDisassemble_NameCollision(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)

	fn := b.Function("f", m.Types.Void(), StageNone)
	b.Append(fn.Block(), func() {
		b.Let("x", b.I32(1))
		b.Let("x", b.I32(2))
		b.Return(fn)
	})

	expect := `
%f = func():void {
  $B1: {
    %x:i32 = let 1i
    %x_1:i32 = let 2i  # %x_1: 'x'
    ret
  }
}
`
	if got := str(m); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestDisassemble_Attributes(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	vec4f := m.Types.Vec(Vec4, m.Types.F32())

	fn := b.Function("frag", vec4f, StageFragment)
	pos := b.FunctionParam("pos", vec4f)
	pos.Attributes.Builtin = BuiltinPosition
	pos.Attributes.Invariant = true
	fn.SetParams(pos)

	loc := uint32(0)
	fn.ReturnAttributes.Location = &loc

	b.Append(fn.Block(), func() {
		s := b.Swizzle(m.Types.Vec(Vec2, m.Types.F32()), pos, 0, 1)
		b.Let("xy", s.Result())
		b.Return(fn, pos)
	})

	expect := `%frag = @fragment func(%pos:vec4<f32> [@builtin(position), @invariant]):vec4<f32> [@location(0)] {
  $B1: {
    %3:vec2<f32> = swizzle %pos, xy
    %xy:vec2<f32> = let %3
    ret %pos
  }
}
`
	if got := DisassembleFunction(m, fn); got != expect {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", got, expect)
	}
}

func TestDisassemble_Constants(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	types := m.Types

	tests := []struct {
		c    *Constant
		want string
	}{
		{b.I32(1), "1i"},
		{b.I32(-3), "-3i"},
		{b.U32(2), "2u"},
		{b.F32(1.5), "1.5f"},
		{b.F32(1), "1.0f"},
		{b.F32(0), "0.0f"},
		{b.Bool(true), "true"},
		{b.Bool(false), "false"},
		{b.Composite(types.Vec(Vec2, types.I32()), b.I32(1), b.I32(2)), "vec2<i32>(1i, 2i)"},
		{b.Splat(types.Vec(Vec3, types.U32()), b.U32(7)), "vec3<u32>(7u, 7u, 7u)"},
		{b.Zero(types.Vec(Vec2, types.F32())), "vec2<f32>(0.0f, 0.0f)"},
	}

	for _, tt := range tests {
		if got := constantText(tt.c); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestDisassemble_EmptyModule(t *testing.T) {
	if got := Disassemble(NewModule()); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}

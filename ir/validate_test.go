package ir

import (
	"errors"
	"strings"
	"testing"
)

func expectValid(t *testing.T, m *Module, caps Capabilities) {
	t.Helper()

	errs, err := Validate(m, caps)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		t.Errorf("unexpected validation error: %v", e)
	}
}

func expectInvalid(t *testing.T, m *Module, caps Capabilities, contains string) {
	t.Helper()

	errs, err := Validate(m, caps)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errs {
		if strings.Contains(e.Error(), contains) {
			return
		}
	}
	t.Errorf("Expected validation error containing %q, got %v", contains, errs)
}

func TestValidate_ValidModule(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()

	fn := b.Function("foo", i32, StageNone)
	cond := b.FunctionParam("cond", m.Types.Bool())
	fn.SetParams(cond)

	b.Append(fn.Block(), func() {
		v := b.Var("v", m.Types.Ptr(SpaceFunction, i32, AccessReadWrite))
		v.SetInitializer(b.I32(0))

		i := b.If(cond)
		i.SetResults(b.Result(i32))
		b.Append(i.True(), func() {
			b.Store(v.Result(), b.I32(1))
			b.ExitIf(i, b.I32(1))
		})
		b.Append(i.False(), func() {
			b.ExitIf(i, b.I32(2))
		})

		loop := b.Loop()
		b.Append(&loop.Body().Block, func() {
			x := b.Load(v.Result())
			sw := b.Switch(x.Result())
			b.Append(b.Case(sw, b.I32(1)), func() {
				b.ExitSwitch(sw)
			})
			b.Append(b.DefaultCase(sw), func() {
				b.ExitSwitch(sw)
			})
			done := b.If(cond)
			b.Append(done.True(), func() {
				b.ExitLoop(loop)
			})
			b.Continue(loop)
		})
		b.Append(&loop.Continuing().Block, func() {
			b.BreakIf(loop, cond, nil, nil)
		})

		sum := b.Add(i32, i.Result(), b.Load(v.Result()).Result())
		b.Return(fn, sum.Result())
	})

	expectValid(t, m, 0)
}

func TestValidate_NilModule(t *testing.T) {
	_, err := Validate(nil, 0)
	if err == nil {
		t.Error("Expected error for nil module, got nil")
	}
}

func TestValidate_Sealing(t *testing.T) {
	t.Run("unterminated", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			b.Discard()
		})

		expectInvalid(t, m, 0, "does not end in a terminator")
	})

	t.Run("terminator in the middle", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			b.Return(fn)
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "terminator which isn't the final instruction")
	})

	t.Run("empty if true block", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			b.If(b.Bool(true))
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "does not end in a terminator")
	})
}

func TestValidate_Capabilities(t *testing.T) {
	tests := []struct {
		name  string
		cap   Capabilities
		build func(m *Module, b *Builder)
		err   string
	}{
		{
			name: "private var in function",
			cap:  AllowPrivateVarsInFunctions,
			build: func(m *Module, b *Builder) {
				fn := b.Function("f", m.Types.Void(), StageNone)
				b.Append(fn.Block(), func() {
					b.Var("p", m.Types.Ptr(SpacePrivate, m.Types.I32(), AccessReadWrite))
					b.Return(fn)
				})
			},
			err: "private var declared inside a function",
		},
		{
			name: "override",
			cap:  AllowOverrides,
			build: func(m *Module, b *Builder) {
				b.Append(m.Root(), func() {
					b.Override("o", m.Types.I32(), b.I32(1))
				})
			},
			err: "overrides are not allowed",
		},
		{
			name: "unused value",
			cap:  AllowUnusedValues,
			build: func(m *Module, b *Builder) {
				i32 := m.Types.I32()
				s := m.Types.Struct("S",
					StructMember{Name: "a", Type: i32},
					StructMember{Name: "b", Type: i32},
				)
				fn := b.Function("f", m.Types.Void(), StageNone)
				b.Append(fn.Block(), func() {
					b.Construct(s, b.I32(1), b.Unused(i32))
					b.Return(fn)
				})
			},
			err: "unused values are not allowed",
		},
		{
			name: "pointer in structure",
			cap:  AllowPointersAndHandlesInStructures,
			build: func(m *Module, b *Builder) {
				m.Types.Struct("P", StructMember{
					Name: "p",
					Type: m.Types.Ptr(SpacePrivate, m.Types.I32(), AccessReadWrite),
				})
			},
			err: "types are not allowed in structures",
		},
		{
			name: "handle in structure",
			cap:  AllowPointersAndHandlesInStructures,
			build: func(m *Module, b *Builder) {
				m.Types.Struct("H", StructMember{Name: "t", Type: m.Types.SampledTexture(Dim2D, m.Types.F32())})
			},
			err: "types are not allowed in structures",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule()
			tt.build(m, NewBuilder(m))

			expectInvalid(t, m, 0, tt.err)
			expectInvalid(t, m, AllCapabilities&^tt.cap, tt.err)
			expectValid(t, m, tt.cap)
		})
	}
}

func TestValidate_ExitJumpOver(t *testing.T) {
	t.Run("exit_if over loop", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			i := b.If(b.Bool(true))
			b.Append(i.True(), func() {
				loop := b.Loop()
				b.Append(&loop.Body().Block, func() {
					b.ExitIf(i)
				})
				b.ExitIf(i)
			})
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "exit_if jumps over loop_1")
	})

	t.Run("exit_loop over if", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			loop := b.Loop()
			b.Append(&loop.Body().Block, func() {
				i := b.If(b.Bool(true))
				b.Append(i.True(), func() {
					b.ExitLoop(loop)
				})
				b.Continue(loop)
			})
			b.Append(&loop.Continuing().Block, func() {
				b.NextIteration(loop)
			})
			b.Return(fn)
		})

		expectValid(t, m, 0)
	})

	t.Run("exit_switch over loop", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			sw := b.Switch(b.I32(0))
			b.Append(b.DefaultCase(sw), func() {
				loop := b.Loop()
				b.Append(&loop.Body().Block, func() {
					b.ExitSwitch(sw)
				})
				b.ExitSwitch(sw)
			})
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "exit_switch jumps over loop_1")
	})

	t.Run("exit_loop from continuing", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			loop := b.Loop()
			b.Append(&loop.Body().Block, func() {
				b.Continue(loop)
			})
			b.Append(&loop.Continuing().Block, func() {
				b.ExitLoop(loop)
			})
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "loop exit jumps out of continuing block")
	})
}

func TestValidate_ReturnInLoop(t *testing.T) {
	tests := []struct {
		name   string
		build  func(b *Builder, fn *Function, l *Loop)
		expect string // empty if valid
	}{
		{
			name: "body",
			build: func(b *Builder, fn *Function, l *Loop) {
				b.Append(l.Initializer(), func() {
					b.NextIteration(l)
				})
				b.Append(&l.Body().Block, func() {
					b.Return(fn)
				})
			},
		},
		{
			name: "if in body",
			build: func(b *Builder, fn *Function, l *Loop) {
				b.Append(l.Initializer(), func() {
					b.NextIteration(l)
				})
				b.Append(&l.Body().Block, func() {
					i := b.If(b.Bool(true))
					b.Append(i.True(), func() {
						b.Return(fn)
					})
					b.Continue(l)
				})
				b.Append(&l.Continuing().Block, func() {
					b.NextIteration(l)
				})
			},
		},
		{
			name: "nested loop body",
			build: func(b *Builder, fn *Function, l *Loop) {
				b.Append(&l.Body().Block, func() {
					inner := b.Loop()
					b.Append(&inner.Body().Block, func() {
						b.Return(fn)
					})
					b.Unreachable()
				})
			},
		},
		{
			name: "initializer",
			build: func(b *Builder, fn *Function, l *Loop) {
				b.Append(l.Initializer(), func() {
					b.Return(fn)
				})
				b.Append(&l.Body().Block, func() {
					b.Return(fn)
				})
			},
			expect: "return inside a loop initializer or continuing block",
		},
		{
			name: "continuing",
			build: func(b *Builder, fn *Function, l *Loop) {
				b.Append(&l.Body().Block, func() {
					b.Continue(l)
				})
				b.Append(&l.Continuing().Block, func() {
					b.Return(fn)
				})
			},
			expect: "return inside a loop initializer or continuing block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModule()
			b := NewBuilder(m)
			fn := b.Function("f", m.Types.Void(), StageNone)
			b.Append(fn.Block(), func() {
				tt.build(b, fn, b.Loop())
				b.Return(fn)
			})

			if tt.expect == "" {
				expectValid(t, m, 0)
			} else {
				expectInvalid(t, m, 0, tt.expect)
			}
		})
	}
}

func TestValidate_Operands(t *testing.T) {
	t.Run("destroyed operand", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		i32 := m.Types.I32()
		fn := b.Function("f", m.Types.Void(), StageNone)

		var add *Binary
		b.Append(fn.Block(), func() {
			add = b.Add(i32, b.I32(1), b.I32(2))
			b.Negation(i32, add.Result())
			b.Return(fn)
		})
		add.Destroy()

		expectInvalid(t, m, 0, "operand 0 is destroyed")
	})

	t.Run("undef operand", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		i32 := m.Types.I32()
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			b.Add(i32, b.I32(1), nil)
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "operand 1 is undef")
	})

	t.Run("not in scope", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		i32 := m.Types.I32()
		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			i := b.If(b.Bool(true))
			var inner *Binary
			b.Append(i.True(), func() {
				inner = b.Add(i32, b.I32(1), b.I32(2))
				b.ExitIf(i)
			})
			b.Negation(i32, inner.Result())
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "operand 0 is not in scope")
	})

	t.Run("parameter of another function", func(t *testing.T) {
		m := NewModule()
		b := NewBuilder(m)
		i32 := m.Types.I32()

		g := b.Function("g", m.Types.Void(), StageNone)
		p := b.FunctionParam("p", i32)
		g.SetParams(p)
		b.Append(g.Block(), func() {
			b.Return(g)
		})

		fn := b.Function("f", m.Types.Void(), StageNone)
		b.Append(fn.Block(), func() {
			b.Negation(i32, p)
			b.Return(fn)
		})

		expectInvalid(t, m, 0, "operand 0 is a parameter of another function")
	})
}

func TestValidate_Types(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()
	fn := b.Function("f", i32, StageNone)
	b.Append(fn.Block(), func() {
		b.Binary(BinaryAdd, m.Types.F32(), b.I32(1), b.I32(2))
		b.Return(fn, b.U32(1))
	})

	expectInvalid(t, m, 0, "result type f32 does not match operand types i32 and i32")
	expectInvalid(t, m, 0, "return value type u32 does not match function return type i32")
}

func TestValidate_Switch(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	fn := b.Function("f", m.Types.Void(), StageNone)
	b.Append(fn.Block(), func() {
		sw := b.Switch(b.I32(0))
		b.Append(b.Case(sw, b.I32(1)), func() {
			b.ExitSwitch(sw)
		})
		b.Return(fn)
	})

	expectInvalid(t, m, 0, "switch has 0 default selectors, expected 1")
}

func TestValidate_Calls(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	i32 := m.Types.I32()

	g := b.Function("g", m.Types.Void(), StageNone)
	g.SetParams(b.FunctionParam("p", i32))
	b.Append(g.Block(), func() {
		b.Return(g)
	})

	ep := b.ComputeFunction("main", 1, 1, 1)
	b.Append(ep.Block(), func() {
		b.Return(ep)
	})

	fn := b.Function("f", m.Types.Void(), StageNone)
	b.Append(fn.Block(), func() {
		b.Call(g)
		b.Call(ep)
		b.Return(fn)
	})

	expectInvalid(t, m, 0, "function has 1 parameters, but call provides 0 arguments")
	expectInvalid(t, m, 0, "call to an entry point")
}

func TestValidateAndDumpIfNeeded(t *testing.T) {
	m := NewModule()
	b := NewBuilder(m)
	b.Append(m.Root(), func() {
		b.Override("o", m.Types.I32(), nil)
	})

	err := ValidateAndDumpIfNeeded(m, "some_pass", 0)
	if err == nil {
		t.Fatal("Expected validation failure")
	}

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("Expected *Failure, got %T", err)
	}
	if f.Pass != "some_pass" {
		t.Errorf("Expected pass some_pass, got %q", f.Pass)
	}
	if !strings.HasPrefix(err.Error(), "some_pass: IR validation failed:\n  ") {
		t.Errorf("Unexpected error text %q", err.Error())
	}

	if err := ValidateAndDumpIfNeeded(m, "some_pass", AllowOverrides); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ValidationError
		want string
	}{
		{
			name: "simple message",
			err:  ValidationError{Message: "test error"},
			want: "test error",
		},
		{
			name: "with function",
			err:  ValidationError{Message: "test error", Function: "main"},
			want: "in function main: test error",
		},
		{
			name: "with instruction",
			err:  ValidationError{Message: "test error", Function: "main", Instruction: "%2:i32 = add 1i, 2i"},
			want: "in function main, instruction '%2:i32 = add 1i, 2i': test error",
		},
		{
			name: "root instruction",
			err:  ValidationError{Message: "test error", Instruction: "%o:i32 = override"},
			want: "instruction '%o:i32 = override': test error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

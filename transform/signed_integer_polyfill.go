package transform

import (
	"github.com/gogpu/tint/ir"
)

const signedIntegerPolyfillName = "signed_integer_polyfill"

const signedIntegerPolyfillCapabilities = ir.AllowOverrides

// SignedIntegerPolyfillConfig selects the signed integer operations to
// rewrite.
type SignedIntegerPolyfillConfig struct {
	// SignedNegation rewrites negation of signed integers.
	SignedNegation bool
	// SignedArithmetic rewrites add, subtract and multiply of signed integers.
	SignedArithmetic bool
	// SignedShiftLeft rewrites shift left of signed integers.
	SignedShiftLeft bool
}

// SignedIntegerPolyfill rewrites signed integer operations selected by cfg
// into the equivalent operations on unsigned integers, so they wrap on
// overflow instead of having undefined behavior.
func SignedIntegerPolyfill(m *ir.Module, cfg SignedIntegerPolyfillConfig) error {
	if err := ir.ValidateAndDumpIfNeeded(m, signedIntegerPolyfillName, signedIntegerPolyfillCapabilities); err != nil {
		return err
	}

	var worklist []ir.Instruction
	for _, fn := range m.Functions() {
		fn.Block().Walk(func(inst ir.Instruction) bool {
			switch inst := inst.(type) {
			case *ir.Unary:
				if cfg.SignedNegation && inst.Op == ir.UnaryNegation && ir.IsSignedInteger(inst.Result().Type()) {
					worklist = append(worklist, inst)
				}
			case *ir.Binary:
				if !ir.IsSignedInteger(inst.Result().Type()) {
					break
				}
				switch inst.Op {
				case ir.BinaryAdd, ir.BinarySubtract, ir.BinaryMultiply:
					if cfg.SignedArithmetic {
						worklist = append(worklist, inst)
					}
				case ir.BinaryShiftLeft:
					if cfg.SignedShiftLeft {
						worklist = append(worklist, inst)
					}
				}
			}
			return true
		})
	}

	p := signedIntegerPolyfill{m: m, b: ir.NewBuilder(m)}

	for _, inst := range worklist {
		var repl ir.Value
		p.b.InsertBefore(inst, func() {
			switch inst := inst.(type) {
			case *ir.Unary:
				repl = p.negation(inst)
			case *ir.Binary:
				repl = p.binary(inst)
			}
		})

		res := inst.Result()
		res.ReplaceAllUsesWith(repl)
		if name := m.NameOf(res); name != "" {
			m.SetName(repl, name)
			m.SetName(res, "")
		}

		inst.Destroy()
	}

	return nil
}

type signedIntegerPolyfill struct {
	m *ir.Module
	b *ir.Builder
}

// negation computes -x as bitcast(~bitcast<u>(x) + 1).
func (p signedIntegerPolyfill) negation(inst *ir.Unary) ir.Value {
	t := inst.Result().Type()
	ut := p.m.Types.UnsignedOf(t)

	x := p.b.Bitcast(ut, inst.Val())
	c := p.b.Complement(ut, x.Result())
	a := p.b.Add(ut, c.Result(), p.b.One(ut))

	return p.b.Bitcast(t, a.Result()).Result()
}

func (p signedIntegerPolyfill) binary(inst *ir.Binary) ir.Value {
	t := inst.Result().Type()
	ut := p.m.Types.UnsignedOf(t)

	lhs := p.b.Bitcast(p.m.Types.UnsignedOf(inst.LHS().Type()), inst.LHS()).Result()

	var rhs ir.Value = inst.RHS()
	if inst.Op != ir.BinaryShiftLeft {
		rhs = p.b.Bitcast(p.m.Types.UnsignedOf(rhs.Type()), rhs).Result()
	}

	r := p.b.Binary(inst.Op, ut, lhs, rhs)

	return p.b.Bitcast(t, r.Result()).Result()
}

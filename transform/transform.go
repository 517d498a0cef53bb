// Package transform implements rewrites of the IR.
//
// Every transform validates its input with the capabilities it accepts
// before it mutates anything, so a transform either rewrites the module
// completely or leaves it untouched and returns the validation failure.
package transform

import (
	"context"

	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"

	"github.com/gogpu/tint/ir"
)

// Pass describes a single transform in a pipeline.
type Pass struct {
	Name string

	// Capabilities are needed to validate the output of the pass.
	Capabilities ir.Capabilities

	Run func(m *ir.Module) error
}

// Config controls pass execution behavior.
type Config struct {
	Validate   bool   // validate the module after each pass
	DumpBefore string // dump IR before this pass ("*" for all)
	DumpAfter  string // dump IR after this pass ("*" for all)
}

// Run executes the given passes on m in order. It stops at the first pass
// that fails.
func Run(ctx context.Context, m *ir.Module, passes []Pass, cfg Config) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "transform", "passes", len(passes))
	defer tr.Finish("err", &err)

	for _, p := range passes {
		if shouldDump(cfg.DumpBefore, p.Name) {
			tr.Printw("before pass", "pass", p.Name, "ir", ir.Disassemble(m))
		}

		if err := p.Run(m); err != nil {
			return errors.Wrap(err, "%v", p.Name)
		}

		if cfg.Validate {
			errs, err := ir.Validate(m, p.Capabilities)
			if err != nil {
				return errors.Wrap(err, "validate after %v", p.Name)
			}
			if len(errs) != 0 {
				return errors.Wrap(&ir.Failure{Pass: p.Name, Errors: errs}, "validate after %v", p.Name)
			}
		}

		if shouldDump(cfg.DumpAfter, p.Name) {
			tr.Printw("after pass", "pass", p.Name, "ir", ir.Disassemble(m))
		}

		tr.Printw("pass done", "pass", p.Name)
	}

	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

// MergeReturnPass returns the pass running MergeReturn.
func MergeReturnPass() Pass {
	return Pass{
		Name:         mergeReturnName,
		Capabilities: mergeReturnCapabilities,
		Run:          MergeReturn,
	}
}

// ModuleScopeVarsPass returns the pass running ModuleScopeVars.
func ModuleScopeVarsPass() Pass {
	return Pass{
		Name:         moduleScopeVarsName,
		Capabilities: moduleScopeVarsResultCapabilities,
		Run:          ModuleScopeVars,
	}
}

// SignedIntegerPolyfillPass returns the pass running SignedIntegerPolyfill
// with cfg.
func SignedIntegerPolyfillPass(cfg SignedIntegerPolyfillConfig) Pass {
	return Pass{
		Name:         signedIntegerPolyfillName,
		Capabilities: signedIntegerPolyfillCapabilities,
		Run: func(m *ir.Module) error {
			return SignedIntegerPolyfill(m, cfg)
		},
	}
}

// Package tint provides the middle end of a shader compiler.
//
// Shaders are held in an SSA-style intermediate representation of
// structured control flow (see the ir package). The transform package
// rewrites modules into forms that backends can emit directly:
//   - MergeReturn: every function returns only from the end of its body
//   - ModuleScopeVars: module-scope variables are passed explicitly
//   - SignedIntegerPolyfill: signed integer arithmetic wraps on overflow
//
// Example usage:
//
//	m := ir.NewModule()
//	b := ir.NewBuilder(m)
//	// ... build functions with b ...
//	if err := tint.Transform(ctx, m, tint.DefaultOptions()); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(ir.Disassemble(m))
package tint

import (
	"context"
	"runtime"

	"github.com/nikandfor/errors"
	"github.com/nikandfor/tlog"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/tint/ir"
	"github.com/gogpu/tint/transform"
)

// Options configures the transform pipeline.
type Options struct {
	// SignedIntegerPolyfill selects the signed integer operations to rewrite.
	// Nothing is rewritten when every field is false.
	SignedIntegerPolyfill transform.SignedIntegerPolyfillConfig

	// MergeReturn enables the MergeReturn transform.
	MergeReturn bool

	// ModuleScopeVars enables the ModuleScopeVars transform.
	ModuleScopeVars bool

	// Validate validates the module after each pass.
	Validate bool

	// DumpBefore and DumpAfter log the module around the named pass ("*" for all).
	DumpBefore string
	DumpAfter  string
}

// DefaultOptions returns options running every transform with validation.
func DefaultOptions() Options {
	return Options{
		SignedIntegerPolyfill: transform.SignedIntegerPolyfillConfig{
			SignedNegation:   true,
			SignedArithmetic: true,
			SignedShiftLeft:  true,
		},
		MergeReturn:     true,
		ModuleScopeVars: true,
		Validate:        true,
	}
}

// Pipeline returns the passes enabled by opts, in execution order.
func Pipeline(opts Options) []transform.Pass {
	var passes []transform.Pass

	if p := opts.SignedIntegerPolyfill; p.SignedNegation || p.SignedArithmetic || p.SignedShiftLeft {
		passes = append(passes, transform.SignedIntegerPolyfillPass(p))
	}
	if opts.MergeReturn {
		passes = append(passes, transform.MergeReturnPass())
	}
	if opts.ModuleScopeVars {
		passes = append(passes, transform.ModuleScopeVarsPass())
	}

	return passes
}

// Transform runs the pipeline selected by opts on m.
func Transform(ctx context.Context, m *ir.Module, opts Options) error {
	if m == nil {
		return errors.New("nil module")
	}

	return transform.Run(ctx, m, Pipeline(opts), transform.Config{
		Validate:   opts.Validate,
		DumpBefore: opts.DumpBefore,
		DumpAfter:  opts.DumpAfter,
	})
}

// TransformAll transforms independent modules concurrently. Modules share
// no state, so each one is transformed by its own goroutine. The first error
// is returned and cancels the modules not yet started.
func TransformAll(ctx context.Context, modules []*ir.Module, opts Options) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "transform_all", "modules", len(modules))
	defer tr.Finish("err", &err)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, m := range modules {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := Transform(ctx, m, opts); err != nil {
				return errors.Wrap(err, "module %d", i)
			}

			return nil
		})
	}

	return g.Wait()
}

package llvm

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fnattrs/internal/ast"
	"fnattrs/internal/diag"
	"fnattrs/internal/session"
	"fnattrs/internal/trace"
)

// ErrInvalidDecl is returned for declarations the backend cannot represent.
var ErrInvalidDecl = errors.New("invalid function declaration")

// FnDecl is what the front-end hands over for one function.
type FnDecl struct {
	Name   string
	Ret    string
	Params []string
	Attrs  []ast.Attr
	Extern bool // declared without a body
}

var validTypes = map[string]struct{}{
	"void": {}, "i1": {}, "i8": {}, "i16": {}, "i32": {}, "i64": {}, "i128": {},
	"half": {}, "float": {}, "double": {}, "ptr": {},
}

func (d FnDecl) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDecl)
	}
	ret := d.Ret
	if ret == "" {
		ret = "void"
	}
	if _, ok := validTypes[ret]; !ok {
		return fmt.Errorf("%w: %s: unknown return type %q", ErrInvalidDecl, d.Name, d.Ret)
	}
	for i, p := range d.Params {
		if _, ok := validTypes[p]; !ok || p == "void" {
			return fmt.Errorf("%w: %s: parameter %d has invalid type %q", ErrInvalidDecl, d.Name, i, p)
		}
	}
	return nil
}

// Declare creates the backend handle for decl and commits all of its
// attributes: session-wide defaults first, then FromFnAttrs.
func Declare(ctx context.Context, sess *session.Session, decl FnDecl) (*Func, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := decl.validate(); err != nil {
		return nil, err
	}
	ret := decl.Ret
	if ret == "" {
		ret = "void"
	}
	fn := NewFunc(decl.Name, ret, decl.Params...)
	fn.Extern = decl.Extern

	checkTargets(sess, decl)

	cfg := sess.Config
	if cfg.Panic == session.PanicAbort {
		SetUnwind(fn, false)
	}
	EmitUWTable(fn, cfg.UWTable)
	SetOptimizeForSize(fn, cfg.OptimizeForSize())

	FromFnAttrs(sess, decl.Attrs, fn)

	tracer := trace.FromContext(ctx)
	trace.Point(tracer, trace.ScopeFunc, "fn:"+decl.Name, fn.Attrs(FunctionIndex).String(), map[string]string{
		"return": fn.Attrs(ReturnIndex).String(),
		"inline": fn.Inline().String(),
	})
	if tracer.Level().ShouldEmit(trace.ScopeAttr) {
		for _, attr := range decl.Attrs {
			trace.Point(tracer, trace.ScopeAttr, "attr", attr.String(sess.Interner), map[string]string{"fn": decl.Name})
		}
	}
	return fn, nil
}

// checkTargets warns about catalog attributes used on the wrong kind of
// function or given arguments they do not take. Names missing from the
// catalog are left to other passes.
func checkTargets(sess *session.Session, decl FnDecl) {
	target := ast.AttrTargetFn
	kind := "function definitions"
	if decl.Extern {
		target = ast.AttrTargetExternFn
		kind = "extern declarations"
	}
	for _, attr := range decl.Attrs {
		spec, ok := ast.LookupAttrID(sess.Interner, attr.Name)
		if !ok {
			continue
		}
		if attr.HasArgs && !spec.HasFlag(ast.AttrFlagArgs) {
			diag.ReportWarning(sess.Reporter, diag.AttrMalformed, attr.Span,
				fmt.Sprintf("@%s takes no arguments", spec.Name)).Emit()
		}
		if !spec.Allows(target) {
			diag.ReportWarning(sess.Reporter, diag.AttrTargetMismatch, attr.Span,
				fmt.Sprintf("@%s is not allowed on %s", spec.Name, kind)).Emit()
		}
	}
}

// Declared pairs a handle with the diagnostics produced while declaring it.
type Declared struct {
	Func *Func
	Bag  *diag.Bag
}

// DeclareOptions tunes DeclareAll.
type DeclareOptions struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // per function, <= 0 means unlimited
}

// DeclareAll declares decls in parallel. Every function gets its own handle
// and diagnostic bag, so no state is shared between workers; results keep
// the order of decls.
func DeclareAll(ctx context.Context, sess *session.Session, decls []FnDecl, opts DeclareOptions) ([]Declared, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Declared, len(decls))
	if len(decls) == 0 {
		return results, nil
	}

	end := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "declare")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(decls)))
	for i := range decls {
		i := i
		g.Go(func() error {
			bag := diag.NewBag(opts.MaxDiagnostics)
			local := sess.WithReporter(diag.NewDedupReporter(diag.BagReporter{Bag: bag}))
			fn, err := Declare(gctx, local, decls[i])
			if err != nil {
				return err
			}
			results[i] = Declared{Func: fn, Bag: bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		end("failed")
		return nil, err
	}
	end(fmt.Sprintf("%d functions", len(decls)))
	return results, nil
}

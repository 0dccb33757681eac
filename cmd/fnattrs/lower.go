package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vmihailenco/msgpack/v5"

	"fnattrs/internal/backend/llvm"
	"fnattrs/internal/diag"
	"fnattrs/internal/diagfmt"
	"fnattrs/internal/observ"
	"fnattrs/internal/project"
	"fnattrs/internal/session"
	"fnattrs/internal/source"
	"fnattrs/internal/trace"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] [manifest]",
	Short: "Attach backend attributes to the functions of a manifest",
	Long: `Lower reads fnattrs.toml (or the given manifest), applies the attribute
driver to every [[fn]] entry and prints the resulting declarations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: lowerExecution,
}

func init() {
	lowerCmd.Flags().String("emit", "ll", "output kind (ll|msgpack|summary)")
	lowerCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	lowerCmd.Flags().Int("jobs", 0, "max parallel declarations (0=auto)")
	addCodegenFlags(lowerCmd.Flags())
}

// addCodegenFlags defines the flags that override the [codegen] table.
func addCodegenFlags(flags *pflag.FlagSet) {
	flags.Bool("force-frame-pointers", false, "keep frame pointers in every function")
	flags.Int("debuginfo", 0, "debug info level (0|1|2)")
	flags.String("opt-level", "0", "optimisation level (0|1|2|3|s|z)")
	flags.String("panic", "unwind", "panic strategy (unwind|abort)")
	flags.Bool("uwtable", false, "emit unwind tables for every function")
	flags.String("target", "", "target triple printed in the module header")
}

type lowerOptions struct {
	emit           string
	jobs           int
	maxDiagnostics int
	diagFormat     string // pretty|json
	quiet          bool
	timer          *observ.Timer // nil disables timings
}

func lowerExecution(cmd *cobra.Command, args []string) error {
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	diagFormat, err := cmd.Root().PersistentFlags().GetString("diag-format")
	if err != nil {
		return err
	}
	opts := lowerOptions{
		emit:           strings.ToLower(emit),
		jobs:           jobs,
		maxDiagnostics: maxDiagnostics,
		diagFormat:     strings.ToLower(diagFormat),
		quiet:          quiet,
	}
	if timings {
		opts.timer = observ.NewTimer()
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), opts.timer.Summary()) }()
	}
	switch opts.emit {
	case "ll", "msgpack", "summary":
	default:
		return fmt.Errorf("unsupported --emit %q (must be ll, msgpack or summary)", emit)
	}
	switch opts.diagFormat {
	case "", "pretty", "json":
	default:
		return fmt.Errorf("unsupported --diag-format %q (must be pretty or json)", diagFormat)
	}

	manifestPath := ""
	if len(args) == 1 {
		manifestPath = args[0]
	} else {
		path, ok, err := project.FindManifest(".")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(noManifestMessage)
		}
		manifestPath = path
	}
	loadPhase := opts.timer.Begin("manifest")
	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	opts.timer.End(loadPhase, manifest.Path)

	cfg := manifest.Codegen()
	if err := applyCodegenFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}

	if outputPath == "" {
		return lowerManifest(cmd.Context(), manifest, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := lowerManifest(cmd.Context(), manifest, cfg, opts, f, cmd.ErrOrStderr()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

const noManifestMessage = "no " + project.ManifestName + " found\nplease pass the manifest explicitly, e.g.:\n  fnattrs lower path/to/" + project.ManifestName

// applyCodegenFlags overrides manifest values with flags set on the command line.
func applyCodegenFlags(flags *pflag.FlagSet, cfg *session.Config) error {
	var err error
	if flags.Changed("force-frame-pointers") {
		if cfg.ForceFramePointers, err = flags.GetBool("force-frame-pointers"); err != nil {
			return err
		}
	}
	if flags.Changed("debuginfo") {
		if cfg.DebugInfo, err = flags.GetInt("debuginfo"); err != nil {
			return err
		}
	}
	if flags.Changed("opt-level") {
		if cfg.OptLevel, err = flags.GetString("opt-level"); err != nil {
			return err
		}
	}
	if flags.Changed("panic") {
		value, err := flags.GetString("panic")
		if err != nil {
			return err
		}
		cfg.Panic = session.PanicStrategy(value)
	}
	if flags.Changed("uwtable") {
		if cfg.UWTable, err = flags.GetBool("uwtable"); err != nil {
			return err
		}
	}
	if flags.Changed("target") {
		if cfg.Target.Triple, err = flags.GetString("target"); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// lowerManifest declares every function of m and writes the requested output.
// Nothing is written to out when any function has errors.
func lowerManifest(ctx context.Context, m *project.Manifest, cfg session.Config, opts lowerOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := trace.FromContext(ctx)
	end := trace.Begin(tracer, trace.ScopeDriver, "lower:"+m.Name())

	interner := source.NewInterner()
	decls, err := m.Decls(interner)
	if err != nil {
		end("failed")
		return err
	}
	sess := session.New(cfg, nil, interner)

	declPhase := opts.timer.Begin("declare")
	results, err := llvm.DeclareAll(ctx, sess, decls, llvm.DeclareOptions{
		Jobs:           opts.jobs,
		MaxDiagnostics: opts.maxDiagnostics,
	})
	if err != nil {
		end("failed")
		return err
	}
	opts.timer.End(declPhase, fmt.Sprintf("%d functions", len(results)))

	bag := moduleBag(results)
	if err := printDiagnostics(errOut, interner, bag, decls, opts); err != nil {
		end("failed")
		return err
	}
	if bag.HasErrors() {
		end("failed")
		return fmt.Errorf("%s: %d error(s) in function attributes", m.Path, bag.ErrorCount())
	}

	funcs := make([]*llvm.Func, 0, len(results))
	for _, r := range results {
		funcs = append(funcs, r.Func)
	}

	emitPhase := opts.timer.Begin("emit")
	switch opts.emit {
	case "msgpack":
		err = writeSnapshots(out, funcs)
	case "summary":
		err = writeSummary(out, funcs)
	default:
		mod := &llvm.Module{Name: m.Name(), Triple: cfg.Target.Triple, Funcs: funcs}
		err = mod.Render(out)
	}
	opts.timer.End(emitPhase, opts.emit)
	end(fmt.Sprintf("%d functions, %d names", len(funcs), interner.Len()))
	return err
}

// writeSnapshots writes one msgpack array holding the encoded attribute
// snapshot of every function.
func writeSnapshots(out io.Writer, funcs []*llvm.Func) error {
	enc := msgpack.NewEncoder(out)
	if err := enc.EncodeArrayLen(len(funcs)); err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	for _, fn := range funcs {
		data, err := fn.EncodeAttrs()
		if err != nil {
			return err
		}
		if err := enc.Encode(msgpack.RawMessage(data)); err != nil {
			return fmt.Errorf("encode snapshots: %w", err)
		}
	}
	return nil
}

// moduleBag merges the per-function bags in declaration order. Spans carry
// the function position, so the merged bag sorts function by function.
func moduleBag(results []llvm.Declared) *diag.Bag {
	bag := diag.NewBag(0)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	bag.Dedup()
	bag.Sort()
	return bag
}

// printDiagnostics writes the module diagnostics in the selected format.
func printDiagnostics(w io.Writer, interner *source.Interner, bag *diag.Bag, decls []llvm.FnDecl, opts lowerOptions) error {
	fns := make([]diagfmt.Fn, 0, len(decls))
	for _, d := range decls {
		fns = append(fns, diagfmt.Fn{Name: d.Name, Attrs: d.Attrs})
	}
	if opts.diagFormat == "json" {
		return diagfmt.JSON(w, interner, bag, fns, diagfmt.JSONOpts{
			Quiet:        opts.quiet,
			IncludeNotes: true,
		})
	}
	diagfmt.Pretty(w, interner, bag, fns, diagfmt.PrettyOpts{Quiet: opts.quiet, ShowNotes: true})
	return nil
}

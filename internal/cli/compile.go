package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	InputOptions

	Shapes []string // shapes to compile; empty means all
	Output string   // write queries to this file
	Watch  bool     // recompile when definition files change

	// Debounce is the quiet period before a watched change recompiles.
	Debounce time.Duration
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts, Debounce: 200 * time.Millisecond}

	cmd := &cobra.Command{
		Use:   "compile [definitions...]",
		Short: "Compile shapes to SPARQL queries",
		Long: `Compile every top-level shape (or the ones named with --shape) into a
SPARQL SELECT query.

Definitions are CUE or YAML files, directories or glob patterns.
Shapes that fail to compile are reported and skipped; the others still
compile.

Exit codes:
  0 - All shapes compiled
  1 - One or more shapes failed
  2 - Command error (unreadable definitions, aborted run, etc.)

Examples:
  shaclq compile shapes/
  shaclq compile shapes/*.yaml --shape ex:PersonShape -o person.rq
  shaclq compile --db shaclq.db --graph shapes
  shaclq compile shapes/ --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringSliceVar(&opts.Shapes, "shape", nil, "shape to compile as CURIE or <iri> (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write queries to this file")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "recompile when definition files change")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	definitions, err := applyConfig(cmd, opts.RootOptions, &opts.InputOptions, args)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}

	ctx := commandContext(cmd)

	if !opts.Watch {
		return compileOnce(ctx, opts, definitions, formatter)
	}
	if opts.Graph != "" {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "--watch needs definition files, not --graph", nil)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := compileOnce(ctx, opts, definitions, formatter); err != nil {
		formatter.VerboseLog("compile failed: %v", err)
	}

	w, err := NewWatcher(definitions, opts.Debounce, opts.Logger())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "starting watcher", err)
	}
	defer w.Close()

	fmt.Fprintf(formatter.GetErrWriter(), "Watching %s for changes. Press Ctrl-C to stop.\n", strings.Join(definitions, ", "))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		formatter.VerboseLog("changed: %s", strings.Join(changed, ", "))
		if err := compileOnce(ctx, opts, definitions, formatter); err != nil {
			formatter.VerboseLog("compile failed: %v", err)
		}
	})
}

// compileOnce runs one compilation and reports it.
func compileOnce(ctx context.Context, opts *CompileOptions, definitions []string, formatter *OutputFormatter) error {
	in, err := loadInputs(ctx, &opts.InputOptions, definitions)
	if err != nil {
		return failInput(formatter, err)
	}
	defer in.Close()
	formatter.VerboseLog("Loaded %d definition file(s), %d triple(s)", in.files, in.graph.Len())

	eng := in.engine(&opts.InputOptions, opts.RootOptions)
	shapes, err := in.resolveShapes(opts.Shapes, eng)
	if err != nil {
		return failInput(formatter, loadErr(err))
	}

	run, err := eng.Compile(ctx, shapes)
	if err != nil {
		return failRun(formatter, err)
	}
	report := newRunReport(shapes, run)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(strings.Join(report.Queries(), "\n")), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "writing output file", err)
		}
	}

	text := func(w io.Writer) {
		if opts.Output == "" {
			for _, q := range report.Queries() {
				fmt.Fprintln(w, q)
			}
		}
		report.writeSummary(w)
		if opts.Output != "" {
			fmt.Fprintf(w, "Wrote %d query(ies) to %s\n", report.Compiled, opts.Output)
		}
	}

	if report.Failed > 0 {
		msg := fmt.Sprintf("%d shape(s) failed", report.Failed)
		if err := formatter.Partial(report, ErrCodeShapeFailed, msg, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(report, text)
}

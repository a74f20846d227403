package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ShapesOptions holds flags for the shapes command.
type ShapesOptions struct {
	*RootOptions
	InputOptions
}

// NewShapesCommand creates the shapes command.
func NewShapesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShapesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shapes [definitions...]",
		Short: "List top-level shapes",
		Long: `List every top-level shape with its compilation status.

A shape is compiled when it has a scope, no_scope when it has none and
failed when it cannot compile. Diagnostics and shape reference cycles
are listed too. No queries are printed.

Examples:
  shaclq shapes shapes/
  shaclq shapes --db shaclq.db --graph shapes --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShapes(opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runShapes(opts *ShapesOptions, args []string, cmd *cobra.Command) error {
	definitions, err := applyConfig(cmd, opts.RootOptions, &opts.InputOptions, args)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}

	ctx := commandContext(cmd)
	in, err := loadInputs(ctx, &opts.InputOptions, definitions)
	if err != nil {
		return failInput(formatter, err)
	}
	defer in.Close()

	eng := in.engine(&opts.InputOptions, opts.RootOptions)
	shapes := eng.Compiler().Shapes()
	run, err := eng.Compile(ctx, shapes)
	if err != nil {
		return failRun(formatter, err)
	}
	report := newRunReport(shapes, run)
	for i := range report.Shapes {
		report.Shapes[i].Query = ""
	}

	return formatter.Success(report, func(w io.Writer) {
		writeShapeTable(w, report)
	})
}

func writeShapeTable(w io.Writer, r *RunReport) {
	if len(r.Shapes) == 0 {
		fmt.Fprintln(w, "No shapes found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHAPE\tSTATUS\tDETAIL")
	for _, s := range r.Shapes {
		detail := s.ErrorCode
		if s.Status != StatusFailed {
			kinds := make([]string, 0, len(s.Diagnostics))
			for _, d := range s.Diagnostics {
				kinds = append(kinds, string(d.Kind))
			}
			detail = strings.Join(kinds, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Shape, s.Status, detail)
	}
	tw.Flush()

	for _, c := range r.Cycles {
		fmt.Fprintf(w, "⚠ cycle: %s\n", strings.Join(c.Path, " → "))
	}
}

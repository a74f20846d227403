package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shaclq/internal/engine"
	"github.com/roach88/shaclq/internal/metamodel"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Metamodel []string
	Queries   bool // print the definition-checking queries
}

// CheckResult is the outcome of checking a metamodel.
type CheckResult struct {
	Templates int                         `json:"templates"`
	Errors    []metamodel.ValidationError `json:"errors"`
	Shapes    *RunReport                  `json:"shapes"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the metamodel",
		Long: `Validate the component templates of the metamodel (built-in unless
--metamodel is given), then compile the shapes the metamodel declares
over its own graph. Those queries check a shapes graph: run them with
the shapes graph as data. Use --queries to print them.

Exit codes:
  0 - Metamodel is valid
  1 - Template problems found or metamodel shapes failed to compile
  2 - Command error (unreadable files, etc.)

Examples:
  shaclq check
  shaclq check --metamodel meta/templates.cue --queries`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Metamodel, "metamodel", nil, "template definition files (default: built-in metamodel)")
	cmd.Flags().BoolVar(&opts.Queries, "queries", false, "print the queries that check shape definitions")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	in := InputOptions{Metamodel: opts.Metamodel}
	_, err := applyConfig(cmd, opts.RootOptions, &in, nil)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}

	meta, err := loadMetamodel(in.Metamodel)
	if err != nil {
		return failInput(formatter, loadErr(err))
	}

	result := CheckResult{
		Templates: len(meta.Templates()),
		Errors:    metamodel.Validate(meta),
	}
	if result.Errors == nil {
		result.Errors = []metamodel.ValidationError{}
	}

	eng := engine.New(meta.Graph(), meta, engine.WithLogger(opts.Logger()))
	run, err := eng.ValidateDefinitions(commandContext(cmd))
	if err != nil {
		return failRun(formatter, err)
	}
	result.Shapes = newRunReport(eng.Compiler().Shapes(), run)

	text := func(w io.Writer) {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e.Error())
		}
		if opts.Queries {
			for _, q := range result.Shapes.Queries() {
				fmt.Fprintln(w, q)
			}
		}
		mark := "✓"
		if len(result.Errors) > 0 || result.Shapes.Failed > 0 {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s Checked %d template(s): %d problem(s), %d definition shape(s) compiled, %d failed\n",
			mark, result.Templates, len(result.Errors), result.Shapes.Compiled, result.Shapes.Failed)
	}

	if len(result.Errors) > 0 || result.Shapes.Failed > 0 {
		msg := fmt.Sprintf("%d template problem(s), %d definition shape(s) failed", len(result.Errors), result.Shapes.Failed)
		if err := formatter.Partial(result, ErrCodeMetamodel, msg, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result, text)
}

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/shaclq/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Graph    string
	List     bool // list stored graphs and runs instead of importing
}

// ImportResult reports one imported graph.
type ImportResult struct {
	Graph   string `json:"graph"`
	Files   int    `json:"files"`
	Triples int    `json:"triples"`
}

// StoreListing is the content summary of a database.
type StoreListing struct {
	Graphs []GraphEntry `json:"graphs"`
	Runs   []RunEntry   `json:"runs"`
}

// GraphEntry describes a stored graph.
type GraphEntry struct {
	Name    string `json:"name"`
	Triples int    `json:"triples"`
}

// RunEntry describes a stored run.
type RunEntry struct {
	RunID    string `json:"run_id"`
	Shapes   int    `json:"shapes"`
	Compiled int    `json:"compiled"`
	Failed   int    `json:"failed"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [definitions...]",
		Short: "Store a shapes graph in SQLite",
		Long: `Load definition files and store the resulting graph in a SQLite
database under a name. A graph already stored under that name is
replaced. Compile it later with "compile --db <file> --graph <name>".

Examples:
  shaclq import shapes/ --db shaclq.db
  shaclq import shapes/*.cue --db shaclq.db --graph people
  shaclq import --db shaclq.db --list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (required)")
	cmd.Flags().StringVar(&opts.Graph, "graph", "shapes", "name to store the graph under")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored graphs and runs")

	return cmd
}

func runImport(opts *ImportOptions, args []string, cmd *cobra.Command) error {
	in := InputOptions{Database: opts.Database}
	definitions, err := applyConfig(cmd, opts.RootOptions, &in, args)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}
	if in.Database == "" {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "--db is required", nil)
	}

	ctx := commandContext(cmd)
	st, err := store.Open(in.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "opening database", err)
	}
	defer st.Close()

	if opts.List {
		listing, err := listStore(cmd, st)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "reading database", err)
		}
		return formatter.Success(listing, func(w io.Writer) { writeListing(w, listing) })
	}

	// Only the file loading part of the inputs is needed here.
	loaded, err := loadInputs(ctx, &InputOptions{}, definitions)
	if err != nil {
		return failInput(formatter, err)
	}
	formatter.VerboseLog("Loaded %d definition file(s)", loaded.files)

	if err := st.ImportGraph(ctx, opts.Graph, loaded.graph); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "importing graph", err)
	}
	opts.Logger().Info("graph imported", "graph", opts.Graph, "triples", loaded.graph.Len())

	result := ImportResult{Graph: opts.Graph, Files: loaded.files, Triples: loaded.graph.Len()}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Imported %d triple(s) from %d file(s) as %q\n", result.Triples, result.Files, result.Graph)
	})
}

func listStore(cmd *cobra.Command, st *store.Store) (*StoreListing, error) {
	ctx := commandContext(cmd)
	graphs, err := st.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	runs, err := st.Runs(ctx)
	if err != nil {
		return nil, err
	}

	listing := &StoreListing{Graphs: make([]GraphEntry, 0, len(graphs)), Runs: make([]RunEntry, 0, len(runs))}
	for _, g := range graphs {
		listing.Graphs = append(listing.Graphs, GraphEntry{Name: g.Name, Triples: g.Triples})
	}
	for _, r := range runs {
		listing.Runs = append(listing.Runs, RunEntry{RunID: r.RunID, Shapes: r.Shapes, Compiled: r.Compiled, Failed: r.Failed})
	}
	return listing, nil
}

func writeListing(w io.Writer, l *StoreListing) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GRAPH\tTRIPLES")
	for _, g := range l.Graphs {
		fmt.Fprintf(tw, "%s\t%d\n", g.Name, g.Triples)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "RUN\tSHAPES\tCOMPILED\tFAILED")
	for _, r := range l.Runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", r.RunID, r.Shapes, r.Compiled, r.Failed)
	}
	tw.Flush()
}

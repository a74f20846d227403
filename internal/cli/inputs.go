package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/shaclq/internal/compiler"
	"github.com/roach88/shaclq/internal/engine"
	"github.com/roach88/shaclq/internal/loader"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/store"
)

// InputOptions holds the flags shared by commands that compile shapes.
type InputOptions struct {
	Metamodel   []string
	MaxDepth    int
	StrictLists bool
	Workers     int
	Database    string
	Graph       string // compile a stored graph instead of files
}

func (o *InputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.Metamodel, "metamodel", nil, "template definition files (default: built-in metamodel)")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", compiler.DefaultMaxDepth, "shape nesting ceiling")
	cmd.Flags().BoolVar(&o.StrictLists, "strict-lists", false, "fail shapes with malformed RDF lists")
	cmd.Flags().IntVar(&o.Workers, "workers", 0, "shapes compiled in parallel (default: GOMAXPROCS)")
	cmd.Flags().StringVar(&o.Database, "db", "", "SQLite database recording runs")
	cmd.Flags().StringVar(&o.Graph, "graph", "", "compile the named graph stored in --db instead of files")
}

func (o *InputOptions) compilerOptions() []compiler.Option {
	opts := []compiler.Option{compiler.WithMaxDepth(o.MaxDepth)}
	if o.StrictLists {
		opts = append(opts, compiler.WithStrictLists())
	}
	return opts
}

// inputs is everything a command needs to build an engine.
type inputs struct {
	graph *rdf.MemGraph
	meta  *metamodel.Metamodel
	names *loader.Loader // resolves CURIEs on the command line
	store *store.Store   // nil without --db
	files int
}

func (in *inputs) Close() error {
	if in.store != nil {
		return in.store.Close()
	}
	return nil
}

// engine builds an engine over the loaded shapes graph.
func (in *inputs) engine(o *InputOptions, root *RootOptions) *engine.Engine {
	opts := []engine.Option{
		engine.WithWorkers(o.Workers),
		engine.WithLogger(root.Logger()),
		engine.WithCompilerOptions(o.compilerOptions()...),
	}
	if in.store != nil {
		opts = append(opts, engine.WithStore(in.store))
	}
	return engine.New(in.graph, in.meta, opts...)
}

// resolveShapes turns command line shape names into IRIs. An empty list
// selects every top-level shape.
func (in *inputs) resolveShapes(names []string, eng *engine.Engine) ([]rdf.Term, error) {
	if len(names) == 0 {
		return eng.Compiler().Shapes(), nil
	}
	out := make([]rdf.Term, 0, len(names))
	for _, n := range names {
		iri, err := in.names.ResolveIRI(n)
		if err != nil {
			return nil, err
		}
		out = append(out, iri)
	}
	return out, nil
}

// inputError carries the CLI error code for a failed input step.
type inputError struct {
	code string
	err  error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

// loadInputs opens the store, reads the shapes graph and the metamodel.
// definitions may be empty when o.Graph names a stored graph.
func loadInputs(ctx context.Context, o *InputOptions, definitions []string) (*inputs, error) {
	in := &inputs{}
	if o.Database != "" {
		st, err := store.Open(o.Database)
		if err != nil {
			return nil, &inputError{code: ErrCodeStore, err: err}
		}
		in.store = st
	}

	switch {
	case o.Graph != "":
		if in.store == nil {
			return nil, &inputError{code: ErrCodeConfig, err: errors.New("--graph requires --db")}
		}
		g, err := in.store.LoadGraph(ctx, o.Graph)
		if err != nil {
			in.Close()
			return nil, &inputError{code: ErrCodeStore, err: err}
		}
		in.graph = g
		in.names = loader.New()
	case len(definitions) == 0:
		in.Close()
		return nil, &inputError{code: ErrCodeNotFound, err: errors.New("no definition files given")}
	default:
		files, err := loader.ExpandFiles(definitions...)
		if err != nil {
			in.Close()
			return nil, loadErr(err)
		}
		l := loader.New()
		for _, f := range files {
			if err := l.LoadFile(f); err != nil {
				in.Close()
				return nil, loadErr(err)
			}
		}
		in.graph = l.Graph()
		in.names = l
		in.files = len(files)
	}

	meta, err := loadMetamodel(o.Metamodel)
	if err != nil {
		in.Close()
		return nil, loadErr(err)
	}
	in.meta = meta
	return in, nil
}

func loadMetamodel(paths []string) (*metamodel.Metamodel, error) {
	if len(paths) == 0 {
		return metamodel.Default()
	}
	return metamodel.LoadFiles(paths...)
}

// loadErr keeps the loader's error code when there is one.
func loadErr(err error) *inputError {
	var le *loader.LoadError
	if errors.As(err, &le) {
		return &inputError{code: le.Code, err: err}
	}
	return &inputError{code: ErrCodeGeneric, err: err}
}

// failInput reports an input error as a command error.
func failInput(f *OutputFormatter, err error) error {
	var ie *inputError
	if errors.As(err, &ie) {
		return f.Fail(ExitCommandError, ie.code, "loading inputs", ie.err)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "loading inputs", err)
}

// failRun reports an engine error: an aborted run is a command error.
func failRun(f *OutputFormatter, err error) error {
	var re *engine.RunError
	if errors.As(err, &re) && re.Code == engine.ErrCodeStoreFailed {
		return f.Fail(ExitCommandError, ErrCodeStore, "recording run", err)
	}
	return f.Fail(ExitCommandError, ErrCodeAborted, "compilation aborted", err)
}

package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/shaclq/internal/compiler"
	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/store"
)

// Engine compiles shapes from one shapes graph against one metamodel.
//
// Thread-safety: an Engine is safe for concurrent use once constructed.
// Each call to Compile is an independent run.
type Engine struct {
	meta         *metamodel.Metamodel
	compiler     *compiler.Compiler
	compilerOpts []compiler.Option
	workers      int
	store        *store.Store
	runIDs       RunIDGenerator
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds how many shapes compile at once.
//
// Default: runtime.GOMAXPROCS(0). Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithStore records every completed run in s.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.runIDs = g
		}
	}
}

// WithLogger sets the logger for the engine and its compilers.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCompilerOptions passes options to every compiler the engine creates.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(e *Engine) {
		e.compilerOpts = append(e.compilerOpts, opts...)
	}
}

// New creates an Engine over shapes using the templates of meta.
func New(shapes rdf.Graph, meta *metamodel.Metamodel, opts ...Option) *Engine {
	e := &Engine{
		meta:    meta,
		workers: runtime.GOMAXPROCS(0),
		runIDs:  UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.compiler = e.newCompiler(shapes)
	return e
}

func (e *Engine) newCompiler(shapes rdf.Graph) *compiler.Compiler {
	opts := append([]compiler.Option{}, e.compilerOpts...)
	opts = append(opts, compiler.WithLogger(e.logger))
	return compiler.New(shapes, e.meta, opts...)
}

// Compiler returns the compiler over the engine's shapes graph.
func (e *Engine) Compiler() *compiler.Compiler { return e.compiler }

// Run is the result of one compilation run.
type Run struct {
	ID string

	// Invocations holds one entry per shape that compiled, in input order.
	// Shapes without scope are included with an empty query.
	Invocations []*compiler.Invocation

	// Failures holds the shapes skipped for definition errors or unbound
	// names, in input order.
	Failures []ShapeFailure

	// Cycles lists the shape reference cycles found before compiling.
	Cycles []compiler.CycleWarning

	Duration time.Duration
}

// Queries counts the invocations that produced a query.
func (r *Run) Queries() int {
	n := 0
	for _, inv := range r.Invocations {
		if inv.HasQuery() {
			n++
		}
	}
	return n
}

// Diagnostics returns every diagnostic of the run in input order.
func (r *Run) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, inv := range r.Invocations {
		out = append(out, inv.Diagnostics...)
	}
	return out
}

// Err joins the shape failures, or returns nil when every shape compiled.
func (r *Run) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Compile compiles shapes in parallel and returns them in input order.
func (e *Engine) Compile(ctx context.Context, shapes []rdf.Term) (*Run, error) {
	return e.run(ctx, e.compiler, shapes)
}

// CompileAll compiles every top-level shape of the shapes graph.
func (e *Engine) CompileAll(ctx context.Context) (*Run, error) {
	return e.Compile(ctx, e.compiler.Shapes())
}

// ValidateDefinitions compiles the shapes the metamodel declares over its
// own graph. The resulting queries check a shapes graph: run them with the
// shapes graph as data.
func (e *Engine) ValidateDefinitions(ctx context.Context) (*Run, error) {
	c := e.newCompiler(e.meta.Graph())
	return e.run(ctx, c, c.Shapes())
}

// result is one shape's outcome, filled in by exactly one worker.
type result struct {
	inv     *compiler.Invocation
	failure *ShapeFailure
}

func (e *Engine) run(ctx context.Context, c *compiler.Compiler, shapes []rdf.Term) (*Run, error) {
	start := time.Now()
	run := &Run{ID: e.runIDs.Generate()}
	logger := e.logger.With("run_id", run.ID)

	run.Cycles = c.AnalyzeCycles()
	for _, cw := range run.Cycles {
		logger.Warn("shape reference cycle", "path", strings.Join(cw.Path, " → "))
	}
	cyclesTotal.Add(float64(len(run.Cycles)))

	results := make([]result, len(shapes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, shape := range shapes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inv, err := c.CompileInvocation(shape)
			if err == nil {
				results[i].inv = inv
				return nil
			}
			if diag.IsContractViolation(err) {
				return &RunError{
					Code:    ErrCodeContractViolation,
					Message: "compilation aborted",
					RunID:   run.ID,
					Shape:   shape,
					Err:     err,
				}
			}
			results[i].failure = &ShapeFailure{Shape: shape, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		runDuration.Observe(time.Since(start).Seconds())
		var re *RunError
		if !errors.As(err, &re) {
			re = &RunError{Code: ErrCodeCanceled, Message: "run canceled", RunID: run.ID, Err: err}
			runsTotal.WithLabelValues(outcomeCanceled).Inc()
		} else {
			runsTotal.WithLabelValues(outcomeAborted).Inc()
			if de, ok := diag.AsError(err); ok {
				errorsTotal.WithLabelValues(string(de.Code)).Inc()
			}
		}
		logger.Error("run stopped", "error", re)
		return nil, re
	}

	for _, r := range results {
		switch {
		case r.failure != nil:
			run.Failures = append(run.Failures, *r.failure)
			shapesTotal.WithLabelValues(shapeFailed).Inc()
			errorsTotal.WithLabelValues(string(r.failure.Code())).Inc()
			logger.Warn("shape skipped", "shape", r.failure.Shape.String(), "error", r.failure.Err)
		case r.inv != nil:
			run.Invocations = append(run.Invocations, r.inv)
			if r.inv.HasQuery() {
				shapesTotal.WithLabelValues(shapeCompiled).Inc()
			} else {
				shapesTotal.WithLabelValues(shapeNoScope).Inc()
			}
			for _, d := range r.inv.Diagnostics {
				diagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
			}
		}
	}

	if e.store != nil {
		if err := e.store.RecordCompilations(ctx, records(run.ID, results)); err != nil {
			runsTotal.WithLabelValues(outcomeAborted).Inc()
			return nil, &RunError{Code: ErrCodeStoreFailed, Message: "recording run", RunID: run.ID, Err: err}
		}
	}

	run.Duration = time.Since(start)
	runDuration.Observe(run.Duration.Seconds())
	runsTotal.WithLabelValues(outcomeOK).Inc()

	logger.Info("run complete",
		"shapes", len(shapes),
		"queries", run.Queries(),
		"failures", len(run.Failures),
		"diagnostics", len(run.Diagnostics()),
		"duration", run.Duration,
	)
	return run, nil
}

// records converts results to store rows, numbered from 1 in input order.
func records(runID string, results []result) []store.Compilation {
	recs := make([]store.Compilation, 0, len(results))
	for i, r := range results {
		rec := store.Compilation{RunID: runID, Seq: i + 1}
		switch {
		case r.failure != nil:
			rec.Shape = r.failure.Shape
			rec.Error = r.failure.Err.Error()
			rec.ErrorCode = string(r.failure.Code())
		case r.inv != nil:
			rec.Shape = r.inv.Shape
			rec.Query = r.inv.Query
			rec.Fingerprint = r.inv.Fingerprint
			rec.Diagnostics = r.inv.Diagnostics
		default:
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/shaclq/internal/compiler"
	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/engine"
	"github.com/roach88/shaclq/internal/loader"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/testutil"
)

// Harness runs scenarios with a fixed run id and a silent logger.
type Harness struct {
	logger *slog.Logger
}

// New creates a Harness that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load definitions and the metamodel
//  2. Compile every top-level shape in one engine run
//  3. Check the abort expectation and each shape expectation
//
// Errors loading documents or a canceled context are returned as errors;
// failed expectations are reported in the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	defs, err := loader.Load(scenario.Definitions...)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	meta, err := loadMetamodel(scenario.Metamodel)
	if err != nil {
		return nil, fmt.Errorf("load metamodel: %w", err)
	}

	runID := scenario.RunID
	if runID == "" {
		runID = scenario.Name
	}
	eng := engine.New(defs.Graph(), meta,
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(runID)),
		engine.WithLogger(h.logger.With("scenario", scenario.Name)),
		engine.WithCompilerOptions(compilerOptions(scenario.Options)...),
	)

	result := NewResult(scenario.Name, runID)
	shapes := eng.Compiler().Shapes()

	run, err := eng.Compile(ctx, shapes)
	if err != nil {
		if engine.IsCanceled(err) {
			return nil, err
		}
		result.Aborted = abortCode(err)
		if err := assertAbort(scenario.Abort, result.Aborted, err); err != nil {
			result.AddError(err.Error())
		}
		return result, nil
	}
	if err := assertAbort(scenario.Abort, "", nil); err != nil {
		result.AddError(err.Error())
	}

	result.Shapes = shapeResults(shapes, run)
	for _, cw := range run.Cycles {
		result.Cycles = append(result.Cycles, strings.Join(cw.Path, " -> "))
	}

	for _, exp := range scenario.Expect {
		iri, err := defs.ResolveIRI(exp.Shape)
		if err != nil {
			result.AddError(fmt.Sprintf("shape %q: %v", exp.Shape, err))
			continue
		}
		got, ok := result.Shape(iri.String())
		if !ok {
			result.AddError(fmt.Sprintf("shape %s: not a top-level shape", iri))
			continue
		}
		for _, err := range checkShape(exp, got) {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

func loadMetamodel(paths []string) (*metamodel.Metamodel, error) {
	if len(paths) == 0 {
		return metamodel.Default()
	}
	return metamodel.LoadFiles(paths...)
}

func compilerOptions(o Options) []compiler.Option {
	var opts []compiler.Option
	if o.MaxDepth > 0 {
		opts = append(opts, compiler.WithMaxDepth(o.MaxDepth))
	}
	if o.StrictLists {
		opts = append(opts, compiler.WithStrictLists())
	}
	return opts
}

// abortCode returns the compiler error code behind a run error.
func abortCode(err error) string {
	if de, ok := diag.AsError(err); ok {
		return string(de.Code)
	}
	return "UNKNOWN"
}

// shapeResults merges a run's invocations and failures back into shape
// order.
func shapeResults(shapes []rdf.Term, run *engine.Run) []ShapeResult {
	byShape := make(map[rdf.Term]ShapeResult, len(shapes))
	for _, inv := range run.Invocations {
		r := ShapeResult{Shape: inv.Shape.String(), Query: inv.Query, Fingerprint: inv.Fingerprint}
		for _, d := range inv.Diagnostics {
			r.Diagnostics = append(r.Diagnostics, string(d.Kind))
		}
		byShape[inv.Shape] = r
	}
	for _, f := range run.Failures {
		byShape[f.Shape] = ShapeResult{Shape: f.Shape.String(), Error: f.Err.Error(), ErrorCode: string(f.Code())}
	}

	out := make([]ShapeResult, 0, len(shapes))
	for _, s := range shapes {
		if r, ok := byShape[s]; ok {
			out = append(out, r)
		}
	}
	return out
}

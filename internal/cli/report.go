package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/shaclq/internal/compiler"
	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/engine"
	"github.com/roach88/shaclq/internal/rdf"
)

// Shape statuses.
const (
	StatusCompiled = "compiled"
	StatusNoScope  = "no_scope"
	StatusFailed   = "failed"
)

// ShapeReport is the outcome for one shape of a run.
type ShapeReport struct {
	Shape       string            `json:"shape"`
	Status      string            `json:"status"`
	Query       string            `json:"query,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty"`
	ErrorCode   string            `json:"error_code,omitempty"`
}

// RunReport summarises a run in the order shapes were requested.
type RunReport struct {
	RunID    string                  `json:"run_id"`
	Shapes   []ShapeReport           `json:"shapes"`
	Cycles   []compiler.CycleWarning `json:"cycles,omitempty"`
	Compiled int                     `json:"compiled"`
	NoScope  int                     `json:"no_scope"`
	Failed   int                     `json:"failed"`
}

func newRunReport(shapes []rdf.Term, run *engine.Run) *RunReport {
	byShape := make(map[rdf.Term]ShapeReport, len(shapes))
	for _, inv := range run.Invocations {
		r := ShapeReport{
			Shape:       inv.Shape.String(),
			Status:      StatusNoScope,
			Query:       inv.Query,
			Fingerprint: inv.Fingerprint,
			Diagnostics: inv.Diagnostics,
		}
		if inv.HasQuery() {
			r.Status = StatusCompiled
		}
		byShape[inv.Shape] = r
	}
	for _, f := range run.Failures {
		byShape[f.Shape] = ShapeReport{
			Shape:     f.Shape.String(),
			Status:    StatusFailed,
			Error:     f.Err.Error(),
			ErrorCode: string(f.Code()),
		}
	}

	rep := &RunReport{RunID: run.ID, Shapes: make([]ShapeReport, 0, len(shapes)), Cycles: run.Cycles}
	for _, s := range shapes {
		r, ok := byShape[s]
		if !ok {
			continue
		}
		switch r.Status {
		case StatusCompiled:
			rep.Compiled++
		case StatusNoScope:
			rep.NoScope++
		case StatusFailed:
			rep.Failed++
		}
		rep.Shapes = append(rep.Shapes, r)
	}
	return rep
}

// Queries returns the query texts in order, each ending in a newline.
func (r *RunReport) Queries() []string {
	var out []string
	for _, s := range r.Shapes {
		if s.Query != "" {
			out = append(out, s.Query+"\n")
		}
	}
	return out
}

// writeSummary prints the one-line summary, failures and cycles.
func (r *RunReport) writeSummary(w io.Writer) {
	mark := "✓"
	if r.Failed > 0 {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s Compiled %d shape(s): %d with scope, %d without, %d failed (run %s)\n",
		mark, len(r.Shapes), r.Compiled, r.NoScope, r.Failed, r.RunID)
	for _, s := range r.Shapes {
		if s.Status == StatusFailed {
			fmt.Fprintf(w, "  ✗ %s: %s\n", s.Shape, s.Error)
		}
	}
	for _, c := range r.Cycles {
		fmt.Fprintf(w, "  ⚠ cycle: %s\n", strings.Join(c.Path, " → "))
	}
}

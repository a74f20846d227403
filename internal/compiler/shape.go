package compiler

import (
	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// violationTest keeps only rows reported at sh:Violation.
const violationTest = "sameTerm(?severity, sh:Violation)"

// session is the mutable state of one entry-point call.
type session struct {
	c     *Compiler
	diags diag.Collector
}

func (c *Compiler) newSession() *session {
	return &session{c: c}
}

// compileShape compiles shape under ctx.
func (s *session) compileShape(shape rdf.Term, ctx Context) (queryir.Fragment, error) {
	frag, _, err := s.compileShapeParts(shape, ctx)
	return frag, err
}

// compileShapeParts compiles shape and also returns the compiled filter
// fragments, which partitions use to build case exclusions.
func (s *session) compileShapeParts(shape rdf.Term, ctx Context) (queryir.Fragment, []queryir.Pattern, error) {
	if shape == nil {
		return queryir.Fragment{}, nil, diag.New(diag.CodeMissingShape, "shape reference is nil")
	}
	ctx = ctx.descend()
	if ctx.depth > s.c.maxDepth {
		return queryir.Fragment{}, nil, diag.New(diag.CodeDepthExceeded,
			"shape nesting depth %d exceeds ceiling %d", ctx.depth, s.c.maxDepth).WithShape(shape)
	}

	if sev, ok := s.c.shapes.ValueOf(shape, vocab.Severity); ok {
		ctx = ctx.WithSeverity(sev)
	}

	var filters []queryir.Pattern
	for _, f := range s.c.shapes.ValuesOf(shape, vocab.Filter) {
		frag, err := s.compileShape(f, ctx)
		if err != nil {
			return queryir.Fragment{}, nil, withShape(err, shape)
		}
		filters = append(filters, frag)
	}

	body := ctx
	if len(filters) > 0 {
		exclusions := make([]queryir.Pattern, len(filters))
		for i, f := range filters {
			exclusions[i] = &queryir.Select{
				Projection: ctx.project(queryir.ColThis),
				Where:      queryir.Seq{f, queryir.Filter{Expr: violationTest}},
			}
		}
		body = ctx.WithInner(queryir.Minus{Left: ctx.Inner, Right: exclusions})
	}

	var branches queryir.Union
	for _, con := range s.c.constructs(shape) {
		var (
			frag queryir.Fragment
			err  error
		)
		switch con.Kind {
		case ConstructPartition:
			frag, err = s.compilePartition(shape, con.Value, body)
		case ConstructTemplate:
			frag, err = s.instantiateTemplate(shape, con.Template, con.Value, body)
		}
		if err != nil {
			return queryir.Fragment{}, nil, withShape(err, shape)
		}
		if frag.Columns != nil && !frag.HasColumns(queryir.ColThis, queryir.ColMessage, queryir.ColSeverity) {
			return queryir.Fragment{}, nil, diag.New(diag.CodeMalformedFragment,
				"%s fragment does not project ?this ?message ?severity", con.Kind).WithShape(shape)
		}
		branches = append(branches, frag)
	}

	if len(branches) == 0 {
		s.diags.Add(diag.KindNoConstructs, shape, "shape has no constructs and compiles to an empty result")
		return querysparql.Build(noOpSelect(shape, ctx)), filters, nil
	}

	sel := &queryir.Select{
		Comment:    "SHAPE " + shape.String(),
		Projection: append(ctx.reportColumns(), queryir.As(querysparql.Term(shape), queryir.ColShape)),
		Where:      branches,
	}
	if err := checkSelect(sel, shape); err != nil {
		return queryir.Fragment{}, nil, err
	}
	return querysparql.Build(sel), filters, nil
}

// noOpSelect projects the report columns and matches nothing.
func noOpSelect(shape rdf.Term, ctx Context) *queryir.Select {
	return &queryir.Select{
		Comment:    "NO-OP SHAPE " + shape.String(),
		Projection: ctx.reportColumns(),
		Where:      queryir.Filter{Expr: "false"},
	}
}

// checkSelect reports a structurally broken select as a contract violation.
func checkSelect(sel *queryir.Select, shape rdf.Term) error {
	res := queryir.Validate(sel)
	if res.IsWellFormed {
		return nil
	}
	return diag.New(diag.CodeMalformedFragment, "%s", res.Warnings[0]).WithShape(shape)
}

// withShape attaches shape to diag errors that do not name one yet.
func withShape(err error, shape rdf.Term) error {
	if de, ok := diag.AsError(err); ok && de.Shape == nil {
		return de.WithShape(shape)
	}
	return err
}

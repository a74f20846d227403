package compiler

import (
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

const partitionNotExhaustive = "Partition not exhaustive"

// compilePartition compiles an sh:partition list.
//
// Cases are tried in order and the first match wins: case i only sees the
// focus nodes no earlier case matched. A final case reports every node that
// no case matched.
func (s *session) compilePartition(shape, list rdf.Term, ctx Context) (queryir.Fragment, error) {
	cases, err := s.listElements(shape, list)
	if err != nil {
		return queryir.Fragment{}, err
	}

	var (
		branches   queryir.Union
		exclusions []queryir.Pattern
	)
	for _, c := range cases {
		caseCtx := ctx
		if len(exclusions) > 0 {
			prior := make([]queryir.Pattern, len(exclusions))
			copy(prior, exclusions)
			caseCtx = ctx.WithInner(queryir.Minus{Left: ctx.Inner, Right: prior})
		}

		frag, filters, err := s.compileShapeParts(c, caseCtx)
		if err != nil {
			return queryir.Fragment{}, err
		}
		branches = append(branches, frag)
		exclusions = append(exclusions, caseExclusion(ctx, filters))
	}

	branches = append(branches, unmatchedCase(ctx, exclusions))

	sel := &queryir.Select{
		Comment:    "PARTITION",
		Projection: ctx.reportColumns(),
		Where:      branches,
	}
	if err := checkSelect(sel, shape); err != nil {
		return queryir.Fragment{}, err
	}
	return querysparql.Build(sel), nil
}

// caseExclusion selects the focus nodes a case matched: those of the inner
// pattern that no filter of the case rejects. A case without filters
// matches everything.
func caseExclusion(ctx Context, filters []queryir.Pattern) *queryir.Select {
	proj := ctx.project(queryir.ColThis)
	if len(filters) == 0 {
		return &queryir.Select{Projection: proj, Where: queryir.Group{ctx.Inner}}
	}
	rejected := &queryir.Select{
		Projection: ctx.project(queryir.ColThis),
		Where:      queryir.Union(filters),
	}
	return &queryir.Select{
		Projection: proj,
		Where:      queryir.Minus{Left: ctx.Inner, Right: []queryir.Pattern{rejected}},
	}
}

// unmatchedCase reports the focus nodes every case excluded.
func unmatchedCase(ctx Context, exclusions []queryir.Pattern) *queryir.Select {
	return &queryir.Select{
		Comment:    "PARTITION FINAL",
		Projection: append(ctx.project(queryir.ColThis, queryir.ColMessage, queryir.ColSeverity), queryir.As(queryir.Var(queryir.ColThis), queryir.ColObject)),
		Where: queryir.Seq{
			queryir.Minus{Left: queryir.Seq{ctx.Outer, ctx.Inner}, Right: exclusions},
			queryir.Values{
				Vars: []string{queryir.ColMessage, queryir.ColSeverity},
				Rows: [][]string{{querysparql.StringLiteral(partitionNotExhaustive), querysparql.Term(vocab.Violation)}},
			},
		},
	}
}

package compiler

import (
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
)

// Column names used while renaming a child's rows back into the parent.
const (
	colChildParent    = "childParent"
	colChildMessage   = "childMessage"
	colChildSubject   = "childSubject"
	colChildPredicate = "childPredicate"
)

// pathContext moves the focus from ?this to the values of path, keeping
// the old focus as ?parent.
func pathContext(path string, ctx Context) Context {
	return Context{
		Var: queryir.ColThis,
		Outer: &queryir.Select{
			Projection: []queryir.Projection{
				queryir.As(queryir.Var(queryir.ColParent), queryir.ColGrandparent),
				queryir.As(queryir.Var(queryir.ColThis), queryir.ColParent),
			},
			Where: ctx.Inner,
		},
		Inner:      queryir.Group{queryir.Raw("?parent " + path + " ?this .")},
		Projection: []string{queryir.ColParent},
		Group:      []string{queryir.ColParent},
		Severity:   ctx.Severity,
		depth:      ctx.depth,
	}
}

// scopeToPath compiles child over the values of path and reports its
// violations against the current focus node.
//
// A child row that names its own subject keeps subject and predicate;
// otherwise the subject is the parent node and the predicate is the path.
// Messages are prefixed with message, a rendered string literal, and rows
// take the severity of ctx.
func (s *session) scopeToPath(path, message string, child rdf.Term, ctx Context) (string, error) {
	frag, err := s.compileShape(child, pathContext(path, ctx))
	if err != nil {
		return "", err
	}

	renamed := &queryir.Select{
		Projection: []queryir.Projection{
			queryir.As(queryir.Var(queryir.ColParent), colChildParent),
			queryir.As(queryir.Var(queryir.ColMessage), colChildMessage),
			queryir.As(queryir.Var(queryir.ColSubject), colChildSubject),
			queryir.As(queryir.Var(queryir.ColPredicate), colChildPredicate),
			{Var: queryir.ColObject},
		},
		Where: frag,
	}

	childSubjectBound := "BOUND(" + queryir.Var(colChildSubject) + ")"
	lifted := &queryir.Select{
		Projection: []queryir.Projection{
			queryir.As(queryir.Var(colChildParent), queryir.ColThis),
			{Var: queryir.ColMessage},
			{Var: queryir.ColSeverity},
			{Var: queryir.ColSubject},
			{Var: queryir.ColPredicate},
			{Var: queryir.ColObject},
		},
		Where: queryir.Seq{
			renamed,
			queryir.Bind{
				Expr: "IF(" + childSubjectBound + ", " + queryir.Var(colChildSubject) + ", " + queryir.Var(colChildParent) + ")",
				Var:  queryir.ColSubject,
			},
			queryir.Bind{
				Expr: "IF(" + childSubjectBound + ", " + queryir.Var(colChildPredicate) + ", " + querysparql.StringLiteral(path) + ")",
				Var:  queryir.ColPredicate,
			},
			queryir.Bind{
				Expr: "CONCAT(" + message + ", " + queryir.Var(colChildMessage) + ")",
				Var:  queryir.ColMessage,
			},
			queryir.Bind{
				Expr: querysparql.Term(ctx.Severity),
				Var:  queryir.ColSeverity,
			},
		},
	}

	sel := &queryir.Select{
		Comment:    "PATH SCOPE " + path,
		Projection: ctx.reportColumns(),
		Where:      queryir.Seq{lifted, ctx.Inner},
	}
	if err := checkSelect(sel, child); err != nil {
		return "", err
	}
	return querysparql.Render(sel), nil
}

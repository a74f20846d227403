package compiler

import (
	"errors"

	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/expr"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
)

// instantiateTemplate compiles one use of template t with argument value
// arg on shape.
func (s *session) instantiateTemplate(shape rdf.Term, t *metamodel.Template, arg rdf.Term, ctx Context) (queryir.Fragment, error) {
	fail := func(err error) (queryir.Fragment, error) {
		if de, ok := diag.AsError(err); ok {
			return queryir.Fragment{}, de.WithTemplate(t.ID).WithShape(shape)
		}
		return queryir.Fragment{}, err
	}

	ctx, err := s.bindArguments(t, arg, ctx)
	if err != nil {
		return fail(err)
	}

	env := &renderEnv{s: s, shape: shape, ctx: ctx}
	message, err := env.render(t.Message)
	if err != nil {
		return fail(err)
	}
	msgLiteral := querysparql.StringLiteral(message)
	ctx = ctx.withBinding(metamodel.NameMessage, expr.TextValue(msgLiteral))
	env.ctx = ctx

	switch {
	case t.HasClauses():
		sel, err := s.clauseSelect(t, env, msgLiteral)
		if err != nil {
			return fail(err)
		}
		if err := checkSelect(sel, shape); err != nil {
			return fail(err)
		}
		return querysparql.Build(sel), nil

	case t.HasQuery():
		text, err := env.render(t.Query)
		if err != nil {
			return fail(err)
		}
		return queryir.Fragment{Text: text}, nil

	default:
		return fail(diag.New(diag.CodeTemplateMissingBody, "template has neither clauses nor a query body"))
	}
}

// clauseSelect assembles a template built from pattern, filter and having
// clauses. The filter states what conforming values satisfy; the having
// clause states the violating condition.
func (s *session) clauseSelect(t *metamodel.Template, env *renderEnv, msgLiteral string) (*queryir.Select, error) {
	ctx := env.ctx
	where := queryir.Seq{ctx.Outer, ctx.Inner}

	if t.Pattern != "" {
		pattern, err := env.render(t.Pattern)
		if err != nil {
			return nil, err
		}
		where = append(where, queryir.Raw(pattern))
	}
	if t.Filter != "" {
		filter, err := env.render(t.Filter)
		if err != nil {
			return nil, err
		}
		where = append(where, queryir.Filter{Expr: "! ( " + filter + " )"})
	}
	where = append(where, queryir.Values{
		Vars: []string{queryir.ColMessage, queryir.ColSeverity},
		Rows: [][]string{{msgLiteral, querysparql.Term(ctx.Severity)}},
	})

	sel := &queryir.Select{
		Comment: "TEMPLATE " + t.ID.String(),
		Projection: append(
			ctx.project(queryir.ColThis, queryir.ColMessage, queryir.ColSeverity),
			queryir.As(queryir.Var(queryir.ColThis), queryir.ColObject),
		),
		Where: where,
	}
	if t.Having != "" {
		having, err := env.render(t.Having)
		if err != nil {
			return nil, err
		}
		sel.GroupBy = append(append([]string{}, ctx.Projection...), queryir.ColThis, queryir.ColMessage, queryir.ColSeverity)
		sel.Having = having
	}
	return sel, nil
}

// bindArguments binds "argument" and every named template argument.
//
// An argument is resolved by walking its forward property steps from arg in
// the shapes graph and taking the first value found. Unresolved arguments
// take their default, or an empty xsd:string.
func (s *session) bindArguments(t *metamodel.Template, arg rdf.Term, ctx Context) (Context, error) {
	ctx = ctx.withBinding(metamodel.NameArgument, expr.TermValue(arg))
	for _, a := range t.Args {
		if a.Name == "" {
			continue
		}
		if a.Problem != "" {
			return ctx, diag.New(diag.CodeBadArgumentPath, "argument %q: %s", a.Name, a.Problem)
		}
		v, ok := s.walk(arg, a.Steps)
		switch {
		case ok:
		case a.Required:
			return ctx, diag.New(diag.CodeMissingArgument, "required argument %q has no value at %s", a.Name, arg)
		case a.Default != nil:
			v = a.Default
		default:
			v = rdf.NewLiteral("", rdf.XSDString)
		}
		ctx = ctx.withBinding(a.Name, expr.TermValue(v))
	}
	return ctx, nil
}

func (s *session) walk(from rdf.Term, steps []rdf.IRI) (rdf.Term, bool) {
	cur := from
	for _, step := range steps {
		next, ok := s.c.shapes.ValueOf(cur, step)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, len(steps) > 0
}

// listElements reads an RDF list from the shapes graph, reporting a broken
// list as a warning or, with strict lists, as an error.
func (s *session) listElements(shape, head rdf.Term) ([]rdf.Term, error) {
	elems, warn := rdf.ListElements(s.c.shapes, head)
	if warn != nil {
		if err := s.malformedList(shape, warn); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

func (s *session) malformedList(shape rdf.Term, w *rdf.MalformedList) error {
	if s.c.strictLists {
		return diag.Wrap(diag.CodeMalformedList, w, "malformed list").WithShape(shape)
	}
	s.diags.Add(diag.KindMalformedList, shape, "%s", w.Error())
	return nil
}

// renderEnv evaluates template text for one template instance.
type renderEnv struct {
	s     *session
	shape rdf.Term
	ctx   Context
}

func (e *renderEnv) Lookup(name string) (expr.Value, bool) { return e.ctx.lookup(name) }

func (e *renderEnv) Graph() rdf.Graph { return e.s.c.shapes }

// CompileShape compiles shape under the template's context. The result
// drops ?shape so the enclosing shape can project its own.
func (e *renderEnv) CompileShape(shape rdf.Term) (string, error) {
	frag, err := e.s.compileShape(shape, e.ctx)
	if err != nil {
		return "", err
	}
	return querysparql.Render(&queryir.Select{
		Projection: e.ctx.reportColumns(),
		Where:      frag,
	}), nil
}

func (e *renderEnv) ScopeToPath(path, message string, shape rdf.Term) (string, error) {
	return e.s.scopeToPath(path, message, shape, e.ctx)
}

func (e *renderEnv) Warn(w *rdf.MalformedList) error {
	return e.s.malformedList(e.shape, w)
}

func (e *renderEnv) EmptyPath(node rdf.Term) {
	e.s.diags.Add(diag.KindEmptyPath, e.shape, "path %s renders to nothing", node)
}

// render evaluates text, mapping splice failures onto the error taxonomy.
// Errors raised by nested compilation pass through unchanged.
func (e *renderEnv) render(text string) (string, error) {
	out, err := expr.Render(text, e)
	if err == nil {
		return out, nil
	}
	if _, ok := diag.AsError(err); ok {
		return "", err
	}
	var (
		syntax  *expr.SyntaxError
		unbound *expr.UnboundNameError
	)
	switch {
	case errors.As(err, &syntax):
		return "", diag.Wrap(diag.CodeTemplateSyntax, err, "cannot parse %q", text)
	case errors.As(err, &unbound):
		return "", diag.Wrap(diag.CodeUnboundName, err, "unbound name in %q", text)
	default:
		return "", diag.Wrap(diag.CodeTemplateSyntax, err, "cannot evaluate %q", text)
	}
}

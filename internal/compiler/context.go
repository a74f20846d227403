package compiler

import (
	"strings"

	"github.com/roach88/shaclq/internal/expr"
	"github.com/roach88/shaclq/internal/metamodel"
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
)

// Context describes where a shape is evaluated.
//
// Outer and Inner together bind the focus variable; Projection lists the
// variables carried alongside ?this (the ?parent of a path scope) and Group
// the variables an aggregate must group by. A Context is a value: the With
// methods return modified copies and never touch the receiver.
type Context struct {
	Var        string
	Outer      queryir.Pattern
	Inner      queryir.Pattern
	Projection []string
	Group      []string
	Severity   rdf.Term

	bindings map[string]expr.Value
	depth    int
}

func rootContext(scopes queryir.Pattern, severity rdf.Term) Context {
	return Context{
		Var:      queryir.ColThis,
		Inner:    scopes,
		Severity: severity,
	}
}

// WithSeverity returns a copy reporting at severity.
func (c Context) WithSeverity(severity rdf.Term) Context {
	c.Severity = severity
	return c
}

// WithInner returns a copy whose inner pattern is inner.
func (c Context) WithInner(inner queryir.Pattern) Context {
	c.Inner = inner
	return c
}

func (c Context) descend() Context {
	c.depth++
	return c
}

// withBinding returns a copy with name bound. The binding map is copied on
// write so sibling contexts never observe each other's names.
func (c Context) withBinding(name string, v expr.Value) Context {
	next := make(map[string]expr.Value, len(c.bindings)+1)
	for k, old := range c.bindings {
		next[k] = old
	}
	next[name] = v
	c.bindings = next
	return c
}

// lookup resolves explicit bindings first, then the names derived from
// the context itself.
func (c Context) lookup(name string) (expr.Value, bool) {
	if v, ok := c.bindings[name]; ok {
		return v, true
	}
	switch name {
	case metamodel.NameOuter:
		return expr.TextValue(querysparql.RenderPattern(c.Outer)), true
	case metamodel.NameInner:
		return expr.TextValue(querysparql.RenderPattern(c.Inner)), true
	case metamodel.NameProjection:
		return expr.TextValue(varList(c.Projection)), true
	case metamodel.NameGroup:
		if len(c.Group) == 0 {
			return expr.TextValue(""), true
		}
		return expr.TextValue("GROUP BY " + varList(c.Group)), true
	case metamodel.NameSeverity:
		return expr.TermValue(c.Severity), true
	case metamodel.NameThis:
		return expr.TextValue(queryir.Var(c.Var)), true
	}
	return expr.Value{}, false
}

// project returns the context projection followed by cols.
func (c Context) project(cols ...string) []queryir.Projection {
	out := queryir.Vars(c.Projection...)
	return append(out, queryir.Vars(cols...)...)
}

// reportColumns are the six columns every shape-level select projects
// before ?shape.
func (c Context) reportColumns() []queryir.Projection {
	return c.project(queryir.ReportColumns...)
}

func varList(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = queryir.Var(n)
	}
	return strings.Join(parts, " ")
}

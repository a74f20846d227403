package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// Invocation is the compiled form of one top-level shape.
//
// A shape without scope declarations has no query; Diagnostics says why.
type Invocation struct {
	Shape       rdf.Term
	Query       string
	Fingerprint string
	Diagnostics []diag.Diagnostic
}

// HasQuery reports whether the shape produced a query.
func (i *Invocation) HasQuery() bool { return i.Query != "" }

// queryHeader declares the standard prefixes.
var queryHeader = func() string {
	var b strings.Builder
	for _, p := range vocab.StandardPrefixes {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", p.Name, p.Namespace)
	}
	return b.String()
}()

// CompileInvocation compiles shape as a top-level shape: its scope
// declarations bind ?this and its severity (default sh:Violation) is the
// ambient severity.
func (c *Compiler) CompileInvocation(shape rdf.Term) (*Invocation, error) {
	if shape == nil {
		return nil, diag.New(diag.CodeMissingShape, "shape reference is nil")
	}
	s := c.newSession()
	inv := &Invocation{Shape: shape}

	scopes := c.scopes(shape)
	if len(scopes) == 0 {
		s.diags.Add(diag.KindNoScope, shape, "shape declares no scope")
		inv.Diagnostics = s.diags.Items()
		c.logger.Debug("shape has no scope", "shape", shape.String())
		return inv, nil
	}

	severity := rdf.Term(vocab.Violation)
	if sev, ok := c.shapes.ValueOf(shape, vocab.Severity); ok {
		severity = sev
	}

	frag, err := s.compileShape(shape, rootContext(queryir.Union(scopes), severity))
	if err != nil {
		return nil, withShape(err, shape)
	}

	inv.Query = queryHeader + frag.Text
	inv.Fingerprint = queryir.Fingerprint(inv.Query)
	inv.Diagnostics = s.diags.Items()
	c.logger.Debug("compiled shape",
		"shape", shape.String(),
		"diagnostics", len(inv.Diagnostics),
		"fingerprint", inv.Fingerprint[:12],
	)
	return inv, nil
}

// CompileShapes compiles each shape in order.
//
// Definition errors and unbound names skip only the shape they occur in;
// they are returned joined next to the invocations that did compile. A
// contract violation stops compilation and is returned alone.
func (c *Compiler) CompileShapes(shapes []rdf.Term) ([]*Invocation, error) {
	var (
		out  []*Invocation
		errs []error
	)
	for _, shape := range shapes {
		inv, err := c.CompileInvocation(shape)
		if err != nil {
			if diag.IsContractViolation(err) {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		out = append(out, inv)
	}
	return out, errors.Join(errs...)
}

// scopes returns one pattern per scope declaration of shape.
func (c *Compiler) scopes(shape rdf.Term) []queryir.Pattern {
	var out []queryir.Pattern
	this := queryir.Var(queryir.ColThis)

	for _, n := range c.shapes.ValuesOf(shape, vocab.ScopeNode) {
		out = append(out, queryir.Raw("VALUES "+this+" { "+querysparql.Term(n)+" }"))
	}
	for _, class := range c.shapes.ValuesOf(shape, vocab.ScopeClass) {
		out = append(out, queryir.Raw(this+" rdf:type/rdfs:subClassOf* "+querysparql.Term(class)+" ."))
	}
	for _, p := range c.shapes.ValuesOf(shape, vocab.ScopePropertyObject) {
		out = append(out, distinctThis("?that "+querysparql.Term(p)+" ?this ."))
	}
	for _, p := range c.shapes.ValuesOf(shape, vocab.ScopePropertySubject) {
		out = append(out, distinctThis("?this "+querysparql.Term(p)+" ?that ."))
	}
	if anyTrue(c.shapes.ValuesOf(shape, vocab.ScopeAllObjects)) {
		out = append(out, distinctThis("?that ?property ?this ."))
	}
	if anyTrue(c.shapes.ValuesOf(shape, vocab.ScopeAllSubjects)) {
		out = append(out, distinctThis("?this ?property ?that ."))
	}
	for _, q := range c.shapes.ValuesOf(shape, vocab.ScopeSPARQL) {
		text := q.String()
		if lit, ok := q.(rdf.Literal); ok {
			text = lit.Lexical
		}
		out = append(out, &queryir.Select{
			Distinct:   true,
			Projection: []queryir.Projection{queryir.As("?scope", queryir.ColThis)},
			Where:      queryir.Raw(text),
		})
	}
	return out
}

func distinctThis(pattern string) *queryir.Select {
	return &queryir.Select{
		Distinct:   true,
		Projection: queryir.Vars(queryir.ColThis),
		Where:      queryir.Raw(pattern),
	}
}

func anyTrue(vals []rdf.Term) bool {
	for _, v := range vals {
		if rdf.IsTrue(v) {
			return true
		}
	}
	return false
}

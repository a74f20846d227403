// Package metamodel holds the catalog of validation templates.
//
// A Metamodel is read once from a graph and never changes afterwards; the
// compiler receives it explicitly and may share it between goroutines.
package metamodel

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/roach88/shaclq/internal/loader"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// Names bound by the compiler rather than by template arguments.
const (
	NameArgument   = "argument"
	NameMessage    = "message"
	NameOuter      = "outer"
	NameInner      = "inner"
	NameProjection = "projection"
	NameGroup      = "group"
	NameSeverity   = "severity"
	NameThis       = "this"
)

// ReservedNames lists every name a template may use without declaring it.
var ReservedNames = []string{
	NameArgument, NameMessage, NameOuter, NameInner,
	NameProjection, NameGroup, NameSeverity, NameThis,
}

// Argument is one declared template argument.
//
// Steps is the forward property path walked from the argument value in the
// shapes graph. Problem is set when the declaration could not be read; such
// an argument fails when the template is instantiated.
type Argument struct {
	Path     rdf.Term
	Steps    []rdf.IRI
	Name     string
	Default  rdf.Term
	Required bool
	Problem  string
}

// Template is a reusable validation rule attached to shapes through the
// property named by ID.
type Template struct {
	ID      rdf.IRI
	Args    []Argument
	Message string
	Pattern string
	Filter  string
	Having  string
	Query   string
}

// HasClauses reports whether the template is built from pattern, filter or
// having clauses.
func (t *Template) HasClauses() bool {
	return t.Pattern != "" || t.Filter != "" || t.Having != ""
}

// HasQuery reports whether the template carries a literal query body.
func (t *Template) HasQuery() bool { return t.Query != "" }

// Metamodel is an immutable, ordered template catalog.
type Metamodel struct {
	graph     rdf.Graph
	templates []*Template
	byID      map[rdf.IRI]*Template
}

// Templates returns the templates in definition order.
func (m *Metamodel) Templates() []*Template {
	out := make([]*Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// Template looks up a template by its property IRI.
func (m *Metamodel) Template(id rdf.IRI) (*Template, bool) {
	t, ok := m.byID[id]
	return t, ok
}

// Graph returns the graph the metamodel was read from. It also serves as a
// shapes graph when definitions are validated against the metamodel.
func (m *Metamodel) Graph() rdf.Graph { return m.graph }

// Load reads every IRI typed sh:ComponentTemplate from g.
func Load(g rdf.Graph) (*Metamodel, error) {
	m := &Metamodel{graph: g, byID: make(map[rdf.IRI]*Template)}
	for _, node := range g.NodesOfType(vocab.ComponentTemplate) {
		id, ok := node.(rdf.IRI)
		if !ok {
			continue
		}
		if _, dup := m.byID[id]; dup {
			continue
		}
		t, err := readTemplate(g, id)
		if err != nil {
			return nil, err
		}
		m.templates = append(m.templates, t)
		m.byID[id] = t
	}
	return m, nil
}

func readTemplate(g rdf.Graph, id rdf.IRI) (*Template, error) {
	t := &Template{ID: id}
	bodies := []struct {
		prop rdf.IRI
		dst  *string
	}{
		{vocab.TemplateMessage, &t.Message},
		{vocab.TemplatePattern, &t.Pattern},
		{vocab.TemplateFilter, &t.Filter},
		{vocab.TemplateHaving, &t.Having},
		{vocab.TemplateQuery, &t.Query},
	}
	for _, b := range bodies {
		v, ok := g.ValueOf(id, b.prop)
		if !ok {
			continue
		}
		lit, ok := v.(rdf.Literal)
		if !ok {
			return nil, fmt.Errorf("template %s: %s must be a literal, got %s", id, b.prop, v)
		}
		*b.dst = lit.Lexical
	}

	for _, decl := range g.ValuesOf(id, vocab.PropValues) {
		t.Args = append(t.Args, readArgument(g, decl))
	}
	return t, nil
}

// readArgument reads a (path argShape) pair.
func readArgument(g rdf.Graph, decl rdf.Term) Argument {
	elems, warn := rdf.ListElements(g, decl)
	if warn != nil || len(elems) != 2 {
		return Argument{Path: decl, Problem: "sh:propValues entry must be a two-element list (path argument)"}
	}
	path, shape := elems[0], elems[1]

	a := Argument{Path: path}
	if name, ok := g.ValueOf(shape, vocab.ArgumentName); ok {
		if lit, isLit := name.(rdf.Literal); isLit {
			a.Name = lit.Lexical
		}
	}
	if def, ok := g.ValueOf(shape, vocab.ArgumentDefault); ok {
		a.Default = def
	}
	if req, ok := g.ValueOf(shape, vocab.ArgumentRequired); ok {
		a.Required = rdf.IsTrue(req)
	}
	a.Steps, a.Problem = forwardSteps(g, path)
	return a
}

// forwardSteps flattens a path made only of forward properties.
func forwardSteps(g rdf.Graph, path rdf.Term) ([]rdf.IRI, string) {
	if iri, ok := path.(rdf.IRI); ok && iri != rdf.Nil {
		return []rdf.IRI{iri}, ""
	}
	if _, inverse := g.ValueOf(path, vocab.Inverse); inverse {
		return nil, "inverse steps are not supported in argument paths"
	}
	if !rdf.IsList(g, path) {
		return nil, fmt.Sprintf("argument path %s is not a property or a sequence of properties", path)
	}
	elems, warn := rdf.ListElements(g, path)
	if warn != nil {
		return nil, warn.Error()
	}
	if len(elems) == 0 {
		return nil, "argument path is empty"
	}
	steps := make([]rdf.IRI, 0, len(elems))
	for _, e := range elems {
		iri, ok := e.(rdf.IRI)
		if !ok {
			return nil, fmt.Sprintf("argument path step %s is not a forward property", e)
		}
		steps = append(steps, iri)
	}
	return steps, ""
}

//go:embed metamodel.cue
var defaultSource []byte

var loadDefault = sync.OnceValues(func() (*Metamodel, error) {
	l := loader.New()
	if err := l.LoadCUE("metamodel.cue", defaultSource); err != nil {
		return nil, fmt.Errorf("load default metamodel: %w", err)
	}
	return Load(l.Graph())
})

// Default returns the built-in metamodel.
func Default() (*Metamodel, error) {
	return loadDefault()
}

// LoadFiles reads a metamodel from definition files.
func LoadFiles(patterns ...string) (*Metamodel, error) {
	l, err := loader.Load(patterns...)
	if err != nil {
		return nil, fmt.Errorf("load metamodel: %w", err)
	}
	return Load(l.Graph())
}

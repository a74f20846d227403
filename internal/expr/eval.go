package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/shaclq/internal/querysparql"
	"github.com/roach88/shaclq/internal/rdf"
)

// Value is what a name is bound to: a graph term, or query text that has
// already been rendered.
type Value struct {
	Term rdf.Term
	Text string
}

// TermValue binds a graph term.
func TermValue(t rdf.Term) Value { return Value{Term: t} }

// TextValue binds pre-rendered query text.
func TextValue(s string) Value { return Value{Text: s} }

// IsText reports whether v holds text rather than a term.
func (v Value) IsText() bool { return v.Term == nil }

// Render returns the query-surface form of v.
func (v Value) Render() string {
	if v.IsText() {
		return v.Text
	}
	return querysparql.Term(v.Term)
}

// UnboundNameError reports a splice that references an undefined name.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("name %q is not bound", e.Name)
}

// Env supplies names and the compiler callbacks a splice may trigger.
type Env interface {
	// Lookup resolves a name in the current scope.
	Lookup(name string) (Value, bool)

	// Graph is the graph list cells and path nodes are read from.
	Graph() rdf.Graph

	// CompileShape compiles shape under the current context.
	CompileShape(shape rdf.Term) (string, error)

	// ScopeToPath compiles shape in a context reached through path,
	// prefixing its messages with message.
	ScopeToPath(path, message string, shape rdf.Term) (string, error)

	// Warn receives a malformed list read during evaluation. A non-nil
	// return aborts evaluation.
	Warn(w *rdf.MalformedList) error

	// EmptyPath is told about a path node that rendered to nothing.
	EmptyPath(node rdf.Term)
}

// Render parses and renders src in one step.
func Render(src string, env Env) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.Render(env)
}

// Render evaluates every splice left to right and returns the resulting
// text. Each splice's values are rendered and joined with a single space.
func (t *Template) Render(env Env) (string, error) {
	var b strings.Builder
	for _, seg := range t.Segments {
		if seg.Splice == nil {
			b.WriteString(seg.Text)
			continue
		}
		vals, err := eval(seg.Splice, env, false)
		if err != nil {
			return "", err
		}
		b.WriteString(join(vals, " "))
	}
	return b.String(), nil
}

func join(vals []Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Render()
	}
	return strings.Join(parts, sep)
}

// eval evaluates e. In list mode an identifier bound to an RDF list yields
// the list's elements instead of the list node.
func eval(e Expr, env Env, listMode bool) ([]Value, error) {
	switch v := e.(type) {
	case *Ident:
		return fetch(v.Name, env, listMode)

	case *StringLit:
		return []Value{TextValue(v.Value)}, nil

	case *ListExpr:
		items, err := eval(v.Elem, env, true)
		if err != nil {
			return nil, err
		}
		sep := " "
		if v.Joiner != nil {
			sep = v.Joiner.Value
		}
		return []Value{TextValue(join(items, sep))}, nil

	case *PathExpr:
		nodes, err := fetch(v.Name, env, listMode)
		if err != nil {
			return nil, err
		}
		out := make([]Value, 0, len(nodes))
		for _, n := range nodes {
			if n.IsText() {
				out = append(out, n)
				continue
			}
			text, warns := querysparql.Path(env.Graph(), n.Term)
			for _, w := range warns {
				if err := env.Warn(w); err != nil {
					return nil, err
				}
			}
			if text == "" {
				env.EmptyPath(n.Term)
			}
			out = append(out, TextValue(text))
		}
		return out, nil

	case *ShapeExpr:
		shapes, err := fetch(v.Name, env, listMode)
		if err != nil {
			return nil, err
		}
		out := make([]Value, 0, len(shapes))
		for _, s := range shapes {
			if s.IsText() {
				return nil, fmt.Errorf("s(%s): bound to text, not a shape", v.Name)
			}
			text, err := env.CompileShape(s.Term)
			if err != nil {
				return nil, err
			}
			out = append(out, TextValue(text))
		}
		return out, nil

	case *ContextExpr:
		paths, err := eval(v.Path, env, false)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, nil
		}
		path := paths[0].Render()
		message := querysparql.StringLiteral("In path " + path + " ")

		shapes, err := fetch(v.Name, env, listMode)
		if err != nil {
			return nil, err
		}
		out := make([]Value, 0, len(shapes))
		for _, s := range shapes {
			if s.IsText() {
				return nil, fmt.Errorf("c(..., %s): bound to text, not a shape", v.Name)
			}
			text, err := env.ScopeToPath(path, message, s.Term)
			if err != nil {
				return nil, err
			}
			out = append(out, TextValue(text))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown expression type %T", e)
	}
}

func fetch(name string, env Env, listMode bool) ([]Value, error) {
	v, ok := env.Lookup(name)
	if !ok {
		return nil, &UnboundNameError{Name: name}
	}
	if !listMode || v.IsText() || !rdf.IsList(env.Graph(), v.Term) {
		return []Value{v}, nil
	}
	elems, warn := rdf.ListElements(env.Graph(), v.Term)
	if warn != nil {
		if err := env.Warn(warn); err != nil {
			return nil, err
		}
	}
	out := make([]Value, len(elems))
	for i, el := range elems {
		out[i] = TermValue(el)
	}
	return out, nil
}

package querysparql

import (
	"strings"

	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

// Path renders a property-path node in SPARQL path syntax.
//
// A list node is a sequence path joined with "/"; a node carrying
// sh:inverse renders as "^" followed by its target; sh:alternativePath,
// sh:zeroOrMorePath, sh:oneOrMorePath and sh:zeroOrOnePath map to "|",
// "*", "+" and "?". Anything else renders as a term.
//
// rdf:nil renders as the empty string. Malformed lists inside the path are
// returned as warnings alongside the partial rendering.
func Path(g rdf.Graph, node rdf.Term) (string, []*rdf.MalformedList) {
	r := &pathRenderer{g: g}
	return r.path(node), r.warnings
}

type pathRenderer struct {
	g        rdf.Graph
	warnings []*rdf.MalformedList
}

func (r *pathRenderer) path(node rdf.Term) string {
	if node == nil || node == rdf.Term(rdf.Nil) {
		return ""
	}
	if rdf.IsList(r.g, node) {
		return r.sequence(node)
	}
	return r.step(node)
}

func (r *pathRenderer) sequence(head rdf.Term) string {
	return strings.Join(r.each(head, r.step), "/")
}

func (r *pathRenderer) each(head rdf.Term, render func(rdf.Term) string) []string {
	elems, warn := rdf.ListElements(r.g, head)
	if warn != nil {
		r.warnings = append(r.warnings, warn)
	}
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		parts = append(parts, render(e))
	}
	return parts
}

func (r *pathRenderer) step(node rdf.Term) string {
	if _, isIRI := node.(rdf.IRI); isIRI {
		return Term(node)
	}
	if inv, ok := r.g.ValueOf(node, vocab.Inverse); ok {
		return "^" + r.primary(inv)
	}
	if alts, ok := r.g.ValueOf(node, vocab.AlternativePath); ok {
		return "(" + strings.Join(r.each(alts, r.path), "|") + ")"
	}
	if inner, ok := r.g.ValueOf(node, vocab.ZeroOrMorePath); ok {
		return r.primary(inner) + "*"
	}
	if inner, ok := r.g.ValueOf(node, vocab.OneOrMorePath); ok {
		return r.primary(inner) + "+"
	}
	if inner, ok := r.g.ValueOf(node, vocab.ZeroOrOnePath); ok {
		return r.primary(inner) + "?"
	}
	if rdf.IsList(r.g, node) {
		return "(" + r.sequence(node) + ")"
	}
	return Term(node)
}

// primary renders node so that a following modifier binds to all of it.
func (r *pathRenderer) primary(node rdf.Term) string {
	if _, isIRI := node.(rdf.IRI); isIRI {
		return Term(node)
	}
	s := r.path(node)
	if enclosed(s) {
		return s
	}
	return "(" + s + ")"
}

// enclosed reports whether s is one parenthesised group.
func enclosed(s string) bool {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return false
	}
	depth := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return true
}

package loader

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

var (
	prefixName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$|^$`)
	localName  = regexp.MustCompile(`^[A-Za-z0-9_.%-][A-Za-z0-9_.%/#-]*$|^$`)
)

// document converts one parsed document into triples.
type document struct {
	file     string
	id       int
	graph    *rdf.MemGraph
	prefixes map[string]string
	blanks   int
}

func (d *document) errorf(code string, pos Position, format string, args ...any) error {
	return &LoadError{File: d.file, Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// build reads prefixes first, then nodes, and returns the prefixes the
// document declared.
func (d *document) build(root *value) ([]vocab.Prefix, error) {
	if root.kind == kindNull {
		return nil, nil
	}
	if root.kind != kindMap {
		return nil, d.errorf(ErrCodeStructure, root.pos, "document must be a struct, got %s", root.kind)
	}
	for _, f := range root.fields {
		switch f.key {
		case "prefixes", "nodes":
		default:
			return nil, d.errorf(ErrCodeStructure, f.pos, "unknown top-level field %q", f.key)
		}
	}

	var declared []vocab.Prefix
	if ps, ok := root.lookup("prefixes"); ok && ps.kind != kindNull {
		if ps.kind != kindMap {
			return nil, d.errorf(ErrCodeStructure, ps.pos, "prefixes must be a struct, got %s", ps.kind)
		}
		for _, f := range ps.fields {
			if !prefixName.MatchString(f.key) {
				return nil, d.errorf(ErrCodePrefix, f.pos, "invalid prefix name %q", f.key)
			}
			if f.val.kind != kindString {
				return nil, d.errorf(ErrCodePrefix, f.val.pos, "namespace for prefix %q must be a string", f.key)
			}
			d.prefixes[f.key] = f.val.text
			declared = append(declared, vocab.Prefix{Name: f.key, Namespace: f.val.text})
		}
	}

	nodes, ok := root.lookup("nodes")
	if !ok || nodes.kind == kindNull {
		return declared, nil
	}
	if nodes.kind != kindMap {
		return nil, d.errorf(ErrCodeStructure, nodes.pos, "nodes must be a struct, got %s", nodes.kind)
	}
	for _, f := range nodes.fields {
		subject, err := d.subject(f.key, f.pos)
		if err != nil {
			return nil, err
		}
		if f.val.kind == kindNull {
			continue
		}
		if f.val.kind != kindMap {
			return nil, d.errorf(ErrCodeStructure, f.val.pos, "properties of %s must be a struct, got %s", f.key, f.val.kind)
		}
		if err := d.properties(subject, f.val); err != nil {
			return nil, err
		}
	}
	return declared, nil
}

func (d *document) properties(subject rdf.Term, props *value) error {
	for _, f := range props.fields {
		predicate, err := d.predicate(f.key, f.pos)
		if err != nil {
			return err
		}
		if err := d.objects(subject, predicate, f.val); err != nil {
			return err
		}
	}
	return nil
}

// objects adds one triple per value; a plain list means several values.
func (d *document) objects(subject rdf.Term, predicate rdf.IRI, v *value) error {
	if v.kind == kindList {
		for _, item := range v.items {
			if item.kind == kindList {
				return d.errorf(ErrCodeValue, item.pos, "nested list under %s; use {\"@list\": [...]} for an RDF list", predicate)
			}
			if err := d.objects(subject, predicate, item); err != nil {
				return err
			}
		}
		return nil
	}
	if v.kind == kindNull {
		return nil
	}
	object, err := d.term(v)
	if err != nil {
		return err
	}
	d.graph.Add(subject, predicate, object)
	return nil
}

// term converts a single value into a graph term, adding any triples a
// nested structure needs.
func (d *document) term(v *value) (rdf.Term, error) {
	switch v.kind {
	case kindString:
		if t, ok := d.reference(v.text); ok {
			return t, nil
		}
		return rdf.String(norm.NFC.String(v.text)), nil
	case kindInt:
		return rdf.NewLiteral(v.text, rdf.XSDInteger), nil
	case kindFloat:
		return rdf.NewLiteral(v.text, rdf.XSDDecimal), nil
	case kindBool:
		return rdf.NewLiteral(v.text, rdf.XSDBoolean), nil
	case kindMap:
		return d.structure(v)
	default:
		return nil, d.errorf(ErrCodeValue, v.pos, "a %s cannot be a single value", v.kind)
	}
}

func (d *document) structure(v *value) (rdf.Term, error) {
	if items, ok := v.lookup("@list"); ok {
		if len(v.fields) != 1 {
			return nil, d.errorf(ErrCodeValue, v.pos, "@list must be the only key")
		}
		if items.kind != kindList {
			return nil, d.errorf(ErrCodeValue, items.pos, "@list must hold a list, got %s", items.kind)
		}
		return d.list(items.items)
	}

	if id, ok := v.lookup("@id"); ok {
		if len(v.fields) != 1 {
			return nil, d.errorf(ErrCodeValue, v.pos, "@id must be the only key")
		}
		if id.kind != kindString {
			return nil, d.errorf(ErrCodeValue, id.pos, "@id must be a string")
		}
		t, ok := d.reference(id.text)
		if !ok {
			return nil, d.errorf(ErrCodeNode, id.pos, "%q is not a node reference", id.text)
		}
		return t, nil
	}

	if lex, ok := v.lookup("@value"); ok {
		return d.literal(v, lex)
	}

	b := d.freshBlank()
	if err := d.properties(b, v); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *document) literal(v, lex *value) (rdf.Term, error) {
	if lex.kind == kindList || lex.kind == kindMap || lex.kind == kindNull {
		return nil, d.errorf(ErrCodeValue, lex.pos, "@value must be a scalar, got %s", lex.kind)
	}
	text := norm.NFC.String(lex.text)

	dt, hasType := v.lookup("@type")
	lang, hasLang := v.lookup("@language")
	for _, f := range v.fields {
		switch f.key {
		case "@value", "@type", "@language":
		default:
			return nil, d.errorf(ErrCodeValue, f.pos, "unexpected key %q in literal", f.key)
		}
	}
	switch {
	case hasType && hasLang:
		return nil, d.errorf(ErrCodeValue, v.pos, "a literal cannot have both @type and @language")
	case hasType:
		if dt.kind != kindString {
			return nil, d.errorf(ErrCodeValue, dt.pos, "@type must be a string")
		}
		iri, err := d.iri(dt.text, dt.pos)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteral(text, iri), nil
	case hasLang:
		if lang.kind != kindString {
			return nil, d.errorf(ErrCodeValue, lang.pos, "@language must be a string")
		}
		return rdf.NewLangLiteral(text, lang.text), nil
	}
	if lex.kind == kindString {
		return rdf.String(text), nil
	}
	return d.term(lex)
}

// list builds an RDF list from items and returns its head.
func (d *document) list(items []*value) (rdf.Term, error) {
	var head rdf.Term = rdf.Nil
	cells := make([]rdf.Term, len(items))
	for i := range items {
		cells[i] = d.freshBlank()
	}
	for i, item := range items {
		if item.kind == kindList {
			return nil, d.errorf(ErrCodeValue, item.pos, "nested list in @list; wrap it in {\"@list\": [...]}")
		}
		t, err := d.term(item)
		if err != nil {
			return nil, err
		}
		d.graph.Add(cells[i], rdf.First, t)
		rest := rdf.Term(rdf.Nil)
		if i+1 < len(cells) {
			rest = cells[i+1]
		}
		d.graph.Add(cells[i], rdf.Rest, rest)
	}
	if len(cells) > 0 {
		head = cells[0]
	}
	return head, nil
}

func (d *document) freshBlank() rdf.BlankNode {
	d.blanks++
	return rdf.BlankNode(fmt.Sprintf("d%d_b%d", d.id, d.blanks))
}

func (d *document) subject(s string, pos Position) (rdf.Term, error) {
	if t, ok := d.reference(s); ok {
		return t, nil
	}
	return nil, d.errorf(ErrCodeNode, pos, "subject %q is not an <iri>, CURIE or blank node label", s)
}

func (d *document) predicate(s string, pos Position) (rdf.IRI, error) {
	if s == "a" {
		return rdf.Type, nil
	}
	return d.iri(s, pos)
}

func (d *document) iri(s string, pos Position) (rdf.IRI, error) {
	t, ok := d.reference(s)
	if !ok {
		if prefix, _, found := strings.Cut(s, ":"); found && prefixName.MatchString(prefix) {
			return "", d.errorf(ErrCodePrefix, pos, "undeclared prefix %q in %q", prefix, s)
		}
		return "", d.errorf(ErrCodeNode, pos, "%q is not an <iri> or CURIE", s)
	}
	iri, ok := t.(rdf.IRI)
	if !ok {
		return "", d.errorf(ErrCodeNode, pos, "%q must be an IRI, not a blank node", s)
	}
	return iri, nil
}

// reference resolves s as a node when it is written as one.
func (d *document) reference(s string) (rdf.Term, bool) {
	switch {
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2:
		inner := s[1 : len(s)-1]
		if strings.ContainsAny(inner, " <>\"{}|\\^`\n\t") {
			return nil, false
		}
		return rdf.IRI(inner), true
	case strings.HasPrefix(s, "_:") && len(s) > 2:
		label := s[2:]
		if !localName.MatchString(label) {
			return nil, false
		}
		return rdf.BlankNode(fmt.Sprintf("d%d_%s", d.id, label)), true
	}
	prefix, local, found := strings.Cut(s, ":")
	if !found || !prefixName.MatchString(prefix) || !localName.MatchString(local) {
		return nil, false
	}
	ns, ok := d.prefixes[prefix]
	if !ok {
		return nil, false
	}
	return rdf.IRI(ns + local), true
}

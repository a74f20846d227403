package rdf

import (
	"strings"
)

// Core namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// RDF and RDFS terms used by the compiler.
const (
	Type  IRI = RDFNamespace + "type"
	First IRI = RDFNamespace + "first"
	Rest  IRI = RDFNamespace + "rest"
	Nil   IRI = RDFNamespace + "nil"

	SubClassOf IRI = RDFSNamespace + "subClassOf"
)

// XSD datatypes.
const (
	XSDString  IRI = XSDNamespace + "string"
	XSDBoolean IRI = XSDNamespace + "boolean"
	XSDInteger IRI = XSDNamespace + "integer"
	XSDDecimal IRI = XSDNamespace + "decimal"
	XSDDouble  IRI = XSDNamespace + "double"
)

// Term is a sealed interface over graph values.
// Only IRI, BlankNode and Literal implement it.
type Term interface {
	termNode()

	// String returns the N-Triples form, used for logging and map keys.
	String() string
}

// IRI is an absolute resource identifier.
type IRI string

func (IRI) termNode() {}

func (i IRI) String() string { return "<" + string(i) + ">" }

// BlankNode is an anonymous node identified by a document-scoped label.
type BlankNode string

func (BlankNode) termNode() {}

func (b BlankNode) String() string { return "_:" + string(b) }

// Literal is a lexical value with an optional datatype or language tag.
// A zero Datatype with no Lang is a plain string literal.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (Literal) termNode() {}

func (l Literal) String() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(EscapeString(l.Lexical))
	b.WriteByte('"')
	switch {
	case l.Lang != "":
		b.WriteByte('@')
		b.WriteString(l.Lang)
	case l.Datatype != "":
		b.WriteString("^^")
		b.WriteString(l.Datatype.String())
	}
	return b.String()
}

// NewLiteral creates a typed literal.
func NewLiteral(lexical string, datatype IRI) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewLangLiteral creates a language-tagged literal.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: lang}
}

// String creates a plain string literal.
func String(s string) Literal {
	return Literal{Lexical: s}
}

// Boolean creates an xsd:boolean literal.
func Boolean(v bool) Literal {
	if v {
		return Literal{Lexical: "true", Datatype: XSDBoolean}
	}
	return Literal{Lexical: "false", Datatype: XSDBoolean}
}

// IsTrue reports whether t is a literal whose lexical form reads as true.
// Both xsd:boolean "true" and the integer 1 qualify.
func IsTrue(t Term) bool {
	lit, ok := t.(Literal)
	if !ok {
		return false
	}
	switch strings.TrimSpace(lit.Lexical) {
	case "true", "1":
		return true
	}
	return false
}

// EscapeString escapes a lexical form for use between double quotes.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

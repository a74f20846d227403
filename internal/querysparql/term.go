package querysparql

import (
	"regexp"

	"github.com/roach88/shaclq/internal/rdf"
)

var (
	integerLexical = regexp.MustCompile(`^[+-]?[0-9]+$`)
	// A trailing point is only valid before an exponent: "5." lexes as the
	// integer 5 followed by the triple terminator.
	decimalLexical = regexp.MustCompile(`^[+-]?([0-9]*\.[0-9]+|[0-9]+)$`)
	doubleLexical  = regexp.MustCompile(`^[+-]?(([0-9]+(\.[0-9]*)?|\.[0-9]+)[eE][+-]?[0-9]+|[0-9]*\.[0-9]+|[0-9]+)$`)
)

// Term renders a graph value for splicing into query text.
//
//	IRI                               <iri>
//	blank node                        "label" (an opaque string)
//	xsd:integer / decimal / double    bare lexical form
//	language-tagged literal           "lex"@lang
//	other typed literal               "lex"^^<datatype>
//	plain literal                     "lex"
//
// Numeric literals whose lexical form is not valid for their datatype fall
// back to the typed form.
func Term(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return v.String()
	case rdf.BlankNode:
		return StringLiteral(string(v))
	case rdf.Literal:
		if bareNumeric(v) {
			return v.Lexical
		}
		return v.String()
	default:
		return ""
	}
}

// StringLiteral renders text as a double-quoted SPARQL string.
func StringLiteral(s string) string {
	return `"` + rdf.EscapeString(s) + `"`
}

func bareNumeric(l rdf.Literal) bool {
	switch l.Datatype {
	case rdf.XSDInteger:
		return integerLexical.MatchString(l.Lexical)
	case rdf.XSDDecimal:
		return decimalLexical.MatchString(l.Lexical)
	case rdf.XSDDouble:
		return doubleLexical.MatchString(l.Lexical)
	}
	return false
}

package querysparql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shaclq/internal/queryir"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

const ex = "http://example.org/"

func TestTerm(t *testing.T) {
	tests := []struct {
		name string
		term rdf.Term
		want string
	}{
		{"iri", rdf.IRI(ex + "a"), "<http://example.org/a>"},
		{"blank node is an opaque string", rdf.BlankNode("b3"), `"b3"`},
		{"integer", rdf.NewLiteral("42", rdf.XSDInteger), "42"},
		{"negative integer", rdf.NewLiteral("-7", rdf.XSDInteger), "-7"},
		{"decimal", rdf.NewLiteral("1.5", rdf.XSDDecimal), "1.5"},
		{"decimal without integer part", rdf.NewLiteral(".5", rdf.XSDDecimal), ".5"},
		{"decimal with trailing point keeps type", rdf.NewLiteral("5.", rdf.XSDDecimal), `"5."^^<http://www.w3.org/2001/XMLSchema#decimal>`},
		{"double", rdf.NewLiteral("1.0E3", rdf.XSDDouble), "1.0E3"},
		{"double with trailing point before exponent", rdf.NewLiteral("5.e3", rdf.XSDDouble), "5.e3"},
		{"double with trailing point keeps type", rdf.NewLiteral("5.", rdf.XSDDouble), `"5."^^<http://www.w3.org/2001/XMLSchema#double>`},
		{"double INF keeps type", rdf.NewLiteral("INF", rdf.XSDDouble), `"INF"^^<http://www.w3.org/2001/XMLSchema#double>`},
		{"invalid integer keeps type", rdf.NewLiteral("abc", rdf.XSDInteger), `"abc"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"boolean", rdf.Boolean(true), `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{"plain", rdf.String("hello"), `"hello"`},
		{"lang", rdf.NewLangLiteral("bonjour", "fr"), `"bonjour"@fr`},
		{"quotes escaped", rdf.String(`a "b"`), `"a \"b\""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Term(tt.term))
		})
	}
}

func TestStringLiteral(t *testing.T) {
	assert.Equal(t, `"In path <http://example.org/p> "`, StringLiteral("In path <http://example.org/p> "))
	assert.Equal(t, `"back\\slash"`, StringLiteral(`back\slash`))
}

func TestRender_Select(t *testing.T) {
	sel := &queryir.Select{
		Comment:    "TEMPLATE <t>",
		Projection: append(queryir.Vars("this", "message"), queryir.As("?this", "object")),
		Where: queryir.Seq{
			nil,
			queryir.Union{queryir.Raw("VALUES ?this { <a> }")},
			queryir.Raw("?this <p> ?v ."),
			queryir.Filter{Expr: "! ( ?v > 1 )"},
			queryir.Values{Vars: []string{"message"}, Rows: [][]string{{`"m"`}}},
		},
	}

	want := "# TEMPLATE <t>\n" +
		"SELECT ?this ?message (?this AS ?object)\n" +
		"WHERE { { VALUES ?this { <a> } }\n" +
		"?this <p> ?v .\n" +
		"FILTER ( ! ( ?v > 1 ) )\n" +
		"VALUES ( ?message ) { ( \"m\" ) } }"
	assert.Equal(t, want, Render(sel))
}

func TestRender_GroupByHaving(t *testing.T) {
	sel := &queryir.Select{
		Distinct:   true,
		Projection: queryir.Vars("this"),
		Where:      queryir.Raw("?this ?p ?v ."),
		GroupBy:    []string{"this"},
		Having:     "COUNT(?v) > 2",
	}
	assert.Equal(t, "SELECT DISTINCT ?this\nWHERE { ?this ?p ?v . }\nGROUP BY ?this HAVING ( COUNT(?v) > 2 )", Render(sel))
}

func TestRender_EmptyWhere(t *testing.T) {
	sel := &queryir.Select{Projection: queryir.Vars("this")}
	assert.Equal(t, "SELECT ?this\nWHERE { }", Render(sel))
}

func TestRender_MinusAndUnion(t *testing.T) {
	p := queryir.Minus{
		Left: queryir.Raw("?this a <C> ."),
		Right: []queryir.Pattern{
			queryir.Fragment{Text: "SELECT ?this WHERE { ?this <bad> ?x . }"},
			queryir.Group{queryir.Raw("?this <worse> ?y .")},
		},
	}

	want := "{ { ?this a <C> . }\n" +
		"MINUS { SELECT ?this WHERE { ?this <bad> ?x . } }\n" +
		"MINUS { ?this <worse> ?y . } }"
	assert.Equal(t, want, RenderPattern(p))

	u := queryir.Union{queryir.Raw("?this <a> ?x ."), queryir.Fragment{Text: "SELECT ?this WHERE { }"}}
	assert.Equal(t, "{ ?this <a> ?x . }\nUNION\n{ SELECT ?this WHERE { } }", RenderPattern(u))
}

func TestRender_MinusWithoutRight(t *testing.T) {
	p := queryir.Minus{Left: queryir.Raw("?this a <C> .")}
	assert.Equal(t, "{ ?this a <C> . }", RenderPattern(p))
}

func TestRender_BindAndGroup(t *testing.T) {
	p := queryir.Seq{
		queryir.Group{},
		queryir.Bind{Expr: "CONCAT(\"a\", ?m)", Var: "message"},
	}
	assert.Equal(t, "{ }\nBIND ( CONCAT(\"a\", ?m) AS ?message )", RenderPattern(p))
}

func TestBuild(t *testing.T) {
	sel := &queryir.Select{Projection: queryir.Vars("parent", "this")}
	f := Build(sel)
	assert.Equal(t, "SELECT ?parent ?this\nWHERE { }", f.Text)
	assert.Equal(t, []string{"parent", "this"}, f.Columns)
}

func list(g *rdf.MemGraph, label string, items ...rdf.Term) rdf.Term {
	var head rdf.Term = rdf.Nil
	for i := len(items) - 1; i >= 0; i-- {
		cell := rdf.BlankNode(label + string(rune('0'+i)))
		g.Add(cell, rdf.First, items[i])
		g.Add(cell, rdf.Rest, head)
		head = cell
	}
	return head
}

func TestPath(t *testing.T) {
	g := rdf.NewMemGraph()
	p := rdf.IRI(ex + "p")
	q := rdf.IRI(ex + "q")

	inv := rdf.BlankNode("inv")
	g.Add(inv, vocab.Inverse, p)

	seq := list(g, "seq", p, inv, q)

	alt := rdf.BlankNode("alt")
	g.Add(alt, vocab.AlternativePath, list(g, "alts", p, q))

	star := rdf.BlankNode("star")
	g.Add(star, vocab.ZeroOrMorePath, p)

	plusSeq := rdf.BlankNode("plus")
	g.Add(plusSeq, vocab.OneOrMorePath, list(g, "ps", p, q))

	opt := rdf.BlankNode("opt")
	g.Add(opt, vocab.ZeroOrOnePath, alt)

	tests := []struct {
		name string
		node rdf.Term
		want string
	}{
		{"single", p, "<http://example.org/p>"},
		{"inverse", inv, "^<http://example.org/p>"},
		{"sequence", seq, "<http://example.org/p>/^<http://example.org/p>/<http://example.org/q>"},
		{"alternative", alt, "(<http://example.org/p>|<http://example.org/q>)"},
		{"zero or more", star, "<http://example.org/p>*"},
		{"one or more over sequence", plusSeq, "(<http://example.org/p>/<http://example.org/q>)+"},
		{"zero or one over alternative", opt, "(<http://example.org/p>|<http://example.org/q>)?"},
		{"empty path", rdf.Nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warns := Path(g, tt.node)
			assert.Empty(t, warns)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPath_MalformedList(t *testing.T) {
	g := rdf.NewMemGraph()
	g.Add(rdf.BlankNode("c0"), rdf.First, rdf.IRI(ex+"p"))
	g.Add(rdf.BlankNode("c0"), rdf.Rest, rdf.BlankNode("c1"))
	g.Add(rdf.BlankNode("c1"), rdf.First, rdf.IRI(ex+"q"))

	got, warns := Path(g, rdf.BlankNode("c0"))
	require.Len(t, warns, 1)
	assert.Equal(t, "<http://example.org/p>/<http://example.org/q>", got)
}

func TestEnclosed(t *testing.T) {
	assert.True(t, enclosed("(a|b)"))
	assert.False(t, enclosed("(a)/(b)"))
	assert.False(t, enclosed("a"))
}

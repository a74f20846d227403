package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/"

func buildList(g *MemGraph, label string, items ...Term) Term {
	if len(items) == 0 {
		return Nil
	}
	var head Term = Nil
	for i := len(items) - 1; i >= 0; i-- {
		cell := BlankNode(label + string(rune('a'+i)))
		g.Add(cell, First, items[i])
		g.Add(cell, Rest, head)
		head = cell
	}
	return head
}

func TestTermString(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"iri", IRI(ex + "a"), "<http://example.org/a>"},
		{"blank", BlankNode("b0"), "_:b0"},
		{"plain", String("hi"), `"hi"`},
		{"typed", NewLiteral("5", XSDInteger), `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"lang", NewLangLiteral("chat", "fr"), `"chat"@fr`},
		{"escaped", String("say \"x\"\n"), `"say \"x\"\n"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestTermsAreComparable(t *testing.T) {
	var a Term = NewLiteral("1", XSDInteger)
	var b Term = NewLiteral("1", XSDInteger)
	assert.True(t, a == b)
	assert.False(t, Term(IRI(ex+"a")) == Term(BlankNode(ex+"a")))
}

func TestIsTrue(t *testing.T) {
	assert.True(t, IsTrue(Boolean(true)))
	assert.True(t, IsTrue(NewLiteral("1", XSDInteger)))
	assert.False(t, IsTrue(Boolean(false)))
	assert.False(t, IsTrue(IRI(ex+"true")))
}

func TestMemGraph_Lookups(t *testing.T) {
	g := NewMemGraph()
	s := IRI(ex + "s")
	p := IRI(ex + "p")

	assert.True(t, g.Add(s, p, String("one")))
	assert.True(t, g.Add(s, p, String("two")))
	assert.False(t, g.Add(s, p, String("one")), "duplicate triple is ignored")
	g.Add(s, Type, IRI(ex+"C"))
	g.Add(IRI(ex+"t"), Type, IRI(ex+"C"))

	v, ok := g.ValueOf(s, p)
	require.True(t, ok)
	assert.Equal(t, String("one"), v)

	assert.Equal(t, []Term{String("one"), String("two")}, g.ValuesOf(s, p))
	assert.Nil(t, g.ValuesOf(s, IRI(ex+"missing")))

	_, ok = g.ValueOf(s, IRI(ex+"missing"))
	assert.False(t, ok)

	assert.Equal(t, []Term{s, IRI(ex + "t")}, g.NodesOfType(IRI(ex+"C")))
	assert.Equal(t, 4, g.Len())
}

func TestMemGraph_ValuesOfReturnsCopy(t *testing.T) {
	g := NewMemGraph()
	s := IRI(ex + "s")
	p := IRI(ex + "p")
	g.Add(s, p, String("one"))

	vals := g.ValuesOf(s, p)
	vals[0] = String("changed")

	v, _ := g.ValueOf(s, p)
	assert.Equal(t, String("one"), v)
}

func TestMemGraph_AddAll(t *testing.T) {
	a := NewMemGraph()
	a.Add(IRI(ex+"s"), IRI(ex+"p"), String("x"))
	b := NewMemGraph()
	b.Add(IRI(ex+"s"), IRI(ex+"p"), String("x"))
	b.Add(IRI(ex+"s"), IRI(ex+"p"), String("y"))

	a.AddAll(b)
	assert.Equal(t, 2, a.Len())
}

func TestListElements(t *testing.T) {
	g := NewMemGraph()
	head := buildList(g, "l", IRI(ex+"a"), IRI(ex+"b"), IRI(ex+"c"))

	elems, warn := ListElements(g, head)
	assert.Nil(t, warn)
	assert.Equal(t, []Term{IRI(ex + "a"), IRI(ex + "b"), IRI(ex + "c")}, elems)
	assert.True(t, IsList(g, head))
}

func TestListElements_Empty(t *testing.T) {
	g := NewMemGraph()
	elems, warn := ListElements(g, Nil)
	assert.Nil(t, warn)
	assert.Empty(t, elems)
	assert.True(t, IsList(g, Nil))
	assert.False(t, IsList(g, IRI(ex+"plain")))
}

func TestListElements_MissingRest(t *testing.T) {
	g := NewMemGraph()
	g.Add(BlankNode("c1"), First, IRI(ex+"a"))
	g.Add(BlankNode("c1"), Rest, BlankNode("c2"))
	g.Add(BlankNode("c2"), First, IRI(ex+"b"))

	elems, warn := ListElements(g, BlankNode("c1"))
	require.NotNil(t, warn)
	assert.Equal(t, "missing rdf:rest", warn.Reason)
	assert.Equal(t, 2, warn.Read)
	assert.Equal(t, []Term{IRI(ex + "a"), IRI(ex + "b")}, elems)
	assert.Contains(t, warn.Error(), "malformed list _:c1")
}

func TestListElements_Cycle(t *testing.T) {
	g := NewMemGraph()
	g.Add(BlankNode("c1"), First, IRI(ex+"a"))
	g.Add(BlankNode("c1"), Rest, BlankNode("c1"))

	elems, warn := ListElements(g, BlankNode("c1"))
	require.NotNil(t, warn)
	assert.Equal(t, "cycle", warn.Reason)
	assert.Equal(t, []Term{IRI(ex + "a")}, elems)
}

package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

const ex = "http://example.org/"

const ageShapeCUE = `
prefixes: ex: "http://example.org/"
nodes: {
	"ex:AgeShape": {
		a:                  "sh:Shape"
		"sh:scopeClass":    "ex:Person"
		"sh:minInclusive":  18
		"sh:severity":      "sh:Warning"
	}
}
`

const ageShapeYAML = `
prefixes:
  ex: http://example.org/
nodes:
  ex:AgeShape:
    a: sh:Shape
    sh:scopeClass: ex:Person
    sh:minInclusive: 18
    sh:severity: sh:Warning
`

func TestLoad_CUEAndYAMLAgree(t *testing.T) {
	fromCUE := New()
	require.NoError(t, fromCUE.LoadCUE("age.cue", []byte(ageShapeCUE)))

	fromYAML := New()
	require.NoError(t, fromYAML.LoadYAML("age.yaml", []byte(ageShapeYAML)))

	assert.Equal(t, fromCUE.Graph().Triples(), fromYAML.Graph().Triples())

	shape := rdf.IRI(ex + "AgeShape")
	g := fromYAML.Graph()
	assert.Equal(t, []rdf.Term{shape}, g.NodesOfType(vocab.Shape))
	v, ok := g.ValueOf(shape, vocab.ScopeClass)
	require.True(t, ok)
	assert.Equal(t, rdf.IRI(ex+"Person"), v)
	v, _ = g.ValueOf(shape, rdf.IRI(vocab.Namespace+"minInclusive"))
	assert.Equal(t, rdf.NewLiteral("18", rdf.XSDInteger), v)
	v, _ = g.ValueOf(shape, vocab.Severity)
	assert.Equal(t, vocab.Warning, v)
}

func TestLoad_ScalarKinds(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadYAML("s.yaml", []byte(`
nodes:
  <http://example.org/s>:
    <http://example.org/int>: 3
    <http://example.org/float>: 2.5
    <http://example.org/bool>: true
    <http://example.org/str>: hello world
    <http://example.org/notCurie>: "Value is: 3"
    <http://example.org/skipped>: null
`)))
	g := l.Graph()
	s := rdf.IRI(ex + "s")

	get := func(p string) rdf.Term {
		v, ok := g.ValueOf(s, rdf.IRI(ex+p))
		require.True(t, ok, p)
		return v
	}
	assert.Equal(t, rdf.NewLiteral("3", rdf.XSDInteger), get("int"))
	assert.Equal(t, rdf.NewLiteral("2.5", rdf.XSDDecimal), get("float"))
	assert.Equal(t, rdf.NewLiteral("true", rdf.XSDBoolean), get("bool"))
	assert.Equal(t, rdf.String("hello world"), get("str"))
	assert.Equal(t, rdf.String("Value is: 3"), get("notCurie"))
	_, ok := g.ValueOf(s, rdf.IRI(ex+"skipped"))
	assert.False(t, ok)
}

func TestLoad_ListsAndStructures(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadCUE("l.cue", []byte(`
prefixes: ex: "http://example.org/"
nodes: {
	"ex:s": {
		"ex:many": ["ex:a", "ex:b"]
		"ex:seq": {"@list": ["ex:a", "ex:b"]}
		"ex:empty": {"@list": []}
		"ex:nested": {
			"sh:inverse": "ex:parent"
		}
		"ex:typed": {"@value": "2020-01-01", "@type": "xsd:date"}
		"ex:lang": {"@value": "chat", "@language": "fr"}
		"ex:lit": {"@value": "ex:notANode"}
		"ex:node": {"@id": "_:x"}
	}
	"_:x": {
		"ex:label": "blank"
	}
}
`)))
	g := l.Graph()
	s := rdf.IRI(ex + "s")

	assert.Equal(t, []rdf.Term{rdf.IRI(ex + "a"), rdf.IRI(ex + "b")}, g.ValuesOf(s, rdf.IRI(ex+"many")))

	head, ok := g.ValueOf(s, rdf.IRI(ex+"seq"))
	require.True(t, ok)
	elems, warn := rdf.ListElements(g, head)
	require.Nil(t, warn)
	assert.Equal(t, []rdf.Term{rdf.IRI(ex + "a"), rdf.IRI(ex + "b")}, elems)

	empty, _ := g.ValueOf(s, rdf.IRI(ex+"empty"))
	assert.Equal(t, rdf.Term(rdf.Nil), empty)

	nested, _ := g.ValueOf(s, rdf.IRI(ex+"nested"))
	_, isBlank := nested.(rdf.BlankNode)
	require.True(t, isBlank)
	inv, _ := g.ValueOf(nested, vocab.Inverse)
	assert.Equal(t, rdf.IRI(ex+"parent"), inv)

	typed, _ := g.ValueOf(s, rdf.IRI(ex+"typed"))
	assert.Equal(t, rdf.NewLiteral("2020-01-01", rdf.XSDNamespace+"date"), typed)
	lang, _ := g.ValueOf(s, rdf.IRI(ex+"lang"))
	assert.Equal(t, rdf.NewLangLiteral("chat", "fr"), lang)
	lit, _ := g.ValueOf(s, rdf.IRI(ex+"lit"))
	assert.Equal(t, rdf.String("ex:notANode"), lit)

	node, _ := g.ValueOf(s, rdf.IRI(ex+"node"))
	label, ok := g.ValueOf(node, rdf.IRI(ex+"label"))
	require.True(t, ok, "_:x is the same node as subject and object")
	assert.Equal(t, rdf.String("blank"), label)
}

func TestLoad_BlankLabelsAreDocumentScoped(t *testing.T) {
	doc := `
nodes:
  _:x:
    <http://example.org/p>: 1
`
	l := New()
	require.NoError(t, l.LoadYAML("one.yaml", []byte(doc)))
	require.NoError(t, l.LoadYAML("two.yaml", []byte(doc)))

	triples := l.Graph().Triples()
	require.Len(t, triples, 2)
	assert.NotEqual(t, triples[0].Subject, triples[1].Subject)
}

func TestLoad_NFCNormalisesLiterals(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadYAML("n.yaml", []byte("nodes:\n  <http://example.org/s>:\n    <http://example.org/p>: \"e\u0301\"\n")))
	v, _ := l.Graph().ValueOf(rdf.IRI(ex+"s"), rdf.IRI(ex+"p"))
	assert.Equal(t, rdf.String("\u00e9"), v)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
	}{
		{"not a struct", "- a\n- b\n", ErrCodeStructure},
		{"unknown top-level", "shapes: {}\n", ErrCodeStructure},
		{"bad subject", "nodes:\n  plain: {}\n", ErrCodeNode},
		{"undeclared prefix", "nodes:\n  <http://example.org/s>:\n    ex:p: 1\n", ErrCodePrefix},
		{"nested list", "nodes:\n  <http://example.org/s>:\n    <http://example.org/p>: [[1]]\n", ErrCodeValue},
		{"list not a list", "nodes:\n  <http://example.org/s>:\n    <http://example.org/p>: {\"@list\": 1}\n", ErrCodeValue},
		{"type and language", "nodes:\n  <http://example.org/s>:\n    <http://example.org/p>: {\"@value\": \"x\", \"@type\": \"xsd:string\", \"@language\": \"en\"}\n", ErrCodeValue},
		{"bad yaml", "nodes: [\n", ErrCodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().LoadYAML("bad.yaml", []byte(tt.doc))
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %v", err)
			assert.Equal(t, tt.code, le.Code)
			assert.Equal(t, "bad.yaml", le.File)
		})
	}
}

func TestLoad_RejectedDocumentAddsNothing(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadYAML("age.yaml", []byte(ageShapeYAML)))
	before := l.Graph().Triples()

	doc := `
nodes:
  <http://example.org/ok>:
    <http://example.org/p>: 1
  <http://example.org/bad>:
    nope:p: 2
`
	require.Error(t, l.LoadYAML("half.yaml", []byte(doc)))
	assert.Equal(t, before, l.Graph().Triples())
	_, ok := l.Graph().ValueOf(rdf.IRI(ex+"ok"), rdf.IRI(ex+"p"))
	assert.False(t, ok, "triples converted before the error are discarded")
}

func TestLoad_ErrorPosition(t *testing.T) {
	err := New().LoadYAML("pos.yaml", []byte("nodes:\n  <http://example.org/s>:\n    nope:p: 1\n"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, Position{Line: 3, Column: 5}, le.Pos)
	assert.Contains(t, le.Error(), "pos.yaml:3:5: E304")
}

func TestLoad_CUEError(t *testing.T) {
	err := New().LoadCUE("bad.cue", []byte("nodes: {\n"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeParse, le.Code)
}

func TestLoader_Prefixes(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadCUE("age.cue", []byte(ageShapeCUE)))

	prefixes := l.Prefixes()
	require.Len(t, prefixes, len(vocab.StandardPrefixes)+1)
	assert.Equal(t, vocab.Prefix{Name: "ex", Namespace: ex}, prefixes[len(prefixes)-1])
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) string {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	a := write("a.cue", ageShapeCUE)
	b := write("nested/b.yaml", "nodes: {}\n")
	write("nested/readme.txt", "ignored")

	files, err := ExpandFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = ExpandFiles(filepath.Join(dir, "**", "*.yaml"), a, a)
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, files)

	_, err = ExpandFiles(filepath.Join(dir, "*.json"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_Patterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "age.cue"), []byte(ageShapeCUE), 0o644))

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Graph().Len())
}

func TestLoader_ResolveIRI(t *testing.T) {
	l := New()
	require.NoError(t, l.LoadYAML("shapes.yaml", []byte(ageShapeYAML)))

	tests := []struct {
		in   string
		want rdf.IRI
	}{
		{"ex:AgeShape", rdf.IRI(ex + "AgeShape")},
		{"<http://example.org/AgeShape>", rdf.IRI(ex + "AgeShape")},
		{"http://example.org/AgeShape", rdf.IRI(ex + "AgeShape")},
		{"sh:Shape", rdf.IRI(vocab.Namespace + "Shape")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := l.ResolveIRI(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := l.ResolveIRI("foo:Bar")
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodePrefix, le.Code)

	_, err = l.ResolveIRI("AgeShape")
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeNode, le.Code)
}

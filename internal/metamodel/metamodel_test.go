package metamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shaclq/internal/loader"
	"github.com/roach88/shaclq/internal/rdf"
	"github.com/roach88/shaclq/internal/vocab"
)

func sh(local string) rdf.IRI { return rdf.IRI(vocab.Namespace + local) }

func loadYAML(t *testing.T, doc string) *Metamodel {
	t.Helper()
	l := loader.New()
	require.NoError(t, l.LoadYAML("meta.yaml", []byte(doc)))
	m, err := Load(l.Graph())
	require.NoError(t, err)
	return m
}

func TestDefault_LoadsAndValidates(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	ids := make([]rdf.IRI, 0)
	for _, tmpl := range m.Templates() {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []rdf.IRI{
		sh("class"), sh("datatype"), sh("nodeKind"),
		sh("minInclusive"), sh("maxInclusive"), sh("minExclusive"), sh("maxExclusive"),
		sh("minLength"), sh("maxLength"), sh("pattern"), sh("in"), sh("hasValue"),
		sh("property"), sh("valueShape"), sh("shape"),
	}, ids)

	assert.Empty(t, Validate(m), "the built-in metamodel is valid")

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestDefault_PropertyArguments(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	prop, ok := m.Template(sh("property"))
	require.True(t, ok)
	require.Len(t, prop.Args, 3)

	assert.Equal(t, "predicate", prop.Args[0].Name)
	assert.Equal(t, []rdf.IRI{sh("predicate")}, prop.Args[0].Steps)
	assert.True(t, prop.Args[0].Required)
	assert.Nil(t, prop.Args[0].Default)

	assert.Equal(t, "maxCount", prop.Args[2].Name)
	assert.Equal(t, rdf.NewLiteral("-1", rdf.XSDInteger), prop.Args[2].Default)
	assert.False(t, prop.Args[2].Required)

	assert.True(t, prop.HasClauses())
	assert.False(t, prop.HasQuery())

	shape, ok := m.Template(sh("shape"))
	require.True(t, ok)
	assert.True(t, shape.HasQuery())
	assert.Equal(t, "[s(argument)]", shape.Query)
}

func TestDefault_GraphHoldsDefinitionShapes(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []rdf.Term{sh("ShapeDefinitionShape")}, m.Graph().NodesOfType(vocab.Shape))
}

func TestLoad_SequenceAndInversePaths(t *testing.T) {
	m := loadYAML(t, `
prefixes:
  ex: http://example.org/
nodes:
  ex:t:
    a: sh:ComponentTemplate
    sh:templateMessage: m
    sh:templateFilter: "[a] = [b]"
    sh:propValues:
      - {"@list": [{"@list": [ex:x, ex:y]}, {"sh:argumentName": a}]}
      - {"@list": [{"sh:inverse": "ex:x"}, {"sh:argumentName": b}]}
      - {"@list": [ex:only]}
`)
	tmpl, ok := m.Template("http://example.org/t")
	require.True(t, ok)
	require.Len(t, tmpl.Args, 3)

	assert.Equal(t, []rdf.IRI{"http://example.org/x", "http://example.org/y"}, tmpl.Args[0].Steps)
	assert.Empty(t, tmpl.Args[0].Problem)
	assert.Contains(t, tmpl.Args[1].Problem, "inverse")
	assert.Contains(t, tmpl.Args[2].Problem, "two-element list")
}

func TestLoad_NonLiteralBody(t *testing.T) {
	l := loader.New()
	require.NoError(t, l.LoadYAML("meta.yaml", []byte(`
nodes:
  <http://example.org/t>:
    a: sh:ComponentTemplate
    sh:templateQuery: <http://example.org/notText>
`)))
	_, err := Load(l.Graph())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a literal")
}

func TestValidate_Codes(t *testing.T) {
	m := loadYAML(t, `
prefixes:
  ex: http://example.org/
nodes:
  ex:noBody:
    a: sh:ComponentTemplate
    sh:templateMessage: fine
  ex:noMessage:
    a: sh:ComponentTemplate
    sh:templateFilter: "?this = [argument]"
  ex:args:
    a: sh:ComponentTemplate
    sh:templateMessage: "[x]"
    sh:templateFilter: "[x] [missing] [l(p(x)"
    sh:templatePattern: "[nope(x)]"
    sh:templateHaving: "[y] > 0"
    sh:propValues:
      - {"@list": [ex:p, {"sh:argumentName": x}]}
      - {"@list": [ex:q, {"sh:argumentName": x}]}
      - {"@list": [ex:r, {"sh:argumentDefault": 1}]}
      - {"@list": [{"sh:inverse": "ex:s"}, {"sh:argumentName": y}]}
`)
	errs := Validate(m)

	codes := make(map[string][]string)
	for _, e := range errs {
		codes[e.Template] = append(codes[e.Template], e.Code)
	}
	assert.Equal(t, []string{ErrMissingBody}, codes["<http://example.org/noBody>"])
	assert.Equal(t, []string{ErrMissingMessage}, codes["<http://example.org/noMessage>"])
	assert.Equal(t, []string{
		ErrDuplicateArgument,
		ErrArgumentNoName,
		ErrBadArgumentPath,
		ErrSpliceSyntax,
		ErrSpliceSyntax,
	}, codes["<http://example.org/args>"])
}

func TestValidate_UnknownName(t *testing.T) {
	m := loadYAML(t, `
nodes:
  <http://example.org/t>:
    a: sh:ComponentTemplate
    sh:templateMessage: "[argument] [this]"
    sh:templateFilter: "[inner] [undeclared]"
`)
	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownName, errs[0].Code)
	assert.Equal(t, "filter", errs[0].Field)
	assert.Contains(t, errs[0].Error(), `"undeclared"`)
}

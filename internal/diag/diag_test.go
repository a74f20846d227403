package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shaclq/internal/rdf"
)

func TestCodeClass(t *testing.T) {
	tests := []struct {
		code Code
		want Class
	}{
		{CodeTemplateSyntax, ClassDefinition},
		{CodeTemplateMissingBody, ClassDefinition},
		{CodeMalformedList, ClassDefinition},
		{CodeMissingArgument, ClassDefinition},
		{CodeBadArgumentPath, ClassDefinition},
		{CodeUnboundName, ClassUnboundName},
		{CodeMissingShape, ClassContract},
		{CodeDepthExceeded, ClassContract},
		{CodeMalformedFragment, ClassContract},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Class())
		})
	}
}

func TestErrorHelpers_Wrapped(t *testing.T) {
	base := New(CodeDepthExceeded, "depth %d exceeds ceiling %d", 65, 64)
	wrapped := fmt.Errorf("compile shape: %w", base)

	assert.True(t, IsContractViolation(wrapped))
	assert.False(t, IsDefinitionError(wrapped))
	assert.False(t, IsUnboundName(wrapped))
	assert.True(t, HasCode(wrapped, CodeDepthExceeded))
	assert.False(t, IsContractViolation(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("unexpected ')' at offset 4")
	err := Wrap(CodeTemplateSyntax, cause, "bad splice").
		WithTemplate(rdf.IRI("http://www.w3.org/ns/shacl#in")).
		WithShape(rdf.IRI("http://example.org/S"))

	assert.Equal(t,
		"TEMPLATE_SYNTAX: bad splice (template=<http://www.w3.org/ns/shacl#in>) (shape=<http://example.org/S>): unexpected ')' at offset 4",
		err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWithShape_KeepsInnermost(t *testing.T) {
	inner := New(CodeUnboundName, "name %q is not bound", "x").WithShape(rdf.IRI("http://example.org/Inner"))
	outer := inner.WithShape(rdf.IRI("http://example.org/Outer"))

	assert.Equal(t, rdf.IRI("http://example.org/Inner"), outer.Shape)
}

func TestWithShape_DoesNotMutate(t *testing.T) {
	base := New(CodeMissingShape, "nil shape")
	_ = base.WithShape(rdf.IRI("http://example.org/S"))
	assert.Nil(t, base.Shape)
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.Nil(t, c.Items())

	c.Add(KindNoScope, rdf.IRI("http://example.org/S"), "shape declares no scope")
	c.Add(KindEmptyPath, nil, "path %s is empty", "_:p")

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "no-scope: shape declares no scope (shape=<http://example.org/S>)", items[0].String())
	assert.Equal(t, "empty-path: path _:p is empty", items[1].String())
	assert.Equal(t, 1, c.Count(KindNoScope))
}

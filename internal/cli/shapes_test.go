package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapes_Text(t *testing.T) {
	out, err := execute(t, NewShapesCommand(&RootOptions{Format: "text"}), brokenDefs)
	require.NoError(t, err, "failed shapes are listed, not reported as errors")

	assert.Contains(t, out, "SHAPE")
	assert.Regexp(t, `<http://example.org/AgeShape>\s+compiled`, out)
	assert.Regexp(t, `<http://example.org/Broken>\s+failed\s+MISSING_ARGUMENT`, out)
	assert.NotContains(t, out, "SELECT")
}

func TestShapes_Diagnostics(t *testing.T) {
	out, err := execute(t, NewShapesCommand(&RootOptions{Format: "text"}), peopleDefs)
	require.NoError(t, err)
	assert.Regexp(t, `<http://example.org/Floating>\s+no_scope\s+no-scope`, out)
}

func TestShapes_JSONOmitsQueries(t *testing.T) {
	out, err := execute(t, NewShapesCommand(&RootOptions{Format: "json"}), peopleDefs)
	require.NoError(t, err)

	resp := decodeRun(t, out)
	require.Len(t, resp.Data.Shapes, 2)
	for _, s := range resp.Data.Shapes {
		assert.Empty(t, s.Query)
	}
	assert.NotEmpty(t, resp.Data.Shapes[0].Fingerprint)
}

func TestShapes_DepthCeilingAborts(t *testing.T) {
	_, err := execute(t, NewShapesCommand(&RootOptions{Format: "text"}), loopDefs)
	require.Error(t, err, "a self-referencing shape exceeds the depth ceiling")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

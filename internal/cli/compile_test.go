package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peopleDefs = filepath.Join("testdata", "definitions", "people.yaml")
	brokenDefs = filepath.Join("testdata", "broken", "broken.yaml")
	loopDefs   = filepath.Join("testdata", "loop", "loop.yaml")
)

// runResponse is a CLIResponse carrying a RunReport.
type runResponse struct {
	Status string    `json:"status"`
	Data   RunReport `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeRun(t *testing.T, out string) runResponse {
	t.Helper()
	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestCompile_Text(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), peopleDefs)
	require.NoError(t, err)

	assert.Contains(t, out, "# SHAPE <http://example.org/AgeShape>")
	assert.Contains(t, out, "FILTER ( ! ( ?this >= 18 ) )")
	assert.NotContains(t, out, "# SHAPE <http://example.org/Floating>")
	assert.Contains(t, out, "✓ Compiled 2 shape(s): 1 with scope, 1 without, 0 failed")
}

func TestCompile_JSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), peopleDefs)
	require.NoError(t, err)

	resp := decodeRun(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.Data.RunID)
	require.Len(t, resp.Data.Shapes, 2)

	age := resp.Data.Shapes[0]
	assert.Equal(t, "<http://example.org/AgeShape>", age.Shape)
	assert.Equal(t, StatusCompiled, age.Status)
	assert.Contains(t, age.Query, "SELECT ?this ?message ?severity")
	assert.Len(t, age.Fingerprint, 64)

	floating := resp.Data.Shapes[1]
	assert.Equal(t, StatusNoScope, floating.Status)
	assert.Empty(t, floating.Query)
	require.Len(t, floating.Diagnostics, 1)
	assert.Equal(t, "no-scope", string(floating.Diagnostics[0].Kind))
}

func TestCompile_SelectedShape(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), peopleDefs, "--shape", "ex:Floating")
	require.NoError(t, err)

	resp := decodeRun(t, out)
	require.Len(t, resp.Data.Shapes, 1)
	assert.Equal(t, "<http://example.org/Floating>", resp.Data.Shapes[0].Shape)
	assert.Equal(t, 1, resp.Data.NoScope)
}

func TestCompile_UndeclaredPrefix(t *testing.T) {
	_, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), peopleDefs, "--shape", "nope:Shape")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E304")
}

func TestCompile_OutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "shapes.rq")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), peopleDefs, "--output", outputFile)
	require.NoError(t, err)
	assert.NotContains(t, out, "SELECT", "queries go to the file only")
	assert.Contains(t, out, "Wrote 1 query(ies) to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PREFIX sh: <http://www.w3.org/ns/shacl#>"))
	assert.Contains(t, string(data), "# SHAPE <http://example.org/AgeShape>")
}

func TestCompile_ShapeFailure(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), brokenDefs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeRun(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeShapeFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Compiled)
	assert.Equal(t, 1, resp.Data.Failed)

	broken := resp.Data.Shapes[1]
	assert.Equal(t, StatusFailed, broken.Status)
	assert.Equal(t, "MISSING_ARGUMENT", broken.ErrorCode)
	assert.NotEmpty(t, broken.Error)
}

func TestCompile_ShapeFailureText(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), brokenDefs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "# SHAPE <http://example.org/AgeShape>")
	assert.Contains(t, out, "✗ Compiled 2 shape(s): 1 with scope, 0 without, 1 failed")
	assert.Contains(t, out, "  ✗ <http://example.org/Broken>: ")
}

func TestCompile_DepthCeilingAborts(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), loopDefs, "--max-depth", "4")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeAborted, resp.Error.Code)
}

func TestCompile_NonExistentPath(t *testing.T) {
	_, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E301")
}

func TestCompile_NoDefinitions(t *testing.T) {
	_, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestCompile_GraphWithoutDB(t *testing.T) {
	_, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "--graph", "shapes")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeConfig)
}

func TestCompile_RecordsRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "shaclq.db")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), peopleDefs, "--db", db)
	require.NoError(t, err)
	runID := decodeRun(t, out).Data.RunID

	out, err = execute(t, NewImportCommand(&RootOptions{Format: "json"}), "--db", db, "--list")
	require.NoError(t, err)

	var resp struct {
		Data StoreListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, RunEntry{RunID: runID, Shapes: 2, Compiled: 1, Failed: 0}, resp.Data.Runs[0])
}

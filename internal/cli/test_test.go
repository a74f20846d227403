package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioDir writes one scenario over the people definitions and returns
// its directory.
func scenarioDir(t *testing.T, name, expect string) string {
	t.Helper()
	defs, err := filepath.Abs(peopleDefs)
	require.NoError(t, err)

	dir := t.TempDir()
	doc := "name: " + name + "\ndefinitions: [" + defs + "]\nexpect:\n" + expect
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(doc), 0644))
	return dir
}

const passingExpect = `  - shape: ex:AgeShape
    scoped: true
    contains: ["FILTER ( ! ( ?this >= 18 ) )"]
  - shape: ex:Floating
    scoped: false
    diagnostics: [no-scope]
`

func TestTest_Passing(t *testing.T) {
	dir := scenarioDir(t, "people", passingExpect)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ people")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_FailedExpectation(t *testing.T) {
	dir := scenarioDir(t, "people", `  - shape: ex:Floating
    scoped: true
`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ people")
	assert.Contains(t, out, "Expectation failed")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
}

func TestTest_UpdateThenCompareGolden(t *testing.T) {
	dir := scenarioDir(t, "people", passingExpect)
	cmdOpts := &RootOptions{Format: "text"}

	out, err := execute(t, NewTestCommand(cmdOpts), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ people")

	golden := filepath.Join(dir, "golden", "people.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# scenario people")
	assert.Contains(t, string(data), "## <http://example.org/AgeShape>")

	_, err = execute(t, NewTestCommand(cmdOpts), dir)
	require.NoError(t, err, "a fresh golden file matches")

	require.NoError(t, os.WriteFile(golden, append(data, "tampered\n"...), 0644))
	out, err = execute(t, NewTestCommand(cmdOpts), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "golden file mismatch")
}

func TestTest_JSON(t *testing.T) {
	dir := scenarioDir(t, "people", passingExpect)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "people", resp.Data.Scenarios[0].Name)
}

func TestTest_Filter(t *testing.T) {
	dir := scenarioDir(t, "people", passingExpect)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "orders*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\n"), 0644))

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "load error")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

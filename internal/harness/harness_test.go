package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func parse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestLoadScenario_ResolvesPaths(t *testing.T) {
	s := loadTestScenario(t, "adult")

	assert.Equal(t, "adult", s.Name)
	assert.Equal(t, []string{filepath.Join("testdata", "definitions", "adult.yaml")}, s.Definitions)
	require.Len(t, s.Expect, 3)
	require.NotNil(t, s.Expect[0].Scoped)
	assert.True(t, *s.Expect[0].Scoped)
	assert.Equal(t, "MISSING_ARGUMENT", s.Expect[2].Error)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown field",
			doc:  "name: x\ndefinitions: [a.yaml]\nexpects: []\n",
			want: "field expects not found",
		},
		{
			name: "missing name",
			doc:  "definitions: [a.yaml]\nabort: DEPTH_EXCEEDED\n",
			want: "name is required",
		},
		{
			name: "missing definitions",
			doc:  "name: x\nabort: DEPTH_EXCEEDED\n",
			want: "definitions list is required",
		},
		{
			name: "nothing to check",
			doc:  "name: x\ndefinitions: [a.yaml]\n",
			want: "expect list or abort is required",
		},
		{
			name: "unknown abort code",
			doc:  "name: x\ndefinitions: [a.yaml]\nabort: BOOM\n",
			want: `abort: unknown error code "BOOM"`,
		},
		{
			name: "missing shape",
			doc:  "name: x\ndefinitions: [a.yaml]\nexpect:\n  - scoped: true\n",
			want: "expect[0]: shape is required",
		},
		{
			name: "error with contains",
			doc:  "name: x\ndefinitions: [a.yaml]\nexpect:\n  - shape: ex:S\n    error: MISSING_ARGUMENT\n    contains: [MINUS]\n",
			want: "expect[0]: error excludes scoped, contains and not_contains",
		},
		{
			name: "unscoped with contains",
			doc:  "name: x\ndefinitions: [a.yaml]\nexpect:\n  - shape: ex:S\n    scoped: false\n    contains: [MINUS]\n",
			want: "expect[0]: contains requires a scoped shape",
		},
		{
			name: "negative depth",
			doc:  "name: x\ndefinitions: [a.yaml]\noptions: {max_depth: -1}\nabort: DEPTH_EXCEEDED\n",
			want: "options.max_depth must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Adult(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "adult"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "adult", result.RunID)
	require.Len(t, result.Shapes, 3)

	age, ok := result.Shape("<http://example.org/AgeShape>")
	require.True(t, ok)
	assert.Len(t, age.Fingerprint, 64)
}

func TestRun_Abort(t *testing.T) {
	result, err := Run(loadTestScenario(t, "loop"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "DEPTH_EXCEEDED", result.Aborted)
	assert.Empty(t, result.Shapes)
	assert.Equal(t, "# scenario loop\n# run loop\n# aborted DEPTH_EXCEEDED\n", string(Snapshot(result)))
}

func TestRun_UnexpectedAbort(t *testing.T) {
	s := parse(t, `
name: loop_unexpected
definitions: [testdata/definitions/loop.yaml]
options: {max_depth: 4}
expect:
  - shape: ex:Loop
    scoped: true
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run aborted unexpectedly")
}

func TestRun_MissingAbort(t *testing.T) {
	s := parse(t, `
name: adult_abort
definitions: [testdata/definitions/adult.yaml]
abort: DEPTH_EXCEEDED
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"run completed, expected abort with DEPTH_EXCEEDED"}, result.Errors)
}

func TestRun_FailedExpectations(t *testing.T) {
	s := parse(t, `
name: wrong
definitions: [testdata/definitions/adult.yaml]
expect:
  - shape: ex:AgeShape
    contains: ["MINUS"]
    not_contains: ["FILTER"]
    diagnostics: [no-scope]
  - shape: ex:Floating
    scoped: true
  - shape: ex:Broken
    scoped: true
  - shape: ex:Missing
    scoped: true
  - shape: zz:Nope
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)

	checks := []string{
		"<http://example.org/AgeShape> contains",
		"<http://example.org/AgeShape> not_contains",
		"<http://example.org/AgeShape> diagnostics",
		"<http://example.org/Floating> scoped",
		"<http://example.org/Broken> error",
		"shape <http://example.org/Missing>: not a top-level shape",
		`shape "zz:Nope"`,
	}
	require.Len(t, result.Errors, len(checks))
	for i, want := range checks {
		assert.Contains(t, result.Errors[i], want)
	}
	assert.Contains(t, result.Errors[4], "Actual: error MISSING_ARGUMENT")
}

func TestRun_StrictLists(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "choice.yaml")
	require.NoError(t, os.WriteFile(defs, []byte(`
prefixes:
  ex: http://example.org/
nodes:
  ex:Choice:
    a: sh:Shape
    sh:scopeNode: ex:a
    sh:in:
      rdf:first: ex:a
`), 0644))

	lenient := parse(t, "name: lenient\ndefinitions: ["+defs+"]\nexpect:\n  - shape: ex:Choice\n    diagnostics: [malformed-list]\n")
	result, err := Run(lenient)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	strict := parse(t, "name: strict\ndefinitions: ["+defs+"]\noptions: {strict_lists: true}\nexpect:\n  - shape: ex:Choice\n    error: MALFORMED_LIST\n")
	result, err = Run(strict)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_MissingDefinitions(t *testing.T) {
	s := parse(t, "name: x\ndefinitions: [testdata/definitions/none.yaml]\nabort: DEPTH_EXCEEDED\n")
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load definitions")
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Run(ctx, loadTestScenario(t, "adult"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Cycles(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "pair.yaml")
	require.NoError(t, os.WriteFile(defs, []byte(`
prefixes:
  ex: http://example.org/
nodes:
  ex:A:
    a: sh:Shape
    sh:filter: ex:B
  ex:B:
    a: sh:Shape
    sh:filter: ex:A
`), 0644))

	result, err := Run(parse(t, "name: pair\ndefinitions: ["+defs+"]\nexpect:\n  - shape: ex:A\n    scoped: false\n"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Cycles, 1)
	assert.True(t, strings.HasPrefix(string(Snapshot(result)), "# scenario pair\n# run pair\n# cycle "))
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios(filepath.Join("testdata", "scenarios"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "adult.yaml"),
		filepath.Join("testdata", "scenarios", "loop.yaml"),
	}, files)

	files, err = FindScenarios(filepath.Join("testdata", "scenarios"), "ad*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "adult.yaml")}, files)

	_, err = FindScenarios("testdata/missing", "")
	var nf *ScenarioDirNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "scenarios directory not found: testdata/missing", err.Error())

	_, err = FindScenarios(filepath.Join("testdata", "scenarios"), "[")
	require.Error(t, err)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "adult.golden"),
		GoldenPath(filepath.Join("scenarios", "adult.yaml")),
	)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Shape:    "<http://example.org/S>",
		Check:    "contains",
		Expected: `query containing "MINUS"`,
		Actual:   "not found",
		Query:    "SELECT ?this\nWHERE { }",
	}
	assert.Equal(t, `Expectation failed: <http://example.org/S> contains
  Expected: query containing "MINUS"
  Actual: not found

Query:
  SELECT ?this
  WHERE { }
`, err.Error())
}

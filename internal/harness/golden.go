package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text for golden comparison.
//
// Shapes appear in graph order. Fingerprints are left out; they follow
// from the query text.
func Snapshot(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# scenario %s\n", r.Name)
	fmt.Fprintf(&b, "# run %s\n", r.RunID)
	if r.Aborted != "" {
		fmt.Fprintf(&b, "# aborted %s\n", r.Aborted)
	}
	for _, c := range r.Cycles {
		fmt.Fprintf(&b, "# cycle %s\n", c)
	}
	for _, s := range r.Shapes {
		fmt.Fprintf(&b, "\n## %s\n", s.Shape)
		if s.ErrorCode != "" {
			fmt.Fprintf(&b, "error %s\n", s.ErrorCode)
		}
		for _, d := range s.Diagnostics {
			fmt.Fprintf(&b, "diagnostic %s\n", d)
		}
		if s.Query != "" {
			b.WriteString(s.Query)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shaclq/internal/diag"
)

// Scenario defines a compilation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions lists shape documents or glob patterns.
	// Paths are relative to the scenario file location.
	Definitions []string `yaml:"definitions"`

	// Metamodel lists template documents. Empty means the built-in
	// metamodel.
	Metamodel []string `yaml:"metamodel,omitempty"`

	Options Options `yaml:"options,omitempty"`

	// Abort is the error code the run must stop with. Empty means the run
	// must complete.
	Abort string `yaml:"abort,omitempty"`

	// Expect checks individual shapes.
	Expect []ShapeExpect `yaml:"expect"`

	// RunID fixes the run id. Defaults to the scenario name.
	RunID string `yaml:"run_id,omitempty"`
}

// Options map to compiler options.
type Options struct {
	MaxDepth    int  `yaml:"max_depth,omitempty"`
	StrictLists bool `yaml:"strict_lists,omitempty"`
}

// ShapeExpect specifies the expected outcome for one shape.
type ShapeExpect struct {
	// Shape is a CURIE or <iri>.
	Shape string `yaml:"shape"`

	// Scoped, when set, requires a query (true) or a scope-less
	// compilation (false).
	Scoped *bool `yaml:"scoped,omitempty"`

	// Contains lists substrings the query must contain.
	Contains []string `yaml:"contains,omitempty"`

	// NotContains lists substrings the query must not contain.
	NotContains []string `yaml:"not_contains,omitempty"`

	// Error is the compiler error code the shape must fail with.
	Error string `yaml:"error,omitempty"`

	// Diagnostics lists the expected diagnostic kinds in order.
	Diagnostics []string `yaml:"diagnostics,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	scenario.Definitions = resolvePaths(base, scenario.Definitions)
	scenario.Metamodel = resolvePaths(base, scenario.Metamodel)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "expects:" vs "expect:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolvePaths(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || base == "" {
			out[i] = p
		} else {
			out[i] = filepath.Join(base, p)
		}
	}
	return out
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Definitions) == 0 {
		return fmt.Errorf("definitions list is required and must be non-empty")
	}
	if len(s.Expect) == 0 && s.Abort == "" {
		return fmt.Errorf("expect list or abort is required")
	}
	if s.Options.MaxDepth < 0 {
		return fmt.Errorf("options.max_depth must be non-negative")
	}
	if s.Abort != "" && !knownCode(s.Abort) {
		return fmt.Errorf("abort: unknown error code %q", s.Abort)
	}
	for i := range s.Expect {
		if err := validateExpect(i, &s.Expect[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateExpect validates a single shape expectation.
func validateExpect(index int, e *ShapeExpect) error {
	if e.Shape == "" {
		return fmt.Errorf("expect[%d]: shape is required", index)
	}
	if e.Error != "" {
		if !knownCode(e.Error) {
			return fmt.Errorf("expect[%d]: unknown error code %q", index, e.Error)
		}
		if e.Scoped != nil || len(e.Contains) > 0 || len(e.NotContains) > 0 {
			return fmt.Errorf("expect[%d]: error excludes scoped, contains and not_contains", index)
		}
	}
	if e.Scoped != nil && !*e.Scoped && len(e.Contains) > 0 {
		return fmt.Errorf("expect[%d]: contains requires a scoped shape", index)
	}
	return nil
}

var knownCodes = map[diag.Code]bool{
	diag.CodeTemplateSyntax:      true,
	diag.CodeTemplateMissingBody: true,
	diag.CodeMalformedList:       true,
	diag.CodeMissingArgument:     true,
	diag.CodeBadArgumentPath:     true,
	diag.CodeUnboundName:         true,
	diag.CodeMissingShape:        true,
	diag.CodeDepthExceeded:       true,
	diag.CodeMalformedFragment:   true,
}

func knownCode(code string) bool {
	return knownCodes[diag.Code(code)]
}

package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes the query text to help debug the failure.
type AssertionError struct {
	Shape    string // Shape the expectation is about
	Check    string // Expectation that failed, e.g. "contains"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Query    string // Query text, when the shape compiled
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s %s\n", e.Shape, e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Query != "" {
		fmt.Fprintf(&buf, "\nQuery:\n")
		for _, line := range strings.Split(e.Query, "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// checkShape evaluates every field of exp against got.
func checkShape(exp ShapeExpect, got ShapeResult) []error {
	var errs []error
	fail := func(check, expected, actual string) {
		errs = append(errs, &AssertionError{
			Shape:    got.Shape,
			Check:    check,
			Expected: expected,
			Actual:   actual,
			Query:    got.Query,
		})
	}

	if exp.Error != "" {
		if got.ErrorCode != exp.Error {
			fail("error", exp.Error, describe(got))
		}
	} else if got.ErrorCode != "" {
		fail("error", "no error", describe(got))
		return errs
	}

	if exp.Scoped != nil && *exp.Scoped != got.Scoped() {
		if *exp.Scoped {
			fail("scoped", "a query", describe(got))
		} else {
			fail("scoped", "no query", describe(got))
		}
	}

	for _, s := range exp.Contains {
		if !strings.Contains(got.Query, s) {
			fail("contains", fmt.Sprintf("query containing %q", s), "not found")
		}
	}
	for _, s := range exp.NotContains {
		if strings.Contains(got.Query, s) {
			fail("not_contains", fmt.Sprintf("query without %q", s), "found")
		}
	}

	if exp.Diagnostics != nil && !slices.Equal(exp.Diagnostics, got.Diagnostics) {
		fail("diagnostics", fmt.Sprintf("%v", exp.Diagnostics), fmt.Sprintf("%v", got.Diagnostics))
	}
	return errs
}

// assertAbort compares the expected and actual abort codes.
func assertAbort(expected, actual string, cause error) error {
	switch {
	case expected == actual:
		return nil
	case expected == "":
		return fmt.Errorf("run aborted unexpectedly: %v", cause)
	case actual == "":
		return fmt.Errorf("run completed, expected abort with %s", expected)
	default:
		return fmt.Errorf("run aborted with %s, expected %s: %v", actual, expected, cause)
	}
}

func describe(r ShapeResult) string {
	switch {
	case r.ErrorCode != "":
		return "error " + r.ErrorCode
	case r.Scoped():
		return "a query"
	default:
		return "no query"
	}
}

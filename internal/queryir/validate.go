package queryir

import (
	"fmt"
)

// ValidationResult contains the structural analysis of a query.
type ValidationResult struct {
	// IsWellFormed is true when no warnings were raised.
	IsWellFormed bool

	// Warnings lists structural problems found in the query.
	Warnings []string
}

// Validate checks a Select and every sub-select nested in it.
//
// Rules:
//  1. Projection is non-empty
//  2. No column is projected twice
//  3. HAVING requires GROUP BY
//  4. Every GROUP BY variable is projected
//  5. Union and Minus carry at least one operand
//
// Validate is a pure function with no side effects.
func Validate(sel *Select) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateSelect(sel)

	return ValidationResult{
		IsWellFormed: len(v.warnings) == 0,
		Warnings:     v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(sel *Select) {
	if sel == nil {
		v.addWarning("nil select")
		return
	}

	if len(sel.Projection) == 0 {
		v.addWarning("empty projection in %q", sel.Comment)
	}

	seen := make(map[string]bool, len(sel.Projection))
	for _, p := range sel.Projection {
		if p.Var == "" {
			v.addWarning("projection without variable name in %q", sel.Comment)
			continue
		}
		if seen[p.Var] {
			v.addWarning("column ?%s projected twice in %q", p.Var, sel.Comment)
		}
		seen[p.Var] = true
	}

	if sel.Having != "" && len(sel.GroupBy) == 0 {
		v.addWarning("HAVING without GROUP BY in %q", sel.Comment)
	}
	for _, g := range sel.GroupBy {
		if !seen[g] {
			v.addWarning("GROUP BY ?%s is not projected in %q", g, sel.Comment)
		}
	}

	v.validatePattern(sel.Where)
}

func (v *validator) validatePattern(p Pattern) {
	switch pat := p.(type) {
	case nil, Raw, Filter, Bind, Fragment:
	case Values:
		for i, row := range pat.Rows {
			if len(row) != len(pat.Vars) {
				v.addWarning("VALUES row %d has %d terms for %d variables", i, len(row), len(pat.Vars))
			}
		}
	case Seq:
		for _, child := range pat {
			v.validatePattern(child)
		}
	case Group:
		for _, child := range pat {
			v.validatePattern(child)
		}
	case Union:
		if len(pat) == 0 {
			v.addWarning("empty UNION")
		}
		for _, child := range pat {
			v.validatePattern(child)
		}
	case Minus:
		v.validatePattern(pat.Left)
		for _, child := range pat.Right {
			v.validatePattern(child)
		}
	case *Select:
		v.validateSelect(pat)
	default:
		v.addWarning("unknown pattern type: %T", p)
	}
}

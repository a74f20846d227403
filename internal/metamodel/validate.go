package metamodel

import (
	"fmt"

	"github.com/roach88/shaclq/internal/expr"
)

// Validation error codes (E200-E209)
const (
	ErrMissingBody       = "E201" // neither clauses nor a query body
	ErrMissingMessage    = "E202" // templateMessage is empty
	ErrArgumentNoName    = "E203" // propValues entry without argumentName
	ErrBadArgumentPath   = "E204" // argument path is not forward-only
	ErrDuplicateArgument = "E205" // two arguments share a name
	ErrSpliceSyntax      = "E206" // template text does not parse
	ErrUnknownName       = "E207" // splice references an undeclared name
)

// ValidationError is a problem found in a template definition.
type ValidationError struct {
	Template string `json:"template"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s %s: %s", e.Code, e.Template, e.Field, e.Message)
}

// Validate checks every template in m.
// Returns all errors found (does not fail-fast).
func Validate(m *Metamodel) []ValidationError {
	var errs []ValidationError
	for _, t := range m.templates {
		errs = append(errs, validateTemplate(t)...)
	}
	return errs
}

func validateTemplate(t *Template) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Template: t.ID.String(),
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Code:     code,
		})
	}

	// E201: something to compile
	if !t.HasClauses() && !t.HasQuery() {
		add("body", ErrMissingBody, "template has no pattern, filter, having or query")
	}

	// E202: message is required
	if t.Message == "" {
		add("message", ErrMissingMessage, "templateMessage is required")
	}

	known := make(map[string]bool)
	for _, n := range ReservedNames {
		known[n] = true
	}
	for i, a := range t.Args {
		field := fmt.Sprintf("propValues[%d]", i)

		// E204: readable, forward-only path
		if a.Problem != "" {
			add(field, ErrBadArgumentPath, "%s", a.Problem)
		}

		// E203: unnamed arguments are never bound
		if a.Name == "" {
			add(field, ErrArgumentNoName, "argument has no argumentName and is ignored")
			continue
		}

		// E205: duplicate argument name
		if known[a.Name] {
			add(field, ErrDuplicateArgument, "argument name %q is already bound", a.Name)
		}
		known[a.Name] = true
	}

	texts := []struct {
		field string
		text  string
	}{
		{"message", t.Message},
		{"pattern", t.Pattern},
		{"filter", t.Filter},
		{"having", t.Having},
		{"query", t.Query},
	}
	for _, tx := range texts {
		if tx.text == "" {
			continue
		}
		parsed, err := expr.Parse(tx.text)
		if err != nil {
			// E206: splice syntax
			add(tx.field, ErrSpliceSyntax, "%v", err)
			continue
		}
		// E207: every name resolves
		for _, n := range parsed.Names() {
			if !known[n] {
				add(tx.field, ErrUnknownName, "name %q is neither an argument nor a reserved name", n)
			}
		}
	}
	return errs
}

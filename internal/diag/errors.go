// Package diag defines the error taxonomy and non-fatal diagnostics of
// shape compilation.
//
// Errors fall into three classes:
//
//   - Definition errors: a template or list in the input is broken
//     (TEMPLATE_SYNTAX, TEMPLATE_MISSING_BODY, MALFORMED_LIST,
//     MISSING_ARGUMENT, BAD_ARGUMENT_PATH). The shape being compiled is
//     skipped; other shapes proceed.
//   - Unbound names: a splice references a name the scope does not define
//     (UNBOUND_NAME). Also skips only the current shape.
//   - Contract violations: the compiler was driven outside its contract
//     (MISSING_SHAPE, DEPTH_EXCEEDED, MALFORMED_FRAGMENT). These abort the
//     whole run.
//
// Absence (no scope, no constructs, empty path) is never an error; it is
// reported as a Diagnostic next to the result.
package diag

import (
	"errors"
	"fmt"

	"github.com/roach88/shaclq/internal/rdf"
)

// Code identifies the error category.
type Code string

const (
	CodeTemplateSyntax      Code = "TEMPLATE_SYNTAX"
	CodeTemplateMissingBody Code = "TEMPLATE_MISSING_BODY"
	CodeMalformedList       Code = "MALFORMED_LIST"
	CodeMissingArgument     Code = "MISSING_ARGUMENT"
	CodeBadArgumentPath     Code = "BAD_ARGUMENT_PATH"

	CodeUnboundName Code = "UNBOUND_NAME"

	CodeMissingShape      Code = "MISSING_SHAPE"
	CodeDepthExceeded     Code = "DEPTH_EXCEEDED"
	CodeMalformedFragment Code = "MALFORMED_FRAGMENT"
)

// Class groups codes by how the caller must react.
type Class int

const (
	ClassDefinition Class = iota
	ClassUnboundName
	ClassContract
)

func (c Class) String() string {
	switch c {
	case ClassDefinition:
		return "definition"
	case ClassUnboundName:
		return "unbound-name"
	case ClassContract:
		return "contract"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Class returns the class a code belongs to.
func (c Code) Class() Class {
	switch c {
	case CodeUnboundName:
		return ClassUnboundName
	case CodeMissingShape, CodeDepthExceeded, CodeMalformedFragment:
		return ClassContract
	default:
		return ClassDefinition
	}
}

// Error is a compilation failure with the identity of the offending nodes.
type Error struct {
	Code    Code
	Message string

	// Shape is the shape being compiled when the error occurred.
	Shape rdf.Term

	// Template is the template being instantiated, if any.
	Template rdf.Term

	// Err is the underlying cause (e.g. an expression syntax error).
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Template != nil {
		msg += fmt.Sprintf(" (template=%s)", e.Template)
	}
	if e.Shape != nil {
		msg += fmt.Sprintf(" (shape=%s)", e.Shape)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Class returns the error's class.
func (e *Error) Class() Class {
	return e.Code.Class()
}

// New creates an Error.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around a cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithShape returns a copy of e naming shape, unless a shape is already set.
func (e *Error) WithShape(shape rdf.Term) *Error {
	if e.Shape != nil {
		return e
	}
	cp := *e
	cp.Shape = shape
	return &cp
}

// WithTemplate returns a copy of e naming template, unless one is already set.
func (e *Error) WithTemplate(template rdf.Term) *Error {
	if e.Template != nil {
		return e
	}
	cp := *e
	cp.Template = template
	return &cp
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsDefinitionError reports whether err is a definition error.
func IsDefinitionError(err error) bool {
	de, ok := AsError(err)
	return ok && de.Class() == ClassDefinition
}

// IsUnboundName reports whether err is an unbound-name error.
func IsUnboundName(err error) bool {
	de, ok := AsError(err)
	return ok && de.Class() == ClassUnboundName
}

// IsContractViolation reports whether err is a contract violation.
func IsContractViolation(err error) bool {
	de, ok := AsError(err)
	return ok && de.Class() == ClassContract
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}

package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/shaclq/internal/diag"
	"github.com/roach88/shaclq/internal/rdf"
)

// RunError represents an error that stopped a compilation run.
//
// Run errors include:
//   - Contract violation: the compiler was driven outside its contract
//   - Canceled: the caller's context ended before every shape compiled
//   - Store failure: compiled queries could not be persisted
//
// Definition errors never produce a RunError; they are recorded per shape
// as ShapeFailure and the run continues.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected run.
	RunID string

	// Shape is the shape being compiled when the run stopped, if any.
	Shape rdf.Term

	// Err is the underlying cause.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeContractViolation indicates a compiler contract violation.
	ErrCodeContractViolation RunErrorCode = "CONTRACT_VIOLATION"

	// ErrCodeCanceled indicates the run's context was canceled.
	ErrCodeCanceled RunErrorCode = "CANCELED"

	// ErrCodeStoreFailed indicates compiled queries could not be recorded.
	ErrCodeStoreFailed RunErrorCode = "STORE_FAILED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.RunID != "" && e.Shape != nil:
		msg += fmt.Sprintf(" (run=%s, shape=%s)", e.RunID, e.Shape)
	case e.RunID != "":
		msg += fmt.Sprintf(" (run=%s)", e.RunID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsContractViolation returns true if the run stopped on a compiler
// contract violation. Uses errors.As to handle wrapped errors.
func IsContractViolation(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeContractViolation
	}
	return diag.IsContractViolation(err)
}

// IsCanceled returns true if the run was canceled.
func IsCanceled(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCanceled
	}
	return false
}

// ShapeFailure records a shape skipped because of a definition error or an
// unbound name.
type ShapeFailure struct {
	Shape rdf.Term
	Err   error
}

func (f ShapeFailure) Error() string {
	return fmt.Sprintf("shape %s: %v", f.Shape, f.Err)
}

func (f ShapeFailure) Unwrap() error {
	return f.Err
}

// Code returns the compiler error code, or "" for errors from elsewhere.
func (f ShapeFailure) Code() diag.Code {
	if de, ok := diag.AsError(f.Err); ok {
		return de.Code
	}
	return ""
}

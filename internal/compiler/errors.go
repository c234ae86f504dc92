package compiler

import (
	"errors"
	"fmt"
)

// CompileError represents a compile-time rejection of a malformed clause.
//
// Compile errors include:
//   - Invalid predicate: the dispatcher found no matching kind
//   - Arity error: a filter emits other than 0 or 1 field, or a source
//     declaration was given inputs
//   - Planner invariant: a generator received an input-side stage
//
// Nothing at this layer is recoverable locally; every error propagates to
// the caller unmodified. A planner-invariant error indicates an upstream
// planner bug, not user error, and should never be caught and retried.
type CompileError struct {
	// Code identifies the error category.
	Code CompileErrorCode

	// Message is a human-readable description.
	Message string

	// Operator is the offending operator value, when one exists.
	Operator any
}

// CompileErrorCode categorizes compile errors.
type CompileErrorCode string

const (
	// ErrCodeInvalidPredicate indicates no predicate kind matched the
	// operator value.
	ErrCodeInvalidPredicate CompileErrorCode = "INVALID_PREDICATE"

	// ErrCodeArity indicates an operator was given an unsupported
	// input/output shape.
	ErrCodeArity CompileErrorCode = "ARITY_ERROR"

	// ErrCodePlannerInvariant indicates an internal invariant violation
	// caused by the upstream planner.
	ErrCodePlannerInvariant CompileErrorCode = "PLANNER_INVARIANT"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Operator != nil {
		return fmt.Sprintf("%s: %s (operator %v of type %T)", e.Code, e.Message, e.Operator, e.Operator)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidPredicate returns true if the error is an invalid-predicate
// error. Uses errors.As to handle wrapped errors.
func IsInvalidPredicate(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidPredicate
	}
	return false
}

// IsArityError returns true if the error is an arity error.
// Uses errors.As to handle wrapped errors.
func IsArityError(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeArity
	}
	return false
}

// IsPlannerInvariant returns true if the error is a planner-invariant
// violation. Uses errors.As to handle wrapped errors.
func IsPlannerInvariant(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodePlannerInvariant
	}
	return false
}

// NewInvalidPredicateError creates a CompileError for an operator value no
// predicate kind matches.
func NewInvalidPredicateError(op any) *CompileError {
	return &CompileError{
		Code:     ErrCodeInvalidPredicate,
		Message:  "operator value matches no predicate kind",
		Operator: op,
	}
}

// NewArityError creates a CompileError for an unsupported operator shape.
func NewArityError(message string, op any) *CompileError {
	return &CompileError{
		Code:     ErrCodeArity,
		Message:  message,
		Operator: op,
	}
}

// NewPlannerInvariantError creates a CompileError for an internal
// invariant violation.
func NewPlannerInvariantError(message string) *CompileError {
	return &CompileError{
		Code:    ErrCodePlannerInvariant,
		Message: message,
	}
}

// Package errors provides coded errors with actionable suggestions for
// every failure the orchestrator can surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskflow/internal/task"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Task table errors (TABLE-001 to TABLE-099)
	ErrCodeTableParse     ErrorCode = "TABLE-001"
	ErrCodeTableDuplicate ErrorCode = "TABLE-002"
	ErrCodeTaskNotFound   ErrorCode = "TABLE-003"
	ErrCodeTableRead      ErrorCode = "TABLE-004"
	ErrCodeTableWrite     ErrorCode = "TABLE-005"

	// Dependency graph errors (GRAPH-001 to GRAPH-099)
	ErrCodeCycleDetected     ErrorCode = "GRAPH-001"
	ErrCodeMissingDependency ErrorCode = "GRAPH-002"

	// Phase protocol errors (PHASE-001 to PHASE-099)
	ErrCodeInvalidTransition ErrorCode = "PHASE-001"
	ErrCodeValidationFailure ErrorCode = "PHASE-002"

	// Plan document errors (DOC-001 to DOC-099)
	ErrCodeTaskCountMismatch ErrorCode = "DOC-001"
	ErrCodeTaskSetMismatch   ErrorCode = "DOC-002"
	ErrCodeDocumentParse     ErrorCode = "DOC-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// Version control sink errors (GIT-001 to GIT-099)
	ErrCodeCommitFailed ErrorCode = "GIT-001"
)

// TaskflowError represents an enhanced error with code, suggestions,
// and an optional wrapped cause
type TaskflowError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *TaskflowError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *TaskflowError) Unwrap() error {
	return e.Cause
}

// New creates a new TaskflowError
func New(code ErrorCode, message string) *TaskflowError {
	return &TaskflowError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new TaskflowError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *TaskflowError {
	return &TaskflowError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *TaskflowError) WithSuggestion(suggestion string) *TaskflowError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *TaskflowError) WithSuggestions(suggestions ...string) *TaskflowError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the code carried by err, or "" if err is not a
// TaskflowError
func CodeOf(err error) ErrorCode {
	var te *TaskflowError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return ""
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// MessageOf returns the bare message of a TaskflowError without the
// code prefix and suggestions, or err.Error() for plain errors.
func MessageOf(err error) string {
	var te *TaskflowError
	if stderrors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}

// IsValidationFailure reports whether err is the one recoverable error
// kind: a guard condition that was not met. Everything else halts the
// session.
func IsValidationFailure(err error) bool {
	return HasCode(err, ErrCodeValidationFailure)
}

// Common error constructors for frequently used errors

// NewTableParseError creates a malformed-row error
func NewTableParseError(path string, line int, detail string) *TaskflowError {
	return New(ErrCodeTableParse, fmt.Sprintf("malformed task table %s, row %d: %s", path, line, detail)).
		WithSuggestion("Check the row against the required columns: number, title, status, dependencies, estimated_hours, complexity, notes").
		WithSuggestion("Run 'taskflow init' to regenerate the table from the plan document")
}

// NewDuplicateTaskError creates a duplicate task number error
func NewDuplicateTaskError(n task.Number) *TaskflowError {
	return New(ErrCodeTableDuplicate, fmt.Sprintf("duplicate task number: %s", n)).
		WithSuggestion("Task numbers must be unique; renumber the duplicated row in the plan document")
}

// NewTaskNotFoundError creates a missing task error
func NewTaskNotFoundError(n task.Number) *TaskflowError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("task not found: %s", n)).
		WithSuggestion("Run 'taskflow status' to list known task numbers")
}

// NewCycleError creates a dependency cycle error naming the cycle
func NewCycleError(cycle []task.Number) *TaskflowError {
	parts := make([]string, len(cycle))
	for i, n := range cycle {
		parts[i] = n.String()
	}
	return New(ErrCodeCycleDetected, fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))).
		WithSuggestion("Break the cycle by removing one of the listed dependencies")
}

// NewMissingDependencyError creates an unresolved dependency error
func NewMissingDependencyError(n, dep task.Number) *TaskflowError {
	return New(ErrCodeMissingDependency, fmt.Sprintf("task %s depends on unknown task %s", n, dep)).
		WithSuggestion("Add the missing task to the plan document or remove the dependency")
}

// NewInvalidTransitionError creates an out-of-order transition error
func NewInvalidTransitionError(n task.Number, from, to task.Phase) *TaskflowError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("task %s: illegal transition %s -> %s", n, from, to)).
		WithSuggestion("Phases advance strictly forward, one step at a time")
}

// NewValidationFailure creates a recoverable guard failure; the loop
// retries the same phase
func NewValidationFailure(n task.Number, phase task.Phase, reason string) *TaskflowError {
	return New(ErrCodeValidationFailure, fmt.Sprintf("task %s: %s guard not satisfied: %s", n, phase, reason)).
		WithSuggestion("Resolve the reported condition and re-run; the task stays at its current phase")
}

// NewTaskCountMismatchError creates a document/table cardinality error
func NewTaskCountMismatchError(documentCount, tableCount int) *TaskflowError {
	return New(ErrCodeTaskCountMismatch, fmt.Sprintf("plan document has %d tasks but the table has %d", documentCount, tableCount)).
		WithSuggestion("Run 'taskflow validate' to see which numbers differ").
		WithSuggestion("Re-run 'taskflow init' only if losing recorded progress is acceptable")
}

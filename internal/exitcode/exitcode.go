// Package exitcode maps errors to process exit codes.
package exitcode

import (
	"os"

	"github.com/felixgeelhaar/taskflow/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// StateError indicates the task table or plan document could not be
	// loaded or is structurally invalid
	StateError = 3

	// CommitError indicates the version control sink rejected a commit
	CommitError = 4

	// Interrupted indicates the session was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code by its error code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeTableParse,
		errors.ErrCodeTableDuplicate,
		errors.ErrCodeTableRead,
		errors.ErrCodeTableWrite,
		errors.ErrCodeCycleDetected,
		errors.ErrCodeMissingDependency,
		errors.ErrCodeDocumentParse,
		errors.ErrCodeTaskCountMismatch,
		errors.ErrCodeTaskSetMismatch:
		return StateError
	case errors.ErrCodeCommitFailed:
		return CommitError
	case errors.ErrCodeConfigInvalid:
		return UsageError
	default:
		return GeneralError
	}
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments, or configuration)"
	case StateError:
		return "Task table or plan document invalid"
	case CommitError:
		return "Version control commit failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}

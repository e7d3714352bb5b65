package exitcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

func TestDetermineExitCode(t *testing.T) {
	n := task.Number{Major: 1, Minor: 1}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain error", fmt.Errorf("boom"), GeneralError},
		{"table parse", errors.NewTableParseError("tasks.csv", 3, "bad status"), StateError},
		{"cycle", errors.NewCycleError([]task.Number{n, n}), StateError},
		{"count mismatch", errors.NewTaskCountMismatchError(5, 4), StateError},
		{"commit failed", errors.New(errors.ErrCodeCommitFailed, "worktree dirty"), CommitError},
		{"bad config", errors.New(errors.ErrCodeConfigInvalid, "coverage_floor out of range"), UsageError},
		{"guard failure", errors.NewValidationFailure(n, task.PhaseInProgress, "tests failing"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	assert.Equal(t, "Success", GetExitCodeDescription(Success))
	assert.Equal(t, "Unknown error", GetExitCodeDescription(99))
}

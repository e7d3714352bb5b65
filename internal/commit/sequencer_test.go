package commit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskflow/internal/task"
)

var exampleTask = task.Task{
	Number: task.Number{Major: 2, Minor: 3},
	Title:  "Implement retry logic",
}

func TestCanonicalMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindStart, "Update: task 2.3 status to in-progress"},
		{KindTests, "Test: Add tests for task 2.3"},
		{KindImplement, "Feat/Fix: Implement task 2.3"},
		{KindRefactor, "Refactor: Clean up task 2.3"},
		{KindStatusDone, "Update: task 2.3 status to done"},
		{KindComplete, "Task 2.3: Implement retry logic"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Message(exampleTask))
	}
}

func TestForTransition(t *testing.T) {
	tk := exampleTask
	tk.Phase = task.PhasePending

	recs, err := ForTransition(tk, task.PhaseInProgress)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, KindStart, recs[0].Kind)
	assert.Equal(t, tk.Number, recs[0].Number)

	// The final transition carries two commits: status flip plus the
	// completion commit.
	tk.Phase = task.PhaseRefactored
	recs, err = ForTransition(tk, task.PhaseDone)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, KindStatusDone, recs[0].Kind)
	assert.Equal(t, KindComplete, recs[1].Kind)

	_, err = ForTransition(tk, task.PhasePending)
	require.Error(t, err, "no commit maps to entering pending")
}

func TestFullDriveEmitsCanonicalSequence(t *testing.T) {
	// Walking a task through every transition must emit exactly the
	// canonical six-element sequence, in order.
	tk := exampleTask
	tk.Phase = task.PhasePending

	var observed []Kind
	for {
		next, ok := tk.Phase.Next()
		if !ok {
			break
		}
		recs, err := ForTransition(tk, next)
		require.NoError(t, err)
		for _, rec := range recs {
			observed = append(observed, rec.Kind)
		}
		tk.Phase = next
	}

	require.Equal(t, Canonical(), observed)
	require.NoError(t, VerifyPrefix(observed))
}

func TestVerifyPrefix(t *testing.T) {
	assert.NoError(t, VerifyPrefix(nil))
	assert.NoError(t, VerifyPrefix([]Kind{KindStart}))
	assert.NoError(t, VerifyPrefix([]Kind{KindStart, KindTests, KindImplement}))

	assert.Error(t, VerifyPrefix([]Kind{KindTests}), "sequence must start at the beginning")
	assert.Error(t, VerifyPrefix([]Kind{KindStart, KindImplement}), "no skipping")
	assert.Error(t, VerifyPrefix(append(Canonical(), KindComplete)), "no commits past the canonical six")
}

func TestExpectedByPhase(t *testing.T) {
	assert.Nil(t, ExpectedByPhase(task.PhasePending))
	assert.Len(t, ExpectedByPhase(task.PhaseTestsWritten), 2)
	assert.Equal(t, Canonical(), ExpectedByPhase(task.PhaseDone))
}

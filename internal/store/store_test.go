package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

func num(major, minor int) task.Number {
	return task.Number{Major: major, Minor: minor}
}

func newTestStore(t *testing.T, tasks ...task.Task) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "tasks.csv"))
	for _, tk := range tasks {
		require.NoError(t, s.Append(tk))
	}
	return s
}

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t,
		task.Task{
			Number:         num(1, 1),
			Title:          "table parser",
			Phase:          task.PhaseDone,
			EstimatedHours: 2.5,
			Complexity:     task.ComplexityLow,
			Notes:          "watch quoting, commas",
		},
		task.Task{
			Number:         num(1, 2),
			Title:          "resolver",
			Phase:          task.PhaseTestsWritten,
			Dependencies:   []task.Number{num(1, 1)},
			EstimatedHours: 4,
			Complexity:     task.ComplexityHigh,
		},
		task.Task{
			Number:     num(2, 1),
			Title:      "reporter",
			Phase:      task.PhasePending,
			Complexity: task.ComplexityMedium,
		},
	)

	require.NoError(t, s.Save())

	loaded, err := Open(s.Path())
	require.NoError(t, err)
	require.Equal(t, s.Tasks(), loaded.Tasks(), "load(save(t)) must equal t field for field")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTableRead))
}

func TestOpenRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{
			name:    "missing required column",
			content: "number,title,status\n1.1,parser,pending\n",
			code:    errors.ErrCodeTableParse,
		},
		{
			name:    "bad status value",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n1.1,parser,started,,1,low,\n",
			code:    errors.ErrCodeTableParse,
		},
		{
			name:    "self-referential dependency",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n1.1,parser,pending,1.1,1,low,\n",
			code:    errors.ErrCodeTableParse,
		},
		{
			name:    "bad number",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\nseven,parser,pending,,1,low,\n",
			code:    errors.ErrCodeTableParse,
		},
		{
			name:    "bad complexity",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n1.1,parser,pending,,1,impossible,\n",
			code:    errors.ErrCodeTableParse,
		},
		{
			name: "duplicate number",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n" +
				"1.1,parser,pending,,1,low,\n1.1,again,pending,,1,low,\n",
			code: errors.ErrCodeTableDuplicate,
		},
		{
			name:    "missing dependency",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n1.1,parser,pending,9.9,1,low,\n",
			code:    errors.ErrCodeMissingDependency,
		},
		{
			name: "dependency cycle",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes\n" +
				"1.1,a,pending,1.2,1,low,\n1.2,b,pending,1.1,1,low,\n",
			code: errors.ErrCodeCycleDetected,
		},
		{
			name:    "phase contradicts status",
			content: "number,title,status,dependencies,estimated_hours,complexity,notes,phase\n1.1,parser,pending,,1,low,,done\n",
			code:    errors.ErrCodeTableParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(writeTable(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestOpenWithoutPhaseColumn(t *testing.T) {
	// Tables from before the phase column derive the phase from status.
	path := writeTable(t, "number,title,status,dependencies,estimated_hours,complexity,notes\n"+
		"1.1,parser,done,,1,low,\n"+
		"1.2,resolver,in-progress,1.1,2,medium,\n")

	s, err := Open(path)
	require.NoError(t, err)

	tk, err := s.Get(num(1, 1))
	require.NoError(t, err)
	assert.Equal(t, task.PhaseDone, tk.Phase)

	tk, err = s.Get(num(1, 2))
	require.NoError(t, err)
	assert.Equal(t, task.PhaseInProgress, tk.Phase)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	s := newTestStore(t, task.Task{Number: num(1, 1), Title: "parser", Phase: task.PhasePending})

	// The full canonical walk succeeds one step at a time.
	sequence := []task.Phase{
		task.PhaseInProgress,
		task.PhaseTestsWritten,
		task.PhaseImplementationWritten,
		task.PhaseRefactored,
		task.PhaseDone,
	}
	for _, p := range sequence {
		require.NoError(t, s.UpdateStatus(num(1, 1), p))
	}

	tk, err := s.Get(num(1, 1))
	require.NoError(t, err)
	assert.Equal(t, task.PhaseDone, tk.Phase)

	// Terminal: nothing advances past done.
	err = s.UpdateStatus(num(1, 1), task.PhaseDone)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
}

func TestUpdateStatusRejectsSkipAndRegress(t *testing.T) {
	s := newTestStore(t, task.Task{Number: num(1, 1), Phase: task.PhaseInProgress})

	err := s.UpdateStatus(num(1, 1), task.PhaseImplementationWritten)
	require.Error(t, err, "skipping tests-written must fail")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))

	err = s.UpdateStatus(num(1, 1), task.PhasePending)
	require.Error(t, err, "regressing must fail")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))

	// Failed updates leave the table untouched.
	tk, _ := s.Get(num(1, 1))
	assert.Equal(t, task.PhaseInProgress, tk.Phase)
}

func TestSingleTaskInFlight(t *testing.T) {
	s := newTestStore(t,
		task.Task{Number: num(1, 1), Phase: task.PhaseTestsWritten},
		task.Task{Number: num(1, 2), Phase: task.PhasePending},
	)

	err := s.UpdateStatus(num(1, 2), task.PhaseInProgress)
	require.Error(t, err, "starting a second task while 1.1 is in flight must fail")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))

	inFlight, ok := s.InFlight()
	require.True(t, ok)
	assert.Equal(t, num(1, 1), inFlight.Number)
}

func TestAppendRejectsDuplicate(t *testing.T) {
	s := newTestStore(t, task.Task{Number: num(1, 1)})
	err := s.Append(task.Task{Number: num(1, 1)})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTableDuplicate))
}

func TestBlockedMarkerPersistence(t *testing.T) {
	s := newTestStore(t, task.Task{Number: num(1, 1), Phase: task.PhaseInProgress, Notes: "seed note"})

	require.NoError(t, s.MarkBlocked(num(1, 1), "suite unavailable"))
	require.NoError(t, s.Save())

	loaded, err := Open(s.Path())
	require.NoError(t, err)
	tk, err := loaded.Get(num(1, 1))
	require.NoError(t, err)

	reason, ok := tk.Blocked()
	require.True(t, ok)
	assert.Equal(t, "suite unavailable", reason)
	assert.Equal(t, task.PhaseInProgress, tk.Phase, "blocked is a note marker, not a status")

	require.NoError(t, loaded.ClearBlocked(num(1, 1)))
	tk, _ = loaded.Get(num(1, 1))
	_, ok = tk.Blocked()
	assert.False(t, ok)
	assert.Equal(t, "seed note", tk.Notes)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(t, task.Task{Number: num(1, 1), Dependencies: []task.Number{num(0, 1)}})
	// Mutating a returned task must not leak into the store. 0.1 is a
	// real row so validation elsewhere stays happy.
	require.NoError(t, s.Append(task.Task{Number: num(0, 1)}))

	tk, err := s.Get(num(1, 1))
	require.NoError(t, err)
	tk.Title = "mutated"
	tk.Dependencies[0] = num(9, 9)

	again, _ := s.Get(num(1, 1))
	assert.Empty(t, again.Title)
	assert.Equal(t, num(0, 1), again.Dependencies[0])
}

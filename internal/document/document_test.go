package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

const samplePlan = `version: "1.0"
tasks:
  - number: "1.1"
    title: CSV table parser
    description: Parse and validate the persisted task table.
    estimated_hours: 3
    complexity: medium
  - number: "1.2"
    title: Dependency resolver
    depends_on: ["1.1"]
    estimated_hours: 2
    complexity: low
  - number: "2.1"
    title: Execution loop
    depends_on: ["1.1", "1.2"]
    complexity: high
`

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func num(major, minor int) task.Number {
	return task.Number{Major: major, Minor: minor}
}

func TestFileSourceItems(t *testing.T) {
	src := NewFileSource(writePlan(t, samplePlan))

	items, err := src.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, num(1, 1), items[0].Number)
	assert.Equal(t, "CSV table parser", items[0].Title)
	assert.Equal(t, task.ComplexityMedium, items[0].Complexity)
	assert.Equal(t, []task.Number{num(1, 1), num(1, 2)}, items[2].DependsOn)
}

func TestFileSourceRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad number", "tasks:\n  - number: seven\n    title: x\n"},
		{"bad complexity", "tasks:\n  - number: \"1.1\"\n    title: x\n    complexity: brutal\n"},
		{"bad dependency", "tasks:\n  - number: \"1.1\"\n    title: x\n    depends_on: [nope]\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewFileSource(writePlan(t, tt.content))
			_, err := src.Items(context.Background())
			require.Error(t, err)
		})
	}
}

func TestFileSourceRejectsDuplicateNumbers(t *testing.T) {
	src := NewFileSource(writePlan(t, "tasks:\n  - number: \"1.1\"\n    title: a\n  - number: \"1.1\"\n    title: b\n"))
	_, err := src.Items(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTableDuplicate))
}

func TestPopulate(t *testing.T) {
	items := []Item{
		{Number: num(1, 1), Title: "parser", EstimatedHours: 3, Complexity: task.ComplexityLow},
		{Number: num(1, 2), Title: "resolver", DependsOn: []task.Number{num(1, 1)}, Complexity: task.ComplexityHigh},
	}

	tasks := Populate(items)
	require.Len(t, tasks, 2)
	for _, tk := range tasks {
		assert.Equal(t, task.PhasePending, tk.Phase, "all populated tasks start pending")
	}
	assert.Equal(t, []task.Number{num(1, 1)}, tasks[1].Dependencies)
}

func TestReconcileMismatchGate(t *testing.T) {
	items := []Item{
		{Number: num(1, 1)}, {Number: num(1, 2)}, {Number: num(1, 3)},
		{Number: num(2, 1)}, {Number: num(2, 2)},
	}
	tasks := Populate(items)

	require.NoError(t, Reconcile(items, tasks))

	// Five document items against four table rows: fatal before any
	// execution step.
	err := Reconcile(items, tasks[:4])
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTaskCountMismatch))

	// Same cardinality but different numbers is just as fatal.
	swapped := Populate(items)
	swapped[0].Number = num(9, 9)
	err = Reconcile(items, swapped)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTaskSetMismatch))
}

func TestFingerprintStability(t *testing.T) {
	items := []Item{
		{Number: num(1, 2), Title: "resolver", DependsOn: []task.Number{num(1, 1)}},
		{Number: num(1, 1), Title: "parser"},
	}
	reordered := []Item{items[1], items[0]}

	assert.Equal(t, Fingerprint(items), Fingerprint(reordered), "item order must not affect the fingerprint")

	changed := append([]Item(nil), items...)
	changed[0].Title = "resolver v2"
	assert.NotEqual(t, Fingerprint(items), Fingerprint(changed))
}

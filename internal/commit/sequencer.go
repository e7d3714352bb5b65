// Package commit maps phase transitions to the canonical commit
// message templates and verifies commit ordering.
package commit

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// Kind identifies one of the six canonical commit kinds, in order.
type Kind int

// The canonical commit sequence for a task.
const (
	KindStart Kind = iota // status to in-progress
	KindTests             // failing tests added
	KindImplement         // implementation makes them pass
	KindRefactor          // cleanup, behavior unchanged
	KindStatusDone        // status to done
	KindComplete          // final completion commit
)

var kindNames = map[Kind]string{
	KindStart:      "start",
	KindTests:      "tests",
	KindImplement:  "implement",
	KindRefactor:   "refactor",
	KindStatusDone: "status-done",
	KindComplete:   "complete",
}

// String returns a short name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message renders the canonical template for this kind, parameterized
// by the task.
func (k Kind) Message(t task.Task) string {
	switch k {
	case KindStart:
		return fmt.Sprintf("Update: task %s status to in-progress", t.Number)
	case KindTests:
		return fmt.Sprintf("Test: Add tests for task %s", t.Number)
	case KindImplement:
		return fmt.Sprintf("Feat/Fix: Implement task %s", t.Number)
	case KindRefactor:
		return fmt.Sprintf("Refactor: Clean up task %s", t.Number)
	case KindStatusDone:
		return fmt.Sprintf("Update: task %s status to done", t.Number)
	case KindComplete:
		return fmt.Sprintf("Task %s: %s", t.Number, t.Title)
	default:
		return ""
	}
}

// Record is one required commit side effect: the task it belongs to,
// its kind, and the rendered message. Records are derived, never
// persisted.
type Record struct {
	Number  task.Number
	Kind    Kind
	Message string
}

// Sink accepts commit requests. The go-git implementation lives in
// internal/vcs; tests and dry runs use an in-memory recorder.
type Sink interface {
	Commit(ctx context.Context, rec Record) error
}

// Canonical returns the full six-element commit sequence.
func Canonical() []Kind {
	return []Kind{KindStart, KindTests, KindImplement, KindRefactor, KindStatusDone, KindComplete}
}

// ForTransition returns the commit records required by advancing the
// task to next. Every transition requires exactly one commit except
// the final one, which requires the status-to-done commit followed by
// the completion commit.
func ForTransition(t task.Task, next task.Phase) ([]Record, error) {
	var kinds []Kind
	switch next {
	case task.PhaseInProgress:
		kinds = []Kind{KindStart}
	case task.PhaseTestsWritten:
		kinds = []Kind{KindTests}
	case task.PhaseImplementationWritten:
		kinds = []Kind{KindImplement}
	case task.PhaseRefactored:
		kinds = []Kind{KindRefactor}
	case task.PhaseDone:
		kinds = []Kind{KindStatusDone, KindComplete}
	default:
		return nil, errors.NewInvalidTransitionError(t.Number, t.Phase, next)
	}

	records := make([]Record, len(kinds))
	for i, k := range kinds {
		records[i] = Record{Number: t.Number, Kind: k, Message: k.Message(t)}
	}
	return records, nil
}

// ExpectedByPhase returns the commit kinds that must have been emitted
// for a task to legally sit at the given phase.
func ExpectedByPhase(p task.Phase) []Kind {
	switch p {
	case task.PhasePending:
		return nil
	case task.PhaseInProgress:
		return Canonical()[:1]
	case task.PhaseTestsWritten:
		return Canonical()[:2]
	case task.PhaseImplementationWritten:
		return Canonical()[:3]
	case task.PhaseRefactored:
		return Canonical()[:4]
	case task.PhaseDone:
		return Canonical()
	default:
		return nil
	}
}

// VerifyPrefix checks that an observed sequence of commit kinds is a
// prefix of the canonical sequence. Emission is delegated to the
// external version control sink, so this property is verified
// independently of the sequencer itself.
func VerifyPrefix(observed []Kind) error {
	canonical := Canonical()
	if len(observed) > len(canonical) {
		return fmt.Errorf("observed %d commits, canonical sequence has %d", len(observed), len(canonical))
	}
	for i, k := range observed {
		if k != canonical[i] {
			return fmt.Errorf("commit %d is %s, canonical sequence expects %s", i+1, k, canonical[i])
		}
	}
	return nil
}

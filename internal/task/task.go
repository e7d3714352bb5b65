// Package task defines the task data model: hierarchical task numbers,
// the six-phase completion protocol, and the externally visible status
// projection persisted in the task table.
package task

import (
	"fmt"
	"strings"
)

// Status is the externally visible state of a task as persisted in the
// task table. It is a projection of the finer-grained Phase.
type Status string

// Status values as they appear in the persisted table.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParseStatus parses a persisted status value.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status %q: expected pending, in-progress, or done", s)
	}
}

// Phase is the internal completion stage of a task. Phases advance
// strictly forward, one step at a time; no phase may be skipped and no
// task may regress.
type Phase int

// The canonical phase sequence.
const (
	PhasePending Phase = iota
	PhaseInProgress
	PhaseTestsWritten
	PhaseImplementationWritten
	PhaseRefactored
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhasePending:               "pending",
	PhaseInProgress:            "in-progress",
	PhaseTestsWritten:          "tests-written",
	PhaseImplementationWritten: "implementation-written",
	PhaseRefactored:            "refactored",
	PhaseDone:                  "done",
}

// String returns the persisted form of the phase.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase parses a persisted phase value.
func ParsePhase(s string) (Phase, error) {
	s = strings.TrimSpace(s)
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid phase %q", s)
}

// Status projects the phase onto the three externally visible status
// values: everything between start and completion is in-progress.
func (p Phase) Status() Status {
	switch p {
	case PhasePending:
		return StatusPending
	case PhaseDone:
		return StatusDone
	default:
		return StatusInProgress
	}
}

// Next returns the phase that follows p in the canonical sequence.
// ok is false for the terminal phase.
func (p Phase) Next() (next Phase, ok bool) {
	if p >= PhaseDone {
		return p, false
	}
	return p + 1, true
}

// Terminal reports whether p is the terminal phase.
func (p Phase) Terminal() bool {
	return p == PhaseDone
}

// PhaseForStatus returns the coarsest phase consistent with a status
// value. Used when loading tables that predate the phase column.
func PhaseForStatus(s Status) (Phase, error) {
	switch s {
	case StatusPending:
		return PhasePending, nil
	case StatusInProgress:
		return PhaseInProgress, nil
	case StatusDone:
		return PhaseDone, nil
	default:
		return 0, fmt.Errorf("invalid status %q", s)
	}
}

// Complexity is advisory metadata; it never influences scheduling.
type Complexity string

// Complexity values.
const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ParseComplexity parses a persisted complexity value. An empty string
// defaults to medium.
func ParseComplexity(s string) (Complexity, error) {
	switch Complexity(strings.TrimSpace(s)) {
	case "":
		return ComplexityMedium, nil
	case ComplexityLow:
		return ComplexityLow, nil
	case ComplexityMedium:
		return ComplexityMedium, nil
	case ComplexityHigh:
		return ComplexityHigh, nil
	default:
		return "", fmt.Errorf("invalid complexity %q: expected low, medium, or high", s)
	}
}

// Task is one planned unit of work. Only Phase and Notes are mutated
// after creation; a task is never deleted, only marked done.
type Task struct {
	Number         Number
	Title          string
	Phase          Phase
	Dependencies   []Number
	EstimatedHours float64
	Complexity     Complexity
	Notes          string
}

// Status returns the externally visible status of the task.
func (t Task) Status() Status {
	return t.Phase.Status()
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = make([]Number, len(t.Dependencies))
		copy(c.Dependencies, t.Dependencies)
	}
	return c
}

// blockedPrefix marks the blocked side-state in the notes field. The
// marker is bookkeeping only; it is not a status value and does not
// affect the forward-only phase invariant.
const blockedPrefix = "blocked: "

// SetBlocked records a blocked marker in the notes, replacing any
// previous marker and preserving other note text.
func (t *Task) SetBlocked(reason string) {
	t.ClearBlocked()
	if t.Notes == "" {
		t.Notes = blockedPrefix + reason
		return
	}
	t.Notes = blockedPrefix + reason + "; " + t.Notes
}

// ClearBlocked removes the blocked marker from the notes, if present.
func (t *Task) ClearBlocked() {
	rest, ok := strings.CutPrefix(t.Notes, blockedPrefix)
	if !ok {
		return
	}
	if i := strings.Index(rest, "; "); i >= 0 {
		t.Notes = rest[i+2:]
		return
	}
	t.Notes = ""
}

// Blocked reports whether the task carries a blocked marker and, if
// so, the recorded reason.
func (t Task) Blocked() (reason string, ok bool) {
	rest, found := strings.CutPrefix(t.Notes, blockedPrefix)
	if !found {
		return "", false
	}
	if i := strings.Index(rest, "; "); i >= 0 {
		return rest[:i], true
	}
	return rest, true
}

// Package phase enforces the legal phase sequence for a single task.
// The machine never inspects code or test content itself; it delegates
// each guard to the execution agent and interprets the structured
// result.
package phase

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// DefaultCoverageFloor is the minimum fraction of new code that must
// be exercised by tests before a task may finish.
const DefaultCoverageFloor = 0.8

// Result is the structured signal an agent reports back for a guard
// check. Coverage is a fraction in [0,1] and is only meaningful for
// the final verification; a negative value means no coverage signal
// was available.
type Result struct {
	Passed   bool
	Coverage float64
	Reason   string
}

// Agent performs the actual test-writing, coding and refactoring for a
// task. Each method corresponds to one transition guard and blocks
// until a definite result is known.
type Agent interface {
	// WriteTests creates tests for the task. The guard passes when new
	// tests exist and currently fail against the implementation.
	WriteTests(ctx context.Context, t task.Task) (Result, error)

	// Implement writes the implementation. The guard passes when the
	// task's tests pass.
	Implement(ctx context.Context, t task.Task) (Result, error)

	// Refactor cleans up without functional change. The guard passes
	// when the tests still pass afterwards.
	Refactor(ctx context.Context, t task.Task) (Result, error)

	// Verify runs the full suite and measures coverage of the new
	// code. The guard passes when the suite is green and coverage
	// meets the floor.
	Verify(ctx context.Context, t task.Task) (Result, error)
}

// Machine drives one task through the canonical phase sequence.
type Machine struct {
	agent         Agent
	coverageFloor float64
}

// NewMachine creates a phase machine backed by the given agent. A
// coverageFloor of zero selects the default.
func NewMachine(agent Agent, coverageFloor float64) *Machine {
	if coverageFloor <= 0 {
		coverageFloor = DefaultCoverageFloor
	}
	return &Machine{agent: agent, coverageFloor: coverageFloor}
}

// CoverageFloor returns the configured minimum coverage fraction.
func (m *Machine) CoverageFloor() float64 {
	return m.coverageFloor
}

// Advance evaluates the guard for the task's next transition and
// returns the phase the task may move to. When a guard is unmet the
// returned error is a ValidationFailure and the task stays where it
// is: the loop retries the same phase, never silently advancing and
// never reverting.
//
// The pending start guard (task must be in the ready set) is checked
// by the execution loop, which owns the dependency view; for a pending
// task Advance only names the next phase.
func (m *Machine) Advance(ctx context.Context, t task.Task) (task.Phase, Result, error) {
	next, ok := t.Phase.Next()
	if !ok {
		return t.Phase, Result{}, errors.NewInvalidTransitionError(t.Number, t.Phase, t.Phase)
	}

	var (
		res Result
		err error
	)
	switch t.Phase {
	case task.PhasePending:
		// Readiness was established by the caller; no agent work yet.
		return next, Result{Passed: true}, nil
	case task.PhaseInProgress:
		res, err = m.agent.WriteTests(ctx, t)
	case task.PhaseTestsWritten:
		res, err = m.agent.Implement(ctx, t)
	case task.PhaseImplementationWritten:
		res, err = m.agent.Refactor(ctx, t)
	case task.PhaseRefactored:
		res, err = m.agent.Verify(ctx, t)
	}
	if err != nil {
		return t.Phase, res, err
	}

	if !res.Passed {
		reason := res.Reason
		if reason == "" {
			reason = "agent reported failure"
		}
		return t.Phase, res, errors.NewValidationFailure(t.Number, t.Phase, reason)
	}

	// Finishing additionally requires a measurable coverage signal at
	// or above the floor. An absent signal is a failure, never a
	// default pass.
	if t.Phase == task.PhaseRefactored {
		if res.Coverage < 0 {
			return t.Phase, res, errors.NewValidationFailure(t.Number, t.Phase, "no coverage signal available")
		}
		if res.Coverage < m.coverageFloor {
			return t.Phase, res, errors.NewValidationFailure(t.Number, t.Phase,
				fmt.Sprintf("coverage %.0f%% below required %.0f%%", res.Coverage*100, m.coverageFloor*100))
		}
	}

	return next, res, nil
}

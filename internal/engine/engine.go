// Package engine is the top-level execution loop: it picks a ready
// task, drives its phase machine one transition per step, and keeps
// the persisted table and the version control sink in lockstep.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskflow/internal/commit"
	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/graph"
	"github.com/felixgeelhaar/taskflow/internal/log"
	"github.com/felixgeelhaar/taskflow/internal/phase"
	"github.com/felixgeelhaar/taskflow/internal/store"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// OutcomeKind classifies the result of one execution step.
type OutcomeKind int

const (
	// OutcomeAdvanced means one task moved one phase forward.
	OutcomeAdvanced OutcomeKind = iota
	// OutcomeBlocked means no progress was possible: either a guard
	// failed on the current task or remaining tasks wait on unmet
	// dependencies. State is unchanged except for the blocked note.
	OutcomeBlocked
	// OutcomeAllComplete means every task is done.
	OutcomeAllComplete
)

// String returns a short name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeAllComplete:
		return "all-complete"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome describes what one RunOnce step did. Fatal conditions are
// returned as errors, not outcomes.
type Outcome struct {
	Kind    OutcomeKind
	Task    *task.Task      // the task acted on, if any
	Phase   task.Phase      // the phase reached when advanced
	Reason  string          // why the step blocked
	Waiting []task.Number   // unmet dependencies when blocked on them
	Commits []commit.Record // commits requested by this step
}

// Engine drives tasks serially: one task in flight, one transition per
// step, a persisted save and the required commits after every
// successful transition.
type Engine struct {
	store   *store.Store
	machine *phase.Machine
	sink    commit.Sink
	logger  *log.Logger
	session string
}

// New creates an engine over an opened store.
func New(st *store.Store, machine *phase.Machine, sink commit.Sink, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	session := uuid.NewString()
	return &Engine{
		store:   st,
		machine: machine,
		sink:    sink,
		logger:  logger.With("session", session),
		session: session,
	}
}

// Session returns the identifier correlating this engine's log
// entries.
func (e *Engine) Session() string {
	return e.session
}

// RunOnce performs a single execution step. The already in-flight task
// always takes priority over starting a new one; with nothing in
// flight the lowest-numbered ready task is selected. On a guard
// failure the step reports Blocked and leaves the task at its phase;
// the next step retries the same transition.
func (e *Engine) RunOnce(ctx context.Context) (Outcome, error) {
	current, busy := e.store.InFlight()
	if !busy {
		ready := graph.ReadyTasks(e.store.Tasks())
		if len(ready) == 0 {
			return e.stalledOutcome()
		}
		var err error
		current, err = e.store.Get(ready[0])
		if err != nil {
			return Outcome{}, err
		}
	}

	next, res, err := e.machine.Advance(ctx, current)
	if err != nil {
		if !errors.IsValidationFailure(err) {
			return Outcome{}, err
		}

		reason := res.Reason
		if reason == "" {
			reason = errors.MessageOf(err)
		}
		e.logger.Warn("guard not satisfied", "task", current.Number.String(), "phase", current.Phase.String(), "reason", reason)

		// Record the blocker in the notes; the phase is untouched and
		// the next step retries the same transition.
		if err := e.store.MarkBlocked(current.Number, reason); err != nil {
			return Outcome{}, err
		}
		if err := e.store.Save(); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeBlocked, Task: &current, Reason: reason}, nil
	}

	// Transition allowed: clear any stale blocker, advance, persist,
	// then request the commits the transition carries. The save lands
	// before the commit so a crash leaves a resumable table.
	if err := e.store.ClearBlocked(current.Number); err != nil {
		return Outcome{}, err
	}
	if err := e.store.UpdateStatus(current.Number, next); err != nil {
		return Outcome{}, err
	}
	if err := e.store.Save(); err != nil {
		return Outcome{}, err
	}

	records, err := commit.ForTransition(current, next)
	if err != nil {
		return Outcome{}, err
	}
	for _, rec := range records {
		if err := e.sink.Commit(ctx, rec); err != nil {
			return Outcome{}, err
		}
	}

	e.logger.Info("task advanced",
		"task", current.Number.String(),
		"from", current.Phase.String(),
		"to", next.String(),
		"commits", len(records))

	advanced, err := e.store.Get(current.Number)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeAdvanced, Task: &advanced, Phase: next, Commits: records}, nil
}

// Run repeats RunOnce until the session ends: all tasks complete, a
// step blocks, or the context is cancelled. The caller may stop after
// any step and resume later; the table is consistent after every save.
func (e *Engine) Run(ctx context.Context) (Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		outcome, err := e.RunOnce(ctx)
		if err != nil {
			return Outcome{}, err
		}
		if outcome.Kind != OutcomeAdvanced {
			return outcome, nil
		}
	}
}

// stalledOutcome classifies the no-ready-task case: either everything
// is done, or remaining tasks wait on unmet dependencies.
func (e *Engine) stalledOutcome() (Outcome, error) {
	tasks := e.store.Tasks()

	allDone := true
	for _, t := range tasks {
		if t.Status() != task.StatusDone {
			allDone = false
			break
		}
	}
	if allDone {
		e.logger.Info("all tasks complete", "tasks", len(tasks))
		return Outcome{Kind: OutcomeAllComplete}, nil
	}

	// Name the unmet dependencies of the lowest-numbered task that
	// cannot start.
	var stalled *task.Task
	for i := range tasks {
		if tasks[i].Status() == task.StatusDone {
			continue
		}
		if stalled == nil || tasks[i].Number.Less(stalled.Number) {
			stalled = &tasks[i]
		}
	}

	waiting := graph.Blocking(tasks, stalled.Number)
	reason := fmt.Sprintf("waiting for: %s", task.FormatNumberList(waiting))
	e.logger.Warn("no task is ready", "task", stalled.Number.String(), "waiting", task.FormatNumberList(waiting))

	blocked := stalled.Clone()
	return Outcome{Kind: OutcomeBlocked, Task: &blocked, Reason: reason, Waiting: waiting}, nil
}

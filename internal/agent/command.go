// Package agent implements the execution agent as configured local
// commands. The orchestrator core never inspects code or tests; this
// agent turns command exit status and coverage output into the
// structured signals the phase machine consumes.
package agent

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/log"
	"github.com/felixgeelhaar/taskflow/internal/phase"
	"github.com/felixgeelhaar/taskflow/internal/task"
)

// Config names the commands the agent runs for each guard. Each
// command is an argv; Tests runs the task's tests, Suite the full
// suite, and Coverage must print a percentage (e.g. "coverage: 84.2%").
type Config struct {
	Dir      string
	Tests    []string
	Suite    []string
	Coverage []string
}

// CommandAgent shells out to the configured commands.
type CommandAgent struct {
	cfg    Config
	logger *log.Logger
}

// New creates a command-backed agent.
func New(cfg Config, logger *log.Logger) *CommandAgent {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &CommandAgent{cfg: cfg, logger: logger.With("component", "agent")}
}

// WriteTests checks the red step: the task's tests must exist and
// currently fail. A green test run here means no new failing tests
// were added yet.
func (a *CommandAgent) WriteTests(ctx context.Context, t task.Task) (phase.Result, error) {
	failed, out, err := a.run(ctx, a.cfg.Tests)
	if err != nil {
		return phase.Result{}, err
	}
	if !failed {
		return phase.Result{Passed: false, Reason: "tests pass against the current implementation; new tests must fail first"}, nil
	}
	a.logger.Debug("red step confirmed", "task", t.Number.String())
	return phase.Result{Passed: true, Reason: firstLine(out)}, nil
}

// Implement checks that the task's tests now pass.
func (a *CommandAgent) Implement(ctx context.Context, t task.Task) (phase.Result, error) {
	return a.expectGreen(ctx, t, "tests still failing after implementation")
}

// Refactor checks that the task's tests still pass after cleanup.
func (a *CommandAgent) Refactor(ctx context.Context, t task.Task) (phase.Result, error) {
	return a.expectGreen(ctx, t, "tests failing after refactor")
}

// Verify runs the full suite and measures coverage. A missing or
// unparseable coverage signal is reported as -1; the phase machine
// treats that as a failed guard rather than guessing.
func (a *CommandAgent) Verify(ctx context.Context, t task.Task) (phase.Result, error) {
	failed, out, err := a.run(ctx, a.cfg.Suite)
	if err != nil {
		return phase.Result{}, err
	}
	if failed {
		return phase.Result{Passed: false, Coverage: -1, Reason: "full suite failing: " + firstLine(out)}, nil
	}

	covOut := out
	if len(a.cfg.Coverage) > 0 {
		covFailed, o, err := a.run(ctx, a.cfg.Coverage)
		if err != nil {
			return phase.Result{}, err
		}
		if covFailed {
			return phase.Result{Passed: true, Coverage: -1, Reason: "coverage command failed"}, nil
		}
		covOut = o
	}

	cov, ok := ParseCoverage(covOut)
	if !ok {
		return phase.Result{Passed: true, Coverage: -1, Reason: "no coverage figure in output"}, nil
	}
	return phase.Result{Passed: true, Coverage: cov}, nil
}

func (a *CommandAgent) expectGreen(ctx context.Context, t task.Task, failReason string) (phase.Result, error) {
	failed, out, err := a.run(ctx, a.cfg.Tests)
	if err != nil {
		return phase.Result{}, err
	}
	if failed {
		return phase.Result{Passed: false, Reason: failReason + ": " + firstLine(out)}, nil
	}
	return phase.Result{Passed: true}, nil
}

// run executes an argv and reports whether it exited non-zero. A
// non-zero exit is a definite signal, not an error; anything that
// prevents obtaining a definite result is an error. A command killed
// by context cancellation also exits non-zero, so cancellation is
// checked before the exit status is interpreted.
func (a *CommandAgent) run(ctx context.Context, argv []string) (failed bool, output string, err error) {
	if len(argv) == 0 {
		return false, "", errors.New(errors.ErrCodeConfigInvalid, "agent command not configured").
			WithSuggestion("Set agent.tests, agent.suite and agent.coverage in the config file")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = a.cfg.Dir
	out, runErr := cmd.CombinedOutput()
	output = string(out)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, output, fmt.Errorf("run %s: %w", argv[0], ctxErr)
	}
	if runErr == nil {
		return false, output, nil
	}
	if _, ok := runErr.(*exec.ExitError); ok {
		return true, output, nil
	}
	return false, output, fmt.Errorf("run %s: %w", argv[0], runErr)
}

var coverageRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// ParseCoverage extracts the last percentage figure from command
// output and returns it as a fraction.
func ParseCoverage(output string) (float64, bool) {
	matches := coverageRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return 0, false
	}
	pct, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct / 100, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

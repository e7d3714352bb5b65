package cmd

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/taskflow/internal/agent"
	"github.com/felixgeelhaar/taskflow/internal/commit"
	"github.com/felixgeelhaar/taskflow/internal/engine"
	"github.com/felixgeelhaar/taskflow/internal/log"
	"github.com/felixgeelhaar/taskflow/internal/phase"
	"github.com/felixgeelhaar/taskflow/internal/report"
	"github.com/felixgeelhaar/taskflow/internal/store"
	"github.com/felixgeelhaar/taskflow/internal/ux"
	"github.com/felixgeelhaar/taskflow/internal/vcs"
)

// openStore opens the configured task table. A missing table gets a
// pointer to the step that creates it instead of a bare read error.
func openStore() (*store.Store, error) {
	if _, err := os.Stat(cfg.Table); os.IsNotExist(err) {
		return nil, fmt.Errorf("task table %s not found. %s", cfg.Table, ux.SuggestNextSteps())
	}
	return store.Open(cfg.Table)
}

// newEngine assembles the execution loop from the loaded config: the
// opened store, the command agent, and the commit sink. With --dry-run
// commits are recorded in memory and the repository is untouched.
func newEngine() (*engine.Engine, *store.Store, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	logger := log.DefaultLogger()

	var sink commit.Sink
	if flagDryRun {
		sink = vcs.NewRecorder()
	} else {
		sink = vcs.NewGit(cfg.Git.Path, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	}

	ag := agent.New(agent.Config{
		Dir:      cfg.Agent.Dir,
		Tests:    cfg.Agent.Tests,
		Suite:    cfg.Agent.Suite,
		Coverage: cfg.Agent.Coverage,
	}, logger)

	machine := phase.NewMachine(ag, cfg.CoverageFloor)
	return engine.New(st, machine, sink, logger), st, nil
}

// printSession writes the summary and then the directive. The
// directive is always the last line of output.
func printSession(st *store.Store) {
	tasks := st.Tasks()
	fmt.Print(report.Summary(tasks))
	fmt.Println(report.NextDirective(tasks, cfg.Command))
}

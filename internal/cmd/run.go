package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute tasks until done or blocked",
	Long: `Execute tasks until done or blocked.

Repeats the single-step cycle: pick the in-flight or lowest-numbered
ready task, run the phase guard, advance, save, commit. The loop stops
when every task is done, when a guard fails, or when remaining tasks
wait on unmet dependencies. The table is consistent after every step,
so an interrupted run resumes exactly where it stopped.

Examples:
  # Execute the plan
  taskflow run

  # Execute without touching the git repository
  taskflow run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	e, st, err := newEngine()
	if err != nil {
		return err
	}

	outcome, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}

	switch outcome.Kind {
	case engine.OutcomeBlocked:
		fmt.Printf("Blocked: %s\n", outcome.Reason)
	case engine.OutcomeAllComplete:
		fmt.Println("All tasks complete.")
	}

	printSession(st)
	return nil
}

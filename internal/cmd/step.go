package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/engine"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Advance the current task by a single phase",
	Long: `Advance the current task by a single phase.

Performs exactly one transition of the completion protocol: the
in-flight task if there is one, otherwise the lowest-numbered ready
task. The table is saved and the step's commits are recorded before the
command returns, so a session may stop after any step and resume later.`,
	Args: cobra.NoArgs,
	RunE: runStep,
}

func init() {
	rootCmd.AddCommand(stepCmd)
}

func runStep(cmd *cobra.Command, args []string) error {
	e, st, err := newEngine()
	if err != nil {
		return err
	}

	outcome, err := e.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	switch outcome.Kind {
	case engine.OutcomeAdvanced:
		fmt.Printf("Task %s advanced to %s (%d commits)\n", outcome.Task.Number, outcome.Phase, len(outcome.Commits))
	case engine.OutcomeBlocked:
		fmt.Printf("Blocked: %s\n", outcome.Reason)
	case engine.OutcomeAllComplete:
		fmt.Println("All tasks complete.")
	}

	printSession(st)
	return nil
}

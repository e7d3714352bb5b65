package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the task table and the next-task directive",
	Long: `Show the task table and the next-task directive.

Prints per-status counts, every task with its current phase and any
recorded blocker, and finishes with the directive line naming the next
action. Running status never mutates state.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	printSession(st)
	return nil
}

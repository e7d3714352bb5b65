package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live task board",
	Long: `Show a live task board.

Renders the task table in a terminal UI that reloads from disk every
second, so progress made by a concurrent run session appears as it
happens. The current directive is pinned to the footer. Quit with q.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	return tui.Run(cfg.Table, cfg.Command)
}

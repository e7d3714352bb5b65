// Package cmd wires the CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/config"
	"github.com/felixgeelhaar/taskflow/internal/log"
	"github.com/felixgeelhaar/taskflow/internal/ux"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagDryRun    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Task workflow orchestrator with a test-first completion protocol",
	Long: `taskflow drives a plan of numbered, dependency-ordered tasks through a
fixed completion protocol: tests first, then implementation, refactor,
and verification, with a commit recorded at every step.

Task state lives in a plain CSV table that survives interruption; any
session can resume exactly where the previous one stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetDefaultLogger(log.New(log.Config{
			Level:  log.ParseLevel(flagLogLevel),
			Format: log.ParseFormat(flagLogFormat),
			Output: log.OutputStderr(),
		}))

		var err error
		cfg, err = config.LoadOrDefault(flagConfig)
		return err
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	defaults := ux.NewPathDefaults()
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", defaults.ConfigFile(), "config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "record commits in memory instead of the git repository")
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/document"
	"github.com/felixgeelhaar/taskflow/internal/log"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the task table against the plan document",
	Long: `Check the task table against the plan document.

Loading the table already validates row syntax, uniqueness, and the
dependency graph. On top of that, validate confirms the table still
matches the plan: same task count, same task numbers. A changed plan
fingerprint is reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	items, err := document.NewFileSource(cfg.Document).Items(cmd.Context())
	if err != nil {
		return err
	}

	if err := document.Reconcile(items, st.Tasks()); err != nil {
		return err
	}

	if recorded, err := os.ReadFile(fingerprintPath()); err == nil {
		current := document.Fingerprint(items)
		if strings.TrimSpace(string(recorded)) != current {
			log.DefaultLogger().Warn("plan document changed since init",
				"document", cfg.Document,
				"fingerprint", current)
			fmt.Printf("Warning: %s changed since the table was populated; task metadata may be stale\n", cfg.Document)
		}
	}

	fmt.Printf("%s is valid: %d tasks, dependency graph acyclic, matches %s\n", cfg.Table, st.Len(), cfg.Document)
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskflow/internal/document"
	"github.com/felixgeelhaar/taskflow/internal/graph"
	"github.com/felixgeelhaar/taskflow/internal/store"
	"github.com/felixgeelhaar/taskflow/internal/ux"
)

var (
	initForce bool
	initYes   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Populate the task table from the plan document",
	Long: `Populate the task table from the plan document.

Reads the plan, validates its dependency graph, and writes a fresh task
table with every task pending. A fingerprint of the plan is recorded so
later runs can detect when the plan changed under an existing table.

Examples:
  # Populate tasks.csv from plan.yaml
  taskflow init

  # Overwrite an existing table, discarding recorded progress
  taskflow init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing task table")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "auto-accept all prompts (non-interactive mode)")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := ux.ValidateRequiredFile(cfg.Document, "plan document", "taskflow init requires a plan; write one first"); err != nil {
		return err
	}

	items, err := document.NewFileSource(cfg.Document).Items(cmd.Context())
	if err != nil {
		return err
	}

	// An existing table holds recorded progress; overwriting it is
	// destructive and needs explicit consent.
	if _, err := os.Stat(cfg.Table); err == nil {
		if !initForce && !initYes {
			var overwrite bool
			confirm := huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists", cfg.Table)).
				Description("Overwriting discards all recorded task progress.").
				Affirmative("Overwrite").
				Negative("Keep").
				Value(&overwrite)
			if err := confirm.Run(); err != nil {
				return err
			}
			if !overwrite {
				fmt.Println("Initialization cancelled.")
				return nil
			}
		} else if !initForce {
			return fmt.Errorf("%s already exists; use --force to overwrite it", cfg.Table)
		}
	}

	// Cyclic or dangling dependencies are fatal before any table is
	// written; a broken plan must not initialize.
	tasks := document.Populate(items)
	if err := graph.Validate(tasks); err != nil {
		return err
	}

	st := store.New(cfg.Table)
	for _, t := range tasks {
		if err := st.Append(t); err != nil {
			return err
		}
	}
	if err := st.Save(); err != nil {
		return err
	}

	if err := writeFingerprint(document.Fingerprint(items)); err != nil {
		return err
	}

	fmt.Printf("Populated %s with %d tasks from %s\n", cfg.Table, st.Len(), cfg.Document)
	printSession(st)
	return nil
}

func fingerprintPath() string {
	return ux.NewPathDefaults().FingerprintFile()
}

func writeFingerprint(fp string) error {
	path := fingerprintPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fp+"\n"), 0o644)
}

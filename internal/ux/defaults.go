// Package ux provides path defaults and user-facing helpers shared by
// the CLI commands.
package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathDefaults provides smart defaults for common file paths
type PathDefaults struct {
	TaskflowDir string
}

// NewPathDefaults creates a new PathDefaults with sensible defaults
func NewPathDefaults() *PathDefaults {
	return &PathDefaults{
		TaskflowDir: ".taskflow",
	}
}

// ConfigFile returns the default path to the config file
func (pd *PathDefaults) ConfigFile() string {
	return filepath.Join(pd.TaskflowDir, "config.yaml")
}

// TableFile returns the default path to the task table
func (pd *PathDefaults) TableFile() string {
	return "tasks.csv"
}

// PlanFile returns the default path to the plan document
func (pd *PathDefaults) PlanFile() string {
	return "plan.yaml"
}

// FingerprintFile returns the default path of the recorded plan
// fingerprint
func (pd *PathDefaults) FingerprintFile() string {
	return filepath.Join(pd.TaskflowDir, "plan.fingerprint")
}

// ValidateTaskflowSetup checks if the .taskflow directory is initialized
func (pd *PathDefaults) ValidateTaskflowSetup() error {
	if _, err := os.Stat(pd.TaskflowDir); os.IsNotExist(err) {
		return fmt.Errorf(".taskflow directory not found. Run 'taskflow init' to set up your project")
	}
	return nil
}

// ValidateRequiredFile checks if a required file exists and provides helpful error
func ValidateRequiredFile(path string, fileType string, creationCommand string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\nRun '%s' to create it", fileType, path, creationCommand)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}

// SuggestNextSteps provides contextual next steps based on what exists
func SuggestNextSteps() string {
	defaults := NewPathDefaults()

	_, hasPlan := os.Stat(defaults.PlanFile())
	_, hasTable := os.Stat(defaults.TableFile())

	if os.IsNotExist(hasPlan) {
		return "Write a plan document, then run 'taskflow init'"
	}

	if os.IsNotExist(hasTable) {
		return "Run 'taskflow init' to populate the task table from the plan"
	}

	return "Run 'taskflow run' to execute the next ready task"
}

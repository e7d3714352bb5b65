package ux

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathDefaults(t *testing.T) {
	pd := NewPathDefaults()

	if got := pd.ConfigFile(); got != filepath.Join(".taskflow", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := pd.TableFile(); got != "tasks.csv" {
		t.Errorf("TableFile() = %q", got)
	}
	if got := pd.PlanFile(); got != "plan.yaml" {
		t.Errorf("PlanFile() = %q", got)
	}
	if got := pd.FingerprintFile(); got != filepath.Join(".taskflow", "plan.fingerprint") {
		t.Errorf("FingerprintFile() = %q", got)
	}
}

func TestValidateTaskflowSetup(t *testing.T) {
	dir := t.TempDir()
	pd := &PathDefaults{TaskflowDir: filepath.Join(dir, ".taskflow")}

	if err := pd.ValidateTaskflowSetup(); err == nil {
		t.Fatal("expected error for missing directory")
	}

	if err := os.Mkdir(pd.TaskflowDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := pd.ValidateTaskflowSetup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")

	err := ValidateRequiredFile(path, "task table", "taskflow init")
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	if err := os.WriteFile(path, []byte("number,title\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ValidateRequiredFile(path, "task table", "taskflow init"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

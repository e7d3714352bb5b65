// Package config loads the tool configuration from a YAML file with
// sensible defaults for everything.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskflow/internal/errors"
	"github.com/felixgeelhaar/taskflow/internal/phase"
)

// Config is the full tool configuration.
type Config struct {
	// Table is the path of the persisted CSV task table.
	Table string `yaml:"table"`
	// Document is the path of the YAML plan document.
	Document string `yaml:"document"`
	// Command is the invocation name interpolated into the next-task
	// directive line.
	Command string `yaml:"command"`
	// CoverageFloor is the minimum coverage fraction required to
	// finish a task.
	CoverageFloor float64 `yaml:"coverage_floor"`

	Git   GitConfig   `yaml:"git"`
	Agent AgentConfig `yaml:"agent"`
}

// GitConfig configures the version control sink.
type GitConfig struct {
	// Path is the repository root the sink commits to.
	Path string `yaml:"path"`
	// AuthorName and AuthorEmail are used for the commit signature.
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// AgentConfig configures the command-running execution agent.
type AgentConfig struct {
	// Dir is the working directory for agent commands.
	Dir string `yaml:"dir"`
	// Tests runs the current task's tests.
	Tests []string `yaml:"tests"`
	// Suite runs the full test suite.
	Suite []string `yaml:"suite"`
	// Coverage prints a coverage percentage for the new code.
	Coverage []string `yaml:"coverage"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Table:         "tasks.csv",
		Document:      "plan.yaml",
		Command:       "taskflow run",
		CoverageFloor: phase.DefaultCoverageFloor,
		Git: GitConfig{
			Path:        ".",
			AuthorName:  "taskflow",
			AuthorEmail: "taskflow@localhost",
		},
		Agent: AgentConfig{
			Tests: []string{"go", "test", "./..."},
			Suite: []string{"go", "test", "-cover", "./..."},
		},
	}
}

// Load reads a config file, filling unset fields from the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("cannot read config %s", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("cannot parse config %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault reads the config file at path if it exists, otherwise
// returns the defaults.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate rejects configurations the orchestrator cannot run with.
func (c Config) Validate() error {
	if c.Table == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "table path must not be empty")
	}
	if c.Document == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "document path must not be empty")
	}
	if c.CoverageFloor <= 0 || c.CoverageFloor > 1 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("coverage_floor %g out of range (0,1]", c.CoverageFloor)).
			WithSuggestion("Use a fraction, e.g. 0.8 for 80%")
	}
	return nil
}

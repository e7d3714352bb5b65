package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskflow/internal/errors"
)

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.Info("task advanced", "task", "1.1", "phase", "tests-written")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "task advanced" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["task"] != "1.1" {
		t.Errorf("task = %v", entry["task"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn missing: %q", out)
	}
}

func TestWithErrorAddsCode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	err := errors.New(errors.ErrCodeCycleDetected, "cycle").WithSuggestion("break it")
	logger.WithError(err).Error("load failed")

	out := buf.String()
	if !strings.Contains(out, "GRAPH-001") {
		t.Errorf("error code missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Error("debug")
	}
	if ParseLevel("nonsense") != LevelInfo {
		t.Error("unknown should default to info")
	}
}

package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "job", "abc")
	SetLogLevel(logger, log.DebugLevel)

	logger.Debug("row processed", "row", 2)

	out := buf.String()
	if !strings.Contains(out, "row processed") || !strings.Contains(out, "job=abc") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if len(a) != 36 {
		t.Errorf("expected 36 character uuid, got %q", a)
	}
	if a == b {
		t.Error("expected distinct ids")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("Missing Files Are Ignored", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Loads Values Without Overwriting", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		content := "SHEETSTATS_TEST_FRESH=from-file\nSHEETSTATS_TEST_SET=from-file\n"
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		t.Setenv("SHEETSTATS_TEST_SET", "from-process")
		t.Setenv("SHEETSTATS_TEST_FRESH", "")
		os.Unsetenv("SHEETSTATS_TEST_FRESH")

		if err := LoadEnv(envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if got := os.Getenv("SHEETSTATS_TEST_FRESH"); got != "from-file" {
			t.Errorf("expected value from file, got %q", got)
		}
		if got := os.Getenv("SHEETSTATS_TEST_SET"); got != "from-process" {
			t.Errorf("existing value should win, got %q", got)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "watch.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello from the file logger")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the file logger") {
		t.Errorf("expected log line in file, got %q", data)
	}
}

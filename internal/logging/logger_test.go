package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tween.log")
	logger, err := New(Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("job finished", Args(String(FieldJobID, "abc"), Int("frames", 4))...)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	body := string(data)
	for _, want := range []string{`"msg":"job finished"`, `"job_id":"abc"`, `"frames":4`, `"level":"info"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("log output missing %s: %s", want, body)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New(Options{
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	NewComponentLogger(logger, "generate").Info("starting", Args(Int("count", 3))...)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, "INFO generate: starting") {
		t.Fatalf("component not lifted into prefix: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as key/value: %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Fatalf("missing attribute: %q", line)
	}
}

func TestVerboseLowersLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(Options{
		Level:            "info",
		Verbose:          true,
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Debug("details", Args(Duration("elapsed", 250*time.Millisecond))...)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "DEBUG") {
		t.Fatalf("verbose logger dropped debug record: %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should go nowhere", Args(Error(os.ErrNotExist))...)
	if logger.Enabled(nil, slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}

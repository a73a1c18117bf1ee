package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tween.toml")
	body := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
feedback_db = %q
`, filepath.Join(dir, "work"), filepath.Join(dir, "logs"), filepath.Join(dir, "feedback.db"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootShowsHelp(t *testing.T) {
	out, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"generate", "accept", "reject", "stats", "config"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q: %s", want, out)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output missing target path: %s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[generation]") {
		t.Fatal("sample config missing generation section")
	}

	// Refuses to clobber without --overwrite.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigShowHonorsConfigFlag(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCommand(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "Config path: "+configPath) {
		t.Fatalf("expected resolved path %s, got:\n%s", configPath, out)
	}
	if strings.Contains(out, "defaults are shown") {
		t.Fatalf("existing config reported as missing:\n%s", out)
	}
}

func TestAcceptRejectStatsRoundTrip(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCommand(t, "--config", configPath, "accept",
		"--frame", "12", "--character", "hero", "--motion-type", "walk", "--confidence", "0.9")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err = runCommand(t, "--config", configPath, "reject",
		"--frame", "15", "--character", "hero", "--motion-type", "walk",
		"--issue", "artifacts", "--issue", "proportion", "--note", "hand breaks up")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "stats", "--json")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var report summaryReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if report.Accepted != 1 || report.Rejected != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.AcceptanceRate != 0.5 {
		t.Fatalf("rate = %v", report.AcceptanceRate)
	}
	if len(report.CommonIssues) != 2 {
		t.Fatalf("issues = %+v", report.CommonIssues)
	}
}

func TestStatsFilterByCharacter(t *testing.T) {
	configPath := writeTestConfig(t)

	for _, args := range [][]string{
		{"accept", "--frame", "1", "--character", "hero"},
		{"reject", "--frame", "2", "--character", "villain", "--issue", "other"},
	} {
		full := append([]string{"--config", configPath}, args...)
		if _, err := runCommand(t, full...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err := runCommand(t, "--config", configPath, "stats", "--json", "--character", "villain")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var report summaryReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if report.Accepted != 0 || report.Rejected != 1 {
		t.Fatalf("filtered report = %+v", report)
	}
}

func TestRejectUnknownIssueTag(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := runCommand(t, "--config", configPath, "reject", "--frame", "3", "--issue", "blurry")
	if err == nil || !strings.Contains(err.Error(), "unknown issue tag") {
		t.Fatalf("expected issue tag error, got %v", err)
	}
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tween/internal/config"
)

// NewConfig returns a validated config rooted in a per-test temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.FeedbackDB = filepath.Join(base, "feedback.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WriteAnchorFrames creates two placeholder anchor frame files and returns
// their paths.
func WriteAnchorFrames(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	frameA := filepath.Join(dir, "0010.png")
	frameB := filepath.Join(dir, "0020.png")
	for _, path := range []string{frameA, frameB} {
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			t.Fatalf("write anchor frame: %v", err)
		}
	}
	return frameA, frameB
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MetadataFileName is the well-known metadata artifact written next to the
// generated frames.
const MetadataFileName = "metadata.json"

// Request describes one generation invocation. OutputDir must exist and be
// empty; the backend fills it with numbered frame artifacts.
type Request struct {
	FrameAPath    string
	FrameBPath    string
	Count         int
	OutputDir     string
	Character     string
	StyleStrength float64
	Resolution    int
}

// Validate checks the request before any work is attempted.
func (r Request) Validate() error {
	var problems []string
	if strings.TrimSpace(r.FrameAPath) == "" {
		problems = append(problems, "frame A path required")
	}
	if strings.TrimSpace(r.FrameBPath) == "" {
		problems = append(problems, "frame B path required")
	}
	if r.Count < 1 {
		problems = append(problems, "frame count must be at least 1")
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		problems = append(problems, "output directory required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid generation request: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Metadata is the sidecar the generation engine writes alongside the frames.
// Both score slices are indexed in artifact order.
type Metadata struct {
	ConfidenceScores []float64 `json:"confidence_scores"`
	AutoAccept       []bool    `json:"auto_accept"`
	MotionType       string    `json:"motion_type"`
}

// Invoker runs one generation request against the engine.
type Invoker interface {
	Invoke(ctx context.Context, req Request) error
}

// ArtifactName returns the canonical file name for the frame at the given
// zero-based ordinal.
func ArtifactName(ordinal int) string {
	return fmt.Sprintf("%04d.png", ordinal)
}

// ReadMetadata loads the metadata sidecar from an output directory. The
// second return value reports whether the file was present; a missing sidecar
// is not an error so callers can degrade to manual review.
func ReadMetadata(dir string) (*Metadata, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, true, fmt.Errorf("parse metadata: %w", err)
	}
	meta.MotionType = strings.TrimSpace(meta.MotionType)
	return &meta, true, nil
}

// WriteMetadata stores the metadata sidecar in an output directory.
func WriteMetadata(dir string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

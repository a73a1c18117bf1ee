package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tween/internal/backend"
	"tween/internal/services"
)

// PlacedFrame is one generated artifact bound to its timeline position.
type PlacedFrame struct {
	Ordinal    int
	FrameIndex int
	Path       string
	Confidence float64
}

// Result is the outcome of ingesting one output directory.
type Result struct {
	Frames     []PlacedFrame
	MotionType string
	// Degraded reports that no metadata sidecar was found. Confidence is
	// zero for every frame and nothing qualifies for auto-accept.
	Degraded bool
}

// CountMismatchError reports a disagreement between the number of artifacts
// on disk and the number of planned positions.
type CountMismatchError struct {
	Artifacts int
	Planned   int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("ingest: %d artifacts for %d planned positions", e.Artifacts, e.Planned)
}

func (e *CountMismatchError) Unwrap() error { return services.ErrValidation }

// MetadataShapeMismatchError reports metadata whose per-frame slices do not
// line up with the artifacts.
type MetadataShapeMismatchError struct {
	Scores    int
	Flags     int
	Artifacts int
}

func (e *MetadataShapeMismatchError) Error() string {
	return fmt.Sprintf("ingest: metadata carries %d scores and %d accept flags for %d artifacts",
		e.Scores, e.Flags, e.Artifacts)
}

func (e *MetadataShapeMismatchError) Unwrap() error { return services.ErrValidation }

// Ingest reads the artifacts in dir and binds them, in lexical order, to the
// planned positions. No partial result is ever returned.
func Ingest(dir string, positions []int) (*Result, error) {
	if len(positions) == 0 {
		return nil, services.Wrap(services.ErrValidation, "ingest", "ingest", "no planned positions", nil)
	}

	artifacts, err := listArtifacts(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "ingest", "ingest", "list artifacts", err)
	}
	if len(artifacts) != len(positions) {
		return nil, &CountMismatchError{Artifacts: len(artifacts), Planned: len(positions)}
	}

	meta, found, err := backend.ReadMetadata(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "ingest", "metadata unreadable", err)
	}
	if found && (len(meta.ConfidenceScores) != len(artifacts) || len(meta.AutoAccept) != len(artifacts)) {
		return nil, &MetadataShapeMismatchError{
			Scores:    len(meta.ConfidenceScores),
			Flags:     len(meta.AutoAccept),
			Artifacts: len(artifacts),
		}
	}

	result := &Result{
		Frames:   make([]PlacedFrame, len(artifacts)),
		Degraded: !found,
	}
	if found {
		result.MotionType = meta.MotionType
	}
	for i, name := range artifacts {
		frame := PlacedFrame{
			Ordinal:    i,
			FrameIndex: positions[i],
			Path:       filepath.Join(dir, name),
		}
		if found {
			frame.Confidence = meta.ConfidenceScores[i]
		}
		result.Frames[i] = frame
	}
	return result, nil
}

func listArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == backend.MetadataFileName {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".png") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

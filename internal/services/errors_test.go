package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("exit status 1")
	err := Wrap(ErrExternalTool, "generation", "invoke backend", "backend exited abnormally", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "generation", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker should default to ErrExternalTool, got %v", err)
	}
}

func TestWrapDetailOrdering(t *testing.T) {
	err := Wrap(ErrValidation, "ingest", "read metadata", "shape mismatch", nil)
	want := "validation error: ingest: read metadata: shape mismatch"
	if err.Error() != want {
		t.Fatalf("detail = %q, want %q", err.Error(), want)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrTimeout, "", "", "", nil)
	if err.Error() != "timeout: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

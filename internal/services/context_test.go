package services

import (
	"context"
	"testing"
)

func TestJobIDRoundTrip(t *testing.T) {
	ctx := WithJobID(context.Background(), "job-123")
	id, ok := JobIDFromContext(ctx)
	if !ok || id != "job-123" {
		t.Fatalf("got %q/%v, want job-123/true", id, ok)
	}
}

func TestJobIDAbsent(t *testing.T) {
	if _, ok := JobIDFromContext(context.Background()); ok {
		t.Fatal("expected no job id on fresh context")
	}
}

func TestWithJobIDEmptyIsNoop(t *testing.T) {
	ctx := WithJobID(context.Background(), "")
	if _, ok := JobIDFromContext(ctx); ok {
		t.Fatal("empty id should not annotate context")
	}
}

func TestStageRoundTrip(t *testing.T) {
	ctx := WithStage(context.Background(), "ingest")
	stage, ok := StageFromContext(ctx)
	if !ok || stage != "ingest" {
		t.Fatalf("got %q/%v, want ingest/true", stage, ok)
	}
}

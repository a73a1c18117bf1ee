package generate

import (
	"context"
	"errors"
	"testing"

	"tween/internal/feedback"
	"tween/internal/logging"
	"tween/internal/services"
	"tween/internal/testsupport"
)

type memoryLog struct {
	generations []feedback.Generation
	accepts     []feedback.Decision
	failWith    error
}

func (m *memoryLog) RecordGeneration(_ context.Context, gen feedback.Generation) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.generations = append(m.generations, gen)
	return nil
}

func (m *memoryLog) RecordAccept(_ context.Context, d feedback.Decision) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.accepts = append(m.accepts, d)
	return nil
}

func TestGenerateEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	invoker := &fakeInvoker{scores: []float64{0.9, 0.5, 0.95}, motion: "walk", writeMeta: true}
	log := &memoryLog{}
	orch := NewOrchestrator(cfg, invoker, log, logging.NewNop())

	outcome, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA,
		FrameBPath: frameB,
		StartFrame: 10,
		EndFrame:   20,
		Count:      3,
		Character:  "hero",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	wantIndices := []int{12, 15, 17}
	wantAccepts := []bool{true, false, true}
	if len(outcome.Frames) != 3 {
		t.Fatalf("frames = %d", len(outcome.Frames))
	}
	for i, frame := range outcome.Frames {
		if frame.FrameIndex != wantIndices[i] {
			t.Fatalf("frame %d index = %d, want %d", i, frame.FrameIndex, wantIndices[i])
		}
		if frame.AutoAccepted != wantAccepts[i] {
			t.Fatalf("frame %d auto-accept = %v, want %v", i, frame.AutoAccepted, wantAccepts[i])
		}
	}
	if outcome.MotionType != "walk" || outcome.Degraded {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Job.Status != StatusSucceeded {
		t.Fatalf("job status = %s", outcome.Job.Status)
	}

	if len(log.generations) != 1 || log.generations[0].FrameCount != 3 {
		t.Fatalf("generation records = %+v", log.generations)
	}
	if len(log.accepts) != 2 {
		t.Fatalf("auto accept records = %d, want 2", len(log.accepts))
	}
	for _, accept := range log.accepts {
		if accept.Source != feedback.SourceAuto {
			t.Fatalf("accept source = %q", accept.Source)
		}
	}
	if log.accepts[0].FrameIndex != 12 || log.accepts[1].FrameIndex != 17 {
		t.Fatalf("accepted indices = %d, %d", log.accepts[0].FrameIndex, log.accepts[1].FrameIndex)
	}
}

func TestGenerateRejectsInvalidRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	orch := NewOrchestrator(cfg, &fakeInvoker{}, nil, logging.NewNop())

	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 20, EndFrame: 10, Count: 2,
	})
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected range error, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("range error should classify as validation: %v", err)
	}
}

func TestGenerateRejectsAdjacentAnchors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	orch := NewOrchestrator(cfg, &fakeInvoker{}, nil, logging.NewNop())

	// A gap of 1 leaves no slot for an inbetween.
	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 5, EndFrame: 6, Count: 1,
	})
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestGenerateRejectsCountBeyondRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	orch := NewOrchestrator(cfg, &fakeInvoker{}, nil, logging.NewNop())

	// Range (0, 3) only holds two interior frames.
	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 0, EndFrame: 3, Count: 5,
	})
	var countErr *CountError
	if !errors.As(err, &countErr) {
		t.Fatalf("expected count error, got %v", err)
	}
	if countErr.Max != 2 {
		t.Fatalf("max = %d, want 2", countErr.Max)
	}
}

func TestGenerateRejectsCountAboveConfigLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	orch := NewOrchestrator(cfg, &fakeInvoker{}, nil, logging.NewNop())

	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 0, EndFrame: 1000, Count: cfg.Generation.MaxFrameCount + 1,
	})
	var countErr *CountError
	if !errors.As(err, &countErr) {
		t.Fatalf("expected count error, got %v", err)
	}
	if countErr.Max != cfg.Generation.MaxFrameCount {
		t.Fatalf("max = %d, want %d", countErr.Max, cfg.Generation.MaxFrameCount)
	}
}

func TestGenerateDefaultsCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	scores := make([]float64, cfg.Generation.DefaultFrameCount)
	invoker := &fakeInvoker{scores: scores, writeMeta: true}
	orch := NewOrchestrator(cfg, invoker, nil, logging.NewNop())

	outcome, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 0, EndFrame: 100,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(outcome.Frames) != cfg.Generation.DefaultFrameCount {
		t.Fatalf("frames = %d, want default %d", len(outcome.Frames), cfg.Generation.DefaultFrameCount)
	}
}

func TestGenerateMissingAnchor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	orch := NewOrchestrator(cfg, &fakeInvoker{}, nil, logging.NewNop())

	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: "/nonexistent/a.png", FrameBPath: "/nonexistent/b.png",
		StartFrame: 0, EndFrame: 10, Count: 2,
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateDegradedNeverAutoAccepts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	invoker := &fakeInvoker{scores: []float64{0.99, 0.99}, writeMeta: false}
	log := &memoryLog{}
	orch := NewOrchestrator(cfg, invoker, log, logging.NewNop())

	outcome, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 10, EndFrame: 20, Count: 2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !outcome.Degraded {
		t.Fatal("expected degraded outcome without metadata")
	}
	for _, frame := range outcome.Frames {
		if frame.AutoAccepted {
			t.Fatal("degraded frames must not auto-accept")
		}
	}
	if len(log.accepts) != 0 {
		t.Fatalf("no auto accepts should be recorded, got %d", len(log.accepts))
	}
	if len(log.generations) != 1 {
		t.Fatalf("generation should still be recorded, got %d", len(log.generations))
	}
}

func TestGenerateTimeoutWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	invoker := &fakeInvoker{err: context.DeadlineExceeded}
	log := &memoryLog{}
	orch := NewOrchestrator(cfg, invoker, log, logging.NewNop())

	_, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 10, EndFrame: 20, Count: 3,
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if len(log.generations) != 0 || len(log.accepts) != 0 {
		t.Fatalf("timed out job must not write feedback: %+v %+v", log.generations, log.accepts)
	}
}

func TestGenerateSurvivesFeedbackFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	frameA, frameB := testsupport.WriteAnchorFrames(t)
	invoker := &fakeInvoker{scores: []float64{0.95}, writeMeta: true}
	log := &memoryLog{failWith: errors.New("disk full")}
	orch := NewOrchestrator(cfg, invoker, log, logging.NewNop())

	outcome, err := orch.Generate(context.Background(), Request{
		FrameAPath: frameA, FrameBPath: frameB,
		StartFrame: 10, EndFrame: 20, Count: 1,
	})
	if err != nil {
		t.Fatalf("feedback failure must not fail generation: %v", err)
	}
	if len(outcome.Frames) != 1 || !outcome.Frames[0].AutoAccepted {
		t.Fatalf("outcome = %+v", outcome)
	}
}

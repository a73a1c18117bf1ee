package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tween/internal/services"
)

type stubExecutor struct {
	binary string
	args   []string
	lines  []string
	err    error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	s.binary = binary
	s.args = args
	for _, line := range s.lines {
		onOutput(line)
	}
	return s.err
}

func validRequest(dir string) Request {
	return Request{
		FrameAPath:    "/frames/0012.png",
		FrameBPath:    "/frames/0017.png",
		Count:         3,
		OutputDir:     dir,
		Character:     "hero",
		StyleStrength: 0.8,
		Resolution:    1024,
	}
}

func TestProcessInvokerBuildsArgs(t *testing.T) {
	exec := &stubExecutor{}
	invoker, err := NewProcessInvoker("tweengen", WithExecutor(exec))
	if err != nil {
		t.Fatalf("new invoker: %v", err)
	}

	if err := invoker.Invoke(context.Background(), validRequest(t.TempDir())); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	if exec.binary != "tweengen" {
		t.Fatalf("binary = %q", exec.binary)
	}
	joined := strings.Join(exec.args, " ")
	for _, want := range []string{
		"generate",
		"--frame-a /frames/0012.png",
		"--frame-b /frames/0017.png",
		"--num-frames 3",
		"--character hero",
		"--style-strength 0.8",
		"--resolution 1024",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %s", want, joined)
		}
	}
}

func TestProcessInvokerRejectsInvalidRequest(t *testing.T) {
	invoker, err := NewProcessInvoker("tweengen", WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("new invoker: %v", err)
	}

	req := validRequest(t.TempDir())
	req.Count = 0
	err = invoker.Invoke(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessInvokerSurfacesToolOutput(t *testing.T) {
	exec := &stubExecutor{
		lines: []string{"loading model", "CUDA out of memory"},
		err:   errors.New("exit status 1"),
	}
	invoker, err := NewProcessInvoker("tweengen", WithExecutor(exec))
	if err != nil {
		t.Fatalf("new invoker: %v", err)
	}

	err = invoker.Invoke(context.Background(), validRequest(t.TempDir()))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("diagnostics missing from error: %v", err)
	}
}

func TestProcessInvokerRequiresBinary(t *testing.T) {
	if _, err := NewProcessInvoker("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestLineTailKeepsMostRecent(t *testing.T) {
	tail := newLineTail(2)
	tail.Add("one")
	tail.Add("two")
	tail.Add("three")
	if got := tail.String(); got != "two | three" {
		t.Fatalf("tail = %q", got)
	}
}

package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"tween/internal/services"
)

const stderrTailLines = 20

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// ProcessOption configures the process invoker.
type ProcessOption func(*ProcessInvoker)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) ProcessOption {
	return func(p *ProcessInvoker) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// ProcessInvoker runs an external generator binary. The binary is expected to
// write the frame artifacts and metadata sidecar into the output directory
// itself.
type ProcessInvoker struct {
	binary string
	exec   Executor
}

// NewProcessInvoker constructs a process-backed invoker.
func NewProcessInvoker(binary string, opts ...ProcessOption) (*ProcessInvoker, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("generator binary required")
	}
	invoker := &ProcessInvoker{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(invoker)
	}
	return invoker, nil
}

// Invoke runs the generator and waits for it to finish. The last lines of
// tool output are folded into the returned error so failures carry the
// engine's own diagnostics.
func (p *ProcessInvoker) Invoke(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "generate", "invoke", "invalid request", err)
	}

	args := []string{
		"generate",
		"--frame-a", req.FrameAPath,
		"--frame-b", req.FrameBPath,
		"--num-frames", strconv.Itoa(req.Count),
		"--output-dir", req.OutputDir,
	}
	if req.Character != "" {
		args = append(args, "--character", req.Character)
	}
	if req.StyleStrength > 0 {
		args = append(args, "--style-strength", strconv.FormatFloat(req.StyleStrength, 'f', -1, 64))
	}
	if req.Resolution > 0 {
		args = append(args, "--resolution", strconv.Itoa(req.Resolution))
	}

	tail := newLineTail(stderrTailLines)
	err := p.exec.Run(ctx, p.binary, args, tail.Add)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		message := "generator failed"
		if diag := tail.String(); diag != "" {
			message = fmt.Sprintf("generator failed: %s", diag)
		}
		return services.Wrap(services.ErrExternalTool, "generate", "invoke", message, err)
	}
	return nil
}

// lineTail keeps the most recent lines of tool output for error context.
type lineTail struct {
	mu    sync.Mutex
	limit int
	lines []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, " | ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if onOutput != nil {
				onOutput(line)
			} else {
				fmt.Fprintln(os.Stderr, line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

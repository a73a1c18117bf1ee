package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tween/internal/backend"
	"tween/internal/config"
	"tween/internal/logging"
	"tween/internal/services"
)

// Runner executes one generation job against the backend under the
// configured deadline.
type Runner struct {
	workDir string
	timeout time.Duration
	invoker backend.Invoker
	logger  *slog.Logger
}

// NewRunner builds a runner from config.
func NewRunner(cfg *config.Config, invoker backend.Invoker, logger *slog.Logger) *Runner {
	return &Runner{
		workDir: cfg.Paths.WorkDir,
		timeout: time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		invoker: invoker,
		logger:  logging.NewComponentLogger(logger, "generate"),
	}
}

// Run drives the job to a terminal status. The output directory starts
// empty, is guarded by a file lock against concurrent runs, and is kept on
// failure so the partial artifacts can be inspected.
func (r *Runner) Run(ctx context.Context, job *Job, req backend.Request) error {
	outputDir := filepath.Join(r.workDir, job.ID)
	job.OutputDir = outputDir
	req.OutputDir = outputDir

	if err := os.RemoveAll(outputDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrPersistence, "generate", "run", "prepare workspace", err))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrPersistence, "generate", "run", "create workspace", err))
	}

	lock := flock.New(outputDir + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrPersistence, "generate", "run", "acquire workspace lock", err))
	}
	if !locked {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrValidation, "generate", "run",
			fmt.Sprintf("workspace %s is locked by another run", outputDir), nil))
	}
	defer func() { _ = lock.Unlock() }()

	if err := job.transition(StatusRunning); err != nil {
		return err
	}
	r.logger.Info("job started", logging.Args(
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("start_frame", job.StartFrame),
		logging.Int("end_frame", job.EndFrame),
		logging.Int("count", job.Count),
	)...)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := r.invoker.Invoke(runCtx, req); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			timeoutErr := services.Wrap(services.ErrTimeout, "generate", "run",
				fmt.Sprintf("backend exceeded %s budget", r.timeout), err)
			return r.fail(job, StatusTimedOut, timeoutErr)
		}
		return r.fail(job, StatusFailed, err)
	}

	produced, err := countArtifacts(outputDir)
	if err != nil {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrPersistence, "generate", "run", "inspect workspace", err))
	}
	if produced == 0 {
		return r.fail(job, StatusFailed, services.Wrap(services.ErrExternalTool, "generate", "run",
			"backend produced no frame artifacts", nil))
	}

	if err := job.transition(StatusSucceeded); err != nil {
		return err
	}
	r.logger.Info("job finished", logging.Args(
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("artifacts", produced),
		logging.Duration("elapsed", time.Since(start)),
	)...)
	return nil
}

func (r *Runner) fail(job *Job, status Status, cause error) error {
	job.ErrMessage = cause.Error()
	if err := job.transition(status); err != nil {
		return errors.Join(cause, err)
	}
	r.logger.Error("job failed", logging.Args(
		logging.String(logging.FieldJobID, job.ID),
		logging.String("status", string(status)),
		logging.Error(cause),
	)...)
	return cause
}

func countArtifacts(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".png") {
			count++
		}
	}
	return count, nil
}

package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"tween/internal/backend"
	"tween/internal/config"
	"tween/internal/feedback"
	"tween/internal/ingest"
	"tween/internal/logging"
	"tween/internal/plan"
	"tween/internal/services"
)

// RangeError reports an anchor range that cannot hold any inbetweens.
type RangeError struct {
	Start int
	End   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("anchor range [%d, %d] is invalid: end must exceed start by at least 2", e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return services.ErrValidation }

// CountError reports a frame count outside what the range or config allows.
type CountError struct {
	Count int
	Max   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("frame count %d out of range: must be between 1 and %d", e.Count, e.Max)
}

func (e *CountError) Unwrap() error { return services.ErrValidation }

// feedbackLog is the slice of the feedback store the orchestrator uses.
type feedbackLog interface {
	RecordGeneration(ctx context.Context, gen feedback.Generation) error
	RecordAccept(ctx context.Context, d feedback.Decision) error
}

// Request describes one orchestrated generation.
type Request struct {
	FrameAPath string
	FrameBPath string
	StartFrame int
	EndFrame   int
	Count      int
	Character  string
}

// DecidedFrame is a placed frame with its auto-accept verdict.
type DecidedFrame struct {
	ingest.PlacedFrame
	AutoAccepted bool
}

// Outcome is the settled result of a generation run.
type Outcome struct {
	Job        *Job
	Frames     []DecidedFrame
	MotionType string
	Degraded   bool
}

// Orchestrator wires planning, execution, ingestion, the accept policy, and
// the feedback log into one operation.
type Orchestrator struct {
	cfg    *config.Config
	runner *Runner
	log    feedbackLog
	policy Policy
	logger *slog.Logger
}

// NewOrchestrator builds the orchestrator. The feedback log may be nil, in
// which case outcomes are not recorded.
func NewOrchestrator(cfg *config.Config, invoker backend.Invoker, log feedbackLog, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		runner: NewRunner(cfg, invoker, logger),
		log:    log,
		policy: Policy{Threshold: cfg.Generation.AutoAcceptThreshold},
		logger: logging.NewComponentLogger(logger, "orchestrator"),
	}
}

// Generate runs one job end to end. The returned outcome is only non-nil
// when the job succeeded and every artifact was placed.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Outcome, error) {
	count, err := o.validate(&req)
	if err != nil {
		return nil, err
	}
	req.Count = count

	positions := plan.Positions(req.StartFrame, req.EndFrame, req.Count)

	job := NewJob(req.StartFrame, req.EndFrame, req.Count, req.Character)
	ctx = services.WithJobID(ctx, job.ID)

	backendReq := backend.Request{
		FrameAPath:    req.FrameAPath,
		FrameBPath:    req.FrameBPath,
		Count:         req.Count,
		Character:     req.Character,
		StyleStrength: o.cfg.Backend.StyleStrength,
		Resolution:    o.cfg.Backend.Resolution,
	}
	if err := o.runner.Run(ctx, job, backendReq); err != nil {
		return nil, err
	}

	result, err := ingest.Ingest(job.OutputDir, positions)
	if err != nil {
		job.ErrMessage = err.Error()
		return nil, err
	}

	if result.Degraded {
		logging.WarnWithContext(o.logger, "metadata sidecar missing", "degraded_ingest",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldErrorHint, "backend did not write metadata.json"),
			logging.String(logging.FieldImpact, "all frames require manual review"),
		)
	}

	outcome := &Outcome{
		Job:        job,
		Frames:     make([]DecidedFrame, len(result.Frames)),
		MotionType: result.MotionType,
		Degraded:   result.Degraded,
	}
	for i, frame := range result.Frames {
		outcome.Frames[i] = DecidedFrame{
			PlacedFrame:  frame,
			AutoAccepted: o.policy.AutoAccept(frame.Confidence, result.Degraded),
		}
	}

	o.record(ctx, req, outcome)
	return outcome, nil
}

// validate normalizes the request and returns the effective frame count.
func (o *Orchestrator) validate(req *Request) (int, error) {
	for _, path := range []string{req.FrameAPath, req.FrameBPath} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return 0, services.Wrap(services.ErrNotFound, "generate", "validate",
					fmt.Sprintf("anchor frame %s not found", path), err)
			}
			return 0, services.Wrap(services.ErrValidation, "generate", "validate",
				fmt.Sprintf("anchor frame %s unreadable", path), err)
		}
	}

	// Adjacent anchors hold no interior slots, so a gap of 1 is a range
	// problem rather than a count problem.
	if req.EndFrame <= req.StartFrame+1 {
		return 0, &RangeError{Start: req.StartFrame, End: req.EndFrame}
	}

	count := req.Count
	if count == 0 {
		count = o.cfg.Generation.DefaultFrameCount
	}
	limit := o.cfg.Generation.MaxFrameCount
	if slots := plan.MaxCount(req.StartFrame, req.EndFrame); slots < limit {
		limit = slots
	}
	if count < 1 || count > limit {
		return 0, &CountError{Count: count, Max: limit}
	}
	return count, nil
}

// record appends the generation event and any auto-accepts. Logging failures
// never fail a run that already produced frames.
func (o *Orchestrator) record(ctx context.Context, req Request, outcome *Outcome) {
	if o.log == nil {
		return
	}

	gen := feedback.Generation{
		JobID:      outcome.Job.ID,
		Character:  req.Character,
		MotionType: outcome.MotionType,
		FrameCount: len(outcome.Frames),
	}
	if err := o.log.RecordGeneration(ctx, gen); err != nil {
		logging.WarnWithContext(o.logger, "feedback log write failed", "feedback_write_failed",
			logging.String(logging.FieldJobID, outcome.Job.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "statistics will undercount this run"),
		)
	}

	for _, frame := range outcome.Frames {
		if !frame.AutoAccepted {
			continue
		}
		decision := feedback.Decision{
			JobID:      outcome.Job.ID,
			Character:  req.Character,
			MotionType: outcome.MotionType,
			FrameIndex: frame.FrameIndex,
			Confidence: frame.Confidence,
			Source:     feedback.SourceAuto,
		}
		if err := o.log.RecordAccept(ctx, decision); err != nil {
			logging.WarnWithContext(o.logger, "feedback log write failed", "feedback_write_failed",
				logging.String(logging.FieldJobID, outcome.Job.ID),
				logging.Int(logging.FieldFrameIndex, frame.FrameIndex),
				logging.Error(err),
				logging.String(logging.FieldImpact, "auto-accept not recorded"),
			)
		}
	}
}

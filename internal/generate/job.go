package generate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// Terminal reports whether a job in this status can never move again.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// Job is one generation run between two anchor frames.
type Job struct {
	ID         string
	Status     Status
	StartFrame int
	EndFrame   int
	Count      int
	Character  string
	OutputDir  string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	ErrMessage string
}

// NewJob mints a pending job with a fresh identifier.
func NewJob(startFrame, endFrame, count int, character string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Status:     StatusPending,
		StartFrame: startFrame,
		EndFrame:   endFrame,
		Count:      count,
		Character:  character,
		CreatedAt:  time.Now().UTC(),
	}
}

func (j *Job) transition(to Status) error {
	if j.Status.Terminal() {
		return fmt.Errorf("job %s already %s, cannot move to %s", j.ID, j.Status, to)
	}
	j.Status = to
	switch to {
	case StatusRunning:
		j.StartedAt = time.Now().UTC()
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		j.FinishedAt = time.Now().UTC()
	}
	return nil
}

package feedback

import (
	"fmt"
	"strings"
	"time"
)

// EventType identifies a feedback log entry.
type EventType string

const (
	EventGeneration EventType = "generation"
	EventAccept     EventType = "accept"
	EventReject     EventType = "reject"
)

// Source records who made an accept decision.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

// IssueTag is a closed vocabulary describing why a frame was rejected.
type IssueTag string

const (
	IssueArtifacts     IssueTag = "artifacts"
	IssueWrongMotion   IssueTag = "wrong_motion"
	IssueStyleMismatch IssueTag = "style_mismatch"
	IssueMissingParts  IssueTag = "missing_parts"
	IssueExtraParts    IssueTag = "extra_parts"
	IssueProportion    IssueTag = "proportion"
	IssueOther         IssueTag = "other"
)

// IssueTags lists every valid tag in display order.
func IssueTags() []IssueTag {
	return []IssueTag{
		IssueArtifacts,
		IssueWrongMotion,
		IssueStyleMismatch,
		IssueMissingParts,
		IssueExtraParts,
		IssueProportion,
		IssueOther,
	}
}

// ParseIssueTag validates a user-supplied tag string.
func ParseIssueTag(value string) (IssueTag, error) {
	candidate := IssueTag(strings.ToLower(strings.TrimSpace(value)))
	for _, tag := range IssueTags() {
		if candidate == tag {
			return tag, nil
		}
	}
	return "", fmt.Errorf("unknown issue tag %q (valid: %s)", value, joinTags(IssueTags()))
}

func joinTags(tags []IssueTag) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = string(tag)
	}
	return strings.Join(parts, ", ")
}

// Record is one row of the feedback log.
type Record struct {
	ID         int64
	CreatedAt  time.Time
	Event      EventType
	JobID      string
	Character  string
	MotionType string
	FrameIndex int
	FrameCount int
	Confidence float64
	Source     Source
	Issues     []IssueTag
	Note       string
}

// Generation describes a completed generation job being logged.
type Generation struct {
	JobID      string
	Character  string
	MotionType string
	FrameCount int
}

// Decision describes one accept or reject of a single frame.
type Decision struct {
	JobID      string
	Character  string
	MotionType string
	FrameIndex int
	Confidence float64
	Source     Source
	Issues     []IssueTag
	Note       string
}

package feedback

import (
	"context"
	"sort"
	"strings"
	"time"

	"tween/internal/services"
)

// DefaultAcceptanceRate is reported when the log holds no decisions yet.
const DefaultAcceptanceRate = 0.5

// Filter narrows statistics to a slice of the log. Zero values match
// everything.
type Filter struct {
	Character  string
	MotionType string
	Since      time.Time
}

// DecisionCounts tallies accepts and rejects for one grouping key.
type DecisionCounts struct {
	Accepted int
	Rejected int
}

// Rate returns the acceptance rate for this bucket, or the default when the
// bucket is empty.
func (d DecisionCounts) Rate() float64 {
	total := d.Accepted + d.Rejected
	if total == 0 {
		return DefaultAcceptanceRate
	}
	return float64(d.Accepted) / float64(total)
}

// IssueCount pairs a rejection issue tag with its frequency.
type IssueCount struct {
	Tag   IssueTag
	Count int
}

// Summary is the aggregate view over the filtered log.
type Summary struct {
	// TotalRecords counts every matched log row, including generation
	// events.
	TotalRecords           int
	Generations            int
	FramesGenerated        int
	Accepted               int
	Rejected               int
	AutoAccepted           int
	AcceptanceRate         float64
	MeanAcceptedConfidence float64
	ByMotionType           map[string]DecisionCounts
	ByCharacter            map[string]DecisionCounts
	CommonIssues           []IssueCount
}

// Stats recomputes the summary from the full log every time it is called.
func (s *Store) Stats(ctx context.Context, filter Filter) (*Summary, error) {
	query := `SELECT id, created_at, event, job_id, character, motion_type,
        frame_index, frame_count, confidence, source, issues_json, note
        FROM feedback_events WHERE 1=1`
	var args []any
	if character := strings.TrimSpace(filter.Character); character != "" {
		query += " AND character = ?"
		args = append(args, character)
	}
	if motion := strings.TrimSpace(filter.MotionType); motion != "" {
		query += " AND motion_type = ?"
		args = append(args, motion)
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "feedback", "stats", "query events", err)
	}
	defer rows.Close()

	summary := &Summary{
		ByMotionType: map[string]DecisionCounts{},
		ByCharacter:  map[string]DecisionCounts{},
	}
	issueCounts := map[IssueTag]int{}
	var acceptedConfidenceSum float64

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "feedback", "stats", "scan event", err)
		}
		summary.TotalRecords++
		switch record.Event {
		case EventGeneration:
			summary.Generations++
			summary.FramesGenerated += record.FrameCount
		case EventAccept:
			summary.Accepted++
			acceptedConfidenceSum += record.Confidence
			if record.Source == SourceAuto {
				summary.AutoAccepted++
			}
			bumpCounts(summary.ByMotionType, record.MotionType, true)
			bumpCounts(summary.ByCharacter, record.Character, true)
		case EventReject:
			summary.Rejected++
			bumpCounts(summary.ByMotionType, record.MotionType, false)
			bumpCounts(summary.ByCharacter, record.Character, false)
			for _, tag := range record.Issues {
				issueCounts[tag]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "feedback", "stats", "iterate events", err)
	}

	decisions := summary.Accepted + summary.Rejected
	if decisions == 0 {
		summary.AcceptanceRate = DefaultAcceptanceRate
	} else {
		summary.AcceptanceRate = float64(summary.Accepted) / float64(decisions)
	}
	if summary.Accepted > 0 {
		summary.MeanAcceptedConfidence = acceptedConfidenceSum / float64(summary.Accepted)
	}
	summary.CommonIssues = sortedIssues(issueCounts)
	return summary, nil
}

// AcceptanceRate returns the filtered acceptance rate, defaulting to
// DefaultAcceptanceRate when no decisions match.
func (s *Store) AcceptanceRate(ctx context.Context, filter Filter) (float64, error) {
	summary, err := s.Stats(ctx, filter)
	if err != nil {
		return 0, err
	}
	return summary.AcceptanceRate, nil
}

func bumpCounts(m map[string]DecisionCounts, key string, accepted bool) {
	if key == "" {
		key = "(unknown)"
	}
	counts := m[key]
	if accepted {
		counts.Accepted++
	} else {
		counts.Rejected++
	}
	m[key] = counts
}

func sortedIssues(counts map[IssueTag]int) []IssueCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]IssueCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, IssueCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

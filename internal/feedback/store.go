package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tween/internal/config"
	"tween/internal/services"
)

// Store manages the feedback log backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the feedback database configured in cfg and initializes
// the schema on first use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.FeedbackDB)
}

// OpenPath connects to a feedback database at an explicit path.
func OpenPath(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("feedback database path required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single pooled connection keeps the pragmas below in effect for every
	// statement and serializes concurrent appends.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// RecordGeneration appends a generation event for a completed job.
func (s *Store) RecordGeneration(ctx context.Context, gen Generation) error {
	if strings.TrimSpace(gen.JobID) == "" {
		return services.Wrap(services.ErrValidation, "feedback", "record", "job id required", nil)
	}
	if gen.FrameCount < 1 {
		return services.Wrap(services.ErrValidation, "feedback", "record", "frame count must be positive", nil)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_events (created_at, event, job_id, character, motion_type, frame_count)
         VALUES (?, ?, ?, ?, ?, ?)`,
		now(), EventGeneration, gen.JobID,
		nullableString(gen.Character), nullableString(gen.MotionType), gen.FrameCount,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "feedback", "record", "insert generation event", err)
	}
	return nil
}

// RecordAccept appends an accept event for one frame.
func (s *Store) RecordAccept(ctx context.Context, d Decision) error {
	return s.recordDecision(ctx, EventAccept, d)
}

// RecordReject appends a reject event for one frame.
func (s *Store) RecordReject(ctx context.Context, d Decision) error {
	for _, tag := range d.Issues {
		if _, err := ParseIssueTag(string(tag)); err != nil {
			return services.Wrap(services.ErrValidation, "feedback", "record", "invalid issue tag", err)
		}
	}
	return s.recordDecision(ctx, EventReject, d)
}

func (s *Store) recordDecision(ctx context.Context, event EventType, d Decision) error {
	if d.FrameIndex < 0 {
		return services.Wrap(services.ErrValidation, "feedback", "record", "frame index must be non-negative", nil)
	}
	source := d.Source
	if source == "" {
		source = SourceManual
	}
	if source != SourceManual && source != SourceAuto {
		return services.Wrap(services.ErrValidation, "feedback", "record",
			fmt.Sprintf("unknown source %q", d.Source), nil)
	}

	var issuesJSON any
	if len(d.Issues) > 0 {
		encoded, err := json.Marshal(d.Issues)
		if err != nil {
			return services.Wrap(services.ErrValidation, "feedback", "record", "encode issues", err)
		}
		issuesJSON = string(encoded)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_events (created_at, event, job_id, character, motion_type,
             frame_index, confidence, source, issues_json, note)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		now(), event, nullableString(d.JobID),
		nullableString(d.Character), nullableString(d.MotionType),
		d.FrameIndex, d.Confidence, source, issuesJSON, nullableString(d.Note),
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "feedback", "record", "insert decision event", err)
	}
	return nil
}

// Recent returns the newest records up to limit, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, event, job_id, character, motion_type,
            frame_index, frame_count, confidence, source, issues_json, note
         FROM feedback_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "feedback", "recent", "query events", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "feedback", "recent", "scan event", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "feedback", "recent", "iterate events", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var createdAt string
	var jobID, character, motionType, source, issuesJSON, note sql.NullString
	var frameIndex, frameCount sql.NullInt64
	var confidence sql.NullFloat64

	err := row.Scan(&record.ID, &createdAt, &record.Event, &jobID, &character, &motionType,
		&frameIndex, &frameCount, &confidence, &source, &issuesJSON, &note)
	if err != nil {
		return Record{}, err
	}

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}
	record.JobID = jobID.String
	record.Character = character.String
	record.MotionType = motionType.String
	record.FrameIndex = int(frameIndex.Int64)
	record.FrameCount = int(frameCount.Int64)
	record.Confidence = confidence.Float64
	record.Source = Source(source.String)
	record.Note = note.String
	if issuesJSON.Valid && issuesJSON.String != "" {
		if err := json.Unmarshal([]byte(issuesJSON.String), &record.Issues); err != nil {
			return Record{}, fmt.Errorf("decode issues: %w", err)
		}
	}
	return record, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

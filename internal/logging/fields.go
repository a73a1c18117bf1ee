package logging

// Standardized attribute keys. Use these constants rather than string
// literals so log consumers can rely on stable field names.
const (
	FieldComponent  = "component"
	FieldJobID      = "job_id"
	FieldStage      = "stage"
	FieldCharacter  = "character"
	FieldMotionType = "motion_type"
	FieldFrameIndex = "frame_index"
	FieldConfidence = "confidence"
	FieldEventType  = "event_type"
	FieldErrorHint  = "error_hint"
	FieldImpact     = "impact"
)

// Package services provides cross-cutting helpers shared by the generation
// pipeline: sentinel error markers with a context-rich wrap helper, and
// context annotations for correlating log output with a job.
//
// Errors are classified by wrapping one of the exported sentinels so callers
// can branch with errors.Is without parsing message text. Precondition and
// ingest validation failures wrap ErrValidation; backend invocation failures
// wrap ErrExternalTool or ErrTimeout.
package services

// Package generate plans, runs, and settles inbetween generation jobs.
//
// The orchestrator validates the anchor range, plans timeline positions, runs
// the backend under the configured deadline, binds artifacts to positions,
// applies the auto-accept policy, and records the outcome in the feedback
// log. Each job works in its own output directory, which is kept after
// failures so the artifacts can be inspected.
package generate

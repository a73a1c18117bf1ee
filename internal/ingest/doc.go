// Package ingest maps generated frame artifacts back onto planned timeline
// positions.
//
// Ingestion is all or nothing: artifacts sort lexically, the count must match
// the plan exactly, and metadata scores must line up with the artifacts. A
// missing metadata sidecar is tolerated; the result is marked degraded and
// every frame falls back to manual review.
package ingest

// Package backend invokes the frame generation engine and defines the
// artifact contract both transports honor.
//
// Two implementations exist: a process backend that runs an external generator
// binary, and an HTTP backend that posts the anchor frames to a generation
// endpoint and writes the returned frames to disk. Either way the output
// directory ends up holding numbered PNG artifacts plus an optional
// metadata.json with per-frame confidence scores.
package backend

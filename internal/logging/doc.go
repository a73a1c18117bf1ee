// Package logging builds the slog loggers used across tween and provides
// attribute helpers so call sites stay terse.
//
// Two output formats are supported: a compact console format for interactive
// use and line-delimited JSON for machine consumption. Components obtain a
// child logger through NewComponentLogger so every record carries a component
// attribute, and tests use NewNop to silence output.
package logging

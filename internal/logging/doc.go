// Package logging assembles structured slog loggers and formatting helpers used
// across automix.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code tags log lines with the run
// id, stage, part, mix, and track automatically. NewNop serves tests and wiring
// code that cannot fail.
package logging

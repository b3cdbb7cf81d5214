// Package services defines shared utilities consumed by the render pipeline
// stages and the Media Engine integration.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and the part,
//     mix, or track being processed for logging.
//   - Structured error markers plus the Wrap helper so callers classify
//     failures with errors.Is (fatal vs skippable, definition vs render).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services

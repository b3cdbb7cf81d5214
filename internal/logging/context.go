package logging

import (
	"context"
	"log/slog"

	"automix/internal/services"
)

const (
	// FieldRunID identifies one render invocation.
	FieldRunID = "run_id"
	// FieldStage is the pipeline stage (probe, parts, tracks, masters).
	FieldStage = "stage"
	// FieldPart names the part being composed.
	FieldPart = "part"
	// FieldMix names the mix being assembled.
	FieldMix = "mix"
	// FieldTrack is the 1-based track index inside a mix.
	FieldTrack = "track"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 5)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if part, ok := services.PartFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPart, part))
	}
	if mix, ok := services.MixFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMix, mix))
	}
	if track, ok := services.TrackFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldTrack, track))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	partKey  contextKey = "part"
	mixKey   contextKey = "mix"
	trackKey contextKey = "track"
)

// WithRunID annotates context with the render run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithPart annotates context with the part being composed.
func WithPart(ctx context.Context, part string) context.Context {
	if part == "" {
		return ctx
	}
	return context.WithValue(ctx, partKey, part)
}

// PartFromContext returns the part name if present.
func PartFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(partKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMix annotates context with the mix being assembled.
func WithMix(ctx context.Context, mix string) context.Context {
	if mix == "" {
		return ctx
	}
	return context.WithValue(ctx, mixKey, mix)
}

// MixFromContext returns the mix name if present.
func MixFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(mixKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTrack annotates context with the 1-based track (segment) index within a mix.
func WithTrack(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, trackKey, index)
}

// TrackFromContext returns the track index if present.
func TrackFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(trackKey).(int)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"automix/internal/logging"
	"automix/internal/media/ffprobe"
	"automix/internal/media/graph"
	"automix/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Engine realizes media graphs with ffmpeg and probes sources with ffprobe.
type Engine struct {
	ffmpegBinary  string
	ffprobeBinary string
	logger        *slog.Logger
	run           commandRunner
	probe         probeFunc
}

// New constructs an Engine. Empty binary names fall back to ffmpeg/ffprobe on PATH.
func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Engine {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Engine{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, "ffmpeg"),
		run:           defaultCommandRunner,
		probe:         ffprobe.Inspect,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Engine) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// WithProbe allows injecting a custom ffprobe implementation for tests.
func (e *Engine) WithProbe(p func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if e != nil && p != nil {
		e.probe = p
	}
}

// Probe measures the duration and sample rate of the first audio stream at
// location.
func (e *Engine) Probe(ctx context.Context, location string) (graph.Probe, error) {
	result, err := e.probe(ctx, e.ffprobeBinary, location)
	if err != nil {
		return graph.Probe{}, services.Wrap(services.ErrSourceUnreadable, "probe", "ffprobe", location, err)
	}
	if result.AudioStreamCount() == 0 {
		return graph.Probe{}, services.Wrap(services.ErrSourceUnreadable, "probe", "ffprobe", location+": no audio stream", nil)
	}
	probe := graph.Probe{
		DurationSeconds: result.AudioDurationSeconds(),
		SampleRate:      result.SampleRate(),
	}
	if probe.DurationSeconds <= 0 || probe.SampleRate <= 0 {
		return graph.Probe{}, services.Wrap(services.ErrSourceUnreadable, "probe", "ffprobe",
			fmt.Sprintf("%s: unusable duration %v or sample rate %d", location, probe.DurationSeconds, probe.SampleRate), nil)
	}
	e.logger.Debug("probed source",
		logging.String("location", location),
		logging.Float64("duration_seconds", probe.DurationSeconds),
		logging.Int("sample_rate", probe.SampleRate),
	)
	return probe, nil
}

// Realize renders root into output.
func (e *Engine) Realize(ctx context.Context, root graph.Node, output string, overwrite bool) error {
	inv, err := Compile(root, output, overwrite)
	if err != nil {
		return services.Wrap(services.ErrRender, "render", "compile", output, err)
	}
	e.logger.Debug("running ffmpeg",
		logging.String("output", output),
		logging.Int("inputs", len(inv.Inputs)),
		logging.String("filter_complex", inv.Filter),
	)
	if err := e.run(ctx, e.ffmpegBinary, inv.Args...); err != nil {
		return services.Wrap(services.ErrRender, "render", "ffmpeg", output, err)
	}
	return nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

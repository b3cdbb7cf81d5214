package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"automix/internal/clips"
	"automix/internal/compose"
	"automix/internal/definition"
	"automix/internal/fileutil"
	"automix/internal/filters"
	"automix/internal/logging"
	"automix/internal/media/graph"
	"automix/internal/mixer"
	"automix/internal/services"
)

// Engine is the Media Engine the orchestrator drives.
type Engine interface {
	Probe(ctx context.Context, location string) (graph.Probe, error)
	Realize(ctx context.Context, root graph.Node, output string, overwrite bool) error
}

// Options configures a run. Every location is explicit; nothing is derived
// from the process working directory.
type Options struct {
	// WorkDir is the root under which the private run directory is created.
	WorkDir string
	// Outputs maps every mix name to its output file.
	Outputs map[string]string
	// Overwrite allows replacing existing output files.
	Overwrite bool
	// Concurrency bounds concurrent Media Engine calls; 0 means one per CPU.
	Concurrency int
	// Format is the file extension of intermediate artifacts; default wav.
	Format string
}

// Output describes one published mix master.
type Output struct {
	Mix       string
	Location  string
	SizeBytes int64
}

// Result summarizes a successful run.
type Result struct {
	RunID   string
	Parts   []compose.PartPlan
	Outputs []Output
	Elapsed time.Duration
}

// Orchestrator sequences a complete render.
type Orchestrator struct {
	engine    Engine
	prober    clips.Prober
	opts      Options
	logger    *slog.Logger
	onCleanup func(dir string)
}

// New constructs an Orchestrator.
func New(engine Engine, opts Options, logger *slog.Logger) *Orchestrator {
	if strings.TrimSpace(opts.Format) == "" {
		opts.Format = "wav"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Orchestrator{
		engine: engine,
		prober: engine,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// WithProber replaces the prober used to load clips, for example with a
// cached one.
func (o *Orchestrator) WithProber(p clips.Prober) {
	if o != nil && p != nil {
		o.prober = p
	}
}

type job struct {
	ctx    context.Context
	kind   string
	name   string
	root   graph.Node
	output string
}

// Run renders every mix of def.
func (o *Orchestrator) Run(ctx context.Context, def *definition.Definition) (Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)

	if err := o.checkOutputs(def); err != nil {
		return Result{}, err
	}

	lock, err := lockOutputs(o.opts.Outputs)
	if err != nil {
		return Result{}, err
	}
	defer lock.release()

	ws, err := newWorkspace(o.opts.WorkDir, runID, o.opts.Format)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "render", "workspace", "", err)
	}
	defer o.cleanup(logger, ws)

	logger.Info("render started",
		logging.String("definition", def.Name),
		logging.Int("clips", len(def.Clips)),
		logging.Int("parts", len(def.Parts)),
		logging.Int("mixes", len(def.Mixes)),
		logging.Int("concurrency", o.opts.Concurrency),
	)

	// Probe.
	stageCtx := services.WithStage(ctx, "probe")
	registry, err := clips.Load(stageCtx, def.Clips, o.prober,
		clips.WithConcurrency(o.opts.Concurrency),
		clips.WithLogger(o.logger),
	)
	if err != nil {
		return Result{}, err
	}

	catalog, err := filters.NewCatalog(def.Filters)
	if err != nil {
		return Result{}, err
	}
	composer := compose.NewComposer(def.BPM, catalog, registry, o.logger)

	// Parts. Every plan is computed before anything renders so arithmetic and
	// filter errors surface without Media Engine work.
	stageCtx = services.WithStage(ctx, "parts")
	names := def.PartNames()
	plans := make([]compose.PartPlan, 0, len(names))
	partJobs := make([]job, 0, len(names))
	partArtifacts := make(map[string]string, len(names))
	for _, name := range names {
		plan, root, err := composer.Compose(stageCtx, name, def.Parts[name], def.PartBars(name))
		if err != nil {
			return Result{}, err
		}
		plans = append(plans, plan)
		location := ws.artifact("part")
		partArtifacts[name] = location
		partJobs = append(partJobs, job{ctx: services.WithPart(stageCtx, name), kind: "part", name: name, root: root, output: location})
	}
	if err := o.realizeAll(stageCtx, partJobs); err != nil {
		return Result{}, err
	}

	// Tracks.
	stageCtx = services.WithStage(ctx, "tracks")
	assembler := mixer.NewAssembler(o.logger)
	mixes := def.MixNames()
	trackArtifacts := make(map[string][]string, len(mixes))
	var trackJobs []job
	for _, mix := range mixes {
		for i, seg := range def.Mixes[mix].Segments {
			root, err := assembler.Track(stageCtx, mix, i, seg, partArtifacts)
			if err != nil {
				return Result{}, err
			}
			location := ws.artifact("track")
			trackArtifacts[mix] = append(trackArtifacts[mix], location)
			trackJobs = append(trackJobs, job{
				ctx:    services.WithTrack(services.WithMix(stageCtx, mix), i+1),
				kind:   "track",
				name:   fmt.Sprintf("%s/%d", mix, i+1),
				root:   root,
				output: location,
			})
		}
	}
	if err := o.realizeAll(stageCtx, trackJobs); err != nil {
		return Result{}, err
	}

	// Masters render into the workspace and are published afterwards so a
	// failed render never leaves a partial output file.
	stageCtx = services.WithStage(ctx, "masters")
	masterArtifacts := make(map[string]string, len(mixes))
	masterJobs := make([]job, 0, len(mixes))
	for _, mix := range mixes {
		tempo, pitch := def.Ratios(mix)
		root := assembler.Master(mixer.TrackInputs(trackArtifacts[mix]), tempo, pitch)
		location := ws.artifact("mix")
		masterArtifacts[mix] = location
		masterJobs = append(masterJobs, job{ctx: services.WithMix(stageCtx, mix), kind: "mix", name: mix, root: root, output: location})
	}
	if err := o.realizeAll(stageCtx, masterJobs); err != nil {
		return Result{}, err
	}

	result := Result{RunID: runID, Parts: plans}
	for _, mix := range mixes {
		output := o.opts.Outputs[mix]
		if err := fileutil.MoveFile(masterArtifacts[mix], output, o.opts.Overwrite); err != nil {
			return Result{}, services.Wrap(services.ErrRender, "publish", mix, output, err)
		}
		var size int64
		if info, err := os.Stat(output); err == nil {
			size = info.Size()
		}
		logging.WithContext(services.WithMix(stageCtx, mix), o.logger).Info("mix written",
			logging.String("output", output),
			logging.String("size", humanize.Bytes(uint64(size))),
		)
		result.Outputs = append(result.Outputs, Output{Mix: mix, Location: output, SizeBytes: size})
	}
	result.Elapsed = time.Since(started)
	logger.Info("render finished",
		logging.Int("outputs", len(result.Outputs)),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// checkOutputs verifies every mix has exactly one target and that nothing
// would be overwritten without permission.
func (o *Orchestrator) checkOutputs(def *definition.Definition) error {
	var problems []error
	for _, mix := range def.MixNames() {
		output, ok := o.opts.Outputs[mix]
		if !ok || strings.TrimSpace(output) == "" {
			problems = append(problems, fmt.Errorf("mix %q has no output location", mix))
			continue
		}
		if !o.opts.Overwrite && fileutil.Exists(output) {
			problems = append(problems, fmt.Errorf("%s exists (pass --yes to overwrite)", output))
		}
	}
	for mix := range o.opts.Outputs {
		if _, ok := def.Mixes[mix]; !ok {
			problems = append(problems, fmt.Errorf("output given for unknown mix %q", mix))
		}
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrConfiguration, "render", "outputs", "", errors.Join(problems...))
	}
	return nil
}

// realizeAll renders jobs concurrently. Once a job fails no further job is
// started.
func (o *Orchestrator) realizeAll(ctx context.Context, jobs []job) error {
	if len(jobs) == 0 {
		return nil
	}
	started := time.Now()
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(o.opts.Concurrency)
	for _, j := range jobs {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger := logging.WithContext(j.ctx, o.logger)
			logger.Debug("realizing artifact",
				logging.String("kind", j.kind),
				logging.String("output", j.output),
				logging.String("graph", graph.Describe(j.root)),
			)
			if err := o.engine.Realize(gctx, j.root, j.output, true); err != nil {
				logger.Error("artifact failed",
					logging.String("kind", j.kind),
					logging.String(logging.FieldErrorKind, services.Kind(err)),
					logging.Error(err),
				)
				return fmt.Errorf("%s %q: %w", j.kind, j.name, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	logging.WithContext(ctx, o.logger).Info("stage complete",
		logging.Int("artifacts", len(jobs)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (o *Orchestrator) cleanup(logger *slog.Logger, ws *workspace) {
	err := ws.cleanup()
	if o.onCleanup != nil {
		o.onCleanup(ws.dir)
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to remove run directory", "cleanup_failed",
			logging.String("dir", ws.dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "intermediate artifacts remain on disk"),
		)
		return
	}
	logger.Debug("removed run directory", logging.String("dir", ws.dir))
}

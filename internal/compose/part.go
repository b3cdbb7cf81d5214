package compose

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"automix/internal/clips"
	"automix/internal/definition"
	"automix/internal/filters"
	"automix/internal/logging"
	"automix/internal/media/graph"
	"automix/internal/services"
)

// silenceSampleRate is used for parts without any usable clip.
const silenceSampleRate = 44100

// ClipSource looks up probed clips by name.
type ClipSource interface {
	Lookup(name string) (clips.Clip, error)
}

// ClipPlan is the computed placement of one clip usage.
type ClipPlan struct {
	Clip     string
	Location string
	// Skipped is set when the clip is not registered; the usage contributes
	// nothing to the part.
	Skipped      bool
	BarsOriginal float64
	Bars         float64
	Offset       int
	Loop         int
	Weight       float64
	SampleRate   int
	Filters      []filters.Resolved
}

// PartPlan is the computed arrangement of one part.
type PartPlan struct {
	Name     string
	BarTime  float64
	BarsPart float64
	Clips    []ClipPlan
}

// DurationSeconds is the rendered length of the part.
func (p PartPlan) DurationSeconds() float64 {
	return p.BarsPart * p.BarTime
}

// Active returns the usages that contribute audio.
func (p PartPlan) Active() []ClipPlan {
	active := make([]ClipPlan, 0, len(p.Clips))
	for _, c := range p.Clips {
		if !c.Skipped {
			active = append(active, c)
		}
	}
	return active
}

// Composer plans parts and builds their media graphs.
type Composer struct {
	barTime float64
	catalog *filters.Catalog
	clips   ClipSource
	logger  *slog.Logger
}

// NewComposer constructs a Composer for material at bpm.
func NewComposer(bpm float64, catalog *filters.Catalog, source ClipSource, logger *slog.Logger) *Composer {
	return &Composer{
		barTime: BarTime(bpm),
		catalog: catalog,
		clips:   source,
		logger:  logging.NewComponentLogger(logger, "compose"),
	}
}

// BarTime returns the bar length in seconds.
func (c *Composer) BarTime() float64 {
	return c.barTime
}

// Plan computes the arrangement of part at barsPart bars. Usages referencing
// unregistered clips are recorded as skipped.
func (c *Composer) Plan(ctx context.Context, name string, part definition.Part, barsPart float64) (PartPlan, error) {
	logger := logging.WithContext(services.WithPart(ctx, name), c.logger)
	if barsPart <= 0 {
		return PartPlan{}, services.Wrap(services.ErrInvalidBarArithmetic, "compose", name, fmt.Sprintf("part length %g bars", barsPart), nil)
	}
	plan := PartPlan{Name: name, BarTime: c.barTime, BarsPart: barsPart}
	for i, usage := range part.Clips {
		clip, err := c.clips.Lookup(usage.Name)
		if err != nil {
			if services.IsFatal(err) {
				return PartPlan{}, err
			}
			logger.Info("skipping clip usage",
				logging.String("clip", usage.Name),
				logging.Int("usage", i),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
			)
			plan.Clips = append(plan.Clips, ClipPlan{Clip: usage.Name, Skipped: true, Offset: usage.Offset, Weight: usage.EffectiveWeight()})
			continue
		}
		cp, err := c.planClip(clip, usage, barsPart)
		if err != nil {
			return PartPlan{}, fmt.Errorf("part %q clip %q: %w", name, usage.Name, err)
		}
		logger.Debug("planned clip",
			logging.String("clip", cp.Clip),
			logging.Float64("bars_original", cp.BarsOriginal),
			logging.Float64("bars", cp.Bars),
			logging.Int("offset", cp.Offset),
			logging.Int("loop", cp.Loop),
			logging.Float64("weight", cp.Weight),
		)
		plan.Clips = append(plan.Clips, cp)
	}
	return plan, nil
}

func (c *Composer) planClip(clip clips.Clip, usage definition.ClipUsage, barsPart float64) (ClipPlan, error) {
	barsOriginal := OriginalBars(clip.DurationSeconds, c.barTime)
	if usage.Bars != nil {
		barsOriginal = *usage.Bars
	}
	bars, err := ResampleBars(barsPart, barsOriginal, usage.Offset)
	if err != nil {
		return ClipPlan{}, err
	}
	loop, err := LoopCount(barsPart, bars, usage.Offset, usage.Loop)
	if err != nil {
		return ClipPlan{}, err
	}
	resolved, err := c.catalog.ResolveAll(usage.Filters, c.barTime)
	if err != nil {
		return ClipPlan{}, err
	}
	return ClipPlan{
		Clip:         clip.Name,
		Location:     clip.Location,
		BarsOriginal: barsOriginal,
		Bars:         bars,
		Offset:       usage.Offset,
		Loop:         loop,
		Weight:       usage.EffectiveWeight(),
		SampleRate:   clip.SampleRate,
		Filters:      resolved,
	}, nil
}

// ClipGraph builds the media chain for one planned usage. The clip is fitted
// to whole bars first, so audio ending mid-bar still fills its last bar and
// every loop seam lands on the bar grid.
func (c *Composer) ClipGraph(plan PartPlan, cp ClipPlan) graph.Node {
	bt := plan.BarTime
	var node graph.Node = graph.Fit{In: graph.Input{Location: cp.Location}, Duration: cp.Bars * bt}
	if cp.Offset > 0 {
		node = graph.Pad{In: node, Duration: float64(cp.Offset) * bt}
	}
	if cp.Loop > 0 {
		unitSeconds := (cp.Bars + float64(cp.Offset)) * bt
		node = graph.Loop{In: node, Count: cp.Loop, Size: int64(math.Round(unitSeconds * float64(cp.SampleRate)))}
	}
	for _, f := range cp.Filters {
		node = f.Apply(node)
	}
	return graph.Fit{In: node, Duration: plan.DurationSeconds()}
}

// Graph builds the part's media graph: a weighted mix of every active clip
// chain, or silence of the part's length when no clip is usable.
func (c *Composer) Graph(plan PartPlan) graph.Node {
	active := plan.Active()
	if len(active) == 0 {
		return graph.Silence{Duration: plan.DurationSeconds(), SampleRate: silenceSampleRate}
	}
	mix := graph.WeightedMix{
		Inputs:  make([]graph.Node, 0, len(active)),
		Weights: make([]float64, 0, len(active)),
	}
	for _, cp := range active {
		mix.Inputs = append(mix.Inputs, c.ClipGraph(plan, cp))
		mix.Weights = append(mix.Weights, cp.Weight)
	}
	return mix
}

// Compose plans a part and builds its graph.
func (c *Composer) Compose(ctx context.Context, name string, part definition.Part, barsPart float64) (PartPlan, graph.Node, error) {
	plan, err := c.Plan(ctx, name, part, barsPart)
	if err != nil {
		return PartPlan{}, nil, err
	}
	return plan, c.Graph(plan), nil
}

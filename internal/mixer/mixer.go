package mixer

import (
	"context"
	"fmt"
	"log/slog"

	"automix/internal/definition"
	"automix/internal/logging"
	"automix/internal/media/graph"
	"automix/internal/services"
)

// Assembler builds track and master graphs for mixes.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler constructs an Assembler.
func NewAssembler(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logging.NewComponentLogger(logger, "mixer")}
}

// Track builds the graph of one segment from part artifact locations.
func (a *Assembler) Track(ctx context.Context, mix string, index int, seg definition.Segment, parts map[string]string) (graph.Node, error) {
	if len(seg.Parts) == 0 {
		return nil, services.Wrap(services.ErrDefinition, "mix", mix, fmt.Sprintf("segment %d has no parts", index), nil)
	}
	node := graph.WeightedMix{
		Inputs:  make([]graph.Node, 0, len(seg.Parts)),
		Weights: make([]float64, 0, len(seg.Parts)),
	}
	for _, ref := range seg.Parts {
		location, ok := parts[ref.Name]
		if !ok {
			return nil, services.Wrap(services.ErrRender, "mix", mix, fmt.Sprintf("segment %d: part %q was not rendered", index, ref.Name), nil)
		}
		node.Inputs = append(node.Inputs, graph.Input{Location: location})
		node.Weights = append(node.Weights, ref.EffectiveWeight())
	}
	logging.WithContext(services.WithTrack(services.WithMix(ctx, mix), index+1), a.logger).Debug("assembled track",
		logging.Int("parts", len(node.Inputs)),
		logging.String("weights", graph.JoinWeights(node.Weights)),
	)
	return node, nil
}

// Master concatenates tracks in order and applies the tempo/pitch transform
// when a ratio differs from 1.
func (a *Assembler) Master(tracks []graph.Node, tempo, pitch float64) graph.Node {
	var node graph.Node = graph.Concat{Inputs: tracks}
	if tempo != 1 || pitch != 1 {
		node = graph.TempoPitch{In: node, Tempo: tempo, Pitch: pitch}
	}
	return node
}

// Assemble builds the complete master graph of mix in one tree, reading part
// artifacts directly.
func (a *Assembler) Assemble(ctx context.Context, name string, mix definition.Mix, parts map[string]string, tempo, pitch float64) (graph.Node, error) {
	if len(mix.Segments) == 0 {
		return nil, services.Wrap(services.ErrDefinition, "mix", name, "no segments", nil)
	}
	tracks := make([]graph.Node, 0, len(mix.Segments))
	for i, seg := range mix.Segments {
		track, err := a.Track(ctx, name, i, seg, parts)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return a.Master(tracks, tempo, pitch), nil
}

// TrackInputs turns persisted track artifact locations into master inputs.
func TrackInputs(locations []string) []graph.Node {
	nodes := make([]graph.Node, len(locations))
	for i, location := range locations {
		nodes[i] = graph.Input{Location: location}
	}
	return nodes
}

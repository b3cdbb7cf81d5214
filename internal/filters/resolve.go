package filters

import (
	"fmt"
	"strings"

	"automix/internal/definition"
	"automix/internal/media/graph"
	"automix/internal/services"
)

// Fixed operation names accepted in definitions.
const (
	OpFade     = "fade"
	OpLowpass  = "lowpass"
	OpHighpass = "highpass"
	OpBandpass = "bandpass"
	OpVolume   = "volume"
	OpPitch    = "pitch"
)

// Resolved is a filter in absolute units.
type Resolved struct {
	// Operation is the fixed operation name from the definition.
	Operation string
	// Filter is the Media Engine filter implementing Operation.
	Filter string
	Args   []graph.Arg
	Enable graph.Enable
	// Pitch is set for OpPitch, which maps onto a tempo/pitch transform.
	Pitch float64
}

// Apply wraps in with the operation.
func (r Resolved) Apply(in graph.Node) graph.Node {
	if r.Operation == OpPitch {
		return graph.TempoPitch{In: in, Tempo: 1, Pitch: r.Pitch}
	}
	return graph.Filter{In: in, Name: r.Filter, Args: r.Args, Enable: r.Enable}
}

// String renders the resolved operation for plans and logs.
func (r Resolved) String() string {
	parts := make([]string, 0, len(r.Args)+1)
	for _, arg := range r.Args {
		parts = append(parts, arg.Key+"="+arg.Value)
	}
	if expr := r.Enable.String(); expr != "" {
		parts = append(parts, "enable="+expr)
	}
	return r.Filter + "(" + strings.Join(parts, ",") + ")"
}

func build(f, window definition.Filter, barTime float64) (Resolved, error) {
	op := strings.ToLower(strings.TrimSpace(f.Name))
	r := Resolved{Operation: op, Enable: enableFor(window, barTime)}

	missing := func(field string) error {
		return services.Wrap(services.ErrDefinition, "filters", op, fmt.Sprintf("%s is required", field), nil)
	}

	switch op {
	case OpFade:
		if f.Duration == nil {
			return Resolved{}, missing("duration")
		}
		direction := strings.ToLower(strings.TrimSpace(f.Type))
		if direction == "" {
			direction = "in"
		}
		if direction != "in" && direction != "out" {
			return Resolved{}, services.Wrap(services.ErrDefinition, "filters", op, fmt.Sprintf("type %q must be in or out", f.Type), nil)
		}
		start := 0.0
		if f.StartTime != nil {
			start = *f.StartTime
		}
		r.Filter = "afade"
		r.Args = []graph.Arg{
			{Key: "t", Value: direction},
			graph.FloatArg("st", start*barTime),
			graph.FloatArg("d", *f.Duration*barTime),
		}
		if curve := strings.TrimSpace(f.Curve); curve != "" {
			r.Args = append(r.Args, graph.Arg{Key: "curve", Value: curve})
		}
	case OpLowpass, OpHighpass:
		if f.Frequency == nil {
			return Resolved{}, missing("frequency")
		}
		r.Filter = op
		r.Args = []graph.Arg{graph.FloatArg("f", *f.Frequency)}
	case OpBandpass:
		if f.Frequency == nil {
			return Resolved{}, missing("frequency")
		}
		if f.Width == nil {
			return Resolved{}, missing("width")
		}
		r.Filter = op
		r.Args = []graph.Arg{
			graph.FloatArg("f", *f.Frequency),
			{Key: "width_type", Value: "h"},
			graph.FloatArg("w", *f.Width),
		}
	case OpVolume:
		if f.Volume == nil {
			return Resolved{}, missing("volume")
		}
		r.Filter = op
		r.Args = []graph.Arg{graph.FloatArg("volume", *f.Volume)}
	case OpPitch:
		if f.Pitch == nil {
			return Resolved{}, missing("pitch")
		}
		if *f.Pitch <= 0 {
			return Resolved{}, services.Wrap(services.ErrDefinition, "filters", op, "pitch must be positive", nil)
		}
		if r.Enable.Kind != graph.Always {
			return Resolved{}, services.Wrap(services.ErrDefinition, "filters", op, "from/to are not supported for pitch", nil)
		}
		r.Filter = "rubberband"
		r.Pitch = *f.Pitch
		r.Args = []graph.Arg{graph.FloatArg("tempo", 1), graph.FloatArg("pitch", *f.Pitch)}
	default:
		return Resolved{}, services.Wrap(services.ErrFilterNotFound, "filters", "resolve", fmt.Sprintf("operation %q", f.Name), nil)
	}
	return r, nil
}

func enableFor(window definition.Filter, barTime float64) graph.Enable {
	switch {
	case window.From != nil && window.To != nil:
		return graph.Enable{Kind: graph.Between, From: *window.From * barTime, To: *window.To * barTime}
	case window.From != nil:
		return graph.Enable{Kind: graph.After, From: *window.From * barTime}
	default:
		return graph.Enable{}
	}
}

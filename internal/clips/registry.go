package clips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"automix/internal/logging"
	"automix/internal/media/graph"
	"automix/internal/services"
)

// Clip is a probed source clip.
type Clip struct {
	Name            string
	Location        string
	DurationSeconds float64
	SampleRate      int
}

// Prober measures audio sources.
type Prober interface {
	Probe(ctx context.Context, location string) (graph.Probe, error)
}

// Registry is an immutable set of probed clips.
type Registry struct {
	clips map[string]Clip
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	concurrency int
	logger      *slog.Logger
}

// WithConcurrency bounds the number of concurrent probes.
func WithConcurrency(n int) Option {
	return func(o *loadOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Load probes every clip in sources (name to location). The first probe
// failure aborts loading.
func Load(ctx context.Context, sources map[string]string, prober Prober, opts ...Option) (*Registry, error) {
	options := loadOptions{concurrency: 4, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}
	logger := logging.NewComponentLogger(options.logger, "clips")

	var mu sync.Mutex
	loaded := make(map[string]Clip, len(sources))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(options.concurrency)
	for _, name := range slices.Sorted(maps.Keys(sources)) {
		location := sources[name]
		group.Go(func() error {
			probe, err := prober.Probe(gctx, location)
			if err != nil {
				if errors.Is(err, services.ErrSourceUnreadable) {
					return fmt.Errorf("clip %q: %w", name, err)
				}
				return services.Wrap(services.ErrSourceUnreadable, "probe", "clip "+name, location, err)
			}
			logger.Info("loaded clip",
				logging.String("clip", name),
				logging.String("location", location),
				logging.Float64("duration_seconds", probe.DurationSeconds),
				logging.Int("sample_rate", probe.SampleRate),
			)
			mu.Lock()
			loaded[name] = Clip{
				Name:            name,
				Location:        location,
				DurationSeconds: probe.DurationSeconds,
				SampleRate:      probe.SampleRate,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &Registry{clips: loaded}, nil
}

// NewRegistry builds a registry from already measured clips.
func NewRegistry(clips ...Clip) *Registry {
	r := &Registry{clips: make(map[string]Clip, len(clips))}
	for _, clip := range clips {
		r.clips[clip.Name] = clip
	}
	return r
}

// Lookup returns the named clip. A missing clip yields an error marked
// services.ErrClipNotFound.
func (r *Registry) Lookup(name string) (Clip, error) {
	if r != nil {
		if clip, ok := r.clips[name]; ok {
			return clip, nil
		}
	}
	return Clip{}, services.Wrap(services.ErrClipNotFound, "compose", "lookup", fmt.Sprintf("clip %q", name), nil)
}

// Names returns the registered clip names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.clips))
}

// Len reports the number of registered clips.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.clips)
}

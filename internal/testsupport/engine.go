package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"automix/internal/media/graph"
	"automix/internal/services"
)

// Realization records one FakeEngine.Realize call.
type Realization struct {
	Root      graph.Node
	Output    string
	Overwrite bool
}

// FakeEngine is an in-memory Media Engine. Probes answer from Probes and
// realizations write a small placeholder file to the output location.
type FakeEngine struct {
	mu sync.Mutex

	// Probes maps a source location to its measured properties.
	Probes map[string]graph.Probe
	// FailOutputs makes Realize fail when writing to any of these locations.
	FailOutputs []string
	// FailKind makes Realize fail for outputs whose base name starts with
	// this prefix, such as "track-".
	FailKind string

	realized []Realization
	probed   []string
}

// NewFakeEngine constructs a FakeEngine with the provided probes.
func NewFakeEngine(probes map[string]graph.Probe) *FakeEngine {
	if probes == nil {
		probes = make(map[string]graph.Probe)
	}
	return &FakeEngine{Probes: probes}
}

// Probe implements the Media Engine probe.
func (f *FakeEngine) Probe(_ context.Context, location string) (graph.Probe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probed = append(f.probed, location)
	probe, ok := f.Probes[location]
	if !ok {
		return graph.Probe{}, services.Wrap(services.ErrSourceUnreadable, "probe", "fake", location, nil)
	}
	return probe, nil
}

// Realize records the call and writes a placeholder output.
func (f *FakeEngine) Realize(ctx context.Context, root graph.Node, output string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.realized = append(f.realized, Realization{Root: root, Output: output, Overwrite: overwrite})
	fail := slices.Contains(f.FailOutputs, output) ||
		(f.FailKind != "" && strings.HasPrefix(filepath.Base(output), f.FailKind))
	f.mu.Unlock()

	if fail {
		return services.Wrap(services.ErrRender, "render", "fake", output, fmt.Errorf("injected failure"))
	}
	if !overwrite {
		if _, err := os.Stat(output); err == nil {
			return services.Wrap(services.ErrRender, "render", "fake", output+" exists", nil)
		}
	}
	if err := os.WriteFile(output, []byte(graph.Describe(root)), 0o644); err != nil {
		return services.Wrap(services.ErrRender, "render", "fake", output, err)
	}
	return nil
}

// Realized returns a copy of every recorded realization in call order.
func (f *FakeEngine) Realized() []Realization {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.realized)
}

// Probed returns the probed locations in call order.
func (f *FakeEngine) Probed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.probed)
}

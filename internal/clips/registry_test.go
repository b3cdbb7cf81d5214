package clips_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"automix/internal/clips"
	"automix/internal/media/graph"
	"automix/internal/services"
)

type fakeProber struct {
	mu     sync.Mutex
	probes map[string]graph.Probe
	calls  map[string]int
}

func newFakeProber(probes map[string]graph.Probe) *fakeProber {
	return &fakeProber{probes: probes, calls: make(map[string]int)}
}

func (f *fakeProber) Probe(_ context.Context, location string) (graph.Probe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[location]++
	probe, ok := f.probes[location]
	if !ok {
		return graph.Probe{}, errors.New("no such file")
	}
	return probe, nil
}

func (f *fakeProber) count(location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[location]
}

func TestLoadProbesEveryClip(t *testing.T) {
	prober := newFakeProber(map[string]graph.Probe{
		"/clips/drums.wav": {DurationSeconds: 8.5, SampleRate: 44100},
		"/clips/bass.wav":  {DurationSeconds: 4, SampleRate: 48000},
	})
	registry, err := clips.Load(context.Background(), map[string]string{
		"drums": "/clips/drums.wav",
		"bass":  "/clips/bass.wav",
	}, prober, clips.WithConcurrency(2))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 clips, got %d", registry.Len())
	}
	if !slices.Equal(registry.Names(), []string{"bass", "drums"}) {
		t.Fatalf("unexpected names %v", registry.Names())
	}
	drums, err := registry.Lookup("drums")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if drums.DurationSeconds != 8.5 || drums.SampleRate != 44100 || drums.Location != "/clips/drums.wav" {
		t.Fatalf("unexpected clip %+v", drums)
	}
}

func TestLoadFailsOnUnreadableSource(t *testing.T) {
	prober := newFakeProber(map[string]graph.Probe{})
	_, err := clips.Load(context.Background(), map[string]string{"ghost": "/nope.wav"}, prober)
	if !errors.Is(err, services.ErrSourceUnreadable) {
		t.Fatalf("expected ErrSourceUnreadable, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("expected unreadable source to be fatal")
	}
}

func TestLookupMissingClipIsNotFatal(t *testing.T) {
	registry := clips.NewRegistry(clips.Clip{Name: "drums"})
	_, err := registry.Lookup("pads")
	if !errors.Is(err, services.ErrClipNotFound) {
		t.Fatalf("expected ErrClipNotFound, got %v", err)
	}
	if services.IsFatal(err) {
		t.Fatal("missing clip must not be fatal")
	}
}

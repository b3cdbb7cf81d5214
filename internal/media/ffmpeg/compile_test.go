package ffmpeg_test

import (
	"context"
	"slices"
	"testing"

	"automix/internal/clips"
	"automix/internal/compose"
	"automix/internal/definition"
	"automix/internal/filters"
	"automix/internal/logging"
	"automix/internal/media/ffmpeg"
	"automix/internal/media/graph"
)

func TestCompileClipChain(t *testing.T) {
	root := graph.Trim{
		In: graph.Loop{
			In: graph.Pad{
				In:       graph.Trim{In: graph.Input{Location: "a.wav"}, End: 4},
				Duration: 2,
			},
			Count: 1,
			Size:  264600,
		},
		End: 12,
	}
	inv, err := ffmpeg.Compile(root, "out.wav", false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	wantFilter := "[0:a:0]atrim=start=0:end=4,asetpts=PTS-STARTPTS[s0];" +
		"[s0]adelay=delays=2000:all=1[s1];" +
		"[s1]aloop=loop=1:size=264600[s2];" +
		"[s2]atrim=start=0:end=12,asetpts=PTS-STARTPTS[s3]"
	if inv.Filter != wantFilter {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", inv.Filter, wantFilter)
	}
	wantArgs := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-n", "-i", "a.wav", "-filter_complex", wantFilter, "-map", "[s3]", "out.wav"}
	if !slices.Equal(inv.Args, wantArgs) {
		t.Fatalf("args mismatch\n got: %v\nwant: %v", inv.Args, wantArgs)
	}
}

func TestCompileFitPadsAndCuts(t *testing.T) {
	inv, err := ffmpeg.Compile(graph.Fit{In: graph.Input{Location: "a.wav"}, Duration: 12}, "out.wav", true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "[0:a:0]apad=whole_dur=12,atrim=end=12,asetpts=PTS-STARTPTS[s0]"
	if inv.Filter != want {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", inv.Filter, want)
	}
}

// An 8.5s clip at 60 bpm fills 3 whole bars; its 12s unit plays twice to
// fill a 6 bar part of exactly 24s.
func TestCompileComposedPartFillsWholeBars(t *testing.T) {
	catalog, err := filters.NewCatalog(nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	registry := clips.NewRegistry(clips.Clip{Name: "pad", Location: "/clips/pad.wav", DurationSeconds: 8.5, SampleRate: 44100})
	composer := compose.NewComposer(60, catalog, registry, logging.NewNop())
	part := definition.Part{Clips: []definition.ClipUsage{{Name: "pad"}}}

	_, root, err := composer.Compose(context.Background(), "intro", part, 6)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	inv, err := ffmpeg.Compile(root, "part.wav", true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "[0:a:0]apad=whole_dur=12,atrim=end=12,asetpts=PTS-STARTPTS[s0];" +
		"[s0]aloop=loop=1:size=529200[s1];" +
		"[s1]apad=whole_dur=24,atrim=end=24,asetpts=PTS-STARTPTS[s2];" +
		"[s2]amix=inputs=1:weights='1':normalize=0[s3]"
	if inv.Filter != want {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", inv.Filter, want)
	}
}

func TestCompileWeightedMixWithEnabledFilter(t *testing.T) {
	root := graph.WeightedMix{
		Inputs: []graph.Node{
			graph.Input{Location: "a.wav"},
			graph.Filter{
				In:     graph.Input{Location: "b.wav"},
				Name:   "lowpass",
				Args:   []graph.Arg{graph.FloatArg("f", 800)},
				Enable: graph.Enable{Kind: graph.Between, From: 2, To: 6},
			},
		},
		Weights: []float64{1, 3},
	}
	inv, err := ffmpeg.Compile(root, "part.wav", true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "[1:a:0]lowpass=f=800:enable='between(t,2,6)'[s0];[0:a:0][s0]amix=inputs=2:weights='1 3':normalize=0[s1]"
	if inv.Filter != want {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", inv.Filter, want)
	}
	if !slices.Equal(inv.Inputs, []string{"a.wav", "b.wav"}) {
		t.Fatalf("unexpected inputs %v", inv.Inputs)
	}
	if !slices.Contains(inv.Args, "-y") || slices.Contains(inv.Args, "-n") {
		t.Fatalf("expected overwrite flag, got %v", inv.Args)
	}
}

func TestCompileConcatWithTempoPitch(t *testing.T) {
	root := graph.TempoPitch{
		In:    graph.Concat{Inputs: []graph.Node{graph.Input{Location: "t1.wav"}, graph.Input{Location: "t2.wav"}}},
		Tempo: 1.1,
		Pitch: 1,
	}
	inv, err := ffmpeg.Compile(root, "mix.wav", true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "[0:a:0][1:a:0]concat=n=2:v=0:a=1[s0];[s0]rubberband=tempo=1.1:pitch=1[s1]"
	if inv.Filter != want {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", inv.Filter, want)
	}
}

func TestCompileLeaves(t *testing.T) {
	inv, err := ffmpeg.Compile(graph.Input{Location: "a.wav"}, "copy.wav", true)
	if err != nil {
		t.Fatalf("Compile input: %v", err)
	}
	if inv.Filter != "[0:a:0]anull[s0]" {
		t.Fatalf("unexpected passthrough filter %q", inv.Filter)
	}

	inv, err = ffmpeg.Compile(graph.Silence{Duration: 8}, "silence.wav", true)
	if err != nil {
		t.Fatalf("Compile silence: %v", err)
	}
	if inv.Filter != "anullsrc=r=44100:cl=stereo,atrim=end=8[s0]" {
		t.Fatalf("unexpected silence filter %q", inv.Filter)
	}
	if len(inv.Inputs) != 0 {
		t.Fatalf("expected no inputs, got %v", inv.Inputs)
	}
}

func TestCompileRejectsMalformedGraphs(t *testing.T) {
	tests := []struct {
		name string
		root graph.Node
	}{
		{"nil", nil},
		{"weights", graph.WeightedMix{Inputs: []graph.Node{graph.Input{Location: "a"}}, Weights: []float64{1, 2}}},
		{"empty concat", graph.Concat{}},
		{"unnamed filter", graph.Filter{In: graph.Input{Location: "a"}}},
		{"empty input", graph.Trim{In: graph.Input{}, End: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ffmpeg.Compile(tt.root, "out.wav", false); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

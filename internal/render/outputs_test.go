package render_test

import (
	"errors"
	"path/filepath"
	"testing"

	"automix/internal/definition"
	"automix/internal/render"
	"automix/internal/services"
)

func TestOutputNameSanitizes(t *testing.T) {
	got := render.OutputName("my/set", "club:edit", "flac")
	if got != "my-set (club-edit).flac" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestResolveOutputsDefaultDirectory(t *testing.T) {
	dir := t.TempDir()
	outputs, err := render.ResolveOutputs(demoDefinition(), dir, "", "wav")
	if err != nil {
		t.Fatalf("ResolveOutputs: %v", err)
	}
	if outputs["main"] != filepath.Join(dir, "demo (main).wav") {
		t.Fatalf("unexpected main output %s", outputs["main"])
	}
	if len(outputs) != 2 {
		t.Fatalf("expected two outputs, got %v", outputs)
	}
}

func TestResolveOutputsExplicitDirectory(t *testing.T) {
	target := t.TempDir()
	outputs, err := render.ResolveOutputs(demoDefinition(), "/unused", target, "mp3")
	if err != nil {
		t.Fatalf("ResolveOutputs: %v", err)
	}
	if outputs["fast"] != filepath.Join(target, "demo (fast).mp3") {
		t.Fatalf("unexpected fast output %s", outputs["fast"])
	}
}

func TestResolveOutputsExplicitFileRequiresSingleMix(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.wav")
	if _, err := render.ResolveOutputs(demoDefinition(), "", file, "wav"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	def := demoDefinition()
	def.Mixes = map[string]definition.Mix{"main": def.Mixes["main"]}
	outputs, err := render.ResolveOutputs(def, "", file, "wav")
	if err != nil {
		t.Fatalf("ResolveOutputs: %v", err)
	}
	if outputs["main"] != file {
		t.Fatalf("unexpected output %s", outputs["main"])
	}
}

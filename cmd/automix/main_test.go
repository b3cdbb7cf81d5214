package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"automix/internal/config"
	"automix/internal/media/graph"
	"automix/internal/preflight"
	"automix/internal/render"
	"automix/internal/testsupport"
)

const testDefinition = `
name: demo
bpm: 60
bars: {{ .bars | default "6" }}
parts:
  intro:
    clips:
      - name: drums
      - name: ghost
mixes:
  main:
    segments:
      - parts: [{name: intro}]
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	projectDir string
	engine     *testsupport.FakeEngine
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	projectDir := filepath.Join(base, "project")
	testsupport.WriteDefinition(t, projectDir, testDefinition)
	testsupport.WriteFile(t, filepath.Join(projectDir, "clips", "drums.wav"), 64)
	t.Chdir(projectDir)

	drums, err := filepath.Abs(filepath.Join("clips", "drums.wav"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	engine := testsupport.NewFakeEngine(map[string]graph.Probe{
		drums: {DurationSeconds: 8.5, SampleRate: 44100},
	})
	previous := newMediaEngine
	newMediaEngine = func(*config.Config, *slog.Logger) render.Engine { return engine }
	t.Cleanup(func() { newMediaEngine = previous })

	minFree := preflight.MinFreeBytes
	preflight.MinFreeBytes = 1
	t.Cleanup(func() { preflight.MinFreeBytes = minFree })

	return &cliTestEnv{cfg: cfg, configPath: configPath, projectDir: projectDir, engine: engine}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRenderCommandWritesMix(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"render"}, env.configPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := filepath.Join(env.cfg.Paths.OutputDir, "demo (main).wav")
	requireContains(t, out, "Wrote "+want)
	requireContains(t, out, "Rendered 1 mix")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected output: %v", err)
	}
	if got := len(env.engine.Realized()); got != 3 {
		t.Fatalf("expected part, track and mix realizations, got %d", got)
	}
}

func TestRenderCommandRequiresYesToOverwrite(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"render"}, env.configPath); err != nil {
		t.Fatalf("first render: %v", err)
	}
	_, _, err := runCLI(t, []string{"render"}, env.configPath)
	if err == nil {
		t.Fatal("expected second render to refuse overwriting")
	}
	requireContains(t, err.Error(), "--yes")

	if _, _, err := runCLI(t, []string{"render", "--yes"}, env.configPath); err != nil {
		t.Fatalf("render --yes: %v", err)
	}
}

func TestRenderCommandExplicitOutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "set.wav")

	if _, _, err := runCLI(t, []string{"render", "-o", target}, env.configPath); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected output at %s: %v", target, err)
	}
}

func TestRenderCommandAppliesAliasAndData(t *testing.T) {
	env := setupCLITestEnv(t)
	kick := filepath.Join(env.projectDir, "samples", "kick-loop.wav")
	testsupport.WriteFile(t, kick, 64)
	env.engine.Probes[kick] = graph.Probe{DurationSeconds: 4, SampleRate: 48000}

	out, _, err := runCLI(t, []string{"plan", "--clip", kick, "--alias", "ghost", "--data", "bars=4"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	// Only the explicit clip is loaded, so drums is missing.
	requireContains(t, out, "drums (missing)")
	requireContains(t, out, "ghost")
	if strings.Contains(out, "ghost (missing)") {
		t.Fatalf("expected aliased clip to resolve: %s", out)
	}
}

func TestPlanCommandPrintsArithmetic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "demo: 60 bpm, bar 4s")
	requireContains(t, out, "intro")
	requireContains(t, out, "ghost (missing)")
	requireContains(t, out, "24s")
	if len(env.engine.Realized()) != 0 {
		t.Fatal("plan must not render")
	}
}

func TestRenderCommandRejectsBadData(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"render", "--data", "novalue"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for malformed --data")
	}
	requireContains(t, err.Error(), "key=value")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
}

func TestLevelOverride(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, ""},
		{1, "info"},
		{2, "debug"},
		{3, "debug"},
	}
	for _, tt := range tests {
		count := tt.count
		ctx := newCommandContext(nil, &count)
		if got := ctx.levelOverride(); got != tt.want {
			t.Fatalf("levelOverride(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestCheckCommandReportsMissingFilters(t *testing.T) {
	env := setupCLITestEnv(t)

	// The stub ffmpeg lists no filters.
	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without ffmpeg filters")
	}
	requireContains(t, out, "Dependencies\n")
	requireContains(t, out, "[MISSING]")
	requireContains(t, out, "FFprobe:")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "not compiled into ffmpeg")
	requireContains(t, out, "Work directory:")
	requireContains(t, err.Error(), "readiness check")
}

package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"automix/internal/config"
	"automix/internal/deps"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass with a 1 byte minimum, got: %s", result.Detail)
	}
	if result := CheckFreeSpace("space", dir, ^uint64(0)); result.Passed {
		t.Fatal("expected failure with an unreachable minimum")
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 1); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckProbeCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "probe.db")
	result := CheckProbeCache(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected probe cache to open, got: %s", result.Detail)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.ProbeCache.Enabled = false

	results := RunAll(context.Background(), &cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	// work access, work space, output access
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %v", names)
	}
	for _, r := range results {
		if r.Name == "Work directory space" {
			continue
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_MissingWorkDirSkipsSpaceCheck(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.OutputDir = ""
	cfg.ProbeCache.Enabled = true
	cfg.ProbeCache.Path = filepath.Join(t.TempDir(), "probe.db")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected work and probe cache results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Work directory" {
		t.Fatalf("unexpected failures %#v", failed)
	}
}

func TestCheckSystemDepsSkipsFiltersWithoutFFmpeg(t *testing.T) {
	cfg := config.Default()
	cfg.Media.FFmpegBinary = "clearly-not-present-ffmpeg"
	cfg.Media.FFprobeBinary = "clearly-not-present-ffprobe"

	called := false
	run := func(context.Context, string, ...string) ([]byte, error) {
		called = true
		return nil, nil
	}
	statuses := CheckSystemDeps(context.Background(), &cfg, deps.OutputFunc(run))
	if len(statuses) != 2 {
		t.Fatalf("expected binary statuses only, got %d", len(statuses))
	}
	if called {
		t.Fatal("filter listing should not run without ffmpeg")
	}
}

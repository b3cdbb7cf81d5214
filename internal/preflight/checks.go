package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"automix/internal/clips"
	"automix/internal/config"
	"automix/internal/deps"
)

// MinFreeBytes is the free space below which the work directory check fails.
// Uncompressed intermediates of long mixes reach hundreds of megabytes.
var MinFreeBytes uint64 = 512 * humanize.MiByte

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least min bytes
// available to unprivileged users.
func CheckFreeSpace(name, path string, min uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < min {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, %s required", humanize.Bytes(free), humanize.Bytes(min))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.Bytes(free))}
}

// CheckProbeCache verifies the probe cache database opens and its schema is current.
func CheckProbeCache(ctx context.Context, path string) Result {
	const name = "Probe cache"
	cache, err := clips.OpenProbeCache(ctx, path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer cache.Close()
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the Media Engine binaries and, when ffmpeg is
// present, the filters rendered graphs use.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, run deps.OutputFunc) []deps.Status {
	statuses := deps.CheckBinaries(deps.MediaRequirements(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary))
	if len(statuses) > 0 && statuses[0].Available {
		statuses = append(statuses, deps.CheckFFmpegFilters(ctx, statuses[0].Command, run)...)
	}
	return statuses
}

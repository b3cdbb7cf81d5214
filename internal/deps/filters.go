package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"
)

// RequiredFilters are the ffmpeg filters rendered graphs use. rubberband is
// only needed when a mix or filter changes tempo or pitch.
var RequiredFilters = []string{
	"adelay", "afade", "aloop", "amix", "anullsrc", "asetpts", "atrim",
	"bandpass", "concat", "highpass", "lowpass", "volume",
}

// OptionalFilters are needed only by some definitions.
var OptionalFilters = []string{"rubberband"}

// OutputFunc runs a command and returns its standard output.
type OutputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CheckFFmpegFilters asks ffmpeg for its filter list and reports one status per
// required and optional filter. A nil run uses exec.
func CheckFFmpegFilters(ctx context.Context, ffmpegBinary string, run OutputFunc) []Status {
	if run == nil {
		run = defaultOutput
	}
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := run(checkCtx, ffmpegBinary, "-hide_banner", "-filters")
	var available []string
	if err == nil {
		available = ParseFilterList(out)
	}

	statuses := make([]Status, 0, len(RequiredFilters)+len(OptionalFilters))
	add := func(name string, optional bool) {
		status := Status{
			Name:        name,
			Command:     ffmpegBinary,
			Description: "ffmpeg filter",
			Optional:    optional,
		}
		switch {
		case err != nil:
			status.Detail = fmt.Sprintf("list filters: %v", err)
		case slices.Contains(available, name):
			status.Available = true
		default:
			status.Detail = fmt.Sprintf("filter %q not compiled into ffmpeg", name)
		}
		statuses = append(statuses, status)
	}
	for _, name := range RequiredFilters {
		add(name, false)
	}
	for _, name := range OptionalFilters {
		add(name, true)
	}
	return statuses
}

// ParseFilterList extracts filter names from `ffmpeg -filters` output. Entries
// look like " T.. afade             A->A       Fade in/out input audio.".
func ParseFilterList(out []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		names = append(names, fields[1])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

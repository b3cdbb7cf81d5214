package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"automix/internal/clips"
	"automix/internal/config"
	"automix/internal/definition"
	"automix/internal/logging"
)

const (
	defaultDefinitionFile = "automix.yml"
	defaultClipDir        = "clips"
)

// definitionInputs are the flags shared by commands that load a definition.
type definitionInputs struct {
	clips   []string
	aliases []string
	data    []string
}

func (in *definitionInputs) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&in.clips, "clip", "c", []string{defaultClipDir}, "Clip file or directory of clips (repeatable)")
	cmd.Flags().StringArrayVarP(&in.aliases, "alias", "a", nil, "Name for the clip file at the same position (repeatable)")
	cmd.Flags().StringArrayVarP(&in.data, "data", "d", nil, "Template data as key=value (repeatable)")
}

// load reads the definition named by args (default automix.yml), merges clips
// from --clip, and validates the result.
func (in *definitionInputs) load(cmd *cobra.Command, args []string) (*definition.Definition, error) {
	path := defaultDefinitionFile
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		path = strings.TrimSpace(args[0])
	}

	data, err := definition.ParseData(in.data)
	if err != nil {
		return nil, err
	}
	def, err := definition.Load(path, data)
	if err != nil {
		return nil, err
	}

	paths := in.clips
	if !cmd.Flags().Changed("clip") {
		// The default clip directory is optional.
		if _, err := os.Stat(defaultClipDir); errors.Is(err, os.ErrNotExist) {
			paths = nil
		}
	}
	discovered, err := definition.DiscoverClips(paths, in.aliases)
	if err != nil {
		return nil, err
	}
	def.AddClips(discovered)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// cachedProber returns the engine's prober, wrapped with the probe cache when it is
// enabled. The returned close function is always safe to call.
func cachedProber(ctx context.Context, cfg *config.Config, next clips.Prober, logger *slog.Logger) (clips.Prober, func()) {
	if !cfg.ProbeCache.Enabled {
		return next, func() {}
	}
	cache, err := clips.OpenProbeCache(ctx, cfg.ProbeCache.Path)
	if err != nil {
		logging.WarnWithContext(logger, "probe cache unavailable", "probecache_open_failed",
			logging.String("path", cfg.ProbeCache.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "every clip is probed with ffprobe"),
		)
		return next, func() {}
	}
	return clips.NewCachedProber(next, cache, logger), func() {
		if err := cache.Close(); err != nil {
			logger.Debug("close probe cache", logging.Error(err))
		}
	}
}

func definitionArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one definition file, got %d", len(args))
	}
	return nil
}

package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"automix/internal/config"
	"automix/internal/logging"
	"automix/internal/media/ffmpeg"
	"automix/internal/render"
)

// newMediaEngine builds the Media Engine used by render and plan. Tests
// replace it with a fake.
var newMediaEngine = func(cfg *config.Config, logger *slog.Logger) render.Engine {
	return ffmpeg.New(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, logger)
}

type commandContext struct {
	configFlag *string
	verbosity  *int

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbosity *int) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbosity:  verbosity,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, c.levelOverride())
	})
	return c.logger, c.loggerErr
}

// levelOverride maps -v to info and -vv (or more) to debug.
func (c *commandContext) levelOverride() string {
	if c.verbosity == nil {
		return ""
	}
	switch {
	case *c.verbosity >= 2:
		return "debug"
	case *c.verbosity == 1:
		return "info"
	default:
		return ""
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

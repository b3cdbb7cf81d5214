package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMedia()
	if err := c.normalizeProbeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("AUTOMIX_WORK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = Default().Paths.WorkDir
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMedia() {
	if value, ok := os.LookupEnv("AUTOMIX_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("AUTOMIX_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = value
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.OutputFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Media.OutputFormat), "."))
	if c.Media.OutputFormat == "" {
		c.Media.OutputFormat = defaultOutputFormat
	}
}

func (c *Config) normalizeProbeCache() error {
	if strings.TrimSpace(c.ProbeCache.Path) == "" {
		c.ProbeCache.Path = Default().ProbeCache.Path
	}
	var err error
	if c.ProbeCache.Path, err = expandPath(c.ProbeCache.Path); err != nil {
		return fmt.Errorf("probe_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

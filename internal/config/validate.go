package config

import (
	"errors"
	"fmt"
)

var supportedOutputFormats = map[string]struct{}{
	"wav":  {},
	"flac": {},
	"mp3":  {},
	"aif":  {},
	"aiff": {},
	"ogg":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMedia() error {
	if _, ok := supportedOutputFormats[c.Media.OutputFormat]; !ok {
		return fmt.Errorf("media.output_format %q is not supported (use wav, flac, mp3, aif, aiff, or ogg)", c.Media.OutputFormat)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Concurrency < 0 {
		return errors.New("render.concurrency must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

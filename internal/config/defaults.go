package config

import "path/filepath"

const (
	defaultConfigPath    = "~/.config/automix/config.toml"
	defaultOutputDir     = "."
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultOutputFormat  = "wav"
	defaultLogFormat     = "console"
	defaultLogLevel      = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	cacheDir := defaultCacheDir()
	return Config{
		Paths: Paths{
			WorkDir:   filepath.Join(cacheDir, "work"),
			OutputDir: defaultOutputDir,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			OutputFormat:  defaultOutputFormat,
		},
		ProbeCache: ProbeCache{
			Enabled: true,
			Path:    filepath.Join(cacheDir, "probe.db"),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

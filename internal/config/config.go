// Package config holds the daemon configuration, assembled from environment
// variables with logged defaults. Precedence: CLI flags > ENV > defaults.
package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoChannels indicates that the watch list is empty.
	ErrNoChannels = errors.New("no channels configured")
)

// Config is the process-wide configuration. The watch list and all settings
// are fixed for the lifetime of the process.
type Config struct {
	// Channels is the ordered watch list, as given on the command line.
	Channels []string

	// PollInterval is the supervisor tick interval.
	PollInterval time.Duration

	// OutputDir is where capture files are written.
	OutputDir string

	// Remux enables post-processing of completed captures to MKV.
	Remux bool

	// Quality is the stream quality selection passed to the capture tool.
	Quality string

	// External tool paths. Resolved via $PATH when left as bare names.
	StreamlinkPath string
	FFmpegPath     string
	FFprobePath    string

	// MetricsAddr is the optional listen address for the metrics/health
	// endpoint. Empty disables the listener.
	MetricsAddr string

	LogLevel string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		PollInterval:   ParseDuration("TTVREC_POLL_INTERVAL", 60*time.Second),
		OutputDir:      ParseString("TTVREC_OUTPUT_DIR", "recordings"),
		Remux:          ParseBool("TTVREC_REMUX", false),
		Quality:        ParseString("TTVREC_QUALITY", "best"),
		StreamlinkPath: ParseString("TTVREC_STREAMLINK", "streamlink"),
		FFmpegPath:     ParseString("TTVREC_FFMPEG", "ffmpeg"),
		FFprobePath:    ParseString("TTVREC_FFPROBE", "ffprobe"),
		MetricsAddr:    ParseString("TTVREC_METRICS_ADDR", ""),
		LogLevel:       ParseString("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration for fatal inconsistencies.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	seen := make(map[string]struct{}, len(c.Channels))
	for _, ch := range c.Channels {
		if ch == "" {
			return fmt.Errorf("empty channel name in watch list")
		}
		if _, dup := seen[ch]; dup {
			return fmt.Errorf("duplicate channel %q in watch list", ch)
		}
		seen[ch] = struct{}{}
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

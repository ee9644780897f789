package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const appName = "polaris"

// Output and log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Log    LogConfig    `koanf:"log"`
	Scan   ScanConfig   `koanf:"scan"`
	Output OutputConfig `koanf:"output"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
}

// ScanConfig holds directory scan configuration.
type ScanConfig struct {
	Workers        int      `koanf:"workers"`         // concurrent reads, 0 means one per CPU
	FollowSymlinks bool     `koanf:"follow_symlinks"` // descend into symlinked directories
	Exclude        []string `koanf:"exclude"`         // directory names to skip
}

// OutputConfig holds CLI output configuration.
type OutputConfig struct {
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	Color  *bool  `koanf:"color"`  // colorize text output (default: true)
}

// Load reads configuration. An explicit path is loaded alone and must exist;
// otherwise the user config and ./config.toml are loaded when present, the
// latter overriding the former.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	if explicit != "" {
		if err := k.Load(file.Provider(expandPath(explicit)), toml.Parser()); err != nil {
			return nil, err
		}
	} else {
		for _, path := range getConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, name := range cfg.Scan.Exclude {
		cfg.Scan.Exclude[i] = strings.TrimSpace(name)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/polaris/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LogLevel returns the configured log level, or info when unset or invalid.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// LogFormatter returns the formatter matching log.format.
func (c *Config) LogFormatter() logrus.Formatter {
	if strings.EqualFold(c.Log.Format, FormatJSON) {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{DisableTimestamp: true}
}

// GetScanConfig returns the scan configuration with defaults applied.
func (c *Config) GetScanConfig() ScanConfig {
	cfg := c.Scan

	if cfg.Workers < 0 {
		cfg.Workers = 0
	}

	exclude := make([]string, 0, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		if name != "" {
			exclude = append(exclude, name)
		}
	}
	cfg.Exclude = exclude

	return cfg
}

// OutputFormat returns "json" or "text".
func (c *Config) OutputFormat() string {
	if strings.EqualFold(c.Output.Format, FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// ColorEnabled reports whether text output is colorized (default: true).
func (c *Config) ColorEnabled() bool {
	return c.Output.Color == nil || *c.Output.Color
}

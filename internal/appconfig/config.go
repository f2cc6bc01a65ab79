// Package appconfig loads the livestyle configuration file.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version" json:"config_version"`
	Journal       JournalConfig `mapstructure:"journal" yaml:"journal" json:"journal"`
	Output        OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Log           LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// JournalConfig configures the SQLite event journal.
type JournalConfig struct {
	// Path of the journal database. Empty disables journaling for run.
	Path            string `mapstructure:"path" yaml:"path" json:"path"`
	CheckpointEvery int    `mapstructure:"checkpoint_every" yaml:"checkpoint_every" json:"checkpoint_every"`
}

// OutputConfig controls command output.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
}

// Output formats.
var Formats = []string{"text", "json"}

// Log levels accepted by log.level.
var Levels = []string{"trace", "debug", "info", "error"}

// EnvPrefix prefixes environment overrides: LIVESTYLE_JOURNAL_PATH sets
// journal.path.
const EnvPrefix = "LIVESTYLE"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Journal: JournalConfig{
			CheckpointEvery: 50,
		},
		Output: OutputConfig{Format: "text"},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/livestyle/config.yaml or its
// platform equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "livestyle", "config.yaml"), nil
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format %q must be one of %v", c.Output.Format, Formats)
	}
	if !slices.Contains(Levels, c.Log.Level) {
		return fmt.Errorf("log.level %q must be one of %v", c.Log.Level, Levels)
	}
	if c.Journal.CheckpointEvery < 0 {
		return fmt.Errorf("journal.checkpoint_every must not be negative")
	}
	return nil
}

// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/entrystack/internal/model"
)

const appName = "entrystack"

// Default configuration values.
const (
	DefaultOutputFormat  = "plain"
	DefaultWatchInterval = 500 * time.Millisecond
	DefaultShowLevel     = "normal"
	DefaultShowKind      = "override"
)

// OutputFormats lists the formats accepted by "status -o".
var OutputFormats = []string{"plain", "json", "yaml", "waybar"}

// Config represents the entrystack CLI configuration.
type Config struct {
	Output    OutputConfig    `toml:"output"`
	Watch     WatchConfig     `toml:"watch"`
	Show      ShowConfig      `toml:"show"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// OutputConfig holds default output options.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml
}

// WatchConfig holds settings for the live watch view.
type WatchConfig struct {
	Interval Duration `toml:"interval"`
	ShowHelp bool     `toml:"show_help"`
}

// ClipboardConfig holds clipboard settings for the watch view.
type ClipboardConfig struct {
	Command string `toml:"command"` // e.g. "wl-copy"; auto-detected when empty
}

// ShowConfig holds defaults for the show command.
type ShowConfig struct {
	Level      string   `toml:"level"`
	Precedence string   `toml:"precedence"`
	Priority   int      `toml:"priority"`
	Duration   Duration `toml:"duration"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Watch: WatchConfig{
			Interval: Duration(DefaultWatchInterval),
			ShowHelp: true,
		},
		Show: ShowConfig{
			Level:      DefaultShowLevel,
			Precedence: DefaultShowKind,
			Priority:   int(model.PriorityNormal),
			Duration:   Duration(2 * time.Second),
		},
	}
}

// configHome returns XDG_CONFIG_HOME, falling back to ~/.config.
func configHome() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return dir
}

// ConfigPath returns the path to the CLI config file.
func ConfigPath() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

// ThemesDir returns the directory searched for user themes.
func ThemesDir() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName, "themes")
}

// LayoutsDir returns the directory searched for user layout templates.
func LayoutsDir() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName, "layouts")
}

// SoundsDir returns the directory watched for user sound files.
func SoundsDir() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appName, "sounds")
}

// DataPath returns the entrystack data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// HistoryPath returns the path to the history journal.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q, must be one of: %v", c.Output.Format, OutputFormats)
	}
	if c.Watch.Interval.Duration() < 50*time.Millisecond {
		return fmt.Errorf("watch interval must be at least 50ms, got %s", c.Watch.Interval.Duration())
	}
	if _, err := c.ShowAttributes(); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}

// ShowAttributes returns the attributes the show command starts from.
func (c *Config) ShowAttributes() (model.Attributes, error) {
	m := UrgencyMapping{
		Level:      c.Show.Level,
		Precedence: c.Show.Precedence,
		Priority:   c.Show.Priority,
	}
	return m.Attributes(c.Show.Duration.Duration())
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

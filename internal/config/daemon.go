package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/entrystack/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "2s", "1m", "1h30m", or integer milliseconds.
// A value of "0" or 0 means the entry stays until dismissed.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '2s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for entrystackd.
// Loaded from ~/.config/entrystack/entrystackd.toml
type DaemonConfig struct {
	Surfaces SurfacesConfig `toml:"surfaces"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Urgency  UrgencyConfig  `toml:"urgency"`
	Layout   LayoutConfig   `toml:"layout"`
	Audio    AudioConfig    `toml:"audio"`
	Theme    ThemeConfig    `toml:"theme"`
	History  HistoryConfig  `toml:"history"`
	DBus     DBusConfig     `toml:"dbus"`
}

// SurfacesConfig holds one surface configuration per window level.
type SurfacesConfig struct {
	StatusBar SurfaceConfig `toml:"status_bar"`
	Alert     SurfaceConfig `toml:"alert"`
	Normal    SurfaceConfig `toml:"normal"`
}

// ForLevel returns the surface configuration for level.
func (s SurfacesConfig) ForLevel(level model.WindowLevel) SurfaceConfig {
	switch level {
	case model.LevelStatusBar:
		return s.StatusBar
	case model.LevelAlert:
		return s.Alert
	default:
		return s.Normal
	}
}

// SurfaceConfig describes where a level's overlay window lives.
type SurfaceConfig struct {
	Layer    string  `toml:"layer"`     // "background", "bottom", "top", "overlay"
	Position string  `toml:"position"`  // "top-right", "top-left", etc.
	OffsetX  int     `toml:"offset_x"`  // Pixels from screen edge
	OffsetY  int     `toml:"offset_y"`  // Pixels from screen edge
	Width    int     `toml:"width"`     // Entry width in pixels
	Gap      int     `toml:"gap"`       // Gap between stacked entries
	MaxStack int     `toml:"max_stack"` // Entries kept on screen before the oldest is replaced
	Opacity  float64 `toml:"opacity"`   // 0.0-1.0
	Template string  `toml:"template"`  // Layout template name
	Monitor  int     `toml:"monitor"`   // 1-based monitor index, 0 lets the compositor choose
}

// TimeoutConfig contains the display duration used per urgency when a
// notification does not specify one.
type TimeoutConfig struct {
	Low      Duration `toml:"low"`
	Normal   Duration `toml:"normal"`
	Critical Duration `toml:"critical"`
}

// UrgencyConfig maps freedesktop urgencies to entry attributes.
type UrgencyConfig struct {
	Low      UrgencyMapping `toml:"low"`
	Normal   UrgencyMapping `toml:"normal"`
	Critical UrgencyMapping `toml:"critical"`
}

// UrgencyMapping is the default placement for one urgency. Hints on the
// notification override it.
type UrgencyMapping struct {
	Level      string `toml:"level"`      // "status-bar", "alert", "normal"
	Precedence string `toml:"precedence"` // "override" or "enqueue"
	Priority   int    `toml:"priority"`   // 0-1000
}

// LayoutConfig contains geometry settings that are not per level.
type LayoutConfig struct {
	StatusBarHeight int `toml:"status_bar_height"` // Top inset reported when no surface exists
}

// AudioConfig contains feedback cue settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-feedback sound file paths.
type SoundConfig struct {
	Success string `toml:"success"`
	Warning string `toml:"warning"`
	Error   string `toml:"error"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// HistoryConfig controls the journal of finished entries.
type HistoryConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`        // Empty uses ~/.local/share/entrystack/history.jsonl
	MaxEntries int    `toml:"max_entries"` // Journal is trimmed to this many on startup, 0 keeps all
}

// JournalPath returns the configured journal path with ~ expanded.
func (h HistoryConfig) JournalPath() string {
	if h.Path == "" {
		return HistoryPath()
	}
	return expandPath(h.Path)
}

// DBusConfig controls which bus names the daemon claims.
type DBusConfig struct {
	Notifications bool `toml:"notifications"` // Own org.freedesktop.Notifications
	Control       bool `toml:"control"`       // Own the entrystack control name
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Position represents an overlay position on screen.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionTopCenter,
		PositionBottomLeft,
		PositionBottomRight,
		PositionBottomCenter,
	}
}

// Layer is a wlr-layer-shell layer name.
type Layer string

const (
	LayerBackground Layer = "background"
	LayerBottom     Layer = "bottom"
	LayerTop        Layer = "top"
	LayerOverlay    Layer = "overlay"
)

// ValidLayers returns all valid layer values.
func ValidLayers() []Layer {
	return []Layer{LayerBackground, LayerBottom, LayerTop, LayerOverlay}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Surfaces: SurfacesConfig{
			StatusBar: SurfaceConfig{
				Layer:    string(LayerOverlay),
				Position: string(PositionTopCenter),
				OffsetY:  0,
				Width:    480,
				Gap:      0,
				MaxStack: 1,
				Opacity:  1.0,
				Template: "banner",
			},
			Alert: SurfaceConfig{
				Layer:    string(LayerOverlay),
				Position: string(PositionTopCenter),
				OffsetY:  48,
				Width:    420,
				Gap:      5,
				MaxStack: 1,
				Opacity:  1.0,
				Template: "default",
			},
			Normal: SurfaceConfig{
				Layer:    string(LayerTop),
				Position: string(PositionTopRight),
				OffsetX:  10,
				OffsetY:  10,
				Width:    350,
				Gap:      5,
				MaxStack: 3,
				Opacity:  1.0,
				Template: "default",
			},
		},
		Timeouts: TimeoutConfig{
			Low:      Duration(2 * time.Second),
			Normal:   Duration(4 * time.Second),
			Critical: Duration(0),
		},
		Urgency: UrgencyConfig{
			Low: UrgencyMapping{
				Level:      model.LevelNormal.String(),
				Precedence: model.PrecedenceEnqueue.String(),
				Priority:   int(model.PriorityLow),
			},
			Normal: UrgencyMapping{
				Level:      model.LevelNormal.String(),
				Precedence: model.PrecedenceEnqueue.String(),
				Priority:   int(model.PriorityNormal),
			},
			Critical: UrgencyMapping{
				Level:      model.LevelAlert.String(),
				Precedence: model.PrecedenceOverride.String(),
				Priority:   int(model.PriorityHigh),
			},
		},
		Layout: LayoutConfig{
			StatusBarHeight: 32,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  80,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		DBus: DBusConfig{
			Notifications: true,
			Control:       true,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	dir := configHome()
	if dir == "" {
		return "", fmt.Errorf("unable to determine config directory")
	}
	return filepath.Join(dir, appName, "entrystackd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from the default path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig() (*DaemonConfig, error) {
	path, err := DaemonConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadDaemonConfigFrom(path)
}

// LoadDaemonConfigFrom loads and validates the daemon configuration at path.
func LoadDaemonConfigFrom(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveDaemonConfig writes cfg to path, or to the default path when path is empty.
func SaveDaemonConfig(cfg *DaemonConfig, path string) error {
	if path == "" {
		var err error
		if path, err = DaemonConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	for _, level := range model.WindowLevels {
		if err := c.Surfaces.ForLevel(level).validate(); err != nil {
			return fmt.Errorf("surfaces.%s: %w", strings.ReplaceAll(level.String(), "-", "_"), err)
		}
	}

	for name, m := range map[string]UrgencyMapping{
		"low":      c.Urgency.Low,
		"normal":   c.Urgency.Normal,
		"critical": c.Urgency.Critical,
	} {
		if _, err := m.Attributes(0); err != nil {
			return fmt.Errorf("urgency.%s: %w", name, err)
		}
	}

	for name, d := range map[string]Duration{
		"low":      c.Timeouts.Low,
		"normal":   c.Timeouts.Normal,
		"critical": c.Timeouts.Critical,
	} {
		if d < 0 {
			return fmt.Errorf("timeouts.%s cannot be negative", name)
		}
	}

	if c.Layout.StatusBarHeight < 0 {
		return fmt.Errorf("status_bar_height cannot be negative, got %d", c.Layout.StatusBarHeight)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries cannot be negative, got %d", c.History.MaxEntries)
	}

	return nil
}

func (s SurfaceConfig) validate() error {
	if !slices.Contains(ValidLayers(), Layer(s.Layer)) {
		return fmt.Errorf("invalid layer %q, must be one of: %v", s.Layer, ValidLayers())
	}
	if !slices.Contains(ValidPositions(), Position(s.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", s.Position, ValidPositions())
	}
	if s.Width < 100 || s.Width > 1000 {
		return fmt.Errorf("width must be between 100 and 1000, got %d", s.Width)
	}
	if s.MaxStack < 1 || s.MaxStack > 20 {
		return fmt.Errorf("max_stack must be between 1 and 20, got %d", s.MaxStack)
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %v", s.Opacity)
	}
	if s.Monitor < 0 {
		return fmt.Errorf("monitor cannot be negative, got %d", s.Monitor)
	}
	if s.Template == "" {
		return fmt.Errorf("template cannot be empty")
	}
	return nil
}

// Attributes converts the mapping into entry attributes with the given
// display duration.
func (m UrgencyMapping) Attributes(duration time.Duration) (model.Attributes, error) {
	level, err := model.ParseWindowLevel(m.Level)
	if err != nil {
		return model.Attributes{}, err
	}
	precedence, err := model.ParsePrecedence(m.Precedence, model.Priority(m.Priority), false)
	if err != nil {
		return model.Attributes{}, err
	}

	attrs := model.DefaultAttributes()
	attrs.WindowLevel = level
	attrs.Precedence = precedence
	attrs.DisplayDuration = duration
	if err := attrs.Validate(); err != nil {
		return model.Attributes{}, err
	}
	return attrs, nil
}

// AttributesForUrgency returns the default attributes for a freedesktop
// urgency, including its configured display duration.
func (c *DaemonConfig) AttributesForUrgency(urgency int) model.Attributes {
	var m UrgencyMapping
	switch urgency {
	case model.UrgencyLow:
		m = c.Urgency.Low
	case model.UrgencyCritical:
		m = c.Urgency.Critical
	default:
		m = c.Urgency.Normal
	}

	attrs, err := m.Attributes(c.TimeoutForUrgency(urgency))
	if err != nil {
		// Validate rejects bad mappings, so this only happens for hand-built configs.
		attrs = model.DefaultAttributes()
		attrs.DisplayDuration = c.TimeoutForUrgency(urgency)
	}
	if urgency == model.UrgencyCritical {
		attrs.Feedback = model.FeedbackError
	}
	return attrs
}

// TimeoutForUrgency returns the display duration for the given urgency.
func (c *DaemonConfig) TimeoutForUrgency(urgency int) time.Duration {
	switch urgency {
	case model.UrgencyLow:
		return c.Timeouts.Low.Duration()
	case model.UrgencyCritical:
		return c.Timeouts.Critical.Duration()
	default:
		return c.Timeouts.Normal.Duration()
	}
}

// SoundForFeedback returns the sound file path for the given feedback cue.
// Expands ~ to home directory.
func (c *DaemonConfig) SoundForFeedback(feedback model.Feedback) string {
	var path string
	switch feedback {
	case model.FeedbackSuccess:
		path = c.Audio.Sounds.Success
	case model.FeedbackWarning:
		path = c.Audio.Sounds.Warning
	case model.FeedbackError:
		path = c.Audio.Sounds.Error
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/model"
)

func TestDefaultDaemonConfig_Valid(t *testing.T) {
	cfg := DefaultDaemonConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "overlay", cfg.Surfaces.ForLevel(model.LevelAlert).Layer)
	assert.Equal(t, "top", cfg.Surfaces.ForLevel(model.LevelNormal).Layer)
	assert.Equal(t, 32, cfg.Layout.StatusBarHeight)
	assert.True(t, cfg.DBus.Notifications)
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "5s", want: 5 * time.Second},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "2500", want: 2500 * time.Millisecond},
		{in: "0", want: 0},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestLoadDaemonConfigFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entrystackd.toml")

	content := `
[surfaces.alert]
layer = "top"
position = "bottom-center"
width = 500
max_stack = 2

[timeouts]
normal = "6s"

[urgency.low]
level = "status-bar"
precedence = "override"
priority = 100

[audio]
volume = 40

[audio.sounds]
error = "~/sounds/error.wav"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadDaemonConfigFrom(path)
	require.NoError(t, err)

	alert := cfg.Surfaces.ForLevel(model.LevelAlert)
	assert.Equal(t, "top", alert.Layer)
	assert.Equal(t, "bottom-center", alert.Position)
	assert.Equal(t, 500, alert.Width)
	assert.Equal(t, 2, alert.MaxStack)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1.0, alert.Opacity)
	assert.Equal(t, "top-right", cfg.Surfaces.Normal.Position)

	assert.Equal(t, 6*time.Second, cfg.TimeoutForUrgency(model.UrgencyNormal))
	assert.Equal(t, 40, cfg.Audio.Volume)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds/error.wav"), cfg.SoundForFeedback(model.FeedbackError))
	assert.Empty(t, cfg.SoundForFeedback(model.FeedbackNone))

	attrs := cfg.AttributesForUrgency(model.UrgencyLow)
	assert.Equal(t, model.LevelStatusBar, attrs.WindowLevel)
	assert.Equal(t, model.Override(100, false), attrs.Precedence)
	assert.Equal(t, 2*time.Second, attrs.DisplayDuration)
}

func TestLoadDaemonConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadDaemonConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestDaemonConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DaemonConfig)
	}{
		{"layer", func(c *DaemonConfig) { c.Surfaces.Normal.Layer = "middle" }},
		{"position", func(c *DaemonConfig) { c.Surfaces.Alert.Position = "center" }},
		{"width", func(c *DaemonConfig) { c.Surfaces.StatusBar.Width = 10 }},
		{"max stack", func(c *DaemonConfig) { c.Surfaces.Normal.MaxStack = 0 }},
		{"opacity", func(c *DaemonConfig) { c.Surfaces.Normal.Opacity = 1.5 }},
		{"template", func(c *DaemonConfig) { c.Surfaces.Alert.Template = "" }},
		{"monitor", func(c *DaemonConfig) { c.Surfaces.Normal.Monitor = -1 }},
		{"urgency level", func(c *DaemonConfig) { c.Urgency.Critical.Level = "sky" }},
		{"urgency precedence", func(c *DaemonConfig) { c.Urgency.Low.Precedence = "maybe" }},
		{"urgency priority", func(c *DaemonConfig) { c.Urgency.Normal.Priority = -1 }},
		{"timeout", func(c *DaemonConfig) { c.Timeouts.Low = Duration(-time.Second) }},
		{"status bar height", func(c *DaemonConfig) { c.Layout.StatusBarHeight = -1 }},
		{"volume", func(c *DaemonConfig) { c.Audio.Volume = 101 }},
		{"color scheme", func(c *DaemonConfig) { c.Theme.ColorScheme = "sepia" }},
		{"history max entries", func(c *DaemonConfig) { c.History.MaxEntries = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAttributesForUrgency_Defaults(t *testing.T) {
	cfg := DefaultDaemonConfig()

	critical := cfg.AttributesForUrgency(model.UrgencyCritical)
	assert.Equal(t, model.LevelAlert, critical.WindowLevel)
	assert.False(t, critical.Precedence.IsEnqueue())
	assert.Equal(t, model.FeedbackError, critical.Feedback)
	assert.Zero(t, critical.DisplayDuration)

	// Unknown urgencies behave like normal.
	unknown := cfg.AttributesForUrgency(7)
	assert.Equal(t, cfg.AttributesForUrgency(model.UrgencyNormal), unknown)
	assert.Equal(t, model.Enqueue(model.PriorityNormal), unknown.Precedence)
}

func TestSaveDaemonConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entrystackd.toml")
	cfg := DefaultDaemonConfig()
	cfg.Surfaces.Normal.Gap = 12
	cfg.Timeouts.Normal = Duration(7 * time.Second)

	require.NoError(t, SaveDaemonConfig(cfg, path))

	loaded, err := LoadDaemonConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Surfaces.Normal.Gap)
	assert.Equal(t, 7*time.Second, loaded.Timeouts.Normal.Duration())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestHistoryConfig_JournalPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/data/entrystack/history.jsonl", HistoryConfig{}.JournalPath())
	assert.Equal(t, "/var/log/entries.jsonl", HistoryConfig{Path: "/var/log/entries.jsonl"}.JournalPath())
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func showDefaults(t *testing.T) model.Attributes {
	t.Helper()
	attrs, err := config.DefaultConfig().ShowAttributes()
	require.NoError(t, err)
	return attrs
}

func TestBuildShowOptions_Defaults(t *testing.T) {
	opts, err := buildShowOptions(showOptions{appName: "entrystack"}, changedSet(), showDefaults(t))
	require.NoError(t, err)

	assert.Equal(t, "normal", opts[dbus.OptionLevel].Value())
	assert.Equal(t, "override", opts[dbus.OptionPrecedence].Value())
	assert.Equal(t, int32(model.PriorityNormal), opts[dbus.OptionPriority].Value())
	assert.Equal(t, int32(2000), opts[dbus.OptionDurationMS].Value())
	assert.Equal(t, "entrystack", opts[dbus.OptionAppName].Value())
	assert.Equal(t, false, opts[dbus.OptionClaimPrimary].Value())
	assert.NotContains(t, opts, dbus.OptionName)
	assert.NotContains(t, opts, dbus.OptionIcon)
}

func TestBuildShowOptions_Flags(t *testing.T) {
	in := showOptions{
		name:         "sync",
		level:        "status-bar",
		precedence:   "enqueue",
		priority:     900,
		duration:     1500 * time.Millisecond,
		interaction:  "absorb",
		feedback:     "success",
		icon:         "emblem-synchronizing",
		claimPrimary: true,
	}
	opts, err := buildShowOptions(in,
		changedSet("name", "level", "precedence", "priority", "duration", "interaction", "feedback"),
		showDefaults(t))
	require.NoError(t, err)

	assert.Equal(t, "sync", opts[dbus.OptionName].Value())
	assert.Equal(t, "status-bar", opts[dbus.OptionLevel].Value())
	assert.Equal(t, "enqueue", opts[dbus.OptionPrecedence].Value())
	assert.Equal(t, int32(900), opts[dbus.OptionPriority].Value())
	assert.Equal(t, int32(1500), opts[dbus.OptionDurationMS].Value())
	assert.Equal(t, "absorb", opts[dbus.OptionInteraction].Value())
	assert.Equal(t, "success", opts[dbus.OptionFeedback].Value())
	assert.Equal(t, "emblem-synchronizing", opts[dbus.OptionIcon].Value())
	assert.Equal(t, true, opts[dbus.OptionClaimPrimary].Value())
}

func TestBuildShowOptions_DropEnqueuedOnlyForOverride(t *testing.T) {
	opts, err := buildShowOptions(showOptions{dropEnqueued: true}, changedSet("drop-enqueued"), showDefaults(t))
	require.NoError(t, err)
	assert.Equal(t, true, opts[dbus.OptionDropEnqueued].Value())

	opts, err = buildShowOptions(showOptions{dropEnqueued: true, precedence: "enqueue"},
		changedSet("drop-enqueued", "precedence"), showDefaults(t))
	require.NoError(t, err)
	assert.Equal(t, false, opts[dbus.OptionDropEnqueued].Value())
}

func TestBuildShowOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opts    showOptions
		changed []string
	}{
		{"level", showOptions{level: "basement"}, []string{"level"}},
		{"precedence", showOptions{precedence: "jump"}, []string{"precedence"}},
		{"priority", showOptions{priority: 1001}, []string{"priority"}},
		{"duration", showOptions{duration: -time.Second}, []string{"duration"}},
		{"interaction", showOptions{interaction: "teleport"}, []string{"interaction"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildShowOptions(tt.opts, changedSet(tt.changed...), showDefaults(t))
			assert.Error(t, err)
		})
	}
}

func TestResolveDescriptor(t *testing.T) {
	tests := []struct {
		kind     string
		name     string
		priority int
		want     presenter.Descriptor
		wantErr  bool
	}{
		{"", "", 500, presenter.Displayed(), false},
		{"", "sync", 500, presenter.Specific("sync"), false},
		{"specific", "", 500, presenter.Descriptor{}, true},
		{"priority", "", 250, presenter.PriorityAtMost(250), false},
		{"enqueued", "", 500, presenter.EnqueuedOnly(), false},
		{"all", "", 500, presenter.All(), false},
		{"some", "", 500, presenter.Descriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.name, func(t *testing.T) {
			got, err := resolveDescriptor(tt.kind, tt.name, tt.priority)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSwitch(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "off": false, "true": true, "0": false, "yes": true} {
		got, err := parseSwitch(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseSwitch("maybe")
	assert.Error(t, err)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "bundled (default)", sourceLabel(true, "", true))
	assert.Equal(t, "user override: /x/dark.css", sourceLabel(true, "/x/dark.css", false))
	assert.Equal(t, "/x/mine.css", sourceLabel(false, "/x/mine.css", false))
}

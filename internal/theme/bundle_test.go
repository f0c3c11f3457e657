package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundled(t *testing.T) {
	assert.Equal(t, []string{"default", "minimal"}, Bundled())
}

func TestIsBundled(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"default", true},
		{"minimal", true},
		{"nonexistent", false},
		{"", false},
		{"_levels", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBundled(tt.name))
		})
	}
}

func TestBundledFile(t *testing.T) {
	css, ok := bundledFile("_levels.css")
	require.True(t, ok)
	assert.Contains(t, css, ".status-bar-light")

	css, ok = bundledFile("../themes/_levels.css")
	require.True(t, ok, "only the base name is used")
	assert.NotEmpty(t, css)

	_, ok = bundledFile("_nonexistent.css")
	assert.False(t, ok)
}

func TestBundledThemes_StyleEveryLevel(t *testing.T) {
	required := []string{
		".entry",
		".entry-summary",
		".entry-body",
		".entry-appname",
		".entry-close",
		".level-alert",
		".level-status-bar",
		".status-bar-hidden",
		".feedback-error",
	}

	for _, name := range Bundled() {
		t.Run(name, func(t *testing.T) {
			theme, ok := loadBundled(name)
			require.True(t, ok)
			for _, class := range required {
				assert.Contains(t, theme.CSS, class)
			}
			assert.Equal(t, 1, strings.Count(theme.CSS, ".status-bar-hidden {"),
				"level rules included exactly once")
		})
	}
}

func TestBundledThemes_BalancedBraces(t *testing.T) {
	for _, name := range append(Bundled(), "_levels") {
		t.Run(name, func(t *testing.T) {
			css, ok := bundledFile(name + ".css")
			require.True(t, ok)
			assert.Equal(t, strings.Count(css, "{"), strings.Count(css, "}"))
			assert.NotContains(t, css, "{{")
		})
	}
}

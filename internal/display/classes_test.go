package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/model"
)

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Firefox", "firefox"},
		{"Visual Studio Code", "visual-studio-code"},
		{"org.gnome.Nautilus", "org-gnome-nautilus"},
		{"  --weird__name//", "weird-name"},
		{"日本", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeClassName(tt.in))
		})
	}
}

func TestEntryClasses(t *testing.T) {
	attrs := model.DefaultAttributes()
	attrs.WindowLevel = model.LevelAlert
	attrs.Precedence = model.Enqueue(model.PriorityHigh)
	attrs.ScreenInteraction = model.InteractionDismiss
	attrs.Feedback = model.FeedbackWarning
	entry := &model.Entry{
		ID:         "01TEST",
		Content:    model.Content{AppName: "Disk Monitor", Summary: "Low space", Body: "2% left"},
		Attributes: attrs,
	}

	classes := entryClasses(entry, "dark", 0.9)
	assert.Equal(t, []string{
		"entry", "dark", "level-alert", "precedence-enqueue",
		"interaction-dismiss", "feedback-warning", "translucent",
		"app-disk-monitor", "has-body",
	}, classes)
}

func TestEntryClasses_Minimal(t *testing.T) {
	entry := &model.Entry{Content: model.Content{Summary: "hi"}, Attributes: model.DefaultAttributes()}
	assert.Equal(t, []string{"entry", "light", "level-normal", "precedence-override", "interaction-forward"},
		entryClasses(entry, "light", 1.0))
}

func TestStatusBarClass(t *testing.T) {
	assert.Equal(t, "", statusBarClass(model.StatusBarIgnored))
	assert.Equal(t, "status-bar-light", statusBarClass(model.StatusBarLight))
	assert.Equal(t, "status-bar-hidden", statusBarClass(model.StatusBarHidden))
	for _, style := range []model.StatusBarStyle{model.StatusBarLight, model.StatusBarDark, model.StatusBarHidden} {
		assert.Contains(t, statusBarClasses, statusBarClass(style))
	}
}

func TestColorSchemeClass(t *testing.T) {
	dark := func() bool { return true }
	assert.Equal(t, "light", colorSchemeClass(config.ColorSchemeLight, dark))
	assert.Equal(t, "dark", colorSchemeClass(config.ColorSchemeDark, nil))
	assert.Equal(t, "dark", colorSchemeClass(config.ColorSchemeSystem, dark))
	assert.Equal(t, "light", colorSchemeClass(config.ColorSchemeSystem, nil))
}

func TestFeedbackIcon(t *testing.T) {
	assert.Empty(t, feedbackIcon(model.FeedbackNone))
	assert.NotEmpty(t, feedbackIcon(model.FeedbackError))
}

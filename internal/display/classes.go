package display

import (
	"strings"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/model"
)

// statusBarClasses are the window classes SetStatusBarStyle toggles.
var statusBarClasses = []string{"status-bar-light", "status-bar-dark", "status-bar-hidden"}

// statusBarClass returns the window class for style, or "" when the entry
// leaves the status bar alone.
func statusBarClass(style model.StatusBarStyle) string {
	switch style {
	case model.StatusBarLight, model.StatusBarDark, model.StatusBarHidden:
		return "status-bar-" + string(style)
	default:
		return ""
	}
}

// entryClasses returns the CSS classes of an entry widget. colorScheme is
// the resolved "light" or "dark" class.
func entryClasses(entry *model.Entry, colorScheme string, opacity float64) []string {
	attrs := entry.Attributes
	classes := []string{
		"entry",
		colorScheme,
		"level-" + entry.Level().String(),
		"precedence-" + attrs.Precedence.Kind.String(),
	}

	if attrs.ScreenInteraction != "" {
		classes = append(classes, "interaction-"+string(attrs.ScreenInteraction))
	}
	if attrs.Feedback != "" && attrs.Feedback != model.FeedbackNone {
		classes = append(classes, "feedback-"+string(attrs.Feedback))
	}
	if opacity < 1.0 {
		classes = append(classes, "translucent")
	}
	if entry.Content.AppName != "" {
		if app := sanitizeClassName(entry.Content.AppName); app != "" {
			classes = append(classes, "app-"+app)
		}
	}
	if entry.Content.Body != "" {
		classes = append(classes, "has-body")
	}
	if entry.Content.IconName != "" {
		classes = append(classes, "has-icon")
	}
	return classes
}

// colorSchemeClass resolves scheme to "light" or "dark", asking systemDark
// when the configuration follows the system.
func colorSchemeClass(scheme config.ColorScheme, systemDark func() bool) string {
	switch scheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if systemDark != nil && systemDark() {
			return "dark"
		}
		return "light"
	}
}

// sanitizeClassName converts a string to a valid CSS class name.
// Replaces spaces and special characters with hyphens, lowercases.
func sanitizeClassName(name string) string {
	var result strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			result.WriteRune(r)
			prevHyphen = false
		case r == '-' || r == '_' || r == ' ' || r == '.' || r == '/':
			if !prevHyphen && result.Len() > 0 {
				result.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(result.String(), "-")
}

// feedbackIcon returns the symbolic icon shown by the feedback element.
func feedbackIcon(feedback model.Feedback) string {
	switch feedback {
	case model.FeedbackSuccess:
		return "emblem-ok-symbolic"
	case model.FeedbackWarning:
		return "dialog-warning-symbolic"
	case model.FeedbackError:
		return "dialog-error-symbolic"
	default:
		return ""
	}
}

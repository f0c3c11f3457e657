package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// NoticeLevel indicates the severity of an internal notice.
type NoticeLevel int

const (
	// NoticeInfo is queued at the normal level.
	NoticeInfo NoticeLevel = iota
	// NoticeWarning overrides at the normal level.
	NoticeWarning
	// NoticeError overrides at the alert level.
	NoticeError
)

// noticeName prefixes the names of internal entries so they can be dismissed
// as a group.
const noticeName = "entrystackd"

// InternalNotifier shows entries about entrystackd's own events. It rate
// limits repeats of the same notice.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	handler func(content model.Content, attrs model.Attributes) error

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetHandler sets the function that displays a notice.
func (n *InternalNotifier) SetHandler(handler func(content model.Content, attrs model.Attributes) error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = handler
}

// SetEnabled enables or disables internal notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows a notice unless one with the same key was shown within the
// minimum interval.
func (n *InternalNotifier) Notify(key, summary, body string, level NoticeLevel) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	if n.handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notice skipped: no handler", "summary", summary)
		return
	}
	if lastTime, ok := n.lastNotifyTime[key]; ok && time.Since(lastTime) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notice rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = time.Now()
	handler := n.handler
	n.mu.Unlock()

	content := model.Content{AppName: noticeName, Summary: summary, Body: body}
	attrs := model.DefaultAttributes()
	attrs.Name = noticeName + "-" + key
	attrs.DisplayDuration = 5 * time.Second

	switch level {
	case NoticeInfo:
		content.IconName = "dialog-information"
		attrs.Precedence = model.Enqueue(model.PriorityLow)
	case NoticeWarning:
		content.IconName = "dialog-warning"
		attrs.Precedence = model.Override(model.PriorityHigh, false)
		attrs.Feedback = model.FeedbackWarning
	case NoticeError:
		content.IconName = "dialog-error"
		attrs.WindowLevel = model.LevelAlert
		attrs.Precedence = model.Override(model.PriorityMax, false)
		attrs.Feedback = model.FeedbackError
	}

	n.logger.Debug("showing internal notice", "key", key, "summary", summary, "level", level)
	if err := handler(content, attrs); err != nil {
		n.logger.Warn("failed to show internal notice", "key", key, "error", err)
	}
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"entrystackd configuration has been successfully reloaded.", NoticeInfo)
}

// NotifyConfigError reports a config file that failed validation.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NoticeError)
}

// NotifyThemeReloaded reports a reloaded theme.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme Reloaded",
		"Theme '"+themeName+"' has been reloaded.", NoticeInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme Error",
		"Failed to load theme: "+err.Error(), NoticeWarning)
}

// NotifyAudioError reports a feedback cue that failed to play.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio Error",
		"Failed to play feedback sound: "+err.Error(), NoticeWarning)
}

package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/entrystack/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps why an entry left the screen to the freedesktop reason.
func CloseReasonFor(reason model.DismissReason) CloseReason {
	switch reason {
	case model.DismissReasonExpired:
		return CloseReasonExpired
	case model.DismissReasonDismissed:
		return CloseReasonDismissed
	case model.DismissReasonClosed:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Hint keys understood on top of the freedesktop ones.
const (
	HintLevel        = "x-entrystack-level"
	HintPrecedence   = "x-entrystack-precedence"
	HintPriority     = "x-entrystack-priority"
	HintDropEnqueued = "x-entrystack-drop-enqueued"
	HintName         = "x-entrystack-name"
	HintClaim        = "x-entrystack-claim"
	HintStatusBar    = "x-entrystack-status-bar"
	HintInteraction  = "x-entrystack-interaction"
	HintFeedback     = "x-entrystack-feedback"
)

// DBusNotification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint from the notification.
// Returns model.UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return model.UrgencyNormal
}

// Category extracts the category hint from the notification.
// Returns empty string if not specified.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// DesktopEntry extracts the desktop-entry hint.
func (n *DBusNotification) DesktopEntry() string {
	return n.stringHint("desktop-entry")
}

// SuppressSound returns true if the suppress-sound hint is set.
func (n *DBusNotification) SuppressSound() bool {
	b, _ := n.boolHint("suppress-sound")
	return b
}

// EntryName returns the name used for named dismissal and lookups. It falls
// back to the dunst stack tag, and is empty when neither is set.
func (n *DBusNotification) EntryName() string {
	for _, key := range []string{HintName, "x-dunst-stack-tag", "stack-tag"} {
		if s := n.stringHint(key); s != "" {
			return s
		}
	}
	return ""
}

// ClaimPrimary reports whether the entry asked for input focus.
func (n *DBusNotification) ClaimPrimary() bool {
	b, _ := n.boolHint(HintClaim)
	return b
}

// Content returns what the entry shows.
func (n *DBusNotification) Content() model.Content {
	return model.Content{
		AppName:  n.AppName,
		Summary:  n.Summary,
		Body:     n.Body,
		IconName: n.AppIcon,
	}
}

// Attributes applies the notification's hints and expire timeout on top of
// base, which normally comes from the urgency mapping.
func (n *DBusNotification) Attributes(base model.Attributes) (model.Attributes, error) {
	attrs := base
	attrs.Name = n.EntryName()

	if s := n.stringHint(HintLevel); s != "" {
		level, err := model.ParseWindowLevel(s)
		if err != nil {
			return model.Attributes{}, err
		}
		attrs.WindowLevel = level
	}

	kind := attrs.Precedence.Kind.String()
	if s := n.stringHint(HintPrecedence); s != "" {
		kind = s
	}
	priority := attrs.Precedence.Priority
	if p, ok := n.intHint(HintPriority); ok {
		priority = model.Priority(p)
	}
	drop := attrs.Precedence.DropEnqueuedEntries
	if b, ok := n.boolHint(HintDropEnqueued); ok {
		drop = b
	}
	precedence, err := model.ParsePrecedence(kind, priority, drop)
	if err != nil {
		return model.Attributes{}, err
	}
	attrs.Precedence = precedence

	if s := n.stringHint(HintStatusBar); s != "" {
		attrs.StatusBar = model.StatusBarStyle(s)
	}
	if s := n.stringHint(HintInteraction); s != "" {
		attrs.ScreenInteraction = model.ScreenInteraction(s)
	}
	if s := n.stringHint(HintFeedback); s != "" {
		attrs.Feedback = model.Feedback(s)
	}
	if n.SuppressSound() {
		attrs.Feedback = model.FeedbackNone
	}

	// -1 keeps the configured default, 0 never expires.
	if n.ExpireTimeout >= 0 {
		attrs.DisplayDuration = time.Duration(n.ExpireTimeout) * time.Millisecond
	}

	if err := attrs.Validate(); err != nil {
		return model.Attributes{}, fmt.Errorf("notification %q: %w", n.Summary, err)
	}
	return attrs, nil
}

func (n *DBusNotification) stringHint(key string) string { return variantMap(n.Hints).str(key) }

func (n *DBusNotification) boolHint(key string) (bool, bool) { return variantMap(n.Hints).boolean(key) }

func (n *DBusNotification) intHint(key string) (int, bool) { return variantMap(n.Hints).integer(key) }

// variantMap reads typed values out of hint and option dictionaries.
type variantMap map[string]dbus.Variant

func (m variantMap) str(key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (m variantMap) boolean(key string) (bool, bool) {
	if v, ok := m[key]; ok {
		switch val := v.Value().(type) {
		case bool:
			return val, true
		case byte:
			return val != 0, true
		case int32:
			return val != 0, true
		}
	}
	return false, false
}

// integer accepts the integer widths notify-send and dunstify produce.
func (m variantMap) integer(key string) (int, bool) {
	if v, ok := m[key]; ok {
		switch val := v.Value().(type) {
		case int32:
			return int(val), true
		case uint32:
			return int(val), true
		case int64:
			return int(val), true
		case int:
			return val, true
		case byte:
			return int(val), true
		}
	}
	return 0, false
}

// ServerCapabilities lists the capabilities advertised by entrystackd.
var ServerCapabilities = []string{
	"body",        // Support body text
	"icon-static", // Support static icons
	"sound",       // Play feedback cues
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "entrystackd"
	Vendor      string // "entrystack"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "entrystackd",
		Vendor:      "entrystack",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}

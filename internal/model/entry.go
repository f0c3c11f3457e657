// Package model defines the core data structures for entrystack.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// WindowLevel identifies a display layer. Each level owns at most one
// overlay surface at a time.
type WindowLevel int

const (
	LevelStatusBar WindowLevel = iota
	LevelAlert
	LevelNormal
)

// WindowLevels lists every level in enumeration order.
var WindowLevels = []WindowLevel{LevelStatusBar, LevelAlert, LevelNormal}

// String returns the config/wire name of the level.
func (l WindowLevel) String() string {
	switch l {
	case LevelStatusBar:
		return "status-bar"
	case LevelAlert:
		return "alert"
	case LevelNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// StackRank returns the native stacking rank of the level's surface.
// Higher ranks stack above lower ones.
func (l WindowLevel) StackRank() int {
	switch l {
	case LevelStatusBar:
		return 1000
	case LevelAlert:
		return 2000
	default:
		return 0
	}
}

// Valid reports whether l is a known level.
func (l WindowLevel) Valid() bool {
	return l >= LevelStatusBar && l <= LevelNormal
}

// ParseWindowLevel parses a level name as produced by String.
func ParseWindowLevel(s string) (WindowLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "status-bar", "statusbar", "status_bar":
		return LevelStatusBar, nil
	case "alert":
		return LevelAlert, nil
	case "normal", "":
		return LevelNormal, nil
	default:
		return LevelNormal, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Priority orders competing entries. It is only ever compared.
type Priority int

// Named priority points.
const (
	PriorityMin    Priority = 0
	PriorityLow    Priority = 250
	PriorityNormal Priority = 500
	PriorityHigh   Priority = 750
	PriorityMax    Priority = 1000
)

// PrecedenceKind selects how an entry competes with what is on screen.
type PrecedenceKind int

const (
	// PrecedenceOverride always preempts the displayed entry.
	PrecedenceOverride PrecedenceKind = iota
	// PrecedenceEnqueue waits behind the displayed entry.
	PrecedenceEnqueue
)

// String returns the wire name of the kind.
func (k PrecedenceKind) String() string {
	if k == PrecedenceEnqueue {
		return "enqueue"
	}
	return "override"
}

// Precedence is the per-entry preemption policy.
type Precedence struct {
	Kind     PrecedenceKind
	Priority Priority
	// DropEnqueuedEntries clears the whole queue before an override is shown.
	// Ignored for enqueue.
	DropEnqueuedEntries bool
}

// Override returns an override policy.
func Override(priority Priority, dropEnqueuedEntries bool) Precedence {
	return Precedence{Kind: PrecedenceOverride, Priority: priority, DropEnqueuedEntries: dropEnqueuedEntries}
}

// Enqueue returns an enqueue policy.
func Enqueue(priority Priority) Precedence {
	return Precedence{Kind: PrecedenceEnqueue, Priority: priority}
}

// IsEnqueue reports whether the policy is Enqueue.
func (p Precedence) IsEnqueue() bool {
	return p.Kind == PrecedenceEnqueue
}

// String returns a compact description such as "override(500,drop)".
func (p Precedence) String() string {
	if p.Kind == PrecedenceOverride && p.DropEnqueuedEntries {
		return fmt.Sprintf("%s(%d,drop)", p.Kind, p.Priority)
	}
	return fmt.Sprintf("%s(%d)", p.Kind, p.Priority)
}

// ParsePrecedence builds a policy from its wire name.
func ParsePrecedence(kind string, priority Priority, dropEnqueued bool) (Precedence, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "override", "":
		return Override(priority, dropEnqueued), nil
	case "enqueue":
		return Enqueue(priority), nil
	default:
		return Precedence{}, fmt.Errorf("%w: %q", ErrInvalidPrecedence, kind)
	}
}

// StatusBarStyle is the status bar appearance requested while an entry shows.
type StatusBarStyle string

const (
	StatusBarIgnored StatusBarStyle = "ignored"
	StatusBarLight   StatusBarStyle = "light"
	StatusBarDark    StatusBarStyle = "dark"
	StatusBarHidden  StatusBarStyle = "hidden"
)

// ScreenInteraction decides what input outside the entry does while it shows.
type ScreenInteraction string

const (
	// InteractionForward passes input through to whatever is below.
	InteractionForward ScreenInteraction = "forward"
	// InteractionAbsorb swallows input.
	InteractionAbsorb ScreenInteraction = "absorb"
	// InteractionDismiss swallows input and dismisses the entry.
	InteractionDismiss ScreenInteraction = "dismiss"
)

// Feedback is the cue played when an entry is displayed.
type Feedback string

const (
	FeedbackNone    Feedback = "none"
	FeedbackSuccess Feedback = "success"
	FeedbackWarning Feedback = "warning"
	FeedbackError   Feedback = "error"
)

// Attributes describe how an entry is presented.
type Attributes struct {
	// Name is optional and not unique; lookups return the first match.
	Name              string
	WindowLevel       WindowLevel
	Precedence        Precedence
	DisplayDuration   time.Duration // zero keeps the entry until dismissed
	StatusBar         StatusBarStyle
	ScreenInteraction ScreenInteraction
	Feedback          Feedback
}

// DefaultAttributes returns attributes for a normal-level override entry.
func DefaultAttributes() Attributes {
	return Attributes{
		WindowLevel:       LevelNormal,
		Precedence:        Override(PriorityNormal, false),
		DisplayDuration:   2 * time.Second,
		StatusBar:         StatusBarIgnored,
		ScreenInteraction: InteractionForward,
		Feedback:          FeedbackNone,
	}
}

// Validation errors.
var (
	ErrInvalidLevel       = errors.New("invalid window level")
	ErrInvalidPrecedence  = errors.New("invalid precedence")
	ErrInvalidPriority    = errors.New("priority must be between 0 and 1000")
	ErrNegativeDuration   = errors.New("display duration cannot be negative")
	ErrInvalidInteraction = errors.New("invalid screen interaction")
)

// Validate checks the attributes for out-of-range values.
func (a Attributes) Validate() error {
	if !a.WindowLevel.Valid() {
		return ErrInvalidLevel
	}
	if a.Precedence.Kind != PrecedenceOverride && a.Precedence.Kind != PrecedenceEnqueue {
		return ErrInvalidPrecedence
	}
	if a.Precedence.Priority < PriorityMin || a.Precedence.Priority > PriorityMax {
		return ErrInvalidPriority
	}
	if a.DisplayDuration < 0 {
		return ErrNegativeDuration
	}
	switch a.ScreenInteraction {
	case "", InteractionForward, InteractionAbsorb, InteractionDismiss:
	default:
		return ErrInvalidInteraction
	}
	return nil
}

// AbsorbsInput reports whether the entry's surface should intercept input.
func (a Attributes) AbsorbsInput() bool {
	return a.ScreenInteraction == InteractionAbsorb || a.ScreenInteraction == InteractionDismiss
}

// Content is what an entry shows. The scheduler never looks inside it.
type Content struct {
	AppName  string `json:"app_name,omitempty"`
	Summary  string `json:"summary"`
	Body     string `json:"body,omitempty"`
	IconName string `json:"icon_name,omitempty"`
}

// Entry pairs content with its attributes. Treat it as immutable once created.
type Entry struct {
	ID         string
	Content    Content
	Attributes Attributes
	CreatedAt  time.Time
}

// NewEntry creates an entry with a generated ULID.
func NewEntry(content Content, attrs Attributes) (*Entry, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return &Entry{
		ID:         id.String(),
		Content:    content,
		Attributes: attrs,
		CreatedAt:  now,
	}, nil
}

// Name is shorthand for e.Attributes.Name.
func (e *Entry) Name() string {
	return e.Attributes.Name
}

// Level is shorthand for e.Attributes.WindowLevel.
func (e *Entry) Level() WindowLevel {
	return e.Attributes.WindowLevel
}

// Priority is shorthand for e.Attributes.Precedence.Priority.
func (e *Entry) Priority() Priority {
	return e.Attributes.Precedence.Priority
}

// DismissReason explains why an entry left the screen.
type DismissReason int

const (
	// DismissReasonExpired means the display duration elapsed.
	DismissReasonExpired DismissReason = iota + 1
	// DismissReasonDismissed means a dismissal request or the user removed it.
	DismissReasonDismissed
	// DismissReasonReplaced means a newer entry took its place.
	DismissReasonReplaced
	// DismissReasonClosed means its surface was torn down.
	DismissReasonClosed
)

// String returns the string representation of the reason.
func (r DismissReason) String() string {
	switch r {
	case DismissReasonExpired:
		return "expired"
	case DismissReasonDismissed:
		return "dismissed"
	case DismissReasonReplaced:
		return "replaced"
	case DismissReasonClosed:
		return "closed"
	default:
		return "unknown"
	}
}

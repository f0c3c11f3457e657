package presenter

import (
	"github.com/jmylchreest/entrystack/internal/model"
)

// Host renders and animates the entries of one surface.
type Host interface {
	// CanDisplay reports whether the host accepts attrs on top of what it shows.
	CanDisplay(attrs model.Attributes) bool
	// SetStatusBarStyle applies the status bar appearance requested by attrs.
	SetStatusBarStyle(attrs model.Attributes)
	// Configure binds the entry's content and starts its entrance animation.
	Configure(entry *model.Entry)
	// AnimateOutTopEntry starts the exit animation of the topmost entry and
	// calls onComplete exactly once when it finishes, or immediately if
	// nothing is shown.
	AnimateOutTopEntry(onComplete func())
	// AnimateOut starts the exit animation of the entry with id, reporting
	// reason once it is gone. onComplete is called exactly once when it
	// finishes, or immediately if the host does not own the entry. An entry
	// already leaving keeps its animation.
	AnimateOut(id string, reason model.DismissReason, onComplete func())
	// TopAttributes returns the attributes of the topmost entry that is not
	// leaving.
	TopAttributes() (model.Attributes, bool)
	// Presenting reports whether the host still owns the entry with id,
	// including while its exit animation runs.
	Presenting(id string) bool
}

// Surface is one overlay surface and its presentation host.
type Surface interface {
	Host() Host
	// Activate raises the surface in its native stacking order. claimPrimary
	// also makes it the foreground-interactive surface.
	Activate(claimPrimary bool)
	SetResponsive(responsive bool)
	Responsive() bool
	LayoutIfNeeded()
	SafeAreaInsets() Insets
	// Teardown releases the surface for good.
	Teardown()
}

// Delegate receives host events. Hosts call it on the UI thread.
type Delegate interface {
	// EntryRemoved is called for every entry a host stops presenting.
	EntryRemoved(level model.WindowLevel, id string, reason model.DismissReason)
	// EntryFullyDismissed is called when a host's last entry finished its
	// exit animation.
	EntryFullyDismissed(level model.WindowLevel)
}

// SurfaceFactory creates the surface for a level on first use.
type SurfaceFactory interface {
	NewSurface(level model.WindowLevel, delegate Delegate) Surface
}

// Foreground is anything that can be made the foreground surface again.
type Foreground interface {
	MakeForeground()
}

// FallbackKind tells which surface is restored when a level empties.
type FallbackKind int

const (
	// FallbackMain restores the host application's own primary surface.
	FallbackMain FallbackKind = iota
	// FallbackCustom restores a caller supplied surface.
	FallbackCustom
)

// String returns the string representation of the kind.
func (k FallbackKind) String() string {
	if k == FallbackCustom {
		return "custom"
	}
	return "main"
}

// Fallback identifies the surface restored to foreground once a level empties.
type Fallback struct {
	Kind    FallbackKind
	Surface Foreground
}

// MainFallback restores the application's primary surface.
func MainFallback() Fallback {
	return Fallback{Kind: FallbackMain}
}

// CustomFallback restores fg.
func CustomFallback(fg Foreground) Fallback {
	return Fallback{Kind: FallbackCustom, Surface: fg}
}

// Insets is an inset rectangle in surface units.
type Insets struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// CanOverride is the standard CanDisplay rule: an incoming entry may replace
// the topmost one only if its priority is not lower.
func CanOverride(top model.Attributes, hasTop bool, incoming model.Attributes) bool {
	if !hasTop {
		return true
	}
	return incoming.Precedence.Priority >= top.Precedence.Priority
}

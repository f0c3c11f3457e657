package display

import (
	"github.com/diamondburned/gotk4/pkg/core/glib"
)

// GLibDispatcher runs functions on the GTK main loop.
type GLibDispatcher struct{}

// Post schedules fn on the main loop. It may be called from any goroutine.
func (GLibDispatcher) Post(fn func()) {
	glib.IdleAdd(fn)
}

package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// monitorFor returns the 1-based monitor index, or nil to let the compositor
// choose. An index past the connected monitors falls back to the first one.
func monitorFor(index int, logger *slog.Logger) *gdk.Monitor {
	if index == 0 {
		return nil
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil
	}

	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		logger.Warn("no monitors available")
		return nil
	}

	i := uint(index - 1)
	if i >= monitors.NItems() {
		logger.Warn("configured monitor not available, using first",
			"configured", index,
			"available", monitors.NItems(),
		)
		i = 0
	}

	return wrapMonitor(monitors.Item(i))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// gotk4 does not export its own wrapper for list items.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

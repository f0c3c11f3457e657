// Package presenter schedules overlay entries onto per-level surfaces.
// It owns the precedence queue, the registry of displayed entries, the
// surface directory and the dismissal resolver.
//
// Nothing in this package locks. Every method must be called from the UI
// thread; callers on other goroutines marshal first (see daemon.Dispatcher).
package presenter

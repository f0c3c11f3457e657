// Package display renders scheduler entries with GTK4 and libadwaita. Every
// window level gets one Wayland layer-shell surface whose host stacks,
// animates and expires the entries shown on it.
//
// Everything in this package must run on the GTK main loop; GLibDispatcher
// moves work there from other goroutines.
package display

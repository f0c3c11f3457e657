// Package dbus implements the D-Bus surfaces of entrystack: the
// org.freedesktop.Notifications server, which turns notifications into
// entries, and the io.github.jmylchreest.EntryStack control interface with its
// client and signal monitor.
package dbus

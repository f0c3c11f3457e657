package dbus

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const introspectableInterface = "org.freedesktop.DBus.Introspectable"

// ErrNameTaken is returned when another process owns a bus name entrystackd
// needs.
var ErrNameTaken = errors.New("bus name already taken")

// object is one interface entrystackd serves, with the bus name that makes it
// reachable.
type object struct {
	busName string
	path    dbus.ObjectPath
	iface   string
	methods []introspect.Method
	signals []introspect.Signal
	// replace takes the name over from a running owner that allows it.
	replace bool
}

// publish exports impl with its introspection data and claims the bus name.
// Nothing stays exported when the name cannot be claimed.
func (o object) publish(conn *dbus.Conn, impl any) error {
	if err := conn.Export(impl, o.path, o.iface); err != nil {
		return fmt.Errorf("export %s: %w", o.iface, err)
	}
	node := &introspect.Node{
		Name: string(o.path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: o.iface, Methods: o.methods, Signals: o.signals},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), o.path, introspectableInterface); err != nil {
		o.unexport(conn)
		return fmt.Errorf("export introspection for %s: %w", o.iface, err)
	}

	flags := dbus.NameFlagDoNotQueue
	if o.replace {
		flags |= dbus.NameFlagReplaceExisting
	}
	reply, err := conn.RequestName(o.busName, flags)
	if err != nil {
		o.unexport(conn)
		return fmt.Errorf("request %s: %w", o.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		o.unexport(conn)
		return fmt.Errorf("%w: %s", ErrNameTaken, o.busName)
	}
	return nil
}

// withdraw releases the bus name and removes the exported handlers. The
// connection itself is shared and stays open.
func (o object) withdraw(conn *dbus.Conn) error {
	o.unexport(conn)
	if _, err := conn.ReleaseName(o.busName); err != nil {
		return fmt.Errorf("release %s: %w", o.busName, err)
	}
	return nil
}

func (o object) unexport(conn *dbus.Conn) {
	_ = conn.Export(nil, o.path, o.iface)
	_ = conn.Export(nil, o.path, introspectableInterface)
}

// emit sends signal on the object's interface.
func (o object) emit(conn *dbus.Conn, signal string, args ...any) error {
	if conn == nil {
		return errors.New("not connected to D-Bus")
	}
	if err := conn.Emit(o.path, o.iface+"."+signal, args...); err != nil {
		return fmt.Errorf("emit %s: %w", signal, err)
	}
	return nil
}

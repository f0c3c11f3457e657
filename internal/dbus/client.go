package dbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/entrystack/internal/presenter"
)

// ErrDaemonNotRunning is returned when no daemon owns the control bus name.
var ErrDaemonNotRunning = errors.New("entrystackd is not running")

// Client calls the control interface of a running daemon.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens a private session bus connection to the daemon.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var hasOwner bool
	if err := conn.BusObject().Call("org.freedesktop.DBus.NameHasOwner", 0, ControlBusName).Store(&hasOwner); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	if !hasOwner {
		conn.Close()
		return nil, ErrDaemonNotRunning
	}

	return &Client{
		conn: conn,
		obj:  conn.Object(ControlBusName, ControlPath),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Conn returns the underlying connection.
func (c *Client) Conn() *dbus.Conn {
	return c.conn
}

func (c *Client) call(ctx context.Context, method string, args ...any) *dbus.Call {
	return c.obj.CallWithContext(ctx, ControlInterface+"."+method, 0, args...)
}

// Display asks the daemon to show or queue an entry and returns its ID.
func (c *Client) Display(ctx context.Context, summary, body string, options map[string]dbus.Variant) (string, error) {
	if options == nil {
		options = map[string]dbus.Variant{}
	}
	var id string
	if err := c.call(ctx, "Display", summary, body, options).Store(&id); err != nil {
		return "", fmt.Errorf("display: %w", err)
	}
	return id, nil
}

// Dismiss resolves a dismissal and waits for it to complete.
func (c *Client) Dismiss(ctx context.Context, d presenter.Descriptor) error {
	if err := c.call(ctx, "Dismiss", d.Kind.String(), d.Name, int32(d.Threshold)).Err; err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}
	return nil
}

// IsDisplaying reports whether an entry called name is on screen.
func (c *Client) IsDisplaying(ctx context.Context, name string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "IsDisplaying", name).Store(&ok); err != nil {
		return false, fmt.Errorf("is-displaying: %w", err)
	}
	return ok, nil
}

// QueueContains reports whether an entry called name is queued.
func (c *Client) QueueContains(ctx context.Context, name string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "QueueContains", name).Store(&ok); err != nil {
		return false, fmt.Errorf("queue-contains: %w", err)
	}
	return ok, nil
}

// IsResponsive reports whether level's surface intercepts input.
func (c *Client) IsResponsive(ctx context.Context, level string) (bool, error) {
	var ok bool
	if err := c.call(ctx, "IsResponsive", level).Store(&ok); err != nil {
		return false, fmt.Errorf("is-responsive: %w", err)
	}
	return ok, nil
}

// SetResponsive toggles whether level's surface intercepts input.
func (c *Client) SetResponsive(ctx context.Context, level string, responsive bool) error {
	if err := c.call(ctx, "SetResponsive", level, responsive).Err; err != nil {
		return fmt.Errorf("set-responsive: %w", err)
	}
	return nil
}

// LayoutIfNeeded asks every active surface to relayout.
func (c *Client) LayoutIfNeeded(ctx context.Context) error {
	if err := c.call(ctx, "LayoutIfNeeded").Err; err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

// SafeAreaInsets returns the daemon's current safe-area insets.
func (c *Client) SafeAreaInsets(ctx context.Context) (presenter.Insets, error) {
	var top, left, bottom, right int32
	if err := c.call(ctx, "SafeAreaInsets").Store(&top, &left, &bottom, &right); err != nil {
		return presenter.Insets{}, fmt.Errorf("safe-area-insets: %w", err)
	}
	return presenter.Insets{Top: int(top), Left: int(left), Bottom: int(bottom), Right: int(right)}, nil
}

// State fetches a snapshot of the scheduler.
func (c *Client) State(ctx context.Context) (presenter.State, error) {
	var raw string
	if err := c.call(ctx, "State").Store(&raw); err != nil {
		return presenter.State{}, fmt.Errorf("state: %w", err)
	}
	var state presenter.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return presenter.State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}

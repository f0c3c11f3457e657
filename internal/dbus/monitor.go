package dbus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// ChangeEvent is one Changed signal from the control interface.
type ChangeEvent struct {
	What    string
	EntryID string
}

// Monitor listens for the daemon's Changed signals without claiming any name.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	signals chan *dbus.Signal
	events  chan ChangeEvent
}

// NewMonitor creates a monitor on conn.
func NewMonitor(conn *dbus.Conn, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		conn:    conn,
		logger:  logger,
		signals: make(chan *dbus.Signal, 64),
		events:  make(chan ChangeEvent, 64),
	}
}

// Start subscribes to Changed signals. Events are delivered on Events until
// Stop is called.
func (m *Monitor) Start() error {
	err := m.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(ControlPath),
		dbus.WithMatchInterface(ControlInterface),
		dbus.WithMatchMember("Changed"),
	)
	if err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	m.conn.Signal(m.signals)
	go m.processSignals()

	m.logger.Debug("started control monitor", "interface", ControlInterface)
	return nil
}

// Events returns the channel change events are delivered on.
func (m *Monitor) Events() <-chan ChangeEvent {
	return m.events
}

func (m *Monitor) processSignals() {
	defer close(m.events)
	for sig := range m.signals {
		if sig.Name != ControlInterface+".Changed" || len(sig.Body) < 2 {
			continue
		}
		what, ok := sig.Body[0].(string)
		if !ok {
			m.logger.Warn("malformed Changed signal", "body", sig.Body)
			continue
		}
		id, _ := sig.Body[1].(string)

		select {
		case m.events <- ChangeEvent{What: what, EntryID: id}:
		default:
			// A slow consumer only needs to know something changed.
		}
	}
}

// Stop unsubscribes and closes Events.
func (m *Monitor) Stop() error {
	m.conn.RemoveSignal(m.signals)
	close(m.signals)
	return m.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(ControlPath),
		dbus.WithMatchInterface(ControlInterface),
		dbus.WithMatchMember("Changed"),
	)
}

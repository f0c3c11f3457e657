package dbus

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the freedesktop notification interface name.
	DBusInterface = "org.freedesktop.Notifications"
	// DBusPath is the notification object path.
	DBusPath = "/org/freedesktop/Notifications"
	// DBusBusName is the bus name claimed for notifications.
	DBusBusName = "org.freedesktop.Notifications"
)

// NotificationHandler turns a Notify call into an entry. An error rejects the
// call.
type NotificationHandler func(notification *DBusNotification, id uint32) error

// CloseHandler is called for CloseNotification.
type CloseHandler func(id uint32)

var notificationObject = object{
	busName: DBusBusName,
	path:    DBusPath,
	iface:   DBusInterface,
	methods: notificationMethods(),
	signals: notificationSignals(),
	replace: true,
}

// NotificationServer serves org.freedesktop.Notifications so that any
// application can show entries. Which IDs are still live is tracked by the
// caller; the server only hands out IDs and forwards calls.
type NotificationServer struct {
	logger *slog.Logger
	nextID atomic.Uint32

	mu      sync.RWMutex
	conn    *dbus.Conn
	info    ServerInfo
	notify  NotificationHandler
	close   CloseHandler
	started bool
}

// NewNotificationServer creates a server with the default server information.
func NewNotificationServer(logger *slog.Logger) *NotificationServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationServer{logger: logger, info: DefaultServerInfo()}
}

// SetNotifyHandler sets the handler for Notify.
func (s *NotificationServer) SetNotifyHandler(handler NotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = handler
}

// SetCloseHandler sets the handler for CloseNotification.
func (s *NotificationServer) SetCloseHandler(handler CloseHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close = handler
}

// SetServerInfo sets what GetServerInformation reports.
func (s *NotificationServer) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
}

// Start exports the server on conn and takes over the notifications bus name.
func (s *NotificationServer) Start(conn *dbus.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := notificationObject.publish(conn, s); err != nil {
		return err
	}
	s.conn, s.started = conn, true
	s.logger.Info("serving notifications", "bus_name", DBusBusName)
	return nil
}

// Stop gives up the bus name.
func (s *NotificationServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	return notificationObject.withdraw(s.conn)
}

// GetCapabilities implements the D-Bus method GetCapabilities() -> as.
func (s *NotificationServer) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation implements the D-Bus method
// GetServerInformation() -> (ssss).
func (s *NotificationServer) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info.Name, s.info.Vendor, s.info.Version, s.info.SpecVersion, nil
}

// Notify implements the D-Bus method Notify(susssasa{sv}i) -> u. A non-zero
// replacesID is reused so the new entry takes over the old notification.
func (s *NotificationServer) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	id := replacesID
	if id == 0 {
		id = s.nextID.Add(1)
	}

	s.mu.RLock()
	handler := s.notify
	s.mu.RUnlock()
	if handler == nil {
		return id, nil
	}

	n := &DBusNotification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}
	if err := handler(n, id); err != nil {
		s.logger.Warn("rejected notification", "id", id, "app", appName, "error", err)
		return 0, dbus.MakeFailedError(err)
	}
	return id, nil
}

// CloseNotification implements the D-Bus method CloseNotification(u). The
// NotificationClosed signal follows once the entry has actually gone.
func (s *NotificationServer) CloseNotification(id uint32) *dbus.Error {
	s.mu.RLock()
	handler := s.close
	s.mu.RUnlock()
	if handler != nil {
		handler(id)
	}
	return nil
}

// EmitNotificationClosed emits NotificationClosed for id.
func (s *NotificationServer) EmitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if err := notificationObject.emit(conn, "NotificationClosed", id, uint32(reason)); err != nil {
		return err
	}
	s.logger.Debug("notification closed", "id", id, "reason", reason.String())
	return nil
}

func notificationMethods() []introspect.Method {
	out := func(name, typ string) introspect.Arg { return introspect.Arg{Name: name, Type: typ, Direction: "out"} }
	in := func(name, typ string) introspect.Arg { return introspect.Arg{Name: name, Type: typ, Direction: "in"} }

	return []introspect.Method{
		{Name: "GetCapabilities", Args: []introspect.Arg{out("capabilities", "as")}},
		{Name: "GetServerInformation", Args: []introspect.Arg{
			out("name", "s"), out("vendor", "s"), out("version", "s"), out("spec_version", "s"),
		}},
		{Name: "Notify", Args: []introspect.Arg{
			in("app_name", "s"), in("replaces_id", "u"), in("app_icon", "s"),
			in("summary", "s"), in("body", "s"), in("actions", "as"),
			in("hints", "a{sv}"), in("expire_timeout", "i"),
			out("id", "u"),
		}},
		{Name: "CloseNotification", Args: []introspect.Arg{in("id", "u")}},
	}
}

func notificationSignals() []introspect.Signal {
	return []introspect.Signal{{
		Name: "NotificationClosed",
		Args: []introspect.Arg{{Name: "id", Type: "u"}, {Name: "reason", Type: "u"}},
	}}
}

package dbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

const (
	// ControlInterface is the entrystack control interface name.
	ControlInterface = "io.github.jmylchreest.EntryStack"
	// ControlPath is the control object path.
	ControlPath = "/io/github/jmylchreest/EntryStack"
	// ControlBusName is the bus name claimed for the control interface.
	ControlBusName = "io.github.jmylchreest.EntryStack"
)

// Option keys accepted by the control Display method.
const (
	OptionAppName      = "app-name"
	OptionIcon         = "icon"
	OptionName         = "name"
	OptionLevel        = "level"
	OptionPrecedence   = "precedence"
	OptionPriority     = "priority"
	OptionDropEnqueued = "drop-enqueued"
	OptionDurationMS   = "duration-ms"
	OptionStatusBar    = "status-bar"
	OptionInteraction  = "interaction"
	OptionFeedback     = "feedback"
	OptionClaimPrimary = "claim-primary"
)

// DefaultDismissTimeout bounds how long a Dismiss call waits for exit
// animations.
const DefaultDismissTimeout = 30 * time.Second

// DisplayRequest is a fully parsed request to display an entry.
type DisplayRequest struct {
	Content      model.Content
	Attributes   model.Attributes
	ClaimPrimary bool
}

// Controller is what the control interface drives.
type Controller interface {
	Display(req DisplayRequest) (string, error)
	Dismiss(ctx context.Context, d presenter.Descriptor) error
	IsDisplaying(name string) bool
	QueueContains(name string) bool
	IsResponsive(level model.WindowLevel) bool
	SetResponsive(level model.WindowLevel, responsive bool)
	LayoutIfNeeded()
	SafeAreaInsets() presenter.Insets
	State() presenter.State
}

// ParseDisplayOptions builds a request from the Display method arguments,
// starting from defaults.
func ParseDisplayOptions(defaults model.Attributes, summary, body string, options map[string]dbus.Variant) (DisplayRequest, error) {
	opts := variantMap(options)
	attrs := defaults

	if s := opts.str(OptionName); s != "" {
		attrs.Name = s
	}
	if s := opts.str(OptionLevel); s != "" {
		level, err := model.ParseWindowLevel(s)
		if err != nil {
			return DisplayRequest{}, err
		}
		attrs.WindowLevel = level
	}

	kind := attrs.Precedence.Kind.String()
	if s := opts.str(OptionPrecedence); s != "" {
		kind = s
	}
	priority := attrs.Precedence.Priority
	if p, ok := opts.integer(OptionPriority); ok {
		priority = model.Priority(p)
	}
	drop := attrs.Precedence.DropEnqueuedEntries
	if b, ok := opts.boolean(OptionDropEnqueued); ok {
		drop = b
	}
	precedence, err := model.ParsePrecedence(kind, priority, drop)
	if err != nil {
		return DisplayRequest{}, err
	}
	attrs.Precedence = precedence

	if ms, ok := opts.integer(OptionDurationMS); ok {
		attrs.DisplayDuration = time.Duration(ms) * time.Millisecond
	}
	if s := opts.str(OptionStatusBar); s != "" {
		attrs.StatusBar = model.StatusBarStyle(s)
	}
	if s := opts.str(OptionInteraction); s != "" {
		attrs.ScreenInteraction = model.ScreenInteraction(s)
	}
	if s := opts.str(OptionFeedback); s != "" {
		attrs.Feedback = model.Feedback(s)
	}
	if err := attrs.Validate(); err != nil {
		return DisplayRequest{}, err
	}

	claim, _ := opts.boolean(OptionClaimPrimary)
	return DisplayRequest{
		Content: model.Content{
			AppName:  opts.str(OptionAppName),
			Summary:  summary,
			Body:     body,
			IconName: opts.str(OptionIcon),
		},
		Attributes:   attrs,
		ClaimPrimary: claim,
	}, nil
}

var controlObject = object{
	busName: ControlBusName,
	path:    ControlPath,
	iface:   ControlInterface,
	methods: controlMethods(),
	signals: controlSignals(),
}

// ControlServer exports the entrystack control interface.
type ControlServer struct {
	conn       *dbus.Conn
	logger     *slog.Logger
	controller Controller
	defaults   func() model.Attributes

	dismissTimeout time.Duration
}

// NewControlServer creates a control server for controller. defaults supplies
// the attributes Display starts from and may be nil.
func NewControlServer(controller Controller, defaults func() model.Attributes, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults == nil {
		defaults = model.DefaultAttributes
	}
	return &ControlServer{
		logger:         logger,
		controller:     controller,
		defaults:       defaults,
		dismissTimeout: DefaultDismissTimeout,
	}
}

// SetDismissTimeout changes how long Dismiss waits for completion.
func (c *ControlServer) SetDismissTimeout(timeout time.Duration) {
	c.dismissTimeout = timeout
}

// Start exports the control object on conn and claims the control bus name.
func (c *ControlServer) Start(conn *dbus.Conn) error {
	if err := controlObject.publish(conn, c); err != nil {
		return err
	}
	c.conn = conn
	c.logger.Info("serving control interface", "bus_name", ControlBusName)
	return nil
}

// Stop releases the control bus name.
func (c *ControlServer) Stop() error {
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	return controlObject.withdraw(conn)
}

// EmitChanged emits the Changed signal. what names the transition
// ("queued", "displayed", "dropped", "dismissed").
func (c *ControlServer) EmitChanged(what, entryID string) error {
	return controlObject.emit(c.conn, "Changed", what, entryID)
}

// Display shows or queues an entry.
// D-Bus method: Display(ssa{sv}) -> s
func (c *ControlServer) Display(summary, body string, options map[string]dbus.Variant) (string, *dbus.Error) {
	req, err := ParseDisplayOptions(c.defaults(), summary, body, options)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	id, err := c.controller.Display(req)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return id, nil
}

// Dismiss resolves a dismissal and returns once it completed.
// D-Bus method: Dismiss(ssi) -> nothing
func (c *ControlServer) Dismiss(kind, name string, threshold int32) *dbus.Error {
	d, err := presenter.ParseDescriptor(kind, name, model.Priority(threshold))
	if err != nil {
		return dbus.MakeFailedError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.dismissTimeout)
	defer cancel()
	if err := c.controller.Dismiss(ctx, d); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// IsDisplaying reports whether an entry called name is on screen. An empty
// name matches anything.
// D-Bus method: IsDisplaying(s) -> b
func (c *ControlServer) IsDisplaying(name string) (bool, *dbus.Error) {
	return c.controller.IsDisplaying(name), nil
}

// QueueContains reports whether an entry called name is queued.
// D-Bus method: QueueContains(s) -> b
func (c *ControlServer) QueueContains(name string) (bool, *dbus.Error) {
	return c.controller.QueueContains(name), nil
}

// IsResponsive reports whether level's surface intercepts input.
// D-Bus method: IsResponsive(s) -> b
func (c *ControlServer) IsResponsive(level string) (bool, *dbus.Error) {
	l, err := model.ParseWindowLevel(level)
	if err != nil {
		return false, dbus.MakeFailedError(err)
	}
	return c.controller.IsResponsive(l), nil
}

// SetResponsive toggles whether level's surface intercepts input.
// D-Bus method: SetResponsive(sb) -> nothing
func (c *ControlServer) SetResponsive(level string, responsive bool) *dbus.Error {
	l, err := model.ParseWindowLevel(level)
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	c.controller.SetResponsive(l, responsive)
	return nil
}

// LayoutIfNeeded relayouts every active surface.
// D-Bus method: LayoutIfNeeded() -> nothing
func (c *ControlServer) LayoutIfNeeded() *dbus.Error {
	c.controller.LayoutIfNeeded()
	return nil
}

// SafeAreaInsets returns top, left, bottom, right.
// D-Bus method: SafeAreaInsets() -> (iiii)
func (c *ControlServer) SafeAreaInsets() (int32, int32, int32, int32, *dbus.Error) {
	in := c.controller.SafeAreaInsets()
	return int32(in.Top), int32(in.Left), int32(in.Bottom), int32(in.Right), nil
}

// State returns a JSON snapshot of the scheduler.
// D-Bus method: State() -> s
func (c *ControlServer) State() (string, *dbus.Error) {
	data, err := json.Marshal(c.controller.State())
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(data), nil
}

func controlMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Display",
			Args: []introspect.Arg{
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "options", Type: "a{sv}", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Dismiss",
			Args: []introspect.Arg{
				{Name: "kind", Type: "s", Direction: "in"},
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "threshold", Type: "i", Direction: "in"},
			},
		},
		{
			Name: "IsDisplaying",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "displaying", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "QueueContains",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
				{Name: "queued", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "IsResponsive",
			Args: []introspect.Arg{
				{Name: "level", Type: "s", Direction: "in"},
				{Name: "responsive", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "SetResponsive",
			Args: []introspect.Arg{
				{Name: "level", Type: "s", Direction: "in"},
				{Name: "responsive", Type: "b", Direction: "in"},
			},
		},
		{Name: "LayoutIfNeeded"},
		{
			Name: "SafeAreaInsets",
			Args: []introspect.Arg{
				{Name: "top", Type: "i", Direction: "out"},
				{Name: "left", Type: "i", Direction: "out"},
				{Name: "bottom", Type: "i", Direction: "out"},
				{Name: "right", Type: "i", Direction: "out"},
			},
		},
		{
			Name: "State",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
			},
		},
	}
}

func controlSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Changed",
			Args: []introspect.Arg{
				{Name: "what", Type: "s"},
				{Name: "entry_id", Type: "s"},
			},
		},
	}
}

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// Service drives the scheduler on behalf of the D-Bus interfaces. Every
// scheduler call is posted to the dispatcher, so Service itself is safe to
// use from D-Bus goroutines.
type Service struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	scheduler  *presenter.Scheduler
	tracker    *LifecycleTracker

	mu  sync.RWMutex
	cfg *config.DaemonConfig
}

var _ dbus.Controller = (*Service)(nil)

// NewService creates a Service. The tracker should already be registered as
// an observer of scheduler.
func NewService(scheduler *presenter.Scheduler, dispatcher Dispatcher, tracker *LifecycleTracker, cfg *config.DaemonConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	return &Service{
		logger:     logger,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		tracker:    tracker,
		cfg:        cfg,
	}
}

// Config returns the current daemon configuration.
func (s *Service) Config() *config.DaemonConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// ApplyConfig switches to cfg for entries created from now on.
func (s *Service) ApplyConfig(cfg *config.DaemonConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	height := cfg.Layout.StatusBarHeight
	s.dispatcher.Post(func() {
		s.scheduler.SetStatusBarHeight(height)
	})
	s.logger.Debug("applied daemon config")
}

// DefaultAttributes returns the attributes used for control requests that
// leave options unset.
func (s *Service) DefaultAttributes() model.Attributes {
	return s.Config().AttributesForUrgency(model.UrgencyNormal)
}

// HandleNotification turns a freedesktop notification into an entry.
// Notifications without a name get one derived from their ID. A notification
// that replaces a live one takes its place instead of waiting its turn.
func (s *Service) HandleNotification(n *dbus.DBusNotification, id uint32) error {
	base := s.Config().AttributesForUrgency(n.Urgency())
	attrs, err := n.Attributes(base)
	if err != nil {
		return fmt.Errorf("notification %d: %w", id, err)
	}
	if attrs.Name == "" {
		attrs.Name = fmt.Sprintf("notification-%d", id)
	}

	entry, err := model.NewEntry(n.Content(), attrs)
	if err != nil {
		return err
	}

	var replaced string
	if n.ReplacesID != 0 {
		if old, live := s.tracker.EntryForDBusID(n.ReplacesID); live {
			replaced = old.EntryID
		}
	}
	s.tracker.Bind(entry, id)

	s.logger.Debug("notification received",
		"dbus_id", id,
		"entry_id", entry.ID,
		"app", n.AppName,
		"urgency", model.UrgencyName(n.Urgency()),
		"name", attrs.Name,
		"level", attrs.WindowLevel,
		"precedence", attrs.Precedence.String(),
		"replaces", replaced,
	)

	claim := n.ClaimPrimary()
	s.dispatcher.Post(func() {
		if replaced != "" {
			s.scheduler.Replace(replaced, entry, claim, presenter.MainFallback())
			return
		}
		s.scheduler.RequestDisplay(entry, claim, presenter.MainFallback())
	})
	return nil
}

// HandleClose dismisses the entry bound to a notification ID.
func (s *Service) HandleClose(id uint32) {
	rec, ok := s.tracker.RequestClose(id)
	if !ok {
		s.logger.Debug("close for unknown notification", "dbus_id", id)
		return
	}
	s.dispatcher.Post(func() {
		s.scheduler.DismissEntry(rec.EntryID, nil)
	})
}

// ShowNotice displays an entry built by the daemon itself.
func (s *Service) ShowNotice(content model.Content, attrs model.Attributes) error {
	_, err := s.Display(dbus.DisplayRequest{Content: content, Attributes: attrs})
	return err
}

// Display implements dbus.Controller.
func (s *Service) Display(req dbus.DisplayRequest) (string, error) {
	if err := req.Attributes.Validate(); err != nil {
		return "", err
	}
	entry, err := model.NewEntry(req.Content, req.Attributes)
	if err != nil {
		return "", err
	}
	s.dispatcher.Post(func() {
		s.scheduler.RequestDisplay(entry, req.ClaimPrimary, presenter.MainFallback())
	})
	return entry.ID, nil
}

// Dismiss implements dbus.Controller. It returns once every exit animation
// the dismissal started has finished, or when ctx ends.
func (s *Service) Dismiss(ctx context.Context, d presenter.Descriptor) error {
	done := make(chan struct{})
	s.dispatcher.Post(func() {
		s.scheduler.Dismiss(d, func() { close(done) })
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dismiss %s: %w", d, ctx.Err())
	}
}

// IsDisplaying implements dbus.Controller.
func (s *Service) IsDisplaying(name string) bool {
	return Call(s.dispatcher, func() bool { return s.scheduler.IsCurrentlyDisplaying(name) })
}

// QueueContains implements dbus.Controller.
func (s *Service) QueueContains(name string) bool {
	return Call(s.dispatcher, func() bool { return s.scheduler.QueueContains(name) })
}

// IsResponsive implements dbus.Controller.
func (s *Service) IsResponsive(level model.WindowLevel) bool {
	return Call(s.dispatcher, func() bool { return s.scheduler.IsResponsive(level) })
}

// SetResponsive implements dbus.Controller.
func (s *Service) SetResponsive(level model.WindowLevel, responsive bool) {
	Run(s.dispatcher, func() { s.scheduler.SetResponsive(level, responsive) })
}

// LayoutIfNeeded implements dbus.Controller.
func (s *Service) LayoutIfNeeded() {
	Run(s.dispatcher, s.scheduler.LayoutIfNeeded)
}

// SafeAreaInsets implements dbus.Controller.
func (s *Service) SafeAreaInsets() presenter.Insets {
	return Call(s.dispatcher, s.scheduler.SafeAreaInsets)
}

// State implements dbus.Controller.
func (s *Service) State() presenter.State {
	return Call(s.dispatcher, s.scheduler.Snapshot)
}

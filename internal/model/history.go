package model

import "time"

// HistoryRecord is one finished entry as written to the history journal.
type HistoryRecord struct {
	EntryID     string    `json:"entry_id" yaml:"entry_id"`
	DBusID      uint32    `json:"dbus_id,omitempty" yaml:"dbus_id,omitempty"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	AppName     string    `json:"app_name,omitempty" yaml:"app_name,omitempty"`
	Summary     string    `json:"summary" yaml:"summary"`
	Level       string    `json:"level" yaml:"level"`
	Priority    int       `json:"priority" yaml:"priority"`
	Status      string    `json:"status" yaml:"status"` // "dismissed" or "dropped"
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	QueuedAt    time.Time `json:"queued_at,omitzero" yaml:"queued_at,omitempty"`
	DisplayedAt time.Time `json:"displayed_at,omitzero" yaml:"displayed_at,omitempty"`
	FinishedAt  time.Time `json:"finished_at" yaml:"finished_at"`
}

// WasDisplayed reports whether the entry reached the screen.
func (r HistoryRecord) WasDisplayed() bool {
	return !r.DisplayedAt.IsZero()
}

// OnScreen returns how long the entry was displayed.
func (r HistoryRecord) OnScreen() time.Duration {
	if !r.WasDisplayed() || r.FinishedAt.Before(r.DisplayedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.DisplayedAt)
}

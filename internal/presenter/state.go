package presenter

import (
	"time"
)

// DisplayedEntry describes a live registration.
type DisplayedEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Level       string    `json:"level" yaml:"level"`
	Precedence  string    `json:"precedence" yaml:"precedence"`
	Priority    int       `json:"priority" yaml:"priority"`
	DisplayedAt time.Time `json:"displayed_at" yaml:"displayed_at"`
}

// QueuedEntry describes a queue item.
type QueuedEntry struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Level    string    `json:"level" yaml:"level"`
	Priority int       `json:"priority" yaml:"priority"`
	Summary  string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	QueuedAt time.Time `json:"queued_at" yaml:"queued_at"`
}

// SurfaceState describes an active surface slot.
type SurfaceState struct {
	Level      string `json:"level" yaml:"level"`
	Responsive bool   `json:"responsive" yaml:"responsive"`
}

// State is a point-in-time snapshot of the scheduler.
type State struct {
	Displayed []DisplayedEntry `json:"displayed" yaml:"displayed"`
	Queued    []QueuedEntry    `json:"queued" yaml:"queued"`
	Surfaces  []SurfaceState   `json:"surfaces" yaml:"surfaces"`
	Fallback  string           `json:"fallback" yaml:"fallback"`
	Insets    Insets           `json:"safe_area_insets" yaml:"safe_area_insets"`
}

// Snapshot captures the scheduler's current state.
func (s *Scheduler) Snapshot() State {
	state := State{
		Displayed: []DisplayedEntry{},
		Queued:    []QueuedEntry{},
		Surfaces:  []SurfaceState{},
		Fallback:  s.surfaces.Fallback().Kind.String(),
		Insets:    s.surfaces.SafeAreaInsets(),
	}

	for _, reg := range s.registry.All() {
		state.Displayed = append(state.Displayed, DisplayedEntry{
			ID:          reg.ID,
			Name:        reg.Name,
			Level:       reg.Level.String(),
			Precedence:  reg.Precedence.String(),
			Priority:    int(reg.Precedence.Priority),
			DisplayedAt: reg.DisplayedAt,
		})
	}

	for _, item := range s.queue.Items() {
		state.Queued = append(state.Queued, QueuedEntry{
			ID:       item.Entry.ID,
			Name:     item.Entry.Name(),
			Level:    item.Entry.Level().String(),
			Priority: int(item.Entry.Priority()),
			Summary:  item.Entry.Content.Summary,
			QueuedAt: item.QueuedAt,
		})
	}

	for _, level := range s.surfaces.Levels() {
		state.Surfaces = append(state.Surfaces, SurfaceState{
			Level:      level.String(),
			Responsive: s.surfaces.IsResponsive(level),
		})
	}

	return state
}

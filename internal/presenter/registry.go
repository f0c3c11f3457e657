package presenter

import (
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// Registration is what the registry remembers about a displayed entry.
// It deliberately holds no reference to the entry or its content; the host
// that renders the entry owns it.
type Registration struct {
	ID          string
	Name        string
	Level       model.WindowLevel
	Precedence  model.Precedence
	DisplayedAt time.Time

	owner Host
}

// Registry tracks displayed entries through non-owning registrations.
// Registrations whose host no longer presents the entry are pruned on every
// query.
type Registry struct {
	order   []string // insertion order, for first-match lookups
	entries map[string]*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Registration)}
}

// Add registers entry as presented by owner.
func (r *Registry) Add(entry *model.Entry, owner Host) {
	if _, exists := r.entries[entry.ID]; !exists {
		r.order = append(r.order, entry.ID)
	}
	r.entries[entry.ID] = &Registration{
		ID:          entry.ID,
		Name:        entry.Name(),
		Level:       entry.Level(),
		Precedence:  entry.Attributes.Precedence,
		DisplayedAt: time.Now(),
		owner:       owner,
	}
}

// Remove forgets the entry with id. It reports whether it was registered.
func (r *Registry) Remove(id string) bool {
	if _, exists := r.entries[id]; !exists {
		return false
	}
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// prune drops registrations whose owner stopped presenting them.
func (r *Registry) prune() {
	kept := r.order[:0]
	for _, id := range r.order {
		reg := r.entries[id]
		if reg.owner == nil || !reg.owner.Presenting(id) {
			delete(r.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// IsEmpty reports whether no live entry is registered.
func (r *Registry) IsEmpty() bool {
	r.prune()
	return len(r.order) == 0
}

// FindNamed returns the first live registration called name.
func (r *Registry) FindNamed(name string) (*Registration, bool) {
	r.prune()
	for _, id := range r.order {
		if reg := r.entries[id]; reg.Name == name {
			return reg, true
		}
	}
	return nil, false
}

// Get returns the live registration with id.
func (r *Registry) Get(id string) (*Registration, bool) {
	r.prune()
	reg, ok := r.entries[id]
	return reg, ok
}

// All returns the live registrations in display order.
func (r *Registry) All() []*Registration {
	r.prune()
	regs := make([]*Registration, 0, len(r.order))
	for _, id := range r.order {
		regs = append(regs, r.entries[id])
	}
	return regs
}

package presenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/entrystack/internal/model"
)

// DescriptorKind selects which entries a dismissal affects.
type DescriptorKind int

const (
	// DismissDisplayed targets the topmost entry at the normal level.
	DismissDisplayed DescriptorKind = iota
	// DismissSpecific targets entries with a given name.
	DismissSpecific
	// DismissPriorityAtMost targets entries at or below a priority.
	DismissPriorityAtMost
	// DismissEnqueued clears the queue only.
	DismissEnqueued
	// DismissAll clears the queue and every level.
	DismissAll
)

// String returns the wire name of the kind.
func (k DescriptorKind) String() string {
	switch k {
	case DismissDisplayed:
		return "displayed"
	case DismissSpecific:
		return "specific"
	case DismissPriorityAtMost:
		return "priority"
	case DismissEnqueued:
		return "enqueued"
	case DismissAll:
		return "all"
	default:
		return "unknown"
	}
}

// Descriptor is a dismissal request. Name is used by DismissSpecific and
// Threshold by DismissPriorityAtMost.
type Descriptor struct {
	Kind      DescriptorKind
	Name      string
	Threshold model.Priority
}

// Displayed returns a descriptor for the topmost normal-level entry.
func Displayed() Descriptor { return Descriptor{Kind: DismissDisplayed} }

// Specific returns a descriptor for entries called name.
func Specific(name string) Descriptor { return Descriptor{Kind: DismissSpecific, Name: name} }

// PriorityAtMost returns a descriptor for entries with priority <= threshold.
func PriorityAtMost(threshold model.Priority) Descriptor {
	return Descriptor{Kind: DismissPriorityAtMost, Threshold: threshold}
}

// EnqueuedOnly returns a descriptor that clears the queue.
func EnqueuedOnly() Descriptor { return Descriptor{Kind: DismissEnqueued} }

// All returns a descriptor for everything.
func All() Descriptor { return Descriptor{Kind: DismissAll} }

// String returns a compact description of the descriptor.
func (d Descriptor) String() string {
	switch d.Kind {
	case DismissSpecific:
		return fmt.Sprintf("specific(%s)", d.Name)
	case DismissPriorityAtMost:
		return fmt.Sprintf("priority(<=%d)", d.Threshold)
	default:
		return d.Kind.String()
	}
}

// ErrInvalidDescriptor is returned by ParseDescriptor for unknown kinds.
var ErrInvalidDescriptor = errors.New("invalid dismissal descriptor")

// ParseDescriptor builds a descriptor from its wire form.
func ParseDescriptor(kind, name string, threshold model.Priority) (Descriptor, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "displayed", "":
		return Displayed(), nil
	case "specific", "name":
		if name == "" {
			return Descriptor{}, fmt.Errorf("%w: specific requires a name", ErrInvalidDescriptor)
		}
		return Specific(name), nil
	case "priority":
		return PriorityAtMost(threshold), nil
	case "enqueued":
		return EnqueuedOnly(), nil
	case "all":
		return All(), nil
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidDescriptor, kind)
	}
}

// completion fires fn once, after it is armed and every added animation has
// reported back.
type completion struct {
	fn      func()
	pending int
	armed   bool
	fired   bool
}

func (c *completion) add() func() {
	c.pending++
	reported := false
	return func() {
		if reported {
			return
		}
		reported = true
		c.pending--
		c.maybeFire()
	}
}

func (c *completion) arm() {
	c.armed = true
	c.maybeFire()
}

func (c *completion) maybeFire() {
	if c.fired || !c.armed || c.pending > 0 {
		return
	}
	c.fired = true
	if c.fn != nil {
		c.fn()
	}
}

// Dismiss removes the entries selected by d. Queue removals happen before it
// returns; onComplete, if set, is called exactly once after every triggered
// exit animation finished, or right away when nothing was animated.
func (s *Scheduler) Dismiss(d Descriptor, onComplete func()) {
	done := &completion{fn: onComplete}
	defer done.arm()

	if s.surfaces.IsEmpty() {
		s.logger.Debug("dismiss ignored, no surfaces", "descriptor", d.String())
		return
	}

	switch d.Kind {
	case DismissDisplayed:
		if host, ok := s.surfaces.Host(model.LevelNormal); ok {
			host.AnimateOutTopEntry(done.add())
		}

	case DismissSpecific:
		s.drop(s.queue.RemoveNamed(d.Name), DropDismissed)
		if reg, found := s.registry.FindNamed(d.Name); found {
			if host, ok := s.surfaces.Host(reg.Level); ok {
				host.AnimateOut(reg.ID, model.DismissReasonDismissed, done.add())
			}
		}

	case DismissPriorityAtMost:
		s.drop(s.queue.RemoveAtMost(d.Threshold), DropDismissed)
		for _, level := range s.surfaces.Levels() {
			host, ok := s.surfaces.Host(level)
			if !ok {
				continue
			}
			if top, ok := host.TopAttributes(); ok && top.Precedence.Priority <= d.Threshold {
				host.AnimateOutTopEntry(done.add())
			}
		}

	case DismissEnqueued:
		s.drop(s.queue.RemoveAll(), DropDismissed)

	case DismissAll:
		s.drop(s.queue.RemoveAll(), DropDismissed)
		for _, level := range s.surfaces.Levels() {
			if host, ok := s.surfaces.Host(level); ok {
				host.AnimateOutTopEntry(done.add())
			}
		}
	}

	s.logger.Debug("dismiss resolved", "descriptor", d.String(), "animations", done.pending)
}

// DismissEntry removes the entry with id, whether it is queued or displayed.
// onComplete follows the same contract as in Dismiss.
func (s *Scheduler) DismissEntry(id string, onComplete func()) {
	done := &completion{fn: onComplete}
	defer done.arm()

	if item, ok := s.queue.RemoveID(id); ok {
		s.drop([]*QueueItem{item}, DropDismissed)
		return
	}
	reg, ok := s.registry.Get(id)
	if !ok {
		s.logger.Debug("dismiss ignored, entry not found", "entry_id", id)
		return
	}
	if host, ok := s.surfaces.Host(reg.Level); ok {
		host.AnimateOut(id, model.DismissReasonDismissed, done.add())
	}
}

package core

import (
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByFinished SortField = "finished"
	SortByName     SortField = "name"
	SortByLevel    SortField = "level"
	SortByPriority SortField = "priority"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (newest first).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByFinished,
		Order: SortDesc,
	}
}

// levelRank orders levels from front to back.
func levelRank(level string) int {
	l, err := model.ParseWindowLevel(level)
	if err != nil {
		return -1
	}
	return int(l)
}

// Sort sorts records in place based on the provided options.
func Sort(records []model.HistoryRecord, opts SortOptions) {
	if len(records) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		var less, equal bool

		switch opts.Field {
		case SortByName:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			less, equal = an < bn, an == bn
		case SortByLevel:
			ar, br := levelRank(a.Level), levelRank(b.Level)
			less, equal = ar < br, ar == br
		case SortByPriority:
			less, equal = a.Priority < b.Priority, a.Priority == b.Priority
		default:
			less, equal = a.FinishedAt.Before(b.FinishedAt), a.FinishedAt.Equal(b.FinishedAt)
		}

		if equal {
			return false
		}
		if opts.Order == SortDesc {
			return !less
		}
		return less
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "finished", "time", "t", "":
		return SortByFinished, nil
	case "name", "n":
		return SortByName, nil
	case "level", "l":
		return SortByLevel, nil
	case "priority", "p":
		return SortByPriority, nil
	default:
		return SortByFinished, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortDesc, nil
	}
}

// Prune splits records into those kept and those removed. Records finished
// before now-olderThan are removed when olderThan is positive; beyond that
// only the keep most recent survive when keep is positive. Both results keep
// the input order.
func Prune(records []model.HistoryRecord, keep int, olderThan time.Duration, now time.Time) (kept, removed []model.HistoryRecord) {
	drop := make(map[int]bool)

	if olderThan > 0 {
		cutoff := now.Add(-olderThan)
		for i, r := range records {
			if r.FinishedAt.Before(cutoff) {
				drop[i] = true
			}
		}
	}

	if keep > 0 {
		// Newest first, by index so duplicates by ID cannot collide
		order := make([]int, len(records))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return records[order[a]].FinishedAt.After(records[order[b]].FinishedAt)
		})
		survivors := 0
		for _, i := range order {
			if drop[i] {
				continue
			}
			if survivors >= keep {
				drop[i] = true
				continue
			}
			survivors++
		}
	}

	for i, r := range records {
		if drop[i] {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	return kept, removed
}

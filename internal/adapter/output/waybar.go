package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/entrystack/internal/presenter"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

// WaybarFormatter writes a one-line Waybar status.
type WaybarFormatter struct{}

// NewWaybarFormatter creates a new Waybar formatter.
func NewWaybarFormatter() *WaybarFormatter {
	return &WaybarFormatter{}
}

// Format writes the Waybar JSON for state.
func (f *WaybarFormatter) Format(w io.Writer, state presenter.State) error {
	return json.NewEncoder(w).Encode(GenerateWaybarStatus(state))
}

// GenerateWaybarStatus summarizes state for a Waybar custom module. The
// class is "alert" while the alert level shows something, "active" while
// anything else shows, "queued" when only the queue is non-empty.
func GenerateWaybarStatus(state presenter.State) WaybarStatus {
	total := len(state.Displayed) + len(state.Queued)
	if total == 0 {
		return WaybarStatus{Alt: "empty", Class: "empty", Tooltip: "Nothing displayed"}
	}

	class := "queued"
	for _, d := range state.Displayed {
		if d.Level == "alert" {
			class = "alert"
			break
		}
		class = "active"
	}

	var lines []string
	if n := len(state.Displayed); n > 0 {
		lines = append(lines, fmt.Sprintf("Displayed: %d", n))
	}
	if n := len(state.Queued); n > 0 {
		lines = append(lines, fmt.Sprintf("Queued: %d", n))
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", total),
		Alt:        class,
		Tooltip:    strings.Join(lines, "\n"),
		Class:      class,
		Percentage: min(total, 100),
	}
}

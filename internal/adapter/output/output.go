// Package output provides formatters for scheduler state snapshots.
package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/entrystack/internal/presenter"
)

// Formatter formats a state snapshot for output.
type Formatter interface {
	// Format writes the formatted state to the writer.
	Format(w io.Writer, state presenter.State) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain  FormatType = "plain"
	FormatJSON   FormatType = "json"
	FormatYAML   FormatType = "yaml"
	FormatWaybar FormatType = "waybar"
)

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom per-row template for plain format
	ShowTime bool   // Show relative time in plain format
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowTime: true,
	}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatWaybar:
		return NewWaybarFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

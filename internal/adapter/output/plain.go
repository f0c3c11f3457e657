package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/entrystack/internal/presenter"
)

// Row is one displayed or queued entry as seen by plain templates.
type Row struct {
	Status   string // "displayed" or "queued"
	ID       string
	Name     string
	Level    string
	Priority int
	Summary  string
	Since    time.Time
}

// Rows flattens a snapshot into displayed entries followed by the queue.
func Rows(state presenter.State) []Row {
	rows := make([]Row, 0, len(state.Displayed)+len(state.Queued))
	for _, d := range state.Displayed {
		rows = append(rows, Row{
			Status:   "displayed",
			ID:       d.ID,
			Name:     d.Name,
			Level:    d.Level,
			Priority: d.Priority,
			Since:    d.DisplayedAt,
		})
	}
	for _, q := range state.Queued {
		rows = append(rows, Row{
			Status:   "queued",
			ID:       q.ID,
			Name:     q.Name,
			Level:    q.Level,
			Priority: q.Priority,
			Summary:  q.Summary,
			Since:    q.QueuedAt,
		})
	}
	return rows
}

// PlainFormatter formats state as plain text, one entry per line.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. A custom template is
// executed once per Row.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes state as plain text.
func (f *PlainFormatter) Format(w io.Writer, state presenter.State) error {
	rows := Rows(state)

	if f.template != nil {
		for _, row := range rows {
			if err := f.template.Execute(w, row); err != nil {
				return err
			}
		}
		return nil
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-9s  %-10s  %4d  %s", row.Status, row.Level, row.Priority, rowLabel(row)))
		if f.opts.ShowTime && !row.Since.IsZero() {
			sb.WriteString(fmt.Sprintf(" (%s)", humanize.Time(row.Since)))
		}
		sb.WriteString("\n")
	}

	levels := make([]string, 0, len(state.Surfaces))
	for _, s := range state.Surfaces {
		levels = append(levels, s.Level)
	}
	if len(levels) == 0 {
		levels = append(levels, "none")
	}
	sb.WriteString(fmt.Sprintf("surfaces: %s  fallback: %s\n", strings.Join(levels, ","), state.Fallback))

	_, err := io.WriteString(w, sb.String())
	return err
}

func rowLabel(row Row) string {
	switch {
	case row.Name != "" && row.Summary != "":
		return row.Name + ": " + row.Summary
	case row.Name != "":
		return row.Name
	case row.Summary != "":
		return row.Summary
	default:
		return row.ID
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"ago":   humanize.Time,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

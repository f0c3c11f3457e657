package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/entrystack/internal/model"
)

// HistoryFormats lists the formats WriteHistory accepts.
var HistoryFormats = []FormatType{FormatPlain, FormatJSON, FormatYAML}

// WriteHistory writes journal records in the given format.
func WriteHistory(w io.Writer, format FormatType, records []model.HistoryRecord, opts FormatterOptions) error {
	switch format {
	case FormatPlain, "":
		return writeHistoryPlain(w, records, opts)
	case FormatJSON:
		if records == nil {
			records = []model.HistoryRecord{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(records); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown history format %q", format)
	}
}

func writeHistoryPlain(w io.Writer, records []model.HistoryRecord, opts FormatterOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range records {
		status := r.Status
		if r.Reason != "" {
			status += "/" + r.Reason
		}
		shown := "-"
		if r.WasDisplayed() {
			shown = r.OnScreen().Round(100 * time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s", status, r.Level, r.Priority, shown, historyLabel(r))
		if opts.ShowTime && !r.FinishedAt.IsZero() {
			fmt.Fprintf(tw, "\t%s", humanize.Time(r.FinishedAt))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func historyLabel(r model.HistoryRecord) string {
	return rowLabel(Row{ID: r.EntryID, Name: r.Name, Summary: r.Summary})
}

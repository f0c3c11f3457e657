package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/adapter/output"
	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/core"
	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/store"
)

var historyOpts struct {
	file string

	// Filter options
	filter string
	since  string
	level  string
	limit  int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format string
	noTime bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List entries that finished",
	Long: `List the entries entrystackd has dismissed or dropped, read from its
history journal.

Filter expressions are comma separated conditions that must all match.
Fields: name, app, summary, level, status, reason, priority, displayed,
finished. Operators: = != ~ (contains) ~= (regex) > < >= <=.

Examples:
  # Alerts from the last day, newest first
  entrystack history --since 1d --level alert

  # Entries that never reached the screen
  entrystack history --filter "displayed=false"

  # High priority entries by name, as JSON
  entrystack history --filter "priority>=high" --sort name -o json`,
	RunE: runHistory,
}

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
	force     bool
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the history journal",
	Long: `Remove old entries from the history journal.

entrystackd appends to the journal while it runs, so prune refuses to
rewrite it while the daemon is reachable unless --force is given.

Examples:
  # Remove entries older than 7 days
  entrystack history prune --older-than 7d

  # Keep only the 100 most recent entries
  entrystack history prune --keep 100

  # Preview what would be removed
  entrystack history prune --older-than 48h --dry-run`,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyOpts.file, "file", "",
		"Journal to read (default from entrystackd.toml)")

	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		`Filter expression (e.g. "level=alert,priority>=high")`)
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Only entries finished within this duration (e.g. 1h, 7d, 1w)")
	historyCmd.Flags().StringVarP(&historyOpts.level, "level", "l", "",
		"Only entries at this level (status-bar, alert, normal)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of entries to show (0=unlimited)")
	historyCmd.Flags().StringVar(&historyOpts.sortBy, "sort", "finished",
		"Sort by field (finished, name, level, priority)")
	historyCmd.Flags().StringVar(&historyOpts.sortOrder, "order", "desc",
		"Sort order (asc, desc)")
	historyCmd.Flags().StringVarP(&historyOpts.format, "output", "o", "plain",
		fmt.Sprintf("Output format %v", output.HistoryFormats))
	historyCmd.Flags().BoolVar(&historyOpts.noTime, "no-time", false,
		"Omit relative times in plain output")

	historyPruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove entries older than this duration (e.g. 48h, 7d, 1w)")
	historyPruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent entries (0=unlimited)")
	historyPruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without removing it")
	historyPruneCmd.Flags().BoolVar(&pruneOpts.force, "force", false,
		"Rewrite the journal even while entrystackd is running")
}

// journalPath returns --file, or the journal entrystackd is configured to
// write.
func journalPath() string {
	if historyOpts.file != "" {
		return historyOpts.file
	}
	daemonCfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Debug("using default journal path", "error", err)
		return config.HistoryPath()
	}
	return daemonCfg.History.JournalPath()
}

func runHistory(cmd *cobra.Command, args []string) error {
	format := output.FormatType(historyOpts.format)
	if !slices.Contains(output.HistoryFormats, format) {
		return fmt.Errorf("invalid output format %q, must be one of: %v", format, output.HistoryFormats)
	}

	path := journalPath()
	records, err := store.ReadJournal(path)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	logger.Debug("loaded history", "path", path, "count", len(records))

	records, err = selectHistory(records)
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.ShowTime = !historyOpts.noTime
	return output.WriteHistory(os.Stdout, format, records, opts)
}

// selectHistory applies the filter, sort and limit flags.
func selectHistory(records []model.HistoryRecord) ([]model.HistoryRecord, error) {
	if historyOpts.filter != "" {
		expr, err := core.ParseFilter(historyOpts.filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
		records = core.FilterWithExpr(records, expr)
	}

	var opts core.FilterOptions
	if historyOpts.since != "" {
		d, err := core.ParseDuration(historyOpts.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		opts.Since = d
	}
	if historyOpts.level != "" {
		level, err := model.ParseWindowLevel(historyOpts.level)
		if err != nil {
			return nil, err
		}
		opts.Level = &level
	}
	records = core.Filter(records, opts)

	field, err := core.ParseSortField(historyOpts.sortBy)
	if err != nil {
		return nil, err
	}
	order, err := core.ParseSortOrder(historyOpts.sortOrder)
	if err != nil {
		return nil, err
	}
	core.Sort(records, core.SortOptions{Field: field, Order: order})

	if historyOpts.limit > 0 && len(records) > historyOpts.limit {
		records = records[:historyOpts.limit]
	}
	return records, nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}
	olderThan, err := core.ParseDuration(pruneOpts.olderThan)
	if err != nil {
		return fmt.Errorf("invalid --older-than: %w", err)
	}

	path := journalPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Println("No entries in history")
		return nil
	}

	if !pruneOpts.dryRun && !pruneOpts.force && daemonRunning() {
		return fmt.Errorf("entrystackd is running; stop it first or pass --force")
	}

	journal, err := store.OpenJSONLJournal(path)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	records, err := journal.Load()
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	kept, removed := core.Prune(records, pruneOpts.keep, olderThan, time.Now())
	if len(removed) == 0 {
		fmt.Println("No entries to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Printf("Would remove %d entr%s:\n", len(removed), plural(len(removed)))
		for i, r := range removed {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(removed)-10)
				break
			}
			fmt.Printf("  - [%s] %s (%s)\n", r.Level, r.Summary, r.FinishedAt.Format(time.DateTime))
		}
		return nil
	}

	if err := journal.Rewrite(kept); err != nil {
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	fmt.Printf("Removed %d entr%s, kept %d\n", len(removed), plural(len(removed)), len(kept))
	return nil
}

func daemonRunning() bool {
	client, err := dbus.Connect()
	if err != nil {
		return false
	}
	_ = client.Close()
	return true
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

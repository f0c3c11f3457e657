package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/adapter/output"
	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/dbus"
)

var statusOpts struct {
	format   string
	template string
	noTime   bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print what is displayed and queued",
	Long: `Print a snapshot of the daemon: the entries on screen, the queue in
the order it will be shown, and the surfaces that exist.

Formats:
  plain    one line per entry (--template customizes it)
  json     the full snapshot
  yaml     the full snapshot
  waybar   a Waybar custom module status

For Waybar:

  "custom/entrystack": {
    "exec": "entrystack status -o waybar",
    "interval": 2,
    "return-type": "json",
    "on-click": "entrystack dismiss"
  }

Template fields for plain output: .Status, .ID, .Name, .Level, .Priority,
.Summary, .Since. Functions: ago, upper, lower.

  entrystack status --template '{{.Status}} {{.Name}} {{ago .Since}}'`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "output", "o", "",
		fmt.Sprintf("Output format %v (default from config)", config.OutputFormats))
	statusCmd.Flags().StringVar(&statusOpts.template, "template", "",
		"Go template for each plain row")
	statusCmd.Flags().BoolVar(&statusOpts.noTime, "no-time", false,
		"Omit relative times in plain output")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format := statusOpts.format
	if format == "" {
		format = getConfig().Output.Format
	}
	if !slices.Contains(config.OutputFormats, format) {
		return fmt.Errorf("invalid output format %q, must be one of: %v", format, config.OutputFormats)
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = statusOpts.template
	opts.ShowTime = !statusOpts.noTime

	formatter, err := output.NewFormatter(output.FormatType(format), opts)
	if err != nil {
		return err
	}

	err = withClient(func(ctx context.Context, client *dbus.Client) error {
		state, err := client.State(ctx)
		if err != nil {
			return err
		}
		return formatter.Format(cmd.OutOrStdout(), state)
	})

	// Waybar polls; keep the module alive with an offline status
	if err != nil && format == string(output.FormatWaybar) {
		logger.Debug("daemon unavailable", "error", err)
		return json.NewEncoder(cmd.OutOrStdout()).Encode(output.WaybarStatus{
			Alt:     "offline",
			Class:   "offline",
			Tooltip: err.Error(),
		})
	}
	return err
}

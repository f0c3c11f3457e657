package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of displayed and queued entries",
	Long: `Launch an interactive view of the daemon's state.

The view refreshes on every change the daemon announces and polls at the
configured interval as a fallback.

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       Show entry details
  d           Dismiss the selected entry
  t           Dismiss the entry on the normal level
  x           Clear the queue
  D           Dismiss everything
  l           Ask surfaces to relayout
  c           Copy entry ID to clipboard
  y           Copy entry as YAML to clipboard
  r           Refresh
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	var events <-chan dbus.ChangeEvent
	monitor := dbus.NewMonitor(client.Conn(), logger)
	if err := monitor.Start(); err != nil {
		logger.Warn("failed to subscribe to changes, polling only", "error", err)
	} else {
		events = monitor.Events()
		defer func() { _ = monitor.Stop() }()
	}

	return tui.Run(tui.RunOptions{
		Config: getConfig(),
		Source: client,
		Events: events,
	})
}

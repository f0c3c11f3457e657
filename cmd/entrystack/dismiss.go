package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

var dismissOpts struct {
	name     string
	priority int
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [displayed|specific|priority|enqueued|all]",
	Short: "Dismiss entries",
	Long: `Dismiss entries on screen, in the queue, or both.

  displayed   the entry on the normal level (default)
  specific    every entry named --name, shown or queued
  priority    every entry with a priority at most --priority
  enqueued    every queued entry; nothing on screen is touched
  all         everything, shown or queued

The command returns once every exit animation it started has finished.
Giving --name without a kind implies "specific".

Examples:
  entrystack dismiss
  entrystack dismiss --name sync
  entrystack dismiss priority --priority 250
  entrystack dismiss all`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"displayed", "specific", "priority", "enqueued", "all"},
	RunE:      runDismiss,
}

func init() {
	rootCmd.AddCommand(dismissCmd)

	dismissCmd.Flags().StringVarP(&dismissOpts.name, "name", "n", "",
		"Entry name for the specific kind")
	dismissCmd.Flags().IntVar(&dismissOpts.priority, "priority", int(model.PriorityNormal),
		"Highest priority removed by the priority kind")
}

func runDismiss(cmd *cobra.Command, args []string) error {
	var kind string
	if len(args) > 0 {
		kind = args[0]
	}

	d, err := resolveDescriptor(kind, dismissOpts.name, dismissOpts.priority)
	if err != nil {
		return err
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		logger.Debug("dismissing", "descriptor", d.String())
		return client.Dismiss(ctx, d)
	})
}

// resolveDescriptor turns the dismiss arguments into a descriptor.
func resolveDescriptor(kind, name string, priority int) (presenter.Descriptor, error) {
	if kind == "" && name != "" {
		kind = "specific"
	}
	return presenter.ParseDescriptor(kind, name, model.Priority(priority))
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
)

var queryOpts struct {
	quiet bool
}

var isDisplayingCmd = &cobra.Command{
	Use:   "is-displaying <name>",
	Short: "Report whether an entry with this name is on screen",
	Long: `Print "true" when an entry called <name> is displayed on any level.

With --quiet nothing is printed and the exit status is 1 when it is not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNameQuery(cmd, args[0], (*dbus.Client).IsDisplaying)
	},
}

var queueContainsCmd = &cobra.Command{
	Use:   "queue-contains <name>",
	Short: "Report whether an entry with this name is queued",
	Long: `Print "true" when an entry called <name> is waiting in the queue.

With --quiet nothing is printed and the exit status is 1 when it is not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNameQuery(cmd, args[0], (*dbus.Client).QueueContains)
	},
}

var responsiveCmd = &cobra.Command{
	Use:   "responsive <level> [on|off]",
	Short: "Get or set whether a level's surface takes input",
	Long: `Without a value, print whether the surface of <level> intercepts input.
With a value, change it. Levels: status-bar, alert, normal.

The setting is lost when the surface is torn down; new surfaces start
responsive or not depending on the entries they show.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"status-bar", "alert", "normal"},
	RunE:      runResponsive,
}

var relayoutCmd = &cobra.Command{
	Use:   "relayout",
	Short: "Ask every surface to lay out again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			return client.LayoutIfNeeded(ctx)
		})
	},
}

var insetsCmd = &cobra.Command{
	Use:   "insets",
	Short: "Print the safe-area insets",
	Long: `Print the safe-area insets of the daemon's current surface as
"top left bottom right". When nothing is displayed the insets fall back
to the configured status bar height.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			insets, err := client.SafeAreaInsets(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d %d\n", insets.Top, insets.Left, insets.Bottom, insets.Right)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{isDisplayingCmd, queueContainsCmd} {
		c.Flags().BoolVarP(&queryOpts.quiet, "quiet", "q", false,
			"Print nothing; report through the exit status")
	}
	rootCmd.AddCommand(isDisplayingCmd, queueContainsCmd, responsiveCmd, relayoutCmd, insetsCmd)
}

func runNameQuery(cmd *cobra.Command, name string, query func(*dbus.Client, context.Context, string) (bool, error)) error {
	var found bool
	err := withClient(func(ctx context.Context, client *dbus.Client) error {
		var err error
		found, err = query(client, ctx, name)
		return err
	})
	if err != nil {
		return err
	}

	if queryOpts.quiet {
		if !found {
			os.Exit(1)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(found))
	return nil
}

func runResponsive(cmd *cobra.Command, args []string) error {
	level, err := model.ParseWindowLevel(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			responsive, err := client.IsResponsive(ctx, level.String())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(responsive))
			return nil
		})
	}

	responsive, err := parseSwitch(args[1])
	if err != nil {
		return err
	}
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		return client.SetResponsive(ctx, level.String(), responsive)
	})
}

// parseSwitch accepts on/off as well as anything strconv.ParseBool does.
func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q, expected on or off", s)
	}
	return b, nil
}

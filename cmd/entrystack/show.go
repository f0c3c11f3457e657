package main

import (
	"context"
	"fmt"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/model"
)

// showOptions holds the flags of the show command.
type showOptions struct {
	appName      string
	icon         string
	name         string
	level        string
	precedence   string
	priority     int
	dropEnqueued bool
	duration     time.Duration
	statusBar    string
	interaction  string
	feedback     string
	claimPrimary bool
}

var showOpts showOptions

var showCmd = &cobra.Command{
	Use:   "show <summary> [body]",
	Short: "Display or queue an entry",
	Long: `Ask entrystackd to display an entry.

Unset flags fall back to the [show] section of the config file. An
override entry with a priority at least that of the entry on screen
replaces it; anything else waits in the queue.

Examples:
  # A quick toast on the normal level
  entrystack show "Saved" "All changes written"

  # A named banner that waits its turn
  entrystack show --level status-bar --precedence enqueue --name sync "Syncing"

  # An alert that clears everything queued and blocks input until dismissed
  entrystack show --level alert --priority 1000 --drop-enqueued \
      --duration 0 --interaction dismiss "Battery critical"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	f := showCmd.Flags()
	f.StringVar(&showOpts.appName, "app-name", "entrystack", "Application name shown on the entry")
	f.StringVar(&showOpts.icon, "icon", "", "Icon name or path")
	f.StringVar(&showOpts.name, "name", "", "Entry name used by dismiss and queries")
	f.StringVarP(&showOpts.level, "level", "l", "", "Window level (status-bar, alert, normal)")
	f.StringVarP(&showOpts.precedence, "precedence", "p", "", "Precedence (override, enqueue)")
	f.IntVar(&showOpts.priority, "priority", 0, "Priority 0-1000")
	f.BoolVar(&showOpts.dropEnqueued, "drop-enqueued", false, "Clear the queue before an override is shown")
	f.DurationVarP(&showOpts.duration, "duration", "d", 0, "How long the entry stays (0 keeps it until dismissed)")
	f.StringVar(&showOpts.statusBar, "status-bar", "", "Status bar style (ignored, light, dark, hidden)")
	f.StringVar(&showOpts.interaction, "interaction", "", "Outside input (forward, absorb, dismiss)")
	f.StringVar(&showOpts.feedback, "feedback", "", "Feedback cue (none, success, warning, error)")
	f.BoolVar(&showOpts.claimPrimary, "claim-primary", false, "Take keyboard focus while the entry shows")
}

func runShow(cmd *cobra.Command, args []string) error {
	defaults, err := getConfig().ShowAttributes()
	if err != nil {
		return err
	}

	options, err := buildShowOptions(showOpts, cmd.Flags().Changed, defaults)
	if err != nil {
		return err
	}

	summary := args[0]
	var body string
	if len(args) > 1 {
		body = args[1]
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		id, err := client.Display(ctx, summary, body, options)
		if err != nil {
			return err
		}
		logger.Debug("entry requested", "id", id, "summary", summary)
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	})
}

// buildShowOptions resolves the entry attributes from defaults and the flags
// the user set, validates them, and encodes them as Display options.
func buildShowOptions(opts showOptions, changed func(name string) bool, defaults model.Attributes) (map[string]godbus.Variant, error) {
	attrs := defaults

	if changed("name") {
		attrs.Name = opts.name
	}
	if changed("level") {
		level, err := model.ParseWindowLevel(opts.level)
		if err != nil {
			return nil, err
		}
		attrs.WindowLevel = level
	}

	kind := attrs.Precedence.Kind.String()
	if changed("precedence") {
		kind = opts.precedence
	}
	priority := attrs.Precedence.Priority
	if changed("priority") {
		priority = model.Priority(opts.priority)
	}
	precedence, err := model.ParsePrecedence(kind, priority, opts.dropEnqueued)
	if err != nil {
		return nil, err
	}
	attrs.Precedence = precedence

	if changed("duration") {
		attrs.DisplayDuration = opts.duration
	}
	if changed("status-bar") {
		attrs.StatusBar = model.StatusBarStyle(opts.statusBar)
	}
	if changed("interaction") {
		attrs.ScreenInteraction = model.ScreenInteraction(opts.interaction)
	}
	if changed("feedback") {
		attrs.Feedback = model.Feedback(opts.feedback)
	}
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	options := map[string]godbus.Variant{
		dbus.OptionLevel:        godbus.MakeVariant(attrs.WindowLevel.String()),
		dbus.OptionPrecedence:   godbus.MakeVariant(attrs.Precedence.Kind.String()),
		dbus.OptionPriority:     godbus.MakeVariant(int32(attrs.Precedence.Priority)),
		dbus.OptionDropEnqueued: godbus.MakeVariant(attrs.Precedence.DropEnqueuedEntries),
		dbus.OptionDurationMS:   godbus.MakeVariant(int32(attrs.DisplayDuration.Milliseconds())),
		dbus.OptionClaimPrimary: godbus.MakeVariant(opts.claimPrimary),
	}
	if attrs.Name != "" {
		options[dbus.OptionName] = godbus.MakeVariant(attrs.Name)
	}
	if opts.appName != "" {
		options[dbus.OptionAppName] = godbus.MakeVariant(opts.appName)
	}
	if opts.icon != "" {
		options[dbus.OptionIcon] = godbus.MakeVariant(opts.icon)
	}
	if attrs.StatusBar != "" {
		options[dbus.OptionStatusBar] = godbus.MakeVariant(string(attrs.StatusBar))
	}
	if attrs.ScreenInteraction != "" {
		options[dbus.OptionInteraction] = godbus.MakeVariant(string(attrs.ScreenInteraction))
	}
	if attrs.Feedback != "" {
		options[dbus.OptionFeedback] = godbus.MakeVariant(string(attrs.Feedback))
	}
	return options, nil
}

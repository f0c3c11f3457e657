package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available CSS themes",
	Long: `List the bundled themes and the user themes in
~/.config/entrystack/themes. A user theme with a bundled name overrides
the bundled one. Select a theme with [theme] name in entrystackd.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := theme.Available(config.ThemesDir())
		if err != nil {
			return fmt.Errorf("failed to list themes: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, t := range themes {
			fmt.Fprintf(w, "%s\t%s\n", t.Name, sourceLabel(t.Bundled, t.Path, t.IsDefault()))
		}
		return w.Flush()
	},
}

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List available entry layout templates",
	Long: `List the bundled layout templates and the user templates in
~/.config/entrystack/layouts. Select one per level with the template key
of a [surfaces.*] section in entrystackd.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := layout.NewLoader("").List()
		if err != nil {
			return fmt.Errorf("failed to list layouts: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, t := range templates {
			fmt.Fprintf(w, "%s\t%s\n", t.Name, sourceLabel(t.IsBundled, t.Path, t.Name == "default"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(themesCmd, layoutsCmd)
}

// sourceLabel describes where a theme or layout comes from.
func sourceLabel(bundled bool, path string, isDefault bool) string {
	var label string
	switch {
	case bundled && path != "":
		label = "user override: " + path
	case bundled:
		label = "bundled"
	default:
		label = path
	}
	if isDefault {
		label += " (default)"
	}
	return label
}

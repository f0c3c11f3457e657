package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/config"
)

var configOpts struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default configuration files",
	Long: `Write the default CLI configuration (config.toml) and daemon
configuration (entrystackd.toml) to ~/.config/entrystack. Existing files
are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		daemonPath, err := config.DaemonConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cli:     %s\n", config.ConfigPath())
		fmt.Fprintf(cmd.OutOrStdout(), "daemon:  %s\n", daemonPath)
		fmt.Fprintf(cmd.OutOrStdout(), "themes:  %s\n", config.ThemesDir())
		fmt.Fprintf(cmd.OutOrStdout(), "layouts: %s\n", config.LayoutsDir())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configOpts.force, "force", "f", false,
		"Overwrite existing files")
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cliPath := globalOpts.configPath
	if cliPath == "" {
		cliPath = config.ConfigPath()
	}
	daemonPath, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}

	writes := []struct {
		path  string
		write func(path string) error
	}{
		{cliPath, config.DefaultConfig().Save},
		{daemonPath, func(path string) error {
			return config.SaveDaemonConfig(config.DefaultDaemonConfig(), path)
		}},
	}

	for _, w := range writes {
		if !configOpts.force {
			if _, err := os.Stat(w.path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "exists, skipped: %s\n", w.path)
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		if err := w.write(w.path); err != nil {
			return fmt.Errorf("failed to write %s: %w", w.path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", w.path)
	}
	return nil
}

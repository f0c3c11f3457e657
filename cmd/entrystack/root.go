// Package main provides the CLI entrypoint for entrystack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		timeout    time.Duration
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "entrystack",
	Short: "Control the entrystack overlay daemon",
	Long: `entrystack controls a running entrystackd daemon.

entrystackd presents transient overlay entries (toasts, banners, alerts)
on one of three window levels. Each entry either overrides whatever is on
screen or waits in a priority queue until the screen is free.

Running entrystack without a subcommand launches the live watch view.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to the watch view when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/entrystack/config.toml)")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 10*time.Second,
		"How long to wait for the daemon")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// connect opens a client to the daemon, turning a missing daemon into a
// readable error.
func connect() (*dbus.Client, error) {
	client, err := dbus.Connect()
	if err != nil {
		if errors.Is(err, dbus.ErrDaemonNotRunning) {
			return nil, fmt.Errorf("%w (start it with: entrystackd)", err)
		}
		return nil, err
	}
	return client, nil
}

// withClient connects to the daemon and runs fn with a context bounded by
// --timeout.
func withClient(fn func(ctx context.Context, client *dbus.Client) error) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), globalOpts.timeout)
	defer cancel()
	return fn(ctx, client)
}

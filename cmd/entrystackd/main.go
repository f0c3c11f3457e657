// Package main is the entry point for the entrystackd overlay daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/entrystack/internal/audio"
	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/daemon"
	"github.com/jmylchreest/entrystack/internal/dbus"
	"github.com/jmylchreest/entrystack/internal/display"
	"github.com/jmylchreest/entrystack/internal/layout"
	"github.com/jmylchreest/entrystack/internal/presenter"
	"github.com/jmylchreest/entrystack/internal/store"
	"github.com/jmylchreest/entrystack/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.entrystackd"
	appName = "entrystackd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to entrystackd.toml (default: ~/.config/entrystack/entrystackd.toml)")
	checkConfig := flag.Bool("check-config", false, "Validate the configuration and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		logger.Error("failed to resolve config path", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadDaemonConfigFrom(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}

	if *checkConfig {
		fmt.Println("configuration OK:", path)
		return
	}

	os.Exit(run(cfg, path, logger))
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return config.DaemonConfigPath()
}

// run starts the GTK application and returns its exit status.
func run(cfg *config.DaemonConfig, configPath string, logger *slog.Logger) int {
	logger.Info("starting entrystackd", "version", version, "config", configPath)

	// Create the libadwaita application
	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		conn          *godbus.Conn
		notifyServer  *dbus.NotificationServer
		controlServer *dbus.ControlServer
		themeLoader   *theme.Loader
		audioManager  *audio.Manager
		configWatcher *daemon.ConfigWatcher
		journal       *store.JSONLJournal
		historyWriter *daemon.HistoryWriter
		running       atomic.Bool
	)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		glib.IdleAdd(func() {
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		var err error
		conn, err = godbus.ConnectSessionBus()
		if err != nil {
			logger.Error("failed to connect to session bus", "error", err)
			app.Quit()
			return
		}

		dispatcher := display.GLibDispatcher{}
		notifier := daemon.NewInternalNotifier(logger)

		// Theme
		themeLoader = theme.NewLoader(logger)
		if err := themeLoader.Use(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme, using default", "error", err)
			notifier.NotifyThemeError(err)
		}
		themeLoader.Apply(nil)
		themeLoader.SetReloadCallback(notifier.NotifyThemeReloaded)
		themeLoader.Watch(ctx)

		// Feedback cues
		audioManager = audio.NewManager(cfg, logger)
		audioManager.SetErrorCallback(notifier.NotifyAudioError)
		if err := audioManager.Start(ctx); err != nil {
			logger.Warn("failed to start audio manager", "error", err)
		}

		// Scheduler and the surfaces it drives
		backend := display.NewBackend(&app.Application, cfg, layout.NewLoader(""), logger)
		tracker := daemon.NewLifecycleTracker()
		scheduler := presenter.New(backend, backend,
			presenter.WithLogger(logger),
			presenter.WithObserver(tracker),
			presenter.WithObserver(audioManager),
			presenter.WithStatusBarHeight(cfg.Layout.StatusBarHeight),
		)
		svc := daemon.NewService(scheduler, dispatcher, tracker, cfg, logger)
		notifier.SetHandler(svc.ShowNotice)

		// Journal of finished entries read by `entrystack history`
		if cfg.History.Enabled {
			journal, err = store.OpenJSONLJournal(cfg.History.JournalPath())
			if err != nil {
				logger.Warn("history journal disabled", "error", err)
			} else {
				historyWriter = daemon.NewHistoryWriter(journal, logger)
				if err := historyWriter.Trim(cfg.History.MaxEntries); err != nil {
					logger.Warn("failed to trim history journal", "error", err)
				}
				historyWriter.Start(ctx)
				tracker.SetFinishedCallback(historyWriter.Record)
			}
		}

		// org.freedesktop.Notifications
		if cfg.DBus.Notifications {
			notifyServer = dbus.NewNotificationServer(logger)
			notifyServer.SetServerInfo(dbus.ServerInfo{
				Name:        appName,
				Vendor:      "entrystack",
				Version:     version,
				SpecVersion: "1.2",
			})
			notifyServer.SetNotifyHandler(svc.HandleNotification)
			notifyServer.SetCloseHandler(svc.HandleClose)
			if err := notifyServer.Start(conn); err != nil {
				logger.Warn("not serving notifications", "error", err)
				notifyServer = nil
			}
		}
		tracker.SetClosedCallback(func(dbusID uint32, reason dbus.CloseReason) {
			if notifyServer == nil {
				return
			}
			if err := notifyServer.EmitNotificationClosed(dbusID, reason); err != nil {
				logger.Warn("failed to emit close signal", "id", dbusID, "error", err)
			}
		})

		// Control interface used by the entrystack CLI
		if cfg.DBus.Control {
			controlServer = dbus.NewControlServer(svc, svc.DefaultAttributes, logger)
			if err := controlServer.Start(conn); err != nil {
				logger.Error("failed to start control interface", "error", err)
				app.Quit()
				return
			}
			tracker.SetChangedCallback(func(what, entryID string) {
				if err := controlServer.EmitChanged(what, entryID); err != nil {
					logger.Debug("failed to emit changed signal", "what", what, "error", err)
				}
			})
		}

		if notifyServer == nil && controlServer == nil {
			logger.Error("no D-Bus interface to serve; enable [dbus] notifications or control")
			app.Quit()
			return
		}

		// Hot-reload of entrystackd.toml
		if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
			logger.Warn("failed to create config directory", "error", err)
		}
		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
			svc.ApplyConfig(newConfig)
			audioManager.UpdateConfig(newConfig)

			dispatcher.Post(func() {
				backend.UpdateConfig(newConfig)

				if newConfig.Theme.Name != cfg.Theme.Name {
					if err := themeLoader.Use(newConfig.Theme.Name); err != nil {
						logger.Warn("failed to load new theme", "theme", newConfig.Theme.Name, "error", err)
						notifier.NotifyThemeError(err)
					} else {
						themeLoader.Watch(ctx)
						notifier.NotifyThemeReloaded(newConfig.Theme.Name)
					}
				}

				cfg = newConfig
				notifier.NotifyConfigReloaded()
			})
		})
		configWatcher.SetErrorCallback(notifier.NotifyConfigError)
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}

		logger.Info("entrystackd ready",
			"notifications", notifyServer != nil,
			"control", controlServer != nil,
		)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopWatching()
		}
		if audioManager != nil {
			audioManager.Stop()
		}
		if controlServer != nil {
			if err := controlServer.Stop(); err != nil {
				logger.Warn("failed to stop control interface", "error", err)
			}
		}
		if notifyServer != nil {
			_ = notifyServer.Stop()
		}
		if historyWriter != nil {
			historyWriter.Stop()
		}
		if journal != nil {
			_ = journal.Close()
		}
		if conn != nil {
			_ = conn.Close()
		}
		running.Store(false)
	})

	// gtk would otherwise parse our flags
	status := app.Run([]string{os.Args[0]})
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("entrystackd stopped")
	return 0
}

package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/model"
	"github.com/jmylchreest/entrystack/internal/presenter"
)

// SoundPlayer is the playback backend used by Manager.
type SoundPlayer interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	GetVolume() float64
	InvalidateCache(path string)
	ClearCache()
	Close()
}

// Manager plays the configured sound when an entry asking for feedback is
// displayed. It observes the scheduler.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  SoundPlayer
	watcher *Watcher
	config  *config.DaemonConfig

	sounds map[model.Feedback]string

	onError func(err error)
	// play runs playback; it is swapped for a synchronous call in tests.
	play func(fn func())
}

var _ presenter.Observer = (*Manager)(nil)

// NewManager creates a manager backed by a beep Player.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return NewManagerWithPlayer(cfg, NewPlayer(logger), logger)
}

// NewManagerWithPlayer creates a manager that plays through player.
func NewManagerWithPlayer(cfg *config.DaemonConfig, player SoundPlayer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		config:  cfg,
		sounds:  make(map[model.Feedback]string),
		play:    func(fn func()) { go fn() },
	}
	m.loadSoundConfig()
	return m
}

// SetErrorCallback sets the function told about failed playback.
func (m *Manager) SetErrorCallback(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// loadSoundConfig resolves the per-feedback sound files from the config.
func (m *Manager) loadSoundConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Config uses 0-100, the player 0.0-1.0.
	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	m.sounds = make(map[model.Feedback]string)
	for _, feedback := range []model.Feedback{model.FeedbackSuccess, model.FeedbackWarning, model.FeedbackError} {
		path := m.config.SoundForFeedback(feedback)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "feedback", feedback, "path", path)
			continue
		}
		m.sounds[feedback] = path
		m.logger.Debug("loaded sound", "feedback", feedback, "path", path)
	}
}

func (m *Manager) soundPaths() map[model.Feedback]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sounds := make(map[model.Feedback]string, len(m.sounds))
	maps.Copy(sounds, m.sounds)
	return sounds
}

// Start preloads the configured sounds and watches them for changes.
func (m *Manager) Start(ctx context.Context) error {
	sounds := m.soundPaths()
	m.preload(sounds)

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

func (m *Manager) preload(sounds map[model.Feedback]string) {
	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		if err := m.watcher.Watch(path); err != nil {
			m.logger.Debug("failed to watch sound", "path", path, "error", err)
		}
	}
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayFeedback plays the sound configured for feedback.
func (m *Manager) PlayFeedback(feedback model.Feedback) error {
	m.mu.RLock()
	enabled := m.config.Audio.Enabled
	path, ok := m.sounds[feedback]
	m.mu.RUnlock()

	if !enabled || feedback == model.FeedbackNone || feedback == "" {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for feedback", "feedback", feedback)
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig switches to cfg and reloads the sounds.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.watcher.UnwatchAll()
	m.loadSoundConfig()
	m.preload(m.soundPaths())

	m.logger.Debug("audio manager config updated")
}

// EntryDisplayed implements presenter.Observer.
func (m *Manager) EntryDisplayed(entry *model.Entry) {
	feedback := entry.Attributes.Feedback
	if feedback == model.FeedbackNone || feedback == "" {
		return
	}

	m.play(func() {
		if err := m.PlayFeedback(feedback); err != nil {
			m.logger.Debug("failed to play feedback", "entry_id", entry.ID, "feedback", feedback, "error", err)
			m.mu.RLock()
			onError := m.onError
			m.mu.RUnlock()
			if onError != nil {
				onError(err)
			}
		}
	})
}

// EntryQueued implements presenter.Observer.
func (m *Manager) EntryQueued(*model.Entry) {}

// EntryDropped implements presenter.Observer.
func (m *Manager) EntryDropped(*model.Entry, presenter.DropReason) {}

// EntryDismissed implements presenter.Observer.
func (m *Manager) EntryDismissed(model.WindowLevel, string, model.DismissReason) {}

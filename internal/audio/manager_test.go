package audio

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/config"
	"github.com/jmylchreest/entrystack/internal/model"
)

type fakePlayer struct {
	mu          sync.Mutex
	played      []string
	preloaded   []string
	invalidated []string
	volume      float64
	playErr     error
	cleared     int
	closed      bool
}

func (p *fakePlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, path)
	return p.playErr
}

func (p *fakePlayer) Preload(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preloaded = append(p.preloaded, path)
	return nil
}

func (p *fakePlayer) SetVolume(volume float64) { p.volume = volume }
func (p *fakePlayer) GetVolume() float64 { return p.volume }

func (p *fakePlayer) InvalidateCache(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidated = append(p.invalidated, path)
}

func (p *fakePlayer) ClearCache() { p.cleared++ }
func (p *fakePlayer) Close() { p.closed = true }

func (p *fakePlayer) invalidatedPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.invalidated...)
}

// soundConfig writes empty sound files and points the config at them.
func soundConfig(t *testing.T) (*config.DaemonConfig, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultDaemonConfig()
	cfg.Audio.Volume = 50
	cfg.Audio.Sounds.Success = filepath.Join(dir, "success.wav")
	cfg.Audio.Sounds.Error = filepath.Join(dir, "error.ogg")
	cfg.Audio.Sounds.Warning = filepath.Join(dir, "missing.wav")
	require.NoError(t, os.WriteFile(cfg.Audio.Sounds.Success, nil, 0o644))
	require.NoError(t, os.WriteFile(cfg.Audio.Sounds.Error, nil, 0o644))
	return cfg, dir
}

func newSyncManager(cfg *config.DaemonConfig, player *fakePlayer) *Manager {
	m := NewManagerWithPlayer(cfg, player, nil)
	m.play = func(fn func()) { fn() }
	return m
}

func displayedEntry(t *testing.T, feedback model.Feedback) *model.Entry {
	t.Helper()
	attrs := model.DefaultAttributes()
	attrs.Feedback = feedback
	entry, err := model.NewEntry(model.Content{Summary: "cue"}, attrs)
	require.NoError(t, err)
	return entry
}

func TestManager_PlaysFeedbackOnDisplay(t *testing.T) {
	cfg, _ := soundConfig(t)
	player := &fakePlayer{}
	m := newSyncManager(cfg, player)

	assert.InDelta(t, 0.5, player.volume, 0.001)

	m.EntryDisplayed(displayedEntry(t, model.FeedbackSuccess))
	m.EntryDisplayed(displayedEntry(t, model.FeedbackNone))
	m.EntryDisplayed(displayedEntry(t, model.FeedbackWarning))
	m.EntryDisplayed(displayedEntry(t, model.FeedbackError))

	assert.Equal(t, []string{cfg.Audio.Sounds.Success, cfg.Audio.Sounds.Error}, player.played)
}

func TestManager_Disabled(t *testing.T) {
	cfg, _ := soundConfig(t)
	cfg.Audio.Enabled = false
	player := &fakePlayer{}
	m := newSyncManager(cfg, player)

	require.NoError(t, m.PlayFeedback(model.FeedbackSuccess))
	assert.Empty(t, player.played)
}

func TestManager_ErrorCallback(t *testing.T) {
	cfg, _ := soundConfig(t)
	player := &fakePlayer{playErr: errors.New("no device")}
	m := newSyncManager(cfg, player)

	var got error
	m.SetErrorCallback(func(err error) { got = err })
	m.EntryDisplayed(displayedEntry(t, model.FeedbackSuccess))

	assert.EqualError(t, got, "no device")
}

func TestManager_UpdateConfig(t *testing.T) {
	cfg, dir := soundConfig(t)
	player := &fakePlayer{}
	m := newSyncManager(cfg, player)

	next := config.DefaultDaemonConfig()
	next.Audio.Volume = 100
	next.Audio.Sounds.Warning = filepath.Join(dir, "warning.wav")
	require.NoError(t, os.WriteFile(next.Audio.Sounds.Warning, nil, 0o644))

	m.UpdateConfig(next)

	assert.Equal(t, 1, player.cleared)
	assert.InDelta(t, 1.0, player.volume, 0.001)
	assert.Equal(t, []string{next.Audio.Sounds.Warning}, player.preloaded)

	require.NoError(t, m.PlayFeedback(model.FeedbackSuccess))
	require.NoError(t, m.PlayFeedback(model.FeedbackWarning))
	assert.Equal(t, []string{next.Audio.Sounds.Warning}, player.played)
}

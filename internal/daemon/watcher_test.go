package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/config"
)

func TestConfigWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entrystackd.toml")
	require.NoError(t, config.SaveDaemonConfig(config.DefaultDaemonConfig(), path))

	var mu sync.Mutex
	var reloaded []*config.DaemonConfig
	var failures []error

	w := NewConfigWatcher(path, nil)
	w.SetReloadDelay(10 * time.Millisecond)
	w.SetReloadCallback(func(cfg *config.DaemonConfig) {
		mu.Lock()
		defer mu.Unlock()
		reloaded = append(reloaded, cfg)
	})
	w.SetErrorCallback(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, config.DefaultDaemonConfig()))
	defer w.Stop()

	cfg := config.DefaultDaemonConfig()
	cfg.Layout.StatusBarHeight = 48
	require.NoError(t, config.SaveDaemonConfig(cfg, path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 48, w.CurrentConfig().Layout.StatusBarHeight)

	require.NoError(t, os.WriteFile(path, []byte("[layout]\nstatus_bar_height = -4\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failures) > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 48, w.CurrentConfig().Layout.StatusBarHeight)
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entrystackd.toml")
	require.NoError(t, config.SaveDaemonConfig(config.DefaultDaemonConfig(), path))

	calls := 0
	var mu sync.Mutex
	w := NewConfigWatcher(path, nil)
	w.SetReloadDelay(5 * time.Millisecond)
	w.SetReloadCallback(func(*config.DaemonConfig) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})

	require.NoError(t, w.Start(context.Background(), config.DefaultDaemonConfig()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestConfigWatcher_StartMissingDir(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "missing", "entrystackd.toml"), nil)
	assert.Error(t, w.Start(context.Background(), nil))
	w.Stop()
}

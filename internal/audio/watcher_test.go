package audio

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_InvalidatesChangedSounds(t *testing.T) {
	dir := t.TempDir()
	sound := filepath.Join(dir, "success.wav")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(sound, []byte("a"), 0o644))

	player := &fakePlayer{}
	w := NewWatcher(player, nil)
	require.NoError(t, w.Watch(sound))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsRunning())

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(sound, []byte("b"), 0o644))

	require.Eventually(t, func() bool {
		return slices.Contains(player.invalidatedPaths(), sound)
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, player.invalidatedPaths(), other)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w := NewWatcher(&fakePlayer{}, nil)
	w.Stop()
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}

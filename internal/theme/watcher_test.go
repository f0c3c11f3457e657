package theme

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsChangedCSS(t *testing.T) {
	dir := t.TempDir()
	path := writeCSS(t, dir, "mine.css", ".entry { color: red; }")

	theme, err := Load("mine", path)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []string
	w := NewWatcher(theme, func(css string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, css)
	}, nil)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.Running())

	writeCSS(t, dir, "_extra.css", ".extra {}")
	require.NoError(t, os.WriteFile(path, []byte("@import \"_extra.css\";\n.entry { color: blue; }"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && containsAll(got[len(got)-1], "color: blue", ".extra")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_BundledThemeNotWatched(t *testing.T) {
	theme, ok := loadBundled(DefaultThemeName)
	require.True(t, ok)

	w := NewWatcher(theme, nil, nil)
	require.NoError(t, w.Start(context.Background()))
	assert.False(t, w.Running())
	w.Stop()
}

func TestWatcher_StopIdempotent(t *testing.T) {
	path := writeCSS(t, t.TempDir(), "mine.css", ".entry {}")
	theme, err := Load("mine", path)
	require.NoError(t, err)

	w := NewWatcher(theme, nil, nil)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
	assert.False(t, w.Running())
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

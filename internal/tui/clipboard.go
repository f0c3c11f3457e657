package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/jmylchreest/entrystack/internal/config"
)

const clipboardTimeout = 5 * time.Second

// copyText puts text on the system clipboard, through the configured command
// when one is set.
func copyText(text string, cfg *config.Config) error {
	if cfg == nil || strings.TrimSpace(cfg.Clipboard.Command) == "" {
		if clipboard.Unsupported {
			return errors.New("no clipboard utility found (install wl-clipboard, xclip or xsel)")
		}
		return clipboard.WriteAll(text)
	}

	args := strings.Fields(cfg.Clipboard.Command)
	ctx, cancel := context.WithTimeout(context.Background(), clipboardTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// Package output applies transcript side effects after transcription:
// clipboard placement and optional paste dispatch.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/dotyigit/sobottaai/internal/config"
)

const commandTimeout = 2 * time.Second

// Committer writes finished transcripts to the clipboard and optionally
// triggers a paste command afterwards.
type Committer struct {
	clipboard []string
	paste     []string
	logger    *slog.Logger
}

// New constructs a committer from the output configuration.
func New(cfg config.OutputConfig, logger *slog.Logger) *Committer {
	return &Committer{
		clipboard: cfg.Clipboard,
		paste:     cfg.Paste,
		logger:    logger,
	}
}

// Commit places the transcript on the clipboard and, when a paste command
// is configured, dispatches it. Paste failures are logged but do not fail
// the commit; the clipboard already holds the text.
func (c *Committer) Commit(ctx context.Context, transcript string) error {
	if transcript == "" {
		return nil
	}

	clipCtx, clipCancel := context.WithTimeout(ctx, commandTimeout)
	defer clipCancel()
	if err := runCommandWithInput(clipCtx, c.clipboard, transcript); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}

	if len(c.paste) == 0 {
		return nil
	}

	pasteCtx, pasteCancel := context.WithTimeout(ctx, commandTimeout)
	defer pasteCancel()
	if err := runCommandWithInput(pasteCtx, c.paste, ""); err != nil {
		if c.logger != nil {
			c.logger.Error("paste dispatch failed; clipboard remains set", "error", err.Error())
		}
	}
	return nil
}

// runCommandWithInput executes argv and writes input to its stdin when
// non-empty.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}

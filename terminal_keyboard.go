//go:build !windows

package vip8

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/term"
)

// TerminalKeyboard reads the keys from the controlling terminal in raw mode
type TerminalKeyboard struct {
	Device  string
	Layout  KeyboardLayout
	HoldFor time.Duration
}

func NewTerminalKeyboard() *TerminalKeyboard {
	return &TerminalKeyboard{
		Device:  "/dev/tty",
		Layout:  DefaultKeyboardLayout,
		HoldFor: DefaultHoldFor,
	}
}

// Listen forwards the keys to sink until the context is done or the user quits with Esc or Ctrl-C,
// in which case ErrQuitRequested is returned. The terminal is restored before returning.
func (kb *TerminalKeyboard) Listen(ctx context.Context, sink KeySink) error {
	tty, err := term.Open(kb.Device, term.RawMode)
	if err != nil {
		return fmt.Errorf("opening %s: %w", kb.Device, err)
	}
	defer func() {
		if err := tty.Restore(); err != nil {
			slog.Error("Error restoring the terminal", slog.Any("error", err))
		}
		tty.Close()
	}()

	slog.Info("Listening for keys", slog.String("device", kb.Device))

	done := make(chan error, 1)
	go func() {
		done <- pumpKeys(tty, sink, kb.Layout, kb.HoldFor)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

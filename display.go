package vip8

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render receives the display buffer every time it changes.
	// The buffer is only valid during the call.
	Render(Screen) error
}

// DummyDisplay is a display that does nothing
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(screen Screen) error {
	return nil
}

// InMemoryDisplay keeps a copy of the last rendered screen
type InMemoryDisplay struct {
	Screen  Screen
	Renders int
}

func NewInMemoryDisplay() *InMemoryDisplay {
	return &InMemoryDisplay{
		Screen: make(Screen, ScreenSize),
	}
}

func (d *InMemoryDisplay) Boot() error {
	return nil
}

func (d *InMemoryDisplay) Render(screen Screen) error {
	copy(d.Screen, screen)
	d.Renders++

	return nil
}

const ESC = 0x1B

type TerminalDisplay struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewTerminalDisplay() *TerminalDisplay {
	return NewTerminalDisplayWithOutput(os.Stdout)
}

func NewTerminalDisplayWithOutput(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Display.
func (disp *TerminalDisplay) Boot() error {
	if f, ok := disp.terminal.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w, h, err := term.GetSize(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("reading terminal size: %w", err)
		}
		needW := ScreenWidth*len(disp.OnChar) + 1
		if w < needW || h < ScreenHeight {
			slog.Warn("Terminal is smaller than the screen",
				slog.Int("width", w), slog.Int("height", h),
				slog.Int("wantWidth", needW), slog.Int("wantHeight", ScreenHeight))
		}
	}

	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

func (disp *TerminalDisplay) Render(screen Screen) error {
	buff := make([]byte, 0, ScreenWidth*ScreenHeight*len(disp.OnChar)+ScreenHeight*2+64)
	buff = append(buff, ESC, '[', '1', 'H')
	for i, b := range screen {
		for bitJ := 0; bitJ < 8; bitJ++ {
			bit := b & (1 << (7 - byte(bitJ)))

			if bit > 0 {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}

		if ((i+1)*8)%ScreenWidth == 0 {
			buff = append(buff, '|', '\r', '\n')
		}
	}

	_, err := disp.terminal.Write(buff)
	return err
}

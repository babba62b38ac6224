package vip8

import (
	"errors"
	"io"
	"time"
)

var ErrQuitRequested = errors.New("quit requested from the keyboard")

// KeySink receives the key events of a host keyboard
type KeySink interface {
	KeyDown(k byte)
	KeyUp(k byte)
}

const (
	keyEsc   = 0x1B
	keyCtrlC = 0x03
)

// DefaultHoldFor is how long a key reported by a terminal stays pressed
const DefaultHoldFor = 150 * time.Millisecond

// pumpKeys reads characters from r and forwards them to sink until r is exhausted or Esc/Ctrl-C is read.
// Character streams only report presses, so every key is released holdFor after its last press.
func pumpKeys(r io.Reader, sink KeySink, layout KeyboardLayout, holdFor time.Duration) error {
	lookup := LookupMap(layout)
	releases := map[byte]*time.Timer{}
	defer func() {
		for k, t := range releases {
			if t.Stop() {
				sink.KeyUp(k)
			}
		}
	}()

	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			if c == keyEsc || c == keyCtrlC {
				return ErrQuitRequested
			}

			k, ok := lookup[rune(c)]
			if !ok {
				continue
			}

			sink.KeyDown(k)
			if t, ok := releases[k]; ok && t.Stop() {
				t.Reset(holdFor)
			} else {
				releases[k] = time.AfterFunc(holdFor, func() {
					sink.KeyUp(k)
				})
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

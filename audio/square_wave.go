package audio

import (
	"encoding/binary"
	"sync/atomic"
)

// SquareWave is an endless mono signed 16-bit little-endian square wave.
// While muted it produces silence, so a player can keep reading from it.
type SquareWave struct {
	halfPeriod int
	amplitude  int16
	position   int
	muted      atomic.Bool
}

func NewSquareWave(sampleRate, frequency int, amplitude int16) *SquareWave {
	w := &SquareWave{
		halfPeriod: max(sampleRate/(2*frequency), 1),
		amplitude:  amplitude,
	}
	w.muted.Store(true)

	return w
}

func (w *SquareWave) Mute() {
	w.muted.Store(true)
}

func (w *SquareWave) Unmute() {
	w.muted.Store(false)
}

func (w *SquareWave) IsMuted() bool {
	return w.muted.Load()
}

// Read implements io.Reader.
func (w *SquareWave) Read(p []byte) (int, error) {
	n := len(p) &^ 1
	muted := w.muted.Load()

	for i := 0; i < n; i += 2 {
		var sample int16
		if !muted {
			sample = w.amplitude
			if (w.position/w.halfPeriod)%2 == 1 {
				sample = -w.amplitude
			}
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(sample))
		w.position = (w.position + 1) % (2 * w.halfPeriod)
	}

	return n, nil
}

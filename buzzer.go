package vip8

import "sync/atomic"

// Buzzer sounds while the sound timer of the machine is above zero.
// The console only calls Play and Stop on transitions.
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// DummyBuzzer is silent. It remembers whether it should be sounding and how many beeps it was asked for.
type DummyBuzzer struct {
	playing atomic.Bool
	beeps   atomic.Uint64
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{}
}

// Boot implements Buzzer.
func (b *DummyBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *DummyBuzzer) Play() {
	if !b.playing.Swap(true) {
		b.beeps.Add(1)
	}
}

// Stop implements Buzzer.
func (b *DummyBuzzer) Stop() {
	b.playing.Store(false)
}

func (b *DummyBuzzer) IsPlaying() bool {
	return b.playing.Load()
}

// Beeps counts the times the buzzer started sounding
func (b *DummyBuzzer) Beeps() uint64 {
	return b.beeps.Load()
}

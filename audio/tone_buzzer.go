// Package audio plays the buzzer of the console on the host sound card
package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultAmplitude  = 6000
)

// ToneBuzzer implements vip8.Buzzer with a square wave played through oto
type ToneBuzzer struct {
	SampleRate int
	Frequency  int
	Amplitude  int16

	wave   *SquareWave
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

func NewToneBuzzer() *ToneBuzzer {
	return &ToneBuzzer{
		SampleRate: DefaultSampleRate,
		Frequency:  DefaultFrequency,
		Amplitude:  DefaultAmplitude,
	}
}

// Boot implements vip8.Buzzer.
// It opens the audio device and starts a silent player.
func (b *ToneBuzzer) Boot() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player != nil {
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   b.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	b.ctx = ctx
	b.wave = NewSquareWave(b.SampleRate, b.Frequency, b.Amplitude)
	b.player = ctx.NewPlayer(b.wave)
	b.player.Play()

	slog.Info("Buzzer ready", slog.Int("sampleRate", b.SampleRate), slog.Int("frequency", b.Frequency))

	return nil
}

// Play implements vip8.Buzzer.
func (b *ToneBuzzer) Play() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.wave != nil {
		b.wave.Unmute()
	}
}

// Stop implements vip8.Buzzer.
func (b *ToneBuzzer) Stop() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.wave != nil {
		b.wave.Mute()
	}
}

// Close releases the player
func (b *ToneBuzzer) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player == nil {
		return nil
	}

	err := b.player.Close()
	b.player = nil
	b.wave = nil

	return err
}

package vip8

import (
	"log/slog"
	"time"
)

// MachineRoutineInterpreter interpretes 0nnn instructions.
// Modern interpreters ignore them, so a machine without one treats them as unknown opcodes.
type MachineRoutineInterpreter func(opCode uint16, m *Machine) error

// Clock returns the current time. It is only used to decay the timers.
type Clock func() time.Time

// Config of a Machine
type Config struct {
	Random                    RandomSource
	Clock                     Clock
	Logger                    *slog.Logger
	MachineRoutineInterpreter MachineRoutineInterpreter
}

type ConfigCb func(config *Config)

func defaultConfig() *Config {
	return &Config{
		Random:                    NewCryptoRandom(),
		Clock:                     time.Now,
		Logger:                    slog.Default(),
		MachineRoutineInterpreter: nil,
	}
}

// WithRandom replaces the source of the RND instruction
func WithRandom(r RandomSource) ConfigCb {
	return func(config *Config) {
		config.Random = r
	}
}

// WithClock replaces the wall clock used by the timers
func WithClock(c Clock) ConfigCb {
	return func(config *Config) {
		config.Clock = c
	}
}

func WithLogger(l *slog.Logger) ConfigCb {
	return func(config *Config) {
		config.Logger = l
	}
}

func WithMachineRoutineInterpreter(mri MachineRoutineInterpreter) ConfigCb {
	return func(config *Config) {
		config.MachineRoutineInterpreter = mri
	}
}

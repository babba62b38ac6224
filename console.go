package vip8

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var ErrConsoleIsNotBooted = errors.New("the console has not been booted properly")
var ErrNoProgramLoaded = errors.New("there is no program loaded")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 1
)

// Console drives a Machine at a given speed and connects it to its peripherals.
// Unlike the Machine, it is safe to use from several goroutines: the loop runs in one of them
// while the host sends keys and inspects the state from others.
type Console struct {
	mu      sync.Mutex
	machine *Machine
	program []byte
	configs []ConfigCb

	cycles    atomic.Uint64
	speedInHz atomic.Uint32
	step      atomic.Int64

	Display Display
	Buzzer  Buzzer

	// ExitOnHalt makes Loop return as soon as the machine halts
	ExitOnHalt bool

	isBooted        bool
	isPaused        atomic.Bool
	isBuzzing       bool
	renderedVersion uint
	lastError       error

	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

// NewConsole creates a console without program. The configs are applied to every machine it creates.
func NewConsole(display Display, buzzer Buzzer, configs ...ConfigCb) *Console {
	c := &Console{
		configs: configs,
		Display: display,
		Buzzer:  buzzer,

		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	c.SetSpeedInHz(DefaultSpeed)

	return c
}

func (c *Console) IsRunning() bool {
	return !c.isPaused.Load()
}

// Start resumes the loop
func (c *Console) Start() {
	c.isPaused.Store(false)
}

// Stop pauses the loop. The machine keeps its state.
func (c *Console) Stop() {
	c.isPaused.Store(true)
}

func (c *Console) SpeedInHz() uint {
	return uint(c.speedInHz.Load())
}

// SetSpeedInHz sets the number of instructions per second, clamped to [MinSpeed, MaxSpeed]
func (c *Console) SetSpeedInHz(inHz uint) {
	inHz = min(max(inHz, MinSpeed), MaxSpeed)
	c.speedInHz.Store(uint32(inHz))
	c.step.Store(int64(time.Second / time.Duration(inHz)))
}

func (c *Console) Cycles() uint64 {
	return c.cycles.Load()
}

// LastError returns the error that stopped the last cycle, if any
func (c *Console) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastError
}

// Boot initializes all the components
// If the console was already booted, this method is a noop
func (c *Console) Boot() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isBooted {
		return nil
	}

	if err := c.Display.Boot(); err != nil {
		return err
	}

	if err := c.Buzzer.Boot(); err != nil {
		return err
	}

	c.isBooted = true

	return nil
}

func (c *Console) booted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isBooted
}

// LoadProgram loads the program into a fresh machine
func (c *Console) LoadProgram(program []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine == nil {
		m, err := NewMachine(program, c.configs...)
		if err != nil {
			return err
		}
		c.machine = m
	} else if err := c.machine.Reset(program); err != nil {
		return err
	}

	c.program = append([]byte(nil), program...)

	return c.afterReset()
}

// Reset restarts the last loaded program
func (c *Console) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine == nil {
		return ErrNoProgramLoaded
	}

	if err := c.machine.Reset(c.program); err != nil {
		return err
	}

	return c.afterReset()
}

func (c *Console) afterReset() error {
	c.cycles.Store(0)
	c.lastError = nil

	if !c.isBooted {
		return nil
	}

	return c.refreshPeripherals()
}

// KeyDown forwards a key press to the machine
func (c *Console) KeyDown(k byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine != nil {
		c.machine.KeyDown(k)
	}
}

// KeyUp forwards a key release to the machine
func (c *Console) KeyUp(k byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine != nil {
		c.machine.KeyUp(k)
	}
}

// Snapshot returns the registers of the machine, false if there is no program loaded
func (c *Console) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.machine == nil {
		return Snapshot{}, false
	}

	return c.machine.Snapshot(), true
}

// Screen returns a copy of the display buffer
func (c *Console) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := make(Screen, ScreenSize)
	if c.machine != nil {
		copy(s, c.machine.Screen())
	}

	return s
}

func (c *Console) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.machine != nil && c.machine.Halted()
}

// LoopAtSpeed sets the speed and starts the loop
func (c *Console) LoopAtSpeed(ctx context.Context, speedInHz uint) error {
	c.SetSpeedInHz(speedInHz)
	return c.Loop(ctx)
}

// Loop runs the machine at the current speed until the context is done.
// With ExitOnHalt it also returns when the machine halts, with the fault that halted it if any.
func (c *Console) Loop(ctx context.Context) error {
	if !c.booted() {
		return ErrConsoleIsNotBooted
	}

	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		halted, err := c.runNextCycle(false)
		if err != nil {
			slog.Error("Console cycle failed", slog.Any("error", err))
		}
		if halted && c.ExitOnHalt {
			return err
		}

		// Prevent the machine from running faster than expected
		time.Sleep(max(time.Duration(c.step.Load())-time.Since(last), 0))
		last = time.Now()
	}
}

// LoopOnce runs a single cycle bypassing the pause state
func (c *Console) LoopOnce() error {
	if !c.booted() {
		return ErrConsoleIsNotBooted
	}

	_, err := c.runNextCycle(true)

	return err
}

func (c *Console) runNextCycle(force bool) (bool, error) {
	if c.isPaused.Load() && !force {
		return false, nil
	}

	c.mu.Lock()
	if c.machine == nil || c.machine.Halted() {
		halted := c.machine != nil
		c.mu.Unlock()
		return halted, nil
	}
	c.mu.Unlock()

	c.runHooks(c.beforeCycleHooks)

	c.mu.Lock()
	err := c.machine.Step()
	c.cycles.Add(1)
	halted := c.machine.Halted()
	if rErr := c.refreshPeripherals(); err == nil {
		err = rErr
	}
	c.lastError = err
	c.mu.Unlock()

	if err != nil {
		c.runHooks(c.errorHooks)
		return halted, err
	}

	c.runHooks(c.afterCycleHooks)

	return halted, nil
}

// refreshPeripherals renders the screen if it changed and keeps the buzzer in sync with the sound timer
func (c *Console) refreshPeripherals() error {
	if v := c.machine.ScreenVersion(); v != c.renderedVersion {
		c.renderedVersion = v
		if err := c.Display.Render(c.machine.Screen()); err != nil {
			return err
		}
	}

	if buzzing := c.machine.IsSoundTimerActive(); buzzing != c.isBuzzing {
		c.isBuzzing = buzzing
		if buzzing {
			c.Buzzer.Play()
		} else {
			c.Buzzer.Stop()
		}
	}

	return nil
}

package vip8_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guslan/vip8"
)

func newConsole(t *testing.T, program []byte, configs ...vip8.ConfigCb) (*vip8.Console, *vip8.InMemoryDisplay, *vip8.DummyBuzzer) {
	t.Helper()

	display := vip8.NewInMemoryDisplay()
	buzzer := vip8.NewDummyBuzzer()
	console := vip8.NewConsole(display, buzzer, append([]vip8.ConfigCb{vip8.WithLogger(quietLogger)}, configs...)...)

	if program != nil {
		if err := console.LoadProgram(program); err != nil {
			t.Fatalf(`LoadProgram() returned an error %v`, err)
		}
	}
	if err := console.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	return console, display, buzzer
}

func loopNTimes(t *testing.T, c *vip8.Console, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := c.LoopOnce(); err != nil {
			t.Fatalf(`LoopOnce() returned an error %v`, err)
		}
	}
}

func TestConsoleNeedsBoot(t *testing.T) {
	console := vip8.NewConsole(vip8.NewDummyDisplay(), vip8.NewDummyBuzzer())

	if err := console.LoopOnce(); !errors.Is(err, vip8.ErrConsoleIsNotBooted) {
		t.Fatalf(`LoopOnce() returned %v, expected %v`, err, vip8.ErrConsoleIsNotBooted)
	}
	if err := console.Loop(context.Background()); !errors.Is(err, vip8.ErrConsoleIsNotBooted) {
		t.Fatalf(`Loop() returned %v, expected %v`, err, vip8.ErrConsoleIsNotBooted)
	}
	if err := console.Reset(); !errors.Is(err, vip8.ErrNoProgramLoaded) {
		t.Fatalf(`Reset() returned %v, expected %v`, err, vip8.ErrNoProgramLoaded)
	}
	if _, ok := console.Snapshot(); ok {
		t.Fatalf(`Snapshot() reported a machine without a program`)
	}
}

func TestConsoleRendersOnlyChanges(t *testing.T) {
	console, display, _ := newConsole(t, []byte{
		0x00, 0xE0,
		0x60, 0x00,
		0x00, 0xE0,
	})

	loopNTimes(t, console, 1)
	if display.Renders != 1 {
		t.Fatalf(`display.Renders = %d after CLS, expected 1`, display.Renders)
	}

	loopNTimes(t, console, 1)
	if display.Renders != 1 {
		t.Fatalf(`display.Renders = %d after LD, expected 1`, display.Renders)
	}

	loopNTimes(t, console, 1)
	if display.Renders != 2 {
		t.Fatalf(`display.Renders = %d after the second CLS, expected 2`, display.Renders)
	}
	if console.Cycles() != 3 {
		t.Fatalf(`console.Cycles() = %d, expected 3`, console.Cycles())
	}
}

func TestConsoleBuzzerFollowsSoundTimer(t *testing.T) {
	clock := newFakeClock()
	console, _, buzzer := newConsole(t, []byte{
		0x60, 0x02,
		0xF0, 0x18,
		0x61, 0x00,
		0x12, 0x04,
	}, vip8.WithClock(clock.Now))

	loopNTimes(t, console, 2)
	if !buzzer.IsPlaying() {
		t.Fatalf(`buzzer silent with the sound timer at 2`)
	}

	clock.Advance(20 * time.Millisecond)
	loopNTimes(t, console, 1)
	if !buzzer.IsPlaying() {
		t.Fatalf(`buzzer silent with the sound timer at 1`)
	}

	clock.Advance(20 * time.Millisecond)
	loopNTimes(t, console, 1)
	if buzzer.IsPlaying() {
		t.Fatalf(`buzzer playing after the sound timer expired`)
	}
	if buzzer.Beeps() != 1 {
		t.Fatalf(`buzzer.Beeps() = %d, expected 1`, buzzer.Beeps())
	}
}

func TestConsoleLoopExitsOnHalt(t *testing.T) {
	console, _, _ := newConsole(t, []byte{0x60, 0x01, 0x12, 0x02})
	console.ExitOnHalt = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := console.LoopAtSpeed(ctx, vip8.MaxSpeed); err != nil {
		t.Fatalf(`LoopAtSpeed() returned an error %v`, err)
	}
	if !console.Halted() {
		t.Fatalf(`console.Halted() = false after the loop exited`)
	}
}

func TestConsoleLoopReturnsFault(t *testing.T) {
	console, _, _ := newConsole(t, []byte{0x00, 0xEE})
	console.ExitOnHalt = true

	errorHooks := 0
	console.AddErrorHook(func(c *vip8.Console) {
		errorHooks++
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := console.Loop(ctx); !errors.Is(err, vip8.ErrStackUnderflow) {
		t.Fatalf(`Loop() returned %v, expected %v`, err, vip8.ErrStackUnderflow)
	}
	if errorHooks != 1 {
		t.Fatalf(`error hook ran %d times, expected 1`, errorHooks)
	}
	if !errors.Is(console.LastError(), vip8.ErrStackUnderflow) {
		t.Fatalf(`console.LastError() = %v`, console.LastError())
	}
}

func TestConsoleLoopStopsWithContext(t *testing.T) {
	// jumps back and forth
	console, _, _ := newConsole(t, []byte{0x12, 0x02, 0x12, 0x00})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := console.Loop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf(`Loop() returned %v, expected %v`, err, context.DeadlineExceeded)
	}
	if console.Cycles() == 0 {
		t.Fatalf(`console.Cycles() = 0, expected the loop to run`)
	}
}

func TestConsoleHooks(t *testing.T) {
	console, _, _ := newConsole(t, []byte{0x60, 0x01, 0x61, 0x02})

	var before, after []uint16
	console.AddBeforeCycleHook(func(c *vip8.Console) {
		s, _ := c.Snapshot()
		before = append(before, s.Pc)
	})
	console.AddAfterCycleHook(func(c *vip8.Console) {
		s, _ := c.Snapshot()
		after = append(after, s.Pc)
	})

	loopNTimes(t, console, 2)

	if len(before) != 2 || before[0] != 0x200 || before[1] != 0x202 {
		t.Fatalf(`before hooks saw %x`, before)
	}
	if len(after) != 2 || after[0] != 0x202 || after[1] != 0x204 {
		t.Fatalf(`after hooks saw %x`, after)
	}
}

func TestConsoleKeysAndReset(t *testing.T) {
	program := []byte{
		// wait for a key in v0
		0xF0, 0x0A,
		0x12, 0x02,
	}
	console, _, _ := newConsole(t, program)

	loopNTimes(t, console, 2)
	if s, _ := console.Snapshot(); s.State != vip8.StateAwaitingKey {
		t.Fatalf(`snapshot state = %v, expected awaiting-key`, s.State)
	}

	console.KeyDown(9)
	loopNTimes(t, console, 1)
	console.KeyUp(9)

	s, _ := console.Snapshot()
	if s.V[0] != 9 || s.State != vip8.StateHalted {
		t.Fatalf(`snapshot V0 = %d and state = %v, expected 9 and halted`, s.V[0], s.State)
	}

	if err := console.Reset(); err != nil {
		t.Fatalf(`Reset() returned an error %v`, err)
	}
	s, _ = console.Snapshot()
	if s.Pc != 0x200 || s.V[0] != 0 || console.Cycles() != 0 {
		t.Fatalf(`after Reset snapshot = %+v and cycles = %d`, s, console.Cycles())
	}
}

func TestConsoleStopPausesLoop(t *testing.T) {
	console, _, _ := newConsole(t, []byte{0x12, 0x02, 0x12, 0x00})
	console.Stop()

	if console.IsRunning() {
		t.Fatalf(`console.IsRunning() = true after Stop()`)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = console.Loop(ctx)

	if console.Cycles() != 0 {
		t.Fatalf(`a paused loop ran %d cycles`, console.Cycles())
	}

	// stepping bypasses the pause
	loopNTimes(t, console, 1)
	if console.Cycles() != 1 {
		t.Fatalf(`console.Cycles() = %d after LoopOnce(), expected 1`, console.Cycles())
	}
}

func TestConsoleSpeedIsClamped(t *testing.T) {
	console := vip8.NewConsole(vip8.NewDummyDisplay(), vip8.NewDummyBuzzer())

	if console.SpeedInHz() != vip8.DefaultSpeed {
		t.Fatalf(`console.SpeedInHz() = %d, expected %d`, console.SpeedInHz(), vip8.DefaultSpeed)
	}

	console.SetSpeedInHz(0)
	if console.SpeedInHz() != vip8.MinSpeed {
		t.Fatalf(`console.SpeedInHz() = %d, expected %d`, console.SpeedInHz(), vip8.MinSpeed)
	}

	console.SetSpeedInHz(100000)
	if console.SpeedInHz() != vip8.MaxSpeed {
		t.Fatalf(`console.SpeedInHz() = %d, expected %d`, console.SpeedInHz(), vip8.MaxSpeed)
	}
}

func TestConsoleScreenIsACopy(t *testing.T) {
	console, _, _ := newConsole(t, []byte{0x00, 0xE0})

	s := console.Screen()
	s[0] = 0xFF

	if console.Screen()[0] != 0 {
		t.Fatalf(`writing to the copy changed the console screen`)
	}
}

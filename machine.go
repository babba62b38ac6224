package vip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

type ErrOpCodeUnknown struct {
	OpCode uint16
	Pc     uint16
}

func (err ErrOpCodeUnknown) Error() string {
	return fmt.Sprintf("unknown opcode=%X at PC=%d", err.OpCode, err.Pc)
}

const (
	StackSize = 16

	// TimerPeriod is the time it takes the delay and sound timers to decrease by one
	TimerPeriod = time.Second / 60
)

// RunState of the machine between steps
type RunState byte

const (
	StateRunning RunState = iota
	// StateAwaitingKey blocks the machine until a key is pressed
	StateAwaitingKey
	// StateHalted is entered after a self-jump or a fault
	StateHalted
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingKey:
		return "awaiting-key"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("RunState(%d)", byte(s))
	}
}

type runState struct {
	kind RunState
	// register receiving the key while awaiting one
	target byte
}

// Machine holds the whole state of a Chip-8 interpreter.
// It is not safe for concurrent use, see Console for a driver that is.
type Machine struct {
	Memory *Memory
	// V 8-bit registers
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack pointer
	Sp byte
	// Stack
	Stack [StackSize]uint16

	keys  KeyboardState
	state runState
	fault error

	// last time the timers were decreased
	lastDecay time.Time
	// increased every time the screen changes
	screenVersion uint

	random                    RandomSource
	clock                     Clock
	logger                    *slog.Logger
	machineRoutineInterpreter MachineRoutineInterpreter
}

// NewMachine creates a machine with the program loaded and ready to run
func NewMachine(program []byte, configs ...ConfigCb) (*Machine, error) {
	config := defaultConfig()
	for _, cb := range configs {
		cb(config)
	}

	m := &Machine{
		Memory: NewMemory(),

		random:                    config.Random,
		clock:                     config.Clock,
		logger:                    config.Logger,
		machineRoutineInterpreter: config.MachineRoutineInterpreter,
	}

	if err := m.Reset(program); err != nil {
		return nil, err
	}

	return m, nil
}

// Reset reloads the memory with the program and clears registers, timers, stack and run state.
// The keyboard state is kept as it reflects the host.
func (m *Machine) Reset(program []byte) error {
	if err := m.Memory.LoadProgram(program); err != nil {
		return err
	}

	m.V = [16]byte{}
	m.I = 0
	m.Dt = 0
	m.St = 0
	m.Pc = startOfProgram
	m.Sp = 0
	m.Stack = [StackSize]uint16{}

	m.state = runState{kind: StateRunning}
	m.fault = nil
	m.lastDecay = m.clock()
	m.screenVersion++

	return nil
}

// Step resumes a pending key wait, decays the timers and executes the next instruction.
// While the machine awaits a key neither the timers nor the program advance.
// A halted machine does nothing and returns the fault that halted it, if any.
func (m *Machine) Step() error {
	switch m.state.kind {
	case StateHalted:
		return m.fault

	case StateAwaitingKey:
		k, pressed := m.keys.FirstPressed()
		if !pressed {
			return nil
		}
		m.V[m.state.target] = k
		m.state = runState{kind: StateRunning}
		m.next()
	}

	m.decayTimers()

	inst := Decode(m.Memory.ReadOpCode(m.Pc))
	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("exec",
			slog.String("pc", fmt.Sprintf("0x%03X", m.Pc)),
			slog.String("opcode", fmt.Sprintf("0x%04X", inst.OpCode)),
			slog.String("instr", inst.String()))
	}

	if err := m.execute(inst); err != nil {
		m.fault = err
		m.state = runState{kind: StateHalted}
		m.logger.Error("Machine fault",
			slog.String("pc", fmt.Sprintf("0x%03X", m.Pc)),
			slog.Any("error", err))
		return err
	}

	return nil
}

func (m *Machine) decayTimers() {
	if m.Dt == 0 && m.St == 0 {
		return
	}

	now := m.clock()
	if now.Sub(m.lastDecay) < TimerPeriod {
		return
	}

	if m.Dt > 0 {
		m.Dt--
	}
	if m.St > 0 {
		m.St--
	}
	m.lastDecay = now
}

func (m *Machine) halt() {
	m.state = runState{kind: StateHalted}
	m.logger.Info("Machine halted", slog.String("pc", fmt.Sprintf("0x%03X", m.Pc)))
}

// Halted reports whether the machine stopped, either on a self-jump or on a fault
func (m *Machine) Halted() bool {
	return m.state.kind == StateHalted
}

// Fault returns the error that halted the machine, nil if it is running or stopped on a self-jump
func (m *Machine) Fault() error {
	return m.fault
}

func (m *Machine) State() RunState {
	return m.state.kind
}

// AwaitingKey returns the register that will receive the next key press
func (m *Machine) AwaitingKey() (byte, bool) {
	if m.state.kind != StateAwaitingKey {
		return 0, false
	}

	return m.state.target, true
}

func (m *Machine) IsSoundTimerActive() bool {
	return m.St > 0
}

func (m *Machine) IsDelayTimerActive() bool {
	return m.Dt > 0
}

// Screen returns the display buffer. It is a view over the memory and must not be written.
func (m *Machine) Screen() Screen {
	return m.Memory.Screen()
}

// ScreenVersion changes every time the screen is cleared or drawn on
func (m *Machine) ScreenVersion() uint {
	return m.screenVersion
}

// KeyDown marks the key k as pressed. Keys above 0xF are ignored.
func (m *Machine) KeyDown(k byte) {
	m.keys.Press(k)
}

// KeyUp marks the key k as released. Keys above 0xF are ignored.
func (m *Machine) KeyUp(k byte) {
	m.keys.Release(k)
}

func (m *Machine) IsPressed(k byte) bool {
	return m.keys.IsPressed(k)
}

func (m *Machine) Keys() KeyboardState {
	return m.keys
}

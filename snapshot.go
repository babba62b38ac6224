package vip8

// Snapshot is a copy of the registers of a machine, as seen by a debugger
type Snapshot struct {
	// OpCode about to be executed
	OpCode uint16
	Pc     uint16
	V      [16]byte
	I      uint16
	Sp     byte
	Stack  [StackSize]uint16
	Dt     byte
	St     byte
	State  RunState
}

// SnapshotSize is the length of an encoded Snapshot
const SnapshotSize = 2 + 2 + 16 + 2 + 1 + StackSize*2 + 1 + 1 + 1 + 2

func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		OpCode: m.Memory.ReadOpCode(m.Pc),
		Pc:     m.Pc,
		V:      m.V,
		I:      m.I,
		Sp:     m.Sp,
		Stack:  m.Stack,
		Dt:     m.Dt,
		St:     m.St,
		State:  m.state.kind,
	}
}

// MarshalBinary encodes the snapshot with every 16-bit field in big-endian,
// followed by the screen width and height.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, SnapshotSize)

	buf = append(buf, byte((s.OpCode&0xFF00)>>8))
	buf = append(buf, byte((s.OpCode&0x00FF)>>0))

	buf = append(buf, byte((s.Pc&0xFF00)>>8))
	buf = append(buf, byte((s.Pc&0x00FF)>>0))
	buf = append(buf, s.V[:]...)
	buf = append(buf, byte((s.I&0xFF00)>>8))
	buf = append(buf, byte((s.I&0x00FF)>>0))
	buf = append(buf, s.Sp)
	for _, b := range s.Stack {
		buf = append(buf, byte((b&0xFF00)>>8))
		buf = append(buf, byte((b&0x00FF)>>0))
	}
	buf = append(buf, s.Dt)
	buf = append(buf, s.St)
	buf = append(buf, byte(s.State))
	buf = append(buf, ScreenWidth)
	buf = append(buf, ScreenHeight)

	return buf, nil
}

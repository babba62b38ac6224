package vip8_test

import (
	"testing"

	"github.com/guslan/vip8"
)

func TestSnapshotMarshalBinary(t *testing.T) {
	m := newMachine(t, []byte{0x22, 0x04, 0x00, 0x00, 0xA1, 0x23})
	m.V[0xF] = 0x7E
	mustRunNCycles(t, m, 1)

	b, err := m.Snapshot().MarshalBinary()
	if err != nil {
		t.Fatalf(`MarshalBinary() returned an error %v`, err)
	}
	if len(b) != vip8.SnapshotSize {
		t.Fatalf(`len(MarshalBinary()) = %d, expected %d`, len(b), vip8.SnapshotSize)
	}

	// opcode at PC
	if b[0] != 0xA1 || b[1] != 0x23 {
		t.Fatalf(`opcode = %x %x, expected a1 23`, b[0], b[1])
	}
	// PC
	if b[2] != 0x02 || b[3] != 0x04 {
		t.Fatalf(`pc = %x %x, expected 02 04`, b[2], b[3])
	}
	// VF
	if b[4+15] != 0x7E {
		t.Fatalf(`vf = %x, expected 7e`, b[4+15])
	}
	// SP then the first stack entry
	if b[22] != 1 || b[23] != 0x02 || b[24] != 0x00 {
		t.Fatalf(`sp = %d and stack[0] = %x %x`, b[22], b[23], b[24])
	}
	if b[len(b)-2] != vip8.ScreenWidth || b[len(b)-1] != vip8.ScreenHeight {
		t.Fatalf(`screen size = %d x %d`, b[len(b)-2], b[len(b)-1])
	}
}

package vip8

import (
	"fmt"
	"log/slog"
)

// execute runs a decoded instruction. Every instruction advances the PC itself.
func (m *Machine) execute(inst Instruction) error {
	x, y, kk, nnn := inst.X, inst.Y, inst.KK, inst.NNN

	switch inst.Op {
	case OpSys:
		// SYS :: Jump to a machine code routine at nnn.
		// This instruction is only used on the old computers on which Chip-8 was originally implemented.
		// It is ignored by modern interpreters.
		if m.machineRoutineInterpreter == nil {
			m.unknown(inst)
			return nil
		}
		m.next()
		return m.machineRoutineInterpreter(inst.OpCode, m)

	case OpCls:
		// CLS :: Clear the display.
		m.clearScreen()
		m.next()

	case OpRet:
		// RET :: Return from a subroutine.
		if m.Sp == 0 {
			return ErrStackUnderflow
		}
		m.Sp--
		m.Pc = m.Stack[m.Sp]
		m.next()

	case OpJp:
		// JP addr :: Jump to location nnn.
		// Jumping onto itself would loop forever, so the machine halts instead.
		if nnn == m.Pc {
			m.halt()
			return nil
		}
		m.Pc = nnn

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if int(m.Sp) >= len(m.Stack) {
			return ErrStackOverflow
		}
		m.Stack[m.Sp] = m.Pc
		m.Sp++
		m.Pc = nnn

	case OpSeImm:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		m.skipIf(m.V[x] == kk)

	case OpSneImm:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		m.skipIf(m.V[x] != kk)

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		m.skipIf(m.V[x] == m.V[y])

	case OpLdImm:
		// LD Vx, byte :: Set Vx = kk.
		m.V[x] = kk
		m.next()

	case OpAddImm:
		// ADD Vx, byte :: Set Vx = Vx + kk.
		m.V[x] += kk
		m.next()

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		m.V[x] = m.V[y]
		m.next()

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		m.V[x] |= m.V[y]
		m.next()

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		m.V[x] &= m.V[y]
		m.next()

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		m.V[x] ^= m.V[y]
		m.next()

	case OpAdd:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(m.V[x]) + uint16(m.V[y])
		m.V[x] = byte(r & 0x00FF)
		m.V[0xF] = byte(r >> 8)
		m.next()

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := m.V[x] >= m.V[y]
		m.V[x] = m.V[x] - m.V[y]
		m.V[0xF] = bool2byte(carry)
		m.next()

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		carry := m.V[x] & 0b00000001
		m.V[x] = m.V[x] >> 1
		m.V[0xF] = carry
		m.next()

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := m.V[y] >= m.V[x]
		m.V[x] = m.V[y] - m.V[x]
		m.V[0xF] = bool2byte(carry)
		m.next()

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		carry := (m.V[x] & 0b10000000) >> 7
		m.V[x] = m.V[x] << 1
		m.V[0xF] = carry
		m.next()

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		m.skipIf(m.V[x] != m.V[y])

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		m.I = nnn
		m.next()

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0.
		m.Pc = (uint16(m.V[0]) + nnn) & addressMask

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		m.V[x] = m.random.RandomByte() & kk
		m.next()

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		// Sprites are XORed onto the existing screen and wrap around its edges.
		m.V[0xF] = bool2byte(m.drawSprite(m.V[x], m.V[y], inst.N))
		m.next()

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		m.skipIf(m.keys.IsPressed(m.V[x]))

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		m.skipIf(!m.keys.IsPressed(m.V[x]))

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		m.V[x] = m.Dt
		m.next()

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		// The PC stays here until Step sees a key.
		m.state = runState{kind: StateAwaitingKey, target: x}

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		m.Dt = m.V[x]
		m.next()

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		m.St = m.V[x]
		m.next()

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		m.I = (m.I + uint16(m.V[x])) & addressMask
		m.next()

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		m.I = startOfFont + uint16(m.V[x])*glyphSize
		m.next()

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		v := m.V[x]
		m.Memory.Write(m.I+0, v/100)
		m.Memory.Write(m.I+1, (v%100)/10)
		m.Memory.Write(m.I+2, v%10)
		m.next()

	case OpStore:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			m.Memory.Write(m.I+i, m.V[i])
		}
		m.next()

	case OpLoad:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			m.V[i] = m.Memory.Read(m.I + i)
		}
		m.next()

	default:
		m.unknown(inst)
	}

	return nil
}

// next moves the PC to the following instruction
func (m *Machine) next() {
	m.Pc = (m.Pc + 2) & addressMask
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.next()
	}
	m.next()
}

// unknown logs the instruction and moves on
func (m *Machine) unknown(inst Instruction) {
	m.logger.Warn("Skipping instruction",
		slog.String("opcode", fmt.Sprintf("0x%04X", inst.OpCode)),
		slog.Any("error", ErrOpCodeUnknown{OpCode: inst.OpCode, Pc: m.Pc}))
	m.next()
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

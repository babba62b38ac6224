package vip8

import "fmt"

// Operation identifies the shape of a decoded instruction
type Operation byte

const (
	OpUnknown Operation = iota
	OpSys
	OpCls
	OpRet
	OpJp
	OpCall
	OpSeImm
	OpSneImm
	OpSeReg
	OpLdImm
	OpAddImm
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAdd
	OpSub
	OpShr
	OpSubn
	OpShl
	OpSneReg
	OpLdI
	OpJpV0
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDt
	OpLdVxK
	OpLdDtVx
	OpLdStVx
	OpAddI
	OpLdF
	OpLdB
	OpStore
	OpLoad
)

var operationNames = [...]string{
	OpUnknown: "???",
	OpSys:     "SYS",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeImm:   "SE",
	OpSneImm:  "SNE",
	OpSeReg:   "SE",
	OpLdImm:   "LD",
	OpAddImm:  "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAdd:     "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD",
	OpLdVxK:   "LD",
	OpLdDtVx:  "LD",
	OpLdStVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpStore:   "LD",
	OpLoad:    "LD",
}

func (op Operation) String() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}

	return operationNames[OpUnknown]
}

// Instruction is a decoded opcode.
// Only the operands relevant to Op are meaningful.
type Instruction struct {
	Op     Operation
	OpCode uint16

	X, Y byte
	N    byte
	KK   byte
	NNN  uint16
}

// Decode splits the opcode in its operands and resolves the operation from the family nibble
func Decode(opCode uint16) Instruction {
	inst := Instruction{
		Op:     OpUnknown,
		OpCode: opCode,
		X:      byte((opCode & 0x0F00) >> 8),
		Y:      byte((opCode & 0x00F0) >> 4),
		N:      byte(opCode & 0x000F),
		KK:     byte(opCode & 0x00FF),
		NNN:    opCode & 0x0FFF,
	}

	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x00E0:
			inst.Op = OpCls
		case 0x00EE:
			inst.Op = OpRet
		default:
			inst.Op = OpSys
		}
	case 0x1000:
		inst.Op = OpJp
	case 0x2000:
		inst.Op = OpCall
	case 0x3000:
		inst.Op = OpSeImm
	case 0x4000:
		inst.Op = OpSneImm
	case 0x5000:
		inst.Op = OpSeReg
	case 0x6000:
		inst.Op = OpLdImm
	case 0x7000:
		inst.Op = OpAddImm
	case 0x8000:
		switch inst.N {
		case 0x0:
			inst.Op = OpLdReg
		case 0x1:
			inst.Op = OpOr
		case 0x2:
			inst.Op = OpAnd
		case 0x3:
			inst.Op = OpXor
		case 0x4:
			inst.Op = OpAdd
		case 0x5:
			inst.Op = OpSub
		case 0x6:
			inst.Op = OpShr
		case 0x7:
			inst.Op = OpSubn
		case 0xE:
			inst.Op = OpShl
		}
	case 0x9000:
		inst.Op = OpSneReg
	case 0xA000:
		inst.Op = OpLdI
	case 0xB000:
		inst.Op = OpJpV0
	case 0xC000:
		inst.Op = OpRnd
	case 0xD000:
		inst.Op = OpDrw
	case 0xE000:
		switch inst.KK {
		case 0x9E:
			inst.Op = OpSkp
		case 0xA1:
			inst.Op = OpSknp
		}
	case 0xF000:
		switch inst.KK {
		case 0x07:
			inst.Op = OpLdVxDt
		case 0x0A:
			inst.Op = OpLdVxK
		case 0x15:
			inst.Op = OpLdDtVx
		case 0x18:
			inst.Op = OpLdStVx
		case 0x1E:
			inst.Op = OpAddI
		case 0x29:
			inst.Op = OpLdF
		case 0x33:
			inst.Op = OpLdB
		case 0x55:
			inst.Op = OpStore
		case 0x65:
			inst.Op = OpLoad
		}
	}

	return inst
}

// String renders the instruction in the usual Cowgod mnemonics
func (inst Instruction) String() string {
	name := inst.Op.String()

	switch inst.Op {
	case OpCls, OpRet:
		return name
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("%s 0x%03X", name, inst.NNN)
	case OpSeImm, OpSneImm, OpLdImm, OpAddImm:
		return fmt.Sprintf("%s V%X, 0x%02X", name, inst.X, inst.KK)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAdd, OpSub, OpShr, OpSubn, OpShl:
		return fmt.Sprintf("%s V%X, V%X", name, inst.X, inst.Y)
	case OpLdI:
		return fmt.Sprintf("%s I, 0x%03X", name, inst.NNN)
	case OpJpV0:
		return fmt.Sprintf("%s V0, 0x%03X", name, inst.NNN)
	case OpRnd:
		return fmt.Sprintf("%s V%X, 0x%02X", name, inst.X, inst.KK)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, %d", name, inst.X, inst.Y, inst.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", name, inst.X)
	case OpLdVxDt:
		return fmt.Sprintf("%s V%X, DT", name, inst.X)
	case OpLdVxK:
		return fmt.Sprintf("%s V%X, K", name, inst.X)
	case OpLdDtVx:
		return fmt.Sprintf("%s DT, V%X", name, inst.X)
	case OpLdStVx:
		return fmt.Sprintf("%s ST, V%X", name, inst.X)
	case OpAddI:
		return fmt.Sprintf("%s I, V%X", name, inst.X)
	case OpLdF:
		return fmt.Sprintf("%s F, V%X", name, inst.X)
	case OpLdB:
		return fmt.Sprintf("%s B, V%X", name, inst.X)
	case OpStore:
		return fmt.Sprintf("%s [I], V%X", name, inst.X)
	case OpLoad:
		return fmt.Sprintf("%s V%X, [I]", name, inst.X)
	default:
		return fmt.Sprintf("DW 0x%04X", inst.OpCode)
	}
}

package vip8

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

const (
	MEMORY_SIZE = 4096

	startOfProgram = 0x200
	startOfFont    = 0x50
	startOfScreen  = 0xF00

	// MaxProgramSize is the largest program image accepted by LoadProgram
	MaxProgramSize = MEMORY_SIZE - startOfProgram

	addressMask = MEMORY_SIZE - 1
)

// glyphSize is the number of bytes of each font character
const glyphSize = 5

var font = [16 * glyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// Memory is the whole addressable space of the machine, display buffer included
type Memory [MEMORY_SIZE]byte

// NewMemory creates an empty memory of 4096 bytes
func NewMemory() *Memory {
	return &Memory{}
}

func (mem Memory) Clone() *Memory {
	m := NewMemory()

	copy(m[:], mem[:])

	return m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:startOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[startOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

func (mem Memory) IsEqual(other Memory) bool {
	return mem == other
}

// LoadProgram clears the memory, loads the font and copies the program at the start-of-program address.
// Programs that do not fit between the start of program and the end of memory are rejected
// and leave the memory untouched.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return ErrProgramDoesNotFitIntoMemory
	}

	*mem = Memory{}
	copy(mem[startOfFont:], font[:])
	copy(mem[startOfProgram:], program)

	return nil
}

// Read returns the byte at addr, wrapping around the end of memory
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr&addressMask]
}

// Write stores b at addr, wrapping around the end of memory
func (mem *Memory) Write(addr uint16, b byte) {
	mem[addr&addressMask] = b
}

// ReadOpCode reads the big-endian instruction at addr
func (mem *Memory) ReadOpCode(addr uint16) uint16 {
	var opCode uint16
	opCode |= uint16(mem.Read(addr+0)) << 8
	opCode |= uint16(mem.Read(addr+1)) << 0

	return opCode
}

// Screen returns the display buffer region as a view over the memory
func (mem *Memory) Screen() Screen {
	return Screen(mem[startOfScreen:MEMORY_SIZE])
}

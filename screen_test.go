package vip8

import (
	"io"
	"log/slog"
	"testing"
)

func newTestMachine(t *testing.T, program []byte) *Machine {
	t.Helper()

	m, err := NewMachine(program, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf(`NewMachine() returned an error %v`, err)
	}

	return m
}

func TestDrawCollision(t *testing.T) {
	m := newTestMachine(t, nil)
	m.I = 0x300
	copy(m.Memory[0x300:], []byte{0xF0, 0x90, 0x90, 0x90, 0xF0})

	if m.drawSprite(0, 0, 5) {
		t.Fatalf(`drawSprite() on an empty screen reported a collision`)
	}
	screen := m.Screen()
	if screen[0] != 0xF0 || screen[ScreenWidth/8] != 0x90 {
		t.Fatalf(`screen rows = %x, %x, expected f0, 90`, screen[0], screen[ScreenWidth/8])
	}
	if !screen.Pixel(0, 0) || screen.Pixel(1, 1) {
		t.Fatalf(`Pixel() does not match the sprite`)
	}

	if !m.drawSprite(0, 0, 5) {
		t.Fatalf(`drawSprite() twice did not report a collision`)
	}
	for i, b := range screen {
		if b != 0 {
			t.Fatalf(`screen[%d] = %x after drawing twice, expected 0`, i, b)
		}
	}
}

func TestDrawOnlyLitPixelsCollide(t *testing.T) {
	m := newTestMachine(t, nil)
	m.I = 0x300
	copy(m.Memory[0x300:], []byte{0xF0, 0x0F, 0x80})

	m.drawSprite(0, 0, 1)

	// unlit sprite bits leave lit screen pixels alone
	m.I = 0x301
	if m.drawSprite(0, 0, 1) {
		t.Fatalf(`drawSprite() reported a collision between disjoint pixels`)
	}
	if m.Screen()[0] != 0xFF {
		t.Fatalf(`screen[0] = %x, expected ff`, m.Screen()[0])
	}

	m.I = 0x302
	if !m.drawSprite(0, 0, 1) {
		t.Fatalf(`drawSprite() did not report a collision`)
	}
	if m.Screen()[0] != 0x7F {
		t.Fatalf(`screen[0] = %x, expected 7f`, m.Screen()[0])
	}
}

func TestDrawWrapsHorizontally(t *testing.T) {
	m := newTestMachine(t, nil)
	m.I = 0x300
	m.Memory[0x300] = 0xFF

	m.drawSprite(60, 0, 1)

	screen := m.Screen()
	if screen[7] != 0x0F || screen[0] != 0xF0 {
		t.Fatalf(`screen row 0 = %x ... %x, expected f0 ... 0f`, screen[0], screen[7])
	}
	if screen[1] != 0 {
		t.Fatalf(`screen[1] = %x, expected 0`, screen[1])
	}
}

func TestDrawWrapsVertically(t *testing.T) {
	m := newTestMachine(t, nil)
	m.I = 0x300
	m.Memory[0x300] = 0xFF
	m.Memory[0x301] = 0x81

	m.drawSprite(0, 31, 2)

	screen := m.Screen()
	if screen[31*ScreenWidth/8] != 0xFF {
		t.Fatalf(`last row = %x, expected ff`, screen[31*ScreenWidth/8])
	}
	if screen[0] != 0x81 {
		t.Fatalf(`first row = %x, expected 81`, screen[0])
	}
}

func TestDrawCoordinatesWrap(t *testing.T) {
	m := newTestMachine(t, nil)
	m.I = 0x300
	m.Memory[0x300] = 0x80

	// 64+2, 32+1
	m.drawSprite(66, 33, 1)

	if !m.Screen().Pixel(2, 1) {
		t.Fatalf(`pixel 2,1 not lit`)
	}
}

func TestDrawingBumpsScreenVersion(t *testing.T) {
	m := newTestMachine(t, nil)
	v := m.ScreenVersion()

	m.drawSprite(0, 0, 0)
	if m.ScreenVersion() == v {
		t.Fatalf(`ScreenVersion() did not change after a draw`)
	}

	v = m.ScreenVersion()
	m.clearScreen()
	if m.ScreenVersion() == v {
		t.Fatalf(`ScreenVersion() did not change after a clear`)
	}
}

func TestScreenIsAViewOverMemory(t *testing.T) {
	m := newTestMachine(t, nil)
	m.Memory[0xF00] = 0x80

	if !m.Screen().Pixel(0, 0) {
		t.Fatalf(`memory at 0xF00 is not the top-left pixel`)
	}
	if len(m.Screen()) != ScreenSize {
		t.Fatalf(`len(Screen()) = %d, expected %d`, len(m.Screen()), ScreenSize)
	}
}

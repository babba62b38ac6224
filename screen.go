package vip8

const (
	ScreenWidth  = 64
	ScreenHeight = 32

	// ScreenSize is the size in bytes of the display buffer
	ScreenSize = ScreenWidth * ScreenHeight / 8
)

// Screen is the packed display buffer: one bit per pixel, row-major,
// the most significant bit of each byte being the leftmost pixel.
type Screen []byte

// Pixel reports whether the pixel at x, y is lit. Coordinates wrap around the screen.
func (s Screen) Pixel(x, y int) bool {
	t, mask := pixelAt(x, y)
	return s[t]&mask > 0
}

// flip toggles the pixel at x, y and returns whether it was lit
func (s Screen) flip(x, y int) bool {
	t, mask := pixelAt(x, y)
	lit := s[t]&mask > 0
	s[t] ^= mask

	return lit
}

func pixelAt(x, y int) (int, byte) {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight

	return (y*ScreenWidth + x) / 8, 0x80 >> (x % 8)
}

func (m *Machine) clearScreen() {
	clear(m.Memory.Screen())
	m.screenVersion++
}

// drawSprite XORs n rows of sprite data read from I onto the screen at x, y.
// Every row and every pixel wraps on its own.
// Returns whether any lit pixel of the sprite hit a lit pixel of the screen.
func (m *Machine) drawSprite(x, y, n byte) bool {
	screen := m.Memory.Screen()
	collision := false

	for row := byte(0); row < n; row++ {
		sprite := m.Memory.Read(m.I + uint16(row))
		for bit := 0; bit < 8; bit++ {
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			if screen.flip(int(x)+bit, int(y)+int(row)) {
				collision = true
			}
		}
	}
	m.screenVersion++

	return collision
}

package vip8

// KeyboardState has one entry per key of the hex keypad
type KeyboardState [16]bool

func (kb KeyboardState) IsPressed(k byte) bool {
	if k > 15 {
		return false
	}
	return kb[k]
}

func (kb *KeyboardState) Press(k byte) {
	if k > 15 {
		return
	}

	kb[k] = true
}

func (kb *KeyboardState) Release(k byte) {
	if k > 15 {
		return
	}

	kb[k] = false
}

// FirstPressed returns the lowest key currently pressed
func (kb KeyboardState) FirstPressed() (byte, bool) {
	for k, pressed := range kb {
		if pressed {
			return byte(k), true
		}
	}

	return 0, false
}

// KeyboardLayout maps every key of the keypad (the index) to a character of the host keyboard
type KeyboardLayout [16]rune

// DefaultKeyboardLayout places the keypad on the left block of a QWERTY keyboard
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var DefaultKeyboardLayout = KeyboardLayout{
	0x0: 'x',
	0x1: '1', 0x2: '2', 0x3: '3',
	0x4: 'q', 0x5: 'w', 0x6: 'e',
	0x7: 'a', 0x8: 's', 0x9: 'd',
	0xA: 'z', 0xB: 'c',
	0xC: '4', 0xD: 'r', 0xE: 'f', 0xF: 'v',
}

// LookupMap inverts the layout so the host character gives the key
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, len(layout))
	for k, r := range layout {
		m[r] = byte(k)
	}

	return m
}

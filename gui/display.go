package gui

import (
	"github.com/guslan/vip8"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// Boot implements vip8.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements vip8.Display.
func (app *App) Render(screen vip8.Screen) error {
	app.screenMu.Lock()
	defer app.screenMu.Unlock()

	unpack(app.screen, screen)

	return nil
}

// unpack expands the packed screen into one byte per pixel
func unpack(dst []byte, screen vip8.Screen) {
	for i, t := 0, 0; t < len(dst) && i < len(screen); i, t = i+1, t+8 {
		dst[t+0] = (screen[i] >> 7) & 0b1
		dst[t+1] = (screen[i] >> 6) & 0b1
		dst[t+2] = (screen[i] >> 5) & 0b1
		dst[t+3] = (screen[i] >> 4) & 0b1
		dst[t+4] = (screen[i] >> 3) & 0b1
		dst[t+5] = (screen[i] >> 2) & 0b1
		dst[t+6] = (screen[i] >> 1) & 0b1
		dst[t+7] = (screen[i] >> 0) & 0b1
	}
}

package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/vip8"
	"github.com/guslan/vip8/audio"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap   = 5
	MessageBarHeigh = 30
	DebugBarHeight  = 50
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// ScanCode is a raylib key code
type ScanCode = int32

type AppConfig struct {
	Speed       uint
	UseDebugger bool
	Mute        bool
	Layout      vip8.KeyboardLayout
}

type App struct {
	// The underlying console
	Console *vip8.Console
	config  *AppConfig
	// Speed in Hz
	speed float32

	// Unpacked screen representation, one byte per pixel
	screen   []byte
	screenMu sync.Mutex

	keyboardLookupMap map[ScanCode]byte
	pressed           vip8.KeyboardState

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
	messageMu        sync.Mutex
}

func NewApp(configs ...func(config *AppConfig)) *App {
	config := &AppConfig{
		Speed:       vip8.DefaultSpeed,
		UseDebugger: false,
		Mute:        false,
		Layout:      vip8.DefaultKeyboardLayout,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		config:            config,
		speed:             float32(config.Speed),
		screen:            make([]byte, vip8.ScreenWidth*vip8.ScreenHeight),
		keyboardLookupMap: map[ScanCode]byte{},
	}

	app.Console = vip8.NewConsole(app, newBuzzer(config.Mute))
	app.Console.SetSpeedInHz(config.Speed)

	app.updateKeyboardLookupMap()
	app.updateWindowSize()

	return app
}

func newBuzzer(mute bool) vip8.Buzzer {
	if mute {
		return vip8.NewDummyBuzzer()
	}

	b := audio.NewToneBuzzer()
	if err := b.Boot(); err != nil {
		slog.Warn("No sound available", slog.Any("error", err))
		return vip8.NewDummyBuzzer()
	}

	return b
}

// Run initializes the console and the UI loop
func (app *App) Run(autostart bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Console.Boot(); err != nil {
		slog.Error("Error booting console", slog.Any("error", err))
		return
	}

	if !autostart || !app.hasProgramLoaded() {
		app.Console.Stop()
	}

	app.Console.AddErrorHook(app.onCycleError)

	go func(console *vip8.Console) {
		slog.Info("Starting console loop")
		if err := console.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.showMessage(err.Error(), MessageError)
			slog.Error("Console loop stopped", slog.Any("error", err))
		}
	}(app.Console)

	rl.InitWindow(int32(app.winW), int32(app.winH), "vip8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateConsoleSpeed()

		// Sections get rendered from bottom to the top so that the toolbar stays on top
		app.drawMessageBar()
		if app.config.UseDebugger {
			app.drawDebugBar()
		}
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

// onCycleError shows the error of the last cycle.
// A cycle run from another goroutine may have cleared it already.
func (app *App) onCycleError(c *vip8.Console) {
	if err := c.LastError(); err != nil {
		app.showMessage(err.Error(), MessageError)
	}
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.Console.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)
}

func (app *App) updateWindowSize() {
	app.winW = vip8.ScreenWidth * ScreenPixelSize
	app.winH = vip8.ScreenHeight*ScreenPixelSize + ToolbarHeight + MessageBarHeigh
	if app.config.UseDebugger {
		app.winH += DebugBarHeight
	}
	slog.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) updateKeyboardLookupMap() {
	for r, k := range vip8.LookupMap(app.config.Layout) {
		app.keyboardLookupMap[scanCodeOf(r)] = k
	}
}

// scanCodeOf returns the raylib key of an alphanumeric character.
// raylib uses the ASCII code of the upper case character for those keys.
func scanCodeOf(r rune) ScanCode {
	return ScanCode(unicode.ToUpper(r))
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		app.Load(files[0])
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Console.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.Console.Stop()
		slog.Info("Stopping the console")
	}
	if app.restBtn {
		if err := app.Console.Reset(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.Console.LoopOnce(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Running a single step")
	}
}

func (app *App) handleKeyPress() {
	for scanCode, key := range app.keyboardLookupMap {
		down := rl.IsKeyDown(scanCode)
		if down == app.pressed.IsPressed(key) {
			continue
		}

		if down {
			app.pressed.Press(key)
			app.Console.KeyDown(key)
		} else {
			app.pressed.Release(key)
			app.Console.KeyUp(key)
		}
	}
}

func (app *App) updateConsoleSpeed() {
	app.Console.SetSpeedInHz(uint(app.speed))
}

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.Console.Halted() {
		status = "Halted"
	} else if app.Console.IsRunning() {
		status = "Running"
	}
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", uint(app.speed)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speed = float32(vip8.DefaultSpeed)
	}

	app.speed = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", vip8.MinSpeed), fmt.Sprintf("%d Hz", vip8.MaxSpeed),
		app.speed,
		float32(vip8.MinSpeed),
		float32(vip8.MaxSpeed),
	)
}

func (app *App) drawScreen() {
	app.screenMu.Lock()
	defer app.screenMu.Unlock()

	for y := 0; y < vip8.ScreenHeight; y++ {
		for x := 0; x < vip8.ScreenWidth; x++ {
			color := ScreenBgColor
			if app.screen[y*vip8.ScreenWidth+x] > 0 {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}

func (app *App) drawDebugBar() {
	top := int32(app.winH) - MessageBarHeigh - DebugBarHeight
	rl.DrawRectangle(0, top, int32(app.winW), DebugBarHeight, rl.Black)

	s, ok := app.Console.Snapshot()
	if !ok {
		return
	}

	regs := strings.Builder{}
	for i, v := range s.V {
		regs.WriteString(fmt.Sprintf("V%X=%02X ", i, v))
	}

	rl.DrawText(
		fmt.Sprintf("PC=%03X %-14s I=%03X SP=%d DT=%02X ST=%02X %s",
			s.Pc, vip8.Decode(s.OpCode).String(), s.I, s.Sp, s.Dt, s.St, s.State),
		MessageBarGap, top+MessageBarGap, 16, rl.RayWhite)
	rl.DrawText(regs.String(), MessageBarGap, top+MessageBarGap+22, 16, rl.RayWhite)
}

// showMessage may be called from the console loop
func (app *App) showMessage(msg string, mType MessageType) {
	app.messageMu.Lock()
	defer app.messageMu.Unlock()

	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	app.messageMu.Lock()
	defer app.messageMu.Unlock()

	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeigh,
		int32(app.winW),
		MessageBarHeigh,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeigh+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}

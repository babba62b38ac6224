package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/vip8"
	"github.com/guslan/vip8/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")
	debug := flag.Bool("debug", false, "Show debug information for the console (defaults = false).")
	mute := flag.Bool("mute", false, "Do not play the buzzer (defaults = false).")
	initialSpeed := flag.Uint("speed", vip8.DefaultSpeed, fmt.Sprintf("The starting speed of the console in Hz. It has to be in the range [%d, %d] (defaults = %d).", vip8.MinSpeed, vip8.MaxSpeed, vip8.DefaultSpeed))

	flag.Parse()

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = *initialSpeed
		config.UseDebugger = *debug
		config.Mute = *mute
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}

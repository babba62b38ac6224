//go:build !windows

/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/guslan/vip8"
)

func main() {
	speed := flag.Uint("speed", 30, "Speed in cycles per second (default = 30)")
	noTerm := flag.Bool("noterm", false, "turn off the terminal display of the emulator")
	debug := flag.Bool("debug", false, "trace every instruction to vip8.log")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	// The terminal belongs to the display, logs go to a file
	logFile, err := os.Create("vip8.log")
	if err != nil {
		log.Fatalln(err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	var d vip8.Display
	if *noTerm {
		d = vip8.NewInMemoryDisplay()
	} else {
		d = vip8.NewTerminalDisplay()
	}

	console := vip8.NewConsole(d, vip8.NewDummyBuzzer())
	console.ExitOnHalt = true

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	if err := console.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}

	if err := console.Boot(); err != nil {
		log.Fatalln(err)
	}

	kb := vip8.NewTerminalKeyboard()
	err = runWithKeyboard(context.Background(),
		func(ctx context.Context) error {
			return kb.Listen(ctx, console)
		},
		func(ctx context.Context) error {
			return console.LoopAtSpeed(ctx, *speed)
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalln(err)
	}
}

// runWithKeyboard runs the loop while the keyboard listens. Whichever stops first stops the other,
// and it only returns once the keyboard is done, so the terminal has been restored.
func runWithKeyboard(ctx context.Context, listen, loop func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	kbDone := make(chan struct{})
	go func() {
		defer close(kbDone)
		defer cancel()
		if err := listen(ctx); err != nil && !errors.Is(err, vip8.ErrQuitRequested) {
			slog.Error("Keyboard stopped", slog.Any("error", err))
		}
	}()

	err := loop(ctx)

	cancel()
	<-kbDone

	return err
}

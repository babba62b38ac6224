/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/guslan/vip8/web"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", 1, "Speed in cycles per second (default = 1)")
	static := flag.String("static", "./static", "Directory served at the root of the server (default = ./static)")
	debug := flag.Bool("debug", true, "Stream the registers on /debugger (default = true)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	server := web.NewServer(func(config *web.ServerConfig) {
		config.UseDebugger = *debug
		config.StaticDir = *static
		config.Speed = *speed
	})

	if err := server.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := server.Listen(ctx, *port); err != nil {
		log.Fatalln(err)
	}
}

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/vip8"
)

// Messages sent by the client on the display socket are two bytes: an action and a key
const (
	ActionKeyUp   byte = 0
	ActionKeyDown byte = 1
)

type Server struct {
	console  *vip8.Console
	debugger *HttpDebugger
	config   *ServerConfig

	socket  *websocket.Conn
	wsMutex sync.Mutex
}

type ServerConfig struct {
	UseDebugger bool
	// StaticDir is served at the root of the server
	StaticDir string
	Speed     uint
	Machine   []vip8.ConfigCb

	// WriteTimeout bounds every screen frame sent to the display client
	WriteTimeout time.Duration
}
type ServerConfigCb func(config *ServerConfig)

func NewServer(configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		UseDebugger:  false,
		StaticDir:    "./static",
		Speed:        vip8.DefaultSpeed,
		WriteTimeout: time.Second,
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		config: config,
	}

	s.console = vip8.NewConsole(s, vip8.NewDummyBuzzer(), config.Machine...)
	s.console.SetSpeedInHz(config.Speed)
	s.console.Stop()
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.console)
	}

	return s
}

func (server *Server) Console() *vip8.Console {
	return server.console
}

// LoadProgram loads the program into the console
func (server *Server) LoadProgram(program []byte) error {
	return server.console.LoadProgram(program)
}

// Handler returns the routes of the server
func (server *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir(server.config.StaticDir)))

	mux.HandleFunc("/start", control(func() error {
		slog.Info("Starting")
		server.console.Start()
		return nil
	}))
	mux.HandleFunc("/stop", control(func() error {
		slog.Info("Stopping")
		server.console.Stop()
		return nil
	}))
	mux.HandleFunc("/reset", control(func() error {
		slog.Info("Stopping and resetting")
		server.console.Stop()
		return server.console.Reset()
	}))
	mux.HandleFunc("/step", control(func() error {
		slog.Info("Single step")
		return server.console.LoopOnce()
	}))
	mux.HandleFunc("POST /load", server.handleLoad)
	mux.HandleFunc("/display", server.handleDisplay)

	if server.debugger != nil {
		mux.HandleFunc("/debugger", server.debugger.handle)
	}

	return mux
}

func control(action func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

		w.Header().Set("Cache-Control", "no-cache")

		if err := action(); err != nil {
			slog.Error("Control action failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
		}
	}
}

func (server *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	program, err := io.ReadAll(http.MaxBytesReader(w, r.Body, vip8.MaxProgramSize))
	if err != nil {
		http.Error(w, vip8.ErrProgramDoesNotFitIntoMemory.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	server.console.Stop()
	if err := server.console.LoadProgram(program); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("Program loaded", slog.Int("size", len(program)))
}

func (server *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Error upgrading display connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to display")
	server.setWs(conn)
	defer server.unsetWs(conn)

	if err := server.Render(server.console.Screen()); err != nil {
		slog.Error("Error sending the screen", slog.Any("error", err))
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Info("Disconnecting from display")
			return
		}
		server.handleKeyMessage(msg)
	}
}

func (server *Server) handleKeyMessage(msg []byte) {
	if len(msg) != 2 {
		slog.Warn("Ignoring malformed key message", slog.Int("size", len(msg)))
		return
	}

	switch msg[0] {
	case ActionKeyDown:
		server.console.KeyDown(msg[1])
	case ActionKeyUp:
		server.console.KeyUp(msg[1])
	default:
		slog.Warn("Ignoring unknown key action", slog.Int("action", int(msg[0])))
	}
}

// Listen boots the console, starts its loop and serves until the context is done
func (server *Server) Listen(ctx context.Context, port int) error {
	if err := server.console.Boot(); err != nil {
		return err
	}

	go func() {
		if err := server.console.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Console loop stopped", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	slog.Info("Listening on port", slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

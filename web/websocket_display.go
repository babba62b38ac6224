package web

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/vip8"
)

var upgrader = websocket.Upgrader{} // use default options

// Boot implements Display.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	server.socket = conn
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == conn {
		server.socket = nil
	}
}

// Render implements Display.
// The screen is sent as a binary message with the packed display buffer.
// It runs while the console is locked, so a client that cannot take a frame
// within the write timeout is disconnected instead of stalling the machine.
func (server *Server) Render(screen vip8.Screen) error {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == nil {
		return nil
	}

	conn := server.socket
	if err := conn.SetWriteDeadline(time.Now().Add(server.config.WriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, screen); err != nil {
		slog.Warn("Dropping display client", slog.Any("error", err))
		server.socket = nil
		conn.Close()
	}

	return nil
}

func (server *Server) hasDisplayClient() bool {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	return server.socket != nil
}

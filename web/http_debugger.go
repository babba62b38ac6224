package web

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/guslan/vip8"
)

// HttpDebugger streams the registers of the console after every cycle
type HttpDebugger struct {
	Console *vip8.Console

	SendEvery uint64
	send      chan vip8.Snapshot
	clients   atomic.Int32
}

// NewHttpDebugger creates a new debugger
// This method will pause the console and register the hooks
func NewHttpDebugger(console *vip8.Console) *HttpDebugger {
	deb := &HttpDebugger{
		Console:   console,
		SendEvery: 1,
		send:      make(chan vip8.Snapshot, 1),
	}

	console.AddAfterCycleHook(deb.afterCycle)
	console.AddErrorHook(deb.afterCycle)

	console.Stop()

	return deb
}

func (d *HttpDebugger) handle(w http.ResponseWriter, r *http.Request) {
	slog.Info("Connecting to debugger")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Error upgrading debugger connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	d.clients.Add(1)
	defer d.clients.Add(-1)

	// The request context is not cancelled once the connection is hijacked,
	// reading is the only way to see the client leave.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if s, ok := d.Console.Snapshot(); ok {
		d.publish(s)
	}

	slog.Info("Listening for events")
	for {
		select {
		case <-gone:
			slog.Info("Disconnecting from debugger")
			return

		case s := <-d.send:
			if err := conn.WriteMessage(websocket.BinaryMessage, d.formatAsEvent(s)); err != nil {
				slog.Error("Error writing debugger message", slog.Any("error", err))
				return
			}
		}
	}
}

// Clients returns the number of connected debugger clients
func (d *HttpDebugger) Clients() int {
	return int(d.clients.Load())
}

func (d *HttpDebugger) afterCycle(c *vip8.Console) {
	if d.SendEvery == 0 || c.Cycles()%d.SendEvery != 0 {
		return
	}

	if s, ok := c.Snapshot(); ok {
		d.publish(s)
	}
}

// publish keeps only the latest snapshot when nobody is reading
func (d *HttpDebugger) publish(s vip8.Snapshot) {
	select {
	case <-d.send:
	default:
	}

	select {
	case d.send <- s:
	default:
	}
}

func (d *HttpDebugger) formatAsEvent(s vip8.Snapshot) []byte {
	buf, _ := s.MarshalBinary()

	return buf
}

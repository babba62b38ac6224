package web

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/vip8"
)

func newTestServer(t *testing.T, program []byte, configs ...ServerConfigCb) (*Server, *httptest.Server) {
	t.Helper()

	quiet := func(config *ServerConfig) {
		config.Machine = append(config.Machine, vip8.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	}
	server := NewServer(append([]ServerConfigCb{quiet}, configs...)...)
	if err := server.LoadProgram(program); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}
	if err := server.Console().Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return server, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+path, nil)
	if err != nil {
		t.Fatalf(`Dial(%s) returned an error %v`, path, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func get(t *testing.T, url string) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf(`GET %s returned an error %v`, url, err)
	}
	resp.Body.Close()

	return resp.StatusCode
}

func TestDisplaySocketForwardsKeys(t *testing.T) {
	server, ts := newTestServer(t, []byte{
		// wait for a key in v0
		0xF0, 0x0A,
		0x12, 0x02,
	})
	conn := dial(t, ts, "/display")

	_, screen, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	if len(screen) != vip8.ScreenSize {
		t.Fatalf(`first message has %d bytes, expected the %d bytes of the screen`, len(screen), vip8.ScreenSize)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{ActionKeyDown, 0x5}); err != nil {
		t.Fatalf(`WriteMessage() returned an error %v`, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if code := get(t, ts.URL+"/step"); code != http.StatusOK {
			t.Fatalf(`GET /step returned %d`, code)
		}
		if s, _ := server.Console().Snapshot(); s.V[0] == 0x5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf(`the key never reached the machine`)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !server.Console().Halted() {
		t.Fatalf(`console not halted after the key`)
	}
}

func TestControlRoutes(t *testing.T) {
	server, ts := newTestServer(t, []byte{0x60, 0x01, 0x12, 0x02})

	if server.Console().IsRunning() {
		t.Fatalf(`a new server must start paused`)
	}

	get(t, ts.URL+"/start")
	if !server.Console().IsRunning() {
		t.Fatalf(`GET /start did not start the console`)
	}

	get(t, ts.URL+"/stop")
	if server.Console().IsRunning() {
		t.Fatalf(`GET /stop did not stop the console`)
	}

	get(t, ts.URL+"/step")
	if s, _ := server.Console().Snapshot(); s.V[0] != 1 {
		t.Fatalf(`GET /step did not run a cycle`)
	}

	get(t, ts.URL+"/reset")
	if s, _ := server.Console().Snapshot(); s.V[0] != 0 || s.Pc != 0x200 {
		t.Fatalf(`GET /reset did not reset the machine: %+v`, s)
	}
}

func TestLoadProgram(t *testing.T) {
	server, ts := newTestServer(t, []byte{0x12, 0x00})

	resp, err := http.Post(ts.URL+"/load", "application/octet-stream", bytes.NewReader([]byte{0x60, 0x42}))
	if err != nil {
		t.Fatalf(`POST /load returned an error %v`, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf(`POST /load returned %d`, resp.StatusCode)
	}

	get(t, ts.URL+"/step")
	if s, _ := server.Console().Snapshot(); s.V[0] != 0x42 {
		t.Fatalf(`the loaded program did not run`)
	}

	resp, err = http.Post(ts.URL+"/load", "application/octet-stream", bytes.NewReader(make([]byte, vip8.MaxProgramSize+1)))
	if err != nil {
		t.Fatalf(`POST /load returned an error %v`, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf(`POST /load of an oversized program returned %d`, resp.StatusCode)
	}
}

func TestDebuggerStreamsSnapshots(t *testing.T) {
	_, ts := newTestServer(t, []byte{0x60, 0x01, 0x12, 0x02}, func(config *ServerConfig) {
		config.UseDebugger = true
	})
	conn := dial(t, ts, "/debugger")

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	if len(msg) != vip8.SnapshotSize {
		t.Fatalf(`snapshot has %d bytes, expected %d`, len(msg), vip8.SnapshotSize)
	}
	if msg[2] != 0x02 || msg[3] != 0x00 {
		t.Fatalf(`initial pc = %x%02x, expected 200`, msg[2], msg[3])
	}

	get(t, ts.URL+"/step")

	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	if msg[2] != 0x02 || msg[3] != 0x02 {
		t.Fatalf(`pc after a step = %x%02x, expected 202`, msg[2], msg[3])
	}
}

func TestDebuggerNoticesDisconnects(t *testing.T) {
	server, ts := newTestServer(t, []byte{0x60, 0x01, 0x12, 0x02}, func(config *ServerConfig) {
		config.UseDebugger = true
	})

	conn := dial(t, ts, "/debugger")
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	conn.Close()

	// the console is paused, nothing is ever published for the closed client
	deadline := time.Now().Add(2 * time.Second)
	for server.debugger.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf(`%d debugger clients still connected after the client left`, server.debugger.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}

	// a new client gets every snapshot
	conn = dial(t, ts, "/debugger")
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	get(t, ts.URL+"/step")

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf(`ReadMessage() returned an error %v`, err)
	}
	if msg[2] != 0x02 || msg[3] != 0x02 {
		t.Fatalf(`pc after a step = %x%02x, expected 202`, msg[2], msg[3])
	}
}

func TestSlowDisplayClientIsDropped(t *testing.T) {
	server, ts := newTestServer(t, []byte{0x12, 0x00}, func(config *ServerConfig) {
		config.WriteTimeout = 50 * time.Millisecond
	})

	// connects and never reads
	dial(t, ts, "/display")
	deadline := time.Now().Add(2 * time.Second)
	for !server.hasDisplayClient() {
		if time.Now().After(deadline) {
			t.Fatalf(`the display client never connected`)
		}
		time.Sleep(time.Millisecond)
	}

	screen := make(vip8.Screen, vip8.ScreenSize)
	deadline = time.Now().Add(10 * time.Second)
	for server.hasDisplayClient() {
		start := time.Now()
		if err := server.Render(screen); err != nil {
			t.Fatalf(`Render() returned an error %v`, err)
		}
		if took := time.Since(start); took > time.Second {
			t.Fatalf(`Render() blocked for %v`, took)
		}
		if time.Now().After(deadline) {
			t.Fatalf(`a client that never reads was not dropped`)
		}
	}

	// without a client rendering is a no-op
	if err := server.Render(screen); err != nil {
		t.Fatalf(`Render() without a client returned an error %v`, err)
	}
}

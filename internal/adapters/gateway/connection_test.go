package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/metrics"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/internal/infrastructure/config"
)

type nopLogger struct{}

func (nopLogger) Log(string, string, map[string]interface{}) {}

// newTestGateway serves the websocket handler over httptest. The tests
// only exchange connection-level control frames, so no dispatcher is
// wired behind it.
func newTestGateway(t *testing.T, pongTimeout time.Duration) *httptest.Server {
	t.Helper()
	cfg := &config.ServerConfig{
		ListenAddr:      ":0",
		RateLimit:       config.RateLimitConfig{Requests: 100, Burst: 100},
		MaxMessageBytes: 64 * 1024,
		WriteTimeout:    time.Second,
		PongTimeout:     pongTimeout,
	}
	hub := appevents.NewHub()
	server := NewServer(cfg, nopLogger{}, nil, hub, metrics.NewCollector(hub), "")
	ts := httptest.NewServer(http.HandlerFunc(server.handleWebSocket))
	t.Cleanup(ts.Close)
	return ts
}

func dialGateway(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readFrames(ws *websocket.Conn, out chan<- map[string]interface{}) {
	for {
		var frame map[string]interface{}
		if err := ws.ReadJSON(&frame); err != nil {
			close(out)
			return
		}
		out <- frame
	}
}

func TestWebSocket_PingKeepsIdleConnectionAlive(t *testing.T) {
	// Arrange
	ts := newTestGateway(t, time.Second)
	ws := dialGateway(t, ts)
	frames := make(chan map[string]interface{}, 8)
	go readFrames(ws, frames)

	// Act: stay idle past two ping cycles. The reader is parked in
	// ReadJSON, so the client's default pong handler answers each ping.
	time.Sleep(2500 * time.Millisecond)
	require.NoError(t, ws.WriteJSON(map[string]interface{}{
		"command":      "subscribe_my_messages",
		"character_id": "char-1",
	}))

	// Assert
	select {
	case frame, ok := <-frames:
		require.True(t, ok, "connection was closed while idle")
		assert.Equal(t, true, frame["success"])
	case <-time.After(2 * time.Second):
		t.Fatal("no response after the idle period")
	}
}

func TestWebSocket_UnresponsivePeerIsDisconnected(t *testing.T) {
	// Arrange
	ts := newTestGateway(t, 300*time.Millisecond)
	ws := dialGateway(t, ts)
	// Swallow pings so the server never sees a pong.
	ws.SetPingHandler(func(string) error { return nil })

	// Act
	done := make(chan error, 1)
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				done <- err
				return
			}
		}
	}()

	// Assert
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server kept a silent connection open past the pong deadline")
	}
}

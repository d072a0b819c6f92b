package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
	"github.com/andrescamacho/tradewars-server/pkg/utils"
)

var upgrader = websocket.Upgrader{
	// The server speaks to trusted game clients and local tooling; origin
	// enforcement belongs to the reverse proxy in front of it.
	CheckOrigin: func(*http.Request) bool { return true },
}

// connectionControl is the envelope subset the gateway reads to intercept
// connection-level commands before they reach the dispatcher.
type connectionControl struct {
	Command       string `json:"command"`
	RequestID     string `json:"request_id,omitempty"`
	CharacterID   string `json:"character_id,omitempty"`
	AdminPassword string `json:"admin_password,omitempty"`
}

// connection pairs one websocket with its event subscription. The write
// mutex serializes frames from the read pump (command responses) and the
// event pump; gorilla allows only one concurrent writer.
type connection struct {
	id     string
	ws     *websocket.Conn
	server *Server

	writeMu sync.Mutex

	subMu sync.Mutex
	sub   *appevents.Subscription
	// pumpCancel stops the event pump when the subscription is replaced
	// or the connection closes.
	pumpCancel context.CancelFunc
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Log("warn", "websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.collector.ConnectionOpened()
	defer s.collector.ConnectionClosed()

	conn := &connection{
		id:     utils.ShortUUID(),
		ws:     ws,
		server: s,
	}
	defer conn.close()

	ctx := common.WithLogger(r.Context(), s.logger)
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go conn.pingLoop(pingCtx)
	conn.readPump(ctx)
}

// pingLoop keeps the connection alive. A client that stops answering
// pings trips the read deadline and the read pump exits.
func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.server.cfg.PongTimeout * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.server.cfg.WriteTimeout))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// readPump drives the connection: one command frame in, one response
// frame out, at most RateLimit commands per second.
func (c *connection) readPump(ctx context.Context) {
	s := c.server
	c.ws.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})
	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.Requests), s.cfg.RateLimit.Burst)

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		// Throttling blocks the read loop, which backpressures the client
		// instead of rejecting frames.
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		var ctl connectionControl
		if unmarshalErr := json.Unmarshal(raw, &ctl); unmarshalErr == nil && c.intercept(ctx, &ctl) {
			continue
		}

		response := s.dispatcher.Dispatch(ctx, raw)
		outcome := "ok"
		if response["success"] == false {
			outcome = "error"
		}
		s.collector.CommandDispatched(ctl.Command, outcome)
		c.send(response)
	}
}

// intercept handles the commands that live on the connection, not in the
// world: subscription binding and delivery pause/resume.
func (c *connection) intercept(ctx context.Context, ctl *connectionControl) bool {
	switch ctl.Command {
	case "subscribe_my_messages":
		c.subscribe(ctx, ctl)
	case "pause_event_delivery":
		c.ack(ctl, c.server.hub.Pause(c.id))
	case "resume_event_delivery":
		c.ack(ctl, c.server.hub.Resume(c.id))
	default:
		return false
	}
	return true
}

// subscribe binds the connection to a character's event stream and starts
// the event pump. Resubscribing rebinds; the old stream is dropped.
func (c *connection) subscribe(ctx context.Context, ctl *connectionControl) {
	s := c.server
	if ctl.CharacterID == "" && ctl.AdminPassword == "" {
		c.send(map[string]interface{}{
			"success": false,
			"status":  400,
			"detail":  "character_id: must not be empty",
		})
		return
	}
	admin := s.adminPassword != "" && ctl.AdminPassword != "" &&
		subtle.ConstantTimeCompare([]byte(ctl.AdminPassword), []byte(s.adminPassword)) == 1
	if ctl.AdminPassword != "" && !admin {
		c.send(map[string]interface{}{
			"success": false,
			"status":  403,
			"detail":  "admin password rejected",
		})
		return
	}

	c.subMu.Lock()
	if c.pumpCancel != nil {
		c.pumpCancel()
	}
	s.hub.Unsubscribe(c.id)
	sub := s.hub.Subscribe(c.id, ctl.CharacterID, admin)
	pumpCtx, cancel := context.WithCancel(ctx)
	c.sub = sub
	c.pumpCancel = cancel
	c.subMu.Unlock()

	go c.eventPump(pumpCtx, sub)
	c.ack(ctl, nil)
}

// eventPump forwards delivered events until the subscription closes.
func (c *connection) eventPump(ctx context.Context, sub *appevents.Subscription) {
	for {
		evt, err := sub.Next(ctx)
		if err != nil {
			return
		}
		c.send(evt)
	}
}

func (c *connection) ack(ctl *connectionControl, err error) {
	if err != nil {
		c.send(map[string]interface{}{
			"success": false,
			"status":  404,
			"detail":  err.Error(),
		})
		return
	}
	out := map[string]interface{}{
		"success": true,
		"command": ctl.Command,
	}
	if ctl.RequestID != "" {
		out["request_id"] = ctl.RequestID
	}
	c.send(out)
}

// send writes one JSON frame under the write deadline. Write errors are
// left to the read pump, which notices the broken connection.
func (c *connection) send(payload interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.server.cfg.WriteTimeout))
	if err := c.ws.WriteJSON(payload); err != nil {
		c.server.logger.Log("debug", "websocket write failed", map[string]interface{}{
			"connection": c.id,
			"error":      err.Error(),
		})
	}
}

func (c *connection) close() {
	c.subMu.Lock()
	if c.pumpCancel != nil {
		c.pumpCancel()
	}
	c.subMu.Unlock()
	c.server.hub.Unsubscribe(c.id)
	_ = c.ws.Close()
}

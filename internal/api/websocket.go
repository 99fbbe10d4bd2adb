package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/devmodel/internal/auth"
	"github.com/nerrad567/devmodel/internal/infrastructure/config"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// Message types. Clients send subscribe, unsubscribe and ping; the server
// sends event, ack, pong and error.
const (
	msgSubscribe   = "subscribe"
	msgUnsubscribe = "unsubscribe"
	msgPing        = "ping"

	msgEvent = "event"
	msgAck   = "ack"
	msgPong  = "pong"
	msgError = "error"
)

// clientMessage is a frame received from a client.
type clientMessage struct {
	Type     string   `json:"type"`
	ID       string   `json:"id,omitempty"`
	Channels []string `json:"channels,omitempty"`
}

// serverMessage is a frame sent to a client. An ack carries the full
// subscription set after the change.
type serverMessage struct {
	Type     string      `json:"type"`
	ID       string      `json:"id,omitempty"`
	Channel  string      `json:"channel,omitempty"`
	Event    *qdev.Event `json:"event,omitempty"`
	Channels []string    `json:"channels,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// checkChannels rejects names that match no lifecycle event.
func checkChannels(channels []string) error {
	for _, ch := range channels {
		if !eventChannels[ch] {
			return fmt.Errorf("unknown channel %q", ch)
		}
	}
	return nil
}

// wsClient is one connected event stream.
type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	subject string // token subject, for logs

	mu       sync.Mutex
	channels map[string]struct{}
}

func newWSClient(hub *Hub, conn *websocket.Conn, subject string, channels []string) *wsClient {
	c := &wsClient{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, clientBufferSize),
		subject:  subject,
		channels: make(map[string]struct{}, len(channels)),
	}
	c.subscribe(channels)
	return c
}

func (c *wsClient) wants(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exact := c.channels[channel]
	_, all := c.channels[AllEventsChannel]
	return exact || all
}

// subscribe adds channels and returns the sorted subscription set.
func (c *wsClient) subscribe(channels []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		c.channels[ch] = struct{}{}
	}
	return c.sortedLocked()
}

// unsubscribe removes channels and returns the sorted subscription set.
func (c *wsClient) unsubscribe(channels []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		delete(c.channels, ch)
	}
	return c.sortedLocked()
}

func (c *wsClient) sortedLocked() []string {
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	slices.Sort(out)
	return out
}

// handle answers one client frame.
func (c *wsClient) handle(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.reply(c, serverMessage{Type: msgError, Error: "invalid JSON message"})
		return
	}

	switch msg.Type {
	case msgPing:
		c.hub.reply(c, serverMessage{Type: msgPong, ID: msg.ID})
	case msgSubscribe, msgUnsubscribe:
		if err := checkChannels(msg.Channels); err != nil {
			c.hub.reply(c, serverMessage{Type: msgError, ID: msg.ID, Error: err.Error()})
			return
		}
		var now []string
		if msg.Type == msgSubscribe {
			now = c.subscribe(msg.Channels)
		} else {
			now = c.unsubscribe(msg.Channels)
		}
		c.hub.logger.Debug("websocket subscriptions changed", "subject", c.subject, "channels", now)
		c.hub.reply(c, serverMessage{Type: msgAck, ID: msg.ID, Channels: now})
	default:
		c.hub.reply(c, serverMessage{Type: msgError, ID: msg.ID, Error: "unknown message type " + msg.Type})
	}
}

// handleWebSocket upgrades to an event stream. Browsers cannot set headers
// on the upgrade request, so the token travels in the token query parameter;
// the optional comma-separated channels parameter subscribes immediately.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	claims, err := auth.ParseToken(q.Get("token"), s.secCfg.JWT.Secret)
	if err != nil {
		writeUnauthorized(w, "valid token query parameter required")
		return
	}
	if !auth.HasPermission(claims.Role, auth.PermEventsStream) {
		writeForbidden(w, "requires "+string(auth.PermEventsStream))
		return
	}

	var channels []string
	if v := q.Get("channels"); v != "" {
		for _, ch := range strings.Split(v, ",") {
			if ch = strings.TrimSpace(ch); ch != "" {
				channels = append(channels, ch)
			}
		}
	}
	if err := checkChannels(channels); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newWSClient(s.hub, conn, claims.Subject, channels)
	s.hub.add(c)
	go c.writePump(s.wsCfg)
	go c.readPump(s.wsCfg)
}

// readPump feeds client frames to handle until the connection fails, then
// removes the client from the hub.
func (c *wsClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	idle := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(idle)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // a failed deadline surfaces as a read error
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.subject, "error", err)
			}
			return
		}
		//nolint:errcheck // a failed deadline surfaces as a read error
		extend()
		c.handle(data)
	}
}

// writePump drains the send channel and pings the client. A closed send
// channel means the hub dropped the client.
func (c *wsClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		kind, data := websocket.PingMessage, []byte(nil)
		select {
		case msg, ok := <-c.send:
			if !ok {
				//nolint:errcheck // connection is closing anyway
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			kind, data = websocket.TextMessage, msg
		case <-ticker.C:
		}
		//nolint:errcheck // a failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

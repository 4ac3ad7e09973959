// Package ws exposes the real-time channel: admitted connections receive
// fanout events and send chat messages over a single websocket.
package ws

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"lanchat/auth"
	"lanchat/domain/event"
	"lanchat/errors"
	"lanchat/observability"
	"lanchat/runtime"
	"lanchat/services"
)

const maxInboundBytes = 1 << 16

// SessionResolver maps an inbound request to its authenticated session.
type SessionResolver interface {
	FromRequest(r *http.Request) (auth.Session, error)
}

type Server struct {
	log        *slog.Logger
	upgrader   websocket.Upgrader
	resolver   SessionResolver
	presence   *runtime.Registry
	bus        *runtime.Bus
	chat       services.IChatService
	monitor    *observability.Monitor
	bufferSize int
	pingEvery  time.Duration
}

func NewServer(log *slog.Logger, resolver SessionResolver, presence *runtime.Registry,
	bus *runtime.Bus, chat services.IChatService, monitor *observability.Monitor,
	bufferSize int, pingEvery time.Duration) *Server {
	return &Server{
		log:      log,
		resolver: resolver,
		presence: presence,
		bus:      bus,
		chat:     chat,
		monitor:  monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// LAN deployment, any origin on the local network may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		pingEvery:  pingEvery,
	}
}

// HandleWS upgrades the connection for an authenticated session. A request
// without a bound identity is refused before the upgrade, the equivalent of
// a hard close.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.resolver.FromRequest(r)
	if err != nil {
		http.Error(w, errors.ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := newConn(conn, sess.Username, s.bufferSize)
	online, err := s.presence.Admit(c.id, c.username, c)
	if err != nil {
		s.log.Warn("Connection refused", "user", sess.Username, "error", err)
		_ = conn.Close()
		return
	}
	s.monitor.IncrConnectionsAdmitted()
	s.log.Info("User connected", "user", c.username, "conn", c.id)
	s.bus.Publish(event.PresenceChanged{Online: online})

	go c.writeLoop(s.log, s.pingEvery)
	s.readLoop(c)
	s.disconnect(c)
}

// disconnect removes the connection exactly once, whatever the close
// reason, and announces the new presence snapshot.
func (s *Server) disconnect(c *wsConn) {
	c.teardown.Do(func() {
		close(c.done)
		online := s.presence.Remove(c.id)
		s.log.Info("User disconnected", "user", c.username, "conn", c.id)
		s.bus.Publish(event.PresenceChanged{Online: online})
	})
}

func (s *Server) readLoop(c *wsConn) {
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			// Disconnects are the normal terminal state of a
			// connection, not an error condition.
			return
		}
		var in Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.Consume(event.ErrorMessage{Reason: "Malformed message."})
			continue
		}
		s.handleMessage(c, in.Message)
	}
}

// handleMessage appends and broadcasts a chat message. Failures are soft:
// the sender gets an error event, nobody else sees anything.
func (s *Server) handleMessage(c *wsConn, body string) {
	if strings.TrimSpace(body) == "" {
		c.Consume(event.ErrorMessage{Reason: "Empty message."})
		return
	}
	if _, err := s.chat.PostMessage(c.username, body); err != nil {
		s.log.Error("Message rejected", "user", c.username, "error", err)
		c.Consume(event.ErrorMessage{Reason: rejectionReason(err)})
	}
}

func rejectionReason(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrEmptyMessage):
		return "Empty message."
	case stderrors.Is(err, errors.ErrMessageTooLong):
		return "Message too long."
	default:
		return "Failed to send message."
	}
}

package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lanchat/domain/event"
)

const writeWait = 5 * time.Second

// wsConn wraps one live websocket connection. Events are enqueued into a
// bounded send buffer and written by a single write loop, so delivery to a
// connection preserves enqueue order without holding any shared lock
// during network writes.
type wsConn struct {
	id       uuid.UUID
	username string
	conn     *websocket.Conn
	send     chan Envelope
	done     chan struct{}
	teardown sync.Once
}

func newConn(conn *websocket.Conn, username string, bufferSize int) *wsConn {
	return &wsConn{
		id:       uuid.New(),
		username: username,
		conn:     conn,
		send:     make(chan Envelope, bufferSize),
		done:     make(chan struct{}),
	}
}

// Consume implements contract.EventSink. It never blocks: when the buffer
// is full or the connection is closing, the event is dropped for this
// connection only and false is reported.
func (c *wsConn) Consume(e event.DomainEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- toEnvelope(e):
		return true
	default:
		return false
	}
}

// writeLoop drains the send buffer and keeps the peer alive with pings.
// On any write failure it closes the underlying connection, which unblocks
// the read loop and triggers the server-side teardown.
func (c *wsConn) writeLoop(log *slog.Logger, pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				log.Debug("Write failed, closing connection", "user", c.username, "error", err)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			_ = c.conn.Close()
			return
		}
	}
}

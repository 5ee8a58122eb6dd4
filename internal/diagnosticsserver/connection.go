package diagnosticsserver

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// viewerConn is a single diagnostics-viewer connection. It only ever
// writes — plan-viewer has nothing to send back — so unlike the
// teacher's Connection it runs no readPump beyond the one needed to
// notice the peer going away, grounded on internal/server/connection.go's
// send-channel-plus-writePump shape, trimmed to one direction.
type viewerConn struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	closeOnce sync.Once
	closed    chan struct{}
}

func newViewerConn(conn *websocket.Conn, logger *log.Logger) *viewerConn {
	return &viewerConn{
		conn:   conn,
		send:   make(chan *Message, 64),
		logger: logger.WithPrefix("viewer"),
		closed: make(chan struct{}),
	}
}

func (c *viewerConn) start() {
	go c.writePump()
	go c.readPump()
}

func (c *viewerConn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// publish enqueues msg for delivery, dropping it if the viewer's
// buffer is full rather than blocking the broadcaster — a slow
// diagnostics viewer must never stall a solve.
func (c *viewerConn) publish(msg *Message) {
	select {
	case c.send <- msg:
	case <-c.closed:
	default:
		c.logger.Warn("viewer send buffer full, dropping snapshot")
	}
}

func (c *viewerConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write snapshot failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}

// readPump only drains and discards, so the underlying TCP connection
// notices a client-initiated close or pong timeout.
func (c *viewerConn) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

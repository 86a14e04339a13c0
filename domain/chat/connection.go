package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drewby/chackgpt/pkg/logger"
)

const (
	writeWait = 10 * time.Second

	// sendBuffer is how many frames may wait for a slow client before it is
	// disconnected.
	sendBuffer = 256

	// pendingMessages bounds SendMessage calls queued behind a running one.
	pendingMessages = 4
)

// Connection is one client socket. Only the write pump writes to the
// socket; everything else queues frames through Send.
type Connection struct {
	ID string

	ws      *websocket.Conn
	send    chan []byte
	pending chan string
	done    chan struct{}
	once    sync.Once
	ctx     context.Context
	cancel  context.CancelFunc
	log     *slog.Logger
}

func newConnection(parent context.Context, id string, ws *websocket.Conn, log *slog.Logger) *Connection {
	ctx, cancel := context.WithCancel(parent)
	return &Connection{
		ID:      id,
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
		pending: make(chan string, pendingMessages),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(slog.String("connection_id", id)),
	}
}

// Context is canceled when the connection closes.
func (c *Connection) Context() context.Context { return c.ctx }

// Done is closed when the connection closes.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Send queues a method invocation for the client.
func (c *Connection) Send(method string, args ...any) bool {
	frame, err := encodeEvent(method, args...)
	if err != nil {
		c.log.Error("failed to encode frame", slog.String("method", method), logger.Error(err))
		return false
	}
	return c.sendFrame(frame)
}

// sendFrame never blocks. A client whose buffer is full is disconnected.
func (c *Connection) sendFrame(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		framesDropped.Inc()
		c.log.Warn("send buffer full, closing slow client")
		c.Close()
		return false
	}
}

// Close tears the connection down. It is safe to call more than once.
func (c *Connection) Close() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// writePump drains the send queue and pings the client every heartbeat.
func (c *Connection) writePump(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

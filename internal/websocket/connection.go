package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection wraps one WebSocket connection with its identity and a
// buffered outbound queue. The write pump is the only reader of Send.
type Connection struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	LastSeen time.Time

	mutex  sync.Mutex
	closed bool
}

// NewConnection creates a connection wrapper with a fresh unique id
func NewConnection(conn *websocket.Conn, sendBuffer int) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		LastSeen: time.Now(),
	}
}

// Enqueue queues a payload for delivery without blocking. It reports
// false when the queue has been closed, or when it is full, which
// marks the connection as unresponsive.
func (c *Connection) Enqueue(payload []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- payload:
		return true
	default:
		log.Printf("❌ Send queue full for connection %s", c.ID)
		return false
	}
}

// CloseSend closes the outbound queue. A disconnecting connection can
// race a concurrent fan-out, so closing is serialized with Enqueue and
// safe to call more than once.
func (c *Connection) CloseSend() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

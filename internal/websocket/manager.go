package websocket

import (
	"errors"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"chat-relay/internal/config"
)

// ErrServerFull is returned when the connection limit is reached.
var ErrServerFull = errors.New("connection limit reached")

// Manager owns the set of live WebSocket connections and delivers
// payloads to them. It knows nothing about sessions or rooms; callers
// hand it explicit connection ids to deliver to.
type Manager struct {
	connections map[string]*Connection
	mutex       sync.RWMutex
	config      *config.ServerConfig
	metrics     *config.ServerMetrics
}

// NewManager creates a new connection manager
func NewManager(cfg *config.ServerConfig, metrics *config.ServerMetrics) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		config:      cfg,
		metrics:     metrics,
	}
}

// Add registers a new connection and returns its wrapper
func (m *Manager) Add(conn *websocket.Conn) (*Connection, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.connections) >= m.config.MaxConnections {
		log.Printf("❌ Connection limit reached (%d), rejecting", m.config.MaxConnections)
		return nil, ErrServerFull
	}

	wsConn := NewConnection(conn, m.config.SendBuffer)
	m.connections[wsConn.ID] = wsConn
	m.metrics.IncrementConnections()
	log.Printf("📝 Connection registered: %s (Total: %d/%d)", wsConn.ID, len(m.connections), m.config.MaxConnections)

	return wsConn, nil
}

// Remove unregisters a connection and closes its send queue. Removing
// an unknown id is a no-op.
func (m *Manager) Remove(connID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conn, exists := m.connections[connID]
	if !exists {
		return
	}

	delete(m.connections, connID)
	conn.CloseSend()
	m.metrics.DecrementConnections()
	log.Printf("🗑️ Connection unregistered: %s (Total: %d/%d)", connID, len(m.connections), m.config.MaxConnections)
}

// Get returns a connection by id
func (m *Manager) Get(connID string) (*Connection, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	conn, exists := m.connections[connID]
	return conn, exists
}

// Count returns the number of live connections
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.connections)
}

// SendTo delivers a payload to one connection. It reports false when
// the connection is unknown or unresponsive; unresponsive connections
// are dropped.
func (m *Manager) SendTo(connID string, payload []byte) bool {
	m.mutex.RLock()
	conn, exists := m.connections[connID]
	m.mutex.RUnlock()

	if !exists {
		return false
	}

	if !conn.Enqueue(payload) {
		m.dropUnresponsive(connID)
		return false
	}
	return true
}

// SendToMany delivers a payload to each of the given connections and
// returns how many deliveries were queued.
func (m *Manager) SendToMany(connIDs []string, payload []byte) int {
	sent := 0
	for _, connID := range connIDs {
		if m.SendTo(connID, payload) {
			sent++
		}
	}
	return sent
}

func (m *Manager) dropUnresponsive(connID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conn, exists := m.connections[connID]
	if !exists {
		return
	}

	delete(m.connections, connID)
	conn.CloseSend()
	conn.Conn.Close()
	m.metrics.DecrementConnections()
	log.Printf("🔌 Removed unresponsive connection: %s", connID)
}

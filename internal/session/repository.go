package session

import (
	"errors"
	"sync"
	"time"
)

// ErrInvalidInput is returned when a session is registered with an
// empty username.
var ErrInvalidInput = errors.New("username cannot be empty")

// ErrSessionUnknown is returned when no session exists for a connection.
var ErrSessionUnknown = errors.New("no session for connection")

// Repository manages session data
type Repository interface {
	Create(connID, username, room string) (*Session, error)
	GetByID(connID string) (*Session, bool)
	SetRoom(connID, room string) error
	Delete(connID string) error
	GetAll() []*Session
	GetByRoom(room string) []*Session
	UpdateLastActive(connID string)
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*Session),
	}
}

// Create creates a new session for a connection
func (r *InMemoryRepository) Create(connID, username, room string) (*Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if username == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	sess := &Session{
		ID:         connID,
		Username:   username,
		Room:       room,
		JoinedAt:   now,
		LastActive: now,
	}
	r.sessions[connID] = sess

	return sess, nil
}

// GetByID gets a session by connection ID
func (r *InMemoryRepository) GetByID(connID string) (*Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	sess, exists := r.sessions[connID]
	return sess, exists
}

// SetRoom updates the current room for a connection's session
func (r *InMemoryRepository) SetRoom(connID, room string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	sess, exists := r.sessions[connID]
	if !exists {
		return ErrSessionUnknown
	}

	sess.Room = room
	sess.LastActive = time.Now()
	return nil
}

// Delete removes a session. Deleting an already removed session is a no-op.
func (r *InMemoryRepository) Delete(connID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.sessions[connID]; !exists {
		return ErrSessionUnknown
	}

	delete(r.sessions, connID)
	return nil
}

// GetAll returns a snapshot of all live sessions. Callers get copies,
// never the stored sessions, so later mutations cannot race a reader.
func (r *InMemoryRepository) GetAll() []*Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		snapshot := *sess
		sessions = append(sessions, &snapshot)
	}
	return sessions
}

// GetByRoom returns a snapshot of the sessions currently in a room
func (r *InMemoryRepository) GetByRoom(room string) []*Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*Session, 0)
	for _, sess := range r.sessions {
		if sess.Room == room {
			snapshot := *sess
			sessions = append(sessions, &snapshot)
		}
	}
	return sessions
}

// UpdateLastActive updates a session's last active time
func (r *InMemoryRepository) UpdateLastActive(connID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if sess, exists := r.sessions[connID]; exists {
		sess.LastActive = time.Now()
	}
}

package session

import (
	"log"

	"chat-relay/internal/config"
)

// Service handles session registry business logic
type Service interface {
	Register(connID, username, room string) (*Session, error)
	Lookup(connID string) (*Session, bool)
	SetRoom(connID, room string) error
	Unregister(connID string) error
	GetAll() []*Session
	GetByRoom(room string) []*Session
	UpdateLastActive(connID string)
}

// service implements Service
type service struct {
	repo    Repository
	metrics *config.ServerMetrics
}

// NewService creates a new session service
func NewService(repo Repository, metrics *config.ServerMetrics) Service {
	return &service{
		repo:    repo,
		metrics: metrics,
	}
}

// Register creates a session for a connection
func (s *service) Register(connID, username, room string) (*Session, error) {
	sess, err := s.repo.Create(connID, username, room)
	if err != nil {
		return nil, err
	}

	log.Printf("👤 Session registered: %s in room '%s' (ConnID: %s)", username, room, connID)
	s.metrics.IncrementSessions()
	return sess, nil
}

// Lookup returns the session for a connection
func (s *service) Lookup(connID string) (*Session, bool) {
	return s.repo.GetByID(connID)
}

// SetRoom moves a session to another room
func (s *service) SetRoom(connID, room string) error {
	return s.repo.SetRoom(connID, room)
}

// Unregister removes a session
func (s *service) Unregister(connID string) error {
	err := s.repo.Delete(connID)
	if err != nil {
		return err
	}

	log.Printf("👋 Session unregistered (ConnID: %s)", connID)
	s.metrics.DecrementSessions()
	return nil
}

// GetAll returns all live sessions
func (s *service) GetAll() []*Session {
	return s.repo.GetAll()
}

// GetByRoom returns all sessions currently in a room
func (s *service) GetByRoom(room string) []*Session {
	return s.repo.GetByRoom(room)
}

// UpdateLastActive updates a session's last active time
func (s *service) UpdateLastActive(connID string) {
	s.repo.UpdateLastActive(connID)
}

package room

import (
	"log"

	"chat-relay/internal/message"
)

// Service handles room directory business logic
type Service interface {
	Exists(name string) bool
	Names() []string
	Join(name, connID string) error
	Leave(name, connID string) error
	Members(name string) []string
	Append(name string, msg *message.Message) error
	History(name string) []*message.Message
	Page(name string, page, pageSize int) Page
	MarkRead(name string, messageID int64, connID string) (bool, error)
}

// service implements Service
type service struct {
	repo Repository
}

// NewService creates a new room service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Exists reports whether a room is configured
func (s *service) Exists(name string) bool {
	return s.repo.Exists(name)
}

// Names returns the configured room names
func (s *service) Names() []string {
	return s.repo.Names()
}

// Join adds a connection to a room's member set
func (s *service) Join(name, connID string) error {
	err := s.repo.Join(name, connID)
	if err != nil {
		return err
	}

	log.Printf("🚪 Connection %s joined room '%s' (%d members)", connID, name, len(s.repo.Members(name)))
	return nil
}

// Leave removes a connection from a room's member set
func (s *service) Leave(name, connID string) error {
	err := s.repo.Leave(name, connID)
	if err != nil {
		return err
	}

	log.Printf("🚪 Connection %s left room '%s' (%d members)", connID, name, len(s.repo.Members(name)))
	return nil
}

// Members returns a snapshot of the connection ids in a room
func (s *service) Members(name string) []string {
	return s.repo.Members(name)
}

// Append adds a message to a room's bounded log
func (s *service) Append(name string, msg *message.Message) error {
	return s.repo.Append(name, msg)
}

// History returns a snapshot of a room's log
func (s *service) History(name string) []*message.Message {
	return s.repo.History(name)
}

// Page returns one page of a room's log
func (s *service) Page(name string, page, pageSize int) Page {
	return s.repo.Page(name, page, pageSize)
}

// MarkRead records a read receipt on a logged message
func (s *service) MarkRead(name string, messageID int64, connID string) (bool, error) {
	return s.repo.MarkRead(name, messageID, connID)
}

package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"chat-relay/internal/config"
	"chat-relay/internal/message"
	"chat-relay/internal/room"
	"chat-relay/internal/security"
	"chat-relay/internal/session"
	"chat-relay/internal/typing"
)

// ErrRateLimited is returned when a sender exceeds the message rate limit.
var ErrRateLimited = errors.New("sender exceeded message rate limit")

// Service is the session engine. Every inbound event resolves the
// sender through the session registry, mutates room directory state,
// and fans out to the affected connections under one mutex, so no
// connection ever observes a partial update.
type Service interface {
	Join(connID, username, roomName string) error
	SendMessage(connID, text string) error
	SendFile(connID, filename, roomName string) error
	SendPrivate(connID, recipientID, text string) error
	SetTyping(connID string, isTyping bool) error
	MarkRead(connID, roomName string, messageID int64) error
	SwitchRoom(connID, roomName string) error
	Disconnect(connID string)
}

// service implements Service
type service struct {
	mutex     sync.Mutex
	sessions  session.Service
	rooms     room.Service
	typing    *typing.Tracker
	sender    Sender
	validator *security.InputValidator
	limiter   *config.RateLimiter
	metrics   *config.ServerMetrics
	config    *config.ServerConfig

	roomSeq    map[string]*message.Sequence
	privateSeq *message.Sequence
}

// NewService creates the session engine
func NewService(sessions session.Service, rooms room.Service, tracker *typing.Tracker, sender Sender, validator *security.InputValidator, limiter *config.RateLimiter, metrics *config.ServerMetrics, cfg *config.ServerConfig) Service {
	return &service{
		sessions:   sessions,
		rooms:      rooms,
		typing:     tracker,
		sender:     sender,
		validator:  validator,
		limiter:    limiter,
		metrics:    metrics,
		config:     cfg,
		roomSeq:    make(map[string]*message.Sequence),
		privateSeq: message.NewSequence(),
	}
}

// Join registers a session for a connection and puts it in a room.
// An empty or invalid username rejects the join with no state change.
// An absent or unconfigured room falls back to the default room.
func (s *service) Join(connID, username, roomName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	clean, err := s.validator.ValidateUsername(username)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}

	if roomName == "" {
		roomName = s.config.DefaultRoom
	} else {
		cleanRoom, err := s.validator.ValidateRoomName(roomName)
		if err != nil || !s.rooms.Exists(cleanRoom) {
			log.Printf("⚠️ Join requested unknown room '%s', falling back to '%s'", roomName, s.config.DefaultRoom)
			roomName = s.config.DefaultRoom
		} else {
			roomName = cleanRoom
		}
	}

	// A second join on the same connection replaces its session
	if old, ok := s.sessions.Lookup(connID); ok {
		s.rooms.Leave(old.Room, connID)
		s.typing.Clear(old.Room, connID)
		s.sessions.Unregister(connID)
	}

	if _, err := s.sessions.Register(connID, clean, roomName); err != nil {
		return err
	}
	if err := s.rooms.Join(roomName, connID); err != nil {
		s.sessions.Unregister(connID)
		return err
	}

	members := s.rooms.Members(roomName)
	s.emit(members, EventUserList, s.sessions.GetByRoom(roomName))
	s.emit(members, EventUserJoined, UserRef{Username: clean, ID: connID})
	s.emitTo(connID, EventRoomMessages, s.rooms.History(roomName))

	log.Printf("💬 %s joined room '%s'", clean, roomName)
	return nil
}

// SendMessage stamps a public text message, appends it to the sender's
// current room log, and broadcasts it to the room. Events from
// connections without a session are dropped.
func (s *service) SendMessage(connID, text string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return session.ErrSessionUnknown
	}

	clean, err := s.validator.ValidateMessage(text)
	if err != nil {
		return err
	}
	if !s.limiter.Allow(connID) {
		return ErrRateLimited
	}

	msg := message.NewText(s.nextID(sess.Room), sess.Username, connID, sess.Room, clean)
	if err := s.rooms.Append(sess.Room, msg); err != nil {
		return err
	}

	s.sessions.UpdateLastActive(connID)
	s.metrics.IncrementMessages()
	s.emit(s.rooms.Members(sess.Room), EventReceiveMessage, msg)
	return nil
}

// SendFile stamps a file-share message for an already stored upload
// and routes it to the explicit target room.
func (s *service) SendFile(connID, filename, roomName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return session.ErrSessionUnknown
	}
	if !s.rooms.Exists(roomName) {
		return room.ErrRoomUnknown
	}
	if !s.limiter.Allow(connID) {
		return ErrRateLimited
	}

	fileRef := "/uploads/" + filename
	msg := message.NewFile(s.nextID(roomName), sess.Username, connID, roomName, fileRef)
	if err := s.rooms.Append(roomName, msg); err != nil {
		return err
	}

	s.sessions.UpdateLastActive(connID)
	s.metrics.IncrementMessages()
	s.emit(s.rooms.Members(roomName), EventReceiveMessage, msg)
	return nil
}

// SendPrivate delivers a private message to exactly two destinations:
// the recipient connection, if live, and an echo back to the sender.
// It never touches a room log; a disconnected recipient means the
// message is silently lost.
func (s *service) SendPrivate(connID, recipientID, text string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return session.ErrSessionUnknown
	}

	clean, err := s.validator.ValidateMessage(text)
	if err != nil {
		return err
	}
	if !s.limiter.Allow(connID) {
		return ErrRateLimited
	}

	msg := message.NewPrivate(s.privateSeq.Next(), sess.Username, connID, clean)
	payload, err := encode(EventPrivateMessage, msg)
	if err != nil {
		return err
	}

	s.sender.SendTo(recipientID, payload)
	s.sender.SendTo(connID, payload)
	s.sessions.UpdateLastActive(connID)
	s.metrics.IncrementPrivates()
	return nil
}

// SetTyping flags or clears the sender in its room's typing set and
// broadcasts the room's typing-name list on every change.
func (s *service) SetTyping(connID string, isTyping bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return session.ErrSessionUnknown
	}

	s.typing.Set(sess.Room, connID, isTyping)
	s.broadcastTyping(sess.Room)
	return nil
}

// MarkRead records a read receipt against a logged message and
// broadcasts it to the room on the first mark only. An id that is not
// in the room's log (already evicted, or never there) is a no-op.
func (s *service) MarkRead(connID, roomName string, messageID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	newlyRead, err := s.rooms.MarkRead(roomName, messageID, connID)
	if err != nil {
		return err
	}
	if !newlyRead {
		return nil
	}

	s.metrics.IncrementReceipts()
	s.emit(s.rooms.Members(roomName), EventReadReceipt, ReadReceipt{MessageID: messageID, UserID: connID})
	return nil
}

// SwitchRoom atomically moves a connection between rooms. Switching to
// an unconfigured room, or from a connection with no session, is
// silently ignored.
func (s *service) SwitchRoom(connID, roomName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return session.ErrSessionUnknown
	}

	cleanRoom, err := s.validator.ValidateRoomName(roomName)
	if err != nil || !s.rooms.Exists(cleanRoom) {
		return room.ErrRoomUnknown
	}
	roomName = cleanRoom

	oldRoom := sess.Room
	if err := s.rooms.Leave(oldRoom, connID); err != nil {
		return err
	}
	if err := s.sessions.SetRoom(connID, roomName); err != nil {
		return err
	}
	if err := s.rooms.Join(roomName, connID); err != nil {
		return err
	}

	wasTyping := s.typing.IsTyping(oldRoom, connID)
	s.typing.Clear(oldRoom, connID)

	s.emit(s.rooms.Members(oldRoom), EventUserList, s.sessions.GetByRoom(oldRoom))
	if wasTyping {
		s.broadcastTyping(oldRoom)
	}
	s.emit(s.rooms.Members(roomName), EventUserList, s.sessions.GetByRoom(roomName))
	s.emitTo(connID, EventRoomMessages, s.rooms.History(roomName))

	log.Printf("💬 %s switched to room '%s'", sess.Username, roomName)
	return nil
}

// Disconnect runs the disconnect transition as one step: read the
// session, remove membership, typing flag, and the session itself,
// then notify the old room. Idempotent for connections that never
// joined or already left.
func (s *service) Disconnect(connID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions.Lookup(connID)
	if !ok {
		return
	}

	roomName, username := sess.Room, sess.Username
	s.rooms.Leave(roomName, connID)
	s.typing.Clear(roomName, connID)
	s.sessions.Unregister(connID)
	s.limiter.Forget(connID)

	members := s.rooms.Members(roomName)
	s.emit(members, EventUserLeft, UserRef{Username: username, ID: connID})
	s.emit(members, EventUserList, s.sessions.GetByRoom(roomName))
	s.broadcastTyping(roomName)

	log.Printf("👋 %s left the chat", username)
}

// nextID returns the next message id for a room's sequence
func (s *service) nextID(roomName string) int64 {
	seq, exists := s.roomSeq[roomName]
	if !exists {
		seq = message.NewSequence()
		s.roomSeq[roomName] = seq
	}
	return seq.Next()
}

// broadcastTyping sends a room's current typing-name list to all of
// its members.
func (s *service) broadcastTyping(roomName string) {
	ids := s.typing.Typing(roomName)
	names := make([]string, 0, len(ids))
	for _, connID := range ids {
		if sess, ok := s.sessions.Lookup(connID); ok {
			names = append(names, sess.Username)
		}
	}
	s.emit(s.rooms.Members(roomName), EventTypingUsers, names)
}

// emit encodes an event once and queues it for every given connection
func (s *service) emit(connIDs []string, eventType string, data any) {
	payload, err := encode(eventType, data)
	if err != nil {
		log.Printf("❌ Failed to encode %s event: %v", eventType, err)
		return
	}

	sent := s.sender.SendToMany(connIDs, payload)
	log.Printf("📡 Broadcast %s to %d connections", eventType, sent)
}

// emitTo encodes an event and queues it for a single connection
func (s *service) emitTo(connID, eventType string, data any) {
	payload, err := encode(eventType, data)
	if err != nil {
		log.Printf("❌ Failed to encode %s event: %v", eventType, err)
		return
	}
	s.sender.SendTo(connID, payload)
}

func encode(eventType string, data any) ([]byte, error) {
	return json.Marshal(ServerEvent{Type: eventType, Data: data})
}

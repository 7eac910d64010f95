package message

import (
	"time"
)

// Message represents a single chat message. Once stamped it is immutable
// except for its ReadBy set, which the room directory owns.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"message,omitempty"`
	File      string    `json:"file,omitempty"`
	Sender    string    `json:"sender"`
	SenderID  string    `json:"senderId"`
	Room      string    `json:"room,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	IsFile    bool      `json:"isFile,omitempty"`
	IsPrivate bool      `json:"isPrivate,omitempty"`
	ReadBy    []string  `json:"readBy,omitempty"`
}

// NewText creates a plain text message
func NewText(id int64, sender, senderID, room, text string) *Message {
	return &Message{
		ID:        id,
		Text:      text,
		Sender:    sender,
		SenderID:  senderID,
		Room:      room,
		Timestamp: time.Now(),
	}
}

// NewFile creates a file-share message carrying a file reference
func NewFile(id int64, sender, senderID, room, fileRef string) *Message {
	return &Message{
		ID:        id,
		File:      fileRef,
		Sender:    sender,
		SenderID:  senderID,
		Room:      room,
		Timestamp: time.Now(),
		IsFile:    true,
	}
}

// NewPrivate creates a private message. Private messages carry no room
// and never enter a room log.
func NewPrivate(id int64, sender, senderID, text string) *Message {
	return &Message{
		ID:        id,
		Text:      text,
		Sender:    sender,
		SenderID:  senderID,
		Timestamp: time.Now(),
		IsPrivate: true,
	}
}

// ReadByConnection reports whether a connection has already read this message
func (m *Message) ReadByConnection(connID string) bool {
	for _, id := range m.ReadBy {
		if id == connID {
			return true
		}
	}
	return false
}

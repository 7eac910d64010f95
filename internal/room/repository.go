package room

import (
	"errors"
	"sync"
	"time"

	"chat-relay/internal/message"
)

// ErrRoomUnknown is returned for operations on a room outside the
// configured set.
var ErrRoomUnknown = errors.New("room does not exist")

// ErrMessageNotFound is returned when a message id is not in a room's
// log, typically because it has already been evicted.
var ErrMessageNotFound = errors.New("message not found in room log")

// Repository manages room data
type Repository interface {
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

// InMemoryRepository implements Repository using in-memory storage.
// The room set is fixed at construction; logs start empty and live for
// the process lifetime.
type InMemoryRepository struct {
	rooms        map[string]*Room
	historyLimit int
	mutex        sync.RWMutex
}

// NewInMemoryRepository creates a room repository holding the given
// fixed set of rooms, each log bounded to historyLimit messages.
func NewInMemoryRepository(names []string, historyLimit int) *InMemoryRepository {
	repo := &InMemoryRepository{
		rooms:        make(map[string]*Room, len(names)),
		historyLimit: historyLimit,
	}

	for _, name := range names {
		repo.rooms[name] = &Room{
			Name:      name,
			Log:       make([]*message.Message, 0),
			Members:   make(map[string]struct{}),
			CreatedAt: time.Now(),
		}
	}

	return repo
}

// Exists reports whether a room is in the configured set
func (r *InMemoryRepository) Exists(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, exists := r.rooms[name]
	return exists
}

// Names returns the configured room names
func (r *InMemoryRepository) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	return names
}

// Join adds a connection to a room's member set
func (r *InMemoryRepository) Join(name, connID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[name]
	if !exists {
		return ErrRoomUnknown
	}

	room.Members[connID] = struct{}{}
	return nil
}

// Leave removes a connection from a room's member set
func (r *InMemoryRepository) Leave(name, connID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[name]
	if !exists {
		return ErrRoomUnknown
	}

	delete(room.Members, connID)
	return nil
}

// Members returns a snapshot of the connection ids in a room
func (r *InMemoryRepository) Members(name string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	room, exists := r.rooms[name]
	if !exists {
		return nil
	}

	members := make([]string, 0, len(room.Members))
	for connID := range room.Members {
		members = append(members, connID)
	}
	return members
}

// Append adds a message to a room's log, evicting the oldest entry
// once the log exceeds the history limit. Append and eviction happen
// under one lock so readers never observe an oversized log.
func (r *InMemoryRepository) Append(name string, msg *message.Message) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[name]
	if !exists {
		return ErrRoomUnknown
	}

	room.Log = append(room.Log, msg)
	if len(room.Log) > r.historyLimit {
		// Shift the kept tail to the front and drop the stale slots,
		// so evicted messages stop being reachable through the
		// backing array.
		kept := copy(room.Log, room.Log[len(room.Log)-r.historyLimit:])
		for i := kept; i < len(room.Log); i++ {
			room.Log[i] = nil
		}
		room.Log = room.Log[:kept]
	}
	return nil
}

// History returns a snapshot of a room's full log, oldest first.
// Messages are copied so a later MarkRead cannot race a reader that is
// still serializing the snapshot.
func (r *InMemoryRepository) History(name string) []*message.Message {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	room, exists := r.rooms[name]
	if !exists {
		return []*message.Message{}
	}

	history := make([]*message.Message, len(room.Log))
	for i, msg := range room.Log {
		history[i] = cloneMessage(msg)
	}
	return history
}

// cloneMessage copies a message, including its ReadBy set, while the
// repository lock is held.
func cloneMessage(msg *message.Message) *message.Message {
	snapshot := *msg
	if len(msg.ReadBy) > 0 {
		snapshot.ReadBy = append([]string(nil), msg.ReadBy...)
	}
	return &snapshot
}

// Page returns one 1-indexed slice of a room's log in stored order.
// Requesting a room with no log returns an empty page.
func (r *InMemoryRepository) Page(name string, page, pageSize int) Page {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := Page{
		Messages: []*message.Message{},
		Page:     page,
	}

	room, exists := r.rooms[name]
	if !exists {
		return result
	}

	total := len(room.Log)
	result.Total = total

	start := (page - 1) * pageSize
	end := page * pageSize
	if start < 0 || start >= total {
		return result
	}
	if end > total {
		end = total
	}

	items := make([]*message.Message, end-start)
	for i, msg := range room.Log[start:end] {
		items[i] = cloneMessage(msg)
	}
	result.Messages = items
	result.HasMore = end < total
	return result
}

// MarkRead records that a connection has read a message in a room's
// log. It reports true when the reader was newly added, false when the
// message was already read by that connection. Looking up an id that is
// no longer in the log returns ErrMessageNotFound.
func (r *InMemoryRepository) MarkRead(name string, messageID int64, connID string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	room, exists := r.rooms[name]
	if !exists {
		return false, ErrRoomUnknown
	}

	for _, msg := range room.Log {
		if msg.ID != messageID {
			continue
		}
		if msg.ReadByConnection(connID) {
			return false, nil
		}
		msg.ReadBy = append(msg.ReadBy, connID)
		return true, nil
	}

	return false, ErrMessageNotFound
}

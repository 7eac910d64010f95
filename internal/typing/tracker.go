package typing

import (
	"sync"
)

// Tracker keeps the per-room sets of connections currently signaling
// "typing". It holds connection ids only; usernames are resolved
// through the session registry at broadcast time. Entries are removed
// on an explicit stop signal or by the disconnect transition, never by
// a timeout.
type Tracker struct {
	rooms map[string]map[string]struct{}
	mutex sync.RWMutex
}

// NewTracker creates a new typing tracker
func NewTracker() *Tracker {
	return &Tracker{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Set flags or clears a connection as typing in a room
func (t *Tracker) Set(room, connID string, isTyping bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if isTyping {
		if t.rooms[room] == nil {
			t.rooms[room] = make(map[string]struct{})
		}
		t.rooms[room][connID] = struct{}{}
		return
	}

	t.clear(room, connID)
}

// Clear removes a connection's typing flag from a room
func (t *Tracker) Clear(room, connID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.clear(room, connID)
}

func (t *Tracker) clear(room, connID string) {
	set, exists := t.rooms[room]
	if !exists {
		return
	}

	delete(set, connID)
	if len(set) == 0 {
		delete(t.rooms, room)
	}
}

// Typing returns a snapshot of the connection ids typing in a room
func (t *Tracker) Typing(room string) []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	set, exists := t.rooms[room]
	if !exists {
		return []string{}
	}

	ids := make([]string, 0, len(set))
	for connID := range set {
		ids = append(ids, connID)
	}
	return ids
}

// IsTyping reports whether a connection is flagged as typing in a room
func (t *Tracker) IsTyping(room, connID string) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	set, exists := t.rooms[room]
	if !exists {
		return false
	}
	_, typing := set[connID]
	return typing
}

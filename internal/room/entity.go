package room

import (
	"time"

	"chat-relay/internal/message"
)

// Room represents one of the statically configured chat rooms. A room
// owns its bounded message log and the set of live member connections;
// members are held as connection ids only, never as session objects.
type Room struct {
	Name      string
	Log       []*message.Message
	Members   map[string]struct{}
	CreatedAt time.Time
}

// Page is one slice of a room's message log, oldest first
type Page struct {
	Messages []*message.Message `json:"messages"`
	HasMore  bool               `json:"hasMore"`
	Page     int                `json:"page"`
	Total    int                `json:"total"`
}

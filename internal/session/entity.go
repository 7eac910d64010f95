package session

import (
	"time"
)

// Session represents the identity of one live connection: who they are
// and which room they are currently in. Sessions live exactly as long
// as the connection that owns them.
type Session struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Room     string `json:"room"`

	JoinedAt   time.Time `json:"-"`
	LastActive time.Time `json:"-"`
}

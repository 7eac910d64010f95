package chat

// Inbound event types (client → server)
const (
	EventUserJoin       = "user_join"
	EventSendMessage    = "send_message"
	EventSendFile       = "send_file"
	EventTyping         = "typing"
	EventPrivateMessage = "private_message"
	EventMessageRead    = "message_read"
	EventJoinRoom       = "join_room"
)

// Outbound event types (server → client)
const (
	EventUserList       = "user_list"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventReceiveMessage = "receive_message"
	EventTypingUsers    = "typing_users"
	EventRoomMessages   = "room_messages"
	EventReadReceipt    = "read_receipt"
)

// ClientEvent represents incoming events from the client
type ClientEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Room      string `json:"room,omitempty"`
	Message   string `json:"message,omitempty"`
	Filename  string `json:"filename,omitempty"`
	To        string `json:"to,omitempty"`
	IsTyping  bool   `json:"isTyping,omitempty"`
	MessageID int64  `json:"messageId,omitempty"`
}

// ServerEvent represents outgoing events to the client
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// UserRef identifies a user in join/leave notices
type UserRef struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ReadReceipt notifies room members that a connection read a message
type ReadReceipt struct {
	MessageID int64  `json:"messageId"`
	UserID    string `json:"userId"`
}

// Sender delivers encoded payloads to live connections. Implemented by
// the websocket manager.
type Sender interface {
	SendTo(connID string, payload []byte) bool
	SendToMany(connIDs []string, payload []byte) int
}

package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/internal/config"
	"chat-relay/internal/room"
	"chat-relay/internal/session"
	"chat-relay/internal/upload"
	wsocket "chat-relay/internal/websocket"
)

// Handler handles HTTP requests and WebSocket upgrades
type Handler struct {
	upgrader websocket.Upgrader
	manager  *wsocket.Manager
	engine   Service
	sessions session.Service
	rooms    room.Service
	uploads  *upload.Store
	metrics  *config.ServerMetrics
	config   *config.ServerConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(manager *wsocket.Manager, engine Service, sessions session.Service, rooms room.Service, uploads *upload.Store, metrics *config.ServerMetrics, cfg *config.ServerConfig) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		manager:  manager,
		engine:   engine,
		sessions: sessions,
		rooms:    rooms,
		uploads:  uploads,
		metrics:  metrics,
		config:   cfg,
	}
}

// HandleWebSocket handles WebSocket connection upgrades
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn, err := h.manager.Add(conn)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server full"))
		conn.Close()
		return
	}

	clientAddr := conn.RemoteAddr().String()
	log.Printf("🔗 New WebSocket connection: %s (ID: %s)", clientAddr, wsConn.ID)

	go h.readPump(wsConn, clientAddr)
	go h.writePump(wsConn, clientAddr)
}

// readPump reads events from the client and dispatches them to the
// session engine. When the read loop ends, the disconnect transition
// runs before the connection is released.
func (h *Handler) readPump(wsConn *wsocket.Connection, clientAddr string) {
	conn := wsConn.Conn
	defer func() {
		h.engine.Disconnect(wsConn.ID)
		h.manager.Remove(wsConn.ID)
		conn.Close()
		log.Printf("🔌 Connection closed: %s (ID: %s)", clientAddr, wsConn.ID)
	}()

	conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error from %s: %v", clientAddr, err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("⚠️ Malformed event from %s: %v", clientAddr, err)
			continue
		}

		h.dispatch(wsConn.ID, &event)
	}
}

// dispatch routes one client event into the engine. Rejected events
// are dropped with a log line and never crash the connection.
func (h *Handler) dispatch(connID string, event *ClientEvent) {
	var err error

	switch event.Type {
	case EventUserJoin:
		err = h.engine.Join(connID, event.Username, event.Room)
	case EventSendMessage:
		err = h.engine.SendMessage(connID, event.Message)
	case EventSendFile:
		err = h.engine.SendFile(connID, event.Filename, event.Room)
	case EventTyping:
		err = h.engine.SetTyping(connID, event.IsTyping)
	case EventPrivateMessage:
		err = h.engine.SendPrivate(connID, event.To, event.Message)
	case EventMessageRead:
		err = h.engine.MarkRead(connID, event.Room, event.MessageID)
	case EventJoinRoom:
		err = h.engine.SwitchRoom(connID, event.Room)
	default:
		log.Printf("⚠️ Unknown event type '%s' from %s", event.Type, connID)
		return
	}

	if err != nil {
		log.Printf("⚠️ Dropped %s event from %s: %v", event.Type, connID, err)
	}
}

// writePump writes queued payloads to the client and keeps the
// connection alive with periodic pings.
func (h *Handler) writePump(wsConn *wsocket.Connection, clientAddr string) {
	conn := wsConn.Conn
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-wsConn.Send:
			conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("❌ Failed to send message to %s: %v", clientAddr, err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("❌ Failed to send ping to %s: %v", clientAddr, err)
				return
			}
		}
	}
}

// HandleMessages serves paged room history:
// GET /api/messages/{room}?page=&limit=
func (h *Handler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	roomName := r.PathValue("room")

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", h.config.PageSize)
	if page < 1 || limit < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page and limit must be positive"})
		return
	}

	writeJSON(w, http.StatusOK, h.rooms.Page(roomName, page, limit))
}

// HandleUsers serves the sessions currently in a room:
// GET /api/users/{room}
func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.GetByRoom(r.PathValue("room")))
}

// HandleRooms serves the configured room names: GET /api/rooms
func (h *Handler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rooms.Names())
}

// HandleStats serves server metrics: GET /api/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetMetrics())
}

// HandleUpload accepts a multipart image upload, stores it, and
// returns the stored filename: POST /api/upload
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File upload failed"})
		return
	}
	defer file.Close()

	filename, err := h.uploads.ValidateAndStore(header.Filename, file)
	if err != nil {
		if errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrUnsupportedType) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("❌ Upload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "File upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// HandleRoot serves a liveness line: GET /
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Chat Relay Server is running"))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

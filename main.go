package main

import (
	"log"
	"net/http"
	"strings"

	"chat-relay/internal/chat"
	"chat-relay/internal/config"
	"chat-relay/internal/room"
	"chat-relay/internal/security"
	"chat-relay/internal/session"
	"chat-relay/internal/typing"
	"chat-relay/internal/upload"
	wsocket "chat-relay/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := config.NewServerMetrics()

	sessionRepo := session.NewInMemoryRepository()
	sessionService := session.NewService(sessionRepo, metrics)

	roomRepo := room.NewInMemoryRepository(cfg.Rooms, cfg.HistoryLimit)
	roomService := room.NewService(roomRepo)

	typingTracker := typing.NewTracker()
	validator := security.NewInputValidator(cfg)
	limiter := config.NewRateLimiter(cfg)

	uploadStore, err := upload.NewStore(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		log.Fatalf("Failed to create upload store: %v", err)
	}

	manager := wsocket.NewManager(cfg, metrics)
	engine := chat.NewService(sessionService, roomService, typingTracker, manager, validator, limiter, metrics, cfg)
	handler := chat.NewHandler(manager, engine, sessionService, roomService, uploadStore, metrics, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("GET /api/messages/{room}", handler.HandleMessages)
	mux.HandleFunc("GET /api/users/{room}", handler.HandleUsers)
	mux.HandleFunc("GET /api/rooms", handler.HandleRooms)
	mux.HandleFunc("GET /api/stats", handler.HandleStats)
	mux.HandleFunc("POST /api/upload", handler.HandleUpload)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.HandleFunc("GET /{$}", handler.HandleRoot)

	log.Printf("🚀 Starting Chat Relay Server on port %s", cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Port)
	log.Printf("🏠 Rooms: %s (default: %s)", strings.Join(cfg.Rooms, ", "), cfg.DefaultRoom)
	log.Printf("📜 History limit: %d messages per room", cfg.HistoryLimit)

	if err := http.ListenAndServe(cfg.Port, mux); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string   `env:"CHAT_PORT" envDefault:":5000"`
	Rooms       []string `env:"CHAT_ROOMS" envDefault:"general,support,random" envSeparator:","`
	DefaultRoom string   `env:"CHAT_DEFAULT_ROOM" envDefault:"general"`

	// Room history settings
	HistoryLimit int `env:"CHAT_HISTORY_LIMIT" envDefault:"100"`
	PageSize     int `env:"CHAT_PAGE_SIZE" envDefault:"20"`

	// Connection settings
	MaxConnections int           `env:"CHAT_MAX_CONNECTIONS" envDefault:"1000"`
	ReadTimeout    time.Duration `env:"CHAT_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout   time.Duration `env:"CHAT_WRITE_TIMEOUT" envDefault:"10s"`
	PingInterval   time.Duration `env:"CHAT_PING_INTERVAL" envDefault:"54s"`
	SendBuffer     int           `env:"CHAT_SEND_BUFFER" envDefault:"256"`

	// Security settings
	MaxMessageLength  int           `env:"CHAT_MAX_MESSAGE_LENGTH" envDefault:"1000"`
	MaxUsernameLength int           `env:"CHAT_MAX_USERNAME_LENGTH" envDefault:"50"`
	MaxRoomNameLength int           `env:"CHAT_MAX_ROOM_NAME_LENGTH" envDefault:"50"`
	EnableRateLimit   bool          `env:"CHAT_ENABLE_RATE_LIMIT" envDefault:"false"`
	RateLimitMessages int           `env:"CHAT_RATE_LIMIT_MESSAGES" envDefault:"10"`
	RateLimitWindow   time.Duration `env:"CHAT_RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Upload settings
	UploadDir     string `env:"CHAT_UPLOAD_DIR" envDefault:"public/uploads"`
	MaxUploadSize int64  `env:"CHAT_MAX_UPLOAD_SIZE" envDefault:"5242880"`
}

// Load builds the server configuration from environment variables,
// falling back to the defaults above.
func Load() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if len(cfg.Rooms) == 0 {
		return nil, fmt.Errorf("at least one room must be configured")
	}
	if !contains(cfg.Rooms, cfg.DefaultRoom) {
		return nil, fmt.Errorf("default room '%s' is not in the configured room list", cfg.DefaultRoom)
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", cfg.HistoryLimit)
	}

	return cfg, nil
}

func contains(list []string, name string) bool {
	for _, item := range list {
		if item == name {
			return true
		}
	}
	return false
}

// ServerMetrics holds server performance metrics
type ServerMetrics struct {
	TotalConnections  int64     `json:"total_connections"`
	ActiveConnections int64     `json:"active_connections"`
	ActiveSessions    int64     `json:"active_sessions"`
	TotalMessages     int64     `json:"total_messages"`
	TotalPrivates     int64     `json:"total_privates"`
	TotalReceipts     int64     `json:"total_receipts"`
	StartTime         time.Time `json:"start_time"`
	LastMessageTime   time.Time `json:"last_message_time"`
	MessageRate       float64   `json:"message_rate"`
	mutex             sync.RWMutex
}

// NewServerMetrics creates new server metrics
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		StartTime: time.Now(),
	}
}

// IncrementConnections increments connection count
func (sm *ServerMetrics) IncrementConnections() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalConnections++
	sm.ActiveConnections++
}

// DecrementConnections decrements active connection count
func (sm *ServerMetrics) DecrementConnections() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.ActiveConnections--
}

// IncrementSessions increments active session count
func (sm *ServerMetrics) IncrementSessions() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.ActiveSessions++
}

// DecrementSessions decrements active session count
func (sm *ServerMetrics) DecrementSessions() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.ActiveSessions--
}

// IncrementMessages increments room message count
func (sm *ServerMetrics) IncrementMessages() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalMessages++
	sm.LastMessageTime = time.Now()
}

// IncrementPrivates increments private message count
func (sm *ServerMetrics) IncrementPrivates() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalPrivates++
	sm.LastMessageTime = time.Now()
}

// IncrementReceipts increments read receipt count
func (sm *ServerMetrics) IncrementReceipts() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.TotalReceipts++
}

// GetMetrics returns current metrics with calculated rates
func (sm *ServerMetrics) GetMetrics() *ServerMetrics {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	uptime := time.Since(sm.StartTime).Seconds()
	messageRate := float64(sm.TotalMessages) / uptime

	return &ServerMetrics{
		TotalConnections:  sm.TotalConnections,
		ActiveConnections: sm.ActiveConnections,
		ActiveSessions:    sm.ActiveSessions,
		TotalMessages:     sm.TotalMessages,
		TotalPrivates:     sm.TotalPrivates,
		TotalReceipts:     sm.TotalReceipts,
		StartTime:         sm.StartTime,
		LastMessageTime:   sm.LastMessageTime,
		MessageRate:       messageRate,
	}
}

// RateLimiter manages rate limiting per sender
type RateLimiter struct {
	limits map[string]*senderRateLimit
	mutex  sync.Mutex
	config *ServerConfig
}

// senderRateLimit tracks the current window for one sender
type senderRateLimit struct {
	messageCount int
	windowStart  time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *ServerConfig) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*senderRateLimit),
		config: config,
	}
}

// Allow reports whether the sender may send another message in the
// current window, counting the message when it may.
func (rl *RateLimiter) Allow(senderID string) bool {
	if !rl.config.EnableRateLimit {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	limit, exists := rl.limits[senderID]
	if !exists {
		limit = &senderRateLimit{windowStart: now}
		rl.limits[senderID] = limit
	}

	if now.Sub(limit.windowStart) > rl.config.RateLimitWindow {
		limit.messageCount = 0
		limit.windowStart = now
	}

	if limit.messageCount >= rl.config.RateLimitMessages {
		return false
	}

	limit.messageCount++
	return true
}

// Forget drops rate limit state for a sender
func (rl *RateLimiter) Forget(senderID string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	delete(rl.limits, senderID)
}

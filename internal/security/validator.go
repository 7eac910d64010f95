package security

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"chat-relay/internal/config"
)

var (
	validUsername = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// InputValidator handles input validation and sanitization
type InputValidator struct {
	config *config.ServerConfig
}

// NewInputValidator creates a new input validator
func NewInputValidator(config *config.ServerConfig) *InputValidator {
	return &InputValidator{
		config: config,
	}
}

// ValidateUsername validates and sanitizes username input
func (v *InputValidator) ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return "", fmt.Errorf("username cannot be empty")
	}

	if utf8.RuneCountInString(username) > v.config.MaxUsernameLength {
		return "", fmt.Errorf("username too long (max %d characters)", v.config.MaxUsernameLength)
	}

	if !validUsername.MatchString(username) {
		return "", fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}

	return html.EscapeString(username), nil
}

// ValidateMessage validates and sanitizes message content
func (v *InputValidator) ValidateMessage(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("message cannot be empty")
	}

	if utf8.RuneCountInString(text) > v.config.MaxMessageLength {
		return "", fmt.Errorf("message too long (max %d characters)", v.config.MaxMessageLength)
	}

	text = strings.TrimSpace(text)
	text = multiSpace.ReplaceAllString(text, " ")

	// Escape HTML to prevent XSS when the client renders the message
	return html.EscapeString(text), nil
}

// ValidateRoomName validates and sanitizes a room name
func (v *InputValidator) ValidateRoomName(roomName string) (string, error) {
	roomName = strings.TrimSpace(roomName)

	if roomName == "" {
		return "", fmt.Errorf("room name cannot be empty")
	}

	if utf8.RuneCountInString(roomName) > v.config.MaxRoomNameLength {
		return "", fmt.Errorf("room name too long (max %d characters)", v.config.MaxRoomNameLength)
	}

	if !validUsername.MatchString(roomName) {
		return "", fmt.Errorf("room name contains invalid characters (no spaces, only letters, numbers, _, - allowed)")
	}

	return strings.ToLower(roomName), nil
}

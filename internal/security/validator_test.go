package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/config"
)

func newTestValidator() *InputValidator {
	return NewInputValidator(&config.ServerConfig{
		MaxMessageLength:  1000,
		MaxUsernameLength: 50,
		MaxRoomNameLength: 50,
	})
}

func TestValidateUsername(t *testing.T) {
	validator := newTestValidator()

	tests := []struct {
		name     string
		username string
		want     string
		wantErr  bool
	}{
		{name: "valid", username: "alice", want: "alice"},
		{name: "trims whitespace", username: "  alice  ", want: "alice"},
		{name: "allows underscore and hyphen", username: "team_lead-1", want: "team_lead-1"},
		{name: "empty", username: "", wantErr: true},
		{name: "only whitespace", username: "   ", wantErr: true},
		{name: "too long", username: strings.Repeat("a", 51), wantErr: true},
		{name: "spaces inside", username: "al ice", wantErr: true},
		{name: "html injection", username: "<script>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateMessage(t *testing.T) {
	validator := newTestValidator()

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "valid", text: "hello there", want: "hello there"},
		{name: "trims and collapses whitespace", text: "  hello   there  ", want: "hello there"},
		{name: "escapes html", text: "<b>hi</b>", want: "&lt;b&gt;hi&lt;/b&gt;"},
		{name: "empty", text: "", wantErr: true},
		{name: "only whitespace", text: "  \t ", wantErr: true},
		{name: "too long", text: strings.Repeat("x", 1001), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.ValidateMessage(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	validator := newTestValidator()

	got, err := validator.ValidateRoomName("  General ")
	require.NoError(t, err)
	assert.Equal(t, "general", got, "room names are lowercased")

	_, err = validator.ValidateRoomName("no spaces")
	assert.Error(t, err)

	_, err = validator.ValidateRoomName("")
	assert.Error(t, err)
}

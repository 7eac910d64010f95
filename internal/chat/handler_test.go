package chat

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/config"
	"chat-relay/internal/room"
	"chat-relay/internal/session"
	"chat-relay/internal/upload"
	wsocket "chat-relay/internal/websocket"
)

func newTestHandler(t *testing.T) (*Handler, *testEngine) {
	t.Helper()

	te := newTestEngine(t)
	metrics := config.NewServerMetrics()
	manager := wsocket.NewManager(te.cfg, metrics)

	store, err := upload.NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	return NewHandler(manager, te.engine, te.sessions, te.rooms, store, metrics, te.cfg), te
}

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages/{room}", h.HandleMessages)
	mux.HandleFunc("GET /api/users/{room}", h.HandleUsers)
	mux.HandleFunc("GET /api/rooms", h.HandleRooms)
	mux.HandleFunc("GET /api/stats", h.HandleStats)
	mux.HandleFunc("POST /api/upload", h.HandleUpload)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	return mux
}

func TestHandler_Messages(t *testing.T) {
	h, te := newTestHandler(t)
	mux := newTestMux(h)

	te.join(t, "conn-x", "x", "general")
	for i := 0; i < 45; i++ {
		require.NoError(t, te.engine.SendMessage("conn-x", "msg"))
	}

	tests := []struct {
		name      string
		url       string
		status    int
		wantCount int
		wantMore  bool
	}{
		{
			name:      "first page with default limit",
			url:       "/api/messages/general",
			status:    http.StatusOK,
			wantCount: 20,
			wantMore:  true,
		},
		{
			name:      "last partial page",
			url:       "/api/messages/general?page=3&limit=20",
			status:    http.StatusOK,
			wantCount: 5,
			wantMore:  false,
		},
		{
			name:      "page past the end",
			url:       "/api/messages/general?page=9",
			status:    http.StatusOK,
			wantCount: 0,
			wantMore:  false,
		},
		{
			name:      "unknown room yields empty page",
			url:       "/api/messages/lounge",
			status:    http.StatusOK,
			wantCount: 0,
			wantMore:  false,
		},
		{
			name:   "zero page rejected",
			url:    "/api/messages/general?page=0",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}

			var page room.Page
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
			assert.Len(t, page.Messages, tt.wantCount)
			assert.Equal(t, tt.wantMore, page.HasMore)
		})
	}
}

func TestHandler_Users(t *testing.T) {
	h, te := newTestHandler(t)
	mux := newTestMux(h)

	te.join(t, "conn-x", "x", "general")
	te.join(t, "conn-y", "y", "support")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/general", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var users []*session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "x", users[0].Username)
}

func TestHandler_Rooms(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := newTestMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	assert.ElementsMatch(t, []string{"general", "support", "random"}, rooms)
}

func TestHandler_Stats(t *testing.T) {
	h, te := newTestHandler(t)
	mux := newTestMux(h)

	te.join(t, "conn-x", "x", "general")
	require.NoError(t, te.engine.SendMessage("conn-x", "hi"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "total_messages")
	assert.Contains(t, stats, "active_sessions")
}

func TestHandler_Upload(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := newTestMux(h)

	tests := []struct {
		name     string
		filename string
		field    string
		status   int
	}{
		{
			name:     "png accepted",
			filename: "photo.png",
			field:    "file",
			status:   http.StatusOK,
		},
		{
			name:     "unsupported type rejected",
			filename: "report.pdf",
			field:    "file",
			status:   http.StatusBadRequest,
		},
		{
			name:     "wrong form field rejected",
			filename: "photo.png",
			field:    "attachment",
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			writer := multipart.NewWriter(&body)
			part, err := writer.CreateFormFile(tt.field, tt.filename)
			require.NoError(t, err)
			_, err = part.Write([]byte("content"))
			require.NoError(t, err)
			require.NoError(t, writer.Close())

			req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
			req.Header.Set("Content-Type", writer.FormDataContentType())

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp["filename"])
			}
		})
	}
}

func TestHandler_Root(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := newTestMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Chat Relay Server is running", rec.Body.String())
}

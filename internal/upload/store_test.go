package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ValidateAndStore(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  error
	}{
		{name: "png accepted", filename: "photo.png", content: "fake png bytes"},
		{name: "jpg accepted", filename: "photo.JPG", content: "fake jpg bytes"},
		{name: "gif accepted", filename: "anim.gif", content: "fake gif bytes"},
		{name: "pdf rejected", filename: "doc.pdf", content: "%PDF", wantErr: ErrUnsupportedType},
		{name: "no extension rejected", filename: "mystery", content: "???", wantErr: ErrUnsupportedType},
		{name: "oversized rejected", filename: "big.png", content: strings.Repeat("x", 2048), wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := store.ValidateAndStore(tt.filename, bytes.NewReader([]byte(tt.content)))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.filename, name, "stored name must be freshly generated")
			assert.Equal(t, strings.ToLower(filepath.Ext(tt.filename)), filepath.Ext(name))

			stored, err := os.ReadFile(filepath.Join(store.Dir(), name))
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(stored))
		})
	}
}

func TestStore_UniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), 1024)
	require.NoError(t, err)

	first, err := store.ValidateAndStore("same.png", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	second, err := store.ValidateAndStore("same.png", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestStore_OversizedLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, 8)
	require.NoError(t, err)

	_, err = store.ValidateAndStore("big.png", bytes.NewReader([]byte("way too large")))
	require.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package upload

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an upload exceeds the size limit.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// ErrUnsupportedType is returned for anything but jpeg/jpg/png/gif.
var ErrUnsupportedType = errors.New("images only (jpeg, jpg, png, gif)")

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

// Store validates and stores uploaded image files and hands back a
// file reference. The session engine never sees file bytes, only the
// reference a store produces.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates a file store rooted at dir, creating it if needed
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Store{
		dir:     dir,
		maxSize: maxSize,
	}, nil
}

// Dir returns the directory uploads are stored in
func (s *Store) Dir() string {
	return s.dir
}

// ValidateAndStore checks the original filename and size limit, writes
// the content under a fresh unique name, and returns the stored
// filename.
func (s *Store) ValidateAndStore(originalName string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// Read one byte past the limit so oversized uploads are detected
	// without buffering them in memory.
	written, err := io.Copy(file, io.LimitReader(content, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	log.Printf("📎 Stored upload %s (%d bytes)", name, written)
	return name, nil
}

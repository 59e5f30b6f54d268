package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnknownImageType is returned when the uploaded bytes are not a
// recognizable image format.
var ErrUnknownImageType = errors.New("unknown image type")

// Upload describes one stored upload.
type Upload struct {
	Filename string
	Path     string
	URL      string
	MimeType string
}

// Store writes uploads to disk and derives their public URLs. Every
// upload gets a unique filename; no file is ever overwritten.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates the uploads directory if needed.
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the on-disk uploads directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates that the data is an image and writes it under a
// unique name. Returns ErrUnknownImageType when the MIME type cannot
// be determined from the bytes.
func (s *Store) Save(originalName string, data []byte) (*Upload, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrUnknownImageType
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = filepath.Ext(originalName)
	}
	name := fmt.Sprintf("billboard-%s%s", uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	log.Infof("Stored upload %s (%d bytes, %s)", name, len(data), mtype.String())
	return &Upload{
		Filename: name,
		Path:     path,
		URL:      s.baseURL + "/uploads/" + name,
		MimeType: mtype.String(),
	}, nil
}

package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestSaveImage(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:3001/")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	upload, err := store.Save("photo.png", pngBytes(t))
	if err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	if !strings.HasPrefix(upload.Filename, "billboard-") || !strings.HasSuffix(upload.Filename, ".png") {
		t.Errorf("unexpected stored filename %q", upload.Filename)
	}
	if upload.MimeType != "image/png" {
		t.Errorf("expected image/png, got %q", upload.MimeType)
	}
	if upload.URL != "http://localhost:3001/uploads/"+upload.Filename {
		t.Errorf("unexpected URL %q", upload.URL)
	}
	if _, err := os.Stat(upload.Path); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:3001")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	data := pngBytes(t)
	first, err := store.Save("same.png", data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save("same.png", data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.Filename == second.Filename {
		t.Errorf("expected unique filenames, both got %q", first.Filename)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:3001")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, err := store.Save("notes.txt", []byte("just some text")); !errors.Is(err, ErrUnknownImageType) {
		t.Errorf("expected ErrUnknownImageType, got %v", err)
	}
}

package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReader_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "maps.db")

	metadata := Metadata{
		Name:        "Test Bundle",
		Format:      "png",
		Description: "Test description",
		Version:     "1.0",
		Config:      "tileable: true\n",
		Tileable:    true,
	}

	w, err := New(dbPath, metadata)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}

	entries := []Entry{
		{Sprite: "hero", Kind: "normal", Width: 16, Height: 8, Data: []byte("hero normal")},
		{Sprite: "hero", Kind: "occlusion", Width: 16, Height: 8, Data: []byte("hero occlusion")},
		{Sprite: "crate", Kind: "normal", Width: 4, Height: 4, Data: []byte("crate normal")},
	}
	for _, e := range entries {
		if err := w.WriteMap(e.Sprite, e.Kind, e.Width, e.Height, e.Data); err != nil {
			t.Fatalf("Failed to write %s/%s: %v", e.Sprite, e.Kind, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	for _, e := range entries {
		data, width, height, err := r.ReadMap(e.Sprite, e.Kind)
		if err != nil {
			t.Fatalf("Failed to read %s/%s: %v", e.Sprite, e.Kind, err)
		}
		if string(data) != string(e.Data) {
			t.Errorf("%s/%s: expected %q, got %q", e.Sprite, e.Kind, e.Data, data)
		}
		if width != e.Width || height != e.Height {
			t.Errorf("%s/%s: expected %dx%d, got %dx%d", e.Sprite, e.Kind, e.Width, e.Height, width, height)
		}
	}

	sprites, err := r.Sprites()
	if err != nil {
		t.Fatalf("Failed to list sprites: %v", err)
	}
	if !reflect.DeepEqual(sprites, []string{"crate", "hero"}) {
		t.Errorf("Unexpected sprites %v", sprites)
	}

	kinds, err := r.Kinds("hero")
	if err != nil {
		t.Fatalf("Failed to list kinds: %v", err)
	}
	if !reflect.DeepEqual(kinds, []string{"normal", "occlusion"}) {
		t.Errorf("Unexpected kinds %v", kinds)
	}

	got, err := r.Metadata()
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}
	if got != metadata {
		t.Errorf("Metadata mismatch: expected %+v, got %+v", metadata, got)
	}
}

func TestReader_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "maps.db")
	w, err := New(dbPath, Metadata{Name: "Empty"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	_, _, _, err = r.ReadMap("ghost", "normal")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReader_RejectsForeignDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "other.db")
	if err := os.WriteFile(dbPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if _, err := OpenReader(dbPath); err == nil {
		t.Error("Expected error for database without maps table")
	}
}

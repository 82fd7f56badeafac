package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/spritemaps/internal/bundle"
)

// BundleHandler serves maps from a bundle database.
type BundleHandler struct {
	reader       *bundle.Reader
	logger       *slog.Logger
	cacheControl string
}

// BundleConfig configures the bundle handler.
type BundleConfig struct {
	BundlePath   string
	CacheControl string
}

// NewBundleHandler creates a new bundle handler.
func NewBundleHandler(cfg BundleConfig, logger *slog.Logger) (*BundleHandler, error) {
	reader, err := bundle.OpenReader(cfg.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}

	return &BundleHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Register mounts the index and map routes under prefix, e.g. "/bundle".
func (h *BundleHandler) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimSuffix(prefix, "/")
	mux.HandleFunc("GET "+prefix+"/{$}", h.serveIndex)
	mux.HandleFunc("GET "+prefix+"/{sprite}/{file}", h.serveMap)
}

// serveIndex lists sprites and their stored kinds as JSON.
func (h *BundleHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	sprites, err := h.reader.Sprites()
	if err != nil {
		h.log().Error("Failed to list sprites", "error", err)
		http.Error(w, "failed to list sprites", http.StatusInternalServerError)
		return
	}

	index := make(map[string][]string, len(sprites))
	for _, s := range sprites {
		kinds, err := h.reader.Kinds(s)
		if err != nil {
			h.log().Error("Failed to list kinds", "sprite", s, "error", err)
			http.Error(w, "failed to list kinds", http.StatusInternalServerError)
			return
		}
		index[s] = kinds
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(index); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

// serveMap serves /{sprite}/{kind}.png.
func (h *BundleHandler) serveMap(w http.ResponseWriter, r *http.Request) {
	sprite := r.PathValue("sprite")
	kind, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || kind == "" {
		http.NotFound(w, r)
		return
	}

	data, _, _, err := h.reader.ReadMap(sprite, kind)
	if errors.Is(err, bundle.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log().Error("Failed to read map", "sprite", sprite, "kind", kind, "error", err)
		http.Error(w, "failed to read map", http.StatusInternalServerError)
		return
	}

	if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		h.log().Error("Failed to write response", "error", err)
	}
}

// Close closes the bundle reader.
func (h *BundleHandler) Close() error {
	return h.reader.Close()
}

func (h *BundleHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// Package server exposes generated sprite maps over HTTP, generating missing
// maps on demand from a directory of sprites.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/spritemaps/internal/pipeline"
	"github.com/MeKo-Tech/spritemaps/internal/processor"
)

// spriteExtensions are probed in order when resolving a sprite name.
var spriteExtensions = []string{".png", ".webp", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

type OnDemandMapsConfig struct {
	SpritesDir               string
	MapsDir                  string
	CacheControl             string
	Config                   processor.Config
	MaxConcurrentGenerations int
	GenerationTimeout        time.Duration
	GenerateMissing          bool
	DisableCache             bool
}

// OnDemandMaps serves <name>_<suffix>.png files from MapsDir and generates the
// full map set of a sprite when one of them is missing.
type OnDemandMaps struct {
	gen    *pipeline.Generator
	logger *slog.Logger
	sem    chan struct{}
	locks  sync.Map
	cfg    OnDemandMapsConfig

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	currentSprites sync.Map // sprite name -> start time
}

// Status reports generation activity.
type Status struct {
	ActiveRenders  int      `json:"active_renders"`
	TotalRendered  int64    `json:"total_rendered"`
	TotalFailed    int64    `json:"total_failed"`
	CurrentSprites []string `json:"current_sprites"`
	MaxConcurrent  int      `json:"max_concurrent"`
}

func NewOnDemandMaps(cfg OnDemandMapsConfig, logger *slog.Logger) (*OnDemandMaps, error) {
	if cfg.SpritesDir == "" {
		cfg.SpritesDir = "."
	}
	if cfg.MapsDir == "" {
		cfg.MapsDir = cfg.SpritesDir
	}
	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 1
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = time.Minute
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	gen, err := pipeline.NewGenerator(pipeline.Options{
		Config:    cfg.Config,
		OutputDir: cfg.MapsDir,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &OnDemandMaps{
		gen:    gen,
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentGenerations),
	}, nil
}

// Status returns the current generation status.
func (m *OnDemandMaps) Status() Status {
	var current []string
	m.currentSprites.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})
	sort.Strings(current)

	return Status{
		ActiveRenders:  int(m.activeRenders.Load()),
		TotalRendered:  m.totalRendered.Load(),
		TotalFailed:    m.totalFailed.Load(),
		CurrentSprites: current,
		MaxConcurrent:  m.cfg.MaxConcurrentGenerations,
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (m *OnDemandMaps) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(m.Status()); err != nil {
			m.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
		}
	})
}

// Handler serves GET {prefix}{file} where the last path element is the map file name.
func (m *OnDemandMaps) Handler() http.Handler {
	return http.HandlerFunc(m.serveMap)
}

func (m *OnDemandMaps) serveMap(w http.ResponseWriter, r *http.Request) {
	name, ok := parseMapFile(filepath.Base(r.URL.Path))
	if !ok {
		http.NotFound(w, r)
		return
	}

	filename := filepath.Base(r.URL.Path)
	fullPath := filepath.Join(m.cfg.MapsDir, filename)

	w.Header().Set("Cache-Control", m.cfg.CacheControl)

	if !m.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	if !m.cfg.GenerateMissing {
		http.Error(w, fmt.Sprintf("map not found: %s", filename), http.StatusNotFound)
		return
	}

	sprite, ok := m.findSprite(name)
	if !ok {
		http.Error(w, fmt.Sprintf("sprite not found: %s", name), http.StatusNotFound)
		return
	}

	// One generation per sprite; later requests for sibling maps hit the cache.
	mu := m.getLock(name)
	mu.Lock()
	defer mu.Unlock()

	if !m.cfg.DisableCache && fileExists(fullPath) {
		http.ServeFile(w, r, fullPath)
		return
	}

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), m.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	m.activeRenders.Add(1)
	m.currentSprites.Store(name, start)

	_, err := m.gen.Generate(ctx, sprite, true)

	m.activeRenders.Add(-1)
	m.currentSprites.Delete(name)

	if err != nil {
		m.totalFailed.Add(1)
		m.log().Error("failed to generate maps", "sprite", name, "error", err)
		http.Error(w, fmt.Sprintf("failed to generate maps for %s: %v", name, err), http.StatusInternalServerError)
		return
	}
	m.totalRendered.Add(1)
	m.log().Info("maps generated on-demand", "sprite", name, "ms", time.Since(start).Milliseconds())

	if !fileExists(fullPath) {
		http.Error(w, "map generation completed but file missing on disk", http.StatusInternalServerError)
		return
	}

	http.ServeFile(w, r, fullPath)
}

func (m *OnDemandMaps) findSprite(name string) (string, bool) {
	for _, ext := range spriteExtensions {
		p := filepath.Join(m.cfg.SpritesDir, name+ext)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func (m *OnDemandMaps) getLock(key string) *sync.Mutex {
	if v, ok := m.locks.Load(key); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	actual, _ := m.locks.LoadOrStore(key, mu)
	return actual.(*sync.Mutex)
}

func (m *OnDemandMaps) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}

// parseMapFile splits "hero_n.png" into the sprite name "hero". Only the four
// map suffixes are accepted.
func parseMapFile(file string) (string, bool) {
	base, ok := strings.CutSuffix(file, ".png")
	if !ok {
		return "", false
	}
	for _, kind := range processor.Maps {
		if name, ok := strings.CutSuffix(base, pipeline.Suffix(kind)); ok && name != "" && !strings.ContainsAny(name, `/\`) {
			return name, true
		}
	}
	return "", false
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	if err != nil {
		return false
	}
	return !st.IsDir()
}

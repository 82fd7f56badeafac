// Package pipeline turns one sprite file into its lighting maps on disk or in
// a bundle.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/spritemaps/internal/bundle"
	"github.com/MeKo-Tech/spritemaps/internal/composite"
	"github.com/MeKo-Tech/spritemaps/internal/pixel"
	"github.com/MeKo-Tech/spritemaps/internal/processor"
	"github.com/MeKo-Tech/spritemaps/internal/spriteio"
)

// SheetKind is the bundle kind and file suffix used for contact sheets.
const SheetKind = "sheet"

// Suffix returns the file name suffix for a map kind.
func Suffix(kind processor.MapKind) string {
	switch kind {
	case processor.MapNormal:
		return "_n"
	case processor.MapParallax:
		return "_p"
	case processor.MapSpecular:
		return "_s"
	case processor.MapOcclusion:
		return "_o"
	default:
		return "_" + kind.String()
	}
}

// MapWriter stores encoded maps. *bundle.Writer implements it.
type MapWriter interface {
	WriteMap(sprite, kind string, width, height int, pngData []byte) error
}

var _ MapWriter = (*bundle.Writer)(nil)

// Options configures a Generator.
type Options struct {
	Config    processor.Config
	OutputDir string
	// Bundle receives the maps instead of OutputDir when set.
	Bundle MapWriter
	// HeightOverride and SpecularOverride are image paths applied to every sprite.
	HeightOverride   string
	SpecularOverride string
	// Neighbors is an image path written into the eight cells around the sprite.
	// It must have the sprite's size and only matters in tileable mode.
	Neighbors string
	Sheet     bool
	Logger    *slog.Logger
}

// Generator wires loading, processing and output into a single step. Each call
// to Generate uses its own Processor, so one Generator may serve many workers.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// NewGenerator validates opts and prepares a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Bundle == nil && opts.OutputDir == "" {
		return nil, fmt.Errorf("either an output dir or a bundle is required")
	}
	opts.Config = opts.Config.Clone()
	return &Generator{opts: opts, logger: opts.Logger}, nil
}

// Paths returns the files Generate writes for sprite in folder mode.
func (g *Generator) Paths(sprite string) []string {
	name := spriteio.BaseName(sprite)
	paths := make([]string, 0, len(processor.Maps)+1)
	for _, kind := range processor.Maps {
		paths = append(paths, filepath.Join(g.opts.OutputDir, name+Suffix(kind)+".png"))
	}
	if g.opts.Sheet {
		paths = append(paths, filepath.Join(g.opts.OutputDir, name+"_"+SheetKind+".png"))
	}
	return paths
}

// Generate processes one sprite and writes its maps. It returns the written
// file paths, or "sprite/kind" keys in bundle mode. Existing folder outputs are
// kept unless force is set.
func (g *Generator) Generate(ctx context.Context, sprite string, force bool) ([]string, error) {
	name := spriteio.BaseName(sprite)
	logger := g.log().With("sprite", name)

	if g.opts.Bundle == nil && !force && allExist(g.Paths(sprite)) {
		logger.Info("Maps already exist; skipping", "dir", g.opts.OutputDir)
		return g.Paths(sprite), nil
	}

	raw, err := spriteio.Load(sprite)
	if err != nil {
		return nil, err
	}

	p := processor.New(processor.WithLogger(logger), processor.WithConfig(g.opts.Config))
	processed := 0
	unsubscribe := p.Subscribe(func(ev processor.Event) {
		if ev.Kind == processor.EventProcessed {
			processed++
		}
	})
	defer unsubscribe()

	logger.Info("Processing sprite", "path", sprite)
	if err := p.LoadImage(raw); err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", sprite, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Height overrides rebuild the neighbor canvas, so neighbors go last.
	if err := g.applyOverrides(p); err != nil {
		return nil, err
	}
	if err := g.applyNeighbors(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Maps generated", "recomputes", processed)

	outputs := make(map[string]image.Image, len(processor.Maps)+1)
	order := make([]string, 0, len(processor.Maps)+1)
	for _, kind := range processor.Maps {
		outputs[kind.String()] = p.Output(kind)
		order = append(order, kind.String())
	}
	if g.opts.Sheet {
		sheet, err := composite.Sheet([]image.Image{
			p.Image(), p.Normal(), p.Parallax(), p.Specular(), p.Occlusion(),
		}, composite.DefaultBackground, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to build sheet: %w", err)
		}
		outputs[SheetKind] = sheet
		order = append(order, SheetKind)
	}

	if g.opts.Bundle != nil {
		return g.writeBundle(name, order, outputs)
	}
	return g.writeFolder(sprite, order, outputs)
}

func (g *Generator) applyOverrides(p *processor.Processor) error {
	if g.opts.HeightOverride != "" {
		raw, err := spriteio.Load(g.opts.HeightOverride)
		if err != nil {
			return err
		}
		if err := p.LoadHeightOverride(raw); err != nil {
			return fmt.Errorf("failed to apply height override: %w", err)
		}
	}
	if g.opts.SpecularOverride != "" {
		raw, err := spriteio.Load(g.opts.SpecularOverride)
		if err != nil {
			return err
		}
		if err := p.LoadSpecularOverride(raw); err != nil {
			return fmt.Errorf("failed to apply specular override: %w", err)
		}
	}
	return nil
}

func (g *Generator) applyNeighbors(p *processor.Processor) error {
	if g.opts.Neighbors == "" {
		return nil
	}
	raw, err := spriteio.Load(g.opts.Neighbors)
	if err != nil {
		return err
	}
	img, err := pixel.Normalize(raw)
	if err != nil {
		return fmt.Errorf("failed to read neighbors: %w", err)
	}
	if err := p.FillNeighbors(img); err != nil {
		return fmt.Errorf("failed to fill neighbors: %w", err)
	}
	return nil
}

func (g *Generator) writeFolder(sprite string, order []string, outputs map[string]image.Image) ([]string, error) {
	paths := g.Paths(sprite)
	for i, kind := range order {
		g.log().Debug("Writing map", "kind", kind, "path", paths[i])
		if err := spriteio.WritePNG(paths[i], outputs[kind]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func (g *Generator) writeBundle(name string, order []string, outputs map[string]image.Image) ([]string, error) {
	keys := make([]string, 0, len(order))
	for _, kind := range order {
		img := outputs[kind]
		data, err := spriteio.EncodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s map: %w", kind, err)
		}
		b := img.Bounds()
		if err := g.opts.Bundle.WriteMap(name, kind, b.Dx(), b.Dy(), data); err != nil {
			return nil, err
		}
		keys = append(keys, name+"/"+kind)
	}
	return keys, nil
}

func allExist(paths []string) bool {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}

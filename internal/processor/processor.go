// Package processor owns the state of one sprite being turned into lighting maps:
// the canonical image, optional height and specular overrides, the neighbor canvas,
// all parameters and the cached output maps.
//
// A Processor is single-threaded. Every setter synchronously regenerates the maps
// it affects before returning.
package processor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/spritemaps/internal/derive"
	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
	"github.com/MeKo-Tech/spritemaps/internal/pixel"
	"github.com/MeKo-Tech/spritemaps/internal/tiling"
)

var (
	// ErrBusy is returned when normal generation is entered while already computing.
	ErrBusy = errors.New("normal map generation already in progress")
	// ErrNoImage is returned by generators before any image was loaded.
	ErrNoImage = errors.New("no image loaded")
)

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for generation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithConfig sets the initial parameters.
func WithConfig(cfg Config) Option {
	return func(p *Processor) { p.cfg = cfg.Clone() }
}

// Processor turns one sprite into normal, parallax, specular and occlusion maps.
type Processor struct {
	logger *slog.Logger
	cfg    Config

	base        *image.NRGBA
	heightSrc   *image.NRGBA
	specularSrc *image.NRGBA
	canvas      *tiling.Canvas

	heightRev   uint64
	specularRev uint64

	heightView   cached[viewKey, derive.Height]
	specularView cached[viewKey, derive.Height]
	distance     cached[distanceKey, *field.Scalar]
	normal       cached[normalKey, *image.NRGBA]
	parallax     cached[parallaxKey, *image.Gray]
	specular     cached[specularKey, *image.Gray]
	occlusion    cached[occlusionKey, *image.Gray]

	state       State
	subscribers []subscriber
	nextSubID   int
}

type normalKey struct {
	distance distanceKey
	params   derive.NormalParams
}

type parallaxKey struct {
	view   viewKey
	params derive.ParallaxParams
}

type specularKey struct {
	view   viewKey
	params derive.SpecularParams
}

type occlusionKey struct {
	view   viewKey
	params derive.OcclusionParams
}

// New creates an empty processor with default parameters.
func New(opts ...Option) *Processor {
	p := &Processor{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}

// Config returns a deep copy of the current parameters.
func (p *Processor) Config() Config {
	return p.cfg.Clone()
}

// State returns the normal generation state.
func (p *Processor) State() State {
	return p.state
}

// Size returns the dimensions of the loaded image, or zero before a load.
func (p *Processor) Size() (int, int) {
	if p.base == nil {
		return 0, 0
	}
	return p.base.Bounds().Dx(), p.base.Bounds().Dy()
}

// Loaded reports whether a base image is present.
func (p *Processor) Loaded() bool {
	return p.base != nil
}

// Image returns the normalized base sprite, or nil before a load.
func (p *Processor) Image() *image.NRGBA {
	return p.base
}

// LoadImage replaces the base sprite, discards overrides and neighbor edits, and
// regenerates every map.
func (p *Processor) LoadImage(raw pixel.Raw) error {
	if !raw.Format.Supported() {
		p.log().Warn("Sample format has no conversion; using raw bytes", "format", raw.Format)
	}
	img, err := pixel.Normalize(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize image: %w", err)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("failed to load image: empty %dx%d raster", raw.Width, raw.Height)
	}

	p.base = img
	p.heightSrc = img
	p.specularSrc = img
	p.canvas = tiling.Build(img)
	p.heightRev++
	p.specularRev++
	p.resetCaches()

	return p.GenerateAll()
}

func (p *Processor) resetCaches() {
	p.heightView.reset()
	p.specularView.reset()
	p.distance.reset()
	p.normal.reset()
	p.parallax.reset()
	p.specular.reset()
	p.occlusion.reset()
}

// activeHeight returns the height view for the current tileable mode.
func (p *Processor) activeHeight() derive.Height {
	key := viewKey{rev: p.heightRev, tileable: p.cfg.Tileable}
	return p.heightView.get(key, func() derive.Height {
		return derive.SelectHeight(p.canvas, p.heightSrc, p.cfg.Tileable)
	})
}

func (p *Processor) activeSpecular() derive.Height {
	key := viewKey{rev: p.specularRev, tileable: p.cfg.Tileable}
	return p.specularView.get(key, func() derive.Height {
		if p.specularSrc == p.heightSrc {
			return p.activeHeight()
		}
		var canvas *tiling.Canvas
		if p.cfg.Tileable {
			canvas = tiling.Build(p.specularSrc)
		}
		return derive.SelectHeight(canvas, p.specularSrc, p.cfg.Tileable)
	})
}

// distanceField returns the bevel distance field over the active height extent.
func (p *Processor) distanceField() (*field.Scalar, distanceKey) {
	h := p.activeHeight()
	key := distanceKey{
		view:     viewKey{rev: p.heightRev, tileable: p.cfg.Tileable},
		distance: p.cfg.Normal.BevelDistance,
		soft:     p.cfg.Normal.BevelSoft,
	}
	return p.distance.get(key, func() *field.Scalar {
		return derive.BevelField(h, p.cfg.Normal)
	}), key
}

// GenerateNormal recomputes the normal map. It is rejected with ErrBusy when
// called while a normal generation is already running, for example from a
// subscriber reacting to EventProcessed.
func (p *Processor) GenerateNormal() error {
	if p.state == StateComputing {
		return ErrBusy
	}
	if p.base == nil {
		return ErrNoImage
	}

	p.state = StateComputing
	start := time.Now()
	dist, dkey := p.distanceField()
	h := p.activeHeight()
	params := p.cfg.Normal
	p.normal.get(normalKey{distance: dkey, params: params}, func() *image.NRGBA {
		return derive.Normal(h, dist, params)
	})
	p.log().Debug("Generated map", "map", MapNormal, "elapsed", time.Since(start))
	p.emit(Event{Kind: EventProcessed, Map: MapNormal})
	p.state = StateIdle

	p.emit(Event{Kind: EventIdle, Map: MapNormal})
	return nil
}

// GenerateParallax recomputes the parallax map.
func (p *Processor) GenerateParallax() error {
	if p.base == nil {
		return ErrNoImage
	}
	if !p.cfg.Parallax.Type.Supported() {
		p.log().Warn("Parallax type has no transform; height passes through", "type", p.cfg.Parallax.Type)
	}
	start := time.Now()
	h := p.activeHeight()
	params := p.cfg.Parallax
	key := parallaxKey{view: viewKey{rev: p.heightRev, tileable: p.cfg.Tileable}, params: params}
	p.parallax.get(key, func() *image.Gray { return derive.Parallax(h, params) })
	p.log().Debug("Generated map", "map", MapParallax, "elapsed", time.Since(start))
	p.emit(Event{Kind: EventProcessed, Map: MapParallax})
	return nil
}

// GenerateSpecular recomputes the specular map.
func (p *Processor) GenerateSpecular() error {
	if p.base == nil {
		return ErrNoImage
	}
	start := time.Now()
	src := p.activeSpecular()
	params := p.cfg.Specular
	key := specularKey{view: viewKey{rev: p.specularRev, tileable: p.cfg.Tileable}, params: params}
	p.specular.get(key, func() *image.Gray { return derive.Specular(src, params) })
	p.log().Debug("Generated map", "map", MapSpecular, "elapsed", time.Since(start))
	p.emit(Event{Kind: EventProcessed, Map: MapSpecular})
	return nil
}

// GenerateOcclusion recomputes the ambient occlusion map.
func (p *Processor) GenerateOcclusion() error {
	if p.base == nil {
		return ErrNoImage
	}
	start := time.Now()
	h := p.activeHeight()
	params := p.cfg.Occlusion
	key := occlusionKey{view: viewKey{rev: p.heightRev, tileable: p.cfg.Tileable}, params: params}
	p.occlusion.get(key, func() *image.Gray { return derive.Occlusion(h, params) })
	p.log().Debug("Generated map", "map", MapOcclusion, "elapsed", time.Since(start))
	p.emit(Event{Kind: EventProcessed, Map: MapOcclusion})
	return nil
}

// GenerateAll recomputes every output map.
func (p *Processor) GenerateAll() error {
	if p.base == nil {
		return ErrNoImage
	}
	return p.generate(Maps...)
}

// generate recomputes the given maps. Before the first load it does nothing.
func (p *Processor) generate(kinds ...MapKind) error {
	if p.base == nil {
		return nil
	}
	var errs []error
	for _, k := range kinds {
		var err error
		switch k {
		case MapNormal:
			err = p.GenerateNormal()
		case MapParallax:
			err = p.GenerateParallax()
		case MapSpecular:
			err = p.GenerateSpecular()
		case MapOcclusion:
			err = p.GenerateOcclusion()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// regenerate is the setter path: failures are logged, never returned.
func (p *Processor) regenerate(kinds ...MapKind) {
	if err := p.generate(kinds...); err != nil {
		p.log().Debug("Regeneration skipped", "error", err)
	}
}

// Normal returns the packed normal map, or nil before a load.
func (p *Processor) Normal() *image.NRGBA {
	return p.normal.val
}

// Parallax returns the parallax map, or nil before a load.
func (p *Processor) Parallax() *image.Gray {
	return p.parallax.val
}

// Specular returns the specular map, or nil before a load.
func (p *Processor) Specular() *image.Gray {
	return p.specular.val
}

// Occlusion returns the ambient occlusion map, or nil before a load.
func (p *Processor) Occlusion() *image.Gray {
	return p.occlusion.val
}

// Output returns the map of the given kind as an image.Image, or nil.
func (p *Processor) Output(kind MapKind) image.Image {
	switch kind {
	case MapNormal:
		if m := p.Normal(); m != nil {
			return m
		}
	case MapParallax:
		if m := p.Parallax(); m != nil {
			return m
		}
	case MapSpecular:
		if m := p.Specular(); m != nil {
			return m
		}
	case MapOcclusion:
		if m := p.Occlusion(); m != nil {
			return m
		}
	}
	return nil
}

// HeightPreview returns the grayscale active height over its full extent, blurred
// with the normal blur radius as the emboss stage sees it.
func (p *Processor) HeightPreview() *image.Gray {
	if p.base == nil {
		return nil
	}
	return mask.GaussianBlur(p.activeHeight().Gray, p.cfg.Normal.Blur)
}

// DistancePreview returns the bevel distance field over the active extent.
func (p *Processor) DistancePreview() *image.Gray {
	if p.base == nil {
		return nil
	}
	d, _ := p.distanceField()
	return d.ToGray()
}

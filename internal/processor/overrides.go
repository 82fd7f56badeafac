package processor

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/MeKo-Tech/spritemaps/internal/pixel"
	"github.com/MeKo-Tech/spritemaps/internal/tiling"
)

// LoadHeightOverride replaces the height source with a custom heightmap. The map is
// resized to the base sprite and takes the sprite's alpha where that is lower, so
// transparent sprite regions stay flat. Neighbor edits are discarded.
func (p *Processor) LoadHeightOverride(raw pixel.Raw) error {
	if p.base == nil {
		return ErrNoImage
	}
	img, err := p.ingestOverride(raw)
	if err != nil {
		return fmt.Errorf("failed to load height override: %w", err)
	}

	kinds := []MapKind{MapNormal, MapParallax, MapOcclusion}
	if p.specularSrc == p.heightSrc {
		// Specular shared the old canvas and its neighbor edits.
		p.specularRev++
		kinds = append(kinds, MapSpecular)
	}
	p.heightSrc = img
	p.canvas = tiling.Build(img)
	p.heightRev++
	p.log().Debug("Loaded height override", "width", raw.Width, "height", raw.Height)
	return p.generate(kinds...)
}

// ClearHeightOverride restores the base sprite as height source.
func (p *Processor) ClearHeightOverride() error {
	if p.base == nil {
		return ErrNoImage
	}
	p.heightSrc = p.base
	p.canvas = tiling.Build(p.base)
	p.heightRev++
	p.specularRev++
	return p.GenerateAll()
}

// LoadSpecularOverride replaces the specular source with a custom map resized to
// the base sprite.
func (p *Processor) LoadSpecularOverride(raw pixel.Raw) error {
	if p.base == nil {
		return ErrNoImage
	}
	img, err := p.ingestOverride(raw)
	if err != nil {
		return fmt.Errorf("failed to load specular override: %w", err)
	}

	p.specularSrc = img
	p.specularRev++
	p.log().Debug("Loaded specular override", "width", raw.Width, "height", raw.Height)
	return p.generate(MapSpecular)
}

// ClearSpecularOverride restores the base sprite as specular source, even while a
// height override is active.
func (p *Processor) ClearSpecularOverride() error {
	if p.base == nil {
		return ErrNoImage
	}
	p.specularSrc = p.base
	p.specularRev++
	return p.generate(MapSpecular)
}

func (p *Processor) ingestOverride(raw pixel.Raw) (*image.NRGBA, error) {
	img, err := pixel.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty %dx%d raster", raw.Width, raw.Height)
	}
	w, h := p.Size()
	img = resize(img, w, h, p.cfg.OverrideSupersample)

	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = min(img.Pix[i], p.base.Pix[i])
	}
	return img, nil
}

// resize scales src to w x h with Catmull-Rom. With supersample set the image is
// first scaled to twice the target size, which smooths hard override edges.
func resize(src *image.NRGBA, w, h int, supersample bool) *image.NRGBA {
	if supersample {
		src = scale(src, 2*w, 2*h)
	}
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		return src
	}
	return scale(src, w, h)
}

func scale(src *image.NRGBA, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

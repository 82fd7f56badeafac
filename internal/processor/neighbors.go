package processor

import (
	"image"

	"github.com/MeKo-Tech/spritemaps/internal/tiling"
)

// Neighbor returns a copy of one cell of the 3x3 height canvas.
func (p *Processor) Neighbor(row, col int) (*image.NRGBA, error) {
	if p.canvas == nil {
		return nil, ErrNoImage
	}
	return p.canvas.Cell(row, col)
}

// SetNeighbor replaces one canvas cell and regenerates every map. img must match
// the sprite size exactly, otherwise tiling.ErrDimensionMismatch is returned.
func (p *Processor) SetNeighbor(row, col int, img *image.NRGBA) error {
	if p.canvas == nil {
		return ErrNoImage
	}
	if err := p.canvas.SetCell(row, col, img); err != nil {
		return err
	}
	return p.neighborsChanged()
}

// ClearNeighbor makes one canvas cell fully transparent and regenerates every map.
func (p *Processor) ClearNeighbor(row, col int) error {
	if p.canvas == nil {
		return ErrNoImage
	}
	if err := p.canvas.ClearCell(row, col); err != nil {
		return err
	}
	return p.neighborsChanged()
}

// FillNeighbors writes img into the eight cells around the center.
func (p *Processor) FillNeighbors(img *image.NRGBA) error {
	if p.canvas == nil {
		return ErrNoImage
	}
	if err := p.canvas.Fill(img); err != nil {
		return err
	}
	return p.neighborsChanged()
}

// ResetNeighbors rebuilds the canvas from the current height source.
func (p *Processor) ResetNeighbors() error {
	if p.canvas == nil {
		return ErrNoImage
	}
	p.canvas = tiling.Build(p.heightSrc)
	return p.neighborsChanged()
}

func (p *Processor) neighborsChanged() error {
	p.heightRev++
	if p.specularSrc == p.heightSrc {
		p.specularRev++
	}
	return p.GenerateAll()
}

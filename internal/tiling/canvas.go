// Package tiling builds the 3x3 neighbor canvas used for seamless-wrap processing.
package tiling

import (
	"errors"
	"fmt"
	"image"
)

// Grid is the number of cells along each axis of a Canvas.
const Grid = 3

var (
	// ErrDimensionMismatch is returned when a cell image does not match the cell size.
	ErrDimensionMismatch = errors.New("cell dimensions do not match canvas")
	// ErrCellOutOfRange is returned for row/column indices outside the 3x3 grid.
	ErrCellOutOfRange = errors.New("cell index out of range")
)

// Canvas is a 3x3 replication of a source image. Cell (1,1) is the source itself.
type Canvas struct {
	img   *image.NRGBA
	cellW int
	cellH int
}

// Build replicates src into all nine cells.
func Build(src *image.NRGBA) *Canvas {
	b := src.Bounds()
	c := &Canvas{
		img:   image.NewNRGBA(image.Rect(0, 0, b.Dx()*Grid, b.Dy()*Grid)),
		cellW: b.Dx(),
		cellH: b.Dy(),
	}
	for row := 0; row < Grid; row++ {
		for col := 0; col < Grid; col++ {
			blit(c.img, c.cellRect(row, col).Min, src, b)
		}
	}
	return c
}

// Image returns the full 3x3 canvas. Callers must not modify it.
func (c *Canvas) Image() *image.NRGBA {
	return c.img
}

// CellSize returns the width and height of one cell.
func (c *Canvas) CellSize() (int, int) {
	return c.cellW, c.cellH
}

// CenterRect returns the bounds of the center cell within the canvas.
func (c *Canvas) CenterRect() image.Rectangle {
	return c.cellRect(1, 1)
}

func (c *Canvas) cellRect(row, col int) image.Rectangle {
	return image.Rect(col*c.cellW, row*c.cellH, (col+1)*c.cellW, (row+1)*c.cellH)
}

func checkIndex(row, col int) error {
	if row < 0 || row >= Grid || col < 0 || col >= Grid {
		return fmt.Errorf("%w: (%d,%d)", ErrCellOutOfRange, row, col)
	}
	return nil
}

// Cell returns a copy of the given cell.
func (c *Canvas) Cell(row, col int) (*image.NRGBA, error) {
	if err := checkIndex(row, col); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, c.cellW, c.cellH))
	blit(dst, image.Point{}, c.img, c.cellRect(row, col))
	return dst, nil
}

// SetCell overwrites one cell with img, which must have exactly the cell size.
func (c *Canvas) SetCell(row, col int, img *image.NRGBA) error {
	if err := checkIndex(row, col); err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() != c.cellW || b.Dy() != c.cellH {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), c.cellW, c.cellH)
	}
	blit(c.img, c.cellRect(row, col).Min, img, b)
	return nil
}

// ClearCell writes a fully transparent cell.
func (c *Canvas) ClearCell(row, col int) error {
	if err := checkIndex(row, col); err != nil {
		return err
	}
	r := c.cellRect(row, col)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := c.img.PixOffset(r.Min.X, y)
		clear(c.img.Pix[i : i+r.Dx()*4])
	}
	return nil
}

// Fill writes img into all eight neighbor cells, leaving the center untouched.
func (c *Canvas) Fill(img *image.NRGBA) error {
	b := img.Bounds()
	if b.Dx() != c.cellW || b.Dy() != c.cellH {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), c.cellW, c.cellH)
	}
	for row := 0; row < Grid; row++ {
		for col := 0; col < Grid; col++ {
			if row == 1 && col == 1 {
				continue
			}
			blit(c.img, c.cellRect(row, col).Min, img, b)
		}
	}
	return nil
}

// Clone returns a deep copy of the canvas.
func (c *Canvas) Clone() *Canvas {
	img := image.NewNRGBA(c.img.Bounds())
	copy(img.Pix, c.img.Pix)
	return &Canvas{img: img, cellW: c.cellW, cellH: c.cellH}
}

// blit copies the r region of src to dst at dp without any colour conversion.
func blit(dst *image.NRGBA, dp image.Point, src *image.NRGBA, r image.Rectangle) {
	for y := 0; y < r.Dy(); y++ {
		si := src.PixOffset(r.Min.X, r.Min.Y+y)
		di := dst.PixOffset(dp.X, dp.Y+y)
		copy(dst.Pix[di:di+r.Dx()*4], src.Pix[si:si+r.Dx()*4])
	}
}

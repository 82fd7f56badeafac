package tiling

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(10*x + y), G: uint8(20*y + x), B: uint8(x + 2*y), A: 255})
		}
	}
	return img
}

func TestBuildReplicatesSourceIntoEveryCell(t *testing.T) {
	src := gradientImage(4, 3)
	canvas := Build(src)

	assert.Equal(t, image.Rect(0, 0, 12, 9), canvas.Image().Bounds())
	assert.Equal(t, image.Rect(4, 3, 8, 6), canvas.CenterRect())

	for row := 0; row < Grid; row++ {
		for col := 0; col < Grid; col++ {
			cell, err := canvas.Cell(row, col)
			require.NoError(t, err)
			assert.Equal(t, src.Pix, cell.Pix, "cell (%d,%d)", row, col)
		}
	}
}

func TestSetCellOverwritesOnlyThatCell(t *testing.T) {
	src := gradientImage(2, 2)
	canvas := Build(src)

	red := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(red.Pix); i += 4 {
		red.Pix[i], red.Pix[i+3] = 255, 255
	}
	require.NoError(t, canvas.SetCell(0, 2, red))

	cell, err := canvas.Cell(0, 2)
	require.NoError(t, err)
	assert.Equal(t, red.Pix, cell.Pix)

	center, err := canvas.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, center.Pix)
}

func TestSetCellDimensionMismatch(t *testing.T) {
	canvas := Build(gradientImage(4, 4))

	err := canvas.SetCell(0, 0, gradientImage(3, 4))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = canvas.Fill(gradientImage(5, 5))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	err = canvas.SetCell(3, 0, gradientImage(4, 4))
	require.ErrorIs(t, err, ErrCellOutOfRange)
}

func TestClearCellIsTransparent(t *testing.T) {
	canvas := Build(gradientImage(3, 3))
	require.NoError(t, canvas.ClearCell(2, 1))

	cell, err := canvas.Cell(2, 1)
	require.NoError(t, err)
	for _, v := range cell.Pix {
		require.Zero(t, v)
	}

	w, h := canvas.CellSize()
	assert.Equal(t, 3, w)
	assert.Equal(t, 3, h)
}

func TestFillKeepsCenter(t *testing.T) {
	src := gradientImage(2, 2)
	canvas := Build(src)
	blank := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	require.NoError(t, canvas.Fill(blank))

	center, err := canvas.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, center.Pix)

	corner, err := canvas.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, blank.Pix, corner.Pix)
}

func TestCloneIsIndependent(t *testing.T) {
	canvas := Build(gradientImage(2, 2))
	clone := canvas.Clone()
	require.NoError(t, clone.ClearCell(1, 1))

	center, err := canvas.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, gradientImage(2, 2).Pix, center.Pix)
}

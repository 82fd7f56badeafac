// Package composite assembles a sprite and its generated maps into a single
// contact sheet image.
package composite

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// DefaultBackground shows through transparent sprite texels.
var DefaultBackground = color.NRGBA{R: 64, G: 64, B: 64, A: 255}

// Sheet lays cells out left to right with gap pixels between them, each
// alpha-blended over background. Nil cells are left as background. All
// non-nil cells must share the same size.
func Sheet(cells []image.Image, background color.NRGBA, gap int) (*image.NRGBA, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("sheet needs at least one cell")
	}
	if gap < 0 {
		return nil, fmt.Errorf("gap must not be negative")
	}

	var size image.Point
	for i, c := range cells {
		if c == nil {
			continue
		}
		s := c.Bounds().Size()
		if size == (image.Point{}) {
			size = s
			continue
		}
		if s != size {
			return nil, fmt.Errorf("cell %d size %v does not match %v", i, s, size)
		}
	}
	if size.X == 0 || size.Y == 0 {
		return nil, fmt.Errorf("sheet cells are empty")
	}

	n := len(cells)
	dst := image.NewNRGBA(image.Rect(0, 0, n*size.X+(n-1)*gap, size.Y))
	fill(dst, background)

	for i, c := range cells {
		if c == nil {
			continue
		}
		alphaOver(dst, c, image.Pt(i*(size.X+gap), 0))
	}

	return dst, nil
}

func fill(dst *image.NRGBA, c color.NRGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x, y, c)
		}
	}
}

// alphaOver blends src onto dst with its top-left corner at off.
func alphaOver(dst *image.NRGBA, src image.Image, off image.Point) {
	sb := src.Bounds()

	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			s := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if s.A == 0 {
				continue
			}

			dx := off.X + x - sb.Min.X
			dy := off.Y + y - sb.Min.Y
			d := dst.NRGBAAt(dx, dy)

			sa := float64(s.A) / 255.0
			da := float64(d.A) / 255.0

			outA := sa + da*(1.0-sa)
			if outA == 0 {
				dst.SetNRGBA(dx, dy, color.NRGBA{})
				continue
			}

			blend := func(srcVal, dstVal uint8) uint8 {
				srcPremult := float64(srcVal) * sa
				dstPremult := float64(dstVal) * da
				outPremult := srcPremult + dstPremult*(1.0-sa)
				return uint8(math.Round(outPremult / outA))
			}

			dst.SetNRGBA(dx, dy, color.NRGBA{
				R: blend(s.R, d.R),
				G: blend(s.G, d.G),
				B: blend(s.B, d.B),
				A: uint8(math.Round(outA * 255.0)),
			})
		}
	}
}

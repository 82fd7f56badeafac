// Package mask implements the 8-bit raster operations of the map pipeline:
// opacity masks, thresholds, Gaussian blur, erode/dilate and distance fields.
package mask

import (
	"image"

	"github.com/disintegration/gift"
)

// OpacityMask marks opaque pixels 255 and transparent pixels 0. Unless tileable
// is set, the outer one pixel ring is forced to 0 so that non-wrapping sprites
// always receive a bevel along the image border.
func OpacityMask(img *image.NRGBA, tileable bool) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !tileable && (x == 0 || y == 0 || x == w-1 || y == h-1) {
				continue
			}
			if img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] == 0 {
				continue
			}
			out.Pix[y*out.Stride+x] = 255
		}
	}
	return out
}

// Luma converts img to 8-bit grayscale with Rec. 601 weights. Alpha is ignored so
// that transparent texels keep their stored colour as height.
func Luma(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r, g, bl := uint32(img.Pix[i]), uint32(img.Pix[i+1]), uint32(img.Pix[i+2])
			// 0.299, 0.587, 0.114 in 14-bit fixed point.
			out.Pix[y*out.Stride+x] = uint8((r*4899 + g*9617 + bl*1868 + 8192) >> 14)
		}
	}
	return out
}

// GaussianBlur blurs g with a kernel of size 2*radius+1. Radius 0 returns a copy.
func GaussianBlur(g *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return clone(g)
	}
	ksize := 2*radius + 1
	sigma := 0.3*(float32(ksize-1)*0.5-1) + 0.8
	return apply(g, gift.GaussianBlur(sigma))
}

// Morph erodes (amount < 0) or dilates (amount > 0) g with a square structuring
// element of size 2*|amount|+1.
func Morph(g *image.Gray, amount int) *image.Gray {
	switch {
	case amount < 0:
		return apply(g, gift.Minimum(-2*amount+1, false))
	case amount > 0:
		return apply(g, gift.Maximum(2*amount+1, false))
	default:
		return clone(g)
	}
}

// Invert returns 255-x for every pixel.
func Invert(g *image.Gray) *image.Gray {
	return apply(g, gift.Invert())
}

func apply(g *image.Gray, filters ...gift.Filter) *image.Gray {
	f := gift.New(filters...)
	dst := image.NewGray(f.Bounds(g.Bounds()))
	f.Draw(dst, g)
	return dst
}

// Threshold maps pixels strictly greater than thresh to 255 and the rest to 0,
// or the other way round when inverted.
func Threshold(g *image.Gray, thresh uint8, inverted bool) *image.Gray {
	hi, lo := uint8(255), uint8(0)
	if inverted {
		hi, lo = 0, 255
	}
	out := clone(g)
	for i, v := range out.Pix {
		if v > thresh {
			out.Pix[i] = hi
		} else {
			out.Pix[i] = lo
		}
	}
	return out
}

// Subtract returns max(x-v, 0) for every pixel.
func Subtract(g *image.Gray, v uint8) *image.Gray {
	out := clone(g)
	for i, p := range out.Pix {
		if p > v {
			out.Pix[i] = p - v
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

// Crop copies the r region of g into a new image anchored at the origin.
func Crop(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], g.Pix[g.PixOffset(r.Min.X, r.Min.Y+y):])
	}
	return out
}

func clone(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}

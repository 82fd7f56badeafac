package derive

import (
	"image"
	"math"

	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
)

// Parallax computes the grayscale depth map of h with the algorithm selected by p.Type.
func Parallax(h Height, p ParallaxParams) *image.Gray {
	var out *image.Gray
	switch p.Type {
	case ParallaxBinary:
		out = parallaxBinary(h.Gray, p)
	case ParallaxHeightMap:
		out = parallaxHeightMap(h.Float, p)
	case ParallaxQuantization:
		out = parallaxQuantization(h.Gray, p)
	default:
		out = h.Gray
	}
	return mask.Crop(out, h.Center)
}

func parallaxBinary(gray *image.Gray, p ParallaxParams) *image.Gray {
	g := mask.GaussianBlur(gray, p.Focus)
	g = mask.Threshold(g, clampByte(p.Max), p.Invert)
	g = mask.Subtract(g, clampByte(p.Min))
	g = mask.Morph(g, p.ErodeDilate)
	return mask.GaussianBlur(g, p.Soft)
}

func parallaxHeightMap(height *field.Scalar, p ParallaxParams) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, height.W, height.H))
	for i, v := range height.Pix {
		x := float64(v) - 0.5
		g.Pix[i] = field.Saturate(255*(p.Contrast*x+0.5) + float64(p.Brightness))
	}
	g = mask.GaussianBlur(g, p.Soft)
	if p.Invert {
		g = mask.Invert(g)
	}
	return g
}

func parallaxQuantization(gray *image.Gray, p ParallaxParams) *image.Gray {
	g := mask.GaussianBlur(gray, p.Focus)

	q := float64(min(max(p.Quantization, 1), 255))
	for i, v := range g.Pix {
		level := math.Round(float64(v) * q / 255)
		g.Pix[i] = field.Saturate(level * 255 / q)
	}
	g = mask.GaussianBlur(g, p.Soft)

	lo, hi := float64(clampByte(p.Min)), float64(clampByte(p.Max))
	for i, v := range g.Pix {
		if hi > lo {
			g.Pix[i] = field.Saturate((float64(v) - lo) * 255 / (hi - lo))
		} else if float64(v) > lo {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
	if p.Invert {
		g = mask.Invert(g)
	}
	return g
}

package derive

import (
	"image"

	"github.com/MeKo-Tech/spritemaps/internal/field"
	"github.com/MeKo-Tech/spritemaps/internal/mask"
)

// levels applies the shared threshold offset, contrast and brightness stage to a
// [0,1] field and converts it to 8 bits.
func levels(s *field.Scalar, thresh int, contrast float64, bright int) *image.Gray {
	t := float64(thresh) / 255
	g := image.NewGray(image.Rect(0, 0, s.W, s.H))
	for i, v := range s.Pix {
		x := contrast*(float64(v)-t) + t
		g.Pix[i] = field.Saturate(255*x + float64(bright))
	}
	return g
}

// Specular computes the grayscale reflectance map from the specular source view.
func Specular(src Height, p SpecularParams) *image.Gray {
	g := levels(src.Float, p.Thresh, p.Contrast, p.Bright)
	g = mask.GaussianBlur(g, p.Blur)
	if p.Invert {
		g = mask.Invert(g)
	}
	return mask.Crop(g, src.Center)
}
